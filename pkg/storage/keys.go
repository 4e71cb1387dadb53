package storage

import (
	"errors"
	"path"
	"regexp"
	"strings"
)

// ErrNotFound is returned when a key has no object behind it
var ErrNotFound = errors.New("storage: object not found")

const (
	TempPrefix   = "temp_resumes"
	ResumePrefix = "resumes"
)

const (
	maxFilenameLen = 120
	maxExtLen      = 10
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// TempResumeKey is where an upload lives until registration claims it
func TempResumeKey(fileID, ext string) string {
	return path.Join(TempPrefix, fileID, "resume_"+fileID+strings.ToLower(ext))
}

// ResumeKey is the permanent location of a candidate's resume
func ResumeKey(candidateID, filename string) string {
	return path.Join(ResumePrefix, candidateID, SanitizeFilename(filename))
}

// SanitizeFilename keeps the base name, replacing runs outside [A-Za-z0-9._-] in the
// stem with "_" and dropping them from the extension. An empty stem becomes "resume".
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "_"), "._")
	if stem == "" {
		stem = "resume"
	}
	ext = strings.ToLower(unsafeChars.ReplaceAllString(strings.TrimPrefix(ext, "."), ""))
	if len(ext) > maxExtLen {
		ext = ext[:maxExtLen]
	}
	if ext != "" {
		ext = "." + ext
	}
	if len(stem)+len(ext) > maxFilenameLen {
		stem = stem[:maxFilenameLen-len(ext)]
	}
	return stem + ext
}
