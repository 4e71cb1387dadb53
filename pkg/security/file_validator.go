package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoExtension       = errors.New("file has no extension")
	ErrExtensionRejected = errors.New("only PDF and DOCX files are allowed")
	ErrContentMismatch   = errors.New("file content does not match its extension")
	ErrMIMERejected      = errors.New("file type is not allowed")
)

// Content types stored with accepted resumes
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Extension    string
	ContentType  string
	DetectedMIME string
}

var magicBytes = map[string][]byte{
	".pdf":  {0x25, 0x50, 0x44, 0x46},
	".docx": {0x50, 0x4B, 0x03, 0x04},
}

// Sniffed types accepted per extension. A DOCX is a ZIP container and
// may sniff as plain zip when the part order is unusual.
var allowedMIME = map[string][]string{
	".pdf":  {MIMEPDF},
	".docx": {MIMEDOCX, "application/zip"},
}

var contentTypes = map[string]string{
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
}

// ValidateResume checks extension, magic bytes and sniffed MIME type.
// head should hold at least the first few kilobytes of the file.
func ValidateResume(filename string, head []byte) (FileValidationResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return FileValidationResult{}, ErrNoExtension
	}
	sig, ok := magicBytes[ext]
	if !ok {
		return FileValidationResult{Extension: ext}, ErrExtensionRejected
	}
	result := FileValidationResult{Extension: ext, ContentType: contentTypes[ext]}

	if !bytes.HasPrefix(head, sig) {
		return result, ErrContentMismatch
	}

	detected := mimetype.Detect(head)
	result.DetectedMIME = detected.String()
	for _, m := range allowedMIME[ext] {
		if detected.Is(m) {
			return result, nil
		}
	}
	return result, ErrMIMERejected
}

// AllowedExtensions lists accepted resume extensions
func AllowedExtensions() []string {
	return []string{".pdf", ".docx"}
}

// ContentTypeFor returns the stored content type for a resume filename
func ContentTypeFor(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
