package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audit event
type EventType string

const (
	EventAdminAccess        EventType = "admin_access"
	EventAdminDenied        EventType = "admin_denied"
	EventStatusChanged      EventType = "status_changed"
	EventResumeDownloaded   EventType = "resume_downloaded"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUploadRejected     EventType = "upload_rejected"
)

// AuditEvent is one admin or abuse related event
type AuditEvent struct {
	Timestamp time.Time
	Event     EventType
	Actor     string
	IP        string
	Method    string
	Path      string
	RequestID string
	Details   map[string]any
}

// AuditLogger writes audit events as structured zap entries
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultLogger *AuditLogger
	defaultOnce   sync.Once
)

// NewAuditLogger builds an audit logger writing JSON to stdout
func NewAuditLogger(serviceName, environment string) *AuditLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger = zap.NewNop()
	}
	return NewAuditLoggerWith(logger, serviceName, environment)
}

// NewAuditLoggerWith wraps an existing zap logger
func NewAuditLoggerWith(logger *zap.Logger, serviceName, environment string) *AuditLogger {
	return &AuditLogger{zapLogger: logger, serviceName: serviceName, environment: environment}
}

// SetDefault replaces the process-wide audit logger
func SetDefault(l *AuditLogger) {
	defaultOnce.Do(func() {})
	defaultLogger = l
}

// DefaultLogger returns the process-wide audit logger
func DefaultLogger() *AuditLogger {
	defaultOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = NewAuditLogger("hr-backend", "development")
		}
	})
	return defaultLogger
}

func (al *AuditLogger) Log(event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	level := zapcore.InfoLevel
	switch event.Event {
	case EventAdminDenied, EventRateLimitTriggered, EventUploadRejected:
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", al.serviceName),
		zap.String("env", al.environment),
		zap.String("event", string(event.Event)),
		zap.Time("occurred_at", event.Timestamp),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", MaskEmail(event.Actor)))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.Method != "" {
		fields = append(fields, zap.String("method", event.Method))
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	al.zapLogger.Log(level, string(event.Event), fields...)
}

// Sync flushes any buffered log entries
func (al *AuditLogger) Sync() error {
	return al.zapLogger.Sync()
}

// MaskEmail masks the local part of an email ("j***@example.com").
// Values without an @ are returned unchanged.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue creates a short SHA256 digest of a value for logging without PII
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
