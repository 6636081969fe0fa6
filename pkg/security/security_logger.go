package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventSignup             EventType = "signup"
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventLoginSuccess       EventType = "login_success"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventForbiddenAccess    EventType = "forbidden_access"
	EventBlockCreated       EventType = "block_created"
	EventLogout             EventType = "logout"
	EventCSRFViolation      EventType = "csrf_violation"
	EventDataExport         EventType = "data_export"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "ip", "user_id"
	SubjectValue string                 `json:"subject_value,omitempty"` // masked or hashed
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger writes audit events through zap, separate from the request log.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *SecurityLogger

// InitSecurityLogger builds a production zap logger and installs it as the default.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	defaultLogger = NewSecurityLogger(logger, serviceName, environment)
	return defaultLogger
}

func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// DefaultLogger returns the default security logger, or a no-op one before init.
func DefaultLogger() *SecurityLogger {
	if defaultLogger == nil {
		return NewSecurityLogger(zap.NewNop(), "resume-hub", "development")
	}
	return defaultLogger
}

func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	severity := GetSeverity(event.Event)

	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(severity.Level(), string(event.Event), fields...)
}

func (sl *SecurityLogger) LogSignup(ctx context.Context, userID, role, ip, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventSignup,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"role": role},
	})
}

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, email, ip, userAgent, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: HashValue(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
	})
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: HashValue(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": reason},
	})
}

func (sl *SecurityLogger) LogLoginBlocked(ctx context.Context, email, ip, userAgent, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: HashValue(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": "too_many_failed_attempts"},
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogAccessDenied records a rejected request. Forbidden means authenticated
// with the wrong role or owner; otherwise the caller was not authenticated.
func (sl *SecurityLogger) LogAccessDenied(ctx context.Context, forbidden bool, userID, ip, requestID, path, reason string) {
	event := EventUnauthorizedAccess
	if forbidden {
		event = EventForbiddenAccess
	}
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  "user_id",
		SubjectValue: maskValue("user_id", userID),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"path": path, "reason": reason},
	})
}

func (sl *SecurityLogger) LogBlockCreated(ctx context.Context, subjectType, subjectValue, ip, requestID string, durationMinutes int) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventBlockCreated,
		SubjectType:  subjectType,
		SubjectValue: maskValue(subjectType, subjectValue),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"duration_minutes": durationMinutes},
	})
}

func (sl *SecurityLogger) LogLogout(ctx context.Context, ip, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventLogout,
		IP:        ip,
		RequestID: requestID,
	})
}

func (sl *SecurityLogger) LogCSRFViolation(ctx context.Context, ip, userAgent, requestID, path, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventCSRFViolation,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
		Details:   map[string]interface{}{"path": path, "reason": reason},
	})
}

// LogDataExport records a bulk download of candidate data.
func (sl *SecurityLogger) LogDataExport(ctx context.Context, userID, ip, requestID string, filter map[string]interface{}) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventDataExport,
		SubjectType:  "user_id",
		SubjectValue: maskValue("user_id", userID),
		IP:           ip,
		RequestID:    requestID,
		Details:      filter,
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// HashValue returns a short SHA256 fingerprint so values can be correlated without storing PII
func HashValue(value string) string {
	if value == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(value)))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return HashValue(value)
	case "ip":
		return value
	default:
		return HashValue(value)
	}
}
