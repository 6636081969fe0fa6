package security

import "go.uber.org/zap/zapcore"

// Severity represents the severity level of a security event
// This is derived from EventType, NOT user-provided
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityMEDIUM   Severity = "MEDIUM"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

// EventSeverityMap defines the hard-coded severity for each event type
var EventSeverityMap = map[EventType]Severity{
	EventSignup:       SeverityINFO,
	EventLoginSuccess: SeverityINFO,
	EventLogout:       SeverityINFO,
	EventDataExport:   SeverityMEDIUM,

	EventLoginFailed:        SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventUnauthorizedAccess: SeverityWARN,
	EventForbiddenAccess:    SeverityWARN,

	EventCSRFViolation: SeverityHIGH,
	EventLoginBlocked:  SeverityHIGH,
	EventBlockCreated:  SeverityHIGH,
}

// GetSeverity returns the severity for an event type. Unknown events are WARN.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityWARN
}

// Level maps a severity onto the zap level it is written at.
func (s Severity) Level() zapcore.Level {
	switch s {
	case SeverityINFO, SeverityMEDIUM:
		return zapcore.InfoLevel
	case SeverityHIGH, SeverityCRITICAL:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
