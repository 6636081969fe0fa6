package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*SecurityLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewSecurityLogger(zap.New(core), "resume-hub", "test"), logs
}

func TestSecurityLoggerLevels(t *testing.T) {
	sl, logs := newObserved()
	ctx := context.Background()

	sl.LogLoginSuccess(ctx, "ada@x.com", "10.0.0.1", "ua", "req-1")
	sl.LogLoginFailed(ctx, "ada@x.com", "10.0.0.1", "ua", "req-2", "invalid_credentials")
	sl.LogLoginBlocked(ctx, "ada@x.com", "10.0.0.1", "ua", "req-3")
	sl.LogAccessDenied(ctx, true, "user-1", "10.0.0.1", "req-4", "/recruiter/search", "role")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "forbidden_access", entries[3].Message)
}

func TestSecurityLoggerDoesNotLeakEmail(t *testing.T) {
	sl, logs := newObserved()
	sl.LogLoginFailed(context.Background(), "ada@x.com", "", "", "", "invalid_credentials")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, HashValue("ada@x.com"), fields["subject_value"])
	assert.NotContains(t, fields["subject_value"], "ada")
}

func TestMaskingHelpers(t *testing.T) {
	assert.Equal(t, HashValue("Ada@X.com"), HashValue("ada@x.com"))
	assert.Len(t, HashValue("anything"), 16)
	assert.Empty(t, HashValue(""))
}

func TestLoginTrackerFailsOpenWithoutRedis(t *testing.T) {
	sl, logs := newObserved()
	lt := NewLoginTracker(DefaultLoginTrackerConfig(), nil, sl)
	ctx := context.Background()

	blocked, err := lt.IsBlocked(ctx, "ada@x.com", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked)

	shouldBlock, count, err := lt.RecordFailedAttempt(ctx, "ada@x.com", "10.0.0.1", "ua", "req")
	require.NoError(t, err)
	assert.False(t, shouldBlock)
	assert.Zero(t, count)
	assert.Equal(t, 1, logs.FilterMessage("login_failed").Len())

	assert.NoError(t, lt.ClearAttempts(ctx, "ada@x.com", "10.0.0.1"))
}

func TestSeverityIsDerivedFromEventType(t *testing.T) {
	sl, logs := newObserved()
	ctx := context.Background()

	sl.LogDataExport(ctx, "user-1", "10.0.0.1", "req-1", map[string]interface{}{"skills": []string{"go"}})
	sl.LogCSRFViolation(ctx, "10.0.0.1", "ua", "req-2", "/candidate/resume", "mismatch")
	sl.Log(ctx, SecurityEvent{Event: EventType("something_new")})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "MEDIUM", entries[0].ContextMap()["severity"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "HIGH", entries[1].ContextMap()["severity"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, SeverityWARN, GetSeverity("something_new"))
}
