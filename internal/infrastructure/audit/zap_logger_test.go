package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAuditLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	auditLog := NewZapAuditLogger(zap.New(core))
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")

	auditLog.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, 7).WithEmail("a@b.co"))
	auditLog.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, 7).WithError(errors.New("bad password")))
	auditLog.LogEvent(ctx, domain.NewAuditEvent(domain.AttackDetectedEvent, 0).WithError(nil).WithMetadata("token", "refresh"))

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "audit", entries[0].LoggerName)
	assert.Equal(t, "a@b.co", entries[0].ContextMap()["email"])
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "bad password", entries[1].ContextMap()["error"])

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, true, entries[2].ContextMap()["security"])
}
