package audit

import (
	"context"

	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAuditLogger writes audit events as structured log entries
type ZapAuditLogger struct {
	log *zap.Logger
}

// NewZapAuditLogger creates an audit logger named "audit"
func NewZapAuditLogger(log *zap.Logger) domain.AuditLogger {
	return &ZapAuditLogger{log: log.Named("audit")}
}

// LogEvent implements domain.AuditLogger. Attack events are logged at WARN and
// flagged for security monitoring.
func (a *ZapAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Bool("success", event.Success),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Uint("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("error", event.ErrorMsg))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	level := zapcore.InfoLevel
	switch {
	case event.EventType == domain.AttackDetectedEvent:
		level = zapcore.WarnLevel
		fields = append(fields, zap.Bool("security", true))
	case !event.Success:
		level = zapcore.WarnLevel
	}
	if ce := a.log.Check(level, "audit event"); ce != nil {
		ce.Write(fields...)
	}
}

type ctxKey string

// RequestIDKey is the context key under which the request id travels to services
const RequestIDKey ctxKey = "request_id"
