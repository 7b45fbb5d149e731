package service

import (
	"context"

	"github.com/dfarias/chaperone/internal/store"
	"go.uber.org/zap"
)

// AuditEmitter persists policy events to the audit table. Emission is
// fire-and-forget: an append failure is logged and swallowed so auditing
// never blocks the conversational path.
type AuditEmitter struct {
	audits *store.AuditStore
	logger *zap.Logger
}

func NewAuditEmitter(audits *store.AuditStore, logger *zap.Logger) *AuditEmitter {
	return &AuditEmitter{audits: audits, logger: logger}
}

func (e *AuditEmitter) Emit(ctx context.Context, eventType string, payload map[string]any) {
	if err := e.audits.Append(ctx, eventType, payload); err != nil {
		e.logger.Warn("audit append failed", zap.String("event_type", eventType), zap.Error(err))
	}
}

// NopEmitter discards events, for tests and tooling that do not audit.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, map[string]any) {}
