// Package audit implements the audit logging service.
//
// Audit logs are append-only records written in the same transaction as the
// mutation they describe. Hard-delete is NOT allowed.
//
// Import Path: landledger.io/registry/internal/governance/audit
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/repository"
)

// DefaultActor labels entries when no acting user is known.
const DefaultActor = "Admin"

// Logger writes audit records through a repository.Querier.
type Logger struct {
	defaultActor string
	now          func() time.Time
}

// NewLogger creates a new audit Logger. A blank defaultActor means DefaultActor.
func NewLogger(defaultActor string) *Logger {
	if strings.TrimSpace(defaultActor) == "" {
		defaultActor = DefaultActor
	}
	return &Logger{
		defaultActor: defaultActor,
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// WithClock returns a copy of l that timestamps entries with now.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	return &Logger{defaultActor: l.defaultActor, now: now}
}

// Actor returns actor, or the default label when actor is blank.
func (l *Logger) Actor(actor string) string {
	if a := strings.TrimSpace(actor); a != "" {
		return a
	}
	return l.defaultActor
}

// LogAction records an auditable action on q. Pass the open transaction so
// the entry commits or rolls back with the mutation.
func (l *Logger) LogAction(ctx context.Context, q repository.Querier, action domain.AuditAction, actor, details string) (domain.AuditEntry, error) {
	entry := domain.AuditEntry{
		ID:        generateAuditID(),
		Timestamp: l.now(),
		Actor:     l.Actor(actor),
		Action:    action,
		Details:   details,
	}
	if err := q.InsertAuditEntry(ctx, entry); err != nil {
		logger.FromContext(ctx).Error("Failed to write audit log",
			zap.String("action", string(action)),
			zap.String("actor", entry.Actor),
			zap.Error(err),
		)
		return domain.AuditEntry{}, fmt.Errorf("write audit log: %w", err)
	}
	return entry, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (l *Logger) List(ctx context.Context, q repository.Querier, limit int) ([]domain.AuditEntry, error) {
	entries, err := q.ListAuditEntries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, nil
}

func generateAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "audit-" + uuid.New().String()
	}
	return "audit-" + id.String()
}
