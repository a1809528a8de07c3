package ports

import (
	"context"

	"github.com/bazaar/marketplace-api/internal/core/domain"
)

// AuditRecorder accepts audit events without blocking the calling flow.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}

// AuthEventRepository persists audit events.
type AuthEventRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}
