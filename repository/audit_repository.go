package repository

import (
	"context"

	"github.com/veyra-chat/server/models"
)

// AuditRepository, append-only audit log kayıtları için interface.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByServer(ctx context.Context, serverID string, limit int) ([]models.AuditLog, error)
}
