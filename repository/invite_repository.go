package repository

import (
	"context"
	"time"

	"github.com/veyra-chat/server/models"
)

// InviteRepository, davet kodları için interface.
//
// Create kod çakışmasında pkg.ErrConflict döner — service katmanı yeni
// rastgele kodla sınırlı sayıda yeniden dener.
type InviteRepository interface {
	Create(ctx context.Context, invite *models.ServerInvite) error
	GetByCode(ctx context.Context, code string) (*models.ServerInvite, error)
	ListActiveByServer(ctx context.Context, serverID string) ([]models.ServerInvite, error)
	CountActive(ctx context.Context, serverID string) (int, error)
	Revoke(ctx context.Context, code string, now time.Time) error
}
