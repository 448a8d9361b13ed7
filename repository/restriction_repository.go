package repository

import (
	"context"
	"time"

	"github.com/veyra-chat/server/models"
)

// RestrictionRepository, ban/timeout kayıtları için interface.
//
// Expiry lazy'dir: süresi geçmiş kayıt DB'de durur, aktiflik her okumada
// değerlendirilir. Arka plan temizliği yoktur.
type RestrictionRepository interface {
	Create(ctx context.Context, restriction *models.ServerRestriction) error
	// FindActive, verilen (server, user, type) için şu anda aktif kısıtlamayı
	// döner; yoksa pkg.ErrNotFound.
	FindActive(ctx context.Context, serverID, userID string, typ models.RestrictionType, now time.Time) (*models.ServerRestriction, error)
	// Revoke, aktif kısıtlamayı geri alır. Zaten revoke edilmişse ErrNotFound.
	Revoke(ctx context.Context, id string, now time.Time) error
	ListActiveByServer(ctx context.Context, serverID string, typ models.RestrictionType, now time.Time) ([]models.ServerRestriction, error)
}
