package repository

import (
	"context"

	"github.com/veyra-chat/server/models"
)

// ServerRepository, sunucu kayıtları için interface.
type ServerRepository interface {
	Create(ctx context.Context, server *models.Server) error
	GetByID(ctx context.Context, id string) (*models.Server, error)
	// ListForUser, kullanıcının üyesi olduğu sunucuları döner.
	ListForUser(ctx context.Context, userID string) ([]models.Server, error)
	Update(ctx context.Context, server *models.Server) error
	// Delete, sunucuyu ve FK cascade ile tüm alt kayıtlarını siler.
	Delete(ctx context.Context, id string) error
}
