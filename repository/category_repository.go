package repository

import (
	"context"

	"github.com/veyra-chat/server/models"
)

// CategoryRepository, kanal kategorileri için interface.
// Kategori silindiğinde altındaki kanallar FK (ON DELETE SET NULL) ile
// kategorisiz kalır — kanal silinmez.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	ListByServer(ctx context.Context, serverID string) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}
