package repository

import (
	"context"

	"github.com/veyra-chat/server/models"
)

// ChannelRepository, sunucu kanalları için interface.
type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	ListByServer(ctx context.Context, serverID string) ([]models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
	Delete(ctx context.Context, id string) error
}
