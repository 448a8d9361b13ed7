package repository

import (
	"context"
	"time"

	"github.com/veyra-chat/server/models"
)

// VoiceActionRepository, kuyruklanmış ses moderasyon komutları için interface.
//
// ConsumeNext, (server, user) scope'unda en eski işlenmemiş komutu alır ve
// handled_at'i koşullu UPDATE ile işaretler. Yarışan iki poll aynı komutu
// alamaz — kaybeden bir sonraki komuta geçer veya boş döner (at-most-once).
type VoiceActionRepository interface {
	Enqueue(ctx context.Context, action *models.ServerVoiceAction) error
	// ConsumeNext, bekleyen komut yoksa (nil, nil) döner.
	ConsumeNext(ctx context.Context, serverID, userID string, now time.Time) (*models.ServerVoiceAction, error)
}
