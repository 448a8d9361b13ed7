package repository

import (
	"context"

	"github.com/veyra-chat/server/models"
)

// MemberRepository, sunucu üyelikleri için interface.
//
// Upsert hem rol atamasında hem davet kabulünde kullanılır:
// kayıt yoksa oluşturur, varsa rol ve flag'leri günceller.
type MemberRepository interface {
	Upsert(ctx context.Context, member *models.ServerMember) error
	Get(ctx context.Context, serverID, userID string) (*models.ServerMember, error)
	List(ctx context.Context, serverID string) ([]models.ServerMember, error)
	Delete(ctx context.Context, serverID, userID string) error
	// Exists, Get'ten ucuzdur — sadece üyelik kontrolü gereken yollar için.
	Exists(ctx context.Context, serverID, userID string) (bool, error)
	// HasElevatedRoleAnywhere, kullanıcının herhangi bir sunucuda admin
	// veya moderator olup olmadığını döner. DM block bypass kuralı kullanır.
	HasElevatedRoleAnywhere(ctx context.Context, userID string) (bool, error)
}
