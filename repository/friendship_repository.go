package repository

import (
	"context"
	"time"

	"github.com/veyra-chat/server/models"
)

// FriendshipRepository, arkadaşlık istekleri, arkadaş edge'leri ve
// blok edge'leri için interface.
//
// Arkadaşlık fiilen simetriktir ama yönlü edge olarak saklanır — kabul
// iki yönü birden yazar. Blok ise gerçekten yönlüdür.
type FriendshipRepository interface {
	// istek işlemleri
	CreateRequest(ctx context.Context, req *models.DirectFriendRequest) error
	GetRequestByID(ctx context.Context, id string) (*models.DirectFriendRequest, error)
	// GetPendingBetween, sırasız çift için bekleyen isteği her iki yönde arar.
	GetPendingBetween(ctx context.Context, userA, userB string) (*models.DirectFriendRequest, error)
	// ResolveRequest, pending → accepted|rejected geçişi yapar.
	// İstek pending değilse ErrNotFound — terminal durumlar değişmez.
	ResolveRequest(ctx context.Context, id string, status models.FriendRequestStatus, resolvedAt time.Time) error
	ListPendingForReceiver(ctx context.Context, receiverID string) ([]models.DirectFriendRequest, error)

	// arkadaş edge işlemleri
	AddFriendEdge(ctx context.Context, userID, friendID string) error
	RemoveFriendEdges(ctx context.Context, userA, userB string) error
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]models.DirectFriend, error)

	// blok işlemleri
	CreateBlock(ctx context.Context, blockerID, blockedID string) error
	DeleteBlock(ctx context.Context, blockerID, blockedID string) error
	IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error)
	ListBlocks(ctx context.Context, blockerID string) ([]models.DirectBlock, error)
}
