package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// FriendshipService, arkadaşlık grafı iş mantığı.
//
// İstek yaşam döngüsü mesaj akışında görünür: SendRequest, çift
// konuşmasına "[friend_request:<id>:pending]" system marker'lı bir mesaj
// yazar; Accept/Reject marker'ı yerinde yeni duruma yeniden yazar.
// İstek kaydı ve marker aynı transaction'da değişir — ikisi asla ayrışmaz.
type FriendshipService interface {
	SendRequest(ctx context.Context, requesterID string, req *models.SendFriendRequestRequest) (*models.DirectFriendRequest, error)
	Accept(ctx context.Context, requestID, userID string) error
	Reject(ctx context.Context, requestID, userID string) error
	Unfriend(ctx context.Context, userID, otherUserID string) error
	Block(ctx context.Context, blockerID, blockedID string) error
	Unblock(ctx context.Context, blockerID, blockedID string) error
	ListFriends(ctx context.Context, userID string) ([]models.DirectFriend, error)
	ListPendingRequests(ctx context.Context, userID string) ([]models.DirectFriendRequest, error)
	ListBlocks(ctx context.Context, userID string) ([]models.DirectBlock, error)
}

type friendshipService struct {
	db             *sql.DB // Transaction desteği (WithTx) için
	friendshipRepo repository.FriendshipRepository
	dmRepo         repository.DMRepository
	userRepo       repository.UserRepository
	auth           AuthService
	hub            ws.EventPublisher
}

// NewFriendshipService, constructor.
func NewFriendshipService(
	db *sql.DB,
	friendshipRepo repository.FriendshipRepository,
	dmRepo repository.DMRepository,
	userRepo repository.UserRepository,
	auth AuthService,
	hub ws.EventPublisher,
) FriendshipService {
	return &friendshipService{
		db:             db,
		friendshipRepo: friendshipRepo,
		dmRepo:         dmRepo,
		userRepo:       userRepo,
		auth:           auth,
		hub:            hub,
	}
}

func (s *friendshipService) SendRequest(ctx context.Context, requesterID string, req *models.SendFriendRequestRequest) (*models.DirectFriendRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	// İlk referansta hesap açılır: bilinmeyen kullanıcı adına gelen istek,
	// sentinel hash'li placeholder hesabı oluşturur.
	receiver, err := s.auth.EnsureUser(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if receiver.ID == requesterID {
		return nil, fmt.Errorf("%w: cannot friend yourself", pkg.ErrValidation)
	}

	// Zaten arkadaşsa veya herhangi bir yönde pending istek varsa Conflict.
	friends, err := s.friendshipRepo.AreFriends(ctx, requesterID, receiver.ID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, fmt.Errorf("%w: already friends", pkg.ErrConflict)
	}

	if _, err := s.friendshipRepo.GetPendingBetween(ctx, requesterID, receiver.ID); err == nil {
		return nil, fmt.Errorf("%w: a pending request already exists", pkg.ErrConflict)
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	request := &models.DirectFriendRequest{
		RequesterID: requesterID,
		ReceiverID:  receiver.ID,
		Status:      models.FriendRequestPending,
	}

	// İstek kaydı + konuşma + marker mesajı atomik yazılır.
	user1, user2 := models.CanonicalPair(requesterID, receiver.ID)
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txFriendshipRepo := repository.NewSQLiteFriendshipRepo(tx)
		txDMRepo := repository.NewSQLiteDMRepo(tx)

		if err := txFriendshipRepo.CreateRequest(ctx, request); err != nil {
			return err
		}

		conv, err := txDMRepo.GetConversationByPair(ctx, user1, user2)
		if errors.Is(err, pkg.ErrNotFound) {
			conv = &models.DirectConversation{User1ID: user1, User2ID: user2}
			err = txDMRepo.CreateConversation(ctx, conv)
		}
		if err != nil {
			return err
		}

		marker := &models.DirectMessage{
			ConversationID: conv.ID,
			SenderID:       requesterID,
			Content:        models.FriendRequestMarker(request.ID, models.FriendRequestPending),
		}
		return txDMRepo.CreateMessage(ctx, marker)
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToUser(receiver.ID, ws.Event{Op: ws.OpFriendRequestCreate, Data: request})

	return request, nil
}

func (s *friendshipService) Accept(ctx context.Context, requestID, userID string) error {
	request, err := s.resolveIncoming(ctx, requestID, userID)
	if err != nil {
		return err
	}

	now := time.Now()

	// Tek transaction: istek accepted olur, iki yönlü arkadaş edge'i
	// yazılır, marker yeniden yazılır.
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txFriendshipRepo := repository.NewSQLiteFriendshipRepo(tx)
		txDMRepo := repository.NewSQLiteDMRepo(tx)

		if err := txFriendshipRepo.ResolveRequest(ctx, requestID, models.FriendRequestAccepted, now); err != nil {
			return err
		}
		if err := txFriendshipRepo.AddFriendEdge(ctx, request.RequesterID, request.ReceiverID); err != nil {
			return err
		}
		if err := txFriendshipRepo.AddFriendEdge(ctx, request.ReceiverID, request.RequesterID); err != nil {
			return err
		}

		return rewriteMarker(ctx, txDMRepo, request, models.FriendRequestAccepted)
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToUsers([]string{request.RequesterID, request.ReceiverID}, ws.Event{
		Op:   ws.OpFriendRequestAccept,
		Data: map[string]string{"request_id": requestID},
	})

	return nil
}

func (s *friendshipService) Reject(ctx context.Context, requestID, userID string) error {
	request, err := s.resolveIncoming(ctx, requestID, userID)
	if err != nil {
		return err
	}

	now := time.Now()

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txFriendshipRepo := repository.NewSQLiteFriendshipRepo(tx)
		txDMRepo := repository.NewSQLiteDMRepo(tx)

		if err := txFriendshipRepo.ResolveRequest(ctx, requestID, models.FriendRequestRejected, now); err != nil {
			return err
		}
		return rewriteMarker(ctx, txDMRepo, request, models.FriendRequestRejected)
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToUser(request.RequesterID, ws.Event{
		Op:   ws.OpFriendRequestDecline,
		Data: map[string]string{"request_id": requestID},
	})

	return nil
}

func (s *friendshipService) Unfriend(ctx context.Context, userID, otherUserID string) error {
	if err := s.friendshipRepo.RemoveFriendEdges(ctx, userID, otherUserID); err != nil {
		return err
	}

	s.hub.BroadcastToUsers([]string{userID, otherUserID}, ws.Event{
		Op:   ws.OpFriendRemove,
		Data: map[string]string{"user_id": userID, "friend_id": otherUserID},
	})

	return nil
}

func (s *friendshipService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return fmt.Errorf("%w: cannot block yourself", pkg.ErrValidation)
	}
	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		return err
	}
	return s.friendshipRepo.CreateBlock(ctx, blockerID, blockedID)
}

func (s *friendshipService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.friendshipRepo.DeleteBlock(ctx, blockerID, blockedID)
}

func (s *friendshipService) ListFriends(ctx context.Context, userID string) ([]models.DirectFriend, error) {
	return s.friendshipRepo.ListFriends(ctx, userID)
}

func (s *friendshipService) ListPendingRequests(ctx context.Context, userID string) ([]models.DirectFriendRequest, error) {
	return s.friendshipRepo.ListPendingForReceiver(ctx, userID)
}

func (s *friendshipService) ListBlocks(ctx context.Context, userID string) ([]models.DirectBlock, error) {
	return s.friendshipRepo.ListBlocks(ctx, userID)
}

// resolveIncoming, isteği yükler ve çağıranın receiver + isteğin pending
// olduğunu doğrular. Terminal durumlar değişmez.
func (s *friendshipService) resolveIncoming(ctx context.Context, requestID, userID string) (*models.DirectFriendRequest, error) {
	request, err := s.friendshipRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ReceiverID != userID {
		return nil, fmt.Errorf("%w: not the receiver of this request", pkg.ErrForbidden)
	}
	if request.Status != models.FriendRequestPending {
		return nil, fmt.Errorf("%w: request already resolved", pkg.ErrConflict)
	}
	return request, nil
}

// rewriteMarker, çift konuşmasındaki system marker'ını yeni duruma çevirir.
// Marker bulunamazsa sessizce geçilir — mesaj silinmiş olabilir.
func rewriteMarker(ctx context.Context, dmRepo repository.DMRepository, request *models.DirectFriendRequest, status models.FriendRequestStatus) error {
	user1, user2 := models.CanonicalPair(request.RequesterID, request.ReceiverID)

	conv, err := dmRepo.GetConversationByPair(ctx, user1, user2)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	marker, err := dmRepo.FindMarkerMessage(ctx, conv.ID, request.ID)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	content, rewritten := models.RewriteFriendRequestMarker(marker.Content, request.ID, status)
	if !rewritten {
		return nil
	}

	// editedAt nil: system yeniden yazımı kullanıcı düzenlemesi değildir.
	return dmRepo.UpdateMessageContent(ctx, marker.ID, content, nil)
}
