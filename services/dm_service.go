package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/pkg/spamguard"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// DMService, direct messaging iş mantığı.
//
// Gönderim zinciri: katılımcı kontrolü → blok kontrolü → arkadaşlık
// kontrolü → spam guard → insert → fan-out. Blok kontrolü yönlüdür:
// hedefin blok'u her zaman keser; göndericinin kendi outbound blok'u,
// gönderici herhangi bir sunucuda yükseltilmiş role sahipse bypass edilir
// (sadece kendi koyduğu engel — hedefin engeli asla bypass edilmez).
type DMService interface {
	CreateOrGetConversation(ctx context.Context, userID, otherUserID string) (*models.DirectConversation, error)
	ListConversations(ctx context.Context, userID string) ([]models.DirectConversation, error)
	ListMessages(ctx context.Context, conversationID, userID, beforeID string, limit int) ([]models.DirectMessage, error)
	SendMessage(ctx context.Context, conversationID, senderID string, req *models.CreateDirectMessageRequest) (*models.DirectMessage, error)
	EditMessage(ctx context.Context, messageID, userID string, req *models.UpdateDirectMessageRequest) (*models.DirectMessage, error)
	// DeleteMessage, mesajı siler (sadece gönderen) ve içeriğe gömülü
	// upload URL'lerini blob temizliği için döner.
	DeleteMessage(ctx context.Context, messageID, userID string) ([]string, error)
}

type dmService struct {
	dmRepo         repository.DMRepository
	friendshipRepo repository.FriendshipRepository
	memberRepo     repository.MemberRepository
	userRepo       repository.UserRepository
	guard          *spamguard.Guard
	hub            ws.EventPublisher
}

// NewDMService, constructor.
func NewDMService(
	dmRepo repository.DMRepository,
	friendshipRepo repository.FriendshipRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	guard *spamguard.Guard,
	hub ws.EventPublisher,
) DMService {
	return &dmService{
		dmRepo:         dmRepo,
		friendshipRepo: friendshipRepo,
		memberRepo:     memberRepo,
		userRepo:       userRepo,
		guard:          guard,
		hub:            hub,
	}
}

func (s *dmService) CreateOrGetConversation(ctx context.Context, userID, otherUserID string) (*models.DirectConversation, error) {
	if userID == otherUserID {
		return nil, fmt.Errorf("%w: cannot open a conversation with yourself", pkg.ErrValidation)
	}

	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, err
	}

	user1, user2 := models.CanonicalPair(userID, otherUserID)

	conv, err := s.dmRepo.GetConversationByPair(ctx, user1, user2)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	conv = &models.DirectConversation{User1ID: user1, User2ID: user2}
	if err := s.dmRepo.CreateConversation(ctx, conv); err != nil {
		if errors.Is(err, pkg.ErrConflict) {
			// Yarışan createOrGet aynı satırı önce yazdı.
			return s.dmRepo.GetConversationByPair(ctx, user1, user2)
		}
		return nil, err
	}

	s.hub.BroadcastToUsers([]string{user1, user2}, ws.Event{Op: ws.OpDMConversationCreate, Data: conv})

	return conv, nil
}

func (s *dmService) ListConversations(ctx context.Context, userID string) ([]models.DirectConversation, error) {
	return s.dmRepo.ListConversations(ctx, userID)
}

func (s *dmService) ListMessages(ctx context.Context, conversationID, userID, beforeID string, limit int) ([]models.DirectMessage, error) {
	conv, err := s.dmRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, pkg.ErrNotFound
	}

	return s.dmRepo.ListMessages(ctx, conversationID, beforeID, limit)
}

func (s *dmService) SendMessage(ctx context.Context, conversationID, senderID string, req *models.CreateDirectMessageRequest) (*models.DirectMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	conv, err := s.dmRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, pkg.ErrNotFound
	}

	targetID := conv.OtherParticipant(senderID)

	if err := s.checkBlocks(ctx, senderID, targetID); err != nil {
		return nil, err
	}

	// DM sadece arkadaşlar arasında akar.
	friends, err := s.friendshipRepo.AreFriends(ctx, senderID, targetID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, fmt.Errorf("%w: you are not friends with this user", pkg.ErrForbidden)
	}

	// Spam guard conversation bazında scope'lanır — bir konuşmadaki blok
	// diğer konuşmaları etkilemez.
	if err := s.guard.Check(ctx, conversationID, senderID, req.Content); err != nil {
		return nil, err
	}

	msg := &models.DirectMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        req.Content,
	}
	if err := s.dmRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.hub.BroadcastToUsers([]string{conv.User1ID, conv.User2ID}, ws.Event{Op: ws.OpDMMessageCreate, Data: msg})

	return msg, nil
}

func (s *dmService) EditMessage(ctx context.Context, messageID, userID string, req *models.UpdateDirectMessageRequest) (*models.DirectMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	msg, err := s.dmRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, fmt.Errorf("%w: only the sender may edit a message", pkg.ErrForbidden)
	}

	now := time.Now()
	if err := s.dmRepo.UpdateMessageContent(ctx, messageID, req.Content, &now); err != nil {
		return nil, err
	}
	msg.Content = req.Content
	msg.EditedAt = &now

	if conv, err := s.dmRepo.GetConversationByID(ctx, msg.ConversationID); err == nil {
		s.hub.BroadcastToUsers([]string{conv.User1ID, conv.User2ID}, ws.Event{Op: ws.OpDMMessageUpdate, Data: msg})
	}

	return msg, nil
}

func (s *dmService) DeleteMessage(ctx context.Context, messageID, userID string) ([]string, error) {
	msg, err := s.dmRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, fmt.Errorf("%w: only the sender may delete a message", pkg.ErrForbidden)
	}

	// Blob temizlik listesi silmeden önce toplanır — silmenin kendisi
	// caller'ın işidir ve başarısızlığı mutasyonu geri almaz.
	urls := models.ExtractUploadURLs(msg.Content)

	if err := s.dmRepo.DeleteMessage(ctx, messageID); err != nil {
		return nil, err
	}

	if conv, err := s.dmRepo.GetConversationByID(ctx, msg.ConversationID); err == nil {
		s.hub.BroadcastToUsers([]string{conv.User1ID, conv.User2ID}, ws.Event{
			Op:   ws.OpDMMessageDelete,
			Data: map[string]string{"conversation_id": msg.ConversationID, "message_id": messageID},
		})
	}

	return urls, nil
}

// checkBlocks, yönlü blok kurallarını uygular.
func (s *dmService) checkBlocks(ctx context.Context, senderID, targetID string) error {
	// Hedef göndericiyi engellediyse gönderim her zaman durur.
	blocked, err := s.friendshipRepo.IsBlocked(ctx, targetID, senderID)
	if err != nil {
		return err
	}
	if blocked {
		return fmt.Errorf("%w: this user has blocked you", pkg.ErrForbidden)
	}

	// Göndericinin kendi koyduğu engel de gönderimi durdurur — ancak
	// herhangi bir sunucuda yükseltilmiş rol bu tek yönü bypass eder.
	outbound, err := s.friendshipRepo.IsBlocked(ctx, senderID, targetID)
	if err != nil {
		return err
	}
	if outbound {
		elevated, err := s.memberRepo.HasElevatedRoleAnywhere(ctx, senderID)
		if err != nil {
			return err
		}
		if !elevated {
			return fmt.Errorf("%w: you have blocked this user", pkg.ErrForbidden)
		}
	}

	return nil
}
