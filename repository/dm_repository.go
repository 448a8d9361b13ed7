package repository

import (
	"context"
	"time"

	"github.com/veyra-chat/server/models"
)

// DMRepository, DM konuşmaları ve mesajları için interface.
//
// Konuşma kimliği kanonik çifttir: GetConversationByPair ve
// CreateConversation çağrılmadan önce models.CanonicalPair uygulanmış olmalı.
type DMRepository interface {
	// Conversation işlemleri
	CreateConversation(ctx context.Context, conv *models.DirectConversation) error
	GetConversationByID(ctx context.Context, id string) (*models.DirectConversation, error)
	GetConversationByPair(ctx context.Context, user1ID, user2ID string) (*models.DirectConversation, error)
	ListConversations(ctx context.Context, userID string) ([]models.DirectConversation, error)

	// Mesaj işlemleri
	CreateMessage(ctx context.Context, msg *models.DirectMessage) error
	GetMessageByID(ctx context.Context, id string) (*models.DirectMessage, error)
	// ListMessages, cursor-based pagination: beforeID boşsa en yeni sayfa.
	ListMessages(ctx context.Context, conversationID string, beforeID string, limit int) ([]models.DirectMessage, error)
	UpdateMessageContent(ctx context.Context, id, content string, editedAt *time.Time) error
	DeleteMessage(ctx context.Context, id string) error
	// FindMarkerMessage, friend-request system marker'ını taşıyan mesajı bulur.
	// Durum değiştiğinde marker yerinde yeniden yazılır.
	FindMarkerMessage(ctx context.Context, conversationID, requestID string) (*models.DirectMessage, error)
}
