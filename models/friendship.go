// Package models — Arkadaşlık grafı domain modelleri.
//
// Üç ayrı kayıt türü vardır:
//   - DirectFriendRequest: 3 durumlu state machine (pending → accepted|rejected,
//     ikisi de terminal). Sırasız çift başına en fazla bir pending istek olabilir.
//   - DirectFriend: yönlü edge. Kabul iki yönü birden atomik yazar —
//     ilişki fiilen simetriktir.
//   - DirectBlock: yönlü edge. target→blocker yönündeki gönderimi engeller.
package models

import (
	"fmt"
	"strings"
	"time"
)

// FriendRequestStatus, istek durumunu temsil eden kapalı tip.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// DirectFriendRequest, bir arkadaşlık isteğini temsil eder.
type DirectFriendRequest struct {
	ID          string              `json:"id"`
	RequesterID string              `json:"requester_id"`
	ReceiverID  string              `json:"receiver_id"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	ResolvedAt  *time.Time          `json:"resolved_at"`
}

// DirectFriend, yönlü bir arkadaşlık edge'ini temsil eder.
type DirectFriend struct {
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DirectBlock, yönlü bir engelleme edge'ini temsil eder.
// blocker_id engeli koyan, blocked_id hedeftir.
type DirectBlock struct {
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SendFriendRequestRequest, arkadaşlık isteği gönderme payload'ı.
// Username ile arama yapılır — ID frontend'de bilinmeyebilir.
type SendFriendRequestRequest struct {
	Username string `json:"username"`
}

// Validate, SendFriendRequestRequest kontrolü.
func (r *SendFriendRequestRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}
