package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/services"
)

// FriendshipHandler, arkadaşlık ve blok endpoint'lerini yöneten struct.
type FriendshipHandler struct {
	friendshipService services.FriendshipService
}

// NewFriendshipHandler, constructor.
func NewFriendshipHandler(friendshipService services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: friendshipService}
}

// SendRequest godoc
// POST /api/friends/requests
// Body: { "username": "..." }
// İstek oluşturulunca DM konuşmasına marker mesajı düşer — alıcı
// isteği DM akışında görür.
func (h *FriendshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.friendshipService.SendRequest(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, request)
}

// Accept godoc
// POST /api/friends/requests/{requestId}/accept
// Sadece alıcı kabul edebilir; istek pending değilse 409.
func (h *FriendshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.friendshipService.Accept(r.Context(), r.PathValue("requestId"), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "friend request accepted"})
}

// Reject godoc
// POST /api/friends/requests/{requestId}/reject
func (h *FriendshipHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.friendshipService.Reject(r.Context(), r.PathValue("requestId"), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "friend request rejected"})
}

// ListPending godoc
// GET /api/friends/requests
// Kullanıcıya gelen bekleyen istekler.
func (h *FriendshipHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	requests, err := h.friendshipService.ListPendingRequests(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, requests)
}

// ListFriends godoc
// GET /api/friends
func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	friends, err := h.friendshipService.ListFriends(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, friends)
}

// Unfriend godoc
// DELETE /api/friends/{userId}
// Edge iki yönde de silinir; DM geçmişi yerinde kalır.
func (h *FriendshipHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.friendshipService.Unfriend(r.Context(), user.ID, r.PathValue("userId")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "friend removed"})
}

// Block godoc
// POST /api/friends/blocks/{userId}
// Blok tek yönlüdür ve idempotenttir.
func (h *FriendshipHandler) Block(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.friendshipService.Block(r.Context(), user.ID, r.PathValue("userId")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user blocked"})
}

// Unblock godoc
// DELETE /api/friends/blocks/{userId}
func (h *FriendshipHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.friendshipService.Unblock(r.Context(), user.ID, r.PathValue("userId")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user unblocked"})
}

// ListBlocks godoc
// GET /api/friends/blocks
func (h *FriendshipHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	blocks, err := h.friendshipService.ListBlocks(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, blocks)
}
