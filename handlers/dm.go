package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/services"
)

// DMHandler, direkt mesaj endpoint'lerini yöneten struct.
type DMHandler struct {
	dmService services.DMService
}

// NewDMHandler, constructor.
func NewDMHandler(dmService services.DMService) *DMHandler {
	return &DMHandler{dmService: dmService}
}

// createConversationRequest, POST /api/dms body'si.
type createConversationRequest struct {
	UserID string `json:"user_id"`
}

// ListConversations godoc
// GET /api/dms
func (h *DMHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	conversations, err := h.dmService.ListConversations(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conversations)
}

// CreateOrGetConversation godoc
// POST /api/dms
// Body: { "user_id": "..." }
// İki kullanıcı arasında en fazla bir konuşma olur — varsa o döner.
func (h *DMHandler) CreateOrGetConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user_id is required")
		return
	}

	conversation, err := h.dmService.CreateOrGetConversation(r.Context(), user.ID, req.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conversation)
}

// ListMessages godoc
// GET /api/dms/{conversationId}/messages?before=&limit=
// Cursor-based pagination: before parametresi mesaj ID'sidir,
// o mesajdan eski mesajlar döner.
func (h *DMHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	beforeID := r.URL.Query().Get("before")
	limit := parseLimit(r, 50)

	messages, err := h.dmService.ListMessages(r.Context(),
		r.PathValue("conversationId"), user.ID, beforeID, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messages)
}

// SendMessage godoc
// POST /api/dms/{conversationId}/messages
// Arkadaşlık, blok ve spam guard kontrollerinin tamamı service'te.
func (h *DMHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateDirectMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.dmService.SendMessage(r.Context(),
		r.PathValue("conversationId"), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, message)
}

// EditMessage godoc
// PATCH /api/dms/messages/{messageId}
// Sadece gönderen düzenleyebilir; edited_at damgalanır.
func (h *DMHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateDirectMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.dmService.EditMessage(r.Context(), r.PathValue("messageId"), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, message)
}

// DeleteMessage godoc
// DELETE /api/dms/messages/{messageId}
// Mesaj içeriğindeki upload URL'leri cleanup listesi olarak döner.
func (h *DMHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	urls, err := h.dmService.DeleteMessage(r.Context(), r.PathValue("messageId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"message":      "message deleted",
		"cleanup_urls": urls,
	})
}
