package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/services"
)

// ChannelHandler, kanal ve kategori CRUD endpoint'lerini yöneten struct.
// İki service'i birden taşır — route yüzeyi küçük olduğu için ayrı
// handler'a bölmeye gerek yok.
type ChannelHandler struct {
	channelService  services.ChannelService
	categoryService services.CategoryService
}

// NewChannelHandler, constructor.
func NewChannelHandler(channelService services.ChannelService, categoryService services.CategoryService) *ChannelHandler {
	return &ChannelHandler{
		channelService:  channelService,
		categoryService: categoryService,
	}
}

// CreateChannel godoc
// POST /api/servers/{serverId}/channels
// Owner veya admin. Yeni kanal default flag'lerle doğar.
func (h *ChannelHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.channelService.Create(r.Context(), r.PathValue("serverId"), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, channel)
}

// UpdateChannel godoc
// PATCH /api/servers/{serverId}/channels/{channelId}
// Partial update — isim, kategori ve izin matrisi hücreleri.
func (h *ChannelHandler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.channelService.Update(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("channelId"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channel)
}

// DeleteChannel godoc
// DELETE /api/servers/{serverId}/channels/{channelId}
func (h *ChannelHandler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	urls, err := h.channelService.Delete(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("channelId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"message":      "channel deleted",
		"cleanup_urls": urls,
	})
}

// authorizeMessageRequest, kanal mesajı kabul kararı isteği.
type authorizeMessageRequest struct {
	Content       string `json:"content"`
	HasAttachment bool   `json:"has_attachment"`
}

// AuthorizeMessage godoc
// POST /api/servers/{serverId}/channels/{channelId}/messages/authorize
// Gerçek zamanlı akış mesajı dağıtmadan önce izin + spam kararını buradan
// alır. 204 = kabul; Forbidden/429 = red.
func (h *ChannelHandler) AuthorizeMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req authorizeMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.channelService.AuthorizeMessage(r.Context(),
		r.PathValue("serverId"), r.PathValue("channelId"), user.ID, req.Content, req.HasAttachment)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeMessageDeleteRequest, kanal mesajı silme kararı isteği.
type authorizeMessageDeleteRequest struct {
	AuthorID string `json:"author_id"`
}

// AuthorizeMessageDelete godoc
// POST /api/servers/{serverId}/channels/{channelId}/messages/authorize-delete
// 204 = silme kabul; kendi mesajı kanal erişimiyle, başkasının mesajı
// delete iznine bağlı.
func (h *ChannelHandler) AuthorizeMessageDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req authorizeMessageDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.channelService.AuthorizeMessageDelete(r.Context(),
		r.PathValue("serverId"), r.PathValue("channelId"), user.ID, req.AuthorID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateCategory godoc
// POST /api/servers/{serverId}/categories
// Sadece owner.
func (h *ChannelHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), r.PathValue("serverId"), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, category)
}

// UpdateCategory godoc
// PATCH /api/servers/{serverId}/categories/{categoryId}
func (h *ChannelHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Update(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("categoryId"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, category)
}

// DeleteCategory godoc
// DELETE /api/servers/{serverId}/categories/{categoryId}
// Kategorideki kanallar silinmez, kategorisiz kalır.
func (h *ChannelHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	err := h.categoryService.Delete(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("categoryId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
