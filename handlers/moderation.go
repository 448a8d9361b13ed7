package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/services"
)

// ModerationHandler, ban / voice timeout / voice action endpoint'lerini
// yöneten struct. Yetki kontrolleri service katmanındadır.
type ModerationHandler struct {
	moderationService services.ModerationService
}

// NewModerationHandler, constructor.
func NewModerationHandler(moderationService services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// Ban godoc
// POST /api/servers/{serverId}/bans/{userId}
// Body: { "reason": "..." } — opsiyonel.
// Ban atılınca üyelik kaydı da silinir.
func (h *ModerationHandler) Ban(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	restriction, err := h.moderationService.BanUser(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("userId"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, restriction)
}

// Unban godoc
// DELETE /api/servers/{serverId}/bans/{userId}
// Sadece admin (veya owner). Ban kaldırılınca kullanıcı default
// member rolüyle tekrar üye yapılır.
func (h *ModerationHandler) Unban(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	err := h.moderationService.RevokeBan(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("userId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "ban revoked"})
}

// ListBans godoc
// GET /api/servers/{serverId}/bans
func (h *ModerationHandler) ListBans(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	bans, err := h.moderationService.ListBans(r.Context(), r.PathValue("serverId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, bans)
}

// TimeoutVoice godoc
// POST /api/servers/{serverId}/voice-timeouts/{userId}
// Body: { "minutes": 10, "reason": "..." } — süre [1, 4320] aralığına clamp edilir.
func (h *ModerationHandler) TimeoutVoice(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.TimeoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	restriction, err := h.moderationService.TimeoutVoice(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("userId"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, restriction)
}

// moveVoiceRequest, POST .../voice-moves/{userId} body'si.
type moveVoiceRequest struct {
	ChannelID string `json:"channel_id"`
}

// KickFromVoice godoc
// POST /api/servers/{serverId}/voice-kicks/{userId}
// Kuyruğa kick action ekler — hedef client sıradaki action'ı çekip uygular.
func (h *ModerationHandler) KickFromVoice(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	err := h.moderationService.KickFromVoice(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("userId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusAccepted, map[string]string{"message": "voice kick queued"})
}

// MoveToVoice godoc
// POST /api/servers/{serverId}/voice-moves/{userId}
// Body: { "channel_id": "..." } — hedef kanal aynı sunucuda ve ses
// tipinde olmalı.
func (h *ModerationHandler) MoveToVoice(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req moveVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChannelID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "channel_id is required")
		return
	}

	err := h.moderationService.MoveToVoice(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("userId"), req.ChannelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusAccepted, map[string]string{"message": "voice move queued"})
}

// NextVoiceAction godoc
// POST /api/servers/{serverId}/voice-actions/next
// Kullanıcının kendi kuyruğundaki en eski işlenmemiş action'ı atomik
// olarak tüketir. Kuyruk boşsa data null döner — client polling'i
// buna göre durdurur. At-most-once: aynı action iki kez teslim edilmez.
func (h *ModerationHandler) NextVoiceAction(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	action, err := h.moderationService.ConsumeNextVoiceAction(r.Context(),
		r.PathValue("serverId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, action)
}
