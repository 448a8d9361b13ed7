// Package handlers — voice (ses) HTTP endpoint'i.
//
// İş mantığı (erişim zinciri, token basma) burada değil,
// VoiceService'te yaşar. Handler sadece HTTP köprüsüdür.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/services"
)

// VoiceHandler, ses kanalı erişim endpoint'ini yönetir.
type VoiceHandler struct {
	voiceService services.VoiceService
}

// NewVoiceHandler, constructor.
func NewVoiceHandler(voiceService services.VoiceService) *VoiceHandler {
	return &VoiceHandler{voiceService: voiceService}
}

// voiceTokenRequest, POST .../voice/token body'si.
type voiceTokenRequest struct {
	ChannelID string `json:"channel_id"`
}

// Token godoc
// POST /api/servers/{serverId}/voice/token
// Request:  { "channel_id": "abc123" }
// Response: { "token": "eyJ...", "url": "ws://localhost:7880", "room_name": "<serverId>:<channelId>" }
//
// Erişim zinciri (ban → timeout → kanal → rol) VoiceService.Authorize
// içinde değerlendirilir — handler sadece iletir.
func (h *VoiceHandler) Token(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req voiceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChannelID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "channel_id is required")
		return
	}

	resp, err := h.voiceService.IssueToken(r.Context(), r.PathValue("serverId"), req.ChannelID, user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, resp)
}
