package handlers

import (
	"net/http"

	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/services"
)

// InviteHandler, davet kodu endpoint'lerini yöneten struct.
type InviteHandler struct {
	inviteService services.InviteService
}

// NewInviteHandler, constructor.
func NewInviteHandler(inviteService services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Create godoc
// POST /api/servers/{serverId}/invites
// Sunucu başına en fazla 10 aktif davet olabilir; policy açıksa
// member'lar da oluşturabilir.
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	invite, err := h.inviteService.Create(r.Context(), r.PathValue("serverId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, invite)
}

// List godoc
// GET /api/servers/{serverId}/invites
func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	invites, err := h.inviteService.List(r.Context(), r.PathValue("serverId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, invites)
}

// Revoke godoc
// DELETE /api/servers/{serverId}/invites/{code}
func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	err := h.inviteService.Revoke(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("code"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "invite revoked"})
}

// Accept godoc
// POST /api/invites/{code}/accept
// Membership middleware'ından GEÇMEZ — kullanıcı henüz üye değil.
// Banlıysa veya placeholder hesapsa kabul reddedilir; zaten üyeyse
// idempotent olarak mevcut sunucu döner.
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	server, err := h.inviteService.Accept(r.Context(), r.PathValue("code"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, server)
}
