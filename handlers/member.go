package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/services"
)

// MemberHandler, sunucu üyelik endpoint'lerini yöneten struct.
type MemberHandler struct {
	memberService services.MemberService
}

// NewMemberHandler, constructor.
func NewMemberHandler(memberService services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List godoc
// GET /api/servers/{serverId}/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), r.PathValue("serverId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, members)
}

// UpsertRole godoc
// PUT /api/servers/{serverId}/members/{userId}/role
// Body: { "role": "moderator", "flags": { ... } }
// Flags sadece moderator rolünde kalıcıdır — diğer rollerde service
// katmanı toptan sıfırlar.
func (h *MemberHandler) UpsertRole(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpsertRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.memberService.UpsertRole(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("userId"), req.Role, req.Flags)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, member)
}

// Leave godoc
// DELETE /api/servers/{serverId}/members/me
// Owner sunucudan ayrılamaz — önce sunucuyu silmesi veya devretmesi gerekir.
func (h *MemberHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if err := h.memberService.Leave(r.Context(), r.PathValue("serverId"), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "left server"})
}

// Remove godoc
// DELETE /api/servers/{serverId}/members/{userId}
// remove_members yetkisi gerektirir.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	err := h.memberService.RemoveMember(r.Context(),
		r.PathValue("serverId"), user.ID, r.PathValue("userId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// VisibleChannels godoc
// GET /api/servers/{serverId}/channels
// Kullanıcının rolüyle görebildiği kanalları kategori gruplu döner.
// Kategorisiz kanallar listenin başında, boş kategoriler de dahildir.
func (h *MemberHandler) VisibleChannels(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	groups, err := h.memberService.VisibleChannels(r.Context(), r.PathValue("serverId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, groups)
}
