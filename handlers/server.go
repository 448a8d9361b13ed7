package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/services"
)

// ServerHandler, sunucu CRUD endpoint'lerini yöneten struct.
type ServerHandler struct {
	serverService services.ServerService
	auditService  services.AuditService
}

// NewServerHandler, constructor.
func NewServerHandler(serverService services.ServerService, auditService services.AuditService) *ServerHandler {
	return &ServerHandler{
		serverService: serverService,
		auditService:  auditService,
	}
}

// Create godoc
// POST /api/servers
// Oluşturan kullanıcı owner olur; varsayılan kategori ve kanallar
// service katmanında tek transaction içinde kurulur.
func (h *ServerHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	server, err := h.serverService.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, server)
}

// List godoc
// GET /api/servers
// Kullanıcının üye olduğu sunucuları döner.
func (h *ServerHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	servers, err := h.serverService.ListForUser(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, servers)
}

// Get godoc
// GET /api/servers/{serverId}
func (h *ServerHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	server, err := h.serverService.Get(r.Context(), r.PathValue("serverId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, server)
}

// UpdateSettings godoc
// PATCH /api/servers/{serverId}/settings
// Partial update — body'de gelen alanlar güncellenir, gelmeyenler korunur.
// Hangi alanın hangi rol tarafından değiştirilebileceği service'te
// üç kademede kontrol edilir.
func (h *ServerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateServerSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	server, err := h.serverService.UpdateSettings(r.Context(), r.PathValue("serverId"), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, server)
}

// Delete godoc
// DELETE /api/servers/{serverId}
// Sadece owner silebilir. Response'ta silinmesi gereken asset URL'leri
// döner — blob temizliği client-tarafı bir worker'ın işidir.
func (h *ServerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	urls, err := h.serverService.Delete(r.Context(), r.PathValue("serverId"), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"message":      "server deleted",
		"cleanup_urls": urls,
	})
}

// authorizeAssetRequest, asset aksiyonu yetki sorgusu isteği.
type authorizeAssetRequest struct {
	Action string `json:"action"`
}

// AuthorizeAsset godoc
// POST /api/servers/{serverId}/assets/authorize
// Blob collaborator'ı upload/silme öncesi yetkiyi buradan sorar.
// 204 = izinli.
func (h *ServerHandler) AuthorizeAsset(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req authorizeAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.serverService.AuthorizeAssetAction(r.Context(),
		r.PathValue("serverId"), user.ID, models.AssetAction(req.Action))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuditLogs godoc
// GET /api/servers/{serverId}/audit-logs?limit=
// Owner veya admin görebilir.
func (h *ServerHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	limit := parseLimit(r, 100)
	logs, err := h.auditService.List(r.Context(), r.PathValue("serverId"), user.ID, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, logs)
}
