// Package models — ServerMember domain modeli.
//
// ServerMember, kullanıcı ↔ sunucu üyelik ilişkisini temsil eder.
// Bir kullanıcı birden fazla sunucuya üye olabilir.
// DB'deki "server_members" tablosunun Go karşılığıdır.
package models

import "time"

// ServerMember, bir kullanıcının bir sunucuya üyeliğini temsil eder.
// (server_id, user_id) çifti unique'tir.
type ServerMember struct {
	ServerID string         `json:"server_id"`
	UserID   string         `json:"user_id"`
	Role     Role           `json:"role"`
	Flags    ModeratorFlags `json:"flags"`
	JoinedAt time.Time      `json:"joined_at"`
}

// Moderator capability kontrolleri.
// Admin her capability'ye örtük olarak sahiptir — Role.Allowed basamaklaması
// bunu tek noktada uygular. Member için flag'ler her zaman false'tur.

// CanRemoveMembers, üyeyi sunucudan çıkarma yetkisi.
func (m *ServerMember) CanRemoveMembers() bool {
	return m.Role.Allowed(m.Flags.CanRemoveMembers, false)
}

// CanBanUsers, ban yetkisi.
func (m *ServerMember) CanBanUsers() bool {
	return m.Role.Allowed(m.Flags.CanBanUsers, false)
}

// CanTimeoutVoice, ses timeout yetkisi.
func (m *ServerMember) CanTimeoutVoice() bool {
	return m.Role.Allowed(m.Flags.CanTimeoutVoice, false)
}

// CanDeleteMessages, başkalarının mesajlarını silme yetkisi.
func (m *ServerMember) CanDeleteMessages() bool {
	return m.Role.Allowed(m.Flags.CanDeleteMessages, false)
}

// CanKickFromVoice, ses kanalından atma yetkisi.
func (m *ServerMember) CanKickFromVoice() bool {
	return m.Role.Allowed(m.Flags.CanKickFromVoice, false)
}

// CanMoveVoiceUsers, kullanıcıyı başka ses kanalına taşıma yetkisi.
func (m *ServerMember) CanMoveVoiceUsers() bool {
	return m.Role.Allowed(m.Flags.CanMoveVoiceUsers, false)
}

// CanManageInvites, davet kodu oluşturma/silme yetkisi.
// Sunucunun allow_member_invites policy'si ayrıca member'lara da
// davet oluşturma izni verebilir — o kontrol service katmanında
// Server.AllowsInviteCreate ile birleştirilir.
func (m *ServerMember) CanManageInvites() bool {
	return m.Role.Allowed(m.Flags.CanManageInvites, false)
}

// UpsertRoleRequest, rol atama isteği.
// Flags sadece moderator rolünde anlamlıdır; diğer rollerde service
// katmanı flag'leri sıfırlar.
type UpsertRoleRequest struct {
	Role  Role           `json:"role"`
	Flags ModeratorFlags `json:"flags"`
}

// NewDefaultMember, varsayılan member rolüyle yeni üyelik kaydı oluşturur.
// Davet kabulü ve ban kaldırma sonrası rejoin bu kaydı kullanır.
func NewDefaultMember(serverID, userID string) *ServerMember {
	return &ServerMember{
		ServerID: serverID,
		UserID:   userID,
		Role:     RoleMember,
	}
}
