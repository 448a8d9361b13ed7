// Package models — Rol ve capability modeli.
//
// Üç katmanlı rol sistemi: admin > moderator > member.
// Admin her yetkiye örtük olarak sahiptir. Moderator'ün yetkileri
// üyelik kaydındaki bağımsız capability flag'leri ile belirlenir.
// Member için capability flag'i yoktur — kanal/sunucu flag'leri geçerlidir.
package models

// Role, bir sunucu üyesinin rolünü temsil eden kapalı tip.
// Go'da enum yoktur — typed string constant kullanılır; DB'de de
// aynı string saklanır.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// Valid, rol değerinin tanımlı üç değerden biri olup olmadığını kontrol eder.
// DB'den veya istekten gelen raw string'ler bu kontrolden geçer.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

// Allowed, admin/moderator/member basamaklamasının tek genel hali.
//
// Her capability için aynı üçlü kural geçerli:
//   - admin → her zaman izinli
//   - moderator → moderatorAllowed flag'i
//   - member → memberAllowed flag'i
//
// Kanal flag'leri, sunucu policy flag'leri ve moderator capability
// flag'leri hepsi bu fonksiyon üzerinden değerlendirilir — basamaklama
// capability başına kopyalanmaz.
func (r Role) Allowed(moderatorAllowed, memberAllowed bool) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleModerator:
		return moderatorAllowed
	case RoleMember:
		return memberAllowed
	}
	return false
}

// Elevated, rolün member'dan yüksek olup olmadığını döner.
// DM blok bypass kuralı bu kontrole dayanır.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleModerator
}

// ModeratorFlags, bir moderator'ün 7 bağımsız capability flag'ini taşır.
//
// Rol moderator değilse bu flag'lerin tamamı false tutulur —
// admin'e atanırken de temizlenir çünkü admin zaten örtük olarak
// hepsine sahiptir (admin implies all moderator capabilities).
type ModeratorFlags struct {
	CanRemoveMembers  bool `json:"can_remove_members"`
	CanBanUsers       bool `json:"can_ban_users"`
	CanTimeoutVoice   bool `json:"can_timeout_voice"`
	CanDeleteMessages bool `json:"can_delete_messages"`
	CanKickFromVoice  bool `json:"can_kick_from_voice"`
	CanMoveVoiceUsers bool `json:"can_move_voice_users"`
	CanManageInvites  bool `json:"can_manage_invites"`
}
