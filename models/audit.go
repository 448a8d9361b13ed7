// Package models — AuditLog domain modeli.
//
// Audit log append-only'dir ve fire-and-forget yazılır: kaydın başarısız
// olması asıl mutasyonu geri almaz, sadece log'lanır.
package models

import "time"

// Audit action sabitleri.
const (
	AuditMemberBan       = "member_ban"
	AuditMemberUnban     = "member_unban"
	AuditVoiceTimeout    = "voice_timeout"
	AuditVoiceKick       = "voice_kick"
	AuditVoiceMove       = "voice_move"
	AuditRoleChange      = "role_change"
	AuditMemberRemove    = "member_remove"
	AuditInviteCreate    = "invite_create"
	AuditInviteRevoke    = "invite_revoke"
	AuditChannelCreate   = "channel_create"
	AuditChannelDelete   = "channel_delete"
	AuditCategoryCreate  = "category_create"
	AuditCategoryDelete  = "category_delete"
	AuditSettingsUpdate  = "settings_update"
	AuditServerDelete    = "server_delete"
)

// AuditLog, bir moderasyon/yönetim aksiyonunun kaydı.
type AuditLog struct {
	ID          string    `json:"id"`
	ServerID    string    `json:"server_id"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	TargetID    string    `json:"target_id"`
	TargetLabel *string   `json:"target_label"`
	Detail      string    `json:"detail"`
	CreatedAt   time.Time `json:"created_at"`
}
