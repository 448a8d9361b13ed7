// Package models — ServerVoiceAction domain modeli.
//
// Ses moderasyon komutları (kick, move) senkron uygulanmaz — harici medya
// servisi bu sunucunun doğrudan collaborator'ı değildir. Komut bir kuyruğa
// yazılır, aktif ses oturumu poll edip uygular.
//
// Teslimat modeli:
// - (server, user) scope'u içinde FIFO (created_at sırası)
// - At-most-once: consume, handled_at'i koşullu UPDATE ile işaretler;
//   yarışan ikinci poll aynı satırı alamaz
// - Teslimat deadline'ı veya retry yoktur — komut consume edilene kadar bekler
package models

import "time"

// VoiceActionType, kuyruklanan komutun türü.
type VoiceActionType string

const (
	VoiceActionKick VoiceActionType = "kick"
	VoiceActionMove VoiceActionType = "move"
)

// ServerVoiceAction, bir (server, user) hedefli kuyruklanmış ses komutu.
// TargetChannelID sadece move için doludur.
type ServerVoiceAction struct {
	ID              string          `json:"id"`
	ServerID        string          `json:"server_id"`
	UserID          string          `json:"user_id"`
	Action          VoiceActionType `json:"action"`
	TargetChannelID *string         `json:"target_channel_id"`
	ActorID         string          `json:"actor_id"`
	CreatedAt       time.Time       `json:"created_at"`
	HandledAt       *time.Time      `json:"handled_at"`
}
