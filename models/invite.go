// Package models — ServerInvite domain modeli.
//
// Davet kodu rastgele opaque token'dır. Sunucu başına en fazla 10 aktif
// (revoke edilmemiş) davet bulunabilir. Kod çakışmasında oluşturma 5 kez
// yeniden denenir — rastgele değerin yenilenmesi çakışmayı çözer, bu yüzden
// retry sadece burada vardır.
package models

import "time"

// MaxActiveInvitesPerServer, sunucu başına eşzamanlı aktif davet limiti.
const MaxActiveInvitesPerServer = 10

// InviteCodeRetries, kod çakışmasında deneme sayısı.
const InviteCodeRetries = 5

// ServerInvite, bir davet kodunu temsil eder.
type ServerInvite struct {
	Code      string     `json:"code"`
	ServerID  string     `json:"server_id"`
	CreatorID string     `json:"creator_id"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at"` // nil = aktif
}

// IsActive, davetin hâlâ kullanılabilir olup olmadığını döner.
func (i *ServerInvite) IsActive() bool {
	return i.RevokedAt == nil
}
