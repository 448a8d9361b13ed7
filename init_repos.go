// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository aynı *sql.DB bağlantısını alır ve interface döner.
// main.go'daki wire-up'ı modülerleştirmek için bu dosyaya taşındı.
package main

import (
	"database/sql"

	"github.com/veyra-chat/server/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı ayrı değişkenler yerine tek struct kullanmak
// fonksiyon imzalarını temiz tutar ve yeni repository eklendiğinde
// sadece struct + initRepositories güncellenir.
type Repositories struct {
	User        repository.UserRepository
	Server      repository.ServerRepository
	Member      repository.MemberRepository
	Category    repository.CategoryRepository
	Channel     repository.ChannelRepository
	Restriction repository.RestrictionRepository
	Invite      repository.InviteRepository
	VoiceAction repository.VoiceActionRepository
	DM          repository.DMRepository
	Friendship  repository.FriendshipRepository
	Audit       repository.AuditRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
//
// Her NewSQLite* fonksiyonu aynı *sql.DB'yi alır — Go'nun sql.DB'si
// thread-safe connection pool'dur, paylaşılması güvenlidir.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:        repository.NewSQLiteUserRepo(conn),
		Server:      repository.NewSQLiteServerRepo(conn),
		Member:      repository.NewSQLiteMemberRepo(conn),
		Category:    repository.NewSQLiteCategoryRepo(conn),
		Channel:     repository.NewSQLiteChannelRepo(conn),
		Restriction: repository.NewSQLiteRestrictionRepo(conn),
		Invite:      repository.NewSQLiteInviteRepo(conn),
		VoiceAction: repository.NewSQLiteVoiceActionRepo(conn),
		DM:          repository.NewSQLiteDMRepo(conn),
		Friendship:  repository.NewSQLiteFriendshipRepo(conn),
		Audit:       repository.NewSQLiteAuditRepo(conn),
	}
}
