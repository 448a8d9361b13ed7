// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
//
// Sıralama kuralı: auditService diğer service'lerden ÖNCE oluşturulmalı —
// moderasyon ve yapılandırma service'leri audit kaydı düşer.
package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/veyra-chat/server/config"
	"github.com/veyra-chat/server/pkg/spamguard"
	"github.com/veyra-chat/server/services"
	"github.com/veyra-chat/server/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth       services.AuthService
	Audit      services.AuditService
	Server     services.ServerService
	Member     services.MemberService
	Moderation services.ModerationService
	Invite     services.InviteService
	Category   services.CategoryService
	Channel    services.ChannelService
	DM         services.DMService
	Friendship services.FriendshipService
	Voice      services.VoiceService
}

// initServices, tüm service'leri repository ve hub dependency'leri ile oluşturur.
func initServices(conn *sql.DB, repos *Repositories, hub *ws.Hub, cfg *config.Config) (*Services, error) {
	guard, err := initSpamGuard(cfg)
	if err != nil {
		return nil, err
	}

	auditService := services.NewAuditService(repos.Audit, repos.Member, repos.Server)
	// Friendship, ilk-referans hesap açılışı için auth'a bağımlıdır.
	authService := services.NewAuthService(repos.User, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	return &Services{
		Auth:       authService,
		Audit:      auditService,
		Server:     services.NewServerService(conn, repos.Server, repos.Member, hub, auditService),
		Member:     services.NewMemberService(repos.Server, repos.Member, repos.Category, repos.Channel, hub, auditService),
		Moderation: services.NewModerationService(conn, repos.Server, repos.Member, repos.Channel, repos.Restriction, repos.VoiceAction, repos.User, hub, auditService),
		Invite:     services.NewInviteService(repos.Server, repos.Member, repos.User, repos.Invite, repos.Restriction, hub, auditService),
		Category:   services.NewCategoryService(repos.Server, repos.Category, repos.Member, hub, auditService),
		Channel:    services.NewChannelService(repos.Server, repos.Channel, repos.Category, repos.Member, guard, hub, auditService),
		DM:         services.NewDMService(repos.DM, repos.Friendship, repos.Member, repos.User, guard, hub),
		Friendship: services.NewFriendshipService(conn, repos.Friendship, repos.DM, repos.User, authService, hub),
		Voice:      services.NewVoiceService(repos.Server, repos.Member, repos.Channel, repos.Restriction, repos.User, cfg.LiveKit),
	}, nil
}

// initSpamGuard, spam guard'ı store seçimiyle birlikte kurar.
//
// REDIS_ADDR boşsa process-local in-memory store kullanılır — tek
// instance deploy için yeterli. Doluysa Redis store: birden fazla
// instance aynı sayaçları paylaşır, limit instance başına değil
// kullanıcı başına uygulanır.
func initSpamGuard(cfg *config.Config) (*spamguard.Guard, error) {
	opts := spamguard.Options{
		RateWindow:    time.Duration(cfg.SpamGuard.RateWindowMS) * time.Millisecond,
		MaxPerWindow:  cfg.SpamGuard.MaxPerWindow,
		DupWindow:     time.Duration(cfg.SpamGuard.DupWindowMS) * time.Millisecond,
		MaxIdentical:  cfg.SpamGuard.MaxIdentical,
		BlockDuration: time.Duration(cfg.SpamGuard.BlockDurationMS) * time.Millisecond,
	}

	var store spamguard.Store
	if cfg.Redis.Addr == "" {
		store = spamguard.NewMemoryStore()
		log.Println("[spamguard] using in-memory store")
	} else {
		redisStore, err := spamguard.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		store = redisStore
		log.Printf("[spamguard] using redis store at %s", cfg.Redis.Addr)
	}

	return spamguard.New(opts, spamguard.SystemClock{}, store), nil
}
