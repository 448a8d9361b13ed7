package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// ModerationService, ban/timeout ve ses moderasyon komutları iş mantığı.
//
// Restriction yaşam döngüsü: aktif → revoked (açık) veya expired (örtük).
// Expiry lazy'dir — arka plan süpürme yoktur, aktiflik okuma anında
// değerlendirilir. Kick/move senkron uygulanmaz: komut kuyruğa yazılır,
// aktif ses oturumu poll edip uygular.
type ModerationService interface {
	// BanUser, aktif ban yoksa kısıtlama yazar ve üyeliği düşürür (atomik).
	BanUser(ctx context.Context, serverID, actorID, targetID string, req *models.BanRequest) (*models.ServerRestriction, error)

	// RevokeBan, aktif ban'ı geri alır ve varsayılan üyelik kaydını yeniden
	// oluşturur (admin-only). Üyelik zaten varsa idempotent.
	RevokeBan(ctx context.Context, serverID, actorID, targetID string) error

	// TimeoutVoice, süreli ses kısıtlaması yazar. Üyelik korunur.
	// Süre [1, 4320] dakikaya clamp edilir.
	TimeoutVoice(ctx context.Context, serverID, actorID, targetID string, req *models.TimeoutRequest) (*models.ServerRestriction, error)

	KickFromVoice(ctx context.Context, serverID, actorID, targetID string) error
	MoveToVoice(ctx context.Context, serverID, actorID, targetID, targetChannelID string) error

	// ConsumeNextVoiceAction, hedefin en eski bekleyen komutunu alır
	// (at-most-once). Bekleyen komut yoksa (nil, nil).
	ConsumeNextVoiceAction(ctx context.Context, serverID, userID string) (*models.ServerVoiceAction, error)

	ListBans(ctx context.Context, serverID, actorID string) ([]models.ServerRestriction, error)
}

type moderationService struct {
	db              *sql.DB // Transaction desteği (WithTx) için
	serverRepo      repository.ServerRepository
	memberRepo      repository.MemberRepository
	channelRepo     repository.ChannelRepository
	restrictionRepo repository.RestrictionRepository
	voiceActionRepo repository.VoiceActionRepository
	userRepo        repository.UserRepository
	hub             ws.EventPublisher
	audit           AuditService
}

// NewModerationService, constructor.
func NewModerationService(
	db *sql.DB,
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	channelRepo repository.ChannelRepository,
	restrictionRepo repository.RestrictionRepository,
	voiceActionRepo repository.VoiceActionRepository,
	userRepo repository.UserRepository,
	hub ws.EventPublisher,
	audit AuditService,
) ModerationService {
	return &moderationService{
		db:              db,
		serverRepo:      serverRepo,
		memberRepo:      memberRepo,
		channelRepo:     channelRepo,
		restrictionRepo: restrictionRepo,
		voiceActionRepo: voiceActionRepo,
		userRepo:        userRepo,
		hub:             hub,
		audit:           audit,
	}
}

func (s *moderationService) BanUser(ctx context.Context, serverID, actorID, targetID string, req *models.BanRequest) (*models.ServerRestriction, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	actor, err := s.resolveMember(ctx, server, actorID)
	if err != nil {
		return nil, err
	}

	// Hedef üye olmak zorunda değildir: ayrılmış bir kullanıcı da
	// banlanabilir, kısıtlama davetle geri dönüşü keser. Üye olmayan
	// hedef, kural kontrolünde varsayılan member rolüyle değerlendirilir.
	target, err := s.memberRepo.Get(ctx, serverID, targetID)
	if errors.Is(err, pkg.ErrNotFound) {
		if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
			return nil, err
		}
		target = models.NewDefaultMember(serverID, targetID)
	} else if err != nil {
		return nil, err
	}

	if !actor.CanBanUsers() {
		return nil, fmt.Errorf("%w: missing ban permission", pkg.ErrForbidden)
	}
	if err := assertTargetCanBeModerated(server, actor, target); err != nil {
		return nil, err
	}

	now := time.Now()

	restriction := &models.ServerRestriction{
		ServerID: serverID,
		UserID:   targetID,
		Type:     models.RestrictionServerBan,
		ActorID:  actorID,
	}
	if req.Reason != "" {
		restriction.Reason = &req.Reason
	}

	// Aktiflik kontrolü ve yazma aynı transaction'da — iki yarışan ban'dan
	// biri Conflict alır.
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRestrictionRepo := repository.NewSQLiteRestrictionRepo(tx)
		txMemberRepo := repository.NewSQLiteMemberRepo(tx)

		_, err := txRestrictionRepo.FindActive(ctx, serverID, targetID, models.RestrictionServerBan, now)
		if err == nil {
			return fmt.Errorf("%w: user is already banned", pkg.ErrConflict)
		}
		if !errors.Is(err, pkg.ErrNotFound) {
			return err
		}

		if err := txRestrictionRepo.Create(ctx, restriction); err != nil {
			return err
		}

		// Ban üyeliği düşürür. Hedef zaten üye değilse (ör. ayrılmış)
		// ban kaydı yine de yazılır.
		if err := txMemberRepo.Delete(ctx, serverID, targetID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditMemberBan,
		TargetID: targetID,
		Detail:   req.Reason,
	})

	s.hub.BroadcastToUser(targetID, ws.Event{
		Op:   ws.OpMemberBan,
		Data: map[string]string{"server_id": serverID},
	})

	return restriction, nil
}

func (s *moderationService) RevokeBan(ctx context.Context, serverID, actorID, targetID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}

	actor, err := s.resolveMember(ctx, server, actorID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: unban requires admin", pkg.ErrForbidden)
	}

	now := time.Now()

	active, err := s.restrictionRepo.FindActive(ctx, serverID, targetID, models.RestrictionServerBan, now)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: no active ban", pkg.ErrNotFound)
		}
		return err
	}

	// Revoke + rejoin atomik: ban kalkar, hedef varsayılan member olarak döner.
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRestrictionRepo := repository.NewSQLiteRestrictionRepo(tx)
		txMemberRepo := repository.NewSQLiteMemberRepo(tx)

		if err := txRestrictionRepo.Revoke(ctx, active.ID, now); err != nil {
			return err
		}
		return txMemberRepo.Upsert(ctx, models.NewDefaultMember(serverID, targetID))
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditMemberUnban,
		TargetID: targetID,
	})

	s.hub.BroadcastToUser(targetID, ws.Event{
		Op:   ws.OpMemberUnban,
		Data: map[string]string{"server_id": serverID},
	})

	return nil
}

func (s *moderationService) TimeoutVoice(ctx context.Context, serverID, actorID, targetID string, req *models.TimeoutRequest) (*models.ServerRestriction, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	server, actor, target, err := s.resolveModeration(ctx, serverID, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if !actor.CanTimeoutVoice() {
		return nil, fmt.Errorf("%w: missing voice-timeout permission", pkg.ErrForbidden)
	}
	if err := assertTargetCanBeModerated(server, actor, target); err != nil {
		return nil, err
	}

	now := time.Now()

	if _, err := s.restrictionRepo.FindActive(ctx, serverID, targetID, models.RestrictionVoiceTimeout, now); err == nil {
		return nil, fmt.Errorf("%w: an active voice timeout already exists", pkg.ErrConflict)
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	minutes := models.ClampTimeoutMinutes(req.Minutes)
	expiresAt := now.Add(time.Duration(minutes) * time.Minute)

	restriction := &models.ServerRestriction{
		ServerID:  serverID,
		UserID:    targetID,
		Type:      models.RestrictionVoiceTimeout,
		ActorID:   actorID,
		ExpiresAt: &expiresAt,
	}
	if req.Reason != "" {
		restriction.Reason = &req.Reason
	}

	if err := s.restrictionRepo.Create(ctx, restriction); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditVoiceTimeout,
		TargetID: targetID,
		Detail:   fmt.Sprintf("%d minutes", minutes),
	})

	s.hub.BroadcastToUser(targetID, ws.Event{
		Op:   ws.OpVoiceTimeout,
		Data: restriction,
	})

	return restriction, nil
}

func (s *moderationService) KickFromVoice(ctx context.Context, serverID, actorID, targetID string) error {
	server, actor, target, err := s.resolveModeration(ctx, serverID, actorID, targetID)
	if err != nil {
		return err
	}
	if !actor.CanKickFromVoice() {
		return fmt.Errorf("%w: missing voice-kick permission", pkg.ErrForbidden)
	}
	if err := assertTargetCanBeModerated(server, actor, target); err != nil {
		return err
	}

	action := &models.ServerVoiceAction{
		ServerID: serverID,
		UserID:   targetID,
		Action:   models.VoiceActionKick,
		ActorID:  actorID,
	}
	if err := s.voiceActionRepo.Enqueue(ctx, action); err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditVoiceKick,
		TargetID: targetID,
	})

	return nil
}

func (s *moderationService) MoveToVoice(ctx context.Context, serverID, actorID, targetID, targetChannelID string) error {
	server, actor, target, err := s.resolveModeration(ctx, serverID, actorID, targetID)
	if err != nil {
		return err
	}
	if !actor.CanMoveVoiceUsers() {
		return fmt.Errorf("%w: missing voice-move permission", pkg.ErrForbidden)
	}
	if err := assertTargetCanBeModerated(server, actor, target); err != nil {
		return err
	}

	// Hedef kanal: var, aynı sunucuda ve ses kanalı olmalı.
	channel, err := s.channelRepo.GetByID(ctx, targetChannelID)
	if err != nil {
		return err
	}
	if channel.ServerID != serverID {
		return fmt.Errorf("%w: channel belongs to another server", pkg.ErrValidation)
	}
	if channel.Type != models.ChannelTypeVoice {
		return fmt.Errorf("%w: target channel is not a voice channel", pkg.ErrValidation)
	}

	action := &models.ServerVoiceAction{
		ServerID:        serverID,
		UserID:          targetID,
		Action:          models.VoiceActionMove,
		TargetChannelID: &targetChannelID,
		ActorID:         actorID,
	}
	if err := s.voiceActionRepo.Enqueue(ctx, action); err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditVoiceMove,
		TargetID: targetID,
		Detail:   targetChannelID,
	})

	return nil
}

func (s *moderationService) ConsumeNextVoiceAction(ctx context.Context, serverID, userID string) (*models.ServerVoiceAction, error) {
	return s.voiceActionRepo.ConsumeNext(ctx, serverID, userID, time.Now())
}

func (s *moderationService) ListBans(ctx context.Context, serverID, actorID string) ([]models.ServerRestriction, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	actor, err := s.resolveMember(ctx, server, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanBanUsers() {
		return nil, fmt.Errorf("%w: missing ban permission", pkg.ErrForbidden)
	}

	return s.restrictionRepo.ListActiveByServer(ctx, serverID, models.RestrictionServerBan, time.Now())
}

// resolveModeration, sunucu + aktör + hedef üçlüsünü yükler.
func (s *moderationService) resolveModeration(ctx context.Context, serverID, actorID, targetID string) (*models.Server, *models.ServerMember, *models.ServerMember, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, nil, nil, err
	}

	actor, err := s.resolveMember(ctx, server, actorID)
	if err != nil {
		return nil, nil, nil, err
	}

	target, err := s.memberRepo.Get(ctx, serverID, targetID)
	if err != nil {
		return nil, nil, nil, err
	}

	return server, actor, target, nil
}

// resolveMember, aktörün üyeliğini döner; owner örtük admin'dir.
func (s *moderationService) resolveMember(ctx context.Context, server *models.Server, userID string) (*models.ServerMember, error) {
	member, err := s.memberRepo.Get(ctx, server.ID, userID)
	if err == nil {
		if server.OwnerID == userID {
			member.Role = models.RoleAdmin
		}
		return member, nil
	}
	if errors.Is(err, pkg.ErrNotFound) {
		if server.OwnerID == userID {
			return &models.ServerMember{ServerID: server.ID, UserID: userID, Role: models.RoleAdmin}, nil
		}
		return nil, fmt.Errorf("%w: not a member", pkg.ErrForbidden)
	}
	return nil, err
}
