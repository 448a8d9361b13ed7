package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// InviteService, davet kodu yaşam döngüsü iş mantığı.
//
// Kod opaque rastgele token'dır. Sunucu başına en fazla 10 aktif davet
// olabilir. Kod çakışması rastgele değerin yenilenmesiyle çözüldüğü için
// oluşturma 5 kez yeniden denenir — core'daki tek retry budur.
type InviteService interface {
	Create(ctx context.Context, serverID, actorID string) (*models.ServerInvite, error)
	List(ctx context.Context, serverID, actorID string) ([]models.ServerInvite, error)
	Revoke(ctx context.Context, serverID, actorID, code string) error

	// Accept, daveti kullanarak kullanıcıyı sunucuya üye yapar.
	// Gereksinimler: revoke edilmemiş kod, gerçek şifreli hesap,
	// aktif ban yok. Zaten üye ise idempotent — mevcut rol korunur.
	Accept(ctx context.Context, code, userID string) (*models.Server, error)
}

type inviteService struct {
	serverRepo      repository.ServerRepository
	memberRepo      repository.MemberRepository
	userRepo        repository.UserRepository
	inviteRepo      repository.InviteRepository
	restrictionRepo repository.RestrictionRepository
	hub             ws.EventPublisher
	audit           AuditService
}

// NewInviteService, constructor.
func NewInviteService(
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	inviteRepo repository.InviteRepository,
	restrictionRepo repository.RestrictionRepository,
	hub ws.EventPublisher,
	audit AuditService,
) InviteService {
	return &inviteService{
		serverRepo:      serverRepo,
		memberRepo:      memberRepo,
		userRepo:        userRepo,
		inviteRepo:      inviteRepo,
		restrictionRepo: restrictionRepo,
		hub:             hub,
		audit:           audit,
	}
}

func (s *inviteService) Create(ctx context.Context, serverID, actorID string) (*models.ServerInvite, error) {
	server, member, err := s.resolveMember(ctx, serverID, actorID)
	if err != nil {
		return nil, err
	}

	// Yetki: can_manage_invites flag'i (admin örtük) veya sunucunun
	// allow_member_invites policy'si.
	if !member.CanManageInvites() && !server.AllowsInviteCreate(member.Role) {
		return nil, fmt.Errorf("%w: missing invite permission", pkg.ErrForbidden)
	}

	count, err := s.inviteRepo.CountActive(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if count >= models.MaxActiveInvitesPerServer {
		return nil, fmt.Errorf("%w: server already has %d active invites", pkg.ErrConflict, models.MaxActiveInvitesPerServer)
	}

	var invite *models.ServerInvite
	for attempt := 0; attempt < models.InviteCodeRetries; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, err
		}

		invite = &models.ServerInvite{
			Code:      code,
			ServerID:  serverID,
			CreatorID: actorID,
		}

		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			break
		}
		if !errors.Is(err, pkg.ErrConflict) {
			return nil, err
		}
		invite = nil // çakışma — yeni kodla dene
	}
	if invite == nil {
		return nil, fmt.Errorf("%w: could not generate a unique invite code", pkg.ErrConflict)
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditInviteCreate,
		TargetID: invite.Code,
	})

	return invite, nil
}

func (s *inviteService) List(ctx context.Context, serverID, actorID string) ([]models.ServerInvite, error) {
	_, member, err := s.resolveMember(ctx, serverID, actorID)
	if err != nil {
		return nil, err
	}
	if !member.CanManageInvites() {
		return nil, fmt.Errorf("%w: missing invite permission", pkg.ErrForbidden)
	}

	return s.inviteRepo.ListActiveByServer(ctx, serverID)
}

func (s *inviteService) Revoke(ctx context.Context, serverID, actorID, code string) error {
	_, member, err := s.resolveMember(ctx, serverID, actorID)
	if err != nil {
		return err
	}
	if !member.CanManageInvites() {
		return fmt.Errorf("%w: missing invite permission", pkg.ErrForbidden)
	}

	invite, err := s.inviteRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if invite.ServerID != serverID {
		return pkg.ErrNotFound
	}

	if err := s.inviteRepo.Revoke(ctx, code, time.Now()); err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditInviteRevoke,
		TargetID: code,
	})

	return nil
}

func (s *inviteService) Accept(ctx context.Context, code, userID string) (*models.Server, error) {
	invite, err := s.inviteRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !invite.IsActive() {
		return nil, fmt.Errorf("%w: invite has been revoked", pkg.ErrNotFound)
	}

	// Placeholder (sentinel hash'li) hesaplar davet kabul edemez.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasRealCredential() {
		return nil, fmt.Errorf("%w: account has no credentials", pkg.ErrForbidden)
	}

	server, err := s.serverRepo.GetByID(ctx, invite.ServerID)
	if err != nil {
		return nil, err
	}

	// Aktif ban davet kabulünü engeller.
	if _, err := s.restrictionRepo.FindActive(ctx, server.ID, userID, models.RestrictionServerBan, time.Now()); err == nil {
		return nil, fmt.Errorf("%w: banned from this server", pkg.ErrForbidden)
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	// Zaten üye ise rolüne dokunmadan başarı dön (idempotent).
	exists, err := s.memberRepo.Exists(ctx, server.ID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return server, nil
	}

	if err := s.memberRepo.Upsert(ctx, models.NewDefaultMember(server.ID, userID)); err != nil {
		return nil, err
	}

	s.hub.BroadcastToUsers(s.memberUserIDs(ctx, server.ID), ws.Event{
		Op:   ws.OpMemberJoin,
		Data: map[string]string{"server_id": server.ID, "user_id": userID},
	})

	return server, nil
}

func (s *inviteService) resolveMember(ctx context.Context, serverID, actorID string) (*models.Server, *models.ServerMember, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, nil, err
	}

	member, err := s.memberRepo.Get(ctx, serverID, actorID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) && server.OwnerID == actorID {
			return server, &models.ServerMember{ServerID: serverID, UserID: actorID, Role: models.RoleAdmin}, nil
		}
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: not a member", pkg.ErrForbidden)
		}
		return nil, nil, err
	}
	if server.OwnerID == actorID {
		member.Role = models.RoleAdmin
	}

	return server, member, nil
}

func (s *inviteService) memberUserIDs(ctx context.Context, serverID string) []string {
	members, err := s.memberRepo.List(ctx, serverID)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// generateInviteCode, 16 karakterlik hex kod üretir (8 byte crypto/rand).
func generateInviteCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
