package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// MemberService, sunucu üyelik ve rol yönetimi iş mantığı.
type MemberService interface {
	ListMembers(ctx context.Context, serverID, actorID string) ([]models.ServerMember, error)

	// UpsertRole, hedef üyenin rolünü ve moderator flag'lerini değiştirir.
	// Kurallar:
	//   - çağıran owner veya admin olmalı
	//   - owner olmayan admin; owner'a ve başka bir admin'e dokunamaz,
	//     admin rolü veremez
	//   - moderator rolü flag setini komple değiştirir; admin/member
	//     rolünde flag'ler temizlenir
	UpsertRole(ctx context.Context, serverID, actorID, targetID string, role models.Role, flags models.ModeratorFlags) (*models.ServerMember, error)

	// Leave, üyeyi sunucudan çıkarır. Owner ayrılamaz.
	Leave(ctx context.Context, serverID, userID string) error

	// RemoveMember, hedefi sunucudan çıkarır (can_remove_members yetkisi).
	RemoveMember(ctx context.Context, serverID, actorID, targetID string) error

	// VisibleChannels, üyenin rolüne göre View flag'i ile filtrelenmiş
	// kategori+kanal listesini döner. Client kanal listesini hiçbir zaman
	// filtresiz görmez.
	VisibleChannels(ctx context.Context, serverID, userID string) ([]models.CategoryWithChannels, error)
}

type memberService struct {
	serverRepo   repository.ServerRepository
	memberRepo   repository.MemberRepository
	categoryRepo repository.CategoryRepository
	channelRepo  repository.ChannelRepository
	hub          ws.EventPublisher
	audit        AuditService
}

// NewMemberService, constructor.
func NewMemberService(
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	categoryRepo repository.CategoryRepository,
	channelRepo repository.ChannelRepository,
	hub ws.EventPublisher,
	audit AuditService,
) MemberService {
	return &memberService{
		serverRepo:   serverRepo,
		memberRepo:   memberRepo,
		categoryRepo: categoryRepo,
		channelRepo:  channelRepo,
		hub:          hub,
		audit:        audit,
	}
}

func (s *memberService) ListMembers(ctx context.Context, serverID, actorID string) ([]models.ServerMember, error) {
	isMember, err := s.memberRepo.Exists(ctx, serverID, actorID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: not a member", pkg.ErrForbidden)
	}
	return s.memberRepo.List(ctx, serverID)
}

func (s *memberService) UpsertRole(ctx context.Context, serverID, actorID, targetID string, role models.Role, flags models.ModeratorFlags) (*models.ServerMember, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role", pkg.ErrValidation)
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}

	isOwner := server.OwnerID == actorID
	if !isOwner {
		actor, err := s.memberRepo.Get(ctx, serverID, actorID)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return nil, fmt.Errorf("%w: not a member", pkg.ErrForbidden)
			}
			return nil, err
		}
		if actor.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%w: role management requires admin", pkg.ErrForbidden)
		}

		// Owner olmayan admin'in sınırları.
		if targetID == server.OwnerID {
			return nil, fmt.Errorf("%w: cannot change the owner's role", pkg.ErrForbidden)
		}
		if role == models.RoleAdmin {
			return nil, fmt.Errorf("%w: only the owner may grant admin", pkg.ErrForbidden)
		}
		if target, err := s.memberRepo.Get(ctx, serverID, targetID); err == nil && target.Role == models.RoleAdmin {
			return nil, fmt.Errorf("%w: cannot change another admin's role", pkg.ErrForbidden)
		}
	}

	// Moderator dışındaki rollerde flag seti anlamsızdır — temizlenir.
	if role != models.RoleModerator {
		flags = models.ModeratorFlags{}
	}

	member := &models.ServerMember{
		ServerID: serverID,
		UserID:   targetID,
		Role:     role,
		Flags:    flags,
	}
	if err := s.memberRepo.Upsert(ctx, member); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditRoleChange,
		TargetID: targetID,
		Detail:   string(role),
	})

	s.hub.BroadcastToUsers(s.memberUserIDs(ctx, serverID), ws.Event{Op: ws.OpMemberUpdate, Data: member})

	return member, nil
}

func (s *memberService) Leave(ctx context.Context, serverID, userID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if server.OwnerID == userID {
		return fmt.Errorf("%w: the owner cannot leave, delete the server instead", pkg.ErrForbidden)
	}

	if err := s.memberRepo.Delete(ctx, serverID, userID); err != nil {
		return err
	}

	s.hub.BroadcastToUsers(s.memberUserIDs(ctx, serverID), ws.Event{
		Op:   ws.OpMemberLeave,
		Data: map[string]string{"server_id": serverID, "user_id": userID},
	})

	return nil
}

func (s *memberService) RemoveMember(ctx context.Context, serverID, actorID, targetID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}

	actor, err := s.resolveActor(ctx, server, actorID)
	if err != nil {
		return err
	}
	if !actor.CanRemoveMembers() {
		return fmt.Errorf("%w: missing remove-members permission", pkg.ErrForbidden)
	}

	target, err := s.memberRepo.Get(ctx, serverID, targetID)
	if err != nil {
		return err
	}
	if err := assertTargetCanBeModerated(server, actor, target); err != nil {
		return err
	}

	if err := s.memberRepo.Delete(ctx, serverID, targetID); err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditMemberRemove,
		TargetID: targetID,
	})

	s.hub.BroadcastToUsers(s.memberUserIDs(ctx, serverID), ws.Event{
		Op:   ws.OpMemberLeave,
		Data: map[string]string{"server_id": serverID, "user_id": targetID},
	})

	return nil
}

func (s *memberService) VisibleChannels(ctx context.Context, serverID, userID string) ([]models.CategoryWithChannels, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}

	member, err := s.resolveActor(ctx, server, userID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.ListByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	channels, err := s.channelRepo.ListByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	// View filtresi + kategori gruplama. Kategorisiz kanallar boş ID'li
	// sanal grupta toplanır.
	byCategory := make(map[string][]models.Channel)
	for _, ch := range channels {
		if !ch.CanView(member.Role) {
			continue
		}
		key := ""
		if ch.CategoryID != nil {
			key = *ch.CategoryID
		}
		byCategory[key] = append(byCategory[key], ch)
	}

	var result []models.CategoryWithChannels
	if uncategorized, ok := byCategory[""]; ok {
		result = append(result, models.CategoryWithChannels{Channels: uncategorized})
	}
	for _, cat := range categories {
		result = append(result, models.CategoryWithChannels{
			Category: cat,
			Channels: byCategory[cat.ID],
		})
	}

	return result, nil
}

// resolveActor, aktörün üyelik kaydını döner. Owner'ın kaydı yoksa bile
// admin rolüyle sentetik bir kayıt üretilir — owner her zaman örtük admin'dir.
func (s *memberService) resolveActor(ctx context.Context, server *models.Server, userID string) (*models.ServerMember, error) {
	member, err := s.memberRepo.Get(ctx, server.ID, userID)
	if err == nil {
		if server.OwnerID == userID {
			member.Role = models.RoleAdmin
		}
		return member, nil
	}
	if errors.Is(err, pkg.ErrNotFound) && server.OwnerID == userID {
		return &models.ServerMember{ServerID: server.ID, UserID: userID, Role: models.RoleAdmin}, nil
	}
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, fmt.Errorf("%w: not a member", pkg.ErrForbidden)
	}
	return nil, err
}

func (s *memberService) memberUserIDs(ctx context.Context, serverID string) []string {
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

// assertTargetCanBeModerated, moderasyon hedef kurallarının tek noktası:
// aktör kendini hedefleyemez, owner hedeflenemez, moderator aktör sadece
// member rolündeki hedeflere dokunabilir.
func assertTargetCanBeModerated(server *models.Server, actor, target *models.ServerMember) error {
	if actor.UserID == target.UserID {
		return fmt.Errorf("%w: cannot target yourself", pkg.ErrForbidden)
	}
	if target.UserID == server.OwnerID {
		return fmt.Errorf("%w: cannot target the owner", pkg.ErrForbidden)
	}
	if actor.Role == models.RoleModerator && target.Role != models.RoleMember {
		return fmt.Errorf("%w: moderators may only target members", pkg.ErrForbidden)
	}
	return nil
}
