package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/pkg/spamguard"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// ChannelService, kanal CRUD iş mantığı. Mutasyonlar owner-or-admin.
type ChannelService interface {
	Create(ctx context.Context, serverID, actorID string, req *models.CreateChannelRequest) (*models.Channel, error)
	Update(ctx context.Context, serverID, actorID, channelID string, req *models.UpdateChannelRequest) (*models.Channel, error)
	// Delete, kanalı siler ve kanala gömülü upload URL'lerini blob
	// temizliği için döner.
	Delete(ctx context.Context, serverID, actorID, channelID string) ([]string, error)
	// AuthorizeMessage, kanala mesaj kabulünün karar noktası. Kanal
	// mesajları bu çekirdekte kalıcı değildir — gerçek zamanlı akış
	// göndermeden önce bu kararı alır. Link içeren mesaj SendLinks,
	// attachment'lı mesaj SendFiles iznini ayrıca gerektirir; geçen
	// mesaj kanal scope'lu spam guard'dan da geçer.
	AuthorizeMessage(ctx context.Context, serverID, channelID, userID, content string, hasAttachment bool) error
	// AuthorizeMessageDelete, kanal mesajı silme kararı. Kendi mesajı için
	// kanal erişimi yeterli; başkasının mesajı kanal-bazlı DeleteMessages
	// izni veya üyeye tanınmış moderator flag'i gerektirir.
	AuthorizeMessageDelete(ctx context.Context, serverID, channelID, actorID, authorID string) error
}

type channelService struct {
	serverRepo   repository.ServerRepository
	channelRepo  repository.ChannelRepository
	categoryRepo repository.CategoryRepository
	memberRepo   repository.MemberRepository
	guard        *spamguard.Guard
	hub          ws.EventPublisher
	audit        AuditService
}

// NewChannelService, constructor.
func NewChannelService(
	serverRepo repository.ServerRepository,
	channelRepo repository.ChannelRepository,
	categoryRepo repository.CategoryRepository,
	memberRepo repository.MemberRepository,
	guard *spamguard.Guard,
	hub ws.EventPublisher,
	audit AuditService,
) ChannelService {
	return &channelService{
		serverRepo:   serverRepo,
		channelRepo:  channelRepo,
		categoryRepo: categoryRepo,
		memberRepo:   memberRepo,
		guard:        guard,
		hub:          hub,
		audit:        audit,
	}
}

func (s *channelService) Create(ctx context.Context, serverID, actorID string, req *models.CreateChannelRequest) (*models.Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	if err := s.requireOwnerOrAdmin(ctx, serverID, actorID); err != nil {
		return nil, err
	}

	channel := &models.Channel{
		ServerID:  serverID,
		Name:      req.Name,
		Type:      models.ChannelType(req.Type),
		Member:    models.DefaultChannelFlags(models.RoleMember),
		Moderator: models.DefaultChannelFlags(models.RoleModerator),
	}

	if req.CategoryID != "" {
		category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.ServerID != serverID {
			return nil, fmt.Errorf("%w: category belongs to another server", pkg.ErrValidation)
		}
		channel.CategoryID = &req.CategoryID
	}

	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditChannelCreate,
		TargetID: channel.ID,
		Detail:   channel.Name,
	})

	s.broadcastToMembers(ctx, serverID, ws.Event{Op: ws.OpChannelCreate, Data: channel})

	return channel, nil
}

func (s *channelService) Update(ctx context.Context, serverID, actorID, channelID string, req *models.UpdateChannelRequest) (*models.Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	if err := s.requireOwnerOrAdmin(ctx, serverID, actorID); err != nil {
		return nil, err
	}

	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.ServerID != serverID {
		return nil, pkg.ErrNotFound
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Member != nil {
		channel.Member = *req.Member
	}
	if req.Moderator != nil {
		channel.Moderator = *req.Moderator
	}

	if err := s.channelRepo.Update(ctx, channel); err != nil {
		return nil, err
	}

	s.broadcastToMembers(ctx, serverID, ws.Event{Op: ws.OpChannelUpdate, Data: channel})

	return channel, nil
}

func (s *channelService) Delete(ctx context.Context, serverID, actorID, channelID string) ([]string, error) {
	if err := s.requireOwnerOrAdmin(ctx, serverID, actorID); err != nil {
		return nil, err
	}

	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.ServerID != serverID {
		return nil, pkg.ErrNotFound
	}

	// Kanal mesajları bu core'da kalıcı değildir (mesaj kalıcılığı DM'e
	// özgü) — temizlik listesi kanal-bazlı asset'lerle sınırlı kalır.
	var urls []string

	if err := s.channelRepo.Delete(ctx, channelID); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditChannelDelete,
		TargetID: channelID,
		Detail:   channel.Name,
	})

	s.broadcastToMembers(ctx, serverID, ws.Event{
		Op:   ws.OpChannelDelete,
		Data: map[string]string{"server_id": serverID, "channel_id": channelID},
	})

	return urls, nil
}

func (s *channelService) AuthorizeMessage(ctx context.Context, serverID, channelID, userID, content string, hasAttachment bool) error {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if channel.ServerID != serverID {
		return pkg.ErrNotFound
	}

	role, err := s.resolveRole(ctx, serverID, userID)
	if err != nil {
		return err
	}

	if !channel.CanAccess(role) {
		return fmt.Errorf("%w: no access to this channel", pkg.ErrForbidden)
	}
	if !channel.CanSendMessages(role) {
		return fmt.Errorf("%w: missing send permission", pkg.ErrForbidden)
	}
	if hasAttachment && !channel.CanSendFiles(role) {
		return fmt.Errorf("%w: missing file permission", pkg.ErrForbidden)
	}
	if models.ContainsLink(content) && !channel.CanSendLinks(role) {
		return fmt.Errorf("%w: missing link permission", pkg.ErrForbidden)
	}

	return s.guard.Check(ctx, channelID, userID, content)
}

func (s *channelService) AuthorizeMessageDelete(ctx context.Context, serverID, channelID, actorID, authorID string) error {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if channel.ServerID != serverID {
		return pkg.ErrNotFound
	}

	member, err := s.resolveMember(ctx, serverID, actorID)
	if err != nil {
		return err
	}

	if !channel.CanAccess(member.Role) {
		return fmt.Errorf("%w: no access to this channel", pkg.ErrForbidden)
	}

	if actorID == authorID {
		return nil
	}

	// Kanal matrisi rol bazında izin verebilir; üyeye özel moderator
	// flag'i kanaldan bağımsız ikinci bir yoldur.
	if !channel.CanDeleteMessages(member.Role) && !member.CanDeleteMessages() {
		return fmt.Errorf("%w: missing delete permission", pkg.ErrForbidden)
	}
	return nil
}

// resolveRole, kullanıcının sunucudaki rolünü döner. Owner, üyelik kaydı
// olmasa bile örtük admin'dir.
func (s *channelService) resolveRole(ctx context.Context, serverID, userID string) (models.Role, error) {
	member, err := s.resolveMember(ctx, serverID, userID)
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// resolveMember, üyelik kaydını döner; owner için sentetik admin üretir.
func (s *channelService) resolveMember(ctx context.Context, serverID, userID string) (*models.ServerMember, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if server.OwnerID == userID {
		return &models.ServerMember{ServerID: serverID, UserID: userID, Role: models.RoleAdmin}, nil
	}

	member, err := s.memberRepo.Get(ctx, serverID, userID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a member", pkg.ErrForbidden)
		}
		return nil, err
	}
	return member, nil
}

func (s *channelService) requireOwnerOrAdmin(ctx context.Context, serverID, actorID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if server.OwnerID == actorID {
		return nil
	}

	member, err := s.memberRepo.Get(ctx, serverID, actorID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: not a member", pkg.ErrForbidden)
		}
		return err
	}
	if member.Role != models.RoleAdmin {
		return fmt.Errorf("%w: channel management requires admin", pkg.ErrForbidden)
	}
	return nil
}

func (s *channelService) broadcastToMembers(ctx context.Context, serverID string, event ws.Event) {
	members, err := s.memberRepo.List(ctx, serverID)
	if err != nil {
		return
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	s.hub.BroadcastToUsers(ids, event)
}
