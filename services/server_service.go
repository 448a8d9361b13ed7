package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// ServerService, sunucu yaşam döngüsü ve ayar yönetimi iş mantığı.
type ServerService interface {
	// Create, sunucuyu; owner üyeliğini ve varsayılan kategori/kanalları
	// tek transaction'da oluşturur.
	Create(ctx context.Context, ownerID string, req *models.CreateServerRequest) (*models.Server, error)
	Get(ctx context.Context, serverID, userID string) (*models.Server, error)
	ListForUser(ctx context.Context, userID string) ([]models.Server, error)

	// UpdateSettings, tek çağrıda üç bağımsız yetki katmanını uygular:
	// owner-only (isim, ikon, virüs tarama), admin-or-owner (policy
	// flag'leri), banner (owner/admin/moderator).
	UpdateSettings(ctx context.Context, serverID, actorID string, req *models.UpdateServerSettingsRequest) (*models.Server, error)

	// Delete, sunucuyu siler (owner-only) ve blob temizliği için sunucuya
	// ait asset URL'lerini döner. Blob silmek caller'ın işidir.
	Delete(ctx context.Context, serverID, actorID string) ([]string, error)

	// AuthorizeAssetAction, blob collaborator'ının asset mutasyonu öncesi
	// sorduğu yetki kararı: admin her zaman izinli, moderator/member ilgili
	// sunucu policy flag'ine bağlı.
	AuthorizeAssetAction(ctx context.Context, serverID, userID string, action models.AssetAction) error
}

type serverService struct {
	db          *sql.DB // Transaction desteği (WithTx) için
	serverRepo  repository.ServerRepository
	memberRepo  repository.MemberRepository
	hub         ws.EventPublisher
	audit       AuditService
}

// NewServerService, constructor.
func NewServerService(
	db *sql.DB,
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	hub ws.EventPublisher,
	audit AuditService,
) ServerService {
	return &serverService{
		db:         db,
		serverRepo: serverRepo,
		memberRepo: memberRepo,
		hub:        hub,
		audit:      audit,
	}
}

func (s *serverService) Create(ctx context.Context, ownerID string, req *models.CreateServerRequest) (*models.Server, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	server := &models.Server{
		Name:    req.Name,
		OwnerID: ownerID,
	}

	// Atomik kuruluş: herhangi bir adım hata verirse ROLLBACK,
	// DB'de yarım sunucu kalmaz.
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txServerRepo := repository.NewSQLiteServerRepo(tx)
		txMemberRepo := repository.NewSQLiteMemberRepo(tx)
		txCategoryRepo := repository.NewSQLiteCategoryRepo(tx)
		txChannelRepo := repository.NewSQLiteChannelRepo(tx)

		if err := txServerRepo.Create(ctx, server); err != nil {
			return err
		}

		// Owner üyeliği — admin rolüyle.
		owner := &models.ServerMember{
			ServerID: server.ID,
			UserID:   ownerID,
			Role:     models.RoleAdmin,
		}
		if err := txMemberRepo.Upsert(ctx, owner); err != nil {
			return err
		}

		// Varsayılan kategori + kanallar.
		category := &models.Category{
			ServerID: server.ID,
			Name:     "General",
			Position: 0,
		}
		if err := txCategoryRepo.Create(ctx, category); err != nil {
			return err
		}

		defaults := []models.Channel{
			{Name: "general", Type: models.ChannelTypeText, Position: 0},
			{Name: "Voice", Type: models.ChannelTypeVoice, Position: 1},
		}
		for i := range defaults {
			ch := &defaults[i]
			ch.ServerID = server.ID
			ch.CategoryID = &category.ID
			ch.Member = models.DefaultChannelFlags(models.RoleMember)
			ch.Moderator = models.DefaultChannelFlags(models.RoleModerator)
			if err := txChannelRepo.Create(ctx, ch); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return server, nil
}

func (s *serverService) Get(ctx context.Context, serverID, userID string) (*models.Server, error) {
	isMember, err := s.memberRepo.Exists(ctx, serverID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, pkg.ErrNotFound
	}
	return s.serverRepo.GetByID(ctx, serverID)
}

func (s *serverService) ListForUser(ctx context.Context, userID string) ([]models.Server, error) {
	return s.serverRepo.ListForUser(ctx, userID)
}

func (s *serverService) UpdateSettings(ctx context.Context, serverID, actorID string, req *models.UpdateServerSettingsRequest) (*models.Server, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}

	isOwner := server.OwnerID == actorID

	var role models.Role
	if member, err := s.memberRepo.Get(ctx, serverID, actorID); err == nil {
		role = member.Role
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	if !isOwner && role == "" {
		return nil, fmt.Errorf("%w: not a member", pkg.ErrForbidden)
	}

	// Katman 1: owner-only alanlar.
	if req.TouchesOwnerFields() && !isOwner {
		return nil, fmt.Errorf("%w: only the owner may change these settings", pkg.ErrForbidden)
	}
	// Katman 2: policy alanları — owner veya admin.
	if req.TouchesPolicyFields() && !isOwner && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: policy flags require admin", pkg.ErrForbidden)
	}
	// Katman 3: banner — owner, admin veya moderator.
	if req.TouchesBannerFields() && !isOwner && !role.Elevated() {
		return nil, fmt.Errorf("%w: banner requires an elevated role", pkg.ErrForbidden)
	}

	applyServerSettings(server, req)

	// Virüs tarama ancak geçerli bir API key varken açılabilir —
	// mevcut config'deki ya da bu istekle gelen key sayılır.
	if server.VirusScan.Enabled && (server.VirusScan.APIKey == nil || *server.VirusScan.APIKey == "") {
		return nil, fmt.Errorf("%w: virus scan requires an api key", pkg.ErrValidation)
	}

	if err := s.serverRepo.Update(ctx, server); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditSettingsUpdate,
		TargetID: serverID,
	})

	s.broadcastToMembers(ctx, serverID, ws.Event{Op: ws.OpServerUpdate, Data: server})

	return server, nil
}

func (s *serverService) Delete(ctx context.Context, serverID, actorID string) ([]string, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if server.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the owner may delete the server", pkg.ErrForbidden)
	}

	// Blob temizlik listesi silmeden önce toplanır.
	var urls []string
	if server.IconURL != nil && *server.IconURL != "" {
		urls = append(urls, *server.IconURL)
	}
	if server.BannerURL != nil && *server.BannerURL != "" {
		urls = append(urls, *server.BannerURL)
	}

	memberIDs := s.memberUserIDs(ctx, serverID)

	if err := s.serverRepo.Delete(ctx, serverID); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &models.AuditLog{
		ServerID: serverID,
		ActorID:  actorID,
		Action:   models.AuditServerDelete,
		TargetID: serverID,
	})

	s.hub.BroadcastToUsers(memberIDs, ws.Event{
		Op:   ws.OpServerDelete,
		Data: map[string]string{"server_id": serverID},
	})

	return urls, nil
}

func (s *serverService) AuthorizeAssetAction(ctx context.Context, serverID, userID string, action models.AssetAction) error {
	if !action.Valid() {
		return fmt.Errorf("%w: unknown asset action %q", pkg.ErrValidation, action)
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}

	role := models.RoleMember
	if server.OwnerID == userID {
		role = models.RoleAdmin
	} else {
		member, err := s.memberRepo.Get(ctx, serverID, userID)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return fmt.Errorf("%w: not a member", pkg.ErrForbidden)
			}
			return err
		}
		role = member.Role
	}

	if !server.AllowsAssetAction(action, role) {
		return fmt.Errorf("%w: %s is not allowed on this server", pkg.ErrForbidden, action)
	}
	return nil
}

// broadcastToMembers, event'i sunucunun tüm üyelerine fan-out eder.
// Üye listesi alınamazsa event düşer — WS dağıtımı teslimat garantisi değildir.
func (s *serverService) broadcastToMembers(ctx context.Context, serverID string, event ws.Event) {
	s.hub.BroadcastToUsers(s.memberUserIDs(ctx, serverID), event)
}

func (s *serverService) memberUserIDs(ctx context.Context, serverID string) []string {
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

// applyServerSettings, nil olmayan alanları server'a uygular (partial update).
func applyServerSettings(server *models.Server, req *models.UpdateServerSettingsRequest) {
	if req.Name != nil {
		server.Name = *req.Name
	}
	if req.IconURL != nil {
		server.IconURL = req.IconURL
	}
	if req.VirusScanEnabled != nil {
		server.VirusScan.Enabled = *req.VirusScanEnabled
	}
	if req.VirusScanAPIKey != nil {
		server.VirusScan.APIKey = req.VirusScanAPIKey
	}
	if req.AllowMemberInvites != nil {
		server.Policy.AllowMemberInvites = *req.AllowMemberInvites
	}
	if req.AllowSoundUpload != nil {
		server.Policy.AllowSoundUpload = *req.AllowSoundUpload
	}
	if req.AllowSoundDelete != nil {
		server.Policy.AllowSoundDelete = *req.AllowSoundDelete
	}
	if req.AllowStickerCreate != nil {
		server.Policy.AllowStickerCreate = *req.AllowStickerCreate
	}
	if req.AllowEmojiCreate != nil {
		server.Policy.AllowEmojiCreate = *req.AllowEmojiCreate
	}
	if req.AllowCrossServerSounds != nil {
		server.Policy.AllowCrossServerSounds = *req.AllowCrossServerSounds
	}
	if req.BannerURL != nil {
		server.BannerURL = req.BannerURL
	}
}
