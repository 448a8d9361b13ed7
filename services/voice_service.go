package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/veyra-chat/server/config"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/repository"
)

// VoiceService, ses kanalı erişim kapısı.
//
// Authorize zinciri sırayla değerlendirilir; ilk başarısızlık erişimi
// keser: aktif ban yok → aktif voice timeout yok → kanal var, aynı
// sunucuda ve ses tipinde → rolün Access izni var. Geçenlere
// deterministik oda adı üretilir; medya trafiğinin kendisi harici
// servise (LiveKit) devredilir, bu core sadece token basar.
type VoiceService interface {
	// Authorize, erişim zincirini çalıştırır ve oda adını döner.
	Authorize(ctx context.Context, serverID, channelID, userID string) (string, error)

	// IssueToken, Authorize'dan geçen kullanıcıya LiveKit JWT'si basar.
	IssueToken(ctx context.Context, serverID, channelID, userID string) (*models.VoiceTokenResponse, error)
}

type voiceService struct {
	serverRepo      repository.ServerRepository
	memberRepo      repository.MemberRepository
	channelRepo     repository.ChannelRepository
	restrictionRepo repository.RestrictionRepository
	userRepo        repository.UserRepository
	livekitCfg      config.LiveKitConfig
}

// NewVoiceService, constructor.
func NewVoiceService(
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	channelRepo repository.ChannelRepository,
	restrictionRepo repository.RestrictionRepository,
	userRepo repository.UserRepository,
	livekitCfg config.LiveKitConfig,
) VoiceService {
	return &voiceService{
		serverRepo:      serverRepo,
		memberRepo:      memberRepo,
		channelRepo:     channelRepo,
		restrictionRepo: restrictionRepo,
		userRepo:        userRepo,
		livekitCfg:      livekitCfg,
	}
}

func (s *voiceService) Authorize(ctx context.Context, serverID, channelID, userID string) (string, error) {
	now := time.Now()

	// 1. Aktif ban erişimi tamamen keser.
	if _, err := s.restrictionRepo.FindActive(ctx, serverID, userID, models.RestrictionServerBan, now); err == nil {
		return "", fmt.Errorf("%w: banned from this server", pkg.ErrForbidden)
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return "", err
	}

	// 2. Aktif voice timeout ses erişimini keser.
	if _, err := s.restrictionRepo.FindActive(ctx, serverID, userID, models.RestrictionVoiceTimeout, now); err == nil {
		return "", fmt.Errorf("%w: voice access is timed out", pkg.ErrForbidden)
	} else if !errors.Is(err, pkg.ErrNotFound) {
		return "", err
	}

	// 3. Kanal: var, aynı sunucuda, ses tipinde.
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return "", err
	}
	if channel.ServerID != serverID {
		return "", pkg.ErrNotFound
	}
	if channel.Type != models.ChannelTypeVoice {
		return "", fmt.Errorf("%w: not a voice channel", pkg.ErrValidation)
	}

	// 4. Rolün Access izni.
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return "", err
	}
	role, err := s.resolveRole(ctx, server, userID)
	if err != nil {
		return "", err
	}
	if !channel.CanAccess(role) {
		return "", fmt.Errorf("%w: no access to this channel", pkg.ErrForbidden)
	}

	return models.VoiceRoomName(serverID, channelID), nil
}

func (s *voiceService) IssueToken(ctx context.Context, serverID, channelID, userID string) (*models.VoiceTokenResponse, error) {
	roomName, err := s.Authorize(ctx, serverID, channelID, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	canPublish := true
	canSubscribe := true

	at := auth.NewAccessToken(s.livekitCfg.APIKey, s.livekitCfg.APISecret)

	grant := &auth.VideoGrant{
		RoomJoin:     true,
		Room:         roomName,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}

	at.AddGrant(grant).
		SetIdentity(userID).
		SetName(user.Username).
		SetValidFor(24 * time.Hour) // LiveKit disconnect'i kendisi yönetir

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("failed to generate livekit token: %w", err)
	}

	return &models.VoiceTokenResponse{
		Token:    token,
		URL:      s.livekitCfg.URL,
		RoomName: roomName,
	}, nil
}

func (s *voiceService) resolveRole(ctx context.Context, server *models.Server, userID string) (models.Role, error) {
	member, err := s.memberRepo.Get(ctx, server.ID, userID)
	if err == nil {
		if server.OwnerID == userID {
			return models.RoleAdmin, nil
		}
		return member.Role, nil
	}
	if errors.Is(err, pkg.ErrNotFound) {
		if server.OwnerID == userID {
			return models.RoleAdmin, nil
		}
		return "", fmt.Errorf("%w: not a member", pkg.ErrForbidden)
	}
	return "", err
}
