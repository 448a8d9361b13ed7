package services

import (
	"context"
	"errors"
	"testing"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/ws"
)

func TestCreateServerProvisionsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	server := env.createServer(t, owner.ID, "Yeni Sunucu")

	// Owner üyeliği admin rolüyle kurulur.
	member, err := env.repos.member.Get(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("owner role = %s, want admin", member.Role)
	}

	// Varsayılan kuruluş: bir text, bir voice kanal.
	channels, err := env.repos.channel.ListByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("ListByServer failed: %v", err)
	}
	var text, voice int
	for _, ch := range channels {
		switch ch.Type {
		case models.ChannelTypeText:
			text++
		case models.ChannelTypeVoice:
			voice++
		}
	}
	if text != 1 || voice != 1 {
		t.Errorf("default channels = %d text / %d voice, want 1/1", text, voice)
	}

	categories, err := env.repos.category.ListByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("ListByServer failed: %v", err)
	}
	if len(categories) == 0 {
		t.Error("default category missing")
	}
}

func TestUpdateSettingsTieredPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "yonetici")
	mod := env.createUser(t, "moderator")
	member := env.createUser(t, "uye")
	server := env.createServer(t, owner.ID, "Sunucu")

	env.addMember(t, server.ID, admin.ID, models.RoleAdmin, models.ModeratorFlags{})
	env.addMember(t, server.ID, mod.ID, models.RoleModerator, models.ModeratorFlags{})
	env.addMember(t, server.ID, member.ID, models.RoleMember, models.ModeratorFlags{})

	name := "Yeni İsim"
	allow := true
	banner := "http://localhost:9090/uploads/banner.png"

	tests := []struct {
		name    string
		actorID string
		req     *models.UpdateServerSettingsRequest
		wantErr error
	}{
		{"owner renames", owner.ID, &models.UpdateServerSettingsRequest{Name: &name}, nil},
		{"admin cannot rename", admin.ID, &models.UpdateServerSettingsRequest{Name: &name}, pkg.ErrForbidden},
		{"admin flips policy", admin.ID, &models.UpdateServerSettingsRequest{AllowMemberInvites: &allow}, nil},
		{"moderator cannot flip policy", mod.ID, &models.UpdateServerSettingsRequest{AllowMemberInvites: &allow}, pkg.ErrForbidden},
		{"moderator sets banner", mod.ID, &models.UpdateServerSettingsRequest{BannerURL: &banner}, nil},
		{"member cannot set banner", member.ID, &models.UpdateServerSettingsRequest{BannerURL: &banner}, pkg.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.server.UpdateSettings(ctx, server.ID, tt.actorID, tt.req)
			if tt.wantErr == nil && err != nil {
				t.Errorf("UpdateSettings failed: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVirusScanRequiresAPIKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	server := env.createServer(t, owner.ID, "Sunucu")

	enabled := true
	if _, err := env.server.UpdateSettings(ctx, server.ID, owner.ID, &models.UpdateServerSettingsRequest{VirusScanEnabled: &enabled}); !errors.Is(err, pkg.ErrValidation) {
		t.Errorf("virus scan without key should fail validation, got %v", err)
	}

	key := "analiz-api-anahtari"
	updated, err := env.server.UpdateSettings(ctx, server.ID, owner.ID, &models.UpdateServerSettingsRequest{
		VirusScanEnabled: &enabled,
		VirusScanAPIKey:  &key,
	})
	if err != nil {
		t.Fatalf("virus scan with key failed: %v", err)
	}
	if !updated.VirusScan.Enabled {
		t.Error("virus scan should be enabled")
	}
}

func TestDeleteServerIsOwnerOnlyAndReturnsCleanup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "yonetici")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, admin.ID, models.RoleAdmin, models.ModeratorFlags{})

	icon := "http://localhost:9090/uploads/icon.png"
	banner := "http://localhost:9090/uploads/banner.png"
	if _, err := env.server.UpdateSettings(ctx, server.ID, owner.ID, &models.UpdateServerSettingsRequest{IconURL: &icon, BannerURL: &banner}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	if _, err := env.server.Delete(ctx, server.ID, admin.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("delete by admin should be forbidden, got %v", err)
	}

	urls, err := env.server.Delete(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(urls) != 2 {
		t.Errorf("cleanup urls = %v, want icon and banner", urls)
	}
	if !env.hub.hasOp(ws.OpServerDelete) {
		t.Error("delete event should be published")
	}

	if _, err := env.repos.server.GetByID(ctx, server.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("deleted server should be gone, got %v", err)
	}
}

func TestAuthorizeAssetActionFollowsPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "uye")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, member.ID, models.RoleMember, models.ModeratorFlags{})

	// Varsayılan policy kapalı: member hiçbir asset aksiyonu alamaz,
	// owner (örtük admin) hepsini alır.
	if err := env.server.AuthorizeAssetAction(ctx, server.ID, member.ID, models.AssetSoundUpload); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("member sound upload should be forbidden by default, got %v", err)
	}
	if err := env.server.AuthorizeAssetAction(ctx, server.ID, owner.ID, models.AssetStickerCreate); err != nil {
		t.Errorf("owner asset action should succeed: %v", err)
	}

	// Policy açılınca member de izin alır — ama sadece açılan aksiyon için.
	allow := true
	if _, err := env.server.UpdateSettings(ctx, server.ID, owner.ID, &models.UpdateServerSettingsRequest{AllowSoundUpload: &allow}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if err := env.server.AuthorizeAssetAction(ctx, server.ID, member.ID, models.AssetSoundUpload); err != nil {
		t.Errorf("member sound upload with policy should succeed: %v", err)
	}
	if err := env.server.AuthorizeAssetAction(ctx, server.ID, member.ID, models.AssetEmojiCreate); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("emoji create should stay forbidden, got %v", err)
	}

	if err := env.server.AuthorizeAssetAction(ctx, server.ID, member.ID, "tuhaf_aksiyon"); !errors.Is(err, pkg.ErrValidation) {
		t.Errorf("unknown action should fail validation, got %v", err)
	}

	outsider := env.createUser(t, "cem")
	if err := env.server.AuthorizeAssetAction(ctx, server.ID, outsider.ID, models.AssetSoundUpload); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("outsider should be forbidden, got %v", err)
	}
}

func TestGetServerRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	outsider := env.createUser(t, "cem")
	server := env.createServer(t, owner.ID, "Sunucu")

	if _, err := env.server.Get(ctx, server.ID, outsider.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("outsider get should be not-found, got %v", err)
	}

	list, err := env.server.ListForUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != server.ID {
		t.Errorf("owner server list = %+v, want the created server", list)
	}
}
