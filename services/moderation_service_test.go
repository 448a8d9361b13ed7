package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/ws"
)

func TestBanRemovesMembershipAndBlocksRejoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	target := env.createUser(t, "hedef")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, target.ID, models.RoleMember, models.ModeratorFlags{})

	restriction, err := env.moderation.BanUser(ctx, server.ID, owner.ID, target.ID, &models.BanRequest{Reason: "kural ihlali"})
	if err != nil {
		t.Fatalf("BanUser failed: %v", err)
	}
	if restriction.Type != models.RestrictionServerBan {
		t.Errorf("restriction type = %s, want server_ban", restriction.Type)
	}
	if restriction.ExpiresAt != nil {
		t.Error("ban should be permanent (nil expires_at)")
	}

	// Üyelik düşmüş olmalı.
	exists, err := env.repos.member.Exists(ctx, server.ID, target.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("banned user should no longer be a member")
	}

	if !env.hub.hasOp(ws.OpMemberBan) {
		t.Error("ban event should be published")
	}
}

func TestBanConflictsWithActiveBan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	target := env.createUser(t, "hedef")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, target.ID, models.RoleMember, models.ModeratorFlags{})

	if _, err := env.moderation.BanUser(ctx, server.ID, owner.ID, target.ID, &models.BanRequest{}); err != nil {
		t.Fatalf("first ban failed: %v", err)
	}

	// İlk ban üyeliği düşürdü; ikinci deneme yine de Conflict ile kesilir.
	_, err := env.moderation.BanUser(ctx, server.ID, owner.ID, target.ID, &models.BanRequest{})
	if !errors.Is(err, pkg.ErrConflict) {
		t.Errorf("second ban should conflict, got %v", err)
	}
}

func TestBanTargetsNonMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	mod := env.createUser(t, "moderator")
	left := env.createUser(t, "ayrilan")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, mod.ID, models.RoleModerator, models.ModeratorFlags{CanBanUsers: true})

	// Hiç üye olmamış (ya da ayrılmış) kullanıcı banlanabilir: kısıtlama
	// davetle geri dönüşü keser.
	restriction, err := env.moderation.BanUser(ctx, server.ID, mod.ID, left.ID, &models.BanRequest{Reason: "geri dönmesin"})
	if err != nil {
		t.Fatalf("ban of a non-member failed: %v", err)
	}
	if restriction.Type != models.RestrictionServerBan {
		t.Errorf("restriction type = %s, want server_ban", restriction.Type)
	}

	active, err := env.repos.restriction.FindActive(ctx, server.ID, left.ID, models.RestrictionServerBan, time.Now())
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if active.UserID != left.ID {
		t.Errorf("active ban user = %s, want %s", active.UserID, left.ID)
	}

	// Var olmayan kullanıcı hedeflenemez.
	if _, err := env.moderation.BanUser(ctx, server.ID, owner.ID, "yok-boyle-biri", &models.BanRequest{}); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("ban of an unknown user should be not found, got %v", err)
	}

	// Owner bu yoldan da korunur.
	if _, err := env.moderation.BanUser(ctx, server.ID, mod.ID, owner.ID, &models.BanRequest{}); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("owner must stay unbannable, got %v", err)
	}
}

func TestModerationPermissionBoundaries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	mod := env.createUser(t, "moderator")
	otherMod := env.createUser(t, "moderator2")
	member := env.createUser(t, "uye")
	server := env.createServer(t, owner.ID, "Sunucu")

	env.addMember(t, server.ID, mod.ID, models.RoleModerator, models.ModeratorFlags{CanBanUsers: true})
	env.addMember(t, server.ID, otherMod.ID, models.RoleModerator, models.ModeratorFlags{})
	env.addMember(t, server.ID, member.ID, models.RoleMember, models.ModeratorFlags{})

	tests := []struct {
		name    string
		actorID string
		target  string
	}{
		{"flag-less moderator cannot ban", otherMod.ID, member.ID},
		{"member cannot ban", member.ID, mod.ID},
		{"moderator cannot ban the owner", mod.ID, owner.ID},
		{"moderator cannot ban another moderator", mod.ID, otherMod.ID},
		{"actor cannot ban themselves", mod.ID, mod.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.moderation.BanUser(ctx, server.ID, tt.actorID, tt.target, &models.BanRequest{})
			if !errors.Is(err, pkg.ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestRevokeBanRestoresDefaultMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	mod := env.createUser(t, "moderator")
	target := env.createUser(t, "hedef")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, mod.ID, models.RoleModerator, models.ModeratorFlags{CanBanUsers: true})
	env.addMember(t, server.ID, target.ID, models.RoleModerator, models.ModeratorFlags{CanManageInvites: true})

	// Admin olmayan aktör ban'ı moderator'den atamaz ama owner banlayabilir;
	// burada owner banlar, moderator unban dener.
	if _, err := env.moderation.BanUser(ctx, server.ID, owner.ID, target.ID, &models.BanRequest{}); err != nil {
		t.Fatalf("ban failed: %v", err)
	}

	if err := env.moderation.RevokeBan(ctx, server.ID, mod.ID, target.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("unban by moderator should be forbidden, got %v", err)
	}

	if err := env.moderation.RevokeBan(ctx, server.ID, owner.ID, target.ID); err != nil {
		t.Fatalf("unban by owner failed: %v", err)
	}

	// Eski rol geri gelmez — hedef varsayılan member olarak döner.
	restored, err := env.repos.member.Get(ctx, server.ID, target.ID)
	if err != nil {
		t.Fatalf("restored membership not found: %v", err)
	}
	if restored.Role != models.RoleMember {
		t.Errorf("restored role = %s, want member", restored.Role)
	}
	if restored.Flags.CanManageInvites {
		t.Error("old moderator flags should not survive an unban")
	}

	// İkinci unban: aktif ban kalmadı.
	if err := env.moderation.RevokeBan(ctx, server.ID, owner.ID, target.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("second unban should report no active ban, got %v", err)
	}
}

func TestTimeoutVoiceClampsAndConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	target := env.createUser(t, "hedef")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, target.ID, models.RoleMember, models.ModeratorFlags{})

	before := time.Now()
	restriction, err := env.moderation.TimeoutVoice(ctx, server.ID, owner.ID, target.ID, &models.TimeoutRequest{Minutes: 99999})
	if err != nil {
		t.Fatalf("TimeoutVoice failed: %v", err)
	}
	if restriction.ExpiresAt == nil {
		t.Fatal("voice timeout must carry an expiry")
	}

	// 99999 dakika istendi ama [1, 4320] aralığına çekilmeli.
	maxExpiry := before.Add(time.Duration(models.MaxTimeoutMinutes)*time.Minute + time.Minute)
	if restriction.ExpiresAt.After(maxExpiry) {
		t.Errorf("expiry %v exceeds the clamp ceiling", restriction.ExpiresAt)
	}

	// Aktif timeout varken yenisi Conflict.
	if _, err := env.moderation.TimeoutVoice(ctx, server.ID, owner.ID, target.ID, &models.TimeoutRequest{Minutes: 5}); !errors.Is(err, pkg.ErrConflict) {
		t.Errorf("second timeout should conflict, got %v", err)
	}

	// Ban ile timeout bağımsız türler: timeout varken ban atılabilir.
	if _, err := env.moderation.BanUser(ctx, server.ID, owner.ID, target.ID, &models.BanRequest{}); err != nil {
		t.Errorf("ban alongside an active timeout should succeed: %v", err)
	}
}

func TestVoiceActionQueueFIFOAndAtMostOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	target := env.createUser(t, "hedef")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, target.ID, models.RoleMember, models.ModeratorFlags{})

	// Sunucu kuruluşundan gelen varsayılan ses kanalını bul.
	channels, err := env.repos.channel.ListByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("ListByServer failed: %v", err)
	}
	var voiceChannelID string
	for _, ch := range channels {
		if ch.Type == models.ChannelTypeVoice {
			voiceChannelID = ch.ID
			break
		}
	}
	if voiceChannelID == "" {
		t.Fatal("default voice channel not found")
	}

	// Aynı saniyede art arda kuyruklanan komutlar da sırayı korumalı.
	if err := env.moderation.KickFromVoice(ctx, server.ID, owner.ID, target.ID); err != nil {
		t.Fatalf("KickFromVoice failed: %v", err)
	}
	if err := env.moderation.MoveToVoice(ctx, server.ID, owner.ID, target.ID, voiceChannelID); err != nil {
		t.Fatalf("MoveToVoice failed: %v", err)
	}

	// FIFO: önce kick, sonra move.
	first, err := env.moderation.ConsumeNextVoiceAction(ctx, server.ID, target.ID)
	if err != nil {
		t.Fatalf("first consume failed: %v", err)
	}
	if first == nil || first.Action != models.VoiceActionKick {
		t.Fatalf("first action = %+v, want kick", first)
	}
	if first.HandledAt == nil {
		t.Error("consumed action should carry handled_at")
	}

	second, err := env.moderation.ConsumeNextVoiceAction(ctx, server.ID, target.ID)
	if err != nil {
		t.Fatalf("second consume failed: %v", err)
	}
	if second == nil || second.Action != models.VoiceActionMove {
		t.Fatalf("second action = %+v, want move", second)
	}
	if second.TargetChannelID == nil || *second.TargetChannelID != voiceChannelID {
		t.Error("move action should carry the target channel")
	}

	// At-most-once: kuyruk boş, üçüncü consume (nil, nil).
	third, err := env.moderation.ConsumeNextVoiceAction(ctx, server.ID, target.ID)
	if err != nil {
		t.Fatalf("third consume failed: %v", err)
	}
	if third != nil {
		t.Errorf("empty queue should yield nil, got %+v", third)
	}
}

func TestMoveToVoiceValidatesTargetChannel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	target := env.createUser(t, "hedef")
	server := env.createServer(t, owner.ID, "Sunucu")
	otherServer := env.createServer(t, owner.ID, "Başka Sunucu")
	env.addMember(t, server.ID, target.ID, models.RoleMember, models.ModeratorFlags{})

	channels, err := env.repos.channel.ListByServer(ctx, server.ID)
	if err != nil {
		t.Fatalf("ListByServer failed: %v", err)
	}
	var textChannelID string
	for _, ch := range channels {
		if ch.Type == models.ChannelTypeText {
			textChannelID = ch.ID
			break
		}
	}

	otherChannels, err := env.repos.channel.ListByServer(ctx, otherServer.ID)
	if err != nil {
		t.Fatalf("ListByServer failed: %v", err)
	}
	var foreignVoiceID string
	for _, ch := range otherChannels {
		if ch.Type == models.ChannelTypeVoice {
			foreignVoiceID = ch.ID
			break
		}
	}

	// Text kanala move edilemez.
	if err := env.moderation.MoveToVoice(ctx, server.ID, owner.ID, target.ID, textChannelID); !errors.Is(err, pkg.ErrValidation) {
		t.Errorf("move to a text channel should fail validation, got %v", err)
	}

	// Başka sunucunun kanalına move edilemez.
	if err := env.moderation.MoveToVoice(ctx, server.ID, owner.ID, target.ID, foreignVoiceID); !errors.Is(err, pkg.ErrValidation) {
		t.Errorf("move to a foreign channel should fail validation, got %v", err)
	}
}
