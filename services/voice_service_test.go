package services

import (
	"context"
	"errors"
	"testing"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
)

// voiceFixture, ses testleri için sunucu + ses/text kanal + üye kurar.
type voiceFixture struct {
	owner   *models.User
	member  *models.User
	server  *models.Server
	voiceID string
	textID  string
}

func newVoiceFixture(t *testing.T, env *testEnv) *voiceFixture {
	t.Helper()
	ctx := context.Background()

	f := &voiceFixture{
		owner:  env.createUser(t, "owner"),
		member: env.createUser(t, "uye"),
	}
	f.server = env.createServer(t, f.owner.ID, "Sunucu")
	env.addMember(t, f.server.ID, f.member.ID, models.RoleMember, models.ModeratorFlags{})

	channels, err := env.repos.channel.ListByServer(ctx, f.server.ID)
	if err != nil {
		t.Fatalf("ListByServer failed: %v", err)
	}
	for _, ch := range channels {
		switch ch.Type {
		case models.ChannelTypeVoice:
			f.voiceID = ch.ID
		case models.ChannelTypeText:
			f.textID = ch.ID
		}
	}
	if f.voiceID == "" || f.textID == "" {
		t.Fatal("default channels missing")
	}
	return f
}

func TestVoiceAuthorizeHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newVoiceFixture(t, env)

	room, err := env.voice.Authorize(ctx, f.server.ID, f.voiceID, f.member.ID)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if room != models.VoiceRoomName(f.server.ID, f.voiceID) {
		t.Errorf("room = %s, want deterministic pair name", room)
	}

	// Owner üyelik kaydı olmadan da girer.
	if _, err := env.voice.Authorize(ctx, f.server.ID, f.voiceID, f.owner.ID); err != nil {
		t.Errorf("owner Authorize failed: %v", err)
	}
}

func TestVoiceAuthorizeRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newVoiceFixture(t, env)

	// Text kanal için token istenemez.
	if _, err := env.voice.Authorize(ctx, f.server.ID, f.textID, f.member.ID); !errors.Is(err, pkg.ErrValidation) {
		t.Errorf("text channel should fail validation, got %v", err)
	}

	// Üye olmayan kullanıcı giremez.
	outsider := env.createUser(t, "cem")
	if _, err := env.voice.Authorize(ctx, f.server.ID, f.voiceID, outsider.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("outsider should be forbidden, got %v", err)
	}

	// Başka sunucunun kanal ID'si bu scope'ta yok sayılır.
	other := env.createServer(t, f.owner.ID, "Başka Sunucu")
	otherChannels, err := env.repos.channel.ListByServer(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListByServer failed: %v", err)
	}
	var foreignVoice string
	for _, ch := range otherChannels {
		if ch.Type == models.ChannelTypeVoice {
			foreignVoice = ch.ID
		}
	}
	if _, err := env.voice.Authorize(ctx, f.server.ID, foreignVoice, f.member.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("foreign channel should be not-found, got %v", err)
	}
}

func TestVoiceAuthorizeHonorsRestrictions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newVoiceFixture(t, env)

	// Aktif voice timeout girişi keser.
	if _, err := env.moderation.TimeoutVoice(ctx, f.server.ID, f.owner.ID, f.member.ID, &models.TimeoutRequest{Minutes: 30}); err != nil {
		t.Fatalf("TimeoutVoice failed: %v", err)
	}
	if _, err := env.voice.Authorize(ctx, f.server.ID, f.voiceID, f.member.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("timed-out member should be forbidden, got %v", err)
	}

	// Ban da keser — üyelik zaten düşer ama kontrol ban'a ayrıca bakar.
	banned := env.createUser(t, "banli")
	env.addMember(t, f.server.ID, banned.ID, models.RoleMember, models.ModeratorFlags{})
	if _, err := env.moderation.BanUser(ctx, f.server.ID, f.owner.ID, banned.ID, &models.BanRequest{}); err != nil {
		t.Fatalf("BanUser failed: %v", err)
	}
	if _, err := env.voice.Authorize(ctx, f.server.ID, f.voiceID, banned.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("banned user should be forbidden, got %v", err)
	}
}

func TestIssueTokenReturnsSignedGrant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := newVoiceFixture(t, env)

	resp, err := env.voice.IssueToken(ctx, f.server.ID, f.voiceID, f.member.ID)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("token should not be empty")
	}
	if resp.URL != "ws://localhost:7880" {
		t.Errorf("url = %s, want the configured media service address", resp.URL)
	}
	if resp.RoomName != models.VoiceRoomName(f.server.ID, f.voiceID) {
		t.Errorf("room name = %s, want deterministic pair name", resp.RoomName)
	}
}
