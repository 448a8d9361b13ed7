package services

import (
	"context"
	"errors"
	"testing"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
)

func TestInviteCreateAndAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	joiner := env.createUser(t, "katilan")
	server := env.createServer(t, owner.ID, "Sunucu")

	invite, err := env.invite.Create(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(invite.Code) != 16 {
		t.Errorf("invite code length = %d, want 16", len(invite.Code))
	}

	joined, err := env.invite.Accept(ctx, invite.Code, joiner.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if joined.ID != server.ID {
		t.Errorf("accepted server = %s, want %s", joined.ID, server.ID)
	}

	member, err := env.repos.member.Get(ctx, server.ID, joiner.ID)
	if err != nil {
		t.Fatalf("membership missing after accept: %v", err)
	}
	if member.Role != models.RoleMember {
		t.Errorf("joined role = %s, want member", member.Role)
	}
}

func TestInviteAcceptIsIdempotentForMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	mod := env.createUser(t, "moderator")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, mod.ID, models.RoleModerator, models.ModeratorFlags{CanBanUsers: true})

	invite, err := env.invite.Create(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := env.invite.Accept(ctx, invite.Code, mod.ID); err != nil {
		t.Fatalf("Accept by existing member should succeed: %v", err)
	}

	// Mevcut rol ve flag'ler korunur, default member'a düşmez.
	member, err := env.repos.member.Get(ctx, server.ID, mod.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if member.Role != models.RoleModerator || !member.Flags.CanBanUsers {
		t.Errorf("existing membership was overwritten: %+v", member)
	}
}

func TestInviteAcceptRejectsBannedAndPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	banned := env.createUser(t, "banli")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, banned.ID, models.RoleMember, models.ModeratorFlags{})

	invite, err := env.invite.Create(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := env.moderation.BanUser(ctx, server.ID, owner.ID, banned.ID, &models.BanRequest{}); err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if _, err := env.invite.Accept(ctx, invite.Code, banned.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("banned user accept should be forbidden, got %v", err)
	}

	// Sentinel hash'li hesap davet kabul edemez.
	placeholder := &models.User{Username: "hayalet", PasswordHash: models.PasswordSentinel}
	if err := env.repos.user.Create(ctx, placeholder); err != nil {
		t.Fatalf("failed to create placeholder user: %v", err)
	}
	if _, err := env.invite.Accept(ctx, invite.Code, placeholder.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("placeholder account accept should be forbidden, got %v", err)
	}
}

func TestInviteAcceptRejectsRevokedCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	joiner := env.createUser(t, "katilan")
	server := env.createServer(t, owner.ID, "Sunucu")

	invite, err := env.invite.Create(ctx, server.ID, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := env.invite.Revoke(ctx, server.ID, owner.ID, invite.Code); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if _, err := env.invite.Accept(ctx, invite.Code, joiner.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("revoked invite accept should be not-found, got %v", err)
	}
}

func TestInviteActiveCapIsEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	server := env.createServer(t, owner.ID, "Sunucu")

	codes := make([]string, 0, models.MaxActiveInvitesPerServer)
	for i := 0; i < models.MaxActiveInvitesPerServer; i++ {
		invite, err := env.invite.Create(ctx, server.ID, owner.ID)
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i+1, err)
		}
		codes = append(codes, invite.Code)
	}

	if _, err := env.invite.Create(ctx, server.ID, owner.ID); !errors.Is(err, pkg.ErrConflict) {
		t.Errorf("11th invite should conflict, got %v", err)
	}

	// Bir tanesi revoke edilince yer açılır — revoked davetler limite sayılmaz.
	if err := env.invite.Revoke(ctx, server.ID, owner.ID, codes[0]); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := env.invite.Create(ctx, server.ID, owner.ID); err != nil {
		t.Errorf("create after revoke should succeed: %v", err)
	}
}

func TestInviteCreatePolicyForPlainMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "uye")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, member.ID, models.RoleMember, models.ModeratorFlags{})

	// Varsayılan policy kapalı: flag'siz üye davet oluşturamaz.
	if _, err := env.invite.Create(ctx, server.ID, member.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("member invite without policy should be forbidden, got %v", err)
	}

	allow := true
	if _, err := env.server.UpdateSettings(ctx, server.ID, owner.ID, &models.UpdateServerSettingsRequest{AllowMemberInvites: &allow}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	if _, err := env.invite.Create(ctx, server.ID, member.ID); err != nil {
		t.Errorf("member invite with policy enabled should succeed: %v", err)
	}

	// Listeleme policy'ye değil flag'e bağlıdır.
	if _, err := env.invite.List(ctx, server.ID, member.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("member without flag should not list invites, got %v", err)
	}
}

func TestInviteRevokeChecksServerScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	serverA := env.createServer(t, owner.ID, "Sunucu A")
	serverB := env.createServer(t, owner.ID, "Sunucu B")

	invite, err := env.invite.Create(ctx, serverA.ID, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Başka sunucunun scope'undan revoke edilemez.
	if err := env.invite.Revoke(ctx, serverB.ID, owner.ID, invite.Code); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("cross-server revoke should be not-found, got %v", err)
	}

	// Davet hâlâ aktif.
	got, err := env.repos.invite.GetByCode(ctx, invite.Code)
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if !got.IsActive() {
		t.Error("invite should survive a cross-server revoke attempt")
	}
}
