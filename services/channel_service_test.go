package services

import (
	"context"
	"errors"
	"testing"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
)

func TestChannelManagementRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	mod := env.createUser(t, "moderator")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, mod.ID, models.RoleModerator, models.ModeratorFlags{})

	req := &models.CreateChannelRequest{Name: "yeni-kanal", Type: "text"}
	if _, err := env.channel.Create(ctx, server.ID, mod.ID, req); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("moderator channel create should be forbidden, got %v", err)
	}

	channel, err := env.channel.Create(ctx, server.ID, owner.ID, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Yeni kanal varsayılan flag setiyle açılır.
	if !channel.Member.Access || channel.Member.DeleteMessages {
		t.Errorf("member defaults wrong: %+v", channel.Member)
	}
	if !channel.Moderator.DeleteMessages {
		t.Errorf("moderator defaults wrong: %+v", channel.Moderator)
	}

	if _, err := env.channel.Create(ctx, server.ID, owner.ID, &models.CreateChannelRequest{Name: "x", Type: "video"}); !errors.Is(err, pkg.ErrValidation) {
		t.Errorf("unknown channel type should fail validation, got %v", err)
	}
}

func TestChannelCategoryAttachmentIsServerScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	serverA := env.createServer(t, owner.ID, "Sunucu A")
	serverB := env.createServer(t, owner.ID, "Sunucu B")

	foreign, err := env.category.Create(ctx, serverB.ID, owner.ID, &models.CreateCategoryRequest{Name: "B Kategori"})
	if err != nil {
		t.Fatalf("category Create failed: %v", err)
	}

	_, err = env.channel.Create(ctx, serverA.ID, owner.ID, &models.CreateChannelRequest{
		Name:       "kanal",
		Type:       "text",
		CategoryID: foreign.ID,
	})
	if !errors.Is(err, pkg.ErrValidation) {
		t.Errorf("foreign category attach should fail validation, got %v", err)
	}
}

func TestChannelUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	serverA := env.createServer(t, owner.ID, "Sunucu A")
	serverB := env.createServer(t, owner.ID, "Sunucu B")

	channel, err := env.channel.Create(ctx, serverA.ID, owner.ID, &models.CreateChannelRequest{Name: "duyurular", Type: "text"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newName := "onemli-duyurular"
	locked := models.ChannelFlags{View: true, Access: true}
	updated, err := env.channel.Update(ctx, serverA.ID, owner.ID, channel.ID, &models.UpdateChannelRequest{
		Name:   &newName,
		Member: &locked,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("name = %s, want %s", updated.Name, newName)
	}
	if updated.Member.SendMessages {
		t.Error("member send flag should have been cleared")
	}

	// Başka sunucunun scope'undan güncellenemez/silinemez.
	if _, err := env.channel.Update(ctx, serverB.ID, owner.ID, channel.ID, &models.UpdateChannelRequest{Name: &newName}); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("cross-server update should be not-found, got %v", err)
	}
	if _, err := env.channel.Delete(ctx, serverB.ID, owner.ID, channel.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("cross-server delete should be not-found, got %v", err)
	}

	urls, err := env.channel.Delete(ctx, serverA.ID, owner.ID, channel.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("channel delete cleanup urls = %v, want none", urls)
	}
	if _, err := env.repos.channel.GetByID(ctx, channel.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("deleted channel should be gone, got %v", err)
	}
}

func TestCategoryDeleteOrphansChannels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "yonetici")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, admin.ID, models.RoleAdmin, models.ModeratorFlags{})

	// Kategoriler owner-only — admin bile dokunamaz.
	if _, err := env.category.Create(ctx, server.ID, admin.ID, &models.CreateCategoryRequest{Name: "Yasak"}); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("admin category create should be forbidden, got %v", err)
	}

	category, err := env.category.Create(ctx, server.ID, owner.ID, &models.CreateCategoryRequest{Name: "Projeler"})
	if err != nil {
		t.Fatalf("category Create failed: %v", err)
	}

	channel, err := env.channel.Create(ctx, server.ID, owner.ID, &models.CreateChannelRequest{
		Name:       "proje-x",
		Type:       "text",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("channel Create failed: %v", err)
	}

	if err := env.category.Delete(ctx, server.ID, owner.ID, category.ID); err != nil {
		t.Fatalf("category Delete failed: %v", err)
	}

	// Kanal silinmez, kategorisiz kalır.
	orphan, err := env.repos.channel.GetByID(ctx, channel.ID)
	if err != nil {
		t.Fatalf("channel should survive the category: %v", err)
	}
	if orphan.CategoryID != nil {
		t.Errorf("category_id = %v, want nil after category delete", orphan.CategoryID)
	}
}

func TestAuthorizeMessageComposesCapabilities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "uye")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, member.ID, models.RoleMember, models.ModeratorFlags{})

	channel, err := env.channel.Create(ctx, server.ID, owner.ID, &models.CreateChannelRequest{Name: "sohbet", Type: "text"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Varsayılan flag'lerle düz mesaj, link ve dosya kabul edilir.
	if err := env.channel.AuthorizeMessage(ctx, server.ID, channel.ID, member.ID, "selam", false); err != nil {
		t.Errorf("plain message should be admitted: %v", err)
	}
	if err := env.channel.AuthorizeMessage(ctx, server.ID, channel.ID, member.ID, "bak: https://ornek.dev/yazi", false); err != nil {
		t.Errorf("link message should be admitted by default: %v", err)
	}

	// Member link/dosya izinleri kapatılır; mesaj izni açık kalır.
	restricted := models.ChannelFlags{View: true, Access: true, SendMessages: true}
	if _, err := env.channel.Update(ctx, server.ID, owner.ID, channel.ID, &models.UpdateChannelRequest{Member: &restricted}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := env.channel.AuthorizeMessage(ctx, server.ID, channel.ID, member.ID, "yine selam", false); err != nil {
		t.Errorf("plain message should still pass: %v", err)
	}
	if err := env.channel.AuthorizeMessage(ctx, server.ID, channel.ID, member.ID, "bak: https://ornek.dev/yazi", false); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("link without SendLinks should be forbidden, got %v", err)
	}
	if err := env.channel.AuthorizeMessage(ctx, server.ID, channel.ID, member.ID, "ek gonderiyorum", true); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("attachment without SendFiles should be forbidden, got %v", err)
	}

	// Owner örtük admin: kapalı flag'ler onu bağlamaz.
	if err := env.channel.AuthorizeMessage(ctx, server.ID, channel.ID, owner.ID, "https://ornek.dev/duyuru", true); err != nil {
		t.Errorf("owner should bypass flag restrictions: %v", err)
	}

	// Access kapatılınca kanal tamamen kapanır.
	sealed := models.ChannelFlags{View: true}
	if _, err := env.channel.Update(ctx, server.ID, owner.ID, channel.ID, &models.UpdateChannelRequest{Member: &sealed}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := env.channel.AuthorizeMessage(ctx, server.ID, channel.ID, member.ID, "selam", false); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("message without Access should be forbidden, got %v", err)
	}

	// Üye olmayan kullanıcı karar bile alamaz.
	outsider := env.createUser(t, "cem")
	if err := env.channel.AuthorizeMessage(ctx, server.ID, channel.ID, outsider.ID, "selam", false); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("outsider should be forbidden, got %v", err)
	}
}

func TestAuditLogIsAdminScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "uye")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, member.ID, models.RoleMember, models.ModeratorFlags{})

	if _, err := env.channel.Create(ctx, server.ID, owner.ID, &models.CreateChannelRequest{Name: "kayitli", Type: "text"}); err != nil {
		t.Fatalf("channel Create failed: %v", err)
	}

	if _, err := env.audit.List(ctx, server.ID, member.ID, 50); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("member audit list should be forbidden, got %v", err)
	}

	logs, err := env.audit.List(ctx, server.ID, owner.ID, 50)
	if err != nil {
		t.Fatalf("audit List failed: %v", err)
	}

	var sawChannelCreate bool
	for _, entry := range logs {
		if entry.Action == models.AuditChannelCreate {
			sawChannelCreate = true
		}
	}
	if !sawChannelCreate {
		t.Error("channel creation should appear in the audit log")
	}
}

func TestAuthorizeMessageDeleteRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	author := env.createUser(t, "yazar")
	plain := env.createUser(t, "uye")
	mod := env.createUser(t, "mod")
	server := env.createServer(t, owner.ID, "Sunucu")
	env.addMember(t, server.ID, author.ID, models.RoleMember, models.ModeratorFlags{})
	env.addMember(t, server.ID, plain.ID, models.RoleMember, models.ModeratorFlags{})
	env.addMember(t, server.ID, mod.ID, models.RoleModerator, models.ModeratorFlags{CanDeleteMessages: true})

	channel, err := env.channel.Create(ctx, server.ID, owner.ID, &models.CreateChannelRequest{Name: "sohbet", Type: "text"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Kendi mesajı: kanal erişimi yeterli.
	if err := env.channel.AuthorizeMessageDelete(ctx, server.ID, channel.ID, author.ID, author.ID); err != nil {
		t.Errorf("deleting own message should be allowed: %v", err)
	}

	// Düz üye başkasının mesajını silemez.
	if err := env.channel.AuthorizeMessageDelete(ctx, server.ID, channel.ID, plain.ID, author.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("plain member should not delete others' messages, got %v", err)
	}

	// Üyeye tanınmış flag kanal matrisinden bağımsız yeterlidir.
	if err := env.channel.AuthorizeMessageDelete(ctx, server.ID, channel.ID, mod.ID, author.ID); err != nil {
		t.Errorf("moderator with delete flag should be allowed: %v", err)
	}

	// Owner örtük admin olarak her mesajı silebilir.
	if err := env.channel.AuthorizeMessageDelete(ctx, server.ID, channel.ID, owner.ID, author.ID); err != nil {
		t.Errorf("owner should delete any message: %v", err)
	}

	// Kanal matrisi de tek başına yol açar: member rolüne delete verilir.
	open := models.DefaultChannelFlags(models.RoleMember)
	open.DeleteMessages = true
	if _, err := env.channel.Update(ctx, server.ID, owner.ID, channel.ID, &models.UpdateChannelRequest{Member: &open}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := env.channel.AuthorizeMessageDelete(ctx, server.ID, channel.ID, plain.ID, author.ID); err != nil {
		t.Errorf("channel-level grant should allow member delete: %v", err)
	}

	// Erişim kapanınca kendi mesajı bile silinemez.
	sealed := models.ChannelFlags{View: true}
	if _, err := env.channel.Update(ctx, server.ID, owner.ID, channel.ID, &models.UpdateChannelRequest{Member: &sealed}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := env.channel.AuthorizeMessageDelete(ctx, server.ID, channel.ID, author.ID, author.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("sealed channel should forbid delete, got %v", err)
	}

	// Üye olmayan için karar yüzeyi kapalıdır.
	outsider := env.createUser(t, "cem")
	if err := env.channel.AuthorizeMessageDelete(ctx, server.ID, channel.ID, outsider.ID, author.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("outsider should be forbidden, got %v", err)
	}
}
