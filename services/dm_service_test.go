package services

import (
	"context"
	"errors"
	"testing"

	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
	"github.com/veyra-chat/server/ws"
)

func TestConversationIsCanonicalAndReused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bora := env.createUser(t, "bora")

	conv, err := env.dm.CreateOrGetConversation(ctx, alice.ID, bora.ID)
	if err != nil {
		t.Fatalf("CreateOrGetConversation failed: %v", err)
	}

	// Ters yönden aynı konuşma döner.
	again, err := env.dm.CreateOrGetConversation(ctx, bora.ID, alice.ID)
	if err != nil {
		t.Fatalf("reverse CreateOrGetConversation failed: %v", err)
	}
	if again.ID != conv.ID {
		t.Errorf("pair should map to a single conversation: %s vs %s", conv.ID, again.ID)
	}

	u1, u2 := models.CanonicalPair(alice.ID, bora.ID)
	if conv.User1ID != u1 || conv.User2ID != u2 {
		t.Errorf("conversation pair not canonical: %s/%s", conv.User1ID, conv.User2ID)
	}

	if _, err := env.dm.CreateOrGetConversation(ctx, alice.ID, alice.ID); !errors.Is(err, pkg.ErrValidation) {
		t.Errorf("self conversation should fail validation, got %v", err)
	}
}

func TestSendMessageRequiresFriendship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bora := env.createUser(t, "bora")

	conv, err := env.dm.CreateOrGetConversation(ctx, alice.ID, bora.ID)
	if err != nil {
		t.Fatalf("CreateOrGetConversation failed: %v", err)
	}

	req := &models.CreateDirectMessageRequest{Content: "selam"}
	if _, err := env.dm.SendMessage(ctx, conv.ID, alice.ID, req); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("message between non-friends should be forbidden, got %v", err)
	}

	env.makeFriends(t, alice.ID, bora.ID)

	msg, err := env.dm.SendMessage(ctx, conv.ID, alice.ID, req)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.SenderID != alice.ID || msg.Content != "selam" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if !env.hub.hasOp(ws.OpDMMessageCreate) {
		t.Error("message event should be published")
	}

	// Katılımcı olmayan kullanıcı konuşmaya yazamaz ve varlığını öğrenemez.
	outsider := env.createUser(t, "cem")
	env.makeFriends(t, outsider.ID, alice.ID)
	if _, err := env.dm.SendMessage(ctx, conv.ID, outsider.ID, req); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("outsider send should be not-found, got %v", err)
	}
	if _, err := env.dm.ListMessages(ctx, conv.ID, outsider.ID, "", 50); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("outsider list should be not-found, got %v", err)
	}
}

func TestDirectionalBlocksGateMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bora := env.createUser(t, "bora")
	env.makeFriends(t, alice.ID, bora.ID)

	conv, err := env.dm.CreateOrGetConversation(ctx, alice.ID, bora.ID)
	if err != nil {
		t.Fatalf("CreateOrGetConversation failed: %v", err)
	}
	req := &models.CreateDirectMessageRequest{Content: "merhaba"}

	// Hedefin blok'u gönderimi her zaman keser.
	if err := env.repos.friendship.CreateBlock(ctx, bora.ID, alice.ID); err != nil {
		t.Fatalf("CreateBlock failed: %v", err)
	}
	if _, err := env.dm.SendMessage(ctx, conv.ID, alice.ID, req); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("send to a blocking target should be forbidden, got %v", err)
	}
	if err := env.repos.friendship.DeleteBlock(ctx, bora.ID, alice.ID); err != nil {
		t.Fatalf("DeleteBlock failed: %v", err)
	}

	// Göndericinin kendi outbound blok'u da keser...
	if err := env.repos.friendship.CreateBlock(ctx, alice.ID, bora.ID); err != nil {
		t.Fatalf("CreateBlock failed: %v", err)
	}
	if _, err := env.dm.SendMessage(ctx, conv.ID, alice.ID, req); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("send past own block should be forbidden, got %v", err)
	}

	// ...ta ki gönderici herhangi bir sunucuda yükseltilmiş role sahip olana dek.
	env.createServer(t, alice.ID, "Alice Sunucusu")
	if _, err := env.dm.SendMessage(ctx, conv.ID, alice.ID, req); err != nil {
		t.Errorf("elevated sender should bypass their own outbound block: %v", err)
	}

	// Bypass sadece kendi engeli içindir: hedef de engellediyse yine durur.
	if err := env.repos.friendship.CreateBlock(ctx, bora.ID, alice.ID); err != nil {
		t.Fatalf("CreateBlock failed: %v", err)
	}
	if _, err := env.dm.SendMessage(ctx, conv.ID, alice.ID, req); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("target block must never be bypassed, got %v", err)
	}
}

func TestEditAndDeleteAreSenderOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bora := env.createUser(t, "bora")
	env.makeFriends(t, alice.ID, bora.ID)

	conv, err := env.dm.CreateOrGetConversation(ctx, alice.ID, bora.ID)
	if err != nil {
		t.Fatalf("CreateOrGetConversation failed: %v", err)
	}

	msg, err := env.dm.SendMessage(ctx, conv.ID, alice.ID, &models.CreateDirectMessageRequest{
		Content: "dosya: http://localhost:9090/uploads/abc123.png",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if _, err := env.dm.EditMessage(ctx, msg.ID, bora.ID, &models.UpdateDirectMessageRequest{Content: "hack"}); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("edit by non-sender should be forbidden, got %v", err)
	}

	edited, err := env.dm.EditMessage(ctx, msg.ID, alice.ID, &models.UpdateDirectMessageRequest{
		Content: "dosya: http://localhost:9090/uploads/abc123.png (guncel)",
	})
	if err != nil {
		t.Fatalf("EditMessage failed: %v", err)
	}
	if edited.EditedAt == nil {
		t.Error("edited message should carry edited_at")
	}

	if _, err := env.dm.DeleteMessage(ctx, msg.ID, bora.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Errorf("delete by non-sender should be forbidden, got %v", err)
	}

	urls, err := env.dm.DeleteMessage(ctx, msg.ID, alice.ID)
	if err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	if len(urls) != 1 || urls[0] != "http://localhost:9090/uploads/abc123.png" {
		t.Errorf("cleanup urls = %v, want the embedded upload", urls)
	}

	if _, err := env.repos.dm.GetMessageByID(ctx, msg.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("deleted message should be gone, got %v", err)
	}
}

func TestListMessagesPaginatesBackwards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bora := env.createUser(t, "bora")
	env.makeFriends(t, alice.ID, bora.ID)

	conv, err := env.dm.CreateOrGetConversation(ctx, alice.ID, bora.ID)
	if err != nil {
		t.Fatalf("CreateOrGetConversation failed: %v", err)
	}

	// Mesajlar aynı saniyeye düşecek sıklıkta gönderilir — cursor yine de
	// hiçbirini atlamamalı.
	var ids []string
	for i := 0; i < 5; i++ {
		msg, err := env.dm.SendMessage(ctx, conv.ID, alice.ID, &models.CreateDirectMessageRequest{
			Content: "mesaj " + string(rune('a'+i)),
		})
		if err != nil {
			t.Fatalf("SendMessage #%d failed: %v", i, err)
		}
		ids = append(ids, msg.ID)
	}

	page, err := env.dm.ListMessages(ctx, conv.ID, alice.ID, "", 3)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("first page size = %d, want 3", len(page))
	}

	// before cursor'ı ile bir önceki sayfa gelir ve cursor'daki mesaj dahil değildir.
	older, err := env.dm.ListMessages(ctx, conv.ID, alice.ID, ids[2], 10)
	if err != nil {
		t.Fatalf("cursor ListMessages failed: %v", err)
	}
	if len(older) != 2 {
		t.Fatalf("older page size = %d, want 2", len(older))
	}
	for _, m := range older {
		if m.ID == ids[2] {
			t.Error("cursor message should not be included in the page")
		}
	}

	// Cursor'larla geriye yürüyünce tüm mesajlar tam olarak bir kez gelir.
	seen := map[string]bool{}
	cursor := ""
	for {
		batch, err := env.dm.ListMessages(ctx, conv.ID, alice.ID, cursor, 2)
		if err != nil {
			t.Fatalf("walk ListMessages failed: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, m := range batch {
			if seen[m.ID] {
				t.Fatalf("message %s returned twice while paginating", m.ID)
			}
			seen[m.ID] = true
		}
		cursor = batch[len(batch)-1].ID
	}
	if len(seen) != len(ids) {
		t.Errorf("pagination reached %d messages, want %d", len(seen), len(ids))
	}
}
