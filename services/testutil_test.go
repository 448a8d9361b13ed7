package services

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/veyra-chat/server/config"
	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg/spamguard"
	"github.com/veyra-chat/server/repository"
	"github.com/veyra-chat/server/ws"
)

// fakeHub, testlerde yayınlanan event'leri kaydeden EventPublisher.
type fakeHub struct {
	mu     sync.Mutex
	events []ws.Event
}

func (h *fakeHub) BroadcastToAll(event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *fakeHub) BroadcastToUser(_ string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *fakeHub) BroadcastToUsers(_ []string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

// hasOp, verilen op'un yayınlanıp yayınlanmadığını döner.
func (h *fakeHub) hasOp(op string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.events {
		if e.Op == op {
			return true
		}
	}
	return false
}

// testEnv, gerçek SQLite (geçici dosya) üzerinde koşan service testleri
// için tüm katmanları bir arada kurar. Transaction'lı akışlar (ban +
// üyelik silme, arkadaşlık kabul + edge insert) prod'la aynı SQL'i
// çalıştırır — fake repo'larla kaçacak hatalar burada yakalanır.
type testEnv struct {
	conn  *sql.DB
	hub   *fakeHub
	repos struct {
		user        repository.UserRepository
		server      repository.ServerRepository
		member      repository.MemberRepository
		category    repository.CategoryRepository
		channel     repository.ChannelRepository
		restriction repository.RestrictionRepository
		invite      repository.InviteRepository
		voiceAction repository.VoiceActionRepository
		dm          repository.DMRepository
		friendship  repository.FriendshipRepository
		audit       repository.AuditRepository
	}
	audit      AuditService
	auth       AuthService
	server     ServerService
	member     MemberService
	moderation ModerationService
	invite     InviteService
	category   CategoryService
	channel    ChannelService
	dm         DMService
	friendship FriendshipService
	voice      VoiceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		t.Fatalf("failed to open embedded migrations: %v", err)
	}

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{conn: db.Conn, hub: &fakeHub{}}
	env.repos.user = repository.NewSQLiteUserRepo(db.Conn)
	env.repos.server = repository.NewSQLiteServerRepo(db.Conn)
	env.repos.member = repository.NewSQLiteMemberRepo(db.Conn)
	env.repos.category = repository.NewSQLiteCategoryRepo(db.Conn)
	env.repos.channel = repository.NewSQLiteChannelRepo(db.Conn)
	env.repos.restriction = repository.NewSQLiteRestrictionRepo(db.Conn)
	env.repos.invite = repository.NewSQLiteInviteRepo(db.Conn)
	env.repos.voiceAction = repository.NewSQLiteVoiceActionRepo(db.Conn)
	env.repos.dm = repository.NewSQLiteDMRepo(db.Conn)
	env.repos.friendship = repository.NewSQLiteFriendshipRepo(db.Conn)
	env.repos.audit = repository.NewSQLiteAuditRepo(db.Conn)

	env.audit = NewAuditService(env.repos.audit, env.repos.member, env.repos.server)
	env.auth = NewAuthService(env.repos.user, "test-jwt-secret", 60)
	env.server = NewServerService(db.Conn, env.repos.server, env.repos.member, env.hub, env.audit)
	env.member = NewMemberService(env.repos.server, env.repos.member, env.repos.category, env.repos.channel, env.hub, env.audit)
	env.moderation = NewModerationService(db.Conn, env.repos.server, env.repos.member, env.repos.channel, env.repos.restriction, env.repos.voiceAction, env.repos.user, env.hub, env.audit)
	env.invite = NewInviteService(env.repos.server, env.repos.member, env.repos.user, env.repos.invite, env.repos.restriction, env.hub, env.audit)
	env.category = NewCategoryService(env.repos.server, env.repos.category, env.repos.member, env.hub, env.audit)
	// Cömert eşikler — guard davranışının kendisi pkg/spamguard testlerinde;
	// burada sadece diğer akışlara karışmaması gerekiyor.
	guard := spamguard.New(spamguard.Options{
		RateWindow:   2 * time.Minute,
		MaxPerWindow: 100,
		MaxIdentical: 20,
	}, nil, nil)
	env.channel = NewChannelService(env.repos.server, env.repos.channel, env.repos.category, env.repos.member, guard, env.hub, env.audit)
	env.dm = NewDMService(env.repos.dm, env.repos.friendship, env.repos.member, env.repos.user, guard, env.hub)
	env.friendship = NewFriendshipService(db.Conn, env.repos.friendship, env.repos.dm, env.repos.user, env.auth, env.hub)
	env.voice = NewVoiceService(env.repos.server, env.repos.member, env.repos.channel, env.repos.restriction, env.repos.user, config.LiveKitConfig{
		URL:       "ws://localhost:7880",
		APIKey:    "test-api-key",
		APISecret: "test-api-secret-test-api-secret!",
	})
	return env
}

// createUser, gerçek credential'lı bir kullanıcı ekler.
func (env *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "$2a$10$fakehashforservicetests",
	}
	if err := env.repos.user.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// createServer, verilen owner ile sunucu kurar (default kategori ve
// kanallar dahil).
func (env *testEnv) createServer(t *testing.T, ownerID, name string) *models.Server {
	t.Helper()
	server, err := env.server.Create(context.Background(), ownerID, &models.CreateServerRequest{Name: name})
	if err != nil {
		t.Fatalf("failed to create server %s: %v", name, err)
	}
	return server
}

// addMember, kullanıcıyı verilen rolle sunucuya üye yapar.
func (env *testEnv) addMember(t *testing.T, serverID, userID string, role models.Role, flags models.ModeratorFlags) {
	t.Helper()
	err := env.repos.member.Upsert(context.Background(), &models.ServerMember{
		ServerID: serverID,
		UserID:   userID,
		Role:     role,
		Flags:    flags,
	})
	if err != nil {
		t.Fatalf("failed to add member %s: %v", userID, err)
	}
}

// makeFriends, iki kullanıcıyı isteksiz doğrudan arkadaş yapar.
func (env *testEnv) makeFriends(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	if err := env.repos.friendship.AddFriendEdge(ctx, a, b); err != nil {
		t.Fatalf("failed to add friend edge: %v", err)
	}
	if err := env.repos.friendship.AddFriendEdge(ctx, b, a); err != nil {
		t.Fatalf("failed to add friend edge: %v", err)
	}
}
