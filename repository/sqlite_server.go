package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
)

type sqliteServerRepo struct {
	db database.Querier
}

// NewSQLiteServerRepo, ServerRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteServerRepo(db database.Querier) ServerRepository {
	return &sqliteServerRepo{db: db}
}

const serverColumns = `id, owner_id, name, icon_url, banner_url,
	allow_member_invites, allow_sound_upload, allow_sound_delete,
	allow_sticker_create, allow_emoji_create, allow_cross_server_sounds,
	virus_scan_enabled, virus_scan_api_key, created_at`

func (r *sqliteServerRepo) Create(ctx context.Context, server *models.Server) error {
	if server.ID == "" {
		server.ID = uuid.NewString()
	}

	query := `
		INSERT INTO servers (id, owner_id, name, icon_url, banner_url,
			allow_member_invites, allow_sound_upload, allow_sound_delete,
			allow_sticker_create, allow_emoji_create, allow_cross_server_sounds,
			virus_scan_enabled, virus_scan_api_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		server.ID,
		server.OwnerID,
		server.Name,
		server.IconURL,
		server.BannerURL,
		server.Policy.AllowMemberInvites,
		server.Policy.AllowSoundUpload,
		server.Policy.AllowSoundDelete,
		server.Policy.AllowStickerCreate,
		server.Policy.AllowEmojiCreate,
		server.Policy.AllowCrossServerSounds,
		server.VirusScan.Enabled,
		server.VirusScan.APIKey,
	).Scan(&server.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return nil
}

func (r *sqliteServerRepo) GetByID(ctx context.Context, id string) (*models.Server, error) {
	query := `SELECT ` + serverColumns + ` FROM servers WHERE id = ?`

	server, err := scanServer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server by id: %w", err)
	}
	return server, nil
}

func (r *sqliteServerRepo) ListForUser(ctx context.Context, userID string) ([]models.Server, error) {
	query := `
		SELECT s.id, s.owner_id, s.name, s.icon_url, s.banner_url,
			s.allow_member_invites, s.allow_sound_upload, s.allow_sound_delete,
			s.allow_sticker_create, s.allow_emoji_create, s.allow_cross_server_sounds,
			s.virus_scan_enabled, s.virus_scan_api_key, s.created_at
		FROM servers s
		INNER JOIN server_members m ON m.server_id = s.id
		WHERE m.user_id = ?
		ORDER BY s.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers for user: %w", err)
	}
	defer rows.Close()

	var servers []models.Server
	for rows.Next() {
		server, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan server row: %w", err)
		}
		servers = append(servers, *server)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating server rows: %w", err)
	}

	return servers, nil
}

func (r *sqliteServerRepo) Update(ctx context.Context, server *models.Server) error {
	query := `
		UPDATE servers
		SET name = ?, icon_url = ?, banner_url = ?,
			allow_member_invites = ?, allow_sound_upload = ?, allow_sound_delete = ?,
			allow_sticker_create = ?, allow_emoji_create = ?, allow_cross_server_sounds = ?,
			virus_scan_enabled = ?, virus_scan_api_key = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		server.Name,
		server.IconURL,
		server.BannerURL,
		server.Policy.AllowMemberInvites,
		server.Policy.AllowSoundUpload,
		server.Policy.AllowSoundDelete,
		server.Policy.AllowStickerCreate,
		server.Policy.AllowEmojiCreate,
		server.Policy.AllowCrossServerSounds,
		server.VirusScan.Enabled,
		server.VirusScan.APIKey,
		server.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update server: %w", err)
	}

	return requireAffected(result)
}

func (r *sqliteServerRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM servers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}
	return requireAffected(result)
}

// rowScanner, *sql.Row ve *sql.Rows'un ortak Scan yüzeyi.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanServer(row rowScanner) (*models.Server, error) {
	server := &models.Server{}
	err := row.Scan(
		&server.ID,
		&server.OwnerID,
		&server.Name,
		&server.IconURL,
		&server.BannerURL,
		&server.Policy.AllowMemberInvites,
		&server.Policy.AllowSoundUpload,
		&server.Policy.AllowSoundDelete,
		&server.Policy.AllowStickerCreate,
		&server.Policy.AllowEmojiCreate,
		&server.Policy.AllowCrossServerSounds,
		&server.VirusScan.Enabled,
		&server.VirusScan.APIKey,
		&server.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return server, nil
}
