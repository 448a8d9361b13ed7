package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
)

type sqliteInviteRepo struct {
	db database.Querier
}

// NewSQLiteInviteRepo, InviteRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteInviteRepo(db database.Querier) InviteRepository {
	return &sqliteInviteRepo{db: db}
}

func (r *sqliteInviteRepo) Create(ctx context.Context, invite *models.ServerInvite) error {
	query := `
		INSERT INTO server_invites (code, server_id, creator_id)
		VALUES (?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		invite.Code, invite.ServerID, invite.CreatorID,
	).Scan(&invite.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invite code collision", pkg.ErrConflict)
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}

	return nil
}

func (r *sqliteInviteRepo) GetByCode(ctx context.Context, code string) (*models.ServerInvite, error) {
	query := `SELECT code, server_id, creator_id, created_at, revoked_at FROM server_invites WHERE code = ?`

	invite := &models.ServerInvite{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&invite.Code, &invite.ServerID, &invite.CreatorID, &invite.CreatedAt, &invite.RevokedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite by code: %w", err)
	}
	return invite, nil
}

func (r *sqliteInviteRepo) ListActiveByServer(ctx context.Context, serverID string) ([]models.ServerInvite, error) {
	query := `
		SELECT code, server_id, creator_id, created_at, revoked_at
		FROM server_invites
		WHERE server_id = ? AND revoked_at IS NULL
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []models.ServerInvite
	for rows.Next() {
		var invite models.ServerInvite
		if err := rows.Scan(
			&invite.Code, &invite.ServerID, &invite.CreatorID, &invite.CreatedAt, &invite.RevokedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite row: %w", err)
		}
		invites = append(invites, invite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invite rows: %w", err)
	}

	return invites, nil
}

func (r *sqliteInviteRepo) CountActive(ctx context.Context, serverID string) (int, error) {
	query := `SELECT COUNT(*) FROM server_invites WHERE server_id = ? AND revoked_at IS NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query, serverID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active invites: %w", err)
	}
	return count, nil
}

func (r *sqliteInviteRepo) Revoke(ctx context.Context, code string, now time.Time) error {
	query := `UPDATE server_invites SET revoked_at = ? WHERE code = ? AND revoked_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, code)
	if err != nil {
		return fmt.Errorf("failed to revoke invite: %w", err)
	}
	return requireAffected(result)
}
