package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
)

type sqliteRestrictionRepo struct {
	db database.Querier
}

// NewSQLiteRestrictionRepo, RestrictionRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteRestrictionRepo(db database.Querier) RestrictionRepository {
	return &sqliteRestrictionRepo{db: db}
}

const restrictionColumns = `id, server_id, user_id, type, actor_id, reason,
	created_at, expires_at, revoked_at`

func (r *sqliteRestrictionRepo) Create(ctx context.Context, restriction *models.ServerRestriction) error {
	if restriction.ID == "" {
		restriction.ID = uuid.NewString()
	}

	query := `
		INSERT INTO server_restrictions (id, server_id, user_id, type, actor_id, reason, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		restriction.ID,
		restriction.ServerID,
		restriction.UserID,
		restriction.Type,
		restriction.ActorID,
		restriction.Reason,
		restriction.ExpiresAt,
	).Scan(&restriction.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create restriction: %w", err)
	}

	return nil
}

func (r *sqliteRestrictionRepo) FindActive(ctx context.Context, serverID, userID string, typ models.RestrictionType, now time.Time) (*models.ServerRestriction, error) {
	// revoked_at filtresi SQL'de, expiry değerlendirmesi Go'da —
	// aktiflik kuralının tek kaynağı models.IsActiveAt kalsın diye.
	query := `
		SELECT ` + restrictionColumns + `
		FROM server_restrictions
		WHERE server_id = ? AND user_id = ? AND type = ? AND revoked_at IS NULL
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, serverID, userID, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to find active restriction: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		restriction, err := scanRestriction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restriction row: %w", err)
		}
		if restriction.IsActiveAt(now) {
			return restriction, nil
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restriction rows: %w", err)
	}

	return nil, pkg.ErrNotFound
}

func (r *sqliteRestrictionRepo) Revoke(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE server_restrictions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("failed to revoke restriction: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteRestrictionRepo) ListActiveByServer(ctx context.Context, serverID string, typ models.RestrictionType, now time.Time) ([]models.ServerRestriction, error) {
	query := `
		SELECT ` + restrictionColumns + `
		FROM server_restrictions
		WHERE server_id = ? AND type = ? AND revoked_at IS NULL
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, serverID, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to list restrictions: %w", err)
	}
	defer rows.Close()

	var restrictions []models.ServerRestriction
	for rows.Next() {
		restriction, err := scanRestriction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restriction row: %w", err)
		}
		if restriction.IsActiveAt(now) {
			restrictions = append(restrictions, *restriction)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restriction rows: %w", err)
	}

	return restrictions, nil
}

func scanRestriction(row rowScanner) (*models.ServerRestriction, error) {
	restriction := &models.ServerRestriction{}
	err := row.Scan(
		&restriction.ID,
		&restriction.ServerID,
		&restriction.UserID,
		&restriction.Type,
		&restriction.ActorID,
		&restriction.Reason,
		&restriction.CreatedAt,
		&restriction.ExpiresAt,
		&restriction.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return restriction, nil
}
