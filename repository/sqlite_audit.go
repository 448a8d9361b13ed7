package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
)

type sqliteAuditRepo struct {
	db database.Querier
}

// NewSQLiteAuditRepo, AuditRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteAuditRepo(db database.Querier) AuditRepository {
	return &sqliteAuditRepo{db: db}
}

func (r *sqliteAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO audit_logs (id, server_id, actor_id, action, target_id, target_label, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.ServerID,
		entry.ActorID,
		entry.Action,
		entry.TargetID,
		entry.TargetLabel,
		entry.Detail,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func (r *sqliteAuditRepo) ListByServer(ctx context.Context, serverID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	query := `
		SELECT id, server_id, actor_id, action, target_id, target_label, detail, created_at
		FROM audit_logs
		WHERE server_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(
			&entry.ID, &entry.ServerID, &entry.ActorID, &entry.Action,
			&entry.TargetID, &entry.TargetLabel, &entry.Detail, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log rows: %w", err)
	}

	return entries, nil
}
