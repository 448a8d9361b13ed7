package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
)

type sqliteVoiceActionRepo struct {
	db database.Querier
}

// NewSQLiteVoiceActionRepo, VoiceActionRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteVoiceActionRepo(db database.Querier) VoiceActionRepository {
	return &sqliteVoiceActionRepo{db: db}
}

func (r *sqliteVoiceActionRepo) Enqueue(ctx context.Context, action *models.ServerVoiceAction) error {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}

	// created_at Go'dan mikrosaniye hassasiyetiyle bağlanır: FIFO sırası
	// aynı saniyede art arda kuyruklanan komutlar için de korunmalıdır.
	createdAt, stamp := bindStamp(time.Now())

	query := `
		INSERT INTO server_voice_actions (id, server_id, user_id, action, target_channel_id, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		action.ID,
		action.ServerID,
		action.UserID,
		action.Action,
		action.TargetChannelID,
		action.ActorID,
		stamp,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue voice action: %w", err)
	}

	action.CreatedAt = createdAt
	return nil
}

func (r *sqliteVoiceActionRepo) ConsumeNext(ctx context.Context, serverID, userID string, now time.Time) (*models.ServerVoiceAction, error) {
	// select → koşullu claim döngüsü. Yarışan poll claim'i kaybederse
	// bir sonraki bekleyen komut denenir; kuyruk boşalınca nil döner.
	for {
		query := `
			SELECT id, server_id, user_id, action, target_channel_id, actor_id, created_at, handled_at
			FROM server_voice_actions
			WHERE server_id = ? AND user_id = ? AND handled_at IS NULL
			ORDER BY created_at ASC, rowid ASC
			LIMIT 1`

		action := &models.ServerVoiceAction{}
		err := r.db.QueryRowContext(ctx, query, serverID, userID).Scan(
			&action.ID,
			&action.ServerID,
			&action.UserID,
			&action.Action,
			&action.TargetChannelID,
			&action.ActorID,
			&action.CreatedAt,
			&action.HandledAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to select pending voice action: %w", err)
		}

		claim := `UPDATE server_voice_actions SET handled_at = ? WHERE id = ? AND handled_at IS NULL`
		result, err := r.db.ExecContext(ctx, claim, now, action.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to claim voice action: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 1 {
			action.HandledAt = &now
			return action, nil
		}
		// Claim'i başka bir poll kaptı — sıradakine geç.
	}
}
