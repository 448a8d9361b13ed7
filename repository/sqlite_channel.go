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

type sqliteChannelRepo struct {
	db database.Querier
}

// NewSQLiteChannelRepo, ChannelRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteChannelRepo(db database.Querier) ChannelRepository {
	return &sqliteChannelRepo{db: db}
}

const channelColumns = `id, server_id, category_id, name, type, position,
	allow_member_view, allow_member_access, allow_member_send_messages,
	allow_member_send_files, allow_member_send_links, allow_member_delete_messages,
	allow_moderator_view, allow_moderator_access, allow_moderator_send_messages,
	allow_moderator_send_files, allow_moderator_send_links, allow_moderator_delete_messages,
	created_at`

func (r *sqliteChannelRepo) Create(ctx context.Context, channel *models.Channel) error {
	if channel.ID == "" {
		channel.ID = uuid.NewString()
	}

	query := `
		INSERT INTO channels (id, server_id, category_id, name, type, position,
			allow_member_view, allow_member_access, allow_member_send_messages,
			allow_member_send_files, allow_member_send_links, allow_member_delete_messages,
			allow_moderator_view, allow_moderator_access, allow_moderator_send_messages,
			allow_moderator_send_files, allow_moderator_send_links, allow_moderator_delete_messages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		channel.ID,
		channel.ServerID,
		channel.CategoryID,
		channel.Name,
		channel.Type,
		channel.Position,
		channel.Member.View,
		channel.Member.Access,
		channel.Member.SendMessages,
		channel.Member.SendFiles,
		channel.Member.SendLinks,
		channel.Member.DeleteMessages,
		channel.Moderator.View,
		channel.Moderator.Access,
		channel.Moderator.SendMessages,
		channel.Moderator.SendFiles,
		channel.Moderator.SendLinks,
		channel.Moderator.DeleteMessages,
	).Scan(&channel.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	return nil
}

func (r *sqliteChannelRepo) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE id = ?`

	channel, err := scanChannel(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel by id: %w", err)
	}
	return channel, nil
}

func (r *sqliteChannelRepo) ListByServer(ctx context.Context, serverID string) ([]models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE server_id = ? ORDER BY position ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, *channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	return channels, nil
}

func (r *sqliteChannelRepo) Update(ctx context.Context, channel *models.Channel) error {
	query := `
		UPDATE channels
		SET name = ?, category_id = ?, position = ?,
			allow_member_view = ?, allow_member_access = ?, allow_member_send_messages = ?,
			allow_member_send_files = ?, allow_member_send_links = ?, allow_member_delete_messages = ?,
			allow_moderator_view = ?, allow_moderator_access = ?, allow_moderator_send_messages = ?,
			allow_moderator_send_files = ?, allow_moderator_send_links = ?, allow_moderator_delete_messages = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		channel.Name,
		channel.CategoryID,
		channel.Position,
		channel.Member.View,
		channel.Member.Access,
		channel.Member.SendMessages,
		channel.Member.SendFiles,
		channel.Member.SendLinks,
		channel.Member.DeleteMessages,
		channel.Moderator.View,
		channel.Moderator.Access,
		channel.Moderator.SendMessages,
		channel.Moderator.SendFiles,
		channel.Moderator.SendLinks,
		channel.Moderator.DeleteMessages,
		channel.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteChannelRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return requireAffected(result)
}

func scanChannel(row rowScanner) (*models.Channel, error) {
	channel := &models.Channel{}
	err := row.Scan(
		&channel.ID,
		&channel.ServerID,
		&channel.CategoryID,
		&channel.Name,
		&channel.Type,
		&channel.Position,
		&channel.Member.View,
		&channel.Member.Access,
		&channel.Member.SendMessages,
		&channel.Member.SendFiles,
		&channel.Member.SendLinks,
		&channel.Member.DeleteMessages,
		&channel.Moderator.View,
		&channel.Moderator.Access,
		&channel.Moderator.SendMessages,
		&channel.Moderator.SendFiles,
		&channel.Moderator.SendLinks,
		&channel.Moderator.DeleteMessages,
		&channel.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return channel, nil
}
