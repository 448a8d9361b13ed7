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
	"github.com/veyra-chat/server/pkg"
)

type sqliteDMRepo struct {
	db database.Querier
}

// NewSQLiteDMRepo, DMRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteDMRepo(db database.Querier) DMRepository {
	return &sqliteDMRepo{db: db}
}

func (r *sqliteDMRepo) CreateConversation(ctx context.Context, conv *models.DirectConversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}

	query := `
		INSERT INTO dm_conversations (id, user1_id, user2_id)
		VALUES (?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		conv.ID, conv.User1ID, conv.User2ID,
	).Scan(&conv.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: conversation already exists", pkg.ErrConflict)
		}
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

func (r *sqliteDMRepo) GetConversationByID(ctx context.Context, id string) (*models.DirectConversation, error) {
	query := `SELECT id, user1_id, user2_id, created_at FROM dm_conversations WHERE id = ?`
	return r.scanConversation(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteDMRepo) GetConversationByPair(ctx context.Context, user1ID, user2ID string) (*models.DirectConversation, error) {
	query := `SELECT id, user1_id, user2_id, created_at FROM dm_conversations WHERE user1_id = ? AND user2_id = ?`
	return r.scanConversation(r.db.QueryRowContext(ctx, query, user1ID, user2ID))
}

func (r *sqliteDMRepo) ListConversations(ctx context.Context, userID string) ([]models.DirectConversation, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM dm_conversations
		WHERE user1_id = ? OR user2_id = ?
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.DirectConversation
	for rows.Next() {
		var conv models.DirectConversation
		if err := rows.Scan(&conv.ID, &conv.User1ID, &conv.User2ID, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		convs = append(convs, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return convs, nil
}

func (r *sqliteDMRepo) CreateMessage(ctx context.Context, msg *models.DirectMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	// created_at Go'dan mikrosaniye hassasiyetiyle bağlanır — sayfalama
	// cursor'ı aynı saniyedeki mesajları ayırt edebilmelidir.
	createdAt, stamp := bindStamp(time.Now())

	query := `
		INSERT INTO dm_messages (id, conversation_id, sender_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, stamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create dm message: %w", err)
	}

	msg.CreatedAt = createdAt
	return nil
}

func (r *sqliteDMRepo) GetMessageByID(ctx context.Context, id string) (*models.DirectMessage, error) {
	query := `SELECT id, conversation_id, sender_id, content, created_at, edited_at FROM dm_messages WHERE id = ?`
	return r.scanMessage(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteDMRepo) ListMessages(ctx context.Context, conversationID string, beforeID string, limit int) ([]models.DirectMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, conversation_id, sender_id, content, created_at, edited_at
		FROM dm_messages
		WHERE conversation_id = ?`
	args := []any{conversationID}

	if beforeID != "" {
		// Keyset cursor: beforeID'li mesajdan kesinlikle daha eski olanlar.
		// rowid eşit created_at'lerde ekleme sırasını korur — aynı saniyeye
		// (hatta mikrosaniyeye) düşen mesajlar cursor'dan kaçmaz.
		query += ` AND (created_at, rowid) < (SELECT created_at, rowid FROM dm_messages WHERE id = ?)`
		args = append(args, beforeID)
	}

	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dm messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.DirectMessage
	for rows.Next() {
		var msg models.DirectMessage
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.EditedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dm message row: %w", err)
		}
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dm message rows: %w", err)
	}

	return msgs, nil
}

func (r *sqliteDMRepo) UpdateMessageContent(ctx context.Context, id, content string, editedAt *time.Time) error {
	// editedAt nil ise edited_at dokunulmaz — system marker yeniden yazımı
	// kullanıcı düzenlemesi sayılmaz.
	query := `UPDATE dm_messages SET content = ?, edited_at = COALESCE(?, edited_at) WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, content, editedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update dm message: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteDMRepo) DeleteMessage(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dm_messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dm message: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteDMRepo) FindMarkerMessage(ctx context.Context, conversationID, requestID string) (*models.DirectMessage, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, created_at, edited_at
		FROM dm_messages
		WHERE conversation_id = ? AND content LIKE ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`

	pattern := "%[friend_request:" + requestID + ":%"
	return r.scanMessage(r.db.QueryRowContext(ctx, query, conversationID, pattern))
}

func (r *sqliteDMRepo) scanConversation(row *sql.Row) (*models.DirectConversation, error) {
	conv := &models.DirectConversation{}
	err := row.Scan(&conv.ID, &conv.User1ID, &conv.User2ID, &conv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	return conv, nil
}

func (r *sqliteDMRepo) scanMessage(row *sql.Row) (*models.DirectMessage, error) {
	msg := &models.DirectMessage{}
	err := row.Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.EditedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan dm message: %w", err)
	}
	return msg, nil
}
