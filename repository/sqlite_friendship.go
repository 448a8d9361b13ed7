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

type sqliteFriendshipRepo struct {
	db database.Querier
}

// NewSQLiteFriendshipRepo, FriendshipRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteFriendshipRepo(db database.Querier) FriendshipRepository {
	return &sqliteFriendshipRepo{db: db}
}

const requestColumns = `id, requester_id, receiver_id, status, created_at, resolved_at`

func (r *sqliteFriendshipRepo) CreateRequest(ctx context.Context, req *models.DirectFriendRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.FriendRequestPending
	}

	query := `
		INSERT INTO dm_friend_requests (id, requester_id, receiver_id, status)
		VALUES (?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		req.ID, req.RequesterID, req.ReceiverID, req.Status,
	).Scan(&req.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}

	return nil
}

func (r *sqliteFriendshipRepo) GetRequestByID(ctx context.Context, id string) (*models.DirectFriendRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM dm_friend_requests WHERE id = ?`
	return r.scanRequest(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteFriendshipRepo) GetPendingBetween(ctx context.Context, userA, userB string) (*models.DirectFriendRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM dm_friend_requests
		WHERE status = ?
			AND ((requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?))
		LIMIT 1`

	return r.scanRequest(r.db.QueryRowContext(ctx, query,
		models.FriendRequestPending, userA, userB, userB, userA,
	))
}

func (r *sqliteFriendshipRepo) ResolveRequest(ctx context.Context, id string, status models.FriendRequestStatus, resolvedAt time.Time) error {
	query := `
		UPDATE dm_friend_requests
		SET status = ?, resolved_at = ?
		WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, status, resolvedAt, id, models.FriendRequestPending)
	if err != nil {
		return fmt.Errorf("failed to resolve friend request: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteFriendshipRepo) ListPendingForReceiver(ctx context.Context, receiverID string) ([]models.DirectFriendRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM dm_friend_requests
		WHERE receiver_id = ? AND status = ?
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, receiverID, models.FriendRequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending friend requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.DirectFriendRequest
	for rows.Next() {
		var req models.DirectFriendRequest
		if err := rows.Scan(
			&req.ID, &req.RequesterID, &req.ReceiverID, &req.Status, &req.CreatedAt, &req.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan friend request row: %w", err)
		}
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend request rows: %w", err)
	}

	return reqs, nil
}

func (r *sqliteFriendshipRepo) AddFriendEdge(ctx context.Context, userID, friendID string) error {
	// INSERT OR IGNORE: kabul akışı iki yönü birden yazar, tekrar kabulde
	// mevcut edge hata üretmez.
	query := `INSERT OR IGNORE INTO dm_friends (user_id, friend_id) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, userID, friendID); err != nil {
		return fmt.Errorf("failed to add friend edge: %w", err)
	}
	return nil
}

func (r *sqliteFriendshipRepo) RemoveFriendEdges(ctx context.Context, userA, userB string) error {
	query := `
		DELETE FROM dm_friends
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`

	if _, err := r.db.ExecContext(ctx, query, userA, userB, userB, userA); err != nil {
		return fmt.Errorf("failed to remove friend edges: %w", err)
	}
	return nil
}

func (r *sqliteFriendshipRepo) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	query := `SELECT 1 FROM dm_friends WHERE user_id = ? AND friend_id = ? LIMIT 1`

	var dummy int
	err := r.db.QueryRowContext(ctx, query, userA, userB).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return true, nil
}

func (r *sqliteFriendshipRepo) ListFriends(ctx context.Context, userID string) ([]models.DirectFriend, error) {
	query := `SELECT user_id, friend_id, created_at FROM dm_friends WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []models.DirectFriend
	for rows.Next() {
		var friend models.DirectFriend
		if err := rows.Scan(&friend.UserID, &friend.FriendID, &friend.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend row: %w", err)
		}
		friends = append(friends, friend)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend rows: %w", err)
	}

	return friends, nil
}

func (r *sqliteFriendshipRepo) CreateBlock(ctx context.Context, blockerID, blockedID string) error {
	query := `INSERT OR IGNORE INTO dm_blocks (blocker_id, blocked_id) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, blockerID, blockedID); err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}
	return nil
}

func (r *sqliteFriendshipRepo) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	query := `DELETE FROM dm_blocks WHERE blocker_id = ? AND blocked_id = ?`

	result, err := r.db.ExecContext(ctx, query, blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteFriendshipRepo) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	query := `SELECT 1 FROM dm_blocks WHERE blocker_id = ? AND blocked_id = ? LIMIT 1`

	var dummy int
	err := r.db.QueryRowContext(ctx, query, blockerID, blockedID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return true, nil
}

func (r *sqliteFriendshipRepo) ListBlocks(ctx context.Context, blockerID string) ([]models.DirectBlock, error) {
	query := `SELECT blocker_id, blocked_id, created_at FROM dm_blocks WHERE blocker_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, blockerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.DirectBlock
	for rows.Next() {
		var block models.DirectBlock
		if err := rows.Scan(&block.BlockerID, &block.BlockedID, &block.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan block row: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating block rows: %w", err)
	}

	return blocks, nil
}

func (r *sqliteFriendshipRepo) scanRequest(row *sql.Row) (*models.DirectFriendRequest, error) {
	req := &models.DirectFriendRequest{}
	err := row.Scan(
		&req.ID, &req.RequesterID, &req.ReceiverID, &req.Status, &req.CreatedAt, &req.ResolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan friend request: %w", err)
	}
	return req, nil
}
