package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
)

type sqliteMemberRepo struct {
	db database.Querier
}

// NewSQLiteMemberRepo, MemberRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteMemberRepo(db database.Querier) MemberRepository {
	return &sqliteMemberRepo{db: db}
}

const memberColumns = `server_id, user_id, role,
	can_remove_members, can_ban_users, can_timeout_voice, can_delete_messages,
	can_kick_from_voice, can_move_voice_users, can_manage_invites, joined_at`

func (r *sqliteMemberRepo) Upsert(ctx context.Context, member *models.ServerMember) error {
	query := `
		INSERT INTO server_members (server_id, user_id, role,
			can_remove_members, can_ban_users, can_timeout_voice, can_delete_messages,
			can_kick_from_voice, can_move_voice_users, can_manage_invites)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (server_id, user_id) DO UPDATE SET
			role = excluded.role,
			can_remove_members = excluded.can_remove_members,
			can_ban_users = excluded.can_ban_users,
			can_timeout_voice = excluded.can_timeout_voice,
			can_delete_messages = excluded.can_delete_messages,
			can_kick_from_voice = excluded.can_kick_from_voice,
			can_move_voice_users = excluded.can_move_voice_users,
			can_manage_invites = excluded.can_manage_invites
		RETURNING joined_at`

	err := r.db.QueryRowContext(ctx, query,
		member.ServerID,
		member.UserID,
		member.Role,
		member.Flags.CanRemoveMembers,
		member.Flags.CanBanUsers,
		member.Flags.CanTimeoutVoice,
		member.Flags.CanDeleteMessages,
		member.Flags.CanKickFromVoice,
		member.Flags.CanMoveVoiceUsers,
		member.Flags.CanManageInvites,
	).Scan(&member.JoinedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}

func (r *sqliteMemberRepo) Get(ctx context.Context, serverID, userID string) (*models.ServerMember, error) {
	query := `SELECT ` + memberColumns + ` FROM server_members WHERE server_id = ? AND user_id = ?`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, serverID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

func (r *sqliteMemberRepo) List(ctx context.Context, serverID string) ([]models.ServerMember, error) {
	query := `SELECT ` + memberColumns + ` FROM server_members WHERE server_id = ? ORDER BY joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.ServerMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, *member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, nil
}

func (r *sqliteMemberRepo) Delete(ctx context.Context, serverID, userID string) error {
	query := `DELETE FROM server_members WHERE server_id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, serverID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteMemberRepo) Exists(ctx context.Context, serverID, userID string) (bool, error) {
	query := `SELECT 1 FROM server_members WHERE server_id = ? AND user_id = ? LIMIT 1`

	var dummy int
	err := r.db.QueryRowContext(ctx, query, serverID, userID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

func (r *sqliteMemberRepo) HasElevatedRoleAnywhere(ctx context.Context, userID string) (bool, error) {
	query := `SELECT 1 FROM server_members WHERE user_id = ? AND role IN (?, ?) LIMIT 1`

	var dummy int
	err := r.db.QueryRowContext(ctx, query, userID, models.RoleAdmin, models.RoleModerator).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check elevated role: %w", err)
	}
	return true, nil
}

func scanMember(row rowScanner) (*models.ServerMember, error) {
	member := &models.ServerMember{}
	err := row.Scan(
		&member.ServerID,
		&member.UserID,
		&member.Role,
		&member.Flags.CanRemoveMembers,
		&member.Flags.CanBanUsers,
		&member.Flags.CanTimeoutVoice,
		&member.Flags.CanDeleteMessages,
		&member.Flags.CanKickFromVoice,
		&member.Flags.CanMoveVoiceUsers,
		&member.Flags.CanManageInvites,
		&member.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}
