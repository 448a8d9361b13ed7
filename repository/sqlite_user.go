package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veyra-chat/server/database"
	"github.com/veyra-chat/server/models"
	"github.com/veyra-chat/server/pkg"
)

type sqliteUserRepo struct {
	db database.Querier
}

// NewSQLiteUserRepo, UserRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteUserRepo(db database.Querier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const userColumns = `id, username, display_name, display_color, password_hash,
	avatar_url, audio_input_mode, notify_sounds, created_at`

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.AudioInputMode == "" {
		user.AudioInputMode = models.AudioInputVoiceActivity
	}

	query := `
		INSERT INTO users (id, username, display_name, display_color, password_hash,
			avatar_url, audio_input_mode, notify_sounds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		user.DisplayName,
		user.DisplayColor,
		user.PasswordHash,
		user.AvatarURL,
		user.AudioInputMode,
		user.NotifySounds,
	).Scan(&user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username already taken", pkg.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *sqliteUserRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET display_name = ?, display_color = ?, avatar_url = ?,
			audio_input_mode = ?, notify_sounds = ?, password_hash = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.DisplayName,
		user.DisplayColor,
		user.AvatarURL,
		user.AudioInputMode,
		user.NotifySounds,
		user.PasswordHash,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return requireAffected(result)
}

func (r *sqliteUserRepo) Anonymize(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET display_name = ?, display_color = NULL, avatar_url = NULL,
			password_hash = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		models.AnonymizedDisplayName, models.PasswordSentinel, id,
	)
	if err != nil {
		return fmt.Errorf("failed to anonymize user: %w", err)
	}

	return requireAffected(result)
}

func (r *sqliteUserRepo) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.DisplayColor,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.AudioInputMode,
		&user.NotifySounds,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// isUniqueViolation, SQLite UNIQUE constraint hatasını kontrol eder.
// modernc.org/sqlite sqlite3 error kodunu mesaj içinde taşır.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// bindStamp, sıralamaya giren created_at kolonları için Go'dan bağlanan
// zaman damgası formatı. CURRENT_TIMESTAMP saniye hassasiyetindedir; aynı
// saniyedeki iki kayıt arasında sıra bilgisi taşımaz. Sabit genişlikli
// mikrosaniye metni hem CURRENT_TIMESTAMP satırlarıyla hem kendi aralarında
// sözlük sırası = kronolojik sıra verir ve sürücü tarafından time.Time'a
// geri parse edilir.
func bindStamp(t time.Time) (time.Time, string) {
	u := t.UTC().Truncate(time.Microsecond)
	return u, u.Format("2006-01-02 15:04:05.000000")
}

// requireAffected, UPDATE/DELETE sonucunda en az bir satır etkilenmesini
// bekler — sıfır satır, hedef kaydın olmadığı anlamına gelir.
func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
