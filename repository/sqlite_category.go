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

type sqliteCategoryRepo struct {
	db database.Querier
}

// NewSQLiteCategoryRepo, CategoryRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteCategoryRepo(db database.Querier) CategoryRepository {
	return &sqliteCategoryRepo{db: db}
}

func (r *sqliteCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	query := `
		INSERT INTO categories (id, server_id, name, position)
		VALUES (?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		category.ID, category.ServerID, category.Name, category.Position,
	).Scan(&category.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

func (r *sqliteCategoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `SELECT id, server_id, name, position, created_at FROM categories WHERE id = ?`

	category := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID, &category.ServerID, &category.Name, &category.Position, &category.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}
	return category, nil
}

func (r *sqliteCategoryRepo) ListByServer(ctx context.Context, serverID string) ([]models.Category, error) {
	query := `
		SELECT id, server_id, name, position, created_at
		FROM categories
		WHERE server_id = ?
		ORDER BY position ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(
			&category.ID, &category.ServerID, &category.Name, &category.Position, &category.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *sqliteCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `UPDATE categories SET name = ?, position = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, category.Name, category.Position, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteCategoryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(result)
}
