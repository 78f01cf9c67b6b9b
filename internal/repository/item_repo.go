package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
)

type ItemRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewItemRepository(db *pgxpool.Pool, logger *zap.Logger) *ItemRepository {
	return &ItemRepository{db: db, logger: logger}
}

func (r *ItemRepository) FindByID(ctx context.Context, itemID int) (*model.Item, error) {
	var it model.Item
	err := r.db.QueryRow(ctx, `SELECT id, name FROM items WHERE id = $1`, itemID).Scan(&it.ID, &it.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("item", itemID)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepository) ListAll(ctx context.Context) ([]model.Item, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM items ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to list items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *ItemRepository) ListOwnedIDsByUser(ctx context.Context, userID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT item_id FROM user_items WHERE user_id = $1`, userID,
	)
	if err != nil {
		r.logger.Error("Failed to list owned items", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindLatestEquipped returns the item the user most recently equipped.
func (r *ItemRepository) FindLatestEquipped(ctx context.Context, userID int) (*model.Item, error) {
	var it model.Item
	err := r.db.QueryRow(ctx,
		`SELECT i.id, i.name
         FROM user_items ui
         JOIN items i ON i.id = ui.item_id
         WHERE ui.user_id = $1
         ORDER BY ui.equipped_at DESC, ui.id DESC
         LIMIT 1`,
		userID,
	).Scan(&it.ID, &it.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.InvalidState("no equipped item yet")
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}
