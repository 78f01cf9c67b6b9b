package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/model"
)

type UserTagRateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserTagRateRepository(db *pgxpool.Pool, logger *zap.Logger) *UserTagRateRepository {
	return &UserTagRateRepository{db: db, logger: logger}
}

// Upsert writes the (user, tag) rate, replacing any previous value.
func (r *UserTagRateRepository) Upsert(ctx context.Context, userID int, tag model.SubTaskTag, rate float64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_tag_rates (user_id, tag, rate)
         VALUES ($1, $2, $3)
         ON CONFLICT (user_id, tag) DO UPDATE SET rate = EXCLUDED.rate`,
		userID, string(tag), rate,
	)
	if err != nil {
		r.logger.Error("Failed to upsert tag rate",
			zap.Error(err),
			zap.Int("user_id", userID),
			zap.String("tag", string(tag)),
		)
	}
	return err
}

func (r *UserTagRateRepository) ListByUser(ctx context.Context, userID int) ([]model.UserTagRate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, tag, rate FROM user_tag_rates WHERE user_id = $1`, userID,
	)
	if err != nil {
		r.logger.Error("Failed to list tag rates", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	rates := []model.UserTagRate{}
	for rows.Next() {
		var tr model.UserTagRate
		if err := rows.Scan(&tr.ID, &tr.UserID, &tr.Tag, &tr.Rate); err != nil {
			return nil, err
		}
		rates = append(rates, tr)
	}
	return rates, rows.Err()
}
