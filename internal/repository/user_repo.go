package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `
	id, login_id, password_hash, name, email, coin,
	COALESCE(detail_preference, ''), COALESCE(work_pace, ''),
	COALESCE(character_name, ''), created_at
`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.LoginID,
		&u.PasswordHash,
		&u.Name,
		&u.Email,
		&u.Coin,
		&u.DetailPreference,
		&u.WorkPace,
		&u.CharacterName,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *model.User) (int, error) {
	query := `
        INSERT INTO users (login_id, password_hash, name, email, coin)
        VALUES ($1, $2, $3, $4, 0)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, u.LoginID, u.PasswordHash, u.Name, u.Email).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert user", zap.Error(err), zap.String("login_id", u.LoginID))
		return 0, err
	}
	r.logger.Info("User inserted", zap.Int("user_id", id))
	return id, nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID int) (*model.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user", userID)
	}
	if err != nil {
		r.logger.Error("Failed to find user", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByLoginID(ctx context.Context, loginID string) (*model.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE login_id = $1`, loginID)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	if err != nil {
		r.logger.Error("Failed to update password", zap.Error(err), zap.Int("user_id", userID))
	}
	return err
}

func (r *UserRepository) UpdateDetailPreference(ctx context.Context, userID int, pref model.TaskDetailPreference) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET detail_preference = $2 WHERE id = $1`, userID, string(pref))
	return err
}

func (r *UserRepository) UpdateWorkPace(ctx context.Context, userID int, pace model.WorkPace) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET work_pace = $2 WHERE id = $1`, userID, string(pace))
	return err
}

func (r *UserRepository) Delete(ctx context.Context, userID int) error {
	// Projects, subtasks, tag rates and owned items go with the user via
	// ON DELETE CASCADE.
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.Error(err), zap.Int("user_id", userID))
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user", userID)
	}
	r.logger.Info("User deleted", zap.Int("user_id", userID))
	return nil
}

// SpendCoinAndGrantItem spends cost coins and records item ownership as
// one transaction. The user row is locked so concurrent draws cannot
// overspend; a short balance aborts with no writes.
func (r *UserRepository) SpendCoinAndGrantItem(ctx context.Context, userID, itemID, cost int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var coin int
	err = tx.QueryRow(ctx, `SELECT coin FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&coin)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("user", userID)
	}
	if err != nil {
		return err
	}

	if coin < cost {
		return apperr.InsufficientFunds(coin, cost)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET coin = coin - $2 WHERE id = $1`, userID, cost); err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO user_items (user_id, item_id, equipped_at) VALUES ($1, $2, $3)`,
		userID, itemID, time.Now(),
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Item drawn",
		zap.Int("user_id", userID),
		zap.Int("item_id", itemID),
		zap.Int("cost", cost),
	)
	return nil
}
