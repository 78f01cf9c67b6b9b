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

type ProjectTagRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectTagRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectTagRepository {
	return &ProjectTagRepository{db: db, logger: logger}
}

func (r *ProjectTagRepository) Insert(ctx context.Context, t *model.ProjectTag) (int, error) {
	var id int
	err := r.db.QueryRow(ctx,
		`INSERT INTO project_tags (user_id, name) VALUES ($1, $2) RETURNING id`,
		t.UserID, t.Name,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert project tag", zap.Error(err), zap.Int("user_id", t.UserID))
		return 0, err
	}
	return id, nil
}

func (r *ProjectTagRepository) FindByID(ctx context.Context, tagID int) (*model.ProjectTag, error) {
	var t model.ProjectTag
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name FROM project_tags WHERE id = $1`, tagID,
	).Scan(&t.ID, &t.UserID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("project tag", tagID)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ProjectTagRepository) FindByUserAndName(ctx context.Context, userID int, name string) (*model.ProjectTag, error) {
	var t model.ProjectTag
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name FROM project_tags WHERE user_id = $1 AND name = $2`,
		userID, name,
	).Scan(&t.ID, &t.UserID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.InvalidState("no project tag named " + name)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ProjectTagRepository) ExistsByUserAndName(ctx context.Context, userID int, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM project_tags WHERE user_id = $1 AND name = $2)`,
		userID, name,
	).Scan(&exists)
	return exists, err
}

func (r *ProjectTagRepository) ListByUser(ctx context.Context, userID int) ([]model.ProjectTag, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name FROM project_tags WHERE user_id = $1 ORDER BY id`, userID,
	)
	if err != nil {
		r.logger.Error("Failed to list project tags", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	tags := []model.ProjectTag{}
	for rows.Next() {
		var t model.ProjectTag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CountProjectsUsing reports how many projects still reference a tag.
// Tag deletion is blocked while this is non-zero.
func (r *ProjectTagRepository) CountProjectsUsing(ctx context.Context, tagID int) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE tag_id = $1`, tagID,
	).Scan(&n)
	return n, err
}

func (r *ProjectTagRepository) Delete(ctx context.Context, tagID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM project_tags WHERE id = $1`, tagID)
	if err != nil {
		r.logger.Error("Failed to delete project tag", zap.Error(err), zap.Int("tag_id", tagID))
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("project tag", tagID)
	}
	return nil
}
