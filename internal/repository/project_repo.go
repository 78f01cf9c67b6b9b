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

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

const projectColumns = `
	id, user_id, tag_id, name, description, requirement, deadline,
	expected_time, progress_rate, level_factor, coin, status, created_at
`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.TagID,
		&p.Name,
		&p.Description,
		&p.Requirement,
		&p.Deadline,
		&p.ExpectedTime,
		&p.ProgressRate,
		&p.LevelFactor,
		&p.Coin,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.Int("user_id", p.UserID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO projects (user_id, tag_id, name, description, requirement, deadline,
                              expected_time, progress_rate, level_factor, coin, status)
        VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, 0, $7)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.UserID,
		p.TagID,
		p.Name,
		p.Description,
		p.Requirement,
		p.Deadline,
		string(model.StatusInProgress),
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Project inserted", zap.Int("project_id", id), zap.Int("user_id", p.UserID))
	return id, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, projectID int) (*model.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, projectID)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("project", projectID)
	}
	if err != nil {
		r.logger.Error("Failed to find project", zap.Error(err), zap.Int("project_id", projectID))
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID int) ([]model.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY id DESC`, userID,
	)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// ListFiltered lists a user's projects, optionally narrowed to tag IDs
// and sorted by one of name/progress/deadline. Unknown sort keys fall
// back to insertion order.
func (r *ProjectRepository) ListFiltered(ctx context.Context, userID int, tagIDs []int, sortBy string) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1`
	args := []any{userID}
	if len(tagIDs) > 0 {
		query += ` AND tag_id = ANY($2)`
		args = append(args, tagIDs)
	}

	switch sortBy {
	case "name":
		query += ` ORDER BY name ASC`
	case "progress":
		query += ` ORDER BY progress_rate DESC`
	case "deadline":
		query += ` ORDER BY deadline ASC`
	default:
		query += ` ORDER BY id DESC`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list filtered projects", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// FindRecentByUser returns the newest project that is not yet DONE.
func (r *ProjectRepository) FindRecentByUser(ctx context.Context, userID int) (*model.Project, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects
         WHERE user_id = $1 AND status <> $2
         ORDER BY id DESC LIMIT 1`,
		userID, string(model.StatusDone),
	)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.InvalidState("no recent project")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update persists the editable fields (the service merges request
// fields into the loaded project first).
func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects
         SET tag_id = $2, name = $3, description = $4, requirement = $5, deadline = $6
         WHERE id = $1`,
		p.ID, p.TagID, p.Name, p.Description, p.Requirement, p.Deadline,
	)
	if err != nil {
		r.logger.Error("Failed to update project", zap.Error(err), zap.Int("project_id", p.ID))
	}
	return err
}

func (r *ProjectRepository) SetLevelFactor(ctx context.Context, projectID, factor int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET level_factor = $2 WHERE id = $1`, projectID, factor,
	)
	return err
}

func (r *ProjectRepository) SetExpectedTime(ctx context.Context, projectID, minutes int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET expected_time = $2 WHERE id = $1`, projectID, minutes,
	)
	return err
}

func (r *ProjectRepository) SetProgressRate(ctx context.Context, projectID, rate int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET progress_rate = $2 WHERE id = $1`, projectID, rate,
	)
	return err
}

func (r *ProjectRepository) Delete(ctx context.Context, projectID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.Error(err), zap.Int("project_id", projectID))
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("project", projectID)
	}
	return nil
}

// CompleteAndReward applies the full completion effect as one
// transaction: level factor, coin, expected time and DONE status on the
// project plus the coin credit on the owner. The project row is locked
// and its status re-checked so concurrent completions cannot pay twice.
func (r *ProjectRepository) CompleteAndReward(ctx context.Context, projectID, userID, levelFactor, coin, expectedMinutes int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM projects WHERE id = $1 FOR UPDATE`, projectID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("project", projectID)
	}
	if err != nil {
		return err
	}
	if model.ProjectStatus(status) == model.StatusDone {
		return apperr.InvalidState("project is already completed")
	}

	_, err = tx.Exec(ctx,
		`UPDATE projects
         SET level_factor = $2, coin = $3, expected_time = $4, status = $5
         WHERE id = $1`,
		projectID, levelFactor, coin, expectedMinutes, string(model.StatusDone),
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET coin = coin + $2 WHERE id = $1`, userID, coin); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Project completed and rewarded",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
		zap.Int("coin", coin),
		zap.Int("level_factor", levelFactor),
	)
	return nil
}

func collectProjects(rows pgx.Rows) ([]model.Project, error) {
	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}
