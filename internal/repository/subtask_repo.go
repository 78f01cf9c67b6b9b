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

type SubTaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSubTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *SubTaskRepository {
	return &SubTaskRepository{db: db, logger: logger}
}

const subTaskColumns = `
	id, project_id, subtask_order, name, expected_time, actual_time, tag, is_done, created_at
`

func scanSubTask(row pgx.Row) (*model.SubTask, error) {
	var st model.SubTask
	err := row.Scan(
		&st.ID,
		&st.ProjectID,
		&st.Order,
		&st.Name,
		&st.ExpectedTime,
		&st.ActualTime,
		&st.Tag,
		&st.IsDone,
		&st.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *SubTaskRepository) Insert(ctx context.Context, st *model.SubTask) (int, error) {
	var id int
	err := r.db.QueryRow(ctx,
		`INSERT INTO subtasks (project_id, subtask_order, name, expected_time, tag, is_done)
         VALUES ($1, $2, $3, $4, $5, false)
         RETURNING id`,
		st.ProjectID, st.Order, st.Name, st.ExpectedTime, string(st.Tag),
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert subtask", zap.Error(err), zap.Int("project_id", st.ProjectID))
		return 0, err
	}
	r.logger.Info("Subtask inserted", zap.Int("subtask_id", id), zap.Int("project_id", st.ProjectID))
	return id, nil
}

// InsertBatch creates one subtask per draft inside a single
// transaction, preserving the provided order values.
func (r *SubTaskRepository) InsertBatch(ctx context.Context, projectID int, drafts []model.SubTaskDraft) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, d := range drafts {
		_, err := tx.Exec(ctx,
			`INSERT INTO subtasks (project_id, subtask_order, name, expected_time, tag, is_done)
             VALUES ($1, $2, $3, $4, $5, false)`,
			projectID, d.Order, d.Name, d.ExpectedTime, string(d.Tag),
		)
		if err != nil {
			r.logger.Error("Failed to insert subtask batch", zap.Error(err), zap.Int("project_id", projectID))
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("Subtask batch inserted",
		zap.Int("project_id", projectID),
		zap.Int("count", len(drafts)),
	)
	return nil
}

func (r *SubTaskRepository) FindByID(ctx context.Context, subTaskID int) (*model.SubTask, error) {
	row := r.db.QueryRow(ctx, `SELECT `+subTaskColumns+` FROM subtasks WHERE id = $1`, subTaskID)
	st, err := scanSubTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("subtask", subTaskID)
	}
	if err != nil {
		r.logger.Error("Failed to find subtask", zap.Error(err), zap.Int("subtask_id", subTaskID))
		return nil, err
	}
	return st, nil
}

func (r *SubTaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.SubTask, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+subTaskColumns+` FROM subtasks
         WHERE project_id = $1
         ORDER BY subtask_order, id`,
		projectID,
	)
	if err != nil {
		r.logger.Error("Failed to list subtasks", zap.Error(err), zap.Int("project_id", projectID))
		return nil, err
	}
	defer rows.Close()
	return collectSubTasks(rows)
}

func (r *SubTaskRepository) Update(ctx context.Context, st *model.SubTask) error {
	_, err := r.db.Exec(ctx,
		`UPDATE subtasks
         SET subtask_order = $2, name = $3, expected_time = $4, tag = $5
         WHERE id = $1`,
		st.ID, st.Order, st.Name, st.ExpectedTime, string(st.Tag),
	)
	if err != nil {
		r.logger.Error("Failed to update subtask", zap.Error(err), zap.Int("subtask_id", st.ID))
	}
	return err
}

func (r *SubTaskRepository) SetActualTime(ctx context.Context, subTaskID, minutes int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE subtasks SET actual_time = $2 WHERE id = $1`, subTaskID, minutes,
	)
	return err
}

func (r *SubTaskRepository) Delete(ctx context.Context, subTaskID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, subTaskID)
	if err != nil {
		r.logger.Error("Failed to delete subtask", zap.Error(err), zap.Int("subtask_id", subTaskID))
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("subtask", subTaskID)
	}
	return nil
}

// AggregatesForProject returns count/done/expected-sum rollups; all
// zeros when the project has no subtasks.
func (r *SubTaskRepository) AggregatesForProject(ctx context.Context, projectID int) (model.SubTaskAggregates, error) {
	var agg model.SubTaskAggregates
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
                COUNT(*) FILTER (WHERE is_done),
                COALESCE(SUM(expected_time), 0)
         FROM subtasks WHERE project_id = $1`,
		projectID,
	).Scan(&agg.Count, &agg.DoneCount, &agg.SumExpectedTime)
	if err != nil {
		r.logger.Error("Failed to aggregate subtasks", zap.Error(err), zap.Int("project_id", projectID))
		return model.SubTaskAggregates{}, err
	}
	return agg, nil
}

// ListMeasuredByUser returns every subtask across all of the user's
// projects that has a recorded actual time. This feeds the full-history
// tag-rate recompute.
func (r *SubTaskRepository) ListMeasuredByUser(ctx context.Context, userID int) ([]model.SubTask, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+subTaskColumns+` FROM subtasks
         WHERE actual_time IS NOT NULL
           AND project_id IN (SELECT id FROM projects WHERE user_id = $1)
         ORDER BY id`,
		userID,
	)
	if err != nil {
		r.logger.Error("Failed to list measured subtasks", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()
	return collectSubTasks(rows)
}

// SetDone flips a subtask's done flag and syncs the owning project's
// status and progress rate in the same transaction, so the state
// machine never observes a half-applied change. Returns the project's
// resulting status.
func (r *SubTaskRepository) SetDone(ctx context.Context, subTaskID int, done bool) (model.ProjectStatus, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var projectID int
	err = tx.QueryRow(ctx,
		`UPDATE subtasks SET is_done = $2 WHERE id = $1 RETURNING project_id`,
		subTaskID, done,
	).Scan(&projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound("subtask", subTaskID)
	}
	if err != nil {
		return "", err
	}

	status, err := syncProjectInTx(ctx, tx, projectID)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return status, nil
}

// SyncProject recomputes a project's status and progress rate from its
// subtasks under a row lock. Called after subtask create/delete so the
// stored progress invariant holds.
func (r *SubTaskRepository) SyncProject(ctx context.Context, projectID int) (model.ProjectStatus, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	status, err := syncProjectInTx(ctx, tx, projectID)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return status, nil
}

func syncProjectInTx(ctx context.Context, tx pgx.Tx, projectID int) (model.ProjectStatus, error) {
	var status string
	err := tx.QueryRow(ctx,
		`SELECT status FROM projects WHERE id = $1 FOR UPDATE`, projectID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound("project", projectID)
	}
	if err != nil {
		return "", err
	}

	var total, done int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_done) FROM subtasks WHERE project_id = $1`,
		projectID,
	).Scan(&total, &done)
	if err != nil {
		return "", err
	}

	next := model.NextStatus(model.ProjectStatus(status), done, total)
	rate := model.ProgressRate(done, total)

	_, err = tx.Exec(ctx,
		`UPDATE projects SET status = $2, progress_rate = $3 WHERE id = $1`,
		projectID, string(next), rate,
	)
	if err != nil {
		return "", err
	}
	return next, nil
}

func collectSubTasks(rows pgx.Rows) ([]model.SubTask, error) {
	subtasks := []model.SubTask{}
	for rows.Next() {
		st, err := scanSubTask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, *st)
	}
	return subtasks, rows.Err()
}
