package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
	"github.com/domo-app/domo-server/pkg/metrics"
)

type SubTaskService struct {
	subtasks SubTaskStore
	projects ProjectStore
	logger   *zap.Logger
}

func NewSubTaskService(subtasks SubTaskStore, projects ProjectStore, logger *zap.Logger) *SubTaskService {
	return &SubTaskService{subtasks: subtasks, projects: projects, logger: logger}
}

func (s *SubTaskService) ownedProject(ctx context.Context, userID, projectID int) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperr.Forbidden("project", projectID)
	}
	return p, nil
}

func (s *SubTaskService) ownedSubTask(ctx context.Context, userID, subTaskID int) (*model.SubTask, error) {
	st, err := s.subtasks.FindByID(ctx, subTaskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedProject(ctx, userID, st.ProjectID); err != nil {
		return nil, err
	}
	return st, nil
}

type AddSubTaskInput struct {
	Order        int
	Name         string
	ExpectedTime int
	Tag          model.SubTaskTag
}

// Add inserts one subtask and re-derives the parent project's progress
// and status. Adding to an ALMOST_DONE project reverts it to
// IN_PROGRESS.
func (s *SubTaskService) Add(ctx context.Context, userID, projectID int, in AddSubTaskInput) (int, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return 0, err
	}
	if in.ExpectedTime < 0 {
		return 0, apperr.InvalidState("expected time must not be negative")
	}
	if _, err := model.ParseSubTaskTag(string(in.Tag)); err != nil {
		return 0, apperr.InvalidState(err.Error())
	}

	id, err := s.subtasks.Insert(ctx, &model.SubTask{
		ProjectID:    projectID,
		Order:        in.Order,
		Name:         in.Name,
		ExpectedTime: in.ExpectedTime,
		Tag:          in.Tag,
	})
	if err != nil {
		return 0, err
	}
	if _, err := s.subtasks.SyncProject(ctx, projectID); err != nil {
		return 0, err
	}
	metrics.RecordSubTasksCreated("manual", 1)
	return id, nil
}

func (s *SubTaskService) List(ctx context.Context, userID, projectID int) ([]model.SubTask, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.subtasks.ListByProject(ctx, projectID)
}

type UpdateSubTaskInput struct {
	Order        *int
	Name         *string
	ExpectedTime *int
	Tag          *model.SubTaskTag
}

// Update merges the provided fields into the subtask. Nil fields are
// left as they are.
func (s *SubTaskService) Update(ctx context.Context, userID, subTaskID int, in UpdateSubTaskInput) error {
	st, err := s.ownedSubTask(ctx, userID, subTaskID)
	if err != nil {
		return err
	}

	if in.Order != nil {
		st.Order = *in.Order
	}
	if in.Name != nil {
		st.Name = *in.Name
	}
	if in.ExpectedTime != nil {
		if *in.ExpectedTime < 0 {
			return apperr.InvalidState("expected time must not be negative")
		}
		st.ExpectedTime = *in.ExpectedTime
	}
	if in.Tag != nil {
		if _, err := model.ParseSubTaskTag(string(*in.Tag)); err != nil {
			return apperr.InvalidState(err.Error())
		}
		st.Tag = *in.Tag
	}
	return s.subtasks.Update(ctx, st)
}

// RecordActualTime stores the measured minutes for a subtask. This is
// the raw material the tag-rate recompute feeds on.
func (s *SubTaskService) RecordActualTime(ctx context.Context, userID, subTaskID, minutes int) error {
	if minutes < 0 {
		return apperr.InvalidState("actual time must not be negative")
	}
	if _, err := s.ownedSubTask(ctx, userID, subTaskID); err != nil {
		return err
	}
	return s.subtasks.SetActualTime(ctx, subTaskID, minutes)
}

func (s *SubTaskService) Delete(ctx context.Context, userID, subTaskID int) error {
	st, err := s.ownedSubTask(ctx, userID, subTaskID)
	if err != nil {
		return err
	}
	if err := s.subtasks.Delete(ctx, subTaskID); err != nil {
		return err
	}
	_, err = s.subtasks.SyncProject(ctx, st.ProjectID)
	return err
}

// MarkDone flags the subtask done and returns the project status after
// the flip. Finishing the last open subtask moves the project to
// ALMOST_DONE.
func (s *SubTaskService) MarkDone(ctx context.Context, userID, subTaskID int) (model.ProjectStatus, error) {
	if _, err := s.ownedSubTask(ctx, userID, subTaskID); err != nil {
		return "", err
	}
	status, err := s.subtasks.SetDone(ctx, subTaskID, true)
	if err != nil {
		return "", err
	}
	s.logger.Info("Subtask done", zap.Int("subtask_id", subTaskID), zap.String("project_status", string(status)))
	return status, nil
}

// MarkUndone reopens a subtask; an ALMOST_DONE project drops back to
// IN_PROGRESS.
func (s *SubTaskService) MarkUndone(ctx context.Context, userID, subTaskID int) (model.ProjectStatus, error) {
	if _, err := s.ownedSubTask(ctx, userID, subTaskID); err != nil {
		return "", err
	}
	return s.subtasks.SetDone(ctx, subTaskID, false)
}

func (s *SubTaskService) Aggregates(ctx context.Context, userID, projectID int) (model.SubTaskAggregates, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return model.SubTaskAggregates{}, err
	}
	return s.subtasks.AggregatesForProject(ctx, projectID)
}

// BulkCreate saves a batch of drafts in one transaction and syncs the
// project afterwards. source labels the metrics series ("manual" or
// "advisor").
func (s *SubTaskService) BulkCreate(ctx context.Context, userID, projectID int, drafts []model.SubTaskDraft, source string) error {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return err
	}
	if len(drafts) == 0 {
		return apperr.InvalidState("no subtasks to save")
	}
	for _, d := range drafts {
		if d.ExpectedTime < 0 {
			return apperr.InvalidState("expected time must not be negative")
		}
		if _, err := model.ParseSubTaskTag(string(d.Tag)); err != nil {
			return apperr.InvalidState(err.Error())
		}
	}

	if err := s.subtasks.InsertBatch(ctx, projectID, drafts); err != nil {
		return err
	}
	if _, err := s.subtasks.SyncProject(ctx, projectID); err != nil {
		return err
	}
	metrics.RecordSubTasksCreated(source, len(drafts))
	return nil
}

// BulkApplyUpdates overwrites each listed subtask with the given draft
// fields. Entries whose id does not belong to the project are ignored.
type BulkSubTaskUpdate struct {
	SubTaskID int
	Draft     model.SubTaskDraft
}

func (s *SubTaskService) BulkApplyUpdates(ctx context.Context, userID, projectID int, updates []BulkSubTaskUpdate) error {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return err
	}
	existing, err := s.subtasks.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	byID := make(map[int]model.SubTask, len(existing))
	for _, st := range existing {
		byID[st.ID] = st
	}

	applied := 0
	for _, u := range updates {
		st, ok := byID[u.SubTaskID]
		if !ok {
			continue
		}
		if u.Draft.ExpectedTime < 0 {
			return apperr.InvalidState("expected time must not be negative")
		}
		if _, err := model.ParseSubTaskTag(string(u.Draft.Tag)); err != nil {
			return apperr.InvalidState(err.Error())
		}
		st.Order = u.Draft.Order
		st.Name = u.Draft.Name
		st.ExpectedTime = u.Draft.ExpectedTime
		st.Tag = u.Draft.Tag
		if err := s.subtasks.Update(ctx, &st); err != nil {
			return err
		}
		applied++
	}

	s.logger.Info("Bulk subtask update applied",
		zap.Int("project_id", projectID),
		zap.Int("applied", applied),
		zap.Int("requested", len(updates)),
	)
	return nil
}
