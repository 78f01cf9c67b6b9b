package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/ai"
	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
	"github.com/domo-app/domo-server/internal/mq"
	"github.com/domo-app/domo-server/pkg/metrics"
)

type ProjectService struct {
	projects  ProjectStore
	subtasks  SubTaskStore
	tags      ProjectTagStore
	users     UserStore
	rates     TagRates
	advisor   Advisor
	publisher EventPublisher
	logger    *zap.Logger
}

func NewProjectService(
	projects ProjectStore,
	subtasks SubTaskStore,
	tags ProjectTagStore,
	users UserStore,
	rates TagRates,
	advisor Advisor,
	publisher EventPublisher,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projects:  projects,
		subtasks:  subtasks,
		tags:      tags,
		users:     users,
		rates:     rates,
		advisor:   advisor,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *ProjectService) owned(ctx context.Context, userID, projectID int) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperr.Forbidden("project", projectID)
	}
	return p, nil
}

type CreateProjectInput struct {
	TagName     string
	Name        string
	Description string
	Requirement string
	Deadline    time.Time
}

// Create files a new project under the named tag. The tag must already
// exist for the user.
func (s *ProjectService) Create(ctx context.Context, userID int, in CreateProjectInput) (int, error) {
	if in.Name == "" {
		return 0, apperr.InvalidState("project name must not be empty")
	}
	tag, err := s.tags.FindByUserAndName(ctx, userID, in.TagName)
	if err != nil {
		return 0, err
	}

	id, err := s.projects.Insert(ctx, &model.Project{
		UserID:      userID,
		TagID:       tag.ID,
		Name:        in.Name,
		Description: in.Description,
		Requirement: in.Requirement,
		Deadline:    in.Deadline,
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Project created", zap.Int("project_id", id), zap.Int("user_id", userID))
	return id, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID int) (*model.Project, error) {
	return s.owned(ctx, userID, projectID)
}

type UpdateProjectInput struct {
	TagName     *string
	Name        *string
	Description *string
	Requirement *string
	Deadline    *time.Time
}

// Update merges the provided fields. Derived fields (progress, level,
// coin, status) are never writable this way.
func (s *ProjectService) Update(ctx context.Context, userID, projectID int, in UpdateProjectInput) error {
	p, err := s.owned(ctx, userID, projectID)
	if err != nil {
		return err
	}

	if in.TagName != nil {
		tag, err := s.tags.FindByUserAndName(ctx, userID, *in.TagName)
		if err != nil {
			return err
		}
		p.TagID = tag.ID
	}
	if in.Name != nil {
		if *in.Name == "" {
			return apperr.InvalidState("project name must not be empty")
		}
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Requirement != nil {
		p.Requirement = *in.Requirement
	}
	if in.Deadline != nil {
		p.Deadline = *in.Deadline
	}
	return s.projects.Update(ctx, p)
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID int) error {
	if _, err := s.owned(ctx, userID, projectID); err != nil {
		return err
	}
	return s.projects.Delete(ctx, projectID)
}

func (s *ProjectService) List(ctx context.Context, userID int) ([]model.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

func (s *ProjectService) ListCompleted(ctx context.Context, userID int) ([]model.Project, error) {
	all, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	done := []model.Project{}
	for _, p := range all {
		if p.Status == model.StatusDone {
			done = append(done, p)
		}
	}
	return done, nil
}

// Recent returns the newest project that is not completed yet.
func (s *ProjectService) Recent(ctx context.Context, userID int) (*model.Project, error) {
	return s.projects.FindRecentByUser(ctx, userID)
}

// ListFiltered returns projects restricted to the given tag ids and
// ordered by sortBy (name, progress or deadline). Empty tagIDs means no
// tag restriction.
func (s *ProjectService) ListFiltered(ctx context.Context, userID int, tagIDs []int, sortBy string) ([]model.Project, error) {
	switch sortBy {
	case "", "name", "progress", "deadline":
	default:
		return nil, apperr.InvalidState("unsupported sort key")
	}
	return s.projects.ListFiltered(ctx, userID, tagIDs, sortBy)
}

// RefreshExpectedTime recomputes the project's expected time as the sum
// of its subtasks' estimates and persists it. Idempotent.
func (s *ProjectService) RefreshExpectedTime(ctx context.Context, userID, projectID int) (int, error) {
	if _, err := s.owned(ctx, userID, projectID); err != nil {
		return 0, err
	}
	agg, err := s.subtasks.AggregatesForProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if err := s.projects.SetExpectedTime(ctx, projectID, agg.SumExpectedTime); err != nil {
		return 0, err
	}
	return agg.SumExpectedTime, nil
}

// RefreshProgressRate recomputes floor(done*100/total) and persists it.
// A project with no subtasks reads as 0%.
func (s *ProjectService) RefreshProgressRate(ctx context.Context, userID, projectID int) (int, error) {
	if _, err := s.owned(ctx, userID, projectID); err != nil {
		return 0, err
	}
	agg, err := s.subtasks.AggregatesForProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	rate := model.ProgressRate(agg.DoneCount, agg.Count)
	if err := s.projects.SetProgressRate(ctx, projectID, rate); err != nil {
		return 0, err
	}
	return rate, nil
}

// CompleteAndReward finishes the project and credits the coin reward in
// one transaction. level is the final difficulty (상/중/하); when empty
// the previously predicted level is used. Completion emits a
// project.completed event that triggers the tag-rate recompute.
func (s *ProjectService) CompleteAndReward(ctx context.Context, userID, projectID int, level string) (int, error) {
	p, err := s.owned(ctx, userID, projectID)
	if err != nil {
		return 0, err
	}
	if p.Status == model.StatusDone {
		return 0, apperr.InvalidState("project is already completed")
	}

	agg, err := s.subtasks.AggregatesForProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if agg.Count == 0 {
		return 0, apperr.InvalidState("cannot complete a project with no subtasks")
	}

	factor := p.LevelFactor
	if level != "" {
		parsed, err := model.ParseProjectLevel(level)
		if err != nil {
			return 0, apperr.InvalidState(err.Error())
		}
		factor = parsed.Factor()
	}
	if factor == 0 {
		return 0, apperr.InvalidState("project level is not decided yet")
	}

	coin := model.RewardCoin(agg.SumExpectedTime, factor)

	if err := s.projects.CompleteAndReward(ctx, projectID, userID, factor, coin, agg.SumExpectedTime); err != nil {
		return 0, err
	}
	metrics.RecordCompletion(coin)

	if err := s.publisher.Publish(mq.RoutingKeyProjectCompleted, mq.ProjectCompletedPayload{
		ProjectID: projectID,
		UserID:    userID,
		Coin:      coin,
	}); err != nil {
		// The reward is committed; the recompute catches up on the next
		// completion.
		s.logger.Error("Failed to publish completion event",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
	}

	s.logger.Info("Project completed",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
		zap.Int("coin", coin),
	)
	return coin, nil
}

// PredictLevel asks the advisor for a difficulty verdict and stores the
// matching factor on the project.
func (s *ProjectService) PredictLevel(ctx context.Context, userID, projectID int) (model.ProjectLevel, error) {
	p, err := s.owned(ctx, userID, projectID)
	if err != nil {
		return "", err
	}
	if p.Status == model.StatusDone {
		return "", apperr.InvalidState("project is already completed")
	}

	agg, err := s.subtasks.AggregatesForProject(ctx, projectID)
	if err != nil {
		return "", err
	}

	level, err := s.advisor.PredictLevel(ctx, ai.PredictInput{
		ProjectName:  p.Name,
		Description:  p.Description,
		Requirement:  p.Requirement,
		Deadline:     p.Deadline,
		Today:        time.Now(),
		ExpectedTime: agg.SumExpectedTime,
	})
	if err != nil {
		return "", err
	}

	if err := s.projects.SetLevelFactor(ctx, projectID, level.Factor()); err != nil {
		return "", err
	}
	return level, nil
}

// GenerateSubTasks asks the advisor for a subtask breakdown shaped by
// the user's traits and historical tag rates. The drafts are returned
// unsaved so the user can edit before committing.
func (s *ProjectService) GenerateSubTasks(ctx context.Context, userID, projectID int) ([]model.SubTaskDraft, error) {
	p, err := s.owned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status == model.StatusDone {
		return nil, apperr.InvalidState("project is already completed")
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	percents, err := s.rates.RatePercents(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.advisor.GenerateSubTasks(ctx, ai.GenerateInput{
		DetailPreference: u.DetailPreference,
		WorkPace:         u.WorkPace,
		ProjectName:      p.Name,
		Description:      p.Description,
		Requirement:      p.Requirement,
		Deadline:         p.Deadline,
		Today:            time.Now(),
		TagPercents:      percents,
	})
}

// GenerateAndSaveSubTasks generates a breakdown and persists it in one
// call, then syncs the project's derived fields.
func (s *ProjectService) GenerateAndSaveSubTasks(ctx context.Context, userID, projectID int) ([]model.SubTaskDraft, error) {
	drafts, err := s.GenerateSubTasks(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.subtasks.InsertBatch(ctx, projectID, drafts); err != nil {
		return nil, err
	}
	if _, err := s.subtasks.SyncProject(ctx, projectID); err != nil {
		return nil, err
	}
	metrics.RecordSubTasksCreated("advisor", len(drafts))

	s.logger.Info("Generated subtasks saved",
		zap.Int("project_id", projectID),
		zap.Int("count", len(drafts)),
	)
	return drafts, nil
}
