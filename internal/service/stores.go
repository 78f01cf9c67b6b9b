package service

import (
	"context"

	"github.com/domo-app/domo-server/internal/ai"
	"github.com/domo-app/domo-server/internal/model"
)

// Store interfaces are declared on the consumer side so the business
// rules can be exercised against in-memory fakes. The pgx repositories
// in internal/repository satisfy them as-is.

type UserStore interface {
	Insert(ctx context.Context, u *model.User) (int, error)
	FindByID(ctx context.Context, userID int) (*model.User, error)
	FindByLoginID(ctx context.Context, loginID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	UpdateDetailPreference(ctx context.Context, userID int, pref model.TaskDetailPreference) error
	UpdateWorkPace(ctx context.Context, userID int, pace model.WorkPace) error
	Delete(ctx context.Context, userID int) error
	SpendCoinAndGrantItem(ctx context.Context, userID, itemID, cost int) error
}

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) (int, error)
	FindByID(ctx context.Context, projectID int) (*model.Project, error)
	ListByUser(ctx context.Context, userID int) ([]model.Project, error)
	ListFiltered(ctx context.Context, userID int, tagIDs []int, sortBy string) ([]model.Project, error)
	FindRecentByUser(ctx context.Context, userID int) (*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	SetLevelFactor(ctx context.Context, projectID, factor int) error
	SetExpectedTime(ctx context.Context, projectID, minutes int) error
	SetProgressRate(ctx context.Context, projectID, rate int) error
	Delete(ctx context.Context, projectID int) error
	CompleteAndReward(ctx context.Context, projectID, userID, levelFactor, coin, expectedMinutes int) error
}

type SubTaskStore interface {
	Insert(ctx context.Context, st *model.SubTask) (int, error)
	InsertBatch(ctx context.Context, projectID int, drafts []model.SubTaskDraft) error
	FindByID(ctx context.Context, subTaskID int) (*model.SubTask, error)
	ListByProject(ctx context.Context, projectID int) ([]model.SubTask, error)
	Update(ctx context.Context, st *model.SubTask) error
	SetActualTime(ctx context.Context, subTaskID, minutes int) error
	Delete(ctx context.Context, subTaskID int) error
	AggregatesForProject(ctx context.Context, projectID int) (model.SubTaskAggregates, error)
	ListMeasuredByUser(ctx context.Context, userID int) ([]model.SubTask, error)
	SetDone(ctx context.Context, subTaskID int, done bool) (model.ProjectStatus, error)
	SyncProject(ctx context.Context, projectID int) (model.ProjectStatus, error)
}

type ProjectTagStore interface {
	Insert(ctx context.Context, t *model.ProjectTag) (int, error)
	FindByID(ctx context.Context, tagID int) (*model.ProjectTag, error)
	FindByUserAndName(ctx context.Context, userID int, name string) (*model.ProjectTag, error)
	ExistsByUserAndName(ctx context.Context, userID int, name string) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]model.ProjectTag, error)
	CountProjectsUsing(ctx context.Context, tagID int) (int, error)
	Delete(ctx context.Context, tagID int) error
}

type TagRateStore interface {
	Upsert(ctx context.Context, userID int, tag model.SubTaskTag, rate float64) error
	ListByUser(ctx context.Context, userID int) ([]model.UserTagRate, error)
}

type ItemStore interface {
	FindByID(ctx context.Context, itemID int) (*model.Item, error)
	ListAll(ctx context.Context) ([]model.Item, error)
	ListOwnedIDsByUser(ctx context.Context, userID int) ([]int, error)
	FindLatestEquipped(ctx context.Context, userID int) (*model.Item, error)
}

// EventPublisher is the slice of the MQ producer services need.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// Advisor is the language-model boundary. It returns data only; the
// services persist.
type Advisor interface {
	GenerateSubTasks(ctx context.Context, in ai.GenerateInput) ([]model.SubTaskDraft, error)
	PredictLevel(ctx context.Context, in ai.PredictInput) (model.ProjectLevel, error)
}

// TagRates is the read side of the adaptive estimation model.
type TagRates interface {
	RatePercents(ctx context.Context, userID int) (map[model.SubTaskTag]int, error)
}
