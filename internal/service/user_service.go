package service

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
	"github.com/domo-app/domo-server/pkg/metrics"
)

type UserService struct {
	users UserStore
	tags  ProjectTagStore
	items ItemStore
	// pick selects a draw candidate index; swapped out in tests.
	pick   func(n int) int
	logger *zap.Logger
}

func NewUserService(users UserStore, tags ProjectTagStore, items ItemStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		tags:   tags,
		items:  items,
		pick:   rand.IntN,
		logger: logger,
	}
}

func (s *UserService) Info(ctx context.Context, userID int) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *UserService) Coin(ctx context.Context, userID int) (int, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Coin, nil
}

func (s *UserService) Delete(ctx context.Context, userID int) error {
	return s.users.Delete(ctx, userID)
}

type OnboardingInput struct {
	DetailPreference model.TaskDetailPreference
	WorkPace         model.WorkPace
	InterestedTags   []string
}

// Onboarding stores the user's working traits and seeds a project tag
// per interest that does not exist yet.
func (s *UserService) Onboarding(ctx context.Context, userID int, in OnboardingInput) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.UpdateDetailPreference(ctx, userID, in.DetailPreference); err != nil {
		return err
	}
	if err := s.users.UpdateWorkPace(ctx, userID, in.WorkPace); err != nil {
		return err
	}

	for _, name := range in.InterestedTags {
		exists, err := s.tags.ExistsByUserAndName(ctx, userID, name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := s.tags.Insert(ctx, &model.ProjectTag{UserID: userID, Name: name}); err != nil {
			return err
		}
	}

	s.logger.Info("Onboarding stored",
		zap.Int("user_id", userID),
		zap.Int("seeded_tags", len(in.InterestedTags)),
	)
	return nil
}

func (s *UserService) UpdateDetailPreference(ctx context.Context, userID int, pref model.TaskDetailPreference) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.users.UpdateDetailPreference(ctx, userID, pref)
}

func (s *UserService) UpdateWorkPace(ctx context.Context, userID int, pace model.WorkPace) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.users.UpdateWorkPace(ctx, userID, pace)
}

// DrawItem spends DrawCost coins on a random item the user does not own
// yet. A short balance or an exhausted catalog rejects the draw with no
// writes.
func (s *UserService) DrawItem(ctx context.Context, userID int) (*model.Item, error) {
	all, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ownedIDs, err := s.items.ListOwnedIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned := make(map[int]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}
	candidates := []model.Item{}
	for _, it := range all {
		if !owned[it.ID] {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		return nil, apperr.InvalidState("no new items left to draw")
	}

	selected := candidates[s.pick(len(candidates))]

	if err := s.users.SpendCoinAndGrantItem(ctx, userID, selected.ID, model.DrawCost); err != nil {
		return nil, err
	}
	metrics.RecordDraw(model.DrawCost)

	s.logger.Info("Item drawn",
		zap.Int("user_id", userID),
		zap.Int("item_id", selected.ID),
	)
	return &selected, nil
}

// StoreItem is one catalog row flagged with ownership for the store UI.
type StoreItem struct {
	model.Item
	Owned bool `json:"owned"`
}

func (s *UserService) StoreItems(ctx context.Context, userID int) ([]StoreItem, error) {
	all, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ownedIDs, err := s.items.ListOwnedIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned := make(map[int]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	out := make([]StoreItem, 0, len(all))
	for _, it := range all {
		out = append(out, StoreItem{Item: it, Owned: owned[it.ID]})
	}
	return out, nil
}

func (s *UserService) LatestEquipped(ctx context.Context, userID int) (*model.Item, error) {
	return s.items.FindLatestEquipped(ctx, userID)
}
