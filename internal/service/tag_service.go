package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/model"
)

type TagService struct {
	tags   ProjectTagStore
	logger *zap.Logger
}

func NewTagService(tags ProjectTagStore, logger *zap.Logger) *TagService {
	return &TagService{tags: tags, logger: logger}
}

func (s *TagService) Create(ctx context.Context, userID int, name string) (int, error) {
	if name == "" {
		return 0, apperr.InvalidState("tag name must not be empty")
	}
	exists, err := s.tags.ExistsByUserAndName(ctx, userID, name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, apperr.InvalidState("tag name already exists")
	}
	return s.tags.Insert(ctx, &model.ProjectTag{UserID: userID, Name: name})
}

func (s *TagService) List(ctx context.Context, userID int) ([]model.ProjectTag, error) {
	return s.tags.ListByUser(ctx, userID)
}

// Delete removes a tag unless a project still references it.
func (s *TagService) Delete(ctx context.Context, userID, tagID int) error {
	tag, err := s.tags.FindByID(ctx, tagID)
	if err != nil {
		return err
	}
	if tag.UserID != userID {
		return apperr.Forbidden("project tag", tagID)
	}

	inUse, err := s.tags.CountProjectsUsing(ctx, tagID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperr.InvalidState(fmt.Sprintf("tag is still used by %d projects", inUse))
	}

	if err := s.tags.Delete(ctx, tagID); err != nil {
		return err
	}
	s.logger.Info("Project tag deleted", zap.Int("tag_id", tagID), zap.Int("user_id", userID))
	return nil
}
