package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/mq"
)

// TagRateRecomputer is the slice of the user-tag service the worker
// needs.
type TagRateRecomputer interface {
	Recompute(ctx context.Context, userID int) error
}

// ProjectCompletedHandler reacts to project.completed events by
// rebuilding the user's tag rates. The recompute reads full history, so
// redelivered messages converge to the same state.
type ProjectCompletedHandler struct {
	rates  TagRateRecomputer
	logger *zap.Logger
}

func NewProjectCompletedHandler(rates TagRateRecomputer, logger *zap.Logger) *ProjectCompletedHandler {
	return &ProjectCompletedHandler{rates: rates, logger: logger}
}

func (h *ProjectCompletedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mq.ProjectCompletedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("malformed project.completed payload: %w", err)
	}

	h.logger.Info("Processing project completion",
		zap.Int("project_id", payload.ProjectID),
		zap.Int("user_id", payload.UserID),
		zap.Int("coin", payload.Coin),
	)

	if err := h.rates.Recompute(ctx, payload.UserID); err != nil {
		return fmt.Errorf("tag rate recompute for user %d: %w", payload.UserID, err)
	}
	return nil
}
