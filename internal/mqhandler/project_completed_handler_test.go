package mqhandler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/mq"
)

type recordingRecomputer struct {
	calls []int
	err   error
}

func (r *recordingRecomputer) Recompute(_ context.Context, userID int) error {
	r.calls = append(r.calls, userID)
	return r.err
}

func TestHandleRecomputesForTheUser(t *testing.T) {
	rec := &recordingRecomputer{}
	h := NewProjectCompletedHandler(rec, zap.NewNop())

	body, err := json.Marshal(mq.ProjectCompletedPayload{ProjectID: 7, UserID: 42, Coin: 60})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), body))
	assert.Equal(t, []int{42}, rec.calls)
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	rec := &recordingRecomputer{}
	h := NewProjectCompletedHandler(rec, zap.NewNop())

	err := h.Handle(context.Background(), json.RawMessage(`{"user_id":`))
	require.Error(t, err)
	assert.Empty(t, rec.calls)
}

func TestHandlePropagatesRecomputeErrors(t *testing.T) {
	rec := &recordingRecomputer{err: assert.AnError}
	h := NewProjectCompletedHandler(rec, zap.NewNop())

	body, _ := json.Marshal(mq.ProjectCompletedPayload{UserID: 1})
	err := h.Handle(context.Background(), body)
	require.Error(t, err)
}
