package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/model"
)

func intPtr(v int) *int { return &v }

func newUserTagFixture() (*fakeUserStore, *fakeProjectStore, *fakeSubTaskStore, *fakeRateStore, *UserTagService) {
	users := newFakeUserStore()
	projects := newFakeProjectStore(users)
	subtasks := newFakeSubTaskStore(projects)
	rates := newFakeRateStore()
	svc := NewUserTagService(rates, subtasks, nil, zap.NewNop())
	return users, projects, subtasks, rates, svc
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()

	t.Run("averages measured subtasks per tag", func(t *testing.T) {
		users, projects, subtasks, rates, svc := newUserTagFixture()
		u := users.add(model.User{LoginID: "tester", Email: "tester@example.com"})
		p := projects.add(model.Project{UserID: u.ID, Name: "p"})

		subtasks.add(model.SubTask{ProjectID: p.ID, Tag: model.TagDevelopment, ExpectedTime: 60, ActualTime: intPtr(90)})
		subtasks.add(model.SubTask{ProjectID: p.ID, Tag: model.TagDevelopment, ExpectedTime: 60, ActualTime: intPtr(30)})
		subtasks.add(model.SubTask{ProjectID: p.ID, Tag: model.TagDesign, ExpectedTime: 100, ActualTime: intPtr(130)})
		subtasks.add(model.SubTask{ProjectID: p.ID, Tag: model.TagExercise, ExpectedTime: 60}) // unmeasured

		require.NoError(t, svc.Recompute(ctx, u.ID))

		assert.InDelta(t, 1.0, rates.rates[u.ID][model.TagDevelopment], 1e-9)
		assert.InDelta(t, 1.3, rates.rates[u.ID][model.TagDesign], 1e-9)
		_, ok := rates.rates[u.ID][model.TagExercise]
		assert.False(t, ok)
	})

	t.Run("no measured history is a no-op", func(t *testing.T) {
		users, _, _, rates, svc := newUserTagFixture()
		u := users.add(model.User{LoginID: "fresh", Email: "fresh@example.com"})

		require.NoError(t, svc.Recompute(ctx, u.ID))
		assert.Empty(t, rates.rates[u.ID])
	})

	t.Run("ignores other users' subtasks", func(t *testing.T) {
		users, projects, subtasks, rates, svc := newUserTagFixture()
		u := users.add(model.User{LoginID: "mine", Email: "mine@example.com"})
		other := users.add(model.User{LoginID: "other", Email: "other@example.com"})
		theirs := projects.add(model.Project{UserID: other.ID, Name: "theirs"})
		subtasks.add(model.SubTask{ProjectID: theirs.ID, Tag: model.TagDevelopment, ExpectedTime: 60, ActualTime: intPtr(120)})

		require.NoError(t, svc.Recompute(ctx, u.ID))
		assert.Empty(t, rates.rates[u.ID])
	})

	t.Run("is idempotent", func(t *testing.T) {
		users, projects, subtasks, rates, svc := newUserTagFixture()
		u := users.add(model.User{LoginID: "tester", Email: "tester@example.com"})
		p := projects.add(model.Project{UserID: u.ID, Name: "p"})
		subtasks.add(model.SubTask{ProjectID: p.ID, Tag: model.TagDevelopment, ExpectedTime: 60, ActualTime: intPtr(90)})

		require.NoError(t, svc.Recompute(ctx, u.ID))
		require.NoError(t, svc.Recompute(ctx, u.ID))
		assert.InDelta(t, 1.5, rates.rates[u.ID][model.TagDevelopment], 1e-9)
	})
}

func TestRatesForFillsDefaults(t *testing.T) {
	ctx := context.Background()
	users, _, _, rates, svc := newUserTagFixture()
	u := users.add(model.User{LoginID: "tester", Email: "tester@example.com"})
	require.NoError(t, rates.Upsert(ctx, u.ID, model.TagDevelopment, 1.3))

	out, err := svc.RatesFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, out, len(model.AllSubTaskTags()))
	assert.InDelta(t, 1.3, out[model.TagDevelopment], 1e-9)
	assert.InDelta(t, model.DefaultTagRate, out[model.TagDesign], 1e-9)
}

func TestRatePercents(t *testing.T) {
	ctx := context.Background()
	users, _, _, rates, svc := newUserTagFixture()
	u := users.add(model.User{LoginID: "tester", Email: "tester@example.com"})
	require.NoError(t, rates.Upsert(ctx, u.ID, model.TagDevelopment, 1.3))

	out, err := svc.RatePercents(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 130, out[model.TagDevelopment])
	assert.Equal(t, 100, out[model.TagDocumentation])
}
