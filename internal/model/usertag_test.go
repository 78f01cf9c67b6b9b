package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestTagRatios(t *testing.T) {
	t.Run("skips unmeasured subtasks", func(t *testing.T) {
		ratios := TagRatios([]SubTask{
			{Tag: TagDevelopment, ExpectedTime: 60, ActualTime: nil},
		})
		assert.Empty(t, ratios)
	})

	t.Run("single measurement", func(t *testing.T) {
		ratios := TagRatios([]SubTask{
			{Tag: TagDevelopment, ExpectedTime: 60, ActualTime: intPtr(90)},
		})
		assert.InDelta(t, 1.5, ratios[TagDevelopment], 1e-9)
	})

	t.Run("averages within a tag", func(t *testing.T) {
		ratios := TagRatios([]SubTask{
			{Tag: TagDesign, ExpectedTime: 60, ActualTime: intPtr(90)},
			{Tag: TagDesign, ExpectedTime: 60, ActualTime: intPtr(30)},
		})
		assert.InDelta(t, 1.0, ratios[TagDesign], 1e-9)
	})

	t.Run("zero expected time contributes the default", func(t *testing.T) {
		ratios := TagRatios([]SubTask{
			{Tag: TagResearchAnalysis, ExpectedTime: 0, ActualTime: intPtr(120)},
		})
		assert.InDelta(t, DefaultTagRate, ratios[TagResearchAnalysis], 1e-9)
	})

	t.Run("tags stay independent", func(t *testing.T) {
		ratios := TagRatios([]SubTask{
			{Tag: TagDevelopment, ExpectedTime: 100, ActualTime: intPtr(130)},
			{Tag: TagDocumentation, ExpectedTime: 100, ActualTime: intPtr(70)},
		})
		assert.InDelta(t, 1.3, ratios[TagDevelopment], 1e-9)
		assert.InDelta(t, 0.7, ratios[TagDocumentation], 1e-9)
		_, ok := ratios[TagExercise]
		assert.False(t, ok)
	})
}

func TestRatePercent(t *testing.T) {
	assert.Equal(t, 130, RatePercent(1.3))
	assert.Equal(t, 100, RatePercent(1.0))
	assert.Equal(t, 66, RatePercent(2.0/3.0))
}
