package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressRate(t *testing.T) {
	tests := []struct {
		name  string
		done  int
		total int
		want  int
	}{
		{"no subtasks", 0, 0, 0},
		{"none done", 0, 4, 0},
		{"one of three floors", 1, 3, 33},
		{"two of three floors", 2, 3, 66},
		{"all done", 3, 3, 100},
		{"half", 2, 4, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressRate(tt.done, tt.total))
		})
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name  string
		cur   ProjectStatus
		done  int
		total int
		want  ProjectStatus
	}{
		{"all done promotes", StatusInProgress, 3, 3, StatusAlmostDone},
		{"partial stays in progress", StatusInProgress, 2, 3, StatusInProgress},
		{"reopened reverts", StatusAlmostDone, 2, 3, StatusInProgress},
		{"almost done stays", StatusAlmostDone, 3, 3, StatusAlmostDone},
		{"done is terminal", StatusDone, 0, 3, StatusDone},
		{"empty project never promotes", StatusInProgress, 0, 0, StatusInProgress},
		{"empty almost done reverts", StatusAlmostDone, 0, 0, StatusInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatus(tt.cur, tt.done, tt.total))
		})
	}
}

func TestRewardCoin(t *testing.T) {
	tests := []struct {
		name            string
		expectedMinutes int
		levelFactor     int
		want            int
	}{
		{"ten hours high level", 600, 60, 60},
		{"twenty five hours low level", 1500, 40, 80},
		{"mid bucket medium level", 800, 50, 60},
		{"boundary twelve hours keeps base ten", 720, 50, 60},
		{"just past twelve hours drops to nine", 721, 50, 54},
		{"boundary twenty four hours keeps base nine", 1440, 50, 108},
		{"just past twenty four hours drops to eight", 1441, 50, 96},
		{"zero expected time pays nothing", 0, 60, 0},
		{"truncates toward zero", 90, 40, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewardCoin(tt.expectedMinutes, tt.levelFactor))
		})
	}
}

func TestProjectLevelFactor(t *testing.T) {
	assert.Equal(t, 60, LevelHigh.Factor())
	assert.Equal(t, 50, LevelMedium.Factor())
	assert.Equal(t, 40, LevelLow.Factor())
	assert.Equal(t, 0, ProjectLevel("").Factor())
}

func TestParseProjectLevel(t *testing.T) {
	level, err := ParseProjectLevel("상")
	assert.NoError(t, err)
	assert.Equal(t, LevelHigh, level)

	_, err = ParseProjectLevel("HIGH")
	assert.Error(t, err)
}
