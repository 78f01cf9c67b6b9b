package model

import (
	"fmt"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
//
//   - IN_PROGRESS: default, at least one subtask still open
//   - ALMOST_DONE: every subtask done, difficulty not yet settled
//   - DONE: terminal; level and coin are fixed and the reward credited
type ProjectStatus string

const (
	StatusInProgress ProjectStatus = "IN_PROGRESS"
	StatusAlmostDone ProjectStatus = "ALMOST_DONE"
	StatusDone       ProjectStatus = "DONE"
)

// ProjectLevel is the difficulty verdict in its external form
// (상/중/하, i.e. high/medium/low). The stored representation is the
// numeric factor used by the reward formula.
type ProjectLevel string

const (
	LevelHigh   ProjectLevel = "상"
	LevelMedium ProjectLevel = "중"
	LevelLow    ProjectLevel = "하"
)

// Factor returns the reward coefficient for the level: 상=60, 중=50, 하=40.
func (l ProjectLevel) Factor() int {
	switch l {
	case LevelHigh:
		return 60
	case LevelMedium:
		return 50
	case LevelLow:
		return 40
	default:
		return 0
	}
}

// ParseProjectLevel maps the external string to a ProjectLevel.
func ParseProjectLevel(s string) (ProjectLevel, error) {
	switch ProjectLevel(s) {
	case LevelHigh, LevelMedium, LevelLow:
		return ProjectLevel(s), nil
	default:
		return "", fmt.Errorf("invalid project level %q", s)
	}
}

type Project struct {
	ID           int           `json:"id"`
	UserID       int           `json:"user_id"`
	TagID        int           `json:"tag_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Requirement  string        `json:"requirement"`
	Deadline     time.Time     `json:"deadline"`
	ExpectedTime int           `json:"expected_time"` // minutes, summed from subtasks
	ProgressRate int           `json:"progress_rate"` // percent 0..100
	LevelFactor  int           `json:"level_factor"`  // 0 until predicted or completed
	Coin         int           `json:"coin"`          // set once, at completion
	Status       ProjectStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ProjectTag is a per-user label projects are filed under.
type ProjectTag struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}
