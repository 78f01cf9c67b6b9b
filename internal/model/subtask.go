package model

import (
	"fmt"
	"time"
)

// SubTaskTag is the fixed category a subtask belongs to. Tags drive
// both the adaptive time-rate model and the generation prompts.
type SubTaskTag string

const (
	TagDocumentation    SubTaskTag = "DOCUMENTATION"
	TagPlanningStrategy SubTaskTag = "PLANNING_STRATEGY"
	TagDevelopment      SubTaskTag = "DEVELOPMENT"
	TagDesign           SubTaskTag = "DESIGN"
	TagResearchAnalysis SubTaskTag = "RESEARCH_ANALYSIS"
	TagCommunication    SubTaskTag = "COMMUNICATION"
	TagOperations       SubTaskTag = "OPERATIONS"
	TagExercise         SubTaskTag = "EXERCISE"
	TagPersonalLife     SubTaskTag = "PERSONAL_LIFE"
)

// AllSubTaskTags lists every tag in a stable order.
func AllSubTaskTags() []SubTaskTag {
	return []SubTaskTag{
		TagDocumentation,
		TagPlanningStrategy,
		TagDevelopment,
		TagDesign,
		TagResearchAnalysis,
		TagCommunication,
		TagOperations,
		TagExercise,
		TagPersonalLife,
	}
}

// ParseSubTaskTag validates an external tag string.
func ParseSubTaskTag(s string) (SubTaskTag, error) {
	for _, t := range AllSubTaskTags() {
		if SubTaskTag(s) == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid subtask tag %q", s)
}

type SubTask struct {
	ID           int        `json:"id"`
	ProjectID    int        `json:"project_id"`
	Order        int        `json:"order"`
	Name         string     `json:"name"`
	ExpectedTime int        `json:"expected_time"` // minutes
	ActualTime   *int       `json:"actual_time"`   // minutes, nil until recorded
	Tag          SubTaskTag `json:"tag"`
	IsDone       bool       `json:"is_done"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SubTaskDraft is an unsaved subtask, either typed in by the user or
// produced by the advisor.
type SubTaskDraft struct {
	Order        int        `json:"subTaskOrder"`
	Name         string     `json:"subTaskName"`
	ExpectedTime int        `json:"subTaskExpectedTime"`
	Tag          SubTaskTag `json:"subTaskTag"`
}

// SubTaskAggregates are the per-project rollups the lifecycle rules
// consume. All zeros when the project has no subtasks.
type SubTaskAggregates struct {
	Count           int
	DoneCount       int
	SumExpectedTime int
}

// AllDone reports whether the project has subtasks and every one of
// them is done.
func (a SubTaskAggregates) AllDone() bool {
	return a.Count > 0 && a.DoneCount == a.Count
}
