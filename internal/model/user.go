package model

import (
	"fmt"
	"time"
)

// TaskDetailPreference is how finely a user likes work broken down.
// It is fed into subtask generation prompts and is otherwise inert.
type TaskDetailPreference string

const (
	DetailManyTasks     TaskDetailPreference = "MANY_TASKS"
	DetailBalancedTasks TaskDetailPreference = "BALANCED_TASKS"
	DetailFewTasks      TaskDetailPreference = "FEW_TASKS"
)

// WorkPace is how much slack a user wants around estimates.
type WorkPace string

const (
	PaceRelaxed  WorkPace = "RELAXED"
	PaceBalanced WorkPace = "BALANCED"
	PaceTight    WorkPace = "TIGHT"
)

// ParseTaskDetailPreference validates an external preference string.
func ParseTaskDetailPreference(s string) (TaskDetailPreference, error) {
	switch TaskDetailPreference(s) {
	case DetailManyTasks, DetailBalancedTasks, DetailFewTasks:
		return TaskDetailPreference(s), nil
	default:
		return "", fmt.Errorf("invalid detail preference %q", s)
	}
}

// ParseWorkPace validates an external work pace string.
func ParseWorkPace(s string) (WorkPace, error) {
	switch WorkPace(s) {
	case PaceRelaxed, PaceBalanced, PaceTight:
		return WorkPace(s), nil
	default:
		return "", fmt.Errorf("invalid work pace %q", s)
	}
}

type User struct {
	ID               int                  `json:"id"`
	LoginID          string               `json:"login_id"`
	PasswordHash     string               `json:"-"`
	Name             string               `json:"name"`
	Email            string               `json:"email"`
	Coin             int                  `json:"coin"`
	DetailPreference TaskDetailPreference `json:"detail_preference"`
	WorkPace         WorkPace             `json:"work_pace"`
	CharacterName    string               `json:"character_name"`
	CreatedAt        time.Time            `json:"created_at"`
}
