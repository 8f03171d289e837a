package models

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidTaskStatus = errors.New("invalid task status")

// TaskStatus filters tasks by their completion state.
type TaskStatus string

const (
	TaskStatusAll       TaskStatus = "all"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// ParseTaskStatus maps an empty value to TaskStatusAll.
func ParseTaskStatus(value string) (TaskStatus, error) {
	switch status := TaskStatus(strings.ToLower(strings.TrimSpace(value))); status {
	case "":
		return TaskStatusAll, nil
	case TaskStatusAll, TaskStatusPending, TaskStatusCompleted:
		return status, nil
	default:
		return "", ErrInvalidTaskStatus
	}
}

type Task struct {
	ID          int64
	UserID      string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) StatusText() string {
	if t.Completed {
		return string(TaskStatusCompleted)
	}
	return string(TaskStatusPending)
}
