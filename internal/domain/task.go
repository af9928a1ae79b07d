package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskUpdateFields lists the JSON keys an owner may change on a task.
var TaskUpdateFields = []string{"description", "completed"}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a validated Task for the given owner.
func NewTask(userID uuid.UUID, description string, completed bool) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Description: strings.TrimSpace(description),
		Completed:   completed,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks that the task has an id, an owner and a description.
func (t *Task) Validate() error {
	verr := &ValidationError{}
	if t.ID == uuid.Nil {
		verr.Add("id", "is required")
	}
	if t.UserID == uuid.Nil {
		verr.Add("user_id", "is required")
	}
	if t.Description == "" {
		verr.Add("description", "is required")
	}
	return verr.OrNil()
}

// TaskPatch is a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Apply writes the patch to t and validates the result.
func (p TaskPatch) Apply(t *Task) error {
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t.Validate()
}
