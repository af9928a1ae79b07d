package job

import (
	"context"

	"github.com/google/uuid"
)

// Job represents a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier used in logs
	Type() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// FuncJob adapts a function to the Job interface.
type FuncJob struct {
	id  uuid.UUID
	typ string
	fn  func(ctx context.Context) error
}

// NewFunc wraps fn in a Job of the given type with a fresh ID.
func NewFunc(jobType string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{id: uuid.New(), typ: jobType, fn: fn}
}

// ID implements Job.
func (j *FuncJob) ID() uuid.UUID { return j.id }

// Type implements Job.
func (j *FuncJob) Type() string { return j.typ }

// Execute implements Job.
func (j *FuncJob) Execute(ctx context.Context) error { return j.fn(ctx) }
