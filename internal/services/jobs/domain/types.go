// Package domain defines the analysis job types
package domain

import (
	"time"

	"dejavu/internal/services/analyze/domain"
)

// State is the lifecycle state of a job record
type State string

// Job states. Dead means retries were exhausted
const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateDead      State = "dead"
)

// Job is the audit record of one queued analysis
type Job struct {
	ID         string
	OwnerID    string
	RepoID     string
	Path       string
	CommitSHA  string
	State      State
	Attempts   int
	LastError  string

	// SubmittedBy is the authenticated user who enqueued the event, empty
	// for system-originated work
	SubmittedBy string

	EnqueuedAt time.Time
	UpdatedAt  time.Time
}

// Event aliases the pipeline input; the coordinator queues these
type Event = domain.ProcessInput
