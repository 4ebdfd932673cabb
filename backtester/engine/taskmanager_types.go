package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// TaskStatus is the lifecycle stage of a task
type TaskStatus string

// Task statuses
const (
	TaskPending  TaskStatus = "pending"
	TaskRunning  TaskStatus = "running"
	TaskComplete TaskStatus = "complete"
	TaskFailed   TaskStatus = "failed"
)

var (
	errTaskNotFound  = errors.New("task not found")
	errNilTask       = errors.New("task requires a function to run")
	errAlreadyRan    = errors.New("task already ran")
	errTaskIsRunning = errors.New("task is already running")
	errCannotClear   = errors.New("cannot clear task")
)

// TaskFunc does the work of a task and returns its result
type TaskFunc func(context.Context) (any, error)

// TaskManager tracks scans, backtests and optimisations so the CLI and
// the status server can report on them
type TaskManager struct {
	m     sync.Mutex
	tasks []*task
}

type task struct {
	id           uuid.UUID
	kind         string
	nickname     string
	fn           TaskFunc
	status       TaskStatus
	dateAdded    time.Time
	dateStarted  time.Time
	dateFinished time.Time
	result       any
	err          error
	done         chan struct{}
}

// TaskSummary is the reportable state of a task
type TaskSummary struct {
	ID           uuid.UUID  `json:"id"`
	Kind         string     `json:"kind"`
	Nickname     string     `json:"nickname"`
	Status       TaskStatus `json:"status"`
	DateAdded    time.Time  `json:"date-added"`
	DateStarted  time.Time  `json:"date-started,omitempty"`
	DateFinished time.Time  `json:"date-finished,omitempty"`
	Error        string     `json:"error,omitempty"`
	Result       any        `json:"result,omitempty"`
}
