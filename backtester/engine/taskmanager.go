package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gofrs/uuid"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/log"
)

// NewTaskManager creates a task manager
func NewTaskManager() *TaskManager {
	return &TaskManager{}
}

// AddTask registers work to be started later and returns its identifier
func (r *TaskManager) AddTask(kind, nickname string, fn TaskFunc) (uuid.UUID, error) {
	if r == nil {
		return uuid.Nil, fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	if fn == nil {
		return uuid.Nil, errNilTask
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	r.m.Lock()
	defer r.m.Unlock()
	r.tasks = append(r.tasks, &task{
		id:        id,
		kind:      kind,
		nickname:  nickname,
		fn:        fn,
		status:    TaskPending,
		dateAdded: time.Now(),
		done:      make(chan struct{}),
	})
	return id, nil
}

func (r *TaskManager) find(id uuid.UUID) (*task, error) {
	for i := range r.tasks {
		if r.tasks[i].id == id {
			return r.tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%s %w", id, errTaskNotFound)
}

// List details every task without its result
func (r *TaskManager) List() ([]*TaskSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	r.m.Lock()
	defer r.m.Unlock()
	resp := make([]*TaskSummary, len(r.tasks))
	for i := range r.tasks {
		resp[i] = r.tasks[i].summary(false)
	}
	return resp, nil
}

// GetSummary returns details about a task including its result once finished
func (r *TaskManager) GetSummary(id uuid.UUID) (*TaskSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	r.m.Lock()
	defer r.m.Unlock()
	t, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return t.summary(true), nil
}

// StartTask runs a pending task in the background. The context must
// outlive the task, there is no stopping a run part way through
func (r *TaskManager) StartTask(ctx context.Context, id uuid.UUID) error {
	if r == nil {
		return fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	r.m.Lock()
	defer r.m.Unlock()
	t, err := r.find(id)
	if err != nil {
		return err
	}
	return r.start(ctx, t)
}

// StartAllTasks runs every pending task
func (r *TaskManager) StartAllTasks(ctx context.Context) ([]uuid.UUID, error) {
	if r == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	r.m.Lock()
	defer r.m.Unlock()
	started := make([]uuid.UUID, 0, len(r.tasks))
	for i := range r.tasks {
		if r.tasks[i].status != TaskPending {
			continue
		}
		if err := r.start(ctx, r.tasks[i]); err != nil {
			return nil, err
		}
		started = append(started, r.tasks[i].id)
	}
	return started, nil
}

// start must be called with the lock held
func (r *TaskManager) start(ctx context.Context, t *task) error {
	switch t.status {
	case TaskRunning:
		return fmt.Errorf("%w %v", errTaskIsRunning, t.id)
	case TaskComplete, TaskFailed:
		return fmt.Errorf("%w %v", errAlreadyRan, t.id)
	}
	t.status = TaskRunning
	t.dateStarted = time.Now()
	log.Infof(common.Setup, "Starting %s task %s %s", t.kind, t.nickname, t.id)
	go func() {
		result, err := t.fn(ctx)
		r.m.Lock()
		t.result, t.err = result, err
		t.dateFinished = time.Now()
		t.status = TaskComplete
		if err != nil {
			t.status = TaskFailed
			log.Errorf(common.Setup, "%s task %s %s failed: %v", t.kind, t.nickname, t.id, err)
		} else {
			log.Infof(common.Setup, "%s task %s %s complete in %v", t.kind, t.nickname, t.id, t.dateFinished.Sub(t.dateStarted))
		}
		r.m.Unlock()
		close(t.done)
	}()
	return nil
}

// Wait blocks until the task finishes and returns its summary and error
func (r *TaskManager) Wait(ctx context.Context, id uuid.UUID) (*TaskSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	r.m.Lock()
	t, err := r.find(id)
	r.m.Unlock()
	if err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
	}
	r.m.Lock()
	defer r.m.Unlock()
	return t.summary(true), t.err
}

// ClearTask removes a task from memory, but only if it is not running
func (r *TaskManager) ClearTask(id uuid.UUID) error {
	if r == nil {
		return fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := range r.tasks {
		if r.tasks[i].id != id {
			continue
		}
		if r.tasks[i].status == TaskRunning {
			return fmt.Errorf("%w %v, currently running", errCannotClear, id)
		}
		r.tasks = slices.Delete(r.tasks, i, i+1)
		return nil
	}
	return fmt.Errorf("%s %w", id, errTaskNotFound)
}

// ClearAllTasks removes all tasks from memory, but only if they are not running
func (r *TaskManager) ClearAllTasks() (clearedRuns, remainingRuns []*TaskSummary, err error) {
	if r == nil {
		return nil, nil, fmt.Errorf("%w TaskManager", common.ErrNilArguments)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := 0; i < len(r.tasks); i++ {
		sum := r.tasks[i].summary(false)
		if r.tasks[i].status == TaskRunning {
			remainingRuns = append(remainingRuns, sum)
			continue
		}
		clearedRuns = append(clearedRuns, sum)
		r.tasks = slices.Delete(r.tasks, i, i+1)
		i--
	}
	return clearedRuns, remainingRuns, nil
}

func (t *task) summary(withResult bool) *TaskSummary {
	s := &TaskSummary{
		ID:           t.id,
		Kind:         t.kind,
		Nickname:     t.nickname,
		Status:       t.status,
		DateAdded:    t.dateAdded,
		DateStarted:  t.dateStarted,
		DateFinished: t.dateFinished,
	}
	if t.err != nil {
		s.Error = t.err.Error()
	}
	if withResult {
		s.Result = t.result
	}
	return s
}
