package task

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zsh-ncursed/corvus/internal/log"
	"github.com/zsh-ncursed/corvus/internal/model"
)

// Executor runs a single task operation to completion and reports the
// result as its return error.
type Executor interface {
	Execute(ctx context.Context, kind model.TaskKind) error
}

// ExecutorFunc is a helper to use plain functions as executors.
type ExecutorFunc func(ctx context.Context, kind model.TaskKind) error

func (f ExecutorFunc) Execute(ctx context.Context, kind model.TaskKind) error { return f(ctx, kind) }

const defaultEventBuffer = 100

// ManagerConfig is the configuration for the task manager.
type ManagerConfig struct {
	Executor Executor
	// EventBuffer is the progress channel capacity.
	EventBuffer int
	Logger      log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.Executor == nil {
		return fmt.Errorf("executor is required")
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = defaultEventBuffer
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Manager"})
	return nil
}

// event pairs a progress event with its originating task.
type event struct {
	taskID string
	ev     model.ProgressEvent
}

// Manager holds the ordered registry of submitted tasks, dispatches pending
// ones to executors and applies their progress events.
//
// The registry is the only shared mutable state: executors never touch it,
// they only send events through the progress channel, and the manager applies
// them one at a time. Tasks accumulate for the lifetime of the process.
type Manager struct {
	tasks  []model.Task
	mu     sync.Mutex
	events chan event
	exec   Executor
	logger log.Logger
}

// NewManager creates a new task manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		events: make(chan event, cfg.EventBuffer),
		exec:   cfg.Executor,
		logger: cfg.Logger,
	}, nil
}

// AddTask appends a new pending task to the registry and returns its ID. The
// task is immediately visible to GetTasks.
func (m *Manager) AddTask(kind model.TaskKind, description string) string {
	t := model.Task{
		ID:          ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Kind:        kind,
		Status:      model.TaskStatus{State: model.TaskStatePending},
		Description: description,
		CreatedAt:   time.Now(),
	}

	m.mu.Lock()
	m.tasks = append(m.tasks, t)
	m.mu.Unlock()

	m.logger.Debugf("Added task %s: %s", t.ID, description)

	return t.ID
}

// GetTasks returns a point-in-time snapshot of all tasks in submission order.
func (m *Manager) GetTasks() []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]model.Task, len(m.tasks))
	copy(snapshot, m.tasks)

	return snapshot
}

// ProcessPendingTasks dispatches every pending task: each one flips to
// in-progress and its executor starts on its own goroutine. Safe to call
// repeatedly and frequently, a task already in progress or terminal is never
// dispatched twice. There is no concurrency limit, every pending task found
// in the pass starts at once.
func (m *Manager) ProcessPendingTasks(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tasks {
		if m.tasks[i].Status.State != model.TaskStatePending {
			continue
		}

		m.tasks[i].Status = model.TaskStatus{State: model.TaskStateInProgress, Progress: 0.0}

		go m.runExecutor(ctx, m.tasks[i].ID, m.tasks[i].Kind)
	}
}

// runExecutor performs one task and emits exactly one terminal event.
func (m *Manager) runExecutor(ctx context.Context, taskID string, kind model.TaskKind) {
	err := m.exec.Execute(ctx, kind)
	if err != nil {
		m.events <- event{taskID: taskID, ev: model.ProgressEvent{
			Type:    model.ProgressEventError,
			Message: err.Error(),
		}}
		return
	}

	m.events <- event{taskID: taskID, ev: model.ProgressEvent{
		Type: model.ProgressEventCompleted,
	}}
}

// WaitForEvent blocks until the next progress event arrives, applies it to
// the matching task and returns true only when the applied event was a
// completion. Error and update events return false, callers that need the
// failure reason read it from the task snapshot.
//
// An event for an unknown task ID is silently dropped. Returns false if ctx
// is done before an event arrives.
func (m *Manager) WaitForEvent(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case e := <-m.events:
		return m.applyEvent(e)
	}
}

// applyEvent mutates the matching task's status under the registry lock.
// Events arrive in send order, so a task never regresses from a terminal
// state, its single terminal event is the last one it produces.
func (m *Manager) applyEvent(e event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tasks {
		if m.tasks[i].ID != e.taskID {
			continue
		}

		switch e.ev.Type {
		case model.ProgressEventCompleted:
			m.tasks[i].Status = model.TaskStatus{State: model.TaskStateCompleted}
			m.logger.Debugf("Task %s completed", e.taskID)
			return true
		case model.ProgressEventError:
			m.tasks[i].Status = model.TaskStatus{State: model.TaskStateFailed, Reason: e.ev.Message}
			m.logger.Debugf("Task %s failed: %s", e.taskID, e.ev.Message)
			return false
		case model.ProgressEventUpdate:
			m.tasks[i].Status = model.TaskStatus{State: model.TaskStateInProgress, Progress: e.ev.Progress}
			return false
		}

		return false
	}

	// Task not found (e.g. removed), nothing to apply.
	return false
}
