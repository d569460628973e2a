// Package tasks is a minimal job-execution engine: each submitted job
// runs exactly once, on request, with progress reported by polling.
// There is no cancellation, retry, or re-run, and the runner does not
// serialize tasks against each other; callers decide whether two jobs
// touching the same space may run concurrently.
package tasks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"inkstone/internal/inkerr"
	"inkstone/internal/models"
)

// Job is one asynchronous unit of work. It reports progress as a
// 0..100 percentage through the supplied callback.
type Job func(ctx context.Context, progress func(percent int)) error

// Event names the task lifecycle notifications.
type Event string

const (
	EventAdded     Event = "taskAdded"
	EventStarted   Event = "taskStarted"
	EventProgress  Event = "taskProgress"
	EventCompleted Event = "taskCompleted"
	EventFailed    Event = "taskFailed"
)

// Listener observes task lifecycle events. Listeners are invoked
// synchronously from the mutating call and must not block.
type Listener func(event Event, task models.Task)

// Runner tracks submitted tasks by id. Tasks are never deleted.
type Runner struct {
	mu        sync.Mutex
	tasks     map[string]*models.Task
	jobs      map[string]Job
	listeners []Listener
}

// NewRunner constructs an empty task runner.
func NewRunner() *Runner {
	return &Runner{
		tasks: map[string]*models.Task{},
		jobs:  map[string]Job{},
	}
}

// Subscribe registers a lifecycle listener. Used for observability and
// tests; the runner works with no subscribers.
func (r *Runner) Subscribe(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Add stores a new pending task wrapping job and returns its id
// without starting execution. Ids are 128-bit random hex strings.
func (r *Runner) Add(job Job) (string, error) {
	id, err := newTaskID()
	if err != nil {
		return "", inkerr.IO(err, "generate task id")
	}

	task := &models.Task{ID: id, Status: models.TaskPending, Progress: 0}

	r.mu.Lock()
	r.tasks[id] = task
	r.jobs[id] = job
	snapshot := *task
	listeners := r.snapshotListenersLocked()
	r.mu.Unlock()

	notify(listeners, EventAdded, snapshot)
	return id, nil
}

// Execute runs a pending task to completion on the calling goroutine.
// Job errors are recorded on the task, never returned; Execute itself
// fails only for an unknown or already-started task.
func (r *Runner) Execute(ctx context.Context, id string) error {
	r.mu.Lock()
	task, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return inkerr.NotFound("task not found: %s", id)
	}
	if task.Status != models.TaskPending {
		r.mu.Unlock()
		return inkerr.AlreadyExists("task already started: %s", id)
	}
	job := r.jobs[id]
	delete(r.jobs, id)
	task.Status = models.TaskRunning
	snapshot := *task
	listeners := r.snapshotListenersLocked()
	r.mu.Unlock()

	notify(listeners, EventStarted, snapshot)

	err := job(ctx, func(percent int) {
		r.reportProgress(id, percent)
	})

	r.mu.Lock()
	if err != nil {
		task.Status = models.TaskFailed
		task.ErrorMessage = err.Error()
		task.ErrorCode = inkerr.CodeOf(err)
	} else {
		task.Status = models.TaskCompleted
		task.Progress = 100
	}
	snapshot = *task
	listeners = r.snapshotListenersLocked()
	r.mu.Unlock()

	if err != nil {
		notify(listeners, EventFailed, snapshot)
	} else {
		notify(listeners, EventCompleted, snapshot)
	}
	return nil
}

// Get returns a snapshot of a task by id.
func (r *Runner) Get(id string) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return models.Task{}, inkerr.NotFound("task not found: %s", id)
	}
	return *task, nil
}

func (r *Runner) reportProgress(id string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	r.mu.Lock()
	task, ok := r.tasks[id]
	if !ok || task.Status != models.TaskRunning || percent < task.Progress {
		r.mu.Unlock()
		return
	}
	task.Progress = percent
	snapshot := *task
	listeners := r.snapshotListenersLocked()
	r.mu.Unlock()

	notify(listeners, EventProgress, snapshot)
}

func (r *Runner) snapshotListenersLocked() []Listener {
	return append([]Listener(nil), r.listeners...)
}

func notify(listeners []Listener, event Event, task models.Task) {
	for _, l := range listeners {
		l(event, task)
	}
}

func newTaskID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
