package core

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/focusboard/pkg/models"
	"gopkg.in/yaml.v3"
)

// TaskStore defines the task list operations exposed to presentation.
type TaskStore interface {
	Create(input models.TaskInput) (*models.Task, error)
	Complete(id int64) (bool, error)
	Delete(id int64) error
	List(filter models.TaskFilter) []models.Task
	Get(id int64) (*models.Task, bool)
	Counts() models.TaskCounts
}

// TaskStoreOptions holds the optional collaborators of a TaskStore.
type TaskStoreOptions struct {
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
	// OnChange is called after every mutating operation.
	OnChange func()
	Events   EventLogger
}

// taskStore keeps tasks in insertion order and rewrites the whole collection
// under KeyTasks after every mutation.
type taskStore struct {
	mu       sync.Mutex
	kv       KeyValueStore
	tasks    []models.Task
	lastID   int64
	now      func() time.Time
	onChange func()
	events   EventLogger
}

// NewTaskStore creates a TaskStore and loads any collection already persisted
// in kv. A missing key is an empty collection.
func NewTaskStore(kv KeyValueStore, opts TaskStoreOptions) (TaskStore, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ts := &taskStore{
		kv:       kv,
		now:      opts.Now,
		onChange: opts.OnChange,
		events:   opts.Events,
	}
	if err := ts.load(); err != nil {
		return nil, err
	}
	return ts, nil
}

func (ts *taskStore) load() error {
	raw, ok := ts.kv.Get(KeyTasks)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var tasks []models.Task
	if err := yaml.Unmarshal([]byte(raw), &tasks); err != nil {
		return &PersistenceError{Op: "load", Key: KeyTasks, Err: fmt.Errorf("parsing task collection: %w", err)}
	}
	for _, t := range tasks {
		if t.ID > ts.lastID {
			ts.lastID = t.ID
		}
	}
	ts.tasks = tasks
	return nil
}

func (ts *taskStore) saveLocked() error {
	data, err := yaml.Marshal(ts.tasks)
	if err != nil {
		return &PersistenceError{Op: "save", Key: KeyTasks, Err: fmt.Errorf("marshaling task collection: %w", err)}
	}
	if err := ts.kv.Set(KeyTasks, string(data)); err != nil {
		return &PersistenceError{Op: "save", Key: KeyTasks, Err: err}
	}
	return nil
}

// nextIDLocked derives an ID from the creation time, bumped past the last
// issued ID so IDs stay unique when two tasks share a millisecond.
func (ts *taskStore) nextIDLocked(created time.Time) int64 {
	id := created.UnixMilli()
	if id <= ts.lastID {
		id = ts.lastID + 1
	}
	return id
}

// Create validates input, appends the new task and persists the collection.
func (ts *taskStore) Create(input models.TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	priority := input.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}
	if !priority.Valid() {
		return nil, &ValidationError{Field: "priority", Message: fmt.Sprintf("%q is not one of high, medium, low", priority)}
	}
	due := strings.TrimSpace(input.DueDate)
	if due != "" {
		if _, err := time.Parse(models.DateLayout, due); err != nil {
			return nil, &ValidationError{Field: "due_date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", due)}
		}
	}

	ts.mu.Lock()
	created := ts.now().UTC()
	task := models.Task{
		ID:          ts.nextIDLocked(created),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		DueDate:     due,
		CreatedAt:   created,
	}
	ts.tasks = append(ts.tasks, task)
	if err := ts.saveLocked(); err != nil {
		ts.tasks = ts.tasks[:len(ts.tasks)-1]
		ts.mu.Unlock()
		return nil, fmt.Errorf("creating task: %w", err)
	}
	ts.lastID = task.ID
	ts.mu.Unlock()

	logEvent(ts.events, "task.created", map[string]any{
		"task_id":  task.ID,
		"title":    task.Title,
		"priority": string(task.Priority),
	})
	ts.changed()
	return &task, nil
}

// Complete marks a pending task as completed. It returns false without error
// when the task is unknown or already completed.
func (ts *taskStore) Complete(id int64) (bool, error) {
	ts.mu.Lock()
	idx := ts.indexLocked(id)
	if idx < 0 || ts.tasks[idx].Completed {
		ts.mu.Unlock()
		return false, nil
	}

	completedAt := ts.now().UTC()
	if completedAt.Before(ts.tasks[idx].CreatedAt) {
		completedAt = ts.tasks[idx].CreatedAt
	}
	ts.tasks[idx].Completed = true
	ts.tasks[idx].CompletedAt = &completedAt
	if err := ts.saveLocked(); err != nil {
		ts.tasks[idx].Completed = false
		ts.tasks[idx].CompletedAt = nil
		ts.mu.Unlock()
		return false, fmt.Errorf("completing task %d: %w", id, err)
	}
	ts.mu.Unlock()

	logEvent(ts.events, "task.completed", map[string]any{"task_id": id})
	ts.changed()
	return true, nil
}

// Delete removes the task if present. Deleting an unknown ID still persists
// the (unchanged) collection and notifies, matching a stale UI reference.
func (ts *taskStore) Delete(id int64) error {
	ts.mu.Lock()
	idx := ts.indexLocked(id)
	var removed *models.Task
	if idx >= 0 {
		t := ts.tasks[idx]
		removed = &t
		ts.tasks = append(ts.tasks[:idx:idx], ts.tasks[idx+1:]...)
	}
	if err := ts.saveLocked(); err != nil {
		if removed != nil {
			ts.tasks = append(ts.tasks[:idx:idx], append([]models.Task{*removed}, ts.tasks[idx:]...)...)
		}
		ts.mu.Unlock()
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	ts.mu.Unlock()

	if removed != nil {
		logEvent(ts.events, "task.deleted", map[string]any{"task_id": id})
	}
	ts.changed()
	return nil
}

// List returns a copy of the tasks matching filter in insertion order.
func (ts *taskStore) List(filter models.TaskFilter) []models.Task {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	result := make([]models.Task, 0, len(ts.tasks))
	for _, t := range ts.tasks {
		if filter.Matches(t) {
			result = append(result, copyTask(t))
		}
	}
	return result
}

func (ts *taskStore) Get(id int64) (*models.Task, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	idx := ts.indexLocked(id)
	if idx < 0 {
		return nil, false
	}
	t := copyTask(ts.tasks[idx])
	return &t, true
}

func (ts *taskStore) Counts() models.TaskCounts {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	c := models.TaskCounts{Total: len(ts.tasks)}
	for _, t := range ts.tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}

func (ts *taskStore) indexLocked(id int64) int {
	for i := range ts.tasks {
		if ts.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (ts *taskStore) changed() {
	if ts.onChange != nil {
		ts.onChange()
	}
}

// copyTask detaches the CompletedAt pointer from the store's copy.
func copyTask(t models.Task) models.Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
