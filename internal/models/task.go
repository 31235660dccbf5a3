package models

import (
	"strings"
	"time"
)

// TaskStatus is the storage-vocabulary task status. It doubles as the bucket key.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "inProgress"
	TaskDone       TaskStatus = "done"
)

// Buckets lists the bucket keys in scan order.
var Buckets = []TaskStatus{TaskTodo, TaskInProgress, TaskDone}

// Valid reports whether s names one of the three buckets.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Priority is shared by tasks, projects and goals.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is applied when no priority is given.
const DefaultPriority = PriorityMedium

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a card embedded in one of a project's buckets.
type Task struct {
	ID          string     `json:"id" bson:"_id" yaml:"id"`
	Title       string     `json:"title" bson:"title" yaml:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Status      TaskStatus `json:"status" bson:"status" yaml:"status"`
	Priority    Priority   `json:"priority" bson:"priority" yaml:"priority"`
	Assignee    string     `json:"assignee,omitempty" bson:"assignee,omitempty" yaml:"assignee,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt" yaml:"createdAt"`
}

// Validate checks the task against the bucket it is stored in.
func (t Task) Validate(bucket TaskStatus) error {
	if strings.TrimSpace(t.Title) == "" {
		return Invalid("title", "task title must not be empty")
	}
	if !t.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "invalid task status " + string(t.Status), Err: ErrUnknownStatus}
	}
	if t.Status != bucket {
		return Invalid("status", "task %q has status %s but sits in bucket %s", t.ID, t.Status, bucket)
	}
	if !t.Priority.Valid() {
		return Invalid("priority", "invalid task priority %q", t.Priority)
	}
	return nil
}

// TaskDetails holds the three buckets of a project.
type TaskDetails struct {
	Todo       []Task `json:"todo" bson:"todo" yaml:"todo"`
	InProgress []Task `json:"inProgress" bson:"inProgress" yaml:"inProgress"`
	Done       []Task `json:"done" bson:"done" yaml:"done"`
}

// Bucket returns a pointer to the slice for key, or nil for an unknown key.
func (d *TaskDetails) Bucket(key TaskStatus) *[]Task {
	switch key {
	case TaskTodo:
		return &d.Todo
	case TaskInProgress:
		return &d.InProgress
	case TaskDone:
		return &d.Done
	}
	return nil
}

// Find scans todo, inProgress and done in that order and returns the first match.
func (d *TaskDetails) Find(id string) (TaskStatus, int, bool) {
	for _, key := range Buckets {
		for i, t := range *d.Bucket(key) {
			if t.ID == id {
				return key, i, true
			}
		}
	}
	return "", -1, false
}

// Len counts tasks across all buckets.
func (d TaskDetails) Len() int {
	return len(d.Todo) + len(d.InProgress) + len(d.Done)
}

// Clone returns a copy that shares no slices with d.
func (d TaskDetails) Clone() TaskDetails {
	return TaskDetails{
		Todo:       cloneTasks(d.Todo),
		InProgress: cloneTasks(d.InProgress),
		Done:       cloneTasks(d.Done),
	}
}

// Normalize replaces nil buckets with empty ones.
func (d *TaskDetails) Normalize() {
	for _, key := range Buckets {
		if b := d.Bucket(key); *b == nil {
			*b = []Task{}
		}
	}
}

// Validate checks every task and that no id occurs twice across buckets.
func (d TaskDetails) Validate() error {
	seen := make(map[string]TaskStatus, d.Len())
	for _, key := range Buckets {
		for _, t := range *d.Bucket(key) {
			if err := t.Validate(key); err != nil {
				return err
			}
			if t.ID == "" {
				continue
			}
			if prev, dup := seen[t.ID]; dup {
				return Invalid("taskDetails", "task %q appears in both %s and %s", t.ID, prev, key)
			}
			seen[t.ID] = key
		}
	}
	return nil
}

func cloneTasks(in []Task) []Task {
	if in == nil {
		return []Task{}
	}
	out := make([]Task, len(in))
	copy(out, in)
	return out
}

// TaskInput carries a new task. Status uses the client vocabulary.
type TaskInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      ClientTaskStatus `json:"status,omitempty"`
	Priority    Priority         `json:"priority,omitempty"`
	Assignee    string           `json:"assignee,omitempty"`
}

// TaskUpdates carries a partial task update. Nil fields are left unchanged.
type TaskUpdates struct {
	Status      *ClientTaskStatus `json:"status,omitempty"`
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Priority    *Priority         `json:"priority,omitempty"`
	Assignee    *string           `json:"assignee,omitempty"`
}
