// Package engine applies single task-level operations to a project's embedded
// task buckets. Every operation works on a deep copy and returns it, so a
// failed operation never leaves a partially mutated project behind.
package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"insighthub/internal/mapper"
	"insighthub/internal/models"
)

// Engine mutates task buckets. NewID and Now are replaceable so stores can
// hand out ids in their own format.
type Engine struct {
	NewID func() string
	Now   func() time.Time
}

// New returns an engine that uses newID for task identifiers. A nil newID
// falls back to random UUIDs.
func New(newID func() string) *Engine {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Engine{
		NewID: newID,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateTask appends a new task to the bucket matching in.Status.
func (e *Engine) CreateTask(p models.Project, in models.TaskInput) (models.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return p, models.Invalid("title", "task title must not be empty")
	}
	status := in.Status
	if status == "" {
		status = models.ClientTaskTodo
	}
	key, err := mapper.TaskStatusToStorage(status)
	if err != nil {
		return p, err
	}
	priority := in.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}
	if !priority.Valid() {
		return p, models.Invalid("priority", "invalid task priority %q", priority)
	}

	out := p.Clone()
	now := e.Now()
	bucket := out.TaskDetails.Bucket(key)
	*bucket = append(*bucket, models.Task{
		ID:          e.NewID(),
		Title:       title,
		Description: in.Description,
		Status:      key,
		Priority:    priority,
		Assignee:    in.Assignee,
		CreatedAt:   now,
	})
	out.UpdatedAt = now
	return out, nil
}

// MoveTask locates taskID in todo, inProgress then done, removes it, applies
// every present field of u and appends it to the bucket named by the
// (possibly new) status.
func (e *Engine) MoveTask(p models.Project, taskID string, u models.TaskUpdates) (models.Project, error) {
	target, err := validateUpdates(u)
	if err != nil {
		return p, err
	}

	out := p.Clone()
	from, idx, ok := out.TaskDetails.Find(taskID)
	if !ok {
		return p, models.NotFound("task", taskID)
	}
	src := out.TaskDetails.Bucket(from)
	task := (*src)[idx]
	*src = append((*src)[:idx], (*src)[idx+1:]...)

	if u.Title != nil {
		task.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		task.Description = *u.Description
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	if u.Assignee != nil {
		task.Assignee = *u.Assignee
	}

	to := from
	if target != "" {
		to = target
	}
	task.Status = to
	dst := out.TaskDetails.Bucket(to)
	*dst = append(*dst, task)

	out.UpdatedAt = e.Now()
	return out, nil
}

// DeleteTask removes the first task matching taskID.
func (e *Engine) DeleteTask(p models.Project, taskID string) (models.Project, error) {
	out := p.Clone()
	from, idx, ok := out.TaskDetails.Find(taskID)
	if !ok {
		return p, models.NotFound("task", taskID)
	}
	src := out.TaskDetails.Bucket(from)
	*src = append((*src)[:idx], (*src)[idx+1:]...)

	out.UpdatedAt = e.Now()
	return out, nil
}

// ReplaceBuckets swaps all three buckets for d. Tasks without an id get one,
// missing priorities default to medium and every task must agree with the
// bucket it is listed under.
func (e *Engine) ReplaceBuckets(p models.Project, d models.TaskDetails) (models.Project, error) {
	next := d.Clone()
	now := e.Now()
	for _, key := range models.Buckets {
		bucket := *next.Bucket(key)
		for i := range bucket {
			if bucket[i].ID == "" {
				bucket[i].ID = e.NewID()
			}
			if bucket[i].Status == "" {
				bucket[i].Status = key
			}
			if bucket[i].Priority == "" {
				bucket[i].Priority = models.DefaultPriority
			}
			if bucket[i].CreatedAt.IsZero() {
				bucket[i].CreatedAt = now
			}
		}
	}
	if err := next.Validate(); err != nil {
		return p, err
	}

	out := p.Clone()
	out.TaskDetails = next
	out.UpdatedAt = now
	return out, nil
}

func validateUpdates(u models.TaskUpdates) (models.TaskStatus, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return "", models.Invalid("title", "task title must not be empty")
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return "", models.Invalid("priority", "invalid task priority %q", *u.Priority)
	}
	if u.Status == nil {
		return "", nil
	}
	return mapper.TaskStatusToStorage(*u.Status)
}
