// Package service runs one load, mutate, save cycle per request on top of a
// storage backend.
package service

import (
	"context"

	"insighthub/internal/engine"
	"insighthub/internal/models"
	"insighthub/internal/storage"
)

// Projects combines the project repository with the task engine.
type Projects struct {
	repo   storage.ProjectRepository
	engine *engine.Engine
}

// NewProjects returns a project service. A nil eng uses engine.New(nil).
func NewProjects(repo storage.ProjectRepository, eng *engine.Engine) *Projects {
	if eng == nil {
		eng = engine.New(nil)
	}
	return &Projects{repo: repo, engine: eng}
}

func (s *Projects) List(ctx context.Context) ([]models.Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *Projects) Get(ctx context.Context, id string) (models.Project, error) {
	return s.repo.GetProject(ctx, id)
}

// Create validates p and persists it. Any tasks it carries get ids and
// defaults the same way a bucket replacement would.
func (s *Projects) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = ""
	p.ApplyDefaults()
	if p.TaskDetails.Len() > 0 {
		next, err := s.engine.ReplaceBuckets(p, p.TaskDetails)
		if err != nil {
			return models.Project{}, err
		}
		p = next
	}
	if err := p.Validate(); err != nil {
		return models.Project{}, err
	}
	return s.repo.CreateProject(ctx, p)
}

// Update applies a partial update. When u carries taskDetails all three
// buckets are replaced.
func (s *Projects) Update(ctx context.Context, id string, u models.ProjectUpdate) (models.Project, error) {
	current, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}

	next := u.ApplyTo(current)
	if u.TaskDetails != nil {
		next, err = s.engine.ReplaceBuckets(next, *u.TaskDetails)
		if err != nil {
			return models.Project{}, err
		}
	}
	if err := next.Validate(); err != nil {
		return models.Project{}, err
	}
	return s.repo.SaveProject(ctx, next)
}

func (s *Projects) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteProject(ctx, id)
}

func (s *Projects) CreateTask(ctx context.Context, projectID string, in models.TaskInput) (models.Project, error) {
	return s.mutate(ctx, projectID, func(p models.Project) (models.Project, error) {
		return s.engine.CreateTask(p, in)
	})
}

func (s *Projects) UpdateTask(ctx context.Context, projectID, taskID string, u models.TaskUpdates) (models.Project, error) {
	return s.mutate(ctx, projectID, func(p models.Project) (models.Project, error) {
		return s.engine.MoveTask(p, taskID, u)
	})
}

func (s *Projects) DeleteTask(ctx context.Context, projectID, taskID string) (models.Project, error) {
	return s.mutate(ctx, projectID, func(p models.Project) (models.Project, error) {
		return s.engine.DeleteTask(p, taskID)
	})
}

func (s *Projects) mutate(ctx context.Context, projectID string, fn func(models.Project) (models.Project, error)) (models.Project, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	next, err := fn(p)
	if err != nil {
		return models.Project{}, err
	}
	return s.repo.SaveProject(ctx, next)
}
