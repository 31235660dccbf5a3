package reconcile

import (
	"context"

	"github.com/sirupsen/logrus"

	"insighthub/internal/mapper"
	"insighthub/internal/models"
)

// Projects returns a copy of every project record in display order.
func (s *State) Projects() []models.ProjectRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.projects)
}

// Project returns the record with id.
func (s *State) Project(id string) (models.ProjectRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.projects {
		if r.Project.ID == id {
			return models.ProjectRecord{Project: r.Project.Clone(), Durability: r.Durability}, true
		}
	}
	return models.ProjectRecord{}, false
}

func (s *State) lookupProject(id string) (models.ProjectRecord, error) {
	r, ok := s.Project(id)
	if !ok {
		return models.ProjectRecord{}, models.NotFound("project", id)
	}
	return r, nil
}

// CreateProject persists cp and prepends the result. The returned record is
// LocalOnly with a local- id when the gateway was unreachable.
func (s *State) CreateProject(ctx context.Context, cp models.ClientProject) (models.ProjectRecord, error) {
	if cp.Status == "" {
		cp.Status = models.ClientProjectCreated
	}
	p, err := mapper.ProjectToStorage(cp)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	p.ID = ""
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return models.ProjectRecord{}, err
	}

	saved, err := s.gw.CreateProject(ctx, p)
	var rec models.ProjectRecord
	switch {
	case err == nil:
		rec, err = persisted(saved)
		if err != nil {
			return models.ProjectRecord{}, err
		}
	case s.fallback("create project", err, logrus.Fields{"title": p.Title}):
		rec, err = s.localCreate(p)
		if err != nil {
			return models.ProjectRecord{}, err
		}
	default:
		return models.ProjectRecord{}, err
	}

	s.mu.Lock()
	s.projects = append([]models.ProjectRecord{rec}, s.projects...)
	s.mu.Unlock()
	s.saveProjects(ctx)
	return rec, nil
}

func (s *State) localCreate(p models.Project) (models.ProjectRecord, error) {
	now := s.now()
	p.ID = newLocalID()
	p.CreatedAt = now
	p.UpdatedAt = now
	next, err := s.engine.ReplaceBuckets(p, p.TaskDetails)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	return local(next)
}

// UpdateProject replaces the project identified by id with cp. The task
// list of cp, when present, replaces all buckets.
func (s *State) UpdateProject(ctx context.Context, id string, cp models.ClientProject) (models.ProjectRecord, error) {
	current, err := s.lookupProject(id)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	u, err := mapper.UpdateToStorage(cp)
	if err != nil {
		return models.ProjectRecord{}, err
	}

	apply := func(p models.Project) (models.Project, error) {
		next := u.ApplyTo(p)
		if u.TaskDetails != nil {
			return s.engine.ReplaceBuckets(next, *u.TaskDetails)
		}
		next.UpdatedAt = s.now()
		return next, nil
	}

	return s.mutateProject(ctx, "update project", current, []string{id}, apply, func() (models.Project, error) {
		return s.gw.UpdateProject(ctx, id, u)
	})
}

// DeleteProject removes a project. A project with a local id is removed
// without contacting the gateway.
func (s *State) DeleteProject(ctx context.Context, id string) error {
	_, err := s.lookupProject(id)
	if err != nil {
		return err
	}

	if serverKnown(id) {
		if _, err := s.gw.DeleteProject(ctx, id); err != nil && !s.fallback("delete project", err, logrus.Fields{"project": id}) {
			return err
		}
	}

	s.mu.Lock()
	for i, r := range s.projects {
		if r.Project.ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.saveProjects(ctx)
	return nil
}

// CreateTask adds a task to a project. in.Status uses the client vocabulary.
func (s *State) CreateTask(ctx context.Context, projectID string, in models.TaskInput) (models.ProjectRecord, error) {
	current, err := s.lookupProject(projectID)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	return s.mutateProject(ctx, "create task", current, []string{projectID},
		func(p models.Project) (models.Project, error) { return s.engine.CreateTask(p, in) },
		func() (models.Project, error) { return s.gw.CreateTask(ctx, projectID, in) })
}

// UpdateTask moves and/or edits a task; absent fields stay unchanged.
func (s *State) UpdateTask(ctx context.Context, projectID, taskID string, u models.TaskUpdates) (models.ProjectRecord, error) {
	current, err := s.lookupProject(projectID)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	return s.mutateProject(ctx, "update task", current, []string{projectID, taskID},
		func(p models.Project) (models.Project, error) { return s.engine.MoveTask(p, taskID, u) },
		func() (models.Project, error) { return s.gw.UpdateTask(ctx, projectID, taskID, u) })
}

// DeleteTask removes a task from a project.
func (s *State) DeleteTask(ctx context.Context, projectID, taskID string) (models.ProjectRecord, error) {
	current, err := s.lookupProject(projectID)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	return s.mutateProject(ctx, "delete task", current, []string{projectID, taskID},
		func(p models.Project) (models.Project, error) { return s.engine.DeleteTask(p, taskID) },
		func() (models.Project, error) { return s.gw.DeleteTask(ctx, projectID, taskID) })
}

// mutateProject runs apply against the storage form of current first, so
// validation and not-found errors surface before any gateway call. When the
// server knows every id in ids the change then goes through remote; ids
// minted locally, or a remote PersistenceError, keep the local result.
func (s *State) mutateProject(
	ctx context.Context,
	op string,
	current models.ProjectRecord,
	ids []string,
	apply func(models.Project) (models.Project, error),
	remote func() (models.Project, error),
) (models.ProjectRecord, error) {
	base, err := mapper.ProjectToStorage(current.Project)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	next, err := apply(base)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	if err := next.Validate(); err != nil {
		return models.ProjectRecord{}, err
	}

	var rec models.ProjectRecord
	if serverKnown(ids...) {
		saved, remoteErr := remote()
		switch {
		case remoteErr == nil:
			rec, err = persisted(saved)
		case s.fallback(op, remoteErr, logrus.Fields{"project": current.Project.ID}):
			rec, err = local(next)
		default:
			return models.ProjectRecord{}, remoteErr
		}
	} else {
		rec, err = local(next)
	}
	if err != nil {
		return models.ProjectRecord{}, err
	}

	s.mu.Lock()
	for i, r := range s.projects {
		if r.Project.ID == current.Project.ID {
			s.projects[i] = rec
			break
		}
	}
	s.mu.Unlock()
	s.saveProjects(ctx)
	return rec, nil
}

func persisted(p models.Project) (models.ProjectRecord, error) {
	cp, err := mapper.ProjectToClient(p)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	return models.ProjectRecord{Project: cp, Durability: models.Persisted}, nil
}

func local(p models.Project) (models.ProjectRecord, error) {
	cp, err := mapper.ProjectToClient(p)
	if err != nil {
		return models.ProjectRecord{}, err
	}
	return models.ProjectRecord{Project: cp, Durability: models.LocalOnly}, nil
}
