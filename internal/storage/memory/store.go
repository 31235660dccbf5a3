// Package memory is a process-local Store used for tests and demo runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"insighthub/internal/models"
)

// Store keeps projects and goals in maps guarded by a RWMutex. Values are
// copied on the way in and out so callers never share slices with the store.
type Store struct {
	mu       sync.RWMutex
	projects map[string]models.Project
	order    []string
	goals    map[string]models.Goal
	now      func() time.Time
}

func New() *Store {
	return &Store{
		projects: make(map[string]models.Project),
		goals:    make(map[string]models.Goal),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) NewID() string { return uuid.NewString() }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// ListProjects returns projects in insertion order.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Project, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.projects[id].Clone())
	}
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, models.NotFound("project", id)
	}
	return p.Clone(), nil
}

func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.NewID()
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.projects[p.ID] = p.Clone()
	s.order = append(s.order, p.ID)
	return p.Clone(), nil
}

func (s *Store) SaveProject(ctx context.Context, p models.Project) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ID]; !ok {
		return models.Project{}, models.NotFound("project", p.ID)
	}
	p.UpdatedAt = s.now()
	s.projects[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return models.NotFound("project", id)
	}
	delete(s.projects, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListGoals returns goals sorted by creation time, newest first.
func (s *Store) ListGoals(ctx context.Context) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok {
		return models.Goal{}, models.NotFound("goal", id)
	}
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = s.NewID()
	}
	now := s.now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) SaveGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[g.ID]; !ok {
		return models.Goal{}, models.NotFound("goal", g.ID)
	}
	g.UpdatedAt = s.now()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok {
		return models.Goal{}, models.NotFound("goal", id)
	}
	delete(s.goals, id)
	return g, nil
}

func (s *Store) DeleteCompletedGoals(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, g := range s.goals {
		if g.Completed {
			delete(s.goals, id)
			n++
		}
	}
	return n, nil
}
