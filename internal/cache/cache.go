// Package cache keeps the last client-side snapshot of projects and goals so
// the reconciliation layer has something to show when the API is down.
package cache

import (
	"context"
	"errors"
	"sync"

	"insighthub/internal/models"
)

// ErrMiss means nothing has been stored yet. An empty stored list is not a miss.
var ErrMiss = errors.New("cache miss")

// Cache stores durability-tagged snapshots.
type Cache interface {
	LoadProjects(ctx context.Context) ([]models.ProjectRecord, error)
	StoreProjects(ctx context.Context, records []models.ProjectRecord) error
	LoadGoals(ctx context.Context) ([]models.GoalRecord, error)
	StoreGoals(ctx context.Context, records []models.GoalRecord) error
}

// Memory is a process-local Cache.
type Memory struct {
	mu       sync.Mutex
	projects []models.ProjectRecord
	goals    []models.GoalRecord
	hasP     bool
	hasG     bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) LoadProjects(context.Context) ([]models.ProjectRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasP {
		return nil, ErrMiss
	}
	return cloneProjects(m.projects), nil
}

func (m *Memory) StoreProjects(_ context.Context, records []models.ProjectRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = cloneProjects(records)
	m.hasP = true
	return nil
}

func (m *Memory) LoadGoals(context.Context) ([]models.GoalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasG {
		return nil, ErrMiss
	}
	return append([]models.GoalRecord{}, m.goals...), nil
}

func (m *Memory) StoreGoals(_ context.Context, records []models.GoalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals = append([]models.GoalRecord{}, records...)
	m.hasG = true
	return nil
}

func cloneProjects(in []models.ProjectRecord) []models.ProjectRecord {
	out := make([]models.ProjectRecord, len(in))
	for i, r := range in {
		out[i] = models.ProjectRecord{Project: r.Project.Clone(), Durability: r.Durability}
	}
	return out
}
