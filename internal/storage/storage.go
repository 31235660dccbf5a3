// Package storage defines the persistence contract shared by the SQLite,
// MongoDB and in-memory backends.
package storage

import (
	"context"

	"insighthub/internal/models"
)

// ProjectRepository persists project aggregates including their task buckets.
//
// SaveProject replaces the stored aggregate unconditionally: concurrent
// writers race and the last write wins. Callers that need conflict detection
// should wrap this interface rather than change its implementations.
type ProjectRepository interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (models.Project, error)
	SaveProject(ctx context.Context, p models.Project) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// GoalRepository persists standalone goals. ListGoals returns newest first.
type GoalRepository interface {
	ListGoals(ctx context.Context) ([]models.Goal, error)
	GetGoal(ctx context.Context, id string) (models.Goal, error)
	CreateGoal(ctx context.Context, g models.Goal) (models.Goal, error)
	SaveGoal(ctx context.Context, g models.Goal) (models.Goal, error)
	DeleteGoal(ctx context.Context, id string) (models.Goal, error)
	DeleteCompletedGoals(ctx context.Context) (int64, error)
}

// Store is a complete backend.
type Store interface {
	ProjectRepository
	GoalRepository

	// NewID returns an identifier in the backend's native format.
	NewID() string
	Ping(ctx context.Context) error
	Close() error
}
