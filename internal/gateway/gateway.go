// Package gateway is the client side of the persistence API. Every call
// returns the typed errors from internal/models: NotFoundError for 404,
// ValidationError for 400 and PersistenceError for anything that means the
// server could not be reached or could not persist.
package gateway

import (
	"context"

	"insighthub/internal/models"
)

// Gateway is the persistence contract the reconciliation layer talks to.
type Gateway interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (models.Project, error)
	// UpdateProject applies u; u.TaskDetails, when set, replaces all buckets.
	UpdateProject(ctx context.Context, id string, u models.ProjectUpdate) (models.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)

	CreateTask(ctx context.Context, projectID string, in models.TaskInput) (models.Project, error)
	UpdateTask(ctx context.Context, projectID, taskID string, u models.TaskUpdates) (models.Project, error)
	DeleteTask(ctx context.Context, projectID, taskID string) (models.Project, error)

	ListGoals(ctx context.Context) ([]models.Goal, error)
	CreateGoal(ctx context.Context, title string, priority models.Priority) (models.Goal, error)
	UpdateGoal(ctx context.Context, id string, u models.GoalUpdate) (models.Goal, error)
	ToggleGoal(ctx context.Context, id string) (models.Goal, error)
	DeleteGoal(ctx context.Context, id string) (models.Goal, error)
	DeleteCompletedGoals(ctx context.Context) (int64, error)
}
