package reconcile

import (
	"context"
	"errors"
	"sync"

	"insighthub/internal/models"
	"insighthub/internal/service"
	"insighthub/internal/storage/memory"
)

var errOffline = errors.New("connection refused")

// fakeGateway serves the gateway contract from an in-memory store and can be
// switched offline.
type fakeGateway struct {
	mu       sync.Mutex
	down     bool
	calls    int
	store    *memory.Store
	projects *service.Projects
	goals    *service.Goals
}

func newFakeGateway() *fakeGateway {
	store := memory.New()
	return &fakeGateway{
		store:    store,
		projects: service.NewProjects(store, nil),
		goals:    service.NewGoals(store),
	}
}

func (f *fakeGateway) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeGateway) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.down {
		return &models.PersistenceError{Op: op, Err: errOffline}
	}
	return nil
}

func (f *fakeGateway) ListProjects(ctx context.Context) ([]models.Project, error) {
	if err := f.enter("list projects"); err != nil {
		return nil, err
	}
	return f.projects.List(ctx)
}

func (f *fakeGateway) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if err := f.enter("create project"); err != nil {
		return models.Project{}, err
	}
	return f.projects.Create(ctx, p)
}

func (f *fakeGateway) UpdateProject(ctx context.Context, id string, u models.ProjectUpdate) (models.Project, error) {
	if err := f.enter("update project"); err != nil {
		return models.Project{}, err
	}
	return f.projects.Update(ctx, id, u)
}

func (f *fakeGateway) DeleteProject(ctx context.Context, id string) (bool, error) {
	if err := f.enter("delete project"); err != nil {
		return false, err
	}
	if err := f.projects.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeGateway) CreateTask(ctx context.Context, projectID string, in models.TaskInput) (models.Project, error) {
	if err := f.enter("create task"); err != nil {
		return models.Project{}, err
	}
	return f.projects.CreateTask(ctx, projectID, in)
}

func (f *fakeGateway) UpdateTask(ctx context.Context, projectID, taskID string, u models.TaskUpdates) (models.Project, error) {
	if err := f.enter("update task"); err != nil {
		return models.Project{}, err
	}
	return f.projects.UpdateTask(ctx, projectID, taskID, u)
}

func (f *fakeGateway) DeleteTask(ctx context.Context, projectID, taskID string) (models.Project, error) {
	if err := f.enter("delete task"); err != nil {
		return models.Project{}, err
	}
	return f.projects.DeleteTask(ctx, projectID, taskID)
}

func (f *fakeGateway) ListGoals(ctx context.Context) ([]models.Goal, error) {
	if err := f.enter("list goals"); err != nil {
		return nil, err
	}
	return f.goals.List(ctx)
}

func (f *fakeGateway) CreateGoal(ctx context.Context, title string, priority models.Priority) (models.Goal, error) {
	if err := f.enter("create goal"); err != nil {
		return models.Goal{}, err
	}
	return f.goals.Create(ctx, title, priority)
}

func (f *fakeGateway) UpdateGoal(ctx context.Context, id string, u models.GoalUpdate) (models.Goal, error) {
	if err := f.enter("update goal"); err != nil {
		return models.Goal{}, err
	}
	return f.goals.Update(ctx, id, u)
}

func (f *fakeGateway) ToggleGoal(ctx context.Context, id string) (models.Goal, error) {
	if err := f.enter("toggle goal"); err != nil {
		return models.Goal{}, err
	}
	return f.goals.Toggle(ctx, id)
}

func (f *fakeGateway) DeleteGoal(ctx context.Context, id string) (models.Goal, error) {
	if err := f.enter("delete goal"); err != nil {
		return models.Goal{}, err
	}
	return f.goals.Delete(ctx, id)
}

func (f *fakeGateway) DeleteCompletedGoals(ctx context.Context) (int64, error) {
	if err := f.enter("delete completed goals"); err != nil {
		return 0, err
	}
	return f.goals.DeleteCompleted(ctx)
}
