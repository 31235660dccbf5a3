package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insighthub/internal/models"
	"insighthub/internal/storage/memory"
	"insighthub/internal/storage/storagetest"
)

func ptr[T any](v T) *T { return &v }

func newProjects(t *testing.T) (*Projects, models.Project) {
	t.Helper()
	store := memory.New()
	svc := NewProjects(store, nil)
	p, err := svc.Create(context.Background(), storagetest.SampleProject(store))
	require.NoError(t, err)
	return svc, p
}

func TestCreateProjectValidates(t *testing.T) {
	svc := NewProjects(memory.New(), nil)

	_, err := svc.Create(context.Background(), models.Project{Title: "   "})
	assert.True(t, models.IsValidation(err))

	_, err = svc.Create(context.Background(), models.Project{Title: "x", Status: "archived"})
	assert.ErrorIs(t, err, models.ErrUnknownStatus)

	p, err := svc.Create(context.Background(), models.Project{Title: " Launch "})
	require.NoError(t, err)
	assert.Equal(t, "Launch", p.Title)
	assert.Equal(t, models.ProjectCreated, p.Status)
	assert.Equal(t, models.PriorityMedium, p.Priority)
	assert.NotNil(t, p.TaskDetails.Todo)
}

func TestCreateProjectAssignsTaskIDs(t *testing.T) {
	svc := NewProjects(memory.New(), nil)
	p, err := svc.Create(context.Background(), models.Project{
		Title: "Launch",
		TaskDetails: models.TaskDetails{
			Done: []models.Task{{Title: "Kickoff"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.TaskDetails.Done, 1)
	assert.NotEmpty(t, p.TaskDetails.Done[0].ID)
	assert.Equal(t, models.TaskDone, p.TaskDetails.Done[0].Status)
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, p := newProjects(t)

	p, err := svc.CreateTask(ctx, p.ID, models.TaskInput{Title: "Write copy", Status: models.ClientTaskInProgress})
	require.NoError(t, err)
	require.Len(t, p.TaskDetails.InProgress, 2)
	created := p.TaskDetails.InProgress[1]

	p, err = svc.UpdateTask(ctx, p.ID, created.ID, models.TaskUpdates{Status: ptr(models.ClientTaskDone)})
	require.NoError(t, err)
	require.Len(t, p.TaskDetails.Done, 1)
	assert.Equal(t, created.ID, p.TaskDetails.Done[0].ID)

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.TaskDetails.Done, 1)

	p, err = svc.DeleteTask(ctx, p.ID, created.ID)
	require.NoError(t, err)
	assert.Empty(t, p.TaskDetails.Done)

	_, err = svc.DeleteTask(ctx, p.ID, created.ID)
	assert.True(t, models.IsNotFound(err))

	_, err = svc.CreateTask(ctx, "missing", models.TaskInput{Title: "x"})
	assert.True(t, models.IsNotFound(err))
}

func TestFailedTaskUpdateLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, p := newProjects(t)
	taskID := p.TaskDetails.Todo[0].ID

	_, err := svc.UpdateTask(ctx, p.ID, taskID, models.TaskUpdates{Status: ptr(models.ClientTaskStatus("blocked"))})
	assert.True(t, models.IsValidation(err))

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, taskID, stored.TaskDetails.Todo[0].ID)
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	svc, p := newProjects(t)

	got, err := svc.Update(ctx, p.ID, models.ProjectUpdate{Title: ptr("Site v2"), CompletedPercentage: ptr(80)})
	require.NoError(t, err)
	assert.Equal(t, "Site v2", got.Title)
	assert.Equal(t, 80, got.CompletedPercentage)
	assert.Len(t, got.TaskDetails.Todo, 1, "buckets untouched without taskDetails")

	got, err = svc.Update(ctx, p.ID, models.ProjectUpdate{TaskDetails: &models.TaskDetails{
		Done: []models.Task{{Title: "Ship", Status: models.TaskDone}},
	}})
	require.NoError(t, err)
	assert.Empty(t, got.TaskDetails.Todo)
	assert.Empty(t, got.TaskDetails.InProgress)
	require.Len(t, got.TaskDetails.Done, 1)

	due := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	got, err = svc.Update(ctx, p.ID, models.ProjectUpdate{DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	got, err = svc.Update(ctx, p.ID, models.ProjectUpdate{Title: ptr("Site v3")})
	require.NoError(t, err)
	assert.NotNil(t, got.DueDate, "absent due date is left alone")
	got, err = svc.Update(ctx, p.ID, models.ProjectUpdate{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)

	_, err = svc.Update(ctx, p.ID, models.ProjectUpdate{CompletedPercentage: ptr(101)})
	assert.True(t, models.IsValidation(err))

	_, err = svc.Update(ctx, "missing", models.ProjectUpdate{})
	assert.True(t, models.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.True(t, models.IsNotFound(svc.Delete(ctx, p.ID)))
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	svc := NewGoals(memory.New())

	_, err := svc.Create(ctx, "  ", "")
	assert.True(t, models.IsValidation(err))

	g, err := svc.Create(ctx, "  Run 5k ", "")
	require.NoError(t, err)
	assert.Equal(t, "Run 5k", g.Title)
	assert.Equal(t, models.PriorityMedium, g.Priority)

	g, err = svc.Toggle(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, g.Completed)
	g, err = svc.Toggle(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, g.Completed)

	g, err = svc.Update(ctx, g.ID, models.GoalUpdate{Priority: ptr(models.PriorityHigh), Completed: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, g.Priority)

	_, err = svc.Update(ctx, g.ID, models.GoalUpdate{Priority: ptr(models.Priority("urgent"))})
	assert.True(t, models.IsValidation(err))

	_, err = svc.Create(ctx, "Keep", models.PriorityLow)
	require.NoError(t, err)

	n, err := svc.DeleteCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	goals, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Keep", goals[0].Title)

	_, err = svc.Delete(ctx, g.ID)
	assert.True(t, models.IsNotFound(err))
	_, err = svc.Toggle(ctx, g.ID)
	assert.True(t, models.IsNotFound(err))
}
