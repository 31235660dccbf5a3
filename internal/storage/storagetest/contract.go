// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insighthub/internal/models"
	"insighthub/internal/storage"
)

// Factory returns a fresh, empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) storage.Store

// Run exercises the storage contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("project lifecycle", func(t *testing.T) { testProjectLifecycle(t, newStore(t)) })
	t.Run("project not found", func(t *testing.T) { testProjectNotFound(t, newStore(t)) })
	t.Run("bucket order survives save", func(t *testing.T) { testBucketOrder(t, newStore(t)) })
	t.Run("task ids are scoped to their project", func(t *testing.T) { testTaskIDScope(t, newStore(t)) })
	t.Run("goal lifecycle", func(t *testing.T) { testGoalLifecycle(t, newStore(t)) })
	t.Run("goals newest first", func(t *testing.T) { testGoalOrder(t, newStore(t)) })
	t.Run("delete completed goals", func(t *testing.T) { testDeleteCompleted(t, newStore(t)) })
}

// SampleProject returns a valid project with one task per bucket.
func SampleProject(s storage.Store) models.Project {
	due := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	p := models.Project{
		Title:               "Website Redesign",
		Description:         "Revamp the landing page and improve UX.",
		People:              []string{"Alice", "Bob"},
		CompletedPercentage: 30,
		DueDate:             &due,
		Status:              models.ProjectInProgress,
		Priority:            models.PriorityHigh,
		Tags:                []string{"design", "frontend"},
		TaskDetails: models.TaskDetails{
			Todo:       []models.Task{{ID: s.NewID(), Title: "Audit current UI", Status: models.TaskTodo, Priority: models.PriorityMedium, CreatedAt: created}},
			InProgress: []models.Task{{ID: s.NewID(), Title: "Redesign Hero Section", Status: models.TaskInProgress, Priority: models.PriorityHigh, Assignee: "Alice", CreatedAt: created}},
			Done:       []models.Task{},
		},
	}
	p.ApplyDefaults()
	return p
}

func testProjectLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	created, err := s.CreateProject(ctx, SampleProject(s))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website Redesign", got.Title)
	assert.Equal(t, []string{"Alice", "Bob"}, got.People)
	assert.Equal(t, []string{"design", "frontend"}, got.Tags)
	assert.Equal(t, models.ProjectInProgress, got.Status)
	assert.Equal(t, 30, got.CompletedPercentage)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)))
	require.Len(t, got.TaskDetails.Todo, 1)
	require.Len(t, got.TaskDetails.InProgress, 1)
	assert.NotNil(t, got.TaskDetails.Done)
	assert.Empty(t, got.TaskDetails.Done)
	assert.Equal(t, "Alice", got.TaskDetails.InProgress[0].Assignee)
	assert.Equal(t, created.TaskDetails.Todo[0].ID, got.TaskDetails.Todo[0].ID)

	moved := got.Clone()
	task := moved.TaskDetails.Todo[0]
	task.Status = models.TaskDone
	moved.TaskDetails.Todo = []models.Task{}
	moved.TaskDetails.Done = []models.Task{task}
	moved.CompletedPercentage = 55

	saved, err := s.SaveProject(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, 55, saved.CompletedPercentage)

	got, err = s.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TaskDetails.Todo)
	require.Len(t, got.TaskDetails.Done, 1)
	assert.Equal(t, task.ID, got.TaskDetails.Done[0].ID)
	assert.Equal(t, models.TaskDone, got.TaskDetails.Done[0].Status)

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	require.NoError(t, s.DeleteProject(ctx, created.ID))
	_, err = s.GetProject(ctx, created.ID)
	assert.True(t, models.IsNotFound(err))

	list, err = s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testProjectNotFound(t *testing.T, s storage.Store) {
	ctx := context.Background()
	missing := s.NewID()

	_, err := s.GetProject(ctx, missing)
	assert.True(t, models.IsNotFound(err), "get: %v", err)

	p := SampleProject(s)
	p.ID = missing
	_, err = s.SaveProject(ctx, p)
	assert.True(t, models.IsNotFound(err), "save: %v", err)

	err = s.DeleteProject(ctx, missing)
	assert.True(t, models.IsNotFound(err), "delete: %v", err)
}

func testBucketOrder(t *testing.T, s storage.Store) {
	ctx := context.Background()
	p := SampleProject(s)
	p.TaskDetails.Todo = []models.Task{
		{ID: s.NewID(), Title: "first", Status: models.TaskTodo, Priority: models.PriorityLow},
		{ID: s.NewID(), Title: "second", Status: models.TaskTodo, Priority: models.PriorityLow},
		{ID: s.NewID(), Title: "third", Status: models.TaskTodo, Priority: models.PriorityLow},
	}
	created, err := s.CreateProject(ctx, p)
	require.NoError(t, err)

	reordered := created.Clone()
	reordered.TaskDetails.Todo = []models.Task{created.TaskDetails.Todo[2], created.TaskDetails.Todo[0], created.TaskDetails.Todo[1]}
	_, err = s.SaveProject(ctx, reordered)
	require.NoError(t, err)

	got, err := s.GetProject(ctx, created.ID)
	require.NoError(t, err)
	var titles []string
	for _, task := range got.TaskDetails.Todo {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"third", "first", "second"}, titles)
}

func testTaskIDScope(t *testing.T, s storage.Store) {
	ctx := context.Background()
	withTask := func(title string) models.Project {
		p := SampleProject(s)
		p.Title = title
		p.TaskDetails = models.TaskDetails{
			Todo:       []models.Task{{ID: "t-1", Title: title + " task", Status: models.TaskTodo, Priority: models.PriorityLow}},
			InProgress: []models.Task{},
			Done:       []models.Task{},
		}
		return p
	}

	a, err := s.CreateProject(ctx, withTask("A"))
	require.NoError(t, err)
	b, err := s.CreateProject(ctx, withTask("B"))
	require.NoError(t, err)

	moved := a.TaskDetails.Todo[0]
	moved.Status = models.TaskDone
	a.TaskDetails.Done = []models.Task{moved}
	a.TaskDetails.Todo = []models.Task{}
	_, err = s.SaveProject(ctx, a)
	require.NoError(t, err)

	got, err := s.GetProject(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.TaskDetails.Todo, 1)
	assert.Equal(t, "B task", got.TaskDetails.Todo[0].Title)

	require.NoError(t, s.DeleteProject(ctx, a.ID))
	got, err = s.GetProject(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.TaskDetails.Todo, 1)
}

func testGoalLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()

	g, err := s.CreateGoal(ctx, models.NewGoal("Read a book", ""))
	require.NoError(t, err)
	require.NotEmpty(t, g.ID)
	assert.Equal(t, models.PriorityMedium, g.Priority)
	assert.False(t, g.Completed)

	g.Completed = true
	g.Title = "Read two books"
	saved, err := s.SaveGoal(ctx, g)
	require.NoError(t, err)
	assert.True(t, saved.Completed)

	got, err := s.GetGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read two books", got.Title)
	assert.True(t, got.Completed)

	deleted, err := s.DeleteGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, deleted.ID)

	_, err = s.GetGoal(ctx, g.ID)
	assert.True(t, models.IsNotFound(err))
	_, err = s.DeleteGoal(ctx, g.ID)
	assert.True(t, models.IsNotFound(err))
	_, err = s.SaveGoal(ctx, g)
	assert.True(t, models.IsNotFound(err))
}

func testGoalOrder(t *testing.T, s storage.Store) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i, title := range []string{"oldest", "middle", "newest"} {
		g := models.NewGoal(title, models.PriorityLow)
		g.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		created, err := s.CreateGoal(ctx, g)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	goals, err := s.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{goals[0].ID, goals[1].ID, goals[2].ID})
}

func testDeleteCompleted(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for i, done := range []bool{true, false, true} {
		g := models.NewGoal("goal", models.PriorityHigh)
		g.Completed = done
		g.CreatedAt = time.Date(2025, 3, 1, i, 0, 0, 0, time.UTC)
		_, err := s.CreateGoal(ctx, g)
		require.NoError(t, err)
	}

	n, err := s.DeleteCompletedGoals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	goals, err := s.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.False(t, goals[0].Completed)

	n, err = s.DeleteCompletedGoals(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
