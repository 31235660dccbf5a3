package engine

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insighthub/internal/mapper"
	"insighthub/internal/models"
)

func newTestEngine() *Engine {
	n := 0
	e := New(func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	})
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Now = func() time.Time { return fixed }
	return e
}

func emptyProject() models.Project {
	p := models.Project{ID: "p1", Title: "Website Redesign"}
	p.ApplyDefaults()
	return p
}

func ptr[T any](v T) *T { return &v }

// assertConsistent checks bucket exclusivity and status/bucket agreement.
func assertConsistent(t *testing.T, p models.Project) {
	t.Helper()
	seen := map[string]models.TaskStatus{}
	for _, key := range models.Buckets {
		for _, task := range *p.TaskDetails.Bucket(key) {
			prev, dup := seen[task.ID]
			assert.False(t, dup, "task %s in %s and %s", task.ID, prev, key)
			seen[task.ID] = key
			assert.Equal(t, key, task.Status, "task %s status disagrees with bucket", task.ID)
		}
	}
}

func TestMoveTaskTodoToDone(t *testing.T) {
	e := newTestEngine()
	p := emptyProject()
	p.TaskDetails.Todo = []models.Task{{ID: "T1", Title: "Audit", Status: models.TaskTodo, Priority: models.PriorityMedium}}

	out, err := e.MoveTask(p, "T1", models.TaskUpdates{Status: ptr(models.ClientTaskDone)})
	require.NoError(t, err)

	assert.Empty(t, out.TaskDetails.Todo)
	assert.Empty(t, out.TaskDetails.InProgress)
	require.Len(t, out.TaskDetails.Done, 1)
	assert.Equal(t, "T1", out.TaskDetails.Done[0].ID)
	assert.Equal(t, models.TaskDone, out.TaskDetails.Done[0].Status)
	assertConsistent(t, out)

	require.Len(t, p.TaskDetails.Todo, 1, "input project must not be mutated")
}

func TestCreateTaskDefaultsPriority(t *testing.T) {
	e := newTestEngine()

	out, err := e.CreateTask(emptyProject(), models.TaskInput{Title: "Write tests", Status: models.ClientTaskTodo})
	require.NoError(t, err)

	require.Len(t, out.TaskDetails.Todo, 1)
	task := out.TaskDetails.Todo[0]
	assert.Equal(t, "Write tests", task.Title)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, "task-1", task.ID)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Empty(t, out.TaskDetails.InProgress)
	assert.Empty(t, out.TaskDetails.Done)
}

func TestDeleteMissingTaskLeavesProject(t *testing.T) {
	e := newTestEngine()
	p := emptyProject()
	p.TaskDetails.InProgress = []models.Task{{ID: "T1", Title: "x", Status: models.TaskInProgress, Priority: models.PriorityLow}}
	before := p.Clone()

	out, err := e.DeleteTask(p, "T2")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, before.TaskDetails, out.TaskDetails)
	assert.Equal(t, before.TaskDetails, p.TaskDetails)
}

func TestCreateTask(t *testing.T) {
	e := newTestEngine()

	t.Run("maps client status to bucket", func(t *testing.T) {
		out, err := e.CreateTask(emptyProject(), models.TaskInput{Title: "API", Status: models.ClientTaskInProgress, Priority: models.PriorityHigh})
		require.NoError(t, err)
		require.Len(t, out.TaskDetails.InProgress, 1)
		assert.Equal(t, models.TaskInProgress, out.TaskDetails.InProgress[0].Status)
		assert.Equal(t, models.PriorityHigh, out.TaskDetails.InProgress[0].Priority)
	})

	t.Run("empty status lands in todo", func(t *testing.T) {
		out, err := e.CreateTask(emptyProject(), models.TaskInput{Title: "Plan"})
		require.NoError(t, err)
		assert.Len(t, out.TaskDetails.Todo, 1)
	})

	t.Run("duplicate titles allowed", func(t *testing.T) {
		p, err := e.CreateTask(emptyProject(), models.TaskInput{Title: "Same"})
		require.NoError(t, err)
		p, err = e.CreateTask(p, models.TaskInput{Title: "Same"})
		require.NoError(t, err)
		assert.Len(t, p.TaskDetails.Todo, 2)
		assertConsistent(t, p)
	})

	for _, tc := range []struct {
		name string
		in   models.TaskInput
	}{
		{"blank title", models.TaskInput{Title: "  "}},
		{"storage vocabulary status", models.TaskInput{Title: "x", Status: "inProgress"}},
		{"unknown priority", models.TaskInput{Title: "x", Priority: "urgent"}},
	} {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			p := emptyProject()
			out, err := e.CreateTask(p, tc.in)
			assert.True(t, models.IsValidation(err))
			assert.Equal(t, p, out)
		})
	}
}

func TestMoveTask(t *testing.T) {
	e := newTestEngine()
	base := emptyProject()
	base.TaskDetails.Todo = []models.Task{
		{ID: "a", Title: "A", Status: models.TaskTodo, Priority: models.PriorityLow},
		{ID: "b", Title: "B", Status: models.TaskTodo, Priority: models.PriorityLow},
	}
	base.TaskDetails.Done = []models.Task{{ID: "c", Title: "C", Status: models.TaskDone, Priority: models.PriorityHigh}}

	t.Run("unchanged status keeps membership and content", func(t *testing.T) {
		out, err := e.MoveTask(base, "a", models.TaskUpdates{Status: ptr(models.ClientTaskTodo)})
		require.NoError(t, err)
		require.Len(t, out.TaskDetails.Todo, 2)
		assert.ElementsMatch(t, base.TaskDetails.Todo, out.TaskDetails.Todo)
		assert.Equal(t, base.TaskDetails.Done, out.TaskDetails.Done)
	})

	t.Run("updates only present fields", func(t *testing.T) {
		out, err := e.MoveTask(base, "c", models.TaskUpdates{Title: ptr("C2"), Priority: ptr(models.PriorityMedium)})
		require.NoError(t, err)
		require.Len(t, out.TaskDetails.Done, 1)
		got := out.TaskDetails.Done[0]
		assert.Equal(t, "C2", got.Title)
		assert.Equal(t, models.PriorityMedium, got.Priority)
		assert.Equal(t, models.TaskDone, got.Status)
		assert.Equal(t, base.TaskDetails.Done[0].CreatedAt, got.CreatedAt)
	})

	t.Run("not found leaves buckets unchanged", func(t *testing.T) {
		out, err := e.MoveTask(base, "zzz", models.TaskUpdates{Status: ptr(models.ClientTaskDone)})
		assert.True(t, models.IsNotFound(err))
		assert.Equal(t, base.TaskDetails, out.TaskDetails)
	})

	t.Run("invalid update rejected before mutation", func(t *testing.T) {
		out, err := e.MoveTask(base, "a", models.TaskUpdates{Title: ptr("renamed"), Status: ptr(models.ClientTaskStatus("blocked"))})
		assert.ErrorIs(t, err, models.ErrUnknownStatus)
		assert.Equal(t, base, out)
		assert.Equal(t, "A", base.TaskDetails.Todo[0].Title)
	})

	t.Run("repairs drifted status", func(t *testing.T) {
		drifted := base.Clone()
		drifted.TaskDetails.Done[0].Status = models.TaskTodo

		out, err := e.MoveTask(drifted, "c", models.TaskUpdates{Description: ptr("found it")})
		require.NoError(t, err)
		require.Len(t, out.TaskDetails.Done, 1)
		assert.Equal(t, models.TaskDone, out.TaskDetails.Done[0].Status)
		assert.Equal(t, "found it", out.TaskDetails.Done[0].Description)
	})
}

func TestReplaceBuckets(t *testing.T) {
	e := newTestEngine()
	p := emptyProject()

	out, err := e.ReplaceBuckets(p, models.TaskDetails{
		Todo: []models.Task{{Title: "new"}},
		Done: []models.Task{{ID: "keep", Title: "old", Status: models.TaskDone, Priority: models.PriorityHigh}},
	})
	require.NoError(t, err)
	require.Len(t, out.TaskDetails.Todo, 1)
	assert.Equal(t, "task-1", out.TaskDetails.Todo[0].ID)
	assert.Equal(t, models.TaskTodo, out.TaskDetails.Todo[0].Status)
	assert.Equal(t, models.PriorityMedium, out.TaskDetails.Todo[0].Priority)
	assert.NotNil(t, out.TaskDetails.InProgress)
	assert.Equal(t, "keep", out.TaskDetails.Done[0].ID)

	_, err = e.ReplaceBuckets(p, models.TaskDetails{
		Todo: []models.Task{{ID: "x", Title: "x", Status: models.TaskDone}},
	})
	assert.True(t, models.IsValidation(err))

	_, err = e.ReplaceBuckets(p, models.TaskDetails{
		Todo: []models.Task{{ID: "x", Title: "x"}},
		Done: []models.Task{{ID: "x", Title: "x"}},
	})
	assert.True(t, models.IsValidation(err))
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	e := newTestEngine()
	rng := rand.New(rand.NewSource(42))
	statuses := []models.ClientTaskStatus{models.ClientTaskTodo, models.ClientTaskInProgress, models.ClientTaskDone}

	p := emptyProject()
	var ids []string
	for i := 0; i < 500; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			next, err := e.CreateTask(p, models.TaskInput{Title: fmt.Sprintf("t%d", i), Status: statuses[rng.Intn(3)]})
			require.NoError(t, err)
			p = next
			ids = append(ids, fmt.Sprintf("task-%d", len(ids)+1))
		case op == 1:
			id := ids[rng.Intn(len(ids))]
			next, err := e.MoveTask(p, id, models.TaskUpdates{Status: &statuses[rng.Intn(3)]})
			if err != nil {
				require.True(t, models.IsNotFound(err))
				continue
			}
			p = next
		default:
			id := ids[rng.Intn(len(ids))]
			next, err := e.DeleteTask(p, id)
			if err != nil {
				require.True(t, models.IsNotFound(err))
				continue
			}
			p = next
		}
		assertConsistent(t, p)
	}

	for _, key := range models.Buckets {
		for _, task := range *p.TaskDetails.Bucket(key) {
			cs, err := mapper.TaskStatusToClient(task.Status)
			require.NoError(t, err)
			back, err := mapper.TaskStatusToStorage(cs)
			require.NoError(t, err)
			assert.Equal(t, key, back)
		}
	}
}
