package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insighthub/internal/models"
	"insighthub/internal/storage"
	"insighthub/internal/storage/storagetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "insighthub.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return openTemp(t) })
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "insighthub.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	created, err := s.CreateProject(ctx, storagetest.SampleProject(s))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Len(t, got.TaskDetails.Todo, 1)
}

func TestDeleteProjectCascadesTasks(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	created, err := s.CreateProject(ctx, storagetest.SampleProject(s))
	require.NoError(t, err)
	require.NoError(t, s.DeleteProject(ctx, created.ID))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n))
	assert.Zero(t, n)
}

func TestNullDueDate(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	p := storagetest.SampleProject(s)
	p.DueDate = nil
	p.People = nil
	created, err := s.CreateProject(ctx, p)
	require.NoError(t, err)
	assert.Nil(t, created.DueDate)
	assert.Empty(t, created.People)
	assert.Equal(t, models.PriorityHigh, created.Priority)
}

func TestOpenUpgradesGlobalTaskKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "insighthub.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	created, err := s.CreateProject(ctx, storagetest.SampleProject(s))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`DROP INDEX idx_tasks_project_bucket;`,
		`ALTER TABLE tasks RENAME TO tasks_new;`,
		`CREATE TABLE tasks (
            id TEXT PRIMARY KEY,
            project_id TEXT NOT NULL,
            bucket TEXT NOT NULL,
            position INTEGER NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            priority TEXT NOT NULL DEFAULT 'medium',
            assignee TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL
        );`,
		`INSERT INTO tasks SELECT id, project_id, bucket, position, title, description, priority, assignee, created_at FROM tasks_new;`,
		`DROP TABLE tasks_new;`,
	} {
		_, err := raw.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, raw.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	legacy, err := s.legacyTaskKey()
	require.NoError(t, err)
	assert.False(t, legacy)

	got, err := s.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.TaskDetails.Todo, 1)
	assert.Len(t, got.TaskDetails.InProgress, 1)

	dup := storagetest.SampleProject(s)
	dup.TaskDetails.Todo[0].ID = got.TaskDetails.Todo[0].ID
	_, err = s.CreateProject(ctx, dup)
	assert.NoError(t, err)
}
