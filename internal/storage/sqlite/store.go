package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"insighthub/internal/models"
)

// Store wraps access to the SQLite database. Tasks live in their own table
// keyed by bucket and position; the project aggregate is reassembled on read.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug("sqlite store ready", slog.String("path", dbPath))
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// NewID returns a random UUID.
func (s *Store) NewID() string { return uuid.NewString() }

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            people TEXT NOT NULL DEFAULT '[]',
            completed_percentage INTEGER NOT NULL DEFAULT 0 CHECK (completed_percentage BETWEEN 0 AND 100),
            due_date DATETIME,
            status TEXT NOT NULL DEFAULT 'created',
            priority TEXT NOT NULL DEFAULT 'medium',
            tags TEXT NOT NULL DEFAULT '[]',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT NOT NULL,
            project_id TEXT NOT NULL,
            bucket TEXT NOT NULL CHECK (bucket IN ('todo', 'inProgress', 'done')),
            position INTEGER NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            priority TEXT NOT NULL DEFAULT 'medium',
            assignee TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            PRIMARY KEY (project_id, id),
            FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project_bucket ON tasks(project_id, bucket, position);`,
		`CREATE TABLE IF NOT EXISTS goals (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            priority TEXT NOT NULL DEFAULT 'medium',
            completed INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_goals_created ON goals(created_at);`,
	}

	legacy, err := s.legacyTaskKey()
	if err != nil {
		return err
	}
	if legacy {
		stmts = append([]string{
			`DROP INDEX IF EXISTS idx_tasks_project_bucket;`,
			`ALTER TABLE tasks RENAME TO tasks_legacy;`,
		}, stmts...)
		stmts = append(stmts,
			`INSERT INTO tasks(id, project_id, bucket, position, title, description, priority, assignee, created_at)
            SELECT id, project_id, bucket, position, title, description, priority, assignee, created_at FROM tasks_legacy;`,
			`DROP TABLE tasks_legacy;`,
		)
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// legacyTaskKey reports whether tasks still has the old single-column key,
// which made task ids unique across projects.
func (s *Store) legacyTaskKey() (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('tasks') WHERE pk > 0`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect tasks table: %w", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const projectColumns = `id, title, description, people, completed_percentage, due_date, status, priority, tags, created_at, updated_at`

func scanProject(row rowScanner) (models.Project, error) {
	var (
		p      models.Project
		people string
		tags   string
		due    sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &people, &p.CompletedPercentage, &due, &p.Status, &p.Priority, &tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Project{}, err
	}
	if err := json.Unmarshal([]byte(people), &p.People); err != nil {
		return models.Project{}, fmt.Errorf("decode people: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return models.Project{}, fmt.Errorf("decode tags: %w", err)
	}
	if due.Valid {
		d := due.Time.UTC()
		p.DueDate = &d
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.TaskDetails.Normalize()
	return p, nil
}

// ListProjects retrieves all projects ordered by creation date.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	index := map[string]int{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		index[p.ID] = len(projects)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	taskRows, err := s.db.QueryContext(ctx, `SELECT project_id, id, bucket, title, description, priority, assignee, created_at
        FROM tasks ORDER BY project_id, bucket, position`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var projectID string
		t, err := scanTask(taskRows, &projectID)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		i, ok := index[projectID]
		if !ok {
			continue
		}
		bucket := projects[i].TaskDetails.Bucket(t.Status)
		*bucket = append(*bucket, t)
	}
	return projects, taskRows.Err()
}

// GetProject fetches a single project with its buckets.
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, models.NotFound("project", id)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	if err := s.loadTasks(ctx, &p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func scanTask(row rowScanner, projectID *string) (models.Task, error) {
	var t models.Task
	if err := row.Scan(projectID, &t.ID, &t.Status, &t.Title, &t.Description, &t.Priority, &t.Assignee, &t.CreatedAt); err != nil {
		return models.Task{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (s *Store) loadTasks(ctx context.Context, p *models.Project) error {
	rows, err := s.db.QueryContext(ctx, `SELECT project_id, id, bucket, title, description, priority, assignee, created_at
        FROM tasks WHERE project_id = ? ORDER BY bucket, position`, p.ID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID string
		t, err := scanTask(rows, &projectID)
		if err != nil {
			return fmt.Errorf("scan task: %w", err)
		}
		bucket := p.TaskDetails.Bucket(t.Status)
		if bucket == nil {
			return fmt.Errorf("task %s: unknown bucket %q", t.ID, t.Status)
		}
		*bucket = append(*bucket, t)
	}
	return rows.Err()
}

// CreateProject persists a new project together with its buckets.
func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	if p.ID == "" {
		p.ID = s.NewID()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	people, tags, err := encodeLists(p)
	if err != nil {
		return models.Project{}, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO projects(`+projectColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Title, p.Description, people, p.CompletedPercentage, nullTime(p.DueDate), p.Status, p.Priority, tags, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		return insertTasks(ctx, tx, p.ID, p.TaskDetails)
	})
	if err != nil {
		return models.Project{}, err
	}
	return s.GetProject(ctx, p.ID)
}

// SaveProject overwrites the project row and rewrites its tasks in one
// transaction. There is no version check: the last write wins.
func (s *Store) SaveProject(ctx context.Context, p models.Project) (models.Project, error) {
	p.UpdatedAt = time.Now().UTC()
	people, tags, err := encodeLists(p)
	if err != nil {
		return models.Project{}, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE projects SET title = ?, description = ?, people = ?, completed_percentage = ?,
            due_date = ?, status = ?, priority = ?, tags = ?, updated_at = ? WHERE id = ?`,
			p.Title, p.Description, people, p.CompletedPercentage, nullTime(p.DueDate), p.Status, p.Priority, tags, p.UpdatedAt, p.ID)
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return models.NotFound("project", p.ID)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}
		return insertTasks(ctx, tx, p.ID, p.TaskDetails)
	})
	if err != nil {
		return models.Project{}, err
	}
	return s.GetProject(ctx, p.ID)
}

// DeleteProject removes a project; its tasks go with it through the cascade.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NotFound("project", id)
	}
	return nil
}

func insertTasks(ctx context.Context, tx *sql.Tx, projectID string, d models.TaskDetails) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks(id, project_id, bucket, position, title, description, priority, assignee, created_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range models.Buckets {
		for pos, t := range *d.Bucket(key) {
			created := t.CreatedAt
			if created.IsZero() {
				created = time.Now().UTC()
			}
			if _, err := stmt.ExecContext(ctx, t.ID, projectID, key, pos, t.Title, t.Description, t.Priority, t.Assignee, created.UTC()); err != nil {
				return fmt.Errorf("insert task %s: %w", t.ID, err)
			}
		}
	}
	return nil
}

const goalColumns = `id, title, priority, completed, created_at, updated_at`

func scanGoal(row rowScanner) (models.Goal, error) {
	var g models.Goal
	if err := row.Scan(&g.ID, &g.Title, &g.Priority, &g.Completed, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return models.Goal{}, err
	}
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return g, nil
}

// ListGoals returns goals newest first.
func (s *Store) ListGoals(ctx context.Context) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// GetGoal fetches a goal by id.
func (s *Store) GetGoal(ctx context.Context, id string) (models.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Goal{}, models.NotFound("goal", id)
	}
	if err != nil {
		return models.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// CreateGoal inserts a goal.
func (s *Store) CreateGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	if g.ID == "" {
		g.ID = s.NewID()
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO goals(`+goalColumns+`) VALUES(?, ?, ?, ?, ?, ?)`,
		g.ID, g.Title, g.Priority, g.Completed, g.CreatedAt.UTC(), g.UpdatedAt)
	if err != nil {
		return models.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	return s.GetGoal(ctx, g.ID)
}

// SaveGoal overwrites a goal.
func (s *Store) SaveGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE goals SET title = ?, priority = ?, completed = ?, updated_at = ? WHERE id = ?`,
		g.Title, g.Priority, g.Completed, time.Now().UTC(), g.ID)
	if err != nil {
		return models.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Goal{}, err
	}
	if affected == 0 {
		return models.Goal{}, models.NotFound("goal", g.ID)
	}
	return s.GetGoal(ctx, g.ID)
}

// DeleteGoal removes a goal and returns what was deleted.
func (s *Store) DeleteGoal(ctx context.Context, id string) (models.Goal, error) {
	g, err := s.GetGoal(ctx, id)
	if err != nil {
		return models.Goal{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
		return models.Goal{}, fmt.Errorf("delete goal: %w", err)
	}
	return g, nil
}

// DeleteCompletedGoals removes every completed goal.
func (s *Store) DeleteCompletedGoals(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("delete completed goals: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
		}
		return err
	}
	return tx.Commit()
}

func encodeLists(p models.Project) (string, string, error) {
	people := p.People
	if people == nil {
		people = []string{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	pj, err := json.Marshal(people)
	if err != nil {
		return "", "", fmt.Errorf("encode people: %w", err)
	}
	tj, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	return string(pj), string(tj), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
