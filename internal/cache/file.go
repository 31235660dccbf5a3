package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"insighthub/internal/models"
)

const (
	projectsFile = "projects.yaml"
	goalsFile    = "goals.yaml"
)

type projectsDoc struct {
	SavedAt  time.Time              `yaml:"savedAt"`
	Projects []models.ProjectRecord `yaml:"projects"`
}

type goalsDoc struct {
	SavedAt time.Time           `yaml:"savedAt"`
	Goals   []models.GoalRecord `yaml:"goals"`
}

// File stores snapshots as YAML documents in a directory. Writes go to a
// temporary file that is renamed into place.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile returns a file cache rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) LoadProjects(context.Context) ([]models.ProjectRecord, error) {
	var doc projectsDoc
	if err := f.read(projectsFile, &doc); err != nil {
		return nil, err
	}
	if doc.Projects == nil {
		doc.Projects = []models.ProjectRecord{}
	}
	return doc.Projects, nil
}

func (f *File) StoreProjects(_ context.Context, records []models.ProjectRecord) error {
	if records == nil {
		records = []models.ProjectRecord{}
	}
	return f.write(projectsFile, projectsDoc{SavedAt: time.Now().UTC(), Projects: records})
}

func (f *File) LoadGoals(context.Context) ([]models.GoalRecord, error) {
	var doc goalsDoc
	if err := f.read(goalsFile, &doc); err != nil {
		return nil, err
	}
	if doc.Goals == nil {
		doc.Goals = []models.GoalRecord{}
	}
	return doc.Goals, nil
}

func (f *File) StoreGoals(_ context.Context, records []models.GoalRecord) error {
	if records == nil {
		records = []models.GoalRecord{}
	}
	return f.write(goalsFile, goalsDoc{SavedAt: time.Now().UTC(), Goals: records})
}

func (f *File) read(name string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (f *File) write(name string, doc any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), filepath.Join(f.dir, name))
}
