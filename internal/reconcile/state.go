// Package reconcile owns the client's view of projects and goals. Every
// mutation goes through the persistence gateway; when the gateway reports a
// PersistenceError the mutation is applied locally instead and the record is
// tagged LocalOnly. Nothing is queued or retried: the next successful Load
// replaces local state with the server's.
package reconcile

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"insighthub/internal/cache"
	"insighthub/internal/engine"
	"insighthub/internal/gateway"
	"insighthub/internal/mapper"
	"insighthub/internal/models"
)

// Source tells where Load got its data from.
type Source string

const (
	SourceServer Source = "server"
	SourceCache  Source = "cache"
	SourceSample Source = "sample"
	SourceEmpty  Source = "empty"
)

// LocalIDPrefix marks identifiers minted by fallback creates.
const LocalIDPrefix = "local-"

// State is the client application state. It is safe for concurrent use;
// gateway calls run without holding the lock.
type State struct {
	mu       sync.RWMutex
	projects []models.ProjectRecord
	goals    []models.GoalRecord

	gw     gateway.Gateway
	cache  cache.Cache
	engine *engine.Engine
	log    logrus.FieldLogger
	now    func() time.Time
}

// Option configures a State.
type Option func(*State)

// WithCache sets the snapshot cache. Without one, snapshots go to memory.
func WithCache(c cache.Cache) Option {
	return func(s *State) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *State) { s.log = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// New returns an empty State backed by gw.
func New(gw gateway.Gateway, opts ...Option) *State {
	s := &State{
		gw:       gw,
		projects: []models.ProjectRecord{},
		goals:    []models.GoalRecord{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	s.engine = engine.New(newLocalID)
	s.engine.Now = s.now
	return s
}

func newLocalID() string { return LocalIDPrefix + uuid.NewString() }

// serverKnown reports whether the server can have seen every id. Records that
// merely fell back to LocalOnly keep their server ids and still go through
// the gateway.
func serverKnown(ids ...string) bool {
	for _, id := range ids {
		if strings.HasPrefix(id, LocalIDPrefix) {
			return false
		}
	}
	return true
}

// Load fetches all projects. On failure it falls back to the cached
// snapshot, then to the built-in sample dataset.
func (s *State) Load(ctx context.Context) (Source, error) {
	stored, err := s.gw.ListProjects(ctx)
	if err == nil {
		clients, mapErr := mapper.ProjectsToClient(stored)
		if mapErr != nil {
			return "", mapErr
		}
		records := make([]models.ProjectRecord, len(clients))
		for i, cp := range clients {
			records[i] = models.ProjectRecord{Project: cp, Durability: models.Persisted}
		}
		s.mu.Lock()
		s.projects = records
		s.mu.Unlock()
		s.saveProjects(ctx)
		return SourceServer, nil
	}

	s.log.WithError(err).Warn("could not fetch projects, using local data")

	cached, cacheErr := s.cache.LoadProjects(ctx)
	if cacheErr == nil {
		s.mu.Lock()
		s.projects = cached
		s.mu.Unlock()
		return SourceCache, nil
	}
	if !errors.Is(cacheErr, cache.ErrMiss) {
		s.log.WithError(cacheErr).Warn("project cache unreadable")
	}

	s.mu.Lock()
	s.projects = SampleProjects(s.now())
	s.mu.Unlock()
	s.saveProjects(ctx)
	return SourceSample, nil
}

// LoadGoals fetches all goals, falling back to the cached snapshot. There is
// no sample goal dataset.
func (s *State) LoadGoals(ctx context.Context) (Source, error) {
	goals, err := s.gw.ListGoals(ctx)
	if err == nil {
		records := make([]models.GoalRecord, len(goals))
		for i, g := range goals {
			records[i] = models.GoalRecord{Goal: g, Durability: models.Persisted}
		}
		s.mu.Lock()
		s.goals = records
		s.mu.Unlock()
		s.saveGoals(ctx)
		return SourceServer, nil
	}

	s.log.WithError(err).Warn("could not fetch goals, using local data")

	cached, cacheErr := s.cache.LoadGoals(ctx)
	if cacheErr == nil {
		s.mu.Lock()
		s.goals = cached
		s.mu.Unlock()
		return SourceCache, nil
	}
	if !errors.Is(cacheErr, cache.ErrMiss) {
		s.log.WithError(cacheErr).Warn("goal cache unreadable")
	}

	s.mu.Lock()
	s.goals = []models.GoalRecord{}
	s.mu.Unlock()
	return SourceEmpty, nil
}

// saveProjects writes the project snapshot. Failures are logged only.
func (s *State) saveProjects(ctx context.Context) {
	s.mu.RLock()
	snapshot := cloneRecords(s.projects)
	s.mu.RUnlock()

	if err := s.cache.StoreProjects(ctx, snapshot); err != nil {
		s.log.WithError(err).Warn("could not write project cache")
	}
}

func (s *State) saveGoals(ctx context.Context) {
	s.mu.RLock()
	snapshot := append([]models.GoalRecord{}, s.goals...)
	s.mu.RUnlock()

	if err := s.cache.StoreGoals(ctx, snapshot); err != nil {
		s.log.WithError(err).Warn("could not write goal cache")
	}
}

func cloneRecords(in []models.ProjectRecord) []models.ProjectRecord {
	out := make([]models.ProjectRecord, len(in))
	for i, r := range in {
		out[i] = models.ProjectRecord{Project: r.Project.Clone(), Durability: r.Durability}
	}
	return out
}

// fallback reports whether err should trigger a local-only mutation.
func (s *State) fallback(op string, err error, fields logrus.Fields) bool {
	if !models.IsPersistence(err) {
		return false
	}
	s.log.WithFields(fields).WithField("op", op).WithError(err).Warn("persistence failed, applying change locally")
	return true
}
