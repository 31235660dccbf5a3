package reconcile

import (
	"context"

	"github.com/sirupsen/logrus"

	"insighthub/internal/models"
)

// Goals returns a copy of every goal record, newest first.
func (s *State) Goals() []models.GoalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.GoalRecord{}, s.goals...)
}

// Goal returns the record with id.
func (s *State) Goal(id string) (models.GoalRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.goals {
		if r.Goal.ID == id {
			return r, true
		}
	}
	return models.GoalRecord{}, false
}

func (s *State) lookupGoal(id string) (models.GoalRecord, error) {
	r, ok := s.Goal(id)
	if !ok {
		return models.GoalRecord{}, models.NotFound("goal", id)
	}
	return r, nil
}

// CreateGoal adds a goal at the front of the list.
func (s *State) CreateGoal(ctx context.Context, title string, priority models.Priority) (models.GoalRecord, error) {
	g := models.NewGoal(title, priority)
	if err := g.Validate(); err != nil {
		return models.GoalRecord{}, err
	}

	var rec models.GoalRecord
	saved, err := s.gw.CreateGoal(ctx, g.Title, g.Priority)
	switch {
	case err == nil:
		rec = models.GoalRecord{Goal: saved, Durability: models.Persisted}
	case s.fallback("create goal", err, logrus.Fields{"title": g.Title}):
		now := s.now()
		g.ID = newLocalID()
		g.CreatedAt = now
		g.UpdatedAt = now
		rec = models.GoalRecord{Goal: g, Durability: models.LocalOnly}
	default:
		return models.GoalRecord{}, err
	}

	s.mu.Lock()
	s.goals = append([]models.GoalRecord{rec}, s.goals...)
	s.mu.Unlock()
	s.saveGoals(ctx)
	return rec, nil
}

// UpdateGoal applies the present fields of u.
func (s *State) UpdateGoal(ctx context.Context, id string, u models.GoalUpdate) (models.GoalRecord, error) {
	current, err := s.lookupGoal(id)
	if err != nil {
		return models.GoalRecord{}, err
	}
	next := u.ApplyTo(current.Goal)
	if err := next.Validate(); err != nil {
		return models.GoalRecord{}, err
	}
	return s.mutateGoal(ctx, "update goal", current, next, func() (models.Goal, error) {
		return s.gw.UpdateGoal(ctx, id, u)
	})
}

// ToggleGoal flips the completed flag.
func (s *State) ToggleGoal(ctx context.Context, id string) (models.GoalRecord, error) {
	current, err := s.lookupGoal(id)
	if err != nil {
		return models.GoalRecord{}, err
	}
	next := current.Goal
	next.Completed = !next.Completed
	return s.mutateGoal(ctx, "toggle goal", current, next, func() (models.Goal, error) {
		return s.gw.ToggleGoal(ctx, id)
	})
}

func (s *State) mutateGoal(ctx context.Context, op string, current models.GoalRecord, next models.Goal, remote func() (models.Goal, error)) (models.GoalRecord, error) {
	next.UpdatedAt = s.now()
	rec := models.GoalRecord{Goal: next, Durability: models.LocalOnly}

	if serverKnown(current.Goal.ID) {
		saved, err := remote()
		switch {
		case err == nil:
			rec = models.GoalRecord{Goal: saved, Durability: models.Persisted}
		case s.fallback(op, err, logrus.Fields{"goal": current.Goal.ID}):
		default:
			return models.GoalRecord{}, err
		}
	}

	s.mu.Lock()
	for i, r := range s.goals {
		if r.Goal.ID == current.Goal.ID {
			s.goals[i] = rec
			break
		}
	}
	s.mu.Unlock()
	s.saveGoals(ctx)
	return rec, nil
}

// DeleteGoal removes a goal and returns the removed record.
func (s *State) DeleteGoal(ctx context.Context, id string) (models.GoalRecord, error) {
	current, err := s.lookupGoal(id)
	if err != nil {
		return models.GoalRecord{}, err
	}

	if serverKnown(id) {
		if _, err := s.gw.DeleteGoal(ctx, id); err != nil && !s.fallback("delete goal", err, logrus.Fields{"goal": id}) {
			return models.GoalRecord{}, err
		}
	}

	s.mu.Lock()
	for i, r := range s.goals {
		if r.Goal.ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.saveGoals(ctx)
	return current, nil
}

// DeleteCompletedGoals removes every completed goal and reports how many
// records left the local list.
func (s *State) DeleteCompletedGoals(ctx context.Context) (int64, error) {
	if _, err := s.gw.DeleteCompletedGoals(ctx); err != nil && !s.fallback("delete completed goals", err, nil) {
		return 0, err
	}

	s.mu.Lock()
	kept := make([]models.GoalRecord, 0, len(s.goals))
	for _, r := range s.goals {
		if !r.Goal.Completed {
			kept = append(kept, r)
		}
	}
	removed := int64(len(s.goals) - len(kept))
	s.goals = kept
	s.mu.Unlock()
	s.saveGoals(ctx)
	return removed, nil
}
