package service

import (
	"context"

	"insighthub/internal/models"
	"insighthub/internal/storage"
)

// Goals implements the goal operations.
type Goals struct {
	repo storage.GoalRepository
}

func NewGoals(repo storage.GoalRepository) *Goals {
	return &Goals{repo: repo}
}

func (s *Goals) List(ctx context.Context) ([]models.Goal, error) {
	return s.repo.ListGoals(ctx)
}

func (s *Goals) Get(ctx context.Context, id string) (models.Goal, error) {
	return s.repo.GetGoal(ctx, id)
}

// Create trims the title and defaults the priority to medium.
func (s *Goals) Create(ctx context.Context, title string, priority models.Priority) (models.Goal, error) {
	g := models.NewGoal(title, priority)
	if err := g.Validate(); err != nil {
		return models.Goal{}, err
	}
	return s.repo.CreateGoal(ctx, g)
}

func (s *Goals) Update(ctx context.Context, id string, u models.GoalUpdate) (models.Goal, error) {
	current, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return models.Goal{}, err
	}
	next := u.ApplyTo(current)
	if err := next.Validate(); err != nil {
		return models.Goal{}, err
	}
	return s.repo.SaveGoal(ctx, next)
}

// Toggle flips the completed flag.
func (s *Goals) Toggle(ctx context.Context, id string) (models.Goal, error) {
	current, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return models.Goal{}, err
	}
	current.Completed = !current.Completed
	return s.repo.SaveGoal(ctx, current)
}

func (s *Goals) Delete(ctx context.Context, id string) (models.Goal, error) {
	return s.repo.DeleteGoal(ctx, id)
}

func (s *Goals) DeleteCompleted(ctx context.Context) (int64, error) {
	return s.repo.DeleteCompletedGoals(ctx)
}
