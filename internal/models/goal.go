package models

import (
	"strings"
	"time"
)

// Goal is a standalone personal to-do, not nested under a project.
type Goal struct {
	ID        string    `json:"id" bson:"_id" yaml:"id"`
	Title     string    `json:"title" bson:"title" yaml:"title"`
	Priority  Priority  `json:"priority" bson:"priority" yaml:"priority"`
	Completed bool      `json:"completed" bson:"completed" yaml:"completed"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"updatedAt"`
}

// Validate checks the title and priority of g.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return Invalid("title", "title is required")
	}
	if !g.Priority.Valid() {
		return Invalid("priority", "invalid goal priority %q", g.Priority)
	}
	return nil
}

// GoalUpdate is a partial goal update. Nil fields are left unchanged.
type GoalUpdate struct {
	Title     *string   `json:"title,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
}

// ApplyTo returns g with every present field of u applied.
func (u GoalUpdate) ApplyTo(g Goal) Goal {
	if u.Title != nil {
		g.Title = strings.TrimSpace(*u.Title)
	}
	if u.Priority != nil {
		g.Priority = *u.Priority
	}
	if u.Completed != nil {
		g.Completed = *u.Completed
	}
	return g
}

// NewGoal builds a goal with trimmed title and defaulted priority.
func NewGoal(title string, priority Priority) Goal {
	if priority == "" {
		priority = DefaultPriority
	}
	return Goal{Title: strings.TrimSpace(title), Priority: priority}
}
