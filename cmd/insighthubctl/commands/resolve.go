package commands

import (
	"fmt"
	"strings"
	"time"

	"insighthub/internal/models"
	"insighthub/internal/reconcile"
)

// Identifiers may be abbreviated to any unique prefix.

func resolveProject(s *reconcile.State, ref string) (models.ProjectRecord, error) {
	var matches []models.ProjectRecord
	for _, r := range s.Projects() {
		if r.Project.ID == ref {
			return r, nil
		}
		if strings.HasPrefix(r.Project.ID, ref) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return models.ProjectRecord{}, models.NotFound("project", ref)
	case 1:
		return matches[0], nil
	}
	return models.ProjectRecord{}, models.Invalid("id", "%q matches %d projects", ref, len(matches))
}

func resolveTask(r models.ProjectRecord, ref string) (models.ClientTask, error) {
	var matches []models.ClientTask
	for _, t := range r.Project.Tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.ClientTask{}, models.NotFound("task", ref)
	case 1:
		return matches[0], nil
	}
	return models.ClientTask{}, models.Invalid("id", "%q matches %d tasks", ref, len(matches))
}

func resolveGoal(s *reconcile.State, ref string) (models.GoalRecord, error) {
	var matches []models.GoalRecord
	for _, r := range s.Goals() {
		if r.Goal.ID == ref {
			return r, nil
		}
		if strings.HasPrefix(r.Goal.ID, ref) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return models.GoalRecord{}, models.NotFound("goal", ref)
	case 1:
		return matches[0], nil
	}
	return models.GoalRecord{}, models.Invalid("id", "%q matches %d goals", ref, len(matches))
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, models.Invalid("due", "expected YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

// users turns names into assignees, filling in the known team members.
func users(names []string) []models.ClientUser {
	out := make([]models.ClientUser, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		u := models.ClientUser{Name: n}
		for _, known := range reconcile.SampleUsers {
			if strings.EqualFold(known.Name, n) {
				u = known
				break
			}
		}
		out = append(out, u)
	}
	return out
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
