package reconcile

import (
	"math"
	"sort"

	"insighthub/internal/models"
)

// Stats summarizes projects by status.
type Stats struct {
	Total          int `json:"total" yaml:"total"`
	Completed      int `json:"completed" yaml:"completed"`
	InProgress     int `json:"inProgress" yaml:"inProgress"`
	Created        int `json:"created" yaml:"created"`
	CompletionRate int `json:"completionRate" yaml:"completionRate"`
}

// Stats counts projects per status. CompletionRate is the rounded share of
// completed projects.
func (s *State) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	st.Total = len(s.projects)
	for _, r := range s.projects {
		switch r.Project.Status {
		case models.ClientProjectCompleted:
			st.Completed++
		case models.ClientProjectInProgress:
			st.InProgress++
		case models.ClientProjectCreated:
			st.Created++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	return st
}

// Progress is the done/total ratio of a project's tasks. It is derived for
// display and is unrelated to the stored completion percentage.
type Progress struct {
	Done    int `json:"done" yaml:"done"`
	Total   int `json:"total" yaml:"total"`
	Percent int `json:"percent" yaml:"percent"`
}

// TaskProgress computes Progress for the project with id.
func (s *State) TaskProgress(id string) (Progress, error) {
	r, err := s.lookupProject(id)
	if err != nil {
		return Progress{}, err
	}
	var p Progress
	p.Total = len(r.Project.Tasks)
	for _, t := range r.Project.Tasks {
		if t.Status == models.ClientTaskDone {
			p.Done++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Done) / float64(p.Total) * 100))
	}
	return p, nil
}

// RecentProjects returns up to limit projects, newest first. A limit of
// zero or less means 5.
func (s *State) RecentProjects(limit int) []models.ProjectRecord {
	if limit <= 0 {
		limit = 5
	}
	out := s.Projects()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Project.CreatedAt.After(out[j].Project.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ProjectsByStatus filters projects by client status.
func (s *State) ProjectsByStatus(status models.ClientProjectStatus) []models.ProjectRecord {
	var out []models.ProjectRecord
	for _, r := range s.Projects() {
		if r.Project.Status == status {
			out = append(out, r)
		}
	}
	return out
}
