package storage

import (
	"context"
	"fmt"
	"time"

	"insighthub/internal/models"
)

type seedTask struct {
	title, description string
	priority           models.Priority
}

type seedProject struct {
	title, description string
	people             []string
	completed          int
	due                string
	status             models.ProjectStatus
	priority           models.Priority
	tags               []string
	todo, doing, done  []seedTask
}

var sampleProjects = []seedProject{
	{
		title: "Website Redesign", description: "Revamp the landing page and improve UX.",
		people: []string{"Alice", "Bob"}, completed: 30, due: "2025-06-20",
		status: models.ProjectInProgress, priority: models.PriorityHigh, tags: []string{"design", "frontend"},
		todo:  []seedTask{{"Audit current UI", "Review existing site for usability flaws", models.PriorityMedium}},
		doing: []seedTask{{"Redesign Hero Section", "Modernize the banner and CTA", models.PriorityHigh}},
	},
	{
		title: "Mobile App Launch", description: "Prepare MVP version of our mobile app",
		people: []string{"Charlie", "Dana"}, completed: 60, due: "2025-07-15",
		status: models.ProjectInProgress, priority: models.PriorityHigh, tags: []string{"mobile", "launch"},
		doing: []seedTask{{"Integrate Firebase Auth", "User login/signup", models.PriorityHigh}},
		done:  []seedTask{{"Create UI mockups", "Figma designs completed", models.PriorityMedium}},
	},
	{
		title: "Database Optimization", description: "Improve query speed and indexing",
		people: []string{"Eva", "Frank"}, completed: 10, due: "2025-08-01",
		status: models.ProjectCreated, priority: models.PriorityMedium, tags: []string{"backend", "mongo"},
		todo: []seedTask{{"Analyze slow queries", "Use MongoDB profiler", models.PriorityHigh}},
	},
	{
		title: "Marketing Strategy Q3", description: "Plan social media and email campaigns",
		people: []string{"Grace", "Henry"}, completed: 40, due: "2025-06-30",
		status: models.ProjectInProgress, priority: models.PriorityLow, tags: []string{"marketing", "q3"},
		done: []seedTask{{"Research competitors", "Completed market analysis", models.PriorityMedium}},
	},
	{
		title: "AI Assistant Development", description: "Build GenAI-powered assistant",
		people: []string{"Ivy", "Jake"}, completed: 75, due: "2025-07-10",
		status: models.ProjectInProgress, priority: models.PriorityHigh, tags: []string{"AI", "assistant"},
		done: []seedTask{
			{"Setup OpenAI API", "Connected to GPT endpoint", models.PriorityHigh},
			{"Initial chat UI", "Built chat frontend", models.PriorityMedium},
		},
	},
	{
		title: "Server Migration", description: "Move from shared hosting to cloud",
		people: []string{"Leo", "Nina"}, completed: 90, due: "2025-05-30",
		status: models.ProjectCompleted, priority: models.PriorityMedium, tags: []string{"devops", "migration"},
		done: []seedTask{
			{"Setup AWS EC2", "Created production server", models.PriorityHigh},
			{"Migrate MongoDB", "Data ported and tested", models.PriorityMedium},
		},
	},
	{
		title: "Content Calendar July", description: "Prepare daily post schedule for July",
		people: []string{"Oscar", "Pam"}, completed: 50, due: "2025-06-25",
		status: models.ProjectInProgress, priority: models.PriorityLow, tags: []string{"content", "calendar"},
		todo:  []seedTask{{"Draft captions", "Write 30 short-form captions", models.PriorityLow}},
		doing: []seedTask{{"Design graphics", "Using Canva and Figma", models.PriorityMedium}},
	},
}

// SampleProjects builds the demo dataset with ids from newID.
func SampleProjects(newID func() string, now time.Time) []models.Project {
	out := make([]models.Project, 0, len(sampleProjects))
	for _, sp := range sampleProjects {
		due, _ := time.Parse(time.DateOnly, sp.due)
		p := models.Project{
			Title:               sp.title,
			Description:         sp.description,
			People:              append([]string{}, sp.people...),
			CompletedPercentage: sp.completed,
			DueDate:             &due,
			Status:              sp.status,
			Priority:            sp.priority,
			Tags:                append([]string{}, sp.tags...),
			TaskDetails: models.TaskDetails{
				Todo:       seedBucket(sp.todo, models.TaskTodo, newID, now),
				InProgress: seedBucket(sp.doing, models.TaskInProgress, newID, now),
				Done:       seedBucket(sp.done, models.TaskDone, newID, now),
			},
		}
		p.ApplyDefaults()
		out = append(out, p)
	}
	return out
}

func seedBucket(tasks []seedTask, status models.TaskStatus, newID func() string, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, st := range tasks {
		out = append(out, models.Task{
			ID:          newID(),
			Title:       st.title,
			Description: st.description,
			Status:      status,
			Priority:    st.priority,
			CreatedAt:   now,
		})
	}
	return out
}

// Seed inserts the sample projects when the store holds none. It reports how
// many projects were inserted.
func Seed(ctx context.Context, s Store) (int, error) {
	existing, err := s.ListProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("check existing projects: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	n := 0
	for _, p := range SampleProjects(s.NewID, time.Now().UTC()) {
		if _, err := s.CreateProject(ctx, p); err != nil {
			return n, fmt.Errorf("seed %q: %w", p.Title, err)
		}
		n++
	}
	return n, nil
}
