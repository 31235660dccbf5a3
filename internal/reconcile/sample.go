package reconcile

import (
	"time"

	"insighthub/internal/models"
)

// SampleUsers is the fixed team the sample dataset assigns from.
var SampleUsers = []models.ClientUser{
	{ID: "1", Name: "Rafael Davis", Email: "rafael.davis@company.com", Role: "Project Manager"},
	{ID: "2", Name: "Sarah Johnson", Email: "sarah.johnson@company.com", Role: "UI/UX Designer"},
	{ID: "3", Name: "Mike Chen", Email: "mike.chen@company.com", Role: "Frontend Developer"},
	{ID: "4", Name: "Emma Wilson", Email: "emma.wilson@company.com", Role: "Backend Developer"},
	{ID: "5", Name: "Alex Brown", Email: "alex.brown@company.com", Role: "DevOps Engineer"},
	{ID: "6", Name: "Lisa Garcia", Email: "lisa.garcia@company.com", Role: "QA Engineer"},
	{ID: "7", Name: "Tom Anderson", Email: "tom.anderson@company.com", Role: "Data Analyst"},
	{ID: "8", Name: "Jessica Lee", Email: "jessica.lee@company.com", Role: "Product Owner"},
}

func users(idx ...int) []models.ClientUser {
	out := make([]models.ClientUser, 0, len(idx))
	for _, i := range idx {
		out = append(out, SampleUsers[i])
	}
	return out
}

func date(s string) *time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return &t
}

// SampleProjects is the dataset shown when neither the server nor the cache
// can provide projects. The records are LocalOnly.
func SampleProjects(now time.Time) []models.ProjectRecord {
	projects := []models.ClientProject{
		{
			ID:            LocalIDPrefix + "sample-1",
			Name:          "Banking App Redesign",
			Description:   "Complete redesign of the mobile banking application with new UI/UX",
			AssignedUsers: users(1, 2, 0),
			Status:        models.ClientProjectInProgress,
			Completion:    67,
			DueDate:       date("2025-02-15"),
			Priority:      models.PriorityHigh,
			Tags:          []string{"Design", "Mobile", "Banking"},
		},
		{
			ID:            LocalIDPrefix + "sample-2",
			Name:          "E-commerce Platform",
			Description:   "Development of a new e-commerce platform with modern features",
			AssignedUsers: users(3, 4),
			Status:        models.ClientProjectCreated,
			Completion:    0,
			DueDate:       date("2025-03-01"),
			Priority:      models.PriorityMedium,
			Tags:          []string{"Development", "E-commerce"},
		},
		{
			ID:            LocalIDPrefix + "sample-3",
			Name:          "Marketing Website",
			Description:   "New marketing website for product launch",
			AssignedUsers: users(5, 6, 7, 1),
			Status:        models.ClientProjectCompleted,
			Completion:    100,
			DueDate:       date("2025-01-20"),
			Priority:      models.PriorityLow,
			Tags:          []string{"Marketing", "Website"},
		},
	}

	out := make([]models.ProjectRecord, len(projects))
	for i, p := range projects {
		p.CreatedAt = now
		out[i] = models.ProjectRecord{Project: p, Durability: models.LocalOnly}
	}
	return out
}
