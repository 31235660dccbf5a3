package mapper

import (
	"fmt"
	"strings"

	"insighthub/internal/models"
)

// ProjectToStorage converts a client project into the storage form. The flat
// task list is partitioned into buckets by each task's status.
func ProjectToStorage(cp models.ClientProject) (models.Project, error) {
	status, err := ProjectStatusToStorage(cp.Status)
	if err != nil {
		return models.Project{}, err
	}
	details, err := TasksToBuckets(cp.Tasks)
	if err != nil {
		return models.Project{}, err
	}

	p := models.Project{
		ID:                  cp.ID,
		Title:               cp.Name,
		Description:         cp.Description,
		People:              peopleNames(cp.AssignedUsers),
		CompletedPercentage: cp.Completion,
		Status:              status,
		Priority:            cp.Priority,
		Tags:                append([]string{}, cp.Tags...),
		TaskDetails:         details,
		CreatedAt:           cp.CreatedAt,
	}
	if cp.DueDate != nil {
		d := *cp.DueDate
		p.DueDate = &d
	}
	return p, nil
}

// ProjectToClient converts a stored project into the client form. Buckets are
// flattened in todo, inProgress, done order.
func ProjectToClient(p models.Project) (models.ClientProject, error) {
	status, err := ProjectStatusToClient(p.Status)
	if err != nil {
		return models.ClientProject{}, err
	}
	tasks, err := BucketsToTasks(p.TaskDetails)
	if err != nil {
		return models.ClientProject{}, err
	}

	users := make([]models.ClientUser, 0, len(p.People))
	for _, name := range p.People {
		users = append(users, models.ClientUser{Name: name})
	}

	cp := models.ClientProject{
		ID:            p.ID,
		Name:          p.Title,
		Description:   p.Description,
		AssignedUsers: users,
		Status:        status,
		Completion:    p.CompletedPercentage,
		Priority:      p.Priority,
		Tags:          append([]string{}, p.Tags...),
		Tasks:         tasks,
		CreatedAt:     p.CreatedAt,
	}
	if p.DueDate != nil {
		d := *p.DueDate
		cp.DueDate = &d
	}
	return cp, nil
}

// ProjectsToClient converts a list, failing on the first unmappable project.
func ProjectsToClient(ps []models.Project) ([]models.ClientProject, error) {
	out := make([]models.ClientProject, 0, len(ps))
	for _, p := range ps {
		cp, err := ProjectToClient(p)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", p.ID, err)
		}
		out = append(out, cp)
	}
	return out, nil
}

// UpdateToStorage builds a full-replacement update from a client project.
// TaskDetails is only set when the client project carries a task list. A
// missing due date clears the stored one.
func UpdateToStorage(cp models.ClientProject) (models.ProjectUpdate, error) {
	p, err := ProjectToStorage(cp)
	if err != nil {
		return models.ProjectUpdate{}, err
	}
	u := models.ProjectUpdate{
		Title:               &p.Title,
		Description:         &p.Description,
		People:              &p.People,
		CompletedPercentage: &p.CompletedPercentage,
		DueDate:             p.DueDate,
		ClearDueDate:        p.DueDate == nil,
		Status:              &p.Status,
		Tags:                &p.Tags,
	}
	if p.Priority != "" {
		u.Priority = &p.Priority
	}
	if cp.Tasks != nil {
		u.TaskDetails = &p.TaskDetails
	}
	return u, nil
}

// TasksToBuckets partitions a flat client task list into storage buckets.
func TasksToBuckets(tasks []models.ClientTask) (models.TaskDetails, error) {
	var d models.TaskDetails
	d.Normalize()
	for _, ct := range tasks {
		key, err := TaskStatusToStorage(ct.Status)
		if err != nil {
			return models.TaskDetails{}, err
		}
		bucket := d.Bucket(key)
		*bucket = append(*bucket, models.Task{
			ID:          ct.ID,
			Title:       ct.Title,
			Description: ct.Description,
			Status:      key,
			Priority:    ct.Priority,
			Assignee:    ct.Assignee,
			CreatedAt:   ct.CreatedAt,
		})
	}
	return d, nil
}

// BucketsToTasks flattens storage buckets into a client task list.
func BucketsToTasks(d models.TaskDetails) ([]models.ClientTask, error) {
	out := make([]models.ClientTask, 0, d.Len())
	for _, key := range models.Buckets {
		for _, t := range *d.Bucket(key) {
			status, err := TaskStatusToClient(key)
			if err != nil {
				return nil, err
			}
			out = append(out, models.ClientTask{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Status:      status,
				Priority:    t.Priority,
				Assignee:    t.Assignee,
				CreatedAt:   t.CreatedAt,
			})
		}
	}
	return out, nil
}

func peopleNames(users []models.ClientUser) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		if n := strings.TrimSpace(u.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}
