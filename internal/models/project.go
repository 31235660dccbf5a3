package models

import (
	"strings"
	"time"
)

// ProjectStatus is the storage-vocabulary project status.
type ProjectStatus string

const (
	ProjectCreated    ProjectStatus = "created"
	ProjectInProgress ProjectStatus = "in progress"
	ProjectCompleted  ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectCreated, ProjectInProgress, ProjectCompleted:
		return true
	}
	return false
}

// Project is the storage form of a project. It exclusively owns its tasks.
type Project struct {
	ID                  string        `json:"id" bson:"_id"`
	Title               string        `json:"title" bson:"title"`
	Description         string        `json:"description" bson:"description"`
	People              []string      `json:"people" bson:"people"`
	CompletedPercentage int           `json:"completedPercentage" bson:"completedPercentage"`
	DueDate             *time.Time    `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Status              ProjectStatus `json:"status" bson:"status"`
	Priority            Priority      `json:"priority" bson:"priority"`
	Tags                []string      `json:"tags" bson:"tags"`
	TaskDetails         TaskDetails   `json:"taskDetails" bson:"taskDetails"`
	CreatedAt           time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ApplyDefaults fills the schema defaults of a freshly created project.
func (p *Project) ApplyDefaults() {
	p.Title = strings.TrimSpace(p.Title)
	if p.Status == "" {
		p.Status = ProjectCreated
	}
	if p.Priority == "" {
		p.Priority = DefaultPriority
	}
	if p.People == nil {
		p.People = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for _, key := range Buckets {
		for i := range *p.TaskDetails.Bucket(key) {
			t := &(*p.TaskDetails.Bucket(key))[i]
			if t.Priority == "" {
				t.Priority = DefaultPriority
			}
		}
	}
	p.TaskDetails.Normalize()
}

// Validate performs structural validation only.
func (p Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return Invalid("title", "project title is required")
	}
	if !p.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "invalid project status " + string(p.Status), Err: ErrUnknownStatus}
	}
	if !p.Priority.Valid() {
		return Invalid("priority", "invalid project priority %q", p.Priority)
	}
	if p.CompletedPercentage < 0 || p.CompletedPercentage > 100 {
		return Invalid("completedPercentage", "must be between 0 and 100, got %d", p.CompletedPercentage)
	}
	return p.TaskDetails.Validate()
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	out := p
	out.People = append([]string{}, p.People...)
	out.Tags = append([]string{}, p.Tags...)
	if p.DueDate != nil {
		d := *p.DueDate
		out.DueDate = &d
	}
	out.TaskDetails = p.TaskDetails.Clone()
	return out
}

// ProjectUpdate is a partial storage-form update. TaskDetails, when set,
// replaces all three buckets. ClearDueDate removes the due date; a nil
// DueDate alone leaves it unchanged.
type ProjectUpdate struct {
	Title               *string        `json:"title,omitempty"`
	Description         *string        `json:"description,omitempty"`
	People              *[]string      `json:"people,omitempty"`
	CompletedPercentage *int           `json:"completedPercentage,omitempty"`
	DueDate             *time.Time     `json:"dueDate,omitempty"`
	ClearDueDate        bool           `json:"clearDueDate,omitempty"`
	Status              *ProjectStatus `json:"status,omitempty"`
	Priority            *Priority      `json:"priority,omitempty"`
	Tags                *[]string      `json:"tags,omitempty"`
	TaskDetails         *TaskDetails   `json:"taskDetails,omitempty"`
}

// ApplyTo copies every present field onto a clone of p, leaving buckets alone.
// Bucket replacement goes through the task engine.
func (u ProjectUpdate) ApplyTo(p Project) Project {
	out := p.Clone()
	if u.Title != nil {
		out.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		out.Description = *u.Description
	}
	if u.People != nil {
		out.People = append([]string{}, (*u.People)...)
	}
	if u.CompletedPercentage != nil {
		out.CompletedPercentage = *u.CompletedPercentage
	}
	switch {
	case u.ClearDueDate:
		out.DueDate = nil
	case u.DueDate != nil:
		d := *u.DueDate
		out.DueDate = &d
	}
	if u.Status != nil {
		out.Status = *u.Status
	}
	if u.Priority != nil {
		out.Priority = *u.Priority
	}
	if u.Tags != nil {
		out.Tags = append([]string{}, (*u.Tags)...)
	}
	return out
}
