package models

import "time"

// ClientTaskStatus is the UI-facing task status vocabulary.
type ClientTaskStatus string

const (
	ClientTaskTodo       ClientTaskStatus = "todo"
	ClientTaskInProgress ClientTaskStatus = "in-progress"
	ClientTaskDone       ClientTaskStatus = "done"
)

// ClientProjectStatus is the UI-facing project status vocabulary.
type ClientProjectStatus string

const (
	ClientProjectCreated    ClientProjectStatus = "created-now"
	ClientProjectInProgress ClientProjectStatus = "in-progress"
	ClientProjectCompleted  ClientProjectStatus = "completed"
)

// ClientUser is an assignee as the UI knows it. Only Name reaches storage.
type ClientUser struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}

// ClientTask is a task in the flat list the UI renders.
type ClientTask struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Status      ClientTaskStatus `json:"status" yaml:"status"`
	Priority    Priority         `json:"priority" yaml:"priority"`
	Assignee    string           `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	CreatedAt   time.Time        `json:"createdAt" yaml:"createdAt"`
}

// ClientProject is the client form of a project.
type ClientProject struct {
	ID            string              `json:"id" yaml:"id"`
	Name          string              `json:"name" yaml:"name"`
	Description   string              `json:"description" yaml:"description"`
	AssignedUsers []ClientUser        `json:"assignedUsers" yaml:"assignedUsers"`
	Status        ClientProjectStatus `json:"status" yaml:"status"`
	Completion    int                 `json:"completion" yaml:"completion"`
	DueDate       *time.Time          `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Priority      Priority            `json:"priority" yaml:"priority"`
	Tags          []string            `json:"tags" yaml:"tags"`
	Tasks         []ClientTask        `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" yaml:"createdAt"`
}

// Clone returns a deep copy of p.
func (p ClientProject) Clone() ClientProject {
	out := p
	out.AssignedUsers = append([]ClientUser(nil), p.AssignedUsers...)
	out.Tags = append([]string(nil), p.Tags...)
	if p.Tasks != nil {
		out.Tasks = append([]ClientTask{}, p.Tasks...)
	}
	if p.DueDate != nil {
		d := *p.DueDate
		out.DueDate = &d
	}
	return out
}
