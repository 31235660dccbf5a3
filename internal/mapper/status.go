// Package mapper translates between the client vocabulary used by the UI and
// the storage vocabulary used at the persistence boundary.
package mapper

import (
	"strconv"

	"insighthub/internal/models"
)

var (
	projectToStorage = map[models.ClientProjectStatus]models.ProjectStatus{
		models.ClientProjectCreated:    models.ProjectCreated,
		models.ClientProjectInProgress: models.ProjectInProgress,
		models.ClientProjectCompleted:  models.ProjectCompleted,
	}
	projectToClient = invert(projectToStorage)

	taskToStorage = map[models.ClientTaskStatus]models.TaskStatus{
		models.ClientTaskTodo:       models.TaskTodo,
		models.ClientTaskInProgress: models.TaskInProgress,
		models.ClientTaskDone:       models.TaskDone,
	}
	taskToClient = invert(taskToStorage)
)

// ProjectStatusToStorage maps created-now, in-progress and completed.
func ProjectStatusToStorage(s models.ClientProjectStatus) (models.ProjectStatus, error) {
	if v, ok := projectToStorage[s]; ok {
		return v, nil
	}
	return "", unknown("status", string(s))
}

// ProjectStatusToClient is the inverse of ProjectStatusToStorage.
func ProjectStatusToClient(s models.ProjectStatus) (models.ClientProjectStatus, error) {
	if v, ok := projectToClient[s]; ok {
		return v, nil
	}
	return "", unknown("status", string(s))
}

// TaskStatusToStorage maps a client task status to its bucket key.
func TaskStatusToStorage(s models.ClientTaskStatus) (models.TaskStatus, error) {
	if v, ok := taskToStorage[s]; ok {
		return v, nil
	}
	return "", unknown("status", string(s))
}

// TaskStatusToClient is the inverse of TaskStatusToStorage.
func TaskStatusToClient(s models.TaskStatus) (models.ClientTaskStatus, error) {
	if v, ok := taskToClient[s]; ok {
		return v, nil
	}
	return "", unknown("status", string(s))
}

func unknown(field, value string) error {
	return &models.ValidationError{
		Field:  field,
		Reason: "unrecognized status " + strconv.Quote(value),
		Err:    models.ErrUnknownStatus,
	}
}

func invert[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
