package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insighthub/internal/models"
)

// Task handlers answer with the whole project so clients can replace their
// copy in one step.

func (s *Server) handleCreateTask(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := s.projects.CreateTask(c.Request.Context(), projectID, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"project": project})
}

// handleUpdateTask moves and/or edits a task. Absent fields are left alone.
func (s *Server) handleUpdateTask(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	var req models.TaskUpdates
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := s.projects.UpdateTask(c.Request.Context(), projectID, taskID, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project": project})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	project, err := s.projects.DeleteTask(c.Request.Context(), projectID, taskID)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project": project})
}
