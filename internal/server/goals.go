package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insighthub/internal/models"
)

type goalRequest struct {
	Title    string          `json:"title"`
	Priority models.Priority `json:"priority"`
}

func (s *Server) handleListGoals(c *gin.Context) {
	goals, err := s.goals.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"goals": goals})
}

func (s *Server) handleGetGoal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	goal, err := s.goals.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"goal": goal})
}

func (s *Server) handleCreateGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	goal, err := s.goals.Create(c.Request.Context(), req.Title, req.Priority)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"goal": goal})
}

func (s *Server) handleUpdateGoal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.GoalUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	goal, err := s.goals.Update(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"goal": goal})
}

// handleToggleGoal flips the completed flag.
func (s *Server) handleToggleGoal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	goal, err := s.goals.Toggle(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"goal": goal})
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	goal, err := s.goals.Delete(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"goal": goal})
}

func (s *Server) handleDeleteCompletedGoals(c *gin.Context) {
	n, err := s.goals.DeleteCompleted(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deletedCount": n})
}
