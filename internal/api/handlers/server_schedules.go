package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createScheduleRequest struct {
	Name string `json:"name"`
}

// PostOrganizationsSchedules handles POST /organizations/:id/schedules.
func (s *Server) PostOrganizationsSchedules(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	id, err := s.schedules.CreateScheduleTemplate(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, "create schedule template failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetOrganizationsSchedules handles GET /organizations/:id/schedules.
func (s *Server) GetOrganizationsSchedules(c *gin.Context) {
	schedules, err := s.schedules.ListScheduleTemplates(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "list schedule templates failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": schedules})
}

// PostSchedulesDeactivate handles POST /schedules/:id/deactivate.
func (s *Server) PostSchedulesDeactivate(c *gin.Context) {
	if err := s.schedules.DeactivateScheduleTemplate(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "deactivate schedule template failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
