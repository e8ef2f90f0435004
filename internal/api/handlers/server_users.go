package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addUserPhoneRequest struct {
	Number    string `json:"number"`
	Extension string `json:"extension"`
}

// PostUsersPhones handles POST /users/me/phones.
func (s *Server) PostUsersPhones(c *gin.Context) {
	var req addUserPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	id, err := s.users.AddUserPhone(c.Request.Context(), req.Number, req.Extension)
	if err != nil {
		writeError(c, "add user phone failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type switchOrganizationRequest struct {
	OrganizationID string `json:"organization_id"`
}

// PostUsersSwitchOrganization handles POST /users/me/switch-organization.
func (s *Server) PostUsersSwitchOrganization(c *gin.Context) {
	var req switchOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	if err := s.users.SwitchOrganization(c.Request.Context(), req.OrganizationID); err != nil {
		writeError(c, "switch organization failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
