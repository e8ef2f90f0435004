package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/healthbootstrap/orgbootstrap/internal/rpc"
)

// PostOrganizationsBootstrap handles POST /organizations/bootstrap.
func (s *Server) PostOrganizationsBootstrap(c *gin.Context) {
	var req rpc.BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	rowID, err := s.bootstrapper.InitiateOrganizationBootstrap(c.Request.Context(), req)
	if err != nil {
		writeError(c, "bootstrap initiation failed", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"workflow_queue_id": rowID})
}
