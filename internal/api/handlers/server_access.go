package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetOrganizationsAccess handles GET /organizations/:id/access.
func (s *Server) GetOrganizationsAccess(c *gin.Context) {
	grants, err := s.access.ListUserOrgAccess(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "list org access grants failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": grants})
}
