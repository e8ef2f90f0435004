package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetOrganizationsContacts handles GET /organizations/:id/contacts.
func (s *Server) GetOrganizationsContacts(c *gin.Context) {
	contacts, err := s.contacts.GetContactsByOrg(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "list organization contacts failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": contacts})
}

// GetContactsByPhone handles GET /contacts?phone=....
func (s *Server) GetContactsByPhone(c *gin.Context) {
	number := c.Query("phone")
	if number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "phone query parameter is required"})
		return
	}

	contacts, err := s.contacts.FindContactsByPhone(c.Request.Context(), number)
	if err != nil {
		writeError(c, "find contacts by phone failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": contacts})
}
