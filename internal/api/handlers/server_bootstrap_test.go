package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPostOrganizationsBootstrap_InvalidJSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/organizations/bootstrap", strings.NewReader("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	s := &Server{}
	s.PostOrganizationsBootstrap(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostUsersPhones_InvalidJSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/users/me/phones", strings.NewReader("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	s := &Server{}
	s.PostUsersPhones(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostUsersSwitchOrganization_InvalidJSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/users/me/switch-organization", strings.NewReader("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	s := &Server{}
	s.PostUsersSwitchOrganization(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
