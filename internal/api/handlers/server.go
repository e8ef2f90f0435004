// Package handlers implements the HTTP surface over internal/rpc. Each
// handler parses its request, calls a single internal/rpc method, and maps
// the result or error to JSON — no business logic lives here.
//
// Import Path (ADR-0016): github.com/healthbootstrap/orgbootstrap/internal/api/handlers
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/internal/api/middleware"
	apperrors "github.com/healthbootstrap/orgbootstrap/internal/pkg/errors"
	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
	"github.com/healthbootstrap/orgbootstrap/internal/rpc"
)

// Server implements every registered route handler.
type Server struct {
	pool         *pgxpool.Pool
	jwtCfg       middleware.JWTConfig
	bootstrapper *rpc.Bootstrapper
	events       *rpc.EventOps
	contacts     *rpc.ContactReader
	users        *rpc.UserMutator
	schedules    *rpc.ScheduleOps
	access       *rpc.AccessReader
	softDeleter  *rpc.SoftDeleter
}

// ServerDeps holds every dependency NewServer needs.
// ADR-0013: Manual DI, no Wire/Dig.
type ServerDeps struct {
	Pool         *pgxpool.Pool
	JWTCfg       middleware.JWTConfig
	Bootstrapper *rpc.Bootstrapper
	Events       *rpc.EventOps
	Contacts     *rpc.ContactReader
	Users        *rpc.UserMutator
	Schedules    *rpc.ScheduleOps
	Access       *rpc.AccessReader
	SoftDeleter  *rpc.SoftDeleter
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		pool:         deps.Pool,
		jwtCfg:       deps.JWTCfg,
		bootstrapper: deps.Bootstrapper,
		events:       deps.Events,
		contacts:     deps.Contacts,
		users:        deps.Users,
		schedules:    deps.Schedules,
		access:       deps.Access,
		softDeleter:  deps.SoftDeleter,
	}
}

// writeError maps an RPC error to its HTTP response: AppError carries its
// own status and code, anything else becomes a generic 500.
func writeError(c *gin.Context, logMsg string, err error) {
	if appErr, ok := apperrors.IsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, gin.H{"code": appErr.Code, "message": appErr.Message})
		return
	}
	logger.Error(logMsg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"})
}
