package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
)

// GetEventsFailed handles GET /events/failed.
func (s *Server) GetEventsFailed(c *gin.Context) {
	q := eventstore.FailedEventsQuery{
		EventType:  c.Query("event_type"),
		StreamType: c.Query("stream_type"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.Limit = limit
	}
	if since := c.Query("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			q.Since = t
		}
	}

	events, err := s.events.GetFailedEvents(c.Request.Context(), q)
	if err != nil {
		writeError(c, "list failed events failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": events})
}

// PostEventsRetry handles POST /events/:id/retry.
func (s *Server) PostEventsRetry(c *gin.Context) {
	result, err := s.events.RetryFailedEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "retry failed event failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetEventsStats handles GET /events/stats.
func (s *Server) GetEventsStats(c *gin.Context) {
	stats, err := s.events.GetEventProcessingStats(c.Request.Context())
	if err != nil {
		writeError(c, "get event processing stats failed", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
