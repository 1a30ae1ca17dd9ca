package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"landledger.io/registry/internal/pkg/logger"
)

// Health is the body of the health endpoints.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// GetLiveness handles GET /health/live.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, Health{Status: "ok"})
}

// GetReadiness handles GET /health/ready by pinging the store.
func (s *Server) GetReadiness(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		logger.FromContext(c.Request.Context()).Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, Health{
			Status: "degraded",
			Checks: map[string]string{"storage": "error"},
		})
		return
	}
	c.JSON(http.StatusOK, Health{
		Status: "ok",
		Checks: map[string]string{"storage": "ok"},
	})
}
