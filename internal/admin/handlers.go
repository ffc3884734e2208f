package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthCheckTimeout bounds one probe sweep so a hung upstream cannot
// stall the load balancer's health check.
const healthCheckTimeout = 5 * time.Second

// handleHealthz runs every registered checker and reports aggregate
// health. Any failing subsystem degrades the whole probe to 503.
func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	healthy, statuses := s.deps.Health.CheckAll(ctx)

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": statuses})
}

// handleReadyz reports whether the server is accepting work. Ready
// flips on once Run starts listening and off again during shutdown.
func (s *Server) handleReadyz(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// handleStatus returns a build and identity summary for operators.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":        "wdk-mcp-toolkit",
		"version":        s.deps.Version,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"wallet":         s.deps.Wallet.Address(),
		"chain_id":       s.deps.Wallet.ChainID().Int64(),
	})
}
