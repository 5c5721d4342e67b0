package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"workwise/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db      *sqlx.DB
	gateway port.ModelGateway
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB, gateway port.ModelGateway) *HealthHandler {
	return &HealthHandler{db: db, gateway: gateway}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The database gates readiness; the model
// gateway is reported but never fails the check, since documents can still
// be uploaded while the inference service is down.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}

	model := "unavailable"
	if h.gateway.CheckAvailability(c.Request.Context()) {
		model = "ok"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model_gateway": model})
}
