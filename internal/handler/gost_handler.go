package handler

import (
	"github.com/gin-gonic/gin"

	"workwise/internal/port"
)

// GOSTHandler serves the GOST standard catalog.
type GOSTHandler struct {
	gostRepo port.GOSTRepository
}

// NewGOSTHandler creates a new GOSTHandler.
func NewGOSTHandler(gostRepo port.GOSTRepository) *GOSTHandler {
	return &GOSTHandler{gostRepo: gostRepo}
}

// List handles GET /api/v1/gosts
func (h *GOSTHandler) List(c *gin.Context) {
	gosts, err := h.gostRepo.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gosts)
}
