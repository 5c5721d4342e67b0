package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workwise/internal/domain"
	"workwise/internal/export"
	"workwise/internal/service"
)

// AnalysisHandler handles analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

type requestAnalysisBody struct {
	Kind        domain.AnalysisKind `json:"kind" binding:"required"`
	ForceImages bool                `json:"force_images"`
	Wait        bool                `json:"wait"`
}

// Request handles POST /api/v1/documents/:id/analyses
func (h *AnalysisHandler) Request(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid document id")
		return
	}

	var body requestAnalysisBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	a, err := h.analysisService.Request(c.Request.Context(), &service.RequestAnalysisInput{
		OwnerID:     userID,
		DocumentID:  docID,
		Kind:        body.Kind,
		ForceImages: body.ForceImages,
		Wait:        body.Wait,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	// Synchronous runs surface model failures with a matching status; the
	// body still carries the full analysis row including the failure report.
	if body.Wait && a.Status == domain.AnalysisStatusFailed {
		c.JSON(StatusForFailureKind(a.FailureKind), APIResponse{Success: false, Data: a,
			Error: &APIError{Code: a.FailureKind, Message: a.FailureCause}})
		return
	}
	if body.Wait {
		RespondOK(c, a)
		return
	}
	RespondAccepted(c, a)
}

// ListByDocument handles GET /api/v1/documents/:id/analyses
func (h *AnalysisHandler) ListByDocument(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid document id")
		return
	}

	analyses, err := h.analysisService.ListByDocument(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, analyses)
}

// Get handles GET /api/v1/analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid analysis id")
		return
	}

	a, err := h.analysisService.GetByID(c.Request.Context(), userID, analysisID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, a)
}

// Export handles GET /api/v1/analyses/:id/export
func (h *AnalysisHandler) Export(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid analysis id")
		return
	}

	a, err := h.analysisService.GetByID(c.Request.Context(), userID, analysisID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if a.Status != domain.AnalysisStatusDone && a.Status != domain.AnalysisStatusPartial {
		HandleError(c, domain.ErrAnalysisNotDone)
		return
	}

	data, err := export.FindingsXLSX(a)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("analysis-%s-%s.xlsx", a.Kind, a.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
