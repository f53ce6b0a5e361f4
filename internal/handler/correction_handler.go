package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omegabiochem/WebApp-sub000/internal/dto"
	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/pkg/response"
)

type correctionService interface {
	Create(ctx context.Context, reportID string, req dto.CreateCorrectionsRequest, actor *models.JWTClaims) ([]models.Correction, error)
	List(ctx context.Context, reportID string, actor *models.JWTClaims) ([]models.Correction, error)
	Resolve(ctx context.Context, reportID, correctionID string, req dto.ResolveCorrectionRequest, actor *models.JWTClaims) (*models.Correction, error)
}

// CorrectionHandler exposes the per-report correction ledger.
type CorrectionHandler struct {
	service correctionService
}

// NewCorrectionHandler constructs the handler.
func NewCorrectionHandler(service correctionService) *CorrectionHandler {
	return &CorrectionHandler{service: service}
}

// Create godoc
// @Summary Flag fields for correction
// @Tags Corrections
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.CreateCorrectionsRequest true "Correction items"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{id}/corrections [post]
func (h *CorrectionHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateCorrectionsRequest
	if !bindJSON(c, &req, "invalid corrections payload") {
		return
	}
	items, err := h.service.Create(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, items)
}

// List godoc
// @Summary List correction items
// @Tags Corrections
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/corrections [get]
func (h *CorrectionHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	items, err := h.service.List(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	open := 0
	for _, item := range items {
		if item.Status == models.CorrectionStatusOpen {
			open++
		}
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items), "open": open})
}

// Resolve godoc
// @Summary Resolve a correction item
// @Tags Corrections
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param correctionId path string true "Correction ID"
// @Param payload body dto.ResolveCorrectionRequest false "Resolution note"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/{id}/corrections/{correctionId}/resolve [patch]
func (h *CorrectionHandler) Resolve(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.ResolveCorrectionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid resolve payload") {
		return
	}
	item, err := h.service.Resolve(c.Request.Context(), c.Param("id"), c.Param("correctionId"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}
