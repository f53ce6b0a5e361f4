package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omegabiochem/WebApp-sub000/internal/dto"
	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
	"github.com/omegabiochem/WebApp-sub000/pkg/response"
)

type reportService interface {
	Create(ctx context.Context, req dto.CreateReportRequest, actor *models.JWTClaims) (*models.Report, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Report, error)
	Permissions(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ReportPermissions, error)
	Validate(ctx context.Context, id string, req dto.ValidateReportRequest, actor *models.JWTClaims) (*workflow.Result, error)
	UpdateFields(ctx context.Context, id string, req dto.UpdateFieldsRequest, actor *models.JWTClaims) (*dto.UpdateFieldsResponse, error)
	Transition(ctx context.Context, id string, req dto.TransitionRequest, actor *models.JWTClaims) (*dto.TransitionResponse, error)
	History(ctx context.Context, id string, actor *models.JWTClaims) ([]models.StatusHistory, error)
}

// ReportHandler exposes the report lifecycle endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Create godoc
// @Summary Open a draft report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateReportRequest
	if !bindJSON(c, &req, "invalid report payload") {
		return
	}
	report, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Get godoc
// @Summary Get a report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	report, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Permissions godoc
// @Summary Editable fields, required fields and allowed next statuses for the caller
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope{data=dto.ReportPermissions}
// @Router /reports/{id}/permissions [get]
func (h *ReportHandler) Permissions(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	perms, err := h.service.Permissions(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, perms)
}

// Validate godoc
// @Summary Check required fields without saving
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.ValidateReportRequest false "Unsaved values and phase"
// @Success 200 {object} response.Envelope{data=workflow.Result}
// @Router /reports/{id}/validate [post]
func (h *ReportHandler) Validate(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.ValidateReportRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid validation payload") {
		return
	}
	result, err := h.service.Validate(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// UpdateFields godoc
// @Summary Save field values
// @Description Applies the fields the caller may write in the current status and reports the rest.
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.UpdateFieldsRequest true "Field values"
// @Success 200 {object} response.Envelope{data=dto.UpdateFieldsResponse}
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /reports/{id}/fields [patch]
func (h *ReportHandler) UpdateFields(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.UpdateFieldsRequest
	if !bindJSON(c, &req, "invalid field payload") {
		return
	}
	resp, err := h.service.UpdateFields(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Transition godoc
// @Summary Change report status
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.TransitionRequest true "Target status and optional corrections"
// @Success 200 {object} response.Envelope{data=dto.TransitionResponse}
// @Failure 409 {object} response.Envelope
// @Router /reports/{id}/status [post]
func (h *ReportHandler) Transition(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.TransitionRequest
	if !bindJSON(c, &req, "invalid transition payload") {
		return
	}
	resp, err := h.service.Transition(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// History godoc
// @Summary List status changes
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/history [get]
func (h *ReportHandler) History(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	history, err := h.service.History(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, map[string]interface{}{"count": len(history)})
}
