package handlers

import (
	"net/http"
	"strings"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
	"github.com/rodamidia/roda-campaign-services-backend/internal/database/repository"
	"github.com/rodamidia/roda-campaign-services-backend/internal/flow"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EvidenceHandler struct {
	evidenceService *services.EvidenceService
}

func NewEvidenceHandler(db *gorm.DB, storage *services.StorageService, mirror *services.MirrorService) *EvidenceHandler {
	campaignRepo := repository.NewCampaignRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	resolver := services.NewResolverService(driverRepo)
	rows := services.NewRowService()

	evidenceService := services.NewEvidenceService(
		campaignRepo, driverRepo, evidenceRepo, resolver, rows, storage, mirror)
	return &EvidenceHandler{evidenceService: evidenceService}
}

// SubmitDriverEvidence godoc
// @Summary Submit driver evidence
// @Description Record one evidence step for the authenticated driver
// @Tags evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SubmitEvidenceRequest true "Evidence submission"
// @Success 201 {object} models.EvidenceResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/driver/evidence [post]
func (h *EvidenceHandler) SubmitDriverEvidence(c *gin.Context) {
	campaignID := c.MustGet("campaign_id").(string)
	driverID := c.MustGet("driver_id").(string)

	var req models.SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	entry, err := h.evidenceService.Record(services.RecordInput{
		CampaignID: campaignID,
		DriverID:   driverID,
		Role:       flow.RoleDriver,
		Step:       req.Step,
		PhotoData:  req.PhotoData,
		Value:      req.Value,
		Notes:      req.Notes,
		Redo:       req.Redo,
		Mobile:     isMobileClient(c),
	})
	if err != nil {
		respondEvidenceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toEvidenceResponse(entry))
}

// GetDriverStatus godoc
// @Summary Get driver flow status
// @Description Derive the completion/verification/cooldown state of the driver flow
// @Tags evidence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.FlowStatus
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/driver/status [get]
func (h *EvidenceHandler) GetDriverStatus(c *gin.Context) {
	campaignID := c.MustGet("campaign_id").(string)
	driverID := c.MustGet("driver_id").(string)

	status, err := h.evidenceService.Status(campaignID, driverID, flow.RoleDriver)
	if err != nil {
		respondEvidenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// SubmitGraphicEvidence godoc
// @Summary Submit graphic evidence
// @Description Record one evidence step for a driver on behalf of the authenticated graphic. Accepts a driver id or an inline candidate identity.
// @Tags evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SubmitEvidenceRequest true "Evidence submission"
// @Success 201 {object} models.EvidenceResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/graphic/evidence [post]
func (h *EvidenceHandler) SubmitGraphicEvidence(c *gin.Context) {
	campaignID := c.MustGet("campaign_id").(string)
	graphicID := c.MustGet("graphic_id").(string)

	var req models.SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	entry, err := h.evidenceService.Record(services.RecordInput{
		CampaignID: campaignID,
		DriverID:   req.DriverID,
		Candidate:  req.Driver,
		GraphicID:  graphicID,
		Role:       flow.RoleGraphic,
		Step:       req.Step,
		PhotoData:  req.PhotoData,
		Value:      req.Value,
		Notes:      req.Notes,
		Redo:       req.Redo,
		Mobile:     isMobileClient(c),
	})
	if err != nil {
		respondEvidenceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toEvidenceResponse(entry))
}

// GetGraphicStatus godoc
// @Summary Get graphic flow status for a driver
// @Description Derive the graphic flow status for one driver of the graphic's campaign
// @Tags evidence
// @Produce json
// @Security BearerAuth
// @Param driver_id query string true "Driver ID"
// @Success 200 {object} models.FlowStatus
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/graphic/status [get]
func (h *EvidenceHandler) GetGraphicStatus(c *gin.Context) {
	campaignID := c.MustGet("campaign_id").(string)

	driverID := c.Query("driver_id")
	if driverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "driver_id is required"})
		return
	}

	status, err := h.evidenceService.Status(campaignID, driverID, flow.RoleGraphic)
	if err != nil {
		respondEvidenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func toEvidenceResponse(entry *models.EvidenceEntry) models.EvidenceResponse {
	resp := models.EvidenceResponse{ID: entry.ID}
	if entry.FileURL != nil {
		resp.URL = *entry.FileURL
	}
	return resp
}

func respondEvidenceError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request", "details": err.Error()})
	}
}

func isMobileClient(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("User-Agent"), "Mobile")
}
