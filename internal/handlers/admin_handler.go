package handlers

import (
	"net/http"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
	"github.com/rodamidia/roda-campaign-services-backend/internal/database/repository"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
	"github.com/rodamidia/roda-campaign-services-backend/internal/normalize"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services/excel"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AdminHandler struct {
	campaignRepo    *repository.CampaignRepository
	driverRepo      *repository.DriverRepository
	graphicRepo     *repository.GraphicRepository
	reviewService   *services.ReviewService
	evidenceService *services.EvidenceService
	excelService    *excel.Service
}

func NewAdminHandler(db *gorm.DB, storage *services.StorageService, mirror *services.MirrorService) *AdminHandler {
	campaignRepo := repository.NewCampaignRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	graphicRepo := repository.NewGraphicRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	resolver := services.NewResolverService(driverRepo)
	rows := services.NewRowService()

	return &AdminHandler{
		campaignRepo:  campaignRepo,
		driverRepo:    driverRepo,
		graphicRepo:   graphicRepo,
		reviewService: services.NewReviewService(campaignRepo, driverRepo, evidenceRepo, rows),
		evidenceService: services.NewEvidenceService(
			campaignRepo, driverRepo, evidenceRepo, resolver, rows, storage, mirror),
		excelService: excel.NewExcelService(campaignRepo, driverRepo, rows),
	}
}

// CreateCampaign godoc
// @Summary Create a new campaign
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCampaignRequest true "Create campaign request"
// @Success 201 {object} models.CampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns [post]
func (h *AdminHandler) CreateCampaign(c *gin.Context) {
	var req models.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	exists, err := h.campaignRepo.CheckCodeExists(req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign", "details": err.Error()})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Campaign code already exists"})
		return
	}

	campaign := &models.Campaign{
		Name:         req.Name,
		Code:         req.Code,
		Status:       "active",
		SheetHeaders: req.SheetHeaders,
	}
	if req.DriverCooldownDays != nil {
		campaign.DriverCooldownDays = *req.DriverCooldownDays
	} else {
		campaign.DriverCooldownDays = 30
	}
	if req.GraphicCooldownDays != nil {
		campaign.GraphicCooldownDays = *req.GraphicCooldownDays
	} else {
		campaign.GraphicCooldownDays = 90
	}

	if err := h.campaignRepo.Create(campaign); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toCampaignResponse(campaign))
}

// GetCampaigns godoc
// @Summary List campaigns
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CampaignResponse
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns [get]
func (h *AdminHandler) GetCampaigns(c *gin.Context) {
	campaigns, err := h.campaignRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get campaigns", "details": err.Error()})
		return
	}

	responses := make([]*models.CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		responses[i] = toCampaignResponse(campaign)
	}
	c.JSON(http.StatusOK, responses)
}

// GetCampaignByID godoc
// @Summary Get campaign by ID
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns/{id} [get]
func (h *AdminHandler) GetCampaignByID(c *gin.Context) {
	campaign, err := h.campaignRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}
	c.JSON(http.StatusOK, toCampaignResponse(campaign))
}

// UpdateCooldown godoc
// @Summary Update campaign cooldown configuration
// @Description Change the per-role cooldown days applied after verification
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.UpdateCooldownRequest true "Cooldown configuration"
// @Success 200 {object} models.CampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns/{id}/cooldown [put]
func (h *AdminHandler) UpdateCooldown(c *gin.Context) {
	var req models.UpdateCooldownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	campaign, err := h.campaignRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	if req.DriverCooldownDays != nil {
		campaign.DriverCooldownDays = *req.DriverCooldownDays
	}
	if req.GraphicCooldownDays != nil {
		campaign.GraphicCooldownDays = *req.GraphicCooldownDays
	}

	if err := h.campaignRepo.Update(campaign); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update campaign", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toCampaignResponse(campaign))
}

// CreateGraphic godoc
// @Summary Register a graphic on a campaign
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.CreateGraphicRequest true "Graphic registration"
// @Success 201 {object} models.Graphic
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns/{id}/graphics [post]
func (h *AdminHandler) CreateGraphic(c *gin.Context) {
	var req models.CreateGraphicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	campaign, err := h.campaignRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	graphic := &models.Graphic{
		CampaignID:       campaign.ID,
		Name:             req.Name,
		NameKey:          normalize.Fold(req.Name),
		ResponsiblePhone: req.ResponsiblePhone,
		Backup1Name:      req.Backup1Name,
		Backup1Phone:     req.Backup1Phone,
		Backup2Name:      req.Backup2Name,
		Backup2Phone:     req.Backup2Phone,
		Notes:            req.Notes,
	}
	if err := h.graphicRepo.Create(graphic); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create graphic", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, graphic)
}

// GetCampaignDrivers godoc
// @Summary List drivers of a campaign
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {array} models.Driver
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns/{id}/drivers [get]
func (h *AdminHandler) GetCampaignDrivers(c *gin.Context) {
	drivers, err := h.driverRepo.GetByCampaignID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get drivers", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// SetVerified godoc
// @Summary Verify or unverify a flow
// @Description Flip the verified flag of one driver's flow. Verifying requires the flow to be complete and starts the cooldown.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param driver_id path string true "Driver ID"
// @Param request body models.SetVerifiedRequest true "Verification toggle"
// @Success 200 {object} models.FlowReview
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns/{id}/drivers/{driver_id}/verify [post]
func (h *AdminHandler) SetVerified(c *gin.Context) {
	var req models.SetVerifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	reviewer := c.GetString("username")
	review, err := h.reviewService.SetVerified(
		c.Param("id"), c.Param("driver_id"), req.Role, req.Verified, reviewer)
	if err != nil {
		switch {
		case apperr.IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		case apperr.IsValidation(err):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update verification", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, review)
}

// GetDriverStatus godoc
// @Summary Get a driver's flow status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param driver_id path string true "Driver ID"
// @Param role query string false "Role (driver|graphic)" default(driver)
// @Success 200 {object} models.FlowStatus
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns/{id}/drivers/{driver_id}/status [get]
func (h *AdminHandler) GetDriverStatus(c *gin.Context) {
	role := c.DefaultQuery("role", "driver")
	status, err := h.evidenceService.Status(c.Param("id"), c.Param("driver_id"), role)
	if err != nil {
		respondEvidenceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ImportRoster godoc
// @Summary Import a campaign roster from xlsx
// @Description Detect the sheet's column layout and upsert one driver per row
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param file formData file true "Tracking sheet (xlsx)"
// @Success 200 {object} excel.ImportResult
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns/{id}/import [post]
func (h *AdminHandler) ImportRoster(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file", "details": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open file", "details": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.excelService.ImportRoster(c.Param("id"), file)
	if err != nil {
		switch {
		case apperr.IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		case apperr.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import roster", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportRoster godoc
// @Summary Export a campaign roster as xlsx
// @Description Project every driver's canonical row onto the campaign header layout
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/campaigns/{id}/export [get]
func (h *AdminHandler) ExportRoster(c *gin.Context) {
	f, filename, err := h.excelService.ExportRoster(c.Param("id"))
	if err != nil {
		if apperr.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export roster", "details": err.Error()})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		logrus.Errorf("Failed to stream roster export: %v", err)
	}
}

func toCampaignResponse(campaign *models.Campaign) *models.CampaignResponse {
	return &models.CampaignResponse{
		ID:                  campaign.ID,
		Name:                campaign.Name,
		Code:                campaign.Code,
		Status:              campaign.Status,
		DriverCooldownDays:  campaign.DriverCooldownDays,
		GraphicCooldownDays: campaign.GraphicCooldownDays,
		PeriodCount:         campaign.PeriodCount,
		SheetHeaders:        campaign.SheetHeaders,
		CreatedAt:           campaign.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:           campaign.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
