package repository

import (
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.First(&campaign, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetByCode retrieves a campaign by its shareable access code
func (r *CampaignRepository) GetByCode(code string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.First(&campaign, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetAll retrieves all campaigns (admin only)
func (r *CampaignRepository) GetAll() ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.Order("created_at DESC").Find(&campaigns).Error
	return campaigns, err
}

// Update updates a campaign
func (r *CampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// CheckCodeExists checks whether a campaign code is already taken
func (r *CampaignRepository) CheckCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Campaign{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}
