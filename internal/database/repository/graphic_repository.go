package repository

import (
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"

	"gorm.io/gorm"
)

type GraphicRepository struct {
	db *gorm.DB
}

func NewGraphicRepository(db *gorm.DB) *GraphicRepository {
	return &GraphicRepository{db: db}
}

// Create creates a new graphic
func (r *GraphicRepository) Create(graphic *models.Graphic) error {
	return r.db.Create(graphic).Error
}

// GetByID retrieves a graphic by ID
func (r *GraphicRepository) GetByID(id string) (*models.Graphic, error) {
	var graphic models.Graphic
	err := r.db.First(&graphic, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &graphic, nil
}

// GetByCampaignID retrieves all graphics registered on a campaign
func (r *GraphicRepository) GetByCampaignID(campaignID string) ([]*models.Graphic, error) {
	var graphics []*models.Graphic
	err := r.db.Where("campaign_id = ?", campaignID).Find(&graphics).Error
	return graphics, err
}
