package repository

import (
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"

	"gorm.io/gorm"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// Create creates a new driver
func (r *DriverRepository) Create(driver *models.Driver) error {
	return r.db.Create(driver).Error
}

// GetByID retrieves a driver by ID
func (r *DriverRepository) GetByID(id string) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.First(&driver, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// GetByCampaignID retrieves all drivers of one campaign. This is the primary
// projection the identity resolver runs its cascade over.
func (r *DriverRepository) GetByCampaignID(campaignID string) ([]*models.Driver, error) {
	var drivers []*models.Driver
	err := r.db.Where("campaign_id = ?", campaignID).Find(&drivers).Error
	return drivers, err
}

// GetAll retrieves drivers across all campaigns. This is the secondary,
// campaign-independent projection the resolver falls back to.
func (r *DriverRepository) GetAll() ([]*models.Driver, error) {
	var drivers []*models.Driver
	err := r.db.Find(&drivers).Error
	return drivers, err
}

// Update saves the whole driver record (load-mutate-save, last write wins)
func (r *DriverRepository) Update(driver *models.Driver) error {
	return r.db.Save(driver).Error
}
