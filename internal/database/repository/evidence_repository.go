package repository

import (
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"

	"gorm.io/gorm"
)

type EvidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Create persists a new evidence entry. Entries are append-only; there is no
// update path by design.
func (r *EvidenceRepository) Create(entry *models.EvidenceEntry) error {
	return r.db.Create(entry).Error
}

// GetByFlow retrieves all entries of one (campaign, driver, role) flow in
// submission order.
func (r *EvidenceRepository) GetByFlow(campaignID, driverID, role string) ([]models.EvidenceEntry, error) {
	var entries []models.EvidenceEntry
	err := r.db.
		Where("campaign_id = ? AND driver_id = ? AND role = ?", campaignID, driverID, role).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// GetByDriver retrieves all entries for one driver regardless of role
func (r *EvidenceRepository) GetByDriver(campaignID, driverID string) ([]models.EvidenceEntry, error) {
	var entries []models.EvidenceEntry
	err := r.db.
		Where("campaign_id = ? AND driver_id = ?", campaignID, driverID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
