package repository

import (
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"

	"gorm.io/gorm"
)

type AdminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// Create creates a new admin user
func (r *AdminUserRepository) Create(user *models.AdminUser) error {
	return r.db.Create(user).Error
}

// GetByUsername retrieves an admin user by username
func (r *AdminUserRepository) GetByUsername(username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.First(&user, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckUsernameExists checks whether an admin username is already taken
func (r *AdminUserRepository) CheckUsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.AdminUser{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
