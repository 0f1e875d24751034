package models

import (
	"time"
)

// AdminUser is a reviewer account able to verify flows and manage campaigns.
type AdminUser struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"type:varchar(255);not null;unique;index"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the AdminUser model
func (AdminUser) TableName() string {
	return "admin_users"
}
