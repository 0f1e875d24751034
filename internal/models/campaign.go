package models

import (
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/sheet"
)

// Campaign represents one outdoor vehicle-advertising campaign.
type Campaign struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name   string `json:"name" gorm:"type:varchar(255);not null"`
	Code   string `json:"code" gorm:"type:varchar(20);not null;uniqueIndex"` // short shareable access code, immutable once assigned
	Status string `json:"status" gorm:"type:varchar(50);index;default:'active'"`

	// Days a flow stays locked after admin verification. 0 disables the lock.
	DriverCooldownDays  int `json:"driver_cooldown_days" gorm:"default:30"`
	GraphicCooldownDays int `json:"graphic_cooldown_days" gorm:"default:90"`

	// Tracking sheet layout: the header list the campaign serializes against,
	// the mirrored sheet file and the mapping detected from its header row.
	SheetHeaders []string             `json:"sheet_headers" gorm:"type:jsonb;serializer:json"`
	SheetFile    string               `json:"sheet_file" gorm:"type:varchar(500)"`
	ColumnMap    *sheet.ColumnMapping `json:"column_map,omitempty" gorm:"type:jsonb;serializer:json"`
	PeriodCount  int                  `json:"period_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// CooldownDays returns the configured cooldown for a role, in days.
func (c *Campaign) CooldownDays(role string) int {
	if role == "graphic" {
		return c.GraphicCooldownDays
	}
	return c.DriverCooldownDays
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	Name                string   `json:"name" binding:"required" example:"Frota SP Zona Sul"`
	Code                string   `json:"code" binding:"required,min=3,max=20" example:"SPZS24"`
	DriverCooldownDays  *int     `json:"driver_cooldown_days,omitempty" example:"30"`
	GraphicCooldownDays *int     `json:"graphic_cooldown_days,omitempty" example:"90"`
	SheetHeaders        []string `json:"sheet_headers,omitempty"`
}

// UpdateCooldownRequest represents the request to change a campaign's cooldown configuration
type UpdateCooldownRequest struct {
	DriverCooldownDays  *int `json:"driver_cooldown_days,omitempty" example:"15"`
	GraphicCooldownDays *int `json:"graphic_cooldown_days,omitempty" example:"60"`
}

// CampaignResponse represents the response for campaign operations
type CampaignResponse struct {
	ID                  string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name                string   `json:"name" example:"Frota SP Zona Sul"`
	Code                string   `json:"code" example:"SPZS24"`
	Status              string   `json:"status" example:"active"`
	DriverCooldownDays  int      `json:"driver_cooldown_days" example:"30"`
	GraphicCooldownDays int      `json:"graphic_cooldown_days" example:"90"`
	PeriodCount         int      `json:"period_count" example:"3"`
	SheetHeaders        []string `json:"sheet_headers,omitempty"`
	CreatedAt           string   `json:"created_at" example:"2025-01-09T10:30:00Z"`
	UpdatedAt           string   `json:"updated_at" example:"2025-01-09T10:30:00Z"`
}
