package models

import (
	"time"
)

// Graphic is an installation partner registered on a campaign. Login matches
// the presented responsible name against the primary responsible or either
// backup contact.
type Graphic struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CampaignID string `json:"campaign_id" gorm:"not null;index;type:uuid"`

	Name    string `json:"name" gorm:"type:varchar(255);not null"`
	NameKey string `json:"-" gorm:"type:varchar(255);index"`

	ResponsiblePhone string `json:"responsible_phone" gorm:"type:varchar(50)"`

	Backup1Name  string `json:"backup1_name" gorm:"type:varchar(255)"`
	Backup1Phone string `json:"backup1_phone" gorm:"type:varchar(50)"`
	Backup2Name  string `json:"backup2_name" gorm:"type:varchar(255)"`
	Backup2Phone string `json:"backup2_phone" gorm:"type:varchar(50)"`

	Notes string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Graphic model
func (Graphic) TableName() string {
	return "graphics"
}

// CreateGraphicRequest represents the request to register a graphic
type CreateGraphicRequest struct {
	Name             string `json:"name" binding:"required" example:"Gráfica Central"`
	ResponsiblePhone string `json:"responsible_phone,omitempty" example:"5511988887777"`
	Backup1Name      string `json:"backup1_name,omitempty"`
	Backup1Phone     string `json:"backup1_phone,omitempty"`
	Backup2Name      string `json:"backup2_name,omitempty"`
	Backup2Phone     string `json:"backup2_phone,omitempty"`
	Notes            string `json:"notes,omitempty"`
}
