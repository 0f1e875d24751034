package models

import (
	"time"
)

// EvidenceEntry is one submitted proof that an installation step happened:
// either a stored photo reference or a textual/numeric value. Entries are
// immutable once created; a redo is a new entry, never an update.
type EvidenceEntry struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid"`
	CampaignID string  `json:"campaign_id" gorm:"not null;index:idx_evidence_flow;type:uuid"`
	DriverID   string  `json:"driver_id" gorm:"not null;index:idx_evidence_flow;type:uuid"`
	GraphicID  *string `json:"graphic_id,omitempty" gorm:"type:uuid;index"`

	Role string `json:"role" gorm:"type:varchar(20);not null;index:idx_evidence_flow"` // driver|graphic
	Step string `json:"step" gorm:"type:varchar(50);not null"`

	FileURL *string `json:"file_url,omitempty" gorm:"type:varchar(500)"`
	Value   *string `json:"value,omitempty" gorm:"type:varchar(255)"`
	Notes   string  `json:"notes" gorm:"type:text"`
	Redo    bool    `json:"redo" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the EvidenceEntry model
func (EvidenceEntry) TableName() string {
	return "evidence_entries"
}

// SubmitEvidenceRequest represents one evidence submission.
type SubmitEvidenceRequest struct {
	Step      string  `json:"step" binding:"required" example:"photo_front"`
	PhotoData string  `json:"photo_data,omitempty"` // base64, optionally a data: URL
	Value     *string `json:"value,omitempty" example:"123456"`
	Notes     string  `json:"notes,omitempty"`
	Redo      bool    `json:"redo,omitempty"`

	// DriverID targets a known driver (graphic submissions only; driver
	// sessions are already scoped). Driver carries the candidate identity
	// when a graphic submits for a vehicle it cannot name by id.
	DriverID string         `json:"driver_id,omitempty"`
	Driver   *IdentityQuery `json:"driver,omitempty"`
}

// EvidenceResponse represents the response to an evidence submission
type EvidenceResponse struct {
	ID  string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	URL string `json:"url,omitempty" example:"/uploads/c1/driver/d1/2025-01-09/abc.jpg"`
}

// FlowStatus is the derived state of one role's flow for one driver. It is
// never persisted: it is recomputed from the evidence entries and the stored
// review on every query.
type FlowStatus struct {
	Completed     bool       `json:"completed"`
	PendingSteps  []string   `json:"pending_steps"`
	TotalUploads  int        `json:"total_uploads"`
	LastUploadAt  *time.Time `json:"last_upload_at,omitempty"`
	Verified      bool       `json:"verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	VerifiedBy    string     `json:"verified_by,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
	Locked        bool       `json:"locked"`
}

// SetVerifiedRequest represents the admin verification toggle
type SetVerifiedRequest struct {
	Role     string `json:"role" binding:"required,oneof=driver graphic" example:"driver"`
	Verified bool   `json:"verified"`
}
