package models

import (
	"time"
)

// Driver is one vehicle/driver enrolled in a campaign. Raw identity fields
// keep whatever was captured; the *Key/*Digits columns hold the normalized
// comparison forms the resolver matches on and are recomputed whenever a raw
// field changes.
type Driver struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	CampaignID string `json:"campaign_id" gorm:"not null;index;type:uuid"`

	Name    string `json:"name" gorm:"type:varchar(255)"`
	NameKey string `json:"-" gorm:"type:varchar(255);index"`

	Phone       string `json:"phone" gorm:"type:varchar(50)"`
	PhoneDigits string `json:"-" gorm:"type:varchar(50);index"`

	TaxID       string `json:"tax_id" gorm:"type:varchar(50)"`
	TaxIDDigits string `json:"-" gorm:"type:varchar(50);index"`

	Plate    string `json:"plate" gorm:"type:varchar(20)"`
	PlateKey string `json:"-" gorm:"type:varchar(20);index"`

	Email    string `json:"email" gorm:"type:varchar(255)"`
	EmailKey string `json:"-" gorm:"type:varchar(255);index"`

	// PaymentKey is the PIX key the campaign pays out to. Stored verbatim.
	PaymentKey string `json:"payment_key" gorm:"type:varchar(255)"`

	Status string `json:"status" gorm:"type:varchar(50)"`

	// Provisional marks drivers materialized from an evidence submission that
	// matched nobody; an admin completes the record later.
	Provisional bool `json:"provisional" gorm:"default:false"`

	// RawRow is the canonical column-keyed row mirrored to tracking sheets.
	RawRow map[string]string `json:"raw_row" gorm:"type:jsonb;serializer:json"`

	// Mileage aggregates the per-period odometer readings and targets.
	Mileage *Mileage `json:"mileage,omitempty" gorm:"type:jsonb;serializer:json"`

	// EvidenceReview holds the admin review of each flow, keyed by flow
	// target ("driverFlow"/"graphicFlow").
	EvidenceReview map[string]*FlowReview `json:"evidence_review,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Driver model
func (Driver) TableName() string {
	return "drivers"
}

// Review returns the stored review for a flow target, or nil.
func (d *Driver) Review(target string) *FlowReview {
	if d.EvidenceReview == nil {
		return nil
	}
	return d.EvidenceReview[target]
}

// SetReview stores the review for a flow target.
func (d *Driver) SetReview(target string, review *FlowReview) {
	if d.EvidenceReview == nil {
		d.EvidenceReview = make(map[string]*FlowReview)
	}
	d.EvidenceReview[target] = review
}

// Mileage is the driver's per-period odometer record. Readings are cumulative
// odometer values keyed by period number (1-based); targets come from the
// tracking sheet.
type Mileage struct {
	Readings    map[int]float64 `json:"readings,omitempty"`
	Targets     map[int]float64 `json:"targets,omitempty"`
	TotalDriven float64         `json:"total_driven"`
	TotalTarget float64         `json:"total_target"`
	Source      string          `json:"source,omitempty"` // field-submission|sheet-import
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FlowReview is the persisted admin verification of one flow. An empty review
// means unverified with no cooldown.
type FlowReview struct {
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	VerifiedBy    string     `json:"verified_by,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}

// IdentityQuery is a loose set of identity fragments. Every field is
// optional; the resolver works with whatever is present.
type IdentityQuery struct {
	Name  string `json:"name,omitempty" example:"José da Silva"`
	Phone string `json:"phone,omitempty" example:"5511991335320"`
	TaxID string `json:"tax_id,omitempty" example:"123.456.789-09"`
	Plate string `json:"plate,omitempty" example:"ABC1D23"`
	Email string `json:"email,omitempty" example:"jose@example.com"`
}

// Empty reports whether the query carries no usable fragment at all.
func (q IdentityQuery) Empty() bool {
	return q.Name == "" && q.Phone == "" && q.TaxID == "" && q.Plate == "" && q.Email == ""
}

// DriverResponse is the driver projection returned by login.
type DriverResponse struct {
	ID    string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name  string `json:"name" example:"José da Silva"`
	Phone string `json:"phone" example:"5511991335320"`
}
