package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DriverLoginRequest carries the loosely-specified identity fragments a
// driver presents. Nothing is individually required; the resolver decides.
type DriverLoginRequest struct {
	Name  string `json:"name" example:"José da Silva"`
	Phone string `json:"phone" example:"5511991335320"`
	TaxID string `json:"tax_id,omitempty" example:"123.456.789-09"`
	Plate string `json:"plate,omitempty" example:"ABC1D23"`
	Email string `json:"email,omitempty" example:"jose@example.com"`
}

// DriverLoginResponse represents a successful driver login
type DriverLoginResponse struct {
	AccessToken  string         `json:"access_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	Driver       DriverResponse `json:"driver"`
	CampaignID   string         `json:"campaign_id"`
	CampaignName string         `json:"campaign_name"`
}

// GraphicLoginRequest authenticates an installation partner by campaign code
// and responsible name.
type GraphicLoginRequest struct {
	CampaignCode    string `json:"campaign_code" binding:"required" example:"SPZS24"`
	ResponsibleName string `json:"responsible_name" binding:"required" example:"Gráfica Central"`
}

// GraphicLoginResponse represents a successful graphic login
type GraphicLoginResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Code         string `json:"code"`
	GraphicID    string `json:"graphic_id"`
	GraphicName  string `json:"graphic_name"`
}

// AdminLoginRequest represents the admin login payload
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse represents a successful admin login
type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
}

// SessionClaims are the JWT claims carried by every session token issued by
// this service. Exactly one of DriverID/GraphicID is set for field sessions;
// admin sessions carry only Role and Username.
type SessionClaims struct {
	Role       string `json:"role"` // driver|graphic|admin
	CampaignID string `json:"campaign_id,omitempty"`
	DriverID   string `json:"driver_id,omitempty"`
	GraphicID  string `json:"graphic_id,omitempty"`
	Username   string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// SessionInfo is the decoded, validated form of a session token.
type SessionInfo struct {
	Role       string    `json:"role"`
	CampaignID string    `json:"campaign_id,omitempty"`
	DriverID   string    `json:"driver_id,omitempty"`
	GraphicID  string    `json:"graphic_id,omitempty"`
	Username   string    `json:"username,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}
