package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
	"github.com/rodamidia/roda-campaign-services-backend/internal/database/repository"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
	"github.com/rodamidia/roda-campaign-services-backend/internal/normalize"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService issues and validates the opaque session tokens that authorize
// calls into the evidence engine. Driver and graphic logins resolve loose
// identity fragments; failures are deliberately generic so a caller can
// never probe which field mismatched.
type AuthService struct {
	campaignRepo  *repository.CampaignRepository
	driverRepo    *repository.DriverRepository
	graphicRepo   *repository.GraphicRepository
	adminUserRepo *repository.AdminUserRepository
	resolver      *services.ResolverService
	jwtSecret     []byte
	sessionTTL    time.Duration
}

func NewAuthService(db *gorm.DB) *AuthService {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		jwtSecret = []byte("default-secret-key-change-in-production")
	}

	sessionTTL := 12 * time.Hour
	if ttl := os.Getenv("SESSION_TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			sessionTTL = parsed
		}
	}

	driverRepo := repository.NewDriverRepository(db)

	return &AuthService{
		campaignRepo:  repository.NewCampaignRepository(db),
		driverRepo:    driverRepo,
		graphicRepo:   repository.NewGraphicRepository(db),
		adminUserRepo: repository.NewAdminUserRepository(db),
		resolver:      services.NewResolverService(driverRepo),
		jwtSecret:     jwtSecret,
		sessionTTL:    sessionTTL,
	}
}

// DriverLogin resolves the presented identity fragments into exactly one
// driver and issues a session scoped to that driver's campaign. Any failure
// is a generic not-found.
func (s *AuthService) DriverLogin(req *models.DriverLoginRequest) (*models.DriverLoginResponse, error) {
	q := models.IdentityQuery{
		Name:  req.Name,
		Phone: req.Phone,
		TaxID: req.TaxID,
		Plate: req.Plate,
		Email: req.Email,
	}

	driver, err := s.resolver.Resolve("", q)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve driver: %w", err)
	}
	if driver == nil {
		return nil, fmt.Errorf("%w: driver", apperr.ErrNotFound)
	}

	campaign, err := s.campaignRepo.GetByID(driver.CampaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: campaign", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	// Contact fields are completed at first login.
	if services.ApplyIdentity(driver, q) {
		if err := s.driverRepo.Update(driver); err != nil {
			logrus.Warnf("Failed to complete driver %s identity fields: %v", driver.ID, err)
		}
	}

	token, expiresIn, err := s.issueToken(models.SessionClaims{
		Role:       "driver",
		CampaignID: campaign.ID,
		DriverID:   driver.ID,
	})
	if err != nil {
		return nil, err
	}

	return &models.DriverLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Driver: models.DriverResponse{
			ID:    driver.ID,
			Name:  driver.Name,
			Phone: driver.Phone,
		},
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
	}, nil
}

// GraphicLogin resolves a campaign by access code and the responsible name
// against the campaign's registered graphics (primary or either backup).
func (s *AuthService) GraphicLogin(req *models.GraphicLoginRequest) (*models.GraphicLoginResponse, error) {
	campaign, err := s.campaignRepo.GetByCode(req.CampaignCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.graphicLoginError("unknown campaign code")
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	graphics, err := s.graphicRepo.GetByCampaignID(campaign.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load graphics: %w", err)
	}

	nameKey := normalize.Fold(req.ResponsibleName)
	if nameKey == "" {
		return nil, s.graphicLoginError("empty responsible name")
	}

	var matched *models.Graphic
	for _, g := range graphics {
		if g.NameKey == nameKey ||
			normalize.Fold(g.Backup1Name) == nameKey ||
			normalize.Fold(g.Backup2Name) == nameKey {
			matched = g
			break
		}
	}
	if matched == nil {
		return nil, s.graphicLoginError("no registered responsible with that name")
	}

	token, expiresIn, err := s.issueToken(models.SessionClaims{
		Role:       "graphic",
		CampaignID: campaign.ID,
		GraphicID:  matched.ID,
	})
	if err != nil {
		return nil, err
	}

	return &models.GraphicLoginResponse{
		AccessToken:  token,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		Code:         campaign.Code,
		GraphicID:    matched.ID,
		GraphicName:  matched.Name,
	}, nil
}

// graphicLoginError hides the failure reason unless the verbose flag is
// explicitly enabled.
func (s *AuthService) graphicLoginError(reason string) error {
	if os.Getenv("GRAPHIC_LOGIN_VERBOSE_ERRORS") == "true" {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, reason)
	}
	return fmt.Errorf("%w: graphic login failed", apperr.ErrNotFound)
}

// AdminLogin authenticates a reviewer account.
func (s *AuthService) AdminLogin(req *models.AdminLoginRequest) (*models.AdminLoginResponse, error) {
	user, err := s.adminUserRepo.GetByUsername(req.Username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token, expiresIn, err := s.issueToken(models.SessionClaims{
		Role:     "admin",
		Username: user.Username,
	})
	if err != nil {
		return nil, err
	}

	return &models.AdminLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Username:    user.Username,
	}, nil
}

// CreateAdminUser bootstraps the reviewer account from environment variables
// if it does not exist yet.
func (s *AuthService) CreateAdminUser() error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		logrus.Info("ADMIN_USERNAME/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	exists, err := s.adminUserRepo.CheckUsernameExists(username)
	if err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if exists {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.AdminUser{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := s.adminUserRepo.Create(user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.Infof("Created admin user %s", username)
	return nil
}

// ValidateToken parses and validates a session token.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionInfo, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	info := &models.SessionInfo{
		Role:       claims.Role,
		CampaignID: claims.CampaignID,
		DriverID:   claims.DriverID,
		GraphicID:  claims.GraphicID,
		Username:   claims.Username,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

func (s *AuthService) issueToken(claims models.SessionClaims) (string, int64, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, int64(s.sessionTTL.Seconds()), nil
}
