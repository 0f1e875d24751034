package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
	"github.com/rodamidia/roda-campaign-services-backend/internal/database/repository"
	"github.com/rodamidia/roda-campaign-services-backend/internal/flow"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
	"github.com/rodamidia/roda-campaign-services-backend/internal/sheet"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EvidenceService records step submissions: it persists the entry, stores
// photographic payloads, keeps the mileage sub-record current and triggers
// canonical row synchronization plus the best-effort sheet mirror.
type EvidenceService struct {
	campaignRepo *repository.CampaignRepository
	driverRepo   *repository.DriverRepository
	evidenceRepo *repository.EvidenceRepository
	resolver     *ResolverService
	rows         *RowService
	storage      *StorageService
	mirror       *MirrorService
}

func NewEvidenceService(
	campaignRepo *repository.CampaignRepository,
	driverRepo *repository.DriverRepository,
	evidenceRepo *repository.EvidenceRepository,
	resolver *ResolverService,
	rows *RowService,
	storage *StorageService,
	mirror *MirrorService,
) *EvidenceService {
	return &EvidenceService{
		campaignRepo: campaignRepo,
		driverRepo:   driverRepo,
		evidenceRepo: evidenceRepo,
		resolver:     resolver,
		rows:         rows,
		storage:      storage,
		mirror:       mirror,
	}
}

// RecordInput is one evidence submission after session decoding. DriverID
// and Candidate are alternatives: a graphic without a known driver sends the
// candidate identity instead of an id.
type RecordInput struct {
	CampaignID string
	DriverID   string
	Candidate  *models.IdentityQuery
	GraphicID  string
	Role       string
	Step       string
	PhotoData  string
	Value      *string
	Notes      string
	Redo       bool
	Mobile     bool
}

// Record persists one evidence entry. Storage and mirror failures are
// logged and absorbed: only faults on the authoritative local record surface
// to the caller.
func (s *EvidenceService) Record(in RecordInput) (*models.EvidenceEntry, error) {
	campaign, err := s.campaignRepo.GetByID(in.CampaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: campaign", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	if !flow.KnownStep(in.Role, in.Step) {
		return nil, fmt.Errorf("%w: unknown step %q for role %s", apperr.ErrValidation, in.Step, in.Role)
	}
	if flow.PhotoStep(in.Step) {
		if in.PhotoData == "" {
			return nil, fmt.Errorf("%w: step %s requires a photo", apperr.ErrValidation, in.Step)
		}
		if requireMobileUpload() && !in.Mobile {
			return nil, fmt.Errorf("%w: photo uploads are restricted to handheld devices", apperr.ErrValidation)
		}
	}
	if in.Step == flow.StepOdometerValue && in.Value == nil {
		return nil, fmt.Errorf("%w: step %s requires a value", apperr.ErrValidation, in.Step)
	}

	driver, err := s.resolveDriver(in)
	if err != nil {
		return nil, err
	}

	entry := &models.EvidenceEntry{
		ID:         uuid.New().String(),
		CampaignID: campaign.ID,
		DriverID:   driver.ID,
		Role:       in.Role,
		Step:       in.Step,
		Notes:      in.Notes,
		Redo:       in.Redo,
		Value:      in.Value,
	}
	if in.GraphicID != "" {
		graphicID := in.GraphicID
		entry.GraphicID = &graphicID
	}

	if in.PhotoData != "" {
		url, err := s.storePhoto(campaign.ID, in.Role, driver.ID, in.PhotoData)
		if err != nil {
			// Storage failure never loses the submission; the entry is
			// recorded with a null asset reference.
			logrus.Errorf("Failed to store evidence photo for driver %s: %v", driver.ID, err)
		} else {
			entry.FileURL = &url
		}
	}

	if err := s.evidenceRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to record evidence: %w", err)
	}

	if in.Step == flow.StepOdometerValue && in.Value != nil {
		s.applyOdometerReading(campaign, driver, *in.Value)
	}

	s.rows.ApplyCanonicalRaw(driver)
	if err := s.driverRepo.Update(driver); err != nil {
		return nil, fmt.Errorf("failed to update driver record: %w", err)
	}

	s.publishMirrorRow(campaign, driver)

	return entry, nil
}

// Status derives the flow status for one driver and role.
func (s *EvidenceService) Status(campaignID, driverID, role string) (*models.FlowStatus, error) {
	driver, err := s.driverRepo.GetByID(driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: driver", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}
	if driver, err = campaignScoped(driver, campaignID); err != nil {
		return nil, err
	}

	entries, err := s.evidenceRepo.GetByFlow(campaignID, driverID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to load evidence entries: %w", err)
	}

	status := flow.Evaluate(entries, flow.RequiredSteps(role), driver.Review(flow.Target(role)), time.Now())
	return &status, nil
}

func (s *EvidenceService) resolveDriver(in RecordInput) (*models.Driver, error) {
	if in.DriverID != "" {
		driver, err := s.driverRepo.GetByID(in.DriverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: driver", apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load driver: %w", err)
		}
		return campaignScoped(driver, in.CampaignID)
	}

	if in.Candidate == nil || in.Candidate.Empty() {
		return nil, fmt.Errorf("%w: driver id or candidate identity required", apperr.ErrValidation)
	}

	driver, err := s.resolver.Resolve(in.CampaignID, *in.Candidate)
	if err != nil {
		return nil, err
	}
	if driver != nil {
		return driver, nil
	}

	// No match: create a minimal provisional driver so the evidence is not
	// lost. An admin completes the record later.
	driver = &models.Driver{
		ID:          uuid.New().String(),
		CampaignID:  in.CampaignID,
		Name:        in.Candidate.Name,
		Phone:       in.Candidate.Phone,
		TaxID:       in.Candidate.TaxID,
		Plate:       in.Candidate.Plate,
		Email:       in.Candidate.Email,
		Provisional: true,
	}
	RefreshKeys(driver)
	if err := s.driverRepo.Create(driver); err != nil {
		return nil, fmt.Errorf("failed to create provisional driver: %w", err)
	}
	logrus.Infof("Created provisional driver %s in campaign %s", driver.ID, in.CampaignID)
	return driver, nil
}

// applyOdometerReading records a numeric reading into the next open period
// and recomputes the totals. Failures here never surface; the evidence entry
// itself is already persisted.
func (s *EvidenceService) applyOdometerReading(campaign *models.Campaign, driver *models.Driver, raw string) {
	reading, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(raw, ",", ".")), 64)
	if err != nil {
		logrus.Warnf("Ignoring non-numeric odometer value %q for driver %s", raw, driver.ID)
		return
	}

	m := driver.Mileage
	if m == nil {
		m = &models.Mileage{}
		driver.Mileage = m
	}
	if m.Readings == nil {
		m.Readings = make(map[int]float64)
	}

	periodCount := campaign.PeriodCount
	if periodCount <= 0 {
		periodCount = sheet.DefaultPeriodCount
	}
	period := periodCount
	for p := 1; p <= periodCount; p++ {
		if _, ok := m.Readings[p]; !ok {
			period = p
			break
		}
	}
	m.Readings[period] = reading

	// Odometer readings are cumulative: total driven is the spread between
	// the first and last recorded readings.
	min, max := reading, reading
	for _, r := range m.Readings {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	m.TotalDriven = max - min

	m.TotalTarget = 0
	for _, t := range m.Targets {
		m.TotalTarget += t
	}

	m.Source = "field-submission"
	m.UpdatedAt = time.Now().UTC()
}

func (s *EvidenceService) storePhoto(campaignID, role, driverID, photoData string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("storage not configured")
	}
	// Accept both bare base64 and data: URLs.
	if idx := strings.Index(photoData, ";base64,"); idx >= 0 {
		photoData = photoData[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(photoData)
	if err != nil {
		return "", fmt.Errorf("invalid base64 photo data: %w", err)
	}
	return s.storage.SavePhoto(campaignID, role, driverID, data)
}

// publishMirrorRow queues the driver's canonical row for the external sheet.
// Deliberately fire-and-forget: a slow or unreachable mirror must never
// block evidence capture.
func (s *EvidenceService) publishMirrorRow(campaign *models.Campaign, driver *models.Driver) {
	if s.mirror == nil || len(campaign.SheetHeaders) == 0 {
		return
	}
	msg := MirrorRowMessage{
		CampaignID: campaign.ID,
		SheetFile:  campaign.SheetFile,
		DriverID:   driver.ID,
		Headers:    campaign.SheetHeaders,
		Values:     s.rows.SheetRowValues(campaign.SheetHeaders, driver),
	}
	if err := s.mirror.PublishRow(msg); err != nil {
		logrus.Warnf("Sheet mirror publish failed for driver %s: %v", driver.ID, err)
	}
}

func requireMobileUpload() bool {
	return os.Getenv("CAMPAIGN_REQUIRE_MOBILE_UPLOAD") == "true"
}

// campaignScoped guards drivers loaded by id: a driver belongs to exactly one
// campaign, and a session scoped to another campaign must not read or mutate
// it. The error is the same generic not-found as a missing id, so a caller
// cannot probe which driver ids exist elsewhere.
func campaignScoped(d *models.Driver, campaignID string) (*models.Driver, error) {
	if d.CampaignID != campaignID {
		return nil, fmt.Errorf("%w: driver", apperr.ErrNotFound)
	}
	return d, nil
}
