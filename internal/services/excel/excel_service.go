package excel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/apperr"
	"github.com/rodamidia/roda-campaign-services-backend/internal/database/repository"
	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
	"github.com/rodamidia/roda-campaign-services-backend/internal/normalize"
	"github.com/rodamidia/roda-campaign-services-backend/internal/services"
	"github.com/rodamidia/roda-campaign-services-backend/internal/sheet"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Service imports campaign rosters from tracking-sheet xlsx files and
// exports the campaign back onto its header layout from the canonical rows.
type Service struct {
	campaignRepo *repository.CampaignRepository
	driverRepo   *repository.DriverRepository
	rows         *services.RowService
}

// NewExcelService creates a new Excel service instance
func NewExcelService(
	campaignRepo *repository.CampaignRepository,
	driverRepo *repository.DriverRepository,
	rows *services.RowService,
) *Service {
	return &Service{
		campaignRepo: campaignRepo,
		driverRepo:   driverRepo,
		rows:         rows,
	}
}

// ImportResult contains the result of a roster import
type ImportResult struct {
	RecordsCount int `json:"records_count"`
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	PeriodCount  int `json:"period_count"`
}

// identity columns recognized on roster sheets, by folded header name.
var identityColumns = map[string]string{
	"nome":      "name",
	"motorista": "name",
	"telefone":  "phone",
	"celular":   "phone",
	"cpf":       "tax_id",
	"placa":     "plate",
	"email":     "email",
	"e-mail":    "email",
	"pix":       "payment",
	"chave pix": "payment",
}

// ImportRoster reads a tracking sheet, detects its column layout, stores the
// layout on the campaign and upserts one driver per data row.
func (s *Service) ImportRoster(campaignID string, r io.Reader) (*ImportResult, error) {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: campaign", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read xlsx file: %v", apperr.ErrValidation, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", apperr.ErrValidation)
	}

	headers := rows[0]
	mapping := sheet.DetectColumns(headers)
	periodCount := mapping.PeriodCount
	if periodCount == 0 {
		periodCount = sheet.DefaultPeriodCount
	}

	campaign.SheetHeaders = headers
	campaign.ColumnMap = &mapping
	campaign.PeriodCount = periodCount
	if err := s.campaignRepo.Update(campaign); err != nil {
		return nil, fmt.Errorf("failed to store sheet layout: %w", err)
	}

	existing, err := s.driverRepo.GetByCampaignID(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign drivers: %w", err)
	}

	result := &ImportResult{PeriodCount: periodCount}
	for _, cells := range rows[1:] {
		if emptyRow(cells) {
			continue
		}
		result.RecordsCount++

		rawRow := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				rawRow[h] = strings.TrimSpace(cells[i])
			}
		}

		q, payment := extractIdentity(headers, rawRow)
		driver := services.MatchCandidate(existing, q)
		created := false
		if driver == nil {
			driver = &models.Driver{
				ID:         uuid.New().String(),
				CampaignID: campaignID,
			}
			created = true
		}

		applyRowIdentity(driver, q, payment)
		mergeRawRow(driver, rawRow)
		applyMileage(driver, &mapping, cells)
		s.rows.ApplyCanonicalRaw(driver)

		if created {
			if err := s.driverRepo.Create(driver); err != nil {
				logrus.Warnf("Failed to import driver row for %q: %v", q.Name, err)
				continue
			}
			existing = append(existing, driver)
			result.Created++
		} else {
			if err := s.driverRepo.Update(driver); err != nil {
				logrus.Warnf("Failed to update driver %s from import: %v", driver.ID, err)
				continue
			}
			result.Updated++
		}
	}

	logrus.Infof("Imported roster for campaign %s: %d rows, %d created, %d updated",
		campaignID, result.RecordsCount, result.Created, result.Updated)
	return result, nil
}

// ExportRoster builds an xlsx of the campaign from the canonical rows,
// projected onto the campaign's header layout.
func (s *Service) ExportRoster(campaignID string) (*excelize.File, string, error) {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: campaign", apperr.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to load campaign: %w", err)
	}

	headers := campaign.SheetHeaders
	if len(headers) == 0 {
		headers = []string{
			services.ColID, services.ColName, services.ColPhone, services.ColTaxID,
			services.ColPlate, services.ColEmail, services.ColPayment, services.ColStatus,
			services.ColKMTotal, services.ColKMTarget, services.ColUpdatedAt, services.ColOrigin,
		}
	}

	drivers, err := s.driverRepo.GetByCampaignID(campaignID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load campaign drivers: %w", err)
	}

	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)

	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerCells); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}

	for i, d := range drivers {
		values := s.rows.SheetRowValues(headers, d)
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	filename := fmt.Sprintf("campaign_%s_%d.xlsx", campaign.Code, time.Now().Unix())
	return f, filename, nil
}

func extractIdentity(headers []string, rawRow map[string]string) (models.IdentityQuery, string) {
	var q models.IdentityQuery
	var payment string
	for _, h := range headers {
		field, ok := identityColumns[normalize.Fold(h)]
		if !ok {
			continue
		}
		value := rawRow[h]
		if value == "" {
			continue
		}
		switch field {
		case "name":
			if q.Name == "" {
				q.Name = value
			}
		case "phone":
			if q.Phone == "" {
				q.Phone = value
			}
		case "tax_id":
			if q.TaxID == "" {
				q.TaxID = value
			}
		case "plate":
			if q.Plate == "" {
				q.Plate = value
			}
		case "email":
			if q.Email == "" {
				q.Email = value
			}
		case "payment":
			if payment == "" {
				payment = value
			}
		}
	}
	return q, payment
}

func applyRowIdentity(d *models.Driver, q models.IdentityQuery, payment string) {
	if q.Name != "" {
		d.Name = q.Name
	}
	if q.Phone != "" {
		d.Phone = q.Phone
	}
	if q.TaxID != "" {
		d.TaxID = q.TaxID
	}
	if q.Plate != "" {
		d.Plate = q.Plate
	}
	if q.Email != "" {
		d.Email = q.Email
	}
	if payment != "" {
		d.PaymentKey = payment
	}
	services.RefreshKeys(d)
}

// mergeRawRow folds imported cells into the stored raw row, filling only
// columns the canonical row does not already own.
func mergeRawRow(d *models.Driver, rawRow map[string]string) {
	if d.RawRow == nil {
		d.RawRow = make(map[string]string, len(rawRow))
	}
	for col, val := range rawRow {
		if val == "" {
			continue
		}
		if existing, ok := d.RawRow[col]; ok && existing != "" {
			continue
		}
		d.RawRow[col] = val
	}
}

// applyMileage fills the mileage sub-record from the detected period
// columns. Sheet-sourced values never overwrite field submissions.
func applyMileage(d *models.Driver, mapping *sheet.ColumnMapping, cells []string) {
	if mapping.PeriodCount == 0 {
		return
	}

	m := d.Mileage
	if m == nil {
		m = &models.Mileage{}
	}
	if m.Readings == nil {
		m.Readings = make(map[int]float64)
	}
	if m.Targets == nil {
		m.Targets = make(map[int]float64)
	}

	changed := false
	for period, cols := range mapping.Periods {
		if v, ok := cellFloat(cells, cols.KMDriven); ok {
			if _, exists := m.Readings[period]; !exists {
				m.Readings[period] = v
				changed = true
			}
		}
		if v, ok := cellFloat(cells, cols.KMTarget); ok {
			if _, exists := m.Targets[period]; !exists {
				m.Targets[period] = v
				changed = true
			}
		}
	}
	if !changed {
		if d.Mileage == nil && (len(m.Readings) > 0 || len(m.Targets) > 0) {
			d.Mileage = m
		}
		return
	}

	m.TotalTarget = 0
	for _, t := range m.Targets {
		m.TotalTarget += t
	}
	min, max := 0.0, 0.0
	first := true
	for _, r := range m.Readings {
		if first {
			min, max = r, r
			first = false
			continue
		}
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	if !first {
		m.TotalDriven = max - min
	}
	if m.Source == "" {
		m.Source = "sheet-import"
	}
	m.UpdatedAt = time.Now().UTC()
	d.Mileage = m
}

func cellFloat(cells []string, index int) (float64, bool) {
	if index < 0 || index >= len(cells) {
		return 0, false
	}
	raw := strings.TrimSpace(strings.ReplaceAll(cells[index], ",", "."))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
