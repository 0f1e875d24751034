package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
	"github.com/rodamidia/roda-campaign-services-backend/internal/sheet"
)

// Canonical row column names. These match the vocabulary of the campaign
// tracking sheets, so the row projects onto admin-authored headers without a
// translation layer.
const (
	ColID        = "ID"
	ColName      = "NOME"
	ColPhone     = "TELEFONE"
	ColTaxID     = "CPF"
	ColPlate     = "PLACA"
	ColEmail     = "EMAIL"
	ColPayment   = "PIX"
	ColStatus    = "STATUS"
	ColKMTotal   = "KM RODADO TOTAL"
	ColKMTarget  = "META KM TOTAL"
	ColUpdatedAt = "ATUALIZADO EM"
	ColOrigin    = "ORIGEM"

	originTag = "sistema"
)

// RowService keeps the canonical column-keyed row of each driver consistent
// with its structured fields.
type RowService struct{}

func NewRowService() *RowService {
	return &RowService{}
}

// ApplyCanonicalRaw merges a driver's structured fields into its raw row and
// returns the row. Identity, status and contact columns always overwrite
// (they are authoritative once captured), mileage totals always overwrite
// (system-computed), everything else fills only when the column is empty.
// Idempotent aside from the updated-at stamp.
func (s *RowService) ApplyCanonicalRaw(d *models.Driver) map[string]string {
	if d.RawRow == nil {
		d.RawRow = make(map[string]string)
	}
	row := d.RawRow

	// Authoritative fields: overwrite whenever captured.
	overwrite(row, ColID, d.ID)
	overwrite(row, ColName, d.Name)
	overwrite(row, ColStatus, d.Status)
	overwrite(row, ColPayment, d.PaymentKey)
	overwrite(row, ColPhone, d.Phone)
	overwrite(row, ColTaxID, d.TaxID)
	overwrite(row, ColPlate, d.Plate)
	overwrite(row, ColEmail, d.Email)

	if m := d.Mileage; m != nil {
		// Totals are system-computed and always win.
		row[ColKMTotal] = formatKM(m.TotalDriven)
		row[ColKMTarget] = formatKM(m.TotalTarget)

		for period, reading := range m.Readings {
			row[fmt.Sprintf("KM RODADO %d", period)] = formatKM(reading)
		}
		for period, target := range m.Targets {
			fillIfEmpty(row, fmt.Sprintf("META KM %d", period), formatKM(target))
		}
	}

	row[ColUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	row[ColOrigin] = originTag
	return row
}

// SheetRowValues projects the driver's canonical row onto an arbitrary
// header list.
func (s *RowService) SheetRowValues(headers []string, d *models.Driver) []string {
	return sheet.RowValues(headers, d.RawRow)
}

func overwrite(row map[string]string, col, val string) {
	if val != "" {
		row[col] = val
	}
}

func fillIfEmpty(row map[string]string, col, val string) {
	if val == "" {
		return
	}
	if existing, ok := row[col]; ok && existing != "" {
		return
	}
	row[col] = val
}

func formatKM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
