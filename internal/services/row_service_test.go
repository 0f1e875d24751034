package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
)

func TestApplyCanonicalRawAuthoritative(t *testing.T) {
	rows := NewRowService()
	d := &models.Driver{
		ID:     "d1",
		Name:   "José da Silva",
		Phone:  "5511991335320",
		TaxID:  "123.456.789-09",
		Plate:  "ABC1D23",
		Email:  "jose@example.com",
		Status: "on_track",
		RawRow: map[string]string{
			ColName:   "Jose Silva (antigo)",
			ColStatus: "atrasado",
		},
	}

	row := rows.ApplyCanonicalRaw(d)

	// Captured fields overwrite whatever the sheet had.
	assert.Equal(t, "José da Silva", row[ColName])
	assert.Equal(t, "on_track", row[ColStatus])
	assert.Equal(t, "d1", row[ColID])
	assert.Equal(t, "5511991335320", row[ColPhone])
	assert.Equal(t, "sistema", row[ColOrigin])

	_, err := time.Parse(time.RFC3339, row[ColUpdatedAt])
	assert.NoError(t, err)
}

func TestApplyCanonicalRawEmptyFieldsPreserved(t *testing.T) {
	rows := NewRowService()
	d := &models.Driver{
		ID: "d1",
		RawRow: map[string]string{
			ColName:  "Nome da Planilha",
			ColPhone: "5511988887777",
		},
	}

	row := rows.ApplyCanonicalRaw(d)

	// Empty structured fields never blank out imported columns.
	assert.Equal(t, "Nome da Planilha", row[ColName])
	assert.Equal(t, "5511988887777", row[ColPhone])
}

func TestApplyCanonicalRawMileage(t *testing.T) {
	rows := NewRowService()
	d := &models.Driver{
		ID: "d1",
		Mileage: &models.Mileage{
			Readings:    map[int]float64{1: 1000, 2: 1450.5},
			Targets:     map[int]float64{1: 500, 2: 500},
			TotalDriven: 450.5,
			TotalTarget: 1000,
		},
		RawRow: map[string]string{
			"META KM 1":     "600", // sheet-authored target stays
			ColKMTotal:      "1",   // stale total gets recomputed
		},
	}

	row := rows.ApplyCanonicalRaw(d)

	assert.Equal(t, "450.5", row[ColKMTotal])
	assert.Equal(t, "1000", row[ColKMTarget])
	assert.Equal(t, "1000", row["KM RODADO 1"])
	assert.Equal(t, "1450.5", row["KM RODADO 2"])
	assert.Equal(t, "600", row["META KM 1"], "existing target column is filled, never overwritten")
	assert.Equal(t, "500", row["META KM 2"])
}

func TestApplyCanonicalRawIdempotent(t *testing.T) {
	rows := NewRowService()
	d := &models.Driver{
		ID:    "d1",
		Name:  "José da Silva",
		Phone: "5511991335320",
		Mileage: &models.Mileage{
			Readings:    map[int]float64{1: 1000},
			TotalDriven: 0,
		},
	}

	first := rows.ApplyCanonicalRaw(d)
	snapshot := make(map[string]string, len(first))
	for k, v := range first {
		snapshot[k] = v
	}

	second := rows.ApplyCanonicalRaw(d)

	// Identical aside from the updated-at stamp.
	delete(snapshot, ColUpdatedAt)
	for k, v := range snapshot {
		assert.Equal(t, v, second[k], "column %s changed on reapply", k)
	}
}

func TestApplyCanonicalRawInitializesRow(t *testing.T) {
	rows := NewRowService()
	d := &models.Driver{ID: "d1", Name: "José da Silva"}

	row := rows.ApplyCanonicalRaw(d)

	require.NotNil(t, d.RawRow)
	assert.Equal(t, "José da Silva", row[ColName])
}

func TestSheetRowValues(t *testing.T) {
	rows := NewRowService()
	d := &models.Driver{
		ID:    "d1",
		Name:  "José da Silva",
		Phone: "5511991335320",
	}
	rows.ApplyCanonicalRaw(d)

	values := rows.SheetRowValues([]string{"Nome", "Telefone", "Placa"}, d)

	assert.Equal(t, []string{"José da Silva", "5511991335320", ""}, values)
}
