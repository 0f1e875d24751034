package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xuri/excelize/v2"

	"github.com/rodamidia/roda-campaign-services-backend/internal/services"
)

func TestDeliveryRetryCount(t *testing.T) {
	tests := []struct {
		name     string
		headers  amqp.Table
		expected int32
	}{
		{"first delivery has no header", nil, 0},
		{"empty table", amqp.Table{}, 0},
		{"republished copy", amqp.Table{"x-retry-count": int32(2)}, 2},
		{"int64 from a foreign producer", amqp.Table{"x-retry-count": int64(1)}, 1},
		{"unexpected type counts as zero", amqp.Table{"x-retry-count": "3"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deliveryRetryCount(tt.headers))
		})
	}
}

// A failing delivery must stop being retried once the count reaches the cap:
// the count only advances because republished copies carry it in the headers.
func TestRetryCountAdvancesToCap(t *testing.T) {
	headers := amqp.Table(nil)
	attempts := 0
	for deliveryRetryCount(headers) < maxRetries {
		attempts++
		headers = amqp.Table{"x-retry-count": deliveryRetryCount(headers) + 1}
	}
	assert.Equal(t, int(maxRetries), attempts)
}

func mirrorMessage(driverID, name string) services.MirrorRowMessage {
	return services.MirrorRowMessage{
		CampaignID: "c1",
		SheetFile:  "campanha.xlsx",
		DriverID:   driverID,
		Headers:    []string{"ID", "NOME", "STATUS"},
		Values:     []string{driverID, name, "on_track"},
	}
}

func TestApplyRowCreatesWorkbook(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, applyRow(dir, mirrorMessage("d1", "José da Silva")))

	f, err := excelize.OpenFile(filepath.Join(dir, "campanha.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "NOME", "STATUS"}, rows[0])
	assert.Equal(t, []string{"d1", "José da Silva", "on_track"}, rows[1])
}

func TestApplyRowReplacesExistingDriver(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, applyRow(dir, mirrorMessage("d1", "José da Silva")))
	require.NoError(t, applyRow(dir, mirrorMessage("d1", "José da Silva Filho")))

	f, err := excelize.OpenFile(filepath.Join(dir, "campanha.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2, "a repeated driver update must not append")
	assert.Equal(t, "José da Silva Filho", rows[1][1])
}

func TestApplyRowAppendsNewDriver(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, applyRow(dir, mirrorMessage("d1", "José da Silva")))
	require.NoError(t, applyRow(dir, mirrorMessage("d2", "Maria de Souza")))

	f, err := excelize.OpenFile(filepath.Join(dir, "campanha.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "d1", rows[1][0])
	assert.Equal(t, "d2", rows[2][0])
}

func TestApplyRowDefaultsFilename(t *testing.T) {
	dir := t.TempDir()
	msg := mirrorMessage("d1", "José da Silva")
	msg.SheetFile = ""

	require.NoError(t, applyRow(dir, msg))

	_, err := excelize.OpenFile(filepath.Join(dir, "c1.xlsx"))
	assert.NoError(t, err)
}
