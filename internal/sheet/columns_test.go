package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectColumnsPeriodGroups(t *testing.T) {
	headers := []string{
		"Nome",
		"KM RODADO 1", "META KM 1", "STATUS 1",
		"KM RODADO 2", "META KM 2", "STATUS 2",
	}

	m := DetectColumns(headers)

	assert.Equal(t, 2, m.PeriodCount)
	require.Contains(t, m.Periods, 1)
	require.Contains(t, m.Periods, 2)

	p1 := m.Periods[1]
	assert.Equal(t, 1, p1.KMDriven)
	assert.Equal(t, 2, p1.KMTarget)
	assert.Equal(t, 3, p1.Status)
	assert.Equal(t, -1, p1.StartDate)
	assert.Equal(t, -1, p1.Days)

	p2 := m.Periods[2]
	assert.Equal(t, 4, p2.KMDriven)
	assert.Equal(t, 5, p2.KMTarget)
	assert.Equal(t, 6, p2.Status)
}

func TestDetectColumnsAccentAndCaseInsensitive(t *testing.T) {
	m := DetectColumns([]string{"Data Início 1", "data atual 1", "DIAS 1", "Meta Km 1"})

	require.Contains(t, m.Periods, 1)
	p := m.Periods[1]
	assert.Equal(t, 0, p.StartDate)
	assert.Equal(t, 1, p.CurrentDate)
	assert.Equal(t, 2, p.Days)
	assert.Equal(t, 3, p.KMTarget)
}

func TestDetectColumnsSparsePeriods(t *testing.T) {
	// Only period 3 present: the highest period number drives the count.
	m := DetectColumns([]string{"KM RODADO 3"})

	assert.Equal(t, 3, m.PeriodCount)
	require.Contains(t, m.Periods, 3)
	assert.Equal(t, 0, m.Periods[3].KMDriven)
}

func TestDetectColumnsFirstMatchWins(t *testing.T) {
	m := DetectColumns([]string{"STATUS 1", "Status 1"})

	require.Contains(t, m.Periods, 1)
	assert.Equal(t, 0, m.Periods[1].Status)
}

func TestDetectColumnsTotalsAndExtras(t *testing.T) {
	m := DetectColumns([]string{
		"KM RODADO TOTAL", "META KM TOTAL", "Check-in", "Comentários", "Observações",
	})

	assert.Equal(t, 0, m.KMDrivenTotal)
	assert.Equal(t, 1, m.KMTargetTotal)
	assert.Equal(t, 2, m.CheckIn)
	assert.Equal(t, 3, m.Comments)
	assert.Equal(t, 4, m.Observations)
	assert.Equal(t, 0, m.PeriodCount)
}

func TestDetectColumnsNothingMatches(t *testing.T) {
	m := DetectColumns([]string{"Nome", "Telefone", "CPF"})

	assert.Equal(t, 0, m.PeriodCount)
	assert.Empty(t, m.Periods)
	assert.Equal(t, -1, m.KMDrivenTotal)
	assert.Equal(t, -1, m.KMTargetTotal)
}

func TestRowValues(t *testing.T) {
	row := map[string]string{
		"NOME":     "José da Silva",
		"TELEFONE": "5511991335320",
		"STATUS":   "on_track",
	}

	t.Run("exact match", func(t *testing.T) {
		values := RowValues([]string{"NOME", "STATUS"}, row)
		assert.Equal(t, []string{"José da Silva", "on_track"}, values)
	})

	t.Run("folded fallback", func(t *testing.T) {
		values := RowValues([]string{"Nome", "Telefone"}, row)
		assert.Equal(t, []string{"José da Silva", "5511991335320"}, values)
	})

	t.Run("unknown column is empty", func(t *testing.T) {
		values := RowValues([]string{"PLACA", "NOME"}, row)
		assert.Equal(t, []string{"", "José da Silva"}, values)
	})

	t.Run("nil row", func(t *testing.T) {
		values := RowValues([]string{"NOME"}, nil)
		assert.Equal(t, []string{""}, values)
	})
}
