package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "jose", "jose"},
		{"strips accents", "José da Silva", "jose da silva"},
		{"collapses whitespace", "  Maria   de\tSouza ", "maria de souza"},
		{"cedilla and tilde", "Gráfica São João", "grafica sao joao"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "12345678909", Digits("123.456.789-09"))
	assert.Equal(t, "5511991335320", Digits("+55 (11) 99133-5320"))
	assert.Equal(t, "", Digits("abc"))
	assert.Equal(t, "", Digits(""))
}

func TestPlate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abc-1d23", "ABC1D23"},
		{"ABC 1234", "ABC1234"},
		{"abc1d23", "ABC1D23"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Plate(tt.input))
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "jose@example.com", Email("  Jose@Example.COM "))
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected Status
	}{
		{"Em dia", StatusOnTrack},
		{"OK", StatusOnTrack},
		{"ATRASADO", StatusBehind},
		{"Concluído", StatusCompleted},
		{"pausado", StatusPaused},
		{"algo estranho", StatusNeedsReview},
		{"", StatusNeedsReview},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapStatus(tt.input))
		})
	}
}

func TestPhoneVariants(t *testing.T) {
	variants := PhoneVariants("+55 (51) 99133-5320")
	assert.Contains(t, variants, "5551991335320")
	assert.Contains(t, variants, "51991335320")
	assert.Contains(t, variants, "1991335320")
	assert.Contains(t, variants, "991335320")
	assert.Contains(t, variants, "91335320")

	assert.Nil(t, PhoneVariants(""))
	assert.Nil(t, PhoneVariants("sem numero"))
}

func TestSamePhone(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"identical", "5511991335320", "5511991335320", true},
		{"country code stripped", "5551991335320", "51991335320", true},
		{"shared suffix across area codes", "5551991335320", "91991335320", true},
		{"formatted vs bare", "+55 (11) 99133-5320", "11991335320", true},
		{"different lines", "5511991335320", "5511988887777", false},
		{"empty left", "", "5511991335320", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SamePhone(tt.a, tt.b))
		})
	}
}
