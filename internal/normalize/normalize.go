package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Every comparison in identity resolution goes through this package, so all
// functions here are total: any input string is accepted and never panics.

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s, strips diacritics and collapses runs of whitespace into
// single spaces. It is the canonical form for name and header comparisons.
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Digits returns only the decimal digits of s, in order.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Plate canonicalizes a vehicle plate: strip everything that is not a letter
// or digit and uppercase the rest ("abc-1d23" -> "ABC1D23").
func Plate(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Email lowercases and trims an e-mail address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status is the fixed tracking-status vocabulary used on campaign sheets.
type Status string

const (
	StatusOnTrack     Status = "on_track"
	StatusBehind      Status = "behind"
	StatusCompleted   Status = "completed"
	StatusPaused      Status = "paused"
	StatusNeedsReview Status = "needs_review"
)

var statusSynonyms = map[string]Status{
	"em dia":       StatusOnTrack,
	"ok":           StatusOnTrack,
	"regular":      StatusOnTrack,
	"no prazo":     StatusOnTrack,
	"dentro":       StatusOnTrack,
	"atrasado":     StatusBehind,
	"abaixo":       StatusBehind,
	"abaixo da meta": StatusBehind,
	"pendente":     StatusBehind,
	"concluido":    StatusCompleted,
	"finalizado":   StatusCompleted,
	"completo":     StatusCompleted,
	"encerrado":    StatusCompleted,
	"pausado":      StatusPaused,
	"parado":       StatusPaused,
	"suspenso":     StatusPaused,
}

// MapStatus maps free-text sheet status values onto the fixed vocabulary.
// Anything it does not recognize maps to StatusNeedsReview rather than an
// error so imports never stop on a typo.
func MapStatus(s string) Status {
	if v, ok := statusSynonyms[Fold(s)]; ok {
		return v
	}
	return StatusNeedsReview
}

// phoneSuffixes are the national formats seen in the field: full mobile with
// area code (10/11 digits collapse to 10 via the leading-9 rule below), the
// 9-digit mobile and the legacy 8-digit number.
var phoneSuffixes = []int{10, 9, 8}

// PhoneVariants expands a raw phone string into the set of comparable digit
// strings: the raw digits, the digits with a leading "55" country code
// stripped, and the trailing 10/9/8-digit suffixes. Two phones refer to the
// same line when their variant sets intersect.
func PhoneVariants(raw string) []string {
	d := Digits(raw)
	if d == "" {
		return nil
	}
	set := map[string]bool{d: true}
	if len(d) > 2 && strings.HasPrefix(d, "55") {
		set[d[2:]] = true
	}
	for _, n := range phoneSuffixes {
		if len(d) >= n {
			set[d[len(d)-n:]] = true
		}
	}
	variants := make([]string, 0, len(set))
	for v := range set {
		variants = append(variants, v)
	}
	return variants
}

// SamePhone reports whether two raw phone strings share at least one variant.
func SamePhone(a, b string) bool {
	va := PhoneVariants(a)
	if len(va) == 0 {
		return false
	}
	vb := PhoneVariants(b)
	if len(vb) == 0 {
		return false
	}
	seen := make(map[string]bool, len(va))
	for _, v := range va {
		seen[v] = true
	}
	for _, v := range vb {
		if seen[v] {
			return true
		}
	}
	return false
}
