// Package sheet understands the layout of campaign tracking sheets: admin or
// import-authored headers with one column group per measurement period
// ("KM RODADO 2", "META KM 2", "STATUS 2", ...) plus totals and extras.
package sheet

import (
	"regexp"
	"strconv"

	"github.com/rodamidia/roda-campaign-services-backend/internal/normalize"
)

// DefaultPeriodCount is what callers fall back to when a sheet carries no
// recognizable period columns.
const DefaultPeriodCount = 3

// PeriodColumns holds the zero-based column index of each field of one
// period. -1 means the column is absent.
type PeriodColumns struct {
	StartDate   int `json:"start_date"`
	CurrentDate int `json:"current_date"`
	Days        int `json:"days"`
	KMDriven    int `json:"km_driven"`
	KMTarget    int `json:"km_target"`
	Status      int `json:"status"`
}

// ColumnMapping is the detected layout of a tracking sheet. It is stored on
// the campaign (jsonb) so imports and mirror writes agree on positions.
type ColumnMapping struct {
	Periods       map[int]*PeriodColumns `json:"periods"`
	KMDrivenTotal int                    `json:"km_driven_total"`
	KMTargetTotal int                    `json:"km_target_total"`
	CheckIn       int                    `json:"check_in"`
	Comments      int                    `json:"comments"`
	Observations  int                    `json:"observations"`
	PeriodCount   int                    `json:"period_count"`
}

var (
	reStartDate   = regexp.MustCompile(`^data inicio ?(\d+)$`)
	reCurrentDate = regexp.MustCompile(`^data atual ?(\d+)$`)
	reDays        = regexp.MustCompile(`^dias ?(\d+)$`)
	reKMDriven    = regexp.MustCompile(`^km rodado ?(\d+)$`)
	reKMTarget    = regexp.MustCompile(`^meta km ?(\d+)$`)
	reStatus      = regexp.MustCompile(`^status ?(\d+)$`)

	reKMDrivenTotal = regexp.MustCompile(`^km rodado total$`)
	reKMTargetTotal = regexp.MustCompile(`^meta km total$`)
	reCheckIn       = regexp.MustCompile(`^check ?-?in$`)
	reComments      = regexp.MustCompile(`^comentarios?$`)
	reObservations  = regexp.MustCompile(`^observacoes$|^obs$`)
)

// DetectColumns inspects an ordered header row and locates the period column
// groups. Matching is accent- and case-insensitive, order-independent and
// tolerant of sparse periods; the first header matching a given field wins.
// When nothing matches, PeriodCount is 0.
func DetectColumns(headers []string) ColumnMapping {
	m := ColumnMapping{
		Periods:       make(map[int]*PeriodColumns),
		KMDrivenTotal: -1,
		KMTargetTotal: -1,
		CheckIn:       -1,
		Comments:      -1,
		Observations:  -1,
	}

	for i, raw := range headers {
		h := normalize.Fold(raw)
		switch {
		case reKMDriven.MatchString(h):
			setPeriod(&m, reKMDriven, h, i, func(p *PeriodColumns) *int { return &p.KMDriven })
		case reKMTarget.MatchString(h):
			setPeriod(&m, reKMTarget, h, i, func(p *PeriodColumns) *int { return &p.KMTarget })
		case reStatus.MatchString(h):
			setPeriod(&m, reStatus, h, i, func(p *PeriodColumns) *int { return &p.Status })
		case reStartDate.MatchString(h):
			setPeriod(&m, reStartDate, h, i, func(p *PeriodColumns) *int { return &p.StartDate })
		case reCurrentDate.MatchString(h):
			setPeriod(&m, reCurrentDate, h, i, func(p *PeriodColumns) *int { return &p.CurrentDate })
		case reDays.MatchString(h):
			setPeriod(&m, reDays, h, i, func(p *PeriodColumns) *int { return &p.Days })
		case reKMDrivenTotal.MatchString(h):
			if m.KMDrivenTotal == -1 {
				m.KMDrivenTotal = i
			}
		case reKMTargetTotal.MatchString(h):
			if m.KMTargetTotal == -1 {
				m.KMTargetTotal = i
			}
		case reCheckIn.MatchString(h):
			if m.CheckIn == -1 {
				m.CheckIn = i
			}
		case reComments.MatchString(h):
			if m.Comments == -1 {
				m.Comments = i
			}
		case reObservations.MatchString(h):
			if m.Observations == -1 {
				m.Observations = i
			}
		}
	}

	for n := range m.Periods {
		if n > m.PeriodCount {
			m.PeriodCount = n
		}
	}
	return m
}

func setPeriod(m *ColumnMapping, re *regexp.Regexp, folded string, index int, pick func(*PeriodColumns) *int) {
	groups := re.FindStringSubmatch(folded)
	n, err := strconv.Atoi(groups[1])
	if err != nil || n < 1 {
		return
	}
	cols := m.Periods[n]
	if cols == nil {
		cols = &PeriodColumns{StartDate: -1, CurrentDate: -1, Days: -1, KMDriven: -1, KMTarget: -1, Status: -1}
		m.Periods[n] = cols
	}
	if field := pick(cols); *field == -1 {
		*field = index
	}
}
