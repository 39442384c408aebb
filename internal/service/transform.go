package service

import (
	"math"
	"sort"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/datagov"
)

const (
	historyWindow   = 6
	unknownDistrict = "Unknown"
	// ISO-8601 in UTC with millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Fiscal year starts in April.
var fiscalMonths = [...]string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}

var fiscalOrdinal = func() map[string]int {
	m := make(map[string]int, len(fiscalMonths))
	for i, label := range fiscalMonths {
		m[label] = i
	}
	return m
}()

// MonthOrdinal returns the fiscal position of a month label (Apr=0 .. Mar=11),
// or -1 when the label is not one of the twelve abbreviations.
func MonthOrdinal(label string) int {
	if i, ok := fiscalOrdinal[label]; ok {
		return i
	}
	return -1
}

// SortByFiscalMonth returns a copy of records ordered most recent month first.
// Equal months keep their input order.
func SortByFiscalMonth(records []datagov.Record) []datagov.Record {
	sorted := make([]datagov.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return MonthOrdinal(sorted[i].Month) > MonthOrdinal(sorted[j].Month)
	})
	return sorted
}

// Transformer reshapes raw monthly records into a DistrictSummary.
type Transformer struct {
	now func() time.Time
}

func NewTransformer(now func() time.Time) *Transformer {
	if now == nil {
		now = time.Now
	}
	return &Transformer{now: now}
}

// Transform returns nil when there are no records.
func (t *Transformer) Transform(records []datagov.Record) *DistrictSummary {
	if len(records) == 0 {
		return nil
	}

	sorted := SortByFiscalMonth(records)
	current := sorted[0]

	district := current.DistrictName
	if district == "" {
		district = unknownDistrict
	}

	window := sorted
	if len(window) > historyWindow {
		window = window[:historyWindow]
	}
	history := make([]HistoryPoint, len(window))
	for i, r := range window {
		history[len(window)-1-i] = HistoryPoint{
			Month:      r.Month,
			PersonDays: count(r.PersonDays),
			Families:   count(r.HouseholdsWorked),
			Villages:   villages(r.ActiveWorkers),
		}
	}

	return &DistrictSummary{
		District: district,
		CurrentMonth: Snapshot{
			PersonDays:          count(current.PersonDays),
			Villages:            villages(current.ActiveWorkers),
			Families:            count(current.HouseholdsWorked),
			ActiveWorkers:       count(current.ActiveWorkers),
			CompletedWorks:      count(current.CompletedWorks),
			OngoingWorks:        count(current.OngoingWorks),
			WomenPersonDays:     count(current.WomenPersonDays),
			AvgDaysPerHousehold: count(current.AvgDaysPerHousehold),
		},
		HistoricalData: history,
		LastUpdated:    t.now().UTC().Format(timestampLayout),
	}
}

// count rounds half up and clamps at zero; missing values count as zero.
func count(n datagov.Number) int64 {
	if !n.Valid {
		return 0
	}
	return roundNonNegative(n.Value)
}

// villages approximates the village count as one per hundred active workers.
func villages(activeWorkers datagov.Number) int64 {
	if !activeWorkers.Valid {
		return 0
	}
	return roundNonNegative(activeWorkers.Value / 100)
}

func roundNonNegative(v float64) int64 {
	r := math.Floor(v + 0.5)
	if math.IsNaN(r) || r <= 0 {
		return 0
	}
	if r >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(r)
}
