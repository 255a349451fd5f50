package dataset

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"housingdash/server/internal/models"
)

var ErrDuplicateID = errors.New("duplicate record id")

// Table is the read-only dataset shared by every panel. It is safe for
// concurrent use because nothing mutates it after NewTable returns.
type Table struct {
	records    []models.Record
	byID       map[int64]int
	years      []int
	aggregates []models.YearlyAggregate
}

// NewTable takes ownership of records; callers must not modify them afterwards.
func NewTable(records []models.Record) (*Table, error) {
	t := &Table{
		records: records,
		byID:    make(map[int64]int, len(records)),
	}

	seenYears := make(map[int]bool)
	for i := range records {
		r := &records[i]
		if r.Date.IsZero() {
			return nil, fmt.Errorf("%w: record %d has no date", ErrInvalidDate, r.ID)
		}
		if _, dup := t.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
		t.byID[r.ID] = i

		year := r.Date.Year()
		if !seenYears[year] {
			seenYears[year] = true
			t.years = append(t.years, year)
		}
	}
	sort.Ints(t.years)

	t.aggregates = aggregate(records)
	return t, nil
}

// Records returns the rows in load order. The slice is shared and must not be modified.
func (t *Table) Records() []models.Record {
	return t.records
}

func (t *Table) Len() int {
	return len(t.records)
}

// ByID resolves a stable record identifier.
func (t *Table) ByID(id int64) (*models.Record, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return &t.records[i], true
}

// Years returns the distinct sale years in ascending order.
func (t *Table) Years() []int {
	return t.years
}

// YearRange returns the first and last sale year, or zeros for an empty table.
func (t *Table) YearRange() (int, int) {
	if len(t.years) == 0 {
		return 0, 0
	}
	return t.years[0], t.years[len(t.years)-1]
}

// Aggregates returns the per-date sums ordered by (year, date).
func (t *Table) Aggregates() []models.YearlyAggregate {
	return t.aggregates
}

// Filter returns the records matching keep, in load order.
func (t *Table) Filter(keep func(*models.Record) bool) []*models.Record {
	var out []*models.Record
	for i := range t.records {
		if keep(&t.records[i]) {
			out = append(out, &t.records[i])
		}
	}
	return out
}

func aggregate(records []models.Record) []models.YearlyAggregate {
	byDate := make(map[time.Time]*models.YearlyAggregate)
	for i := range records {
		r := &records[i]
		day := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)

		agg, ok := byDate[day]
		if !ok {
			agg = &models.YearlyAggregate{Year: day.Year(), Date: day}
			byDate[day] = agg
		}
		agg.Price += value(r.Price)
		agg.Land += value(r.Landsize)
		agg.Area += value(r.BuildingArea)
	}

	out := make([]models.YearlyAggregate, 0, len(byDate))
	for _, agg := range byDate {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
