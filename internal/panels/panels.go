// Package panels turns control state into chart descriptions. Every
// function here is pure: the dataset and the last click are explicit
// arguments and nothing is cached between calls.
package panels

import (
	"errors"
	"strconv"

	"housingdash/server/internal/models"
)

var (
	ErrUnknownMetric   = errors.New("unknown metric")
	ErrUnknownVariable = errors.New("unknown variable")
)

// Dataset is the read-only view of the table the panels need.
type Dataset interface {
	Records() []models.Record
	Aggregates() []models.YearlyAggregate
	ByID(id int64) (*models.Record, bool)
}

// Plotly's default qualitative sequence
var seriesColors = []string{
	"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a",
	"#19d3f3", "#ff6692", "#b6e880", "#ff97ff", "#fecb52",
}

func colorAt(palette []string, i int) string {
	return palette[i%len(palette)]
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func int64Ptr(v int64) *int64 {
	return &v
}
