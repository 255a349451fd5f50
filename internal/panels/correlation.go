package panels

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"housingdash/server/internal/models"
)

const (
	VariableLandsize      = "Landsize"
	VariableBuildingArea  = "BuildingArea"
	VariablePropertycount = "Propertycount"

	correlationX = "Price"
	notAvailable = "N/A"
)

// CorrelationVariables are the radio options, the first being the default.
var CorrelationVariables = []string{VariableLandsize, VariableBuildingArea, VariablePropertycount}

// CorrelationResult is the scatter plot and the text shown under it.
type CorrelationResult struct {
	Figure      models.Figure `json:"figure"`
	Variable    string        `json:"variable"`
	Coefficient *float64      `json:"coefficient"`
	Text        string        `json:"text"`
}

// Correlation plots Price against variable over every row where both are present.
func Correlation(ds Dataset, variable string) (CorrelationResult, error) {
	get, ok := variableGetter(variable)
	if !ok {
		return CorrelationResult{}, fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
	}

	series := models.Series{Name: variable, Color: colorAt(seriesColors, 0), Points: []models.Point{}}
	var xs, ys []float64
	records := ds.Records()
	for i := range records {
		r := &records[i]
		y := get(r)
		if r.Price == nil || y == nil {
			continue
		}
		xs = append(xs, *r.Price)
		ys = append(ys, *y)
		series.Points = append(series.Points, models.Point{
			ID: int64Ptr(r.ID),
			X:  *r.Price,
			Y:  *y,
		})
	}

	res := CorrelationResult{
		Figure: models.Figure{
			Kind:   models.KindScatter,
			Title:  fmt.Sprintf("Scatter Plot: %s vs %s", correlationX, variable),
			XLabel: correlationX,
			YLabel: variable,
			Series: []models.Series{series},
		},
		Variable: variable,
	}

	coeff, ok := Pearson(xs, ys)
	if ok {
		rounded := math.Round(coeff*100) / 100
		res.Coefficient = &rounded
	}
	res.Text = fmt.Sprintf("Correlation between %s and %s: %s", correlationX, variable, FormatCoefficient(coeff, ok))
	return res, nil
}

// Pearson returns the sample correlation of xs and ys. ok is false when the
// coefficient is undefined: fewer than two pairs or a constant column.
func Pearson(xs, ys []float64) (float64, bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, false
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// FormatCoefficient renders r with two decimals, or N/A when undefined.
func FormatCoefficient(r float64, ok bool) string {
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.2f", r)
}

func variableGetter(variable string) (func(*models.Record) *float64, bool) {
	switch variable {
	case VariableLandsize:
		return func(r *models.Record) *float64 { return r.Landsize }, true
	case VariableBuildingArea:
		return func(r *models.Record) *float64 { return r.BuildingArea }, true
	case VariablePropertycount:
		return func(r *models.Record) *float64 { return r.Propertycount }, true
	}
	return nil, false
}
