package panels

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"housingdash/server/internal/models"
)

// PieColors is the palette of the house type pie.
var PieColors = []string{"#1f77b4", "#ff7f0e", "#2ca02c"}

// HistogramClick is a click on a histogram bar; X is the bar's x value.
type HistogramClick struct {
	X float64 `json:"x"`
}

// PieClick is a click on a pie slice.
type PieClick struct {
	Label string `json:"label"`
}

// Pie shows how the rows selected by a histogram click split by property
// type. The click matches Price exactly, so a bar center that no sale hit
// produces a pie with no slices.
func Pie(ds Dataset, click *HistogramClick) models.Figure {
	title := "House Type Distribution"
	keep := func(*models.Record) bool { return true }
	if click != nil {
		title = fmt.Sprintf("Pie Chart: %s", formatNumber(click.X))
		x := click.X
		keep = func(r *models.Record) bool { return r.Price != nil && *r.Price == x }
	}

	slices := make(map[string]*models.Slice)
	var order []string
	records := ds.Records()
	for i := range records {
		r := &records[i]
		if !keep(r) {
			continue
		}
		s, ok := slices[r.Type]
		if !ok {
			s = &models.Slice{Label: r.Type}
			slices[r.Type] = s
			order = append(order, r.Type)
		}
		s.Count++
		s.Value += value(r.Price)
	}

	fig := models.Figure{
		Kind:   models.KindPie,
		Title:  title,
		Series: []models.Series{},
		Slices: make([]models.Slice, 0, len(order)),
	}
	for _, label := range order {
		fig.Slices = append(fig.Slices, *slices[label])
	}
	sort.SliceStable(fig.Slices, func(i, j int) bool {
		return fig.Slices[i].Value > fig.Slices[j].Value
	})
	for i := range fig.Slices {
		fig.Slices[i].Color = colorAt(PieColors, i)
	}
	return fig
}

// Histogram bins the prices of the rows whose Type matches a pie click.
// maxBins caps Sturges' bin count.
func Histogram(ds Dataset, click *PieClick, maxBins int) models.Figure {
	title := "Price Range Distribution of Houses"
	keep := func(*models.Record) bool { return true }
	if click != nil {
		title = fmt.Sprintf("Histogram: %s", click.Label)
		label := click.Label
		keep = func(r *models.Record) bool { return r.Type == label }
	}

	var prices []float64
	records := ds.Records()
	for i := range records {
		r := &records[i]
		if keep(r) && r.Price != nil {
			prices = append(prices, *r.Price)
		}
	}

	return models.Figure{
		Kind:   models.KindHistogram,
		Title:  title,
		XLabel: "Price",
		YLabel: "count",
		Series: []models.Series{},
		Bins:   binPrices(prices, maxBins),
	}
}

func binPrices(values []float64, maxBins int) []models.Bin {
	bins := []models.Bin{}
	if len(values) == 0 {
		return bins
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	if lo == hi {
		return append(bins, models.Bin{Start: lo - 0.5, End: hi + 0.5, Center: lo, Count: len(sorted)})
	}

	n := sturges(len(sorted))
	if maxBins > 0 && n > maxBins {
		n = maxBins
	}

	edges := floats.Span(make([]float64, n+1), lo, hi)
	edges[n] = hi
	// stat.Histogram wants the last divider strictly above every value.
	dividers := append([]float64(nil), edges...)
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	for i, c := range counts {
		bins = append(bins, models.Bin{
			Start:  edges[i],
			End:    edges[i+1],
			Center: (edges[i] + edges[i+1]) / 2,
			Count:  int(c),
		})
	}
	return bins
}

func sturges(n int) int {
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
