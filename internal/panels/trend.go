package panels

import (
	"fmt"

	"housingdash/server/internal/models"
)

const (
	MetricPrice = "price"
	MetricLand  = "land"
	MetricArea  = "area"
)

// Metrics lists the aggregate columns the trend panel can plot, in display order.
var Metrics = []string{MetricPrice, MetricLand, MetricArea}

var metricLabels = map[string]string{
	MetricPrice: "Price",
	MetricLand:  "Land",
	MetricArea:  "Area",
}

// TrendInput is the state of the year slider and the metric dropdown.
type TrendInput struct {
	From    int
	To      int
	Metrics []string
}

// Trend plots the chosen per-date sums for sale years in [From, To].
func Trend(ds Dataset, in TrendInput) (models.Figure, error) {
	for _, m := range in.Metrics {
		if _, ok := metricLabels[m]; !ok {
			return models.Figure{}, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
		}
	}

	from, to := in.From, in.To
	if from > to {
		from, to = to, from
	}

	fig := models.Figure{
		Kind:   models.KindLine,
		Title:  "Custom Tick Labels",
		XLabel: "Date",
		Series: make([]models.Series, 0, len(in.Metrics)),
	}
	if len(in.Metrics) == 1 {
		fig.YLabel = in.Metrics[0]
	} else if len(in.Metrics) > 1 {
		fig.YLabel = "value"
	}

	var rows []models.YearlyAggregate
	for _, agg := range ds.Aggregates() {
		if agg.Year >= from && agg.Year <= to {
			rows = append(rows, agg)
		}
	}

	for i, metric := range in.Metrics {
		series := models.Series{
			Name:   metric,
			Color:  colorAt(seriesColors, i),
			Points: make([]models.Point, 0, len(rows)),
		}
		for _, agg := range rows {
			date := agg.Date
			series.Points = append(series.Points, models.Point{
				X:    float64(date.Unix()),
				Y:    metricValue(agg, metric),
				Date: &date,
			})
		}
		fig.Series = append(fig.Series, series)
	}
	return fig, nil
}

func metricValue(agg models.YearlyAggregate, metric string) float64 {
	switch metric {
	case MetricLand:
		return agg.Land
	case MetricArea:
		return agg.Area
	default:
		return agg.Price
	}
}

// MetricLabel returns the dropdown label for a metric value.
func MetricLabel(metric string) string {
	return metricLabels[metric]
}
