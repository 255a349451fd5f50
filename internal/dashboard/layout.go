package dashboard

import (
	"strconv"

	"housingdash/server/internal/panels"
)

type ControlKind string

const (
	ControlRangeSlider ControlKind = "range_slider"
	ControlDropdown    ControlKind = "dropdown"
	ControlRadio       ControlKind = "radio"
	ControlGraph       ControlKind = "graph"
)

// Option is one entry of a dropdown or radio control
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Control struct {
	ID      string            `json:"id"`
	Kind    ControlKind       `json:"kind"`
	Label   string            `json:"label,omitempty"`
	Options []Option          `json:"options,omitempty"`
	Multi   bool              `json:"multi,omitempty"`
	Min     int               `json:"min,omitempty"`
	Max     int               `json:"max,omitempty"`
	Marks   map[string]string `json:"marks,omitempty"`
	Default interface{}       `json:"default"`
}

type Tab struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Title      string    `json:"title,omitempty"`
	Paragraphs []string  `json:"paragraphs,omitempty"`
	Controls   []Control `json:"controls,omitempty"`
	Outputs    []string  `json:"outputs,omitempty"`

	// Endpoints maps each output to the API route that renders it.
	Endpoints map[string]string `json:"endpoints,omitempty"`
}

type Layout struct {
	DefaultTab string `json:"default_tab"`
	Tabs       []Tab  `json:"tabs"`
	Edges      []Edge `json:"callbacks"`
}

var introParagraphs = []string{
	"Welcome to Our Dash Application ! This interactive dashboard provides insightful visualizations and analysis of real estate data from Melbourne.",
	"Explore various tabs to discover trends, correlations, and key insights about housing prices, property features, and market trends. Use interactive components to customize your viewing experience and gain valuable information for real estate decision-making",
	"Enjoy exploring the data and uncovering the story behind Melbourne's housing market!",
}

// BuildLayout describes the tabs and controls for a dataset spanning
// the given sale years.
func BuildLayout(years []int) Layout {
	lo, hi := 0, 0
	if len(years) > 0 {
		lo, hi = years[0], years[len(years)-1]
	}
	marks := make(map[string]string, len(years))
	for _, y := range years {
		marks[strconv.Itoa(y)] = strconv.Itoa(y)
	}

	metricOptions := make([]Option, 0, len(panels.Metrics))
	for _, m := range panels.Metrics {
		metricOptions = append(metricOptions, Option{Label: panels.MetricLabel(m), Value: m})
	}
	variableOptions := make([]Option, 0, len(panels.CorrelationVariables))
	for _, v := range panels.CorrelationVariables {
		variableOptions = append(variableOptions, Option{Label: v, Value: v})
	}

	return Layout{
		DefaultTab: "trend",
		Tabs: []Tab{
			{
				ID:         "intro",
				Label:      "Introduction",
				Title:      "Introduction",
				Paragraphs: introParagraphs,
			},
			{
				ID:    "trend",
				Label: "Trend Analysis",
				Title: "Melbourne Housing Snapshot",
				Controls: []Control{
					{ID: "trend-years", Kind: ControlRangeSlider, Label: "Select the Year", Min: lo, Max: hi, Marks: marks, Default: []int{lo, hi}},
					{ID: "trend-metrics", Kind: ControlDropdown, Label: "Opt for the variables", Options: metricOptions, Multi: true, Default: []string{}},
				},
				Outputs:   []string{"trend-graph"},
				Endpoints: map[string]string{"trend-graph": "/api/trend"},
			},
			{
				ID:    "correlation",
				Label: "Correlation Plot",
				Title: "Scatter Plot",
				Controls: []Control{
					{ID: "correlation-variable", Kind: ControlRadio, Label: "Choose the variable to assess its correlation with price", Options: variableOptions, Default: panels.CorrelationVariables[0]},
				},
				Outputs: []string{"correlation-graph", "correlation-value"},
				Endpoints: map[string]string{
					"correlation-graph": "/api/correlation",
					"correlation-value": "/api/correlation",
				},
			},
			{
				ID:    "comparison",
				Label: "Interactive Comparison",
				Title: "Interactive Charts",
				Controls: []Control{
					{ID: "pie-chart", Kind: ControlGraph},
					{ID: "histogram", Kind: ControlGraph},
				},
				Outputs: []string{"pie-chart", "histogram"},
				Endpoints: map[string]string{
					"pie-chart": "/api/comparison/pie",
					"histogram": "/api/comparison/histogram",
				},
			},
			{
				ID:    "map",
				Label: "Custom Insights",
				Title: "Property Distribution Map",
				Controls: []Control{
					{ID: "property-map", Kind: ControlGraph},
				},
				Outputs: []string{"property-map", "property-details"},
				Endpoints: map[string]string{
					"property-map":     "/api/map",
					"property-details": "/api/map",
				},
			},
		},
		Edges: Callbacks,
	}
}
