package models

import "time"

type FigureKind string

const (
	KindLine      FigureKind = "line"
	KindScatter   FigureKind = "scatter"
	KindPie       FigureKind = "pie"
	KindHistogram FigureKind = "histogram"
	KindMap       FigureKind = "map"
)

// Figure is a renderer-agnostic chart description
type Figure struct {
	Kind   FigureKind `json:"kind"`
	Title  string     `json:"title"`
	XLabel string     `json:"x_label,omitempty"`
	YLabel string     `json:"y_label,omitempty"`
	Series []Series   `json:"series"`
	Slices []Slice    `json:"slices,omitempty"`
	Bins   []Bin      `json:"bins,omitempty"`
	Map    *MapLayout `json:"map,omitempty"`
}

type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Points []Point `json:"points"`
}

// Point carries the ID of the record it was drawn from so that click
// events can be resolved without relying on plot order.
type Point struct {
	ID    *int64            `json:"id,omitempty"`
	X     float64           `json:"x"`
	Y     float64           `json:"y"`
	Date  *time.Time        `json:"date,omitempty"`
	Hover map[string]string `json:"hover,omitempty"`
}

type Slice struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

type Bin struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Center float64 `json:"center"`
	Count  int     `json:"count"`
}

type MapLayout struct {
	CenterLat float64    `json:"center_lat"`
	CenterLng float64    `json:"center_lng"`
	Zoom      int        `json:"zoom"`
	Style     string     `json:"style"`
	Height    int        `json:"height"`
	Bounds    [4]float64 `json:"bounds"` // min lng, min lat, max lng, max lat
}

// Empty reports whether the figure has nothing to draw.
func (f *Figure) Empty() bool {
	if len(f.Slices) > 0 || len(f.Bins) > 0 {
		return false
	}
	for _, s := range f.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// SliceCount is the number of rows behind a pie chart.
func (f *Figure) SliceCount() int {
	total := 0
	for _, s := range f.Slices {
		total += s.Count
	}
	return total
}

// BinCount is the number of rows behind a histogram.
func (f *Figure) BinCount() int {
	total := 0
	for _, b := range f.Bins {
		total += b.Count
	}
	return total
}

// PointCount is the number of points across all series.
func (f *Figure) PointCount() int {
	total := 0
	for _, s := range f.Series {
		total += len(s.Points)
	}
	return total
}
