package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"housingdash/server/internal/models"
)

// Renderer draws figures as PNG images.
type Renderer struct {
	width  int
	height int
	logger *logrus.Logger
}

func NewRenderer(width, height int, logger *logrus.Logger) *Renderer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Renderer{width: width, height: height, logger: logger}
}

// PNG writes fig to w. Figures the chart library cannot draw (no data, a
// single point, a zero total) come out as a blank image carrying the
// title; only write failures are returned.
func (r *Renderer) PNG(fig models.Figure, w io.Writer) error {
	if fig.Empty() {
		return r.blank(fig.Title, w)
	}

	var buf bytes.Buffer
	var err error
	switch fig.Kind {
	case models.KindLine:
		err = r.lineChart(fig).Render(chart.PNG, &buf)
	case models.KindScatter, models.KindMap:
		err = r.scatterChart(fig).Render(chart.PNG, &buf)
	case models.KindPie:
		err = r.pieChart(fig).Render(chart.PNG, &buf)
	case models.KindHistogram:
		err = r.barChart(fig).Render(chart.PNG, &buf)
	default:
		err = fmt.Errorf("unsupported figure kind %q", fig.Kind)
	}
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"kind":  fig.Kind,
			"title": fig.Title,
		}).Warn("Chart render failed; showing blank fallback")
		return r.blank(fig.Title, w)
	}

	_, err = buf.WriteTo(w)
	return err
}

func (r *Renderer) lineChart(fig models.Figure) chart.Chart {
	series := make([]chart.Series, 0, len(fig.Series))
	for _, s := range fig.Series {
		xs := make([]time.Time, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			if p.Date != nil {
				xs = append(xs, *p.Date)
			} else {
				xs = append(xs, time.Unix(int64(p.X), 0).UTC())
			}
			ys = append(ys, p.Y)
		}
		col := parseColor(s.Color, chart.ColorBlue)
		series = append(series, chart.TimeSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 2},
		})
	}

	ch := chart.Chart{
		Title:      fig.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: fig.XLabel, ValueFormatter: chart.TimeValueFormatter},
		YAxis:      chart.YAxis{Name: fig.YLabel},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

// scatterChart also draws the map: longitude on x, latitude on y.
func (r *Renderer) scatterChart(fig models.Figure) chart.Chart {
	series := make([]chart.Series, 0, len(fig.Series))
	for _, s := range fig.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(parseColor(s.Color, chart.ColorBlue)),
		})
	}

	ch := chart.Chart{
		Title:      fig.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: fig.XLabel},
		YAxis:      chart.YAxis{Name: fig.YLabel},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func (r *Renderer) pieChart(fig models.Figure) chart.PieChart {
	values := make([]chart.Value, 0, len(fig.Slices))
	for _, s := range fig.Slices {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", s.Label, s.Count),
			Value: s.Value,
			Style: chart.Style{FillColor: parseColor(s.Color, chart.ColorBlue)},
		})
	}
	return chart.PieChart{
		Title:  fig.Title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
}

func (r *Renderer) barChart(fig models.Figure) chart.BarChart {
	bars := make([]chart.Value, 0, len(fig.Bins))
	for _, b := range fig.Bins {
		bars = append(bars, chart.Value{
			Label: compact(b.Center),
			Value: float64(b.Count),
		})
	}

	barWidth := 30
	if n := len(bars); n > 0 && r.width/(n+1) < barWidth {
		barWidth = max(r.width/(n+1)-4, 4)
	}
	return chart.BarChart{
		Title:    fig.Title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: barWidth,
		Bars:     bars,
	}
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorTransparent,
		StrokeWidth: 0,
		DotWidth:    3,
		DotColor:    col,
	}
}

func parseColor(hex string, fallback drawing.Color) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return fallback
	}
	return drawing.ColorFromHex(hex)
}

func compact(v float64) string {
	switch {
	case v >= 1e6 || v <= -1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3 || v <= -1e3:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func (r *Renderer) blank(title string, w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if title != "" {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.Black),
			Face: basicfont.Face7x13,
		}
		width := d.MeasureString(title).Ceil()
		d.Dot = fixed.P(max((r.width-width)/2, 4), 24)
		d.DrawString(title)
	}
	return png.Encode(w, img)
}
