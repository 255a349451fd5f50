package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"housingdash/server/config"
	"housingdash/server/internal/dashboard"
	"housingdash/server/internal/dataset"
	"housingdash/server/internal/geometry"
	"housingdash/server/internal/models"
	"housingdash/server/internal/panels"
	"housingdash/server/internal/render"
)

const (
	formatJSON = "json"
	formatPNG  = "png"
)

var errBadQuery = errors.New("invalid query parameter")

type Handler struct {
	table    *dataset.Table
	cfg      *config.Config
	logger   *logrus.Logger
	renderer *render.Renderer
	layout   dashboard.Layout
	points   *geojson.FeatureCollection
	outlines *geojson.FeatureCollection
}

// NewHandler precomputes everything that depends only on the table.
func NewHandler(table *dataset.Table, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	suburbs := geometry.NewSuburbManager(logger)
	return &Handler{
		table:    table,
		cfg:      cfg,
		logger:   logger,
		renderer: render.NewRenderer(cfg.Charts.Width, cfg.Charts.Height, logger),
		layout:   dashboard.BuildLayout(table.Years()),
		points:   geometry.PointFeatures(table.Records()),
		outlines: suburbs.SuburbOutlines(table.Records()),
	}
}

func (h *Handler) Health(c *gin.Context) {
	from, to := h.table.YearRange()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"records": h.table.Len(),
		"years":   []int{from, to},
	})
}

func (h *Handler) GetLayout(c *gin.Context) {
	c.JSON(http.StatusOK, h.layout)
}

func (h *Handler) GetTrend(c *gin.Context) {
	from, to := h.table.YearRange()
	from, err := queryInt(c, "from", from)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	to, err = queryInt(c, "to", to)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	fig, err := panels.Trend(h.table, panels.TrendInput{
		From:    from,
		To:      to,
		Metrics: queryList(c, "metrics"),
	})
	if err != nil {
		h.badRequest(c, err)
		return
	}
	h.respond(c, fig, fig)
}

func (h *Handler) GetCorrelation(c *gin.Context) {
	variable := c.DefaultQuery("variable", panels.CorrelationVariables[0])
	res, err := panels.Correlation(h.table, variable)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	h.respond(c, res.Figure, res)
}

func (h *Handler) GetPie(c *gin.Context) {
	var click *panels.HistogramClick
	if raw, ok := c.GetQuery("x"); ok && raw != "" {
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.badRequest(c, fmt.Errorf("%w: x=%q", errBadQuery, raw))
			return
		}
		click = &panels.HistogramClick{X: x}
	}

	fig := panels.Pie(h.table, click)
	h.respond(c, fig, fig)
}

func (h *Handler) GetHistogram(c *gin.Context) {
	var click *panels.PieClick
	if label := c.Query("label"); label != "" {
		click = &panels.PieClick{Label: label}
	}

	fig := panels.Histogram(h.table, click, h.cfg.Charts.HistogramBins)
	h.respond(c, fig, fig)
}

func (h *Handler) GetMap(c *gin.Context) {
	click, err := mapClick(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	res := panels.Map(h.table, h.cfg.Map, click)
	h.respond(c, res.Figure, res)
}

func (h *Handler) GetMapPoints(c *gin.Context) {
	h.geoJSON(c, h.points)
}

func (h *Handler) GetSuburbOutlines(c *gin.Context) {
	h.geoJSON(c, h.outlines)
}

func (h *Handler) geoJSON(c *gin.Context, fc *geojson.FeatureCollection) {
	data, err := fc.MarshalJSON()
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode GeoJSON")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode GeoJSON"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// respond writes payload as JSON, or fig as a PNG when format=png.
func (h *Handler) respond(c *gin.Context, fig models.Figure, payload interface{}) {
	switch format := c.DefaultQuery("format", formatJSON); format {
	case formatJSON:
		c.JSON(http.StatusOK, payload)
	case formatPNG:
		var buf bytes.Buffer
		if err := h.renderer.PNG(fig, &buf); err != nil {
			h.logger.WithError(err).Error("Failed to render figure")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render figure"})
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	default:
		h.badRequest(c, fmt.Errorf("%w: format=%q", errBadQuery, format))
	}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.WithError(err).WithField("path", c.Request.URL.Path).Warn("Rejected request")
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadQuery, key, raw)
	}
	return v, nil
}

// queryList accepts both ?k=a,b and ?k=a&k=b.
func queryList(c *gin.Context, key string) []string {
	out := []string{}
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func mapClick(c *gin.Context) (*panels.MapClick, error) {
	var click panels.MapClick
	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: id=%q", errBadQuery, raw)
		}
		click.ID = &id
	}

	rawLat, rawLon := c.Query("lat"), c.Query("lon")
	if (rawLat == "") != (rawLon == "") {
		return nil, fmt.Errorf("%w: lat and lon must be given together", errBadQuery)
	}
	if rawLat != "" {
		lat, err := strconv.ParseFloat(rawLat, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: lat=%q", errBadQuery, rawLat)
		}
		lon, err := strconv.ParseFloat(rawLon, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: lon=%q", errBadQuery, rawLon)
		}
		click.Lat, click.Lon = &lat, &lon
	}

	if click.ID == nil && click.Lat == nil {
		return nil, nil
	}
	return &click, nil
}
