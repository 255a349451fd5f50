package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"housingdash/server/internal/dataset"
	"housingdash/server/internal/geometry"
)

// SuburbSummary describes the sales recorded in one suburb
type SuburbSummary struct {
	Name        string         `json:"name"`
	Sales       int            `json:"sales"`
	Plotted     int            `json:"plotted"`
	MedianPrice *float64       `json:"median_price"`
	Types       map[string]int `json:"types"`
}

type SuburbDetail struct {
	SuburbSummary
	Outline *geojson.Feature `json:"outline"`
}

type SuburbHandler struct {
	logger    *logrus.Logger
	summaries []SuburbSummary
	byName    map[string]int
	outlines  map[string]*geojson.Feature
}

func NewSuburbHandler(table *dataset.Table, logger *logrus.Logger) *SuburbHandler {
	if logger == nil {
		logger = logrus.New()
	}

	manager := geometry.NewSuburbManager(logger)
	grouped := manager.GroupSuburbs(table.Records())
	manager.GenerateHulls(grouped)

	summaries := make(map[string]*SuburbSummary)
	prices := make(map[string][]float64)
	records := table.Records()
	for i := range records {
		r := &records[i]
		if r.Suburb == "" {
			continue
		}
		s, ok := summaries[r.Suburb]
		if !ok {
			s = &SuburbSummary{Name: r.Suburb, Types: make(map[string]int)}
			summaries[r.Suburb] = s
		}
		s.Sales++
		if r.HasCoordinates() {
			s.Plotted++
		}
		if r.Type != "" {
			s.Types[r.Type]++
		}
		if r.Price != nil {
			prices[r.Suburb] = append(prices[r.Suburb], *r.Price)
		}
	}

	h := &SuburbHandler{
		logger:    logger,
		summaries: make([]SuburbSummary, 0, len(summaries)),
		byName:    make(map[string]int, len(summaries)),
		outlines:  make(map[string]*geojson.Feature),
	}
	for name, s := range summaries {
		if xs := prices[name]; len(xs) > 0 {
			sort.Float64s(xs)
			median := stat.Quantile(0.5, stat.Empirical, xs, nil)
			s.MedianPrice = &median
		}
		if g, ok := grouped[name]; ok && g.Hull != nil {
			h.outlines[strings.ToLower(name)] = g.Hull
		}
		h.summaries = append(h.summaries, *s)
	}
	sort.Slice(h.summaries, func(i, j int) bool { return h.summaries[i].Name < h.summaries[j].Name })
	for i, s := range h.summaries {
		h.byName[strings.ToLower(s.Name)] = i
	}

	return h
}

// SetupSuburbRoutes adds suburb routes to the router
func SetupSuburbRoutes(router *gin.Engine, h *SuburbHandler) {
	router.GET("/api/suburbs", h.ListSuburbs)
	router.GET("/api/suburbs/:name", h.GetSuburb)
}

// ListSuburbs returns every suburb ordered by name
func (h *SuburbHandler) ListSuburbs(c *gin.Context) {
	c.JSON(http.StatusOK, h.summaries)
}

// GetSuburb returns one suburb and its outline. Names match case-insensitively.
func (h *SuburbHandler) GetSuburb(c *gin.Context) {
	key := strings.ToLower(c.Param("name"))
	i, ok := h.byName[key]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Suburb not found"})
		return
	}
	c.JSON(http.StatusOK, SuburbDetail{
		SuburbSummary: h.summaries[i],
		Outline:       h.outlines[key],
	})
}
