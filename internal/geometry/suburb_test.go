package geometry

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housingdash/server/internal/models"
)

func record(id int64, suburb string, lng, lat float64) models.Record {
	return models.Record{
		ID:        id,
		Date:      time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
		Suburb:    suburb,
		Type:      "h",
		Latitude:  &lat,
		Longitude: &lng,
	}
}

func TestConvexHull(t *testing.T) {
	tests := []struct {
		name     string
		points   []orb.Point
		expected int // ring length including the closing point, 0 for nil
		area     float64
	}{
		{
			name:     "Square with interior point",
			points:   []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}},
			expected: 5,
			area:     1,
		},
		{
			name:     "Triangle",
			points:   []orb.Point{{0, 0}, {2, 0}, {0, 2}},
			expected: 4,
			area:     2,
		},
		{
			name:   "Collinear points",
			points: []orb.Point{{0, 0}, {1, 1}, {2, 2}},
		},
		{
			name:   "Too few points",
			points: []orb.Point{{0, 0}, {1, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hull := ConvexHull(tt.points)
			if tt.expected == 0 {
				assert.Nil(t, hull)
				return
			}
			require.Len(t, hull, tt.expected)
			assert.True(t, hull.Closed())
			assert.Equal(t, orb.CCW, hull.Orientation())
			assert.InDelta(t, tt.area, math.Abs(planar.Area(hull)), 1e-9)
		})
	}
}

func TestSuburbOutlines(t *testing.T) {
	records := []models.Record{
		record(0, "Abbotsford", 144.99, -37.80),
		record(1, "Abbotsford", 145.00, -37.80),
		record(2, "Abbotsford", 144.995, -37.81),
		record(3, "Abbotsford", 144.995, -37.81), // duplicate coordinate
		record(4, "Altona", 144.83, -37.87),
		record(5, "Altona", 144.84, -37.87),
		{ID: 6, Suburb: "Altona"},
	}

	fc := NewSuburbManager(nil).SuburbOutlines(records)
	require.Len(t, fc.Features, 1, "Altona has only two distinct points")

	f := fc.Features[0]
	assert.Equal(t, "Abbotsford", f.Properties["suburb"])
	assert.Equal(t, 3, f.Properties["point_count"])
	_, ok := f.Geometry.(orb.Polygon)
	assert.True(t, ok)
}

func TestPointFeatures(t *testing.T) {
	price := 850000.0
	rooms := 3
	withData := record(9, "Altona", 144.83, -37.87)
	withData.Price = &price
	withData.Rooms = &rooms
	records := []models.Record{withData, {ID: 10, Suburb: "Nowhere"}}

	fc := PointFeatures(records)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, orb.Point{144.83, -37.87}, f.Geometry)
	assert.Equal(t, int64(9), f.Properties["id"])
	assert.Equal(t, 850000.0, f.Properties["price"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
}
