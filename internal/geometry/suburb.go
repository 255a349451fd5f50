package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"housingdash/server/internal/models"
)

type Suburb struct {
	Name   string
	Points []orb.Point
	Hull   *geojson.Feature
}

type SuburbManager struct {
	logger *logrus.Logger
}

func NewSuburbManager(logger *logrus.Logger) *SuburbManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &SuburbManager{logger: logger}
}

// GroupSuburbs collects the distinct plotted coordinates of each suburb.
func (sm *SuburbManager) GroupSuburbs(records []models.Record) map[string]*Suburb {
	suburbs := make(map[string]*Suburb)
	seen := make(map[string]map[orb.Point]bool)

	for i := range records {
		r := &records[i]
		if !r.HasCoordinates() || r.Suburb == "" {
			continue
		}
		s, ok := suburbs[r.Suburb]
		if !ok {
			s = &Suburb{Name: r.Suburb}
			suburbs[r.Suburb] = s
			seen[r.Suburb] = make(map[orb.Point]bool)
		}
		p := orb.Point{*r.Longitude, *r.Latitude}
		if !seen[r.Suburb][p] {
			seen[r.Suburb][p] = true
			s.Points = append(s.Points, p)
		}
	}
	return suburbs
}

// GenerateHulls attaches a convex hull feature to every suburb with at least
// three non-collinear points.
func (sm *SuburbManager) GenerateHulls(suburbs map[string]*Suburb) {
	for name, suburb := range suburbs {
		if len(suburb.Points) < 3 {
			sm.logger.Debugf("Not enough points for suburb %s (minimum 3 required)", name)
			continue
		}

		hull := ConvexHull(suburb.Points)
		if hull == nil {
			sm.logger.Debugf("Points for suburb %s are collinear", name)
			continue
		}

		feature := geojson.NewFeature(orb.Polygon{hull})
		feature.Properties = geojson.Properties{
			"suburb":      suburb.Name,
			"point_count": len(suburb.Points),
			"hull_type":   "convex",
		}
		suburb.Hull = feature
	}
}

// SuburbOutlines returns the hull of every suburb, ordered by name.
func (sm *SuburbManager) SuburbOutlines(records []models.Record) *geojson.FeatureCollection {
	suburbs := sm.GroupSuburbs(records)
	sm.GenerateHulls(suburbs)

	names := make([]string, 0, len(suburbs))
	for name := range suburbs {
		names = append(names, name)
	}
	sort.Strings(names)

	fc := geojson.NewFeatureCollection()
	for _, name := range names {
		if hull := suburbs[name].Hull; hull != nil {
			fc.Append(hull)
		}
	}
	return fc
}

// PointFeatures returns one point feature per record with coordinates.
func PointFeatures(records []models.Record) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range records {
		r := &records[i]
		if !r.HasCoordinates() {
			continue
		}
		f := geojson.NewFeature(orb.Point{*r.Longitude, *r.Latitude})
		f.ID = r.ID
		f.Properties = geojson.Properties{
			"id":      r.ID,
			"type":    r.Type,
			"suburb":  r.Suburb,
			"address": r.Address,
		}
		if r.Rooms != nil {
			f.Properties["rooms"] = *r.Rooms
		}
		if r.Price != nil {
			f.Properties["price"] = *r.Price
		}
		fc.Append(f)
	}
	return fc
}

// ConvexHull computes the hull with Andrew's monotone chain. The returned
// ring is closed and counter-clockwise; nil when the points are collinear.
func ConvexHull(points []orb.Point) orb.Ring {
	if len(points) < 3 {
		return nil
	}

	pts := append([]orb.Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	hull := make([]orb.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// The last point repeats the first, which closes the ring.
	if len(hull) < 4 {
		return nil
	}
	return orb.Ring(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
