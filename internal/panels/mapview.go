package panels

import (
	"math"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"housingdash/server/config"
	"housingdash/server/internal/models"
)

const detailDateLayout = "2006-01-02"

// MapClick identifies a clicked map point, preferably by record ID. When
// only coordinates are known the nearest plotted record is used.
type MapClick struct {
	ID  *int64   `json:"id,omitempty"`
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// MapResult is the map figure plus the detail card for a resolved click.
type MapResult struct {
	Figure models.Figure          `json:"figure"`
	Detail *models.PropertyDetail `json:"detail"`
}

// Map always returns the full property map, one series per property type.
func Map(ds Dataset, view config.MapView, click *MapClick) MapResult {
	plotted := plottedRecords(ds.Records())

	byType := make(map[string]*models.Series)
	var types []string
	var bounds orb.MultiPoint
	for _, r := range plotted {
		s, ok := byType[r.Type]
		if !ok {
			s = &models.Series{Name: r.Type, Points: []models.Point{}}
			byType[r.Type] = s
			types = append(types, r.Type)
		}
		s.Points = append(s.Points, models.Point{
			ID:    int64Ptr(r.ID),
			X:     *r.Longitude,
			Y:     *r.Latitude,
			Hover: hoverFields(r),
		})
		bounds = append(bounds, orb.Point{*r.Longitude, *r.Latitude})
	}
	sort.Strings(types)

	fig := models.Figure{
		Kind:   models.KindMap,
		Title:  "Property Distribution Map",
		XLabel: "Longitude",
		YLabel: "Latitude",
		Series: make([]models.Series, 0, len(types)),
		Map:    mapLayout(view, bounds),
	}
	for i, t := range types {
		s := byType[t]
		s.Color = colorAt(seriesColors, i)
		fig.Series = append(fig.Series, *s)
	}

	res := MapResult{Figure: fig}
	if r := resolveClick(ds, plotted, click); r != nil {
		res.Detail = Detail(r)
	}
	return res
}

// Detail builds the property card for a record.
func Detail(r *models.Record) *models.PropertyDetail {
	return &models.PropertyDetail{
		ID:      r.ID,
		Address: r.Address,
		Method:  r.Method,
		Seller:  r.SellerG,
		Date:    r.Date.Format(detailDateLayout),
	}
}

func plottedRecords(records []models.Record) []*models.Record {
	var out []*models.Record
	for i := range records {
		if records[i].HasCoordinates() {
			out = append(out, &records[i])
		}
	}
	return out
}

func resolveClick(ds Dataset, plotted []*models.Record, click *MapClick) *models.Record {
	if click == nil {
		return nil
	}
	if click.ID != nil {
		r, ok := ds.ByID(*click.ID)
		if !ok {
			return nil
		}
		return r
	}
	if click.Lat == nil || click.Lon == nil {
		return nil
	}

	target := orb.Point{*click.Lon, *click.Lat}
	var nearest *models.Record
	best := math.Inf(1)
	for _, r := range plotted {
		d := geo.Distance(target, orb.Point{*r.Longitude, *r.Latitude})
		if d < best {
			best = d
			nearest = r
		}
	}
	return nearest
}

func mapLayout(view config.MapView, points orb.MultiPoint) *models.MapLayout {
	view = view.WithDefaults()
	layout := &models.MapLayout{
		CenterLat: view.CenterLat,
		CenterLng: view.CenterLng,
		Zoom:      view.ZoomLevel,
		Style:     view.Style,
		Height:    view.Height,
	}
	if len(points) == 0 {
		return layout
	}
	b := points.Bound()
	center := b.Center()
	layout.CenterLng, layout.CenterLat = center.Lon(), center.Lat()
	layout.Bounds = [4]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}
	return layout
}

func hoverFields(r *models.Record) map[string]string {
	hover := map[string]string{"Suburb": r.Suburb}
	if r.Rooms != nil {
		hover["Rooms"] = strconv.Itoa(*r.Rooms)
	}
	if r.Price != nil {
		hover["Price"] = formatNumber(*r.Price)
	}
	return hover
}
