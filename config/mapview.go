package config

// MapView represents the map panel configuration
type MapView struct {
	Name      string  `json:"name" env:"MAP_NAME" envDefault:"melbourne"`
	CenterLat float64 `json:"center_lat" env:"MAP_CENTER_LAT" envDefault:"-37.8136"`
	CenterLng float64 `json:"center_lng" env:"MAP_CENTER_LNG" envDefault:"144.9631"`
	ZoomLevel int     `json:"zoom_level" env:"MAP_ZOOM" envDefault:"10"`
	Style     string  `json:"style" env:"MAP_STYLE" envDefault:"open-street-map"`
	Height    int     `json:"height" env:"MAP_HEIGHT" envDefault:"600"`
}

// DefaultMapView fills in any map setting left unset
var DefaultMapView = MapView{
	Name:      "melbourne",
	CenterLat: -37.8136,
	CenterLng: 144.9631,
	ZoomLevel: 10,
	Style:     "open-street-map",
	Height:    600,
}

// WithDefaults returns m with zero fields taken from DefaultMapView.
// A center is replaced only when both coordinates are zero.
func (m MapView) WithDefaults() MapView {
	if m.Name == "" {
		m.Name = DefaultMapView.Name
	}
	if m.CenterLat == 0 && m.CenterLng == 0 {
		m.CenterLat, m.CenterLng = DefaultMapView.CenterLat, DefaultMapView.CenterLng
	}
	if m.ZoomLevel <= 0 {
		m.ZoomLevel = DefaultMapView.ZoomLevel
	}
	if m.Style == "" {
		m.Style = DefaultMapView.Style
	}
	if m.Height <= 0 {
		m.Height = DefaultMapView.Height
	}
	return m
}
