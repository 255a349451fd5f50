package models

import "time"

// Record is one property sale. Numeric fields are nil when the source value is missing.
type Record struct {
	ID            int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	Date          time.Time `json:"date" gorm:"column:date;not null;index"`
	Price         *float64  `json:"price" gorm:"column:price"`
	Landsize      *float64  `json:"landsize" gorm:"column:landsize"`
	BuildingArea  *float64  `json:"building_area" gorm:"column:building_area"`
	Propertycount *float64  `json:"propertycount" gorm:"column:propertycount"`
	Rooms         *int      `json:"rooms" gorm:"column:rooms"`
	Suburb        string    `json:"suburb" gorm:"column:suburb"`
	Address       string    `json:"address" gorm:"column:address"`
	Type          string    `json:"type" gorm:"column:type;index"`
	Method        string    `json:"method" gorm:"column:method"`
	SellerG       string    `json:"seller" gorm:"column:seller_g"`
	Latitude      *float64  `json:"latitude" gorm:"column:latitude"`
	Longitude     *float64  `json:"longitude" gorm:"column:longitude"`
}

func (Record) TableName() string {
	return "properties"
}

// HasCoordinates reports whether the record can be placed on the map.
func (r *Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// YearlyAggregate sums the numeric fields of all records sold on one date.
type YearlyAggregate struct {
	Year  int       `json:"year"`
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
	Land  float64   `json:"land"`
	Area  float64   `json:"area"`
}

// PropertyDetail is the card shown for a clicked map point
type PropertyDetail struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
	Method  string `json:"method"`
	Seller  string `json:"seller"`
	Date    string `json:"date"`
}
