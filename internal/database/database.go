package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"housingdash/server/internal/models"
)

// Database reads an imported snapshot back for serving.
type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// CountRecords returns the number of stored sales.
func (d *Database) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return n, nil
}

// LoadRecords returns every stored sale ordered by ID.
func (d *Database) LoadRecords(ctx context.Context) ([]models.Record, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			id,
			date,
			price,
			landsize,
			building_area,
			propertycount,
			rooms,
			COALESCE(suburb, '') as suburb,
			COALESCE(address, '') as address,
			COALESCE(type, '') as type,
			COALESCE(method, '') as method,
			COALESCE(seller_g, '') as seller_g,
			latitude,
			longitude
		FROM properties
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		var date time.Time
		var price, landsize, buildingArea, propertycount sql.NullFloat64
		var latitude, longitude sql.NullFloat64
		var rooms sql.NullInt64

		err := rows.Scan(
			&r.ID,
			&date,
			&price,
			&landsize,
			&buildingArea,
			&propertycount,
			&rooms,
			&r.Suburb,
			&r.Address,
			&r.Type,
			&r.Method,
			&r.SellerG,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}

		r.Date = date.UTC()
		r.Price = nullFloat(price)
		r.Landsize = nullFloat(landsize)
		r.BuildingArea = nullFloat(buildingArea)
		r.Propertycount = nullFloat(propertycount)
		r.Latitude = nullFloat(latitude)
		r.Longitude = nullFloat(longitude)
		if rooms.Valid {
			n := int(rooms.Int64)
			r.Rooms = &n
		}

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}
	return records, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
