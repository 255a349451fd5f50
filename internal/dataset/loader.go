package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"housingdash/server/internal/models"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidDate   = errors.New("invalid date")
)

// Column names as they appear in the source file, misspellings included.
const (
	ColDate          = "Date"
	ColPrice         = "Price"
	ColLandsize      = "Landsize"
	ColBuildingArea  = "BuildingArea"
	ColPropertycount = "Propertycount"
	ColType          = "Type"
	ColRooms         = "Rooms"
	ColSuburb        = "Suburb"
	ColLatitude      = "Lattitude"
	ColLongitude     = "Longtitude"
	ColAddress       = "Address"
	ColMethod        = "Method"
	ColSeller        = "SellerG"
)

var requiredColumns = []string{
	ColDate, ColPrice, ColLandsize, ColBuildingArea, ColPropertycount, ColType,
	ColRooms, ColSuburb, ColLatitude, ColLongitude, ColAddress, ColMethod, ColSeller,
}

// Day-first forms are tried before ISO because the source data is Australian.
var dateLayouts = []string{
	"2/1/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// LoadFile reads a CSV file into a Table.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses CSV rows into records. Record IDs are the zero-based row
// ordinal, so loading the same file twice yields the same IDs.
func Load(r io.Reader) (*Table, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}
	return NewTable(records)
}

// ReadRecords parses CSV rows without building a Table.
func ReadRecords(r io.Reader) ([]models.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec.ID = int64(len(records))
		records = append(records, rec)
	}
	return records, nil
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (models.Record, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := ParseDate(field(ColDate))
	if err != nil {
		return models.Record{}, err
	}

	rec := models.Record{
		Date:          date,
		Price:         parseFloat(field(ColPrice)),
		Landsize:      parseFloat(field(ColLandsize)),
		BuildingArea:  parseFloat(field(ColBuildingArea)),
		Propertycount: parseFloat(field(ColPropertycount)),
		Suburb:        field(ColSuburb),
		Address:       field(ColAddress),
		Type:          field(ColType),
		Method:        field(ColMethod),
		SellerG:       field(ColSeller),
		Latitude:      parseFloat(field(ColLatitude)),
		Longitude:     parseFloat(field(ColLongitude)),
	}
	if rooms := parseFloat(field(ColRooms)); rooms != nil {
		n := int(*rooms)
		rec.Rooms = &n
	}
	return rec, nil
}

// ParseDate accepts the date forms found in the housing exports.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func parseFloat(s string) *float64 {
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "na") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
