package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var latColumns = []string{"lat", "latitude", "y"}
var lonColumns = []string{"lon", "lng", "long", "longitude", "x"}

// LoadPointsCSV reads a CSV file with a header row and builds one point
// feature per record. The latitude and longitude columns are found by
// name (lat/latitude/y and lon/lng/long/longitude/x, case-insensitive);
// every other column becomes a feature property.
func LoadPointsCSV(path string) (Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Collection{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return Collection{}, err
	}
	if len(records) < 2 {
		return Collection{}, fmt.Errorf("need a header row and at least one record")
	}

	header := records[0]
	latIdx := findColumn(header, latColumns)
	lonIdx := findColumn(header, lonColumns)
	if latIdx < 0 || lonIdx < 0 {
		return Collection{}, fmt.Errorf("no latitude/longitude columns in header %v", header)
	}

	var c Collection
	for n, record := range records[1:] {
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[latIdx]), 64)
		if err != nil {
			return Collection{}, fmt.Errorf("record %d: latitude: %w", n+1, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[lonIdx]), 64)
		if err != nil {
			return Collection{}, fmt.Errorf("record %d: longitude: %w", n+1, err)
		}
		props := make(map[string]interface{})
		for i, cell := range record {
			if i == latIdx || i == lonIdx || i >= len(header) {
				continue
			}
			props[header[i]] = cellValue(cell)
		}
		c.Features = append(c.Features, Feature{
			Properties: props,
			Geometry:   Geometry{Type: "Point", Rings: [][][]float64{{{lon, lat}}}},
		})
	}
	return c, nil
}

// LoadAttributesCSV reads a CSV file with a header row into one map per
// record. Numeric-looking cells become float64; empty cells are omitted
// so callers see them as missing values.
func LoadAttributesCSV(path string) ([]map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("need a header row and at least one record")
	}

	header := records[0]
	rows := make([]map[string]interface{}, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]interface{}, len(header))
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			row[header[i]] = cellValue(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func findColumn(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func cellValue(cell string) interface{} {
	cell = strings.TrimSpace(cell)
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	return cell
}
