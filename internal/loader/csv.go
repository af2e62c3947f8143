// Package loader reads address rows from bulk data files.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"address-api/internal/models"
)

var requiredColumns = []string{"name", "latitude", "longitude"}

// CSVSource reads addresses from a CSV file with a header row containing at
// least the name, latitude and longitude columns.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSV source for the file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Read parses the whole file. Every returned address has IsDeleted unset.
func (s *CSVSource) Read(ctx context.Context) ([]models.NewAddress, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to open file: %w", err)
	}
	defer file.Close()

	return ParseCSV(ctx, file)
}

// ParseCSV decodes address rows from r. Columns are matched by header name,
// case-insensitively; extra columns are ignored.
func ParseCSV(ctx context.Context, r io.Reader) ([]models.NewAddress, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var addresses []models.NewAddress
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loader: failed to read record: %w", err)
		}

		addr, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("loader: line %d: %w", line, err)
		}
		addresses = append(addresses, addr)
	}

	return addresses, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}

	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("loader: missing required column %q", col)
		}
	}
	return index, nil
}

func parseRecord(record []string, index map[string]int) (models.NewAddress, error) {
	field := func(col string) (string, error) {
		i := index[col]
		if i >= len(record) {
			return "", fmt.Errorf("missing value for %q", col)
		}
		return strings.TrimSpace(record[i]), nil
	}

	name, err := field("name")
	if err != nil {
		return models.NewAddress{}, err
	}

	latStr, err := field("latitude")
	if err != nil {
		return models.NewAddress{}, err
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.NewAddress{}, fmt.Errorf("invalid latitude: %s", latStr)
	}

	lngStr, err := field("longitude")
	if err != nil {
		return models.NewAddress{}, err
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return models.NewAddress{}, fmt.Errorf("invalid longitude: %s", lngStr)
	}

	return models.NewAddress{Name: name, Latitude: lat, Longitude: lng}, nil
}
