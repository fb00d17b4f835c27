package places

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// ImportStats counts what ReadCSV did with the input rows.
type ImportStats struct {
	Imported int
	Skipped  int
}

// ReadCSV streams a places file with a name,lat,lon[,kind,region] header and
// hands rows to flush in batches of batchSize. Rows without a name or with
// coordinates out of range are skipped.
func ReadCSV(r io.Reader, batchSize int, flush func([]domain.Place) error) (ImportStats, error) {
	var stats ImportStats
	if batchSize <= 0 {
		batchSize = 500
	}

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return stats, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	for _, required := range []string{"name", "lat", "lon"} {
		if _, ok := cols[required]; !ok {
			return stats, fmt.Errorf("missing column %q: %w", required, domain.ErrInvalidInput)
		}
	}

	batch := make([]domain.Place, 0, batchSize)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.Skipped++
			continue
		}

		p, ok := parseRow(record, cols)
		if !ok {
			stats.Skipped++
			continue
		}
		batch = append(batch, p)

		if len(batch) >= batchSize {
			if err := flush(batch); err != nil {
				return stats, err
			}
			stats.Imported += len(batch)
			batch = make([]domain.Place, 0, batchSize)
		}
	}

	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return stats, err
		}
		stats.Imported += len(batch)
	}
	return stats, nil
}

func parseRow(record []string, cols map[string]int) (domain.Place, bool) {
	name := getField(record, cols, "name")
	lat, errLat := strconv.ParseFloat(getField(record, cols, "lat"), 64)
	lon, errLon := strconv.ParseFloat(getField(record, cols, "lon"), 64)
	if name == "" || errLat != nil || errLon != nil {
		return domain.Place{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.Place{}, false
	}

	kind := strings.ToLower(getField(record, cols, "kind"))
	if kind != "tourist" {
		kind = "city"
	}
	return domain.Place{
		Name:     name,
		Location: domain.GeoPoint{Lat: lat, Lon: lon},
		Kind:     kind,
		Region:   getField(record, cols, "region"),
	}, true
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
