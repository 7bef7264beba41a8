package launches

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"launch-dashboard/internal/models"
)

// Column headers of the launch data file.
const (
	ColFlightNumber           = "Flight Number"
	ColLaunchSite             = "Launch Site"
	ColClass                  = "class"
	ColPayloadMass            = "Payload Mass (kg)"
	ColBoosterVersion         = "Booster Version"
	ColBoosterVersionCategory = "Booster Version Category"
)

var requiredColumns = []string{
	ColFlightNumber,
	ColLaunchSite,
	ColClass,
	ColPayloadMass,
	ColBoosterVersionCategory,
}

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMalformedRow  = errors.New("malformed row")
)

// FileAccessError is returned when the launch data cannot be loaded.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("load launch data %q: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// Load reads the CSV file at path.
func Load(path string) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	rs, err := Parse(f)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	return rs, nil
}

// Parse decodes launch records from CSV. Any malformed row fails the whole
// parse.
func Parse(r io.Reader) (*RecordSet, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	boosterIdx, hasBooster := index[ColBoosterVersion]

	var records []models.LaunchRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}

		field := func(col string) string {
			return strings.TrimSpace(row[index[col]])
		}

		flight, err := strconv.Atoi(field(ColFlightNumber))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: flight number %q", ErrMalformedRow, line, field(ColFlightNumber))
		}
		class, err := strconv.Atoi(field(ColClass))
		if err != nil || (class != models.ClassFailure && class != models.ClassSuccess) {
			return nil, fmt.Errorf("%w: line %d: class %q", ErrMalformedRow, line, field(ColClass))
		}
		payload, err := strconv.ParseFloat(field(ColPayloadMass), 64)
		if err != nil || math.IsNaN(payload) || math.IsInf(payload, 0) {
			return nil, fmt.Errorf("%w: line %d: payload mass %q", ErrMalformedRow, line, field(ColPayloadMass))
		}
		site := field(ColLaunchSite)
		if site == "" {
			return nil, fmt.Errorf("%w: line %d: empty launch site", ErrMalformedRow, line)
		}

		rec := models.LaunchRecord{
			FlightNumber:           flight,
			LaunchSite:             site,
			Class:                  class,
			PayloadMassKg:          payload,
			BoosterVersionCategory: field(ColBoosterVersionCategory),
		}
		if hasBooster {
			rec.BoosterVersion = strings.TrimSpace(row[boosterIdx])
		}
		records = append(records, rec)
	}

	return New(records)
}
