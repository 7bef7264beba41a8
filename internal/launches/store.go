// Package launches holds the immutable launch record table the dashboard
// is built from.
package launches

import (
	"fmt"
	"math"
	"sort"

	"launch-dashboard/internal/models"
)

// AllSites selects every launch site.
const AllSites = "ALL"

// RecordSet is the loaded data set. It is never mutated after construction
// and is safe for concurrent readers.
type RecordSet struct {
	records    []models.LaunchRecord
	sites      []string
	siteIndex  map[string]struct{}
	minPayload float64
	maxPayload float64
}

// New builds a RecordSet from decoded records. The slice is copied.
func New(records []models.LaunchRecord) (*RecordSet, error) {
	rs := &RecordSet{
		records:   make([]models.LaunchRecord, len(records)),
		siteIndex: make(map[string]struct{}),
	}
	copy(rs.records, records)

	for i, r := range rs.records {
		if r.Class != models.ClassFailure && r.Class != models.ClassSuccess {
			return nil, fmt.Errorf("%w: record %d: class %d is not 0 or 1", ErrMalformedRow, i, r.Class)
		}
		if math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0) {
			return nil, fmt.Errorf("%w: record %d: payload mass %v is not finite", ErrMalformedRow, i, r.PayloadMassKg)
		}
		if _, ok := rs.siteIndex[r.LaunchSite]; !ok {
			rs.siteIndex[r.LaunchSite] = struct{}{}
			rs.sites = append(rs.sites, r.LaunchSite)
		}
		if i == 0 || r.PayloadMassKg < rs.minPayload {
			rs.minPayload = r.PayloadMassKg
		}
		if i == 0 || r.PayloadMassKg > rs.maxPayload {
			rs.maxPayload = r.PayloadMassKg
		}
	}
	sort.Strings(rs.sites)

	return rs, nil
}

// Records returns a copy of the records in load order.
func (rs *RecordSet) Records() []models.LaunchRecord {
	out := make([]models.LaunchRecord, len(rs.records))
	copy(out, rs.records)
	return out
}

// Each calls fn for every record in load order without copying the table.
func (rs *RecordSet) Each(fn func(models.LaunchRecord)) {
	for _, r := range rs.records {
		fn(r)
	}
}

func (rs *RecordSet) Len() int {
	return len(rs.records)
}

// DistinctSites returns the launch sites in ascending order.
func (rs *RecordSet) DistinctSites() []string {
	out := make([]string, len(rs.sites))
	copy(out, rs.sites)
	return out
}

// HasSite reports whether site appears in the data set.
func (rs *RecordSet) HasSite(site string) bool {
	_, ok := rs.siteIndex[site]
	return ok
}

// PayloadBounds returns the minimum and maximum payload mass. An empty set
// reports (0, 0).
func (rs *RecordSet) PayloadBounds() (min, max float64) {
	return rs.minPayload, rs.maxPayload
}
