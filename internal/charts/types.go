// Package charts turns the launch record set into chart specifications and
// renders them.
package charts

import (
	"fmt"
	"strings"
)

// Outcome slice labels, in class order.
const (
	LabelFailure = "Failure"
	LabelSuccess = "Success"
)

// Slice is one category of a proportion chart.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PieSpec describes the outcome share chart.
type PieSpec struct {
	Title  string  `json:"title"`
	Site   string  `json:"site"`
	Slices []Slice `json:"slices"`
}

// Total sums all slice values.
func (p PieSpec) Total() float64 {
	var total float64
	for _, s := range p.Slices {
		total += s.Value
	}
	return total
}

// Point is one launch in payload/outcome space.
type Point struct {
	FlightNumber    int     `json:"flight_number"`
	PayloadMassKg   float64 `json:"payload_mass_kg"`
	Class           int     `json:"class"`
	BoosterCategory string  `json:"booster_version_category"`
}

// Series groups the points of one booster category.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// ScatterSpec describes the payload vs outcome chart. Points keeps data set
// order; Series holds the same points grouped by booster category in order
// of first appearance.
type ScatterSpec struct {
	Title    string       `json:"title"`
	Site     string       `json:"site"`
	Range    PayloadRange `json:"range"`
	Boundary Boundary     `json:"boundary"`
	Points   []Point      `json:"points"`
	Series   []Series     `json:"series"`
}

// PayloadRange is the payload mass window selected on the slider.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Boundary controls whether records exactly at the range ends are kept.
type Boundary string

const (
	// BoundaryOpen keeps Low < payload < High.
	BoundaryOpen Boundary = "open"
	// BoundaryClosed keeps Low <= payload <= High.
	BoundaryClosed Boundary = "closed"
)

// ParseBoundary accepts "open" or "closed", case-insensitive.
func ParseBoundary(s string) (Boundary, error) {
	switch b := Boundary(strings.ToLower(strings.TrimSpace(s))); b {
	case BoundaryOpen, BoundaryClosed:
		return b, nil
	default:
		return "", fmt.Errorf("unknown payload boundary %q", s)
	}
}

// Contains reports whether payload falls inside r under boundary b.
func (r PayloadRange) Contains(payload float64, b Boundary) bool {
	if b == BoundaryClosed {
		return payload >= r.Low && payload <= r.High
	}
	return payload > r.Low && payload < r.High
}
