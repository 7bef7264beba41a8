package models

// Outcome classes as stored in the class column.
const (
	ClassFailure = 0
	ClassSuccess = 1
)

type LaunchRecord struct {
	FlightNumber           int     `json:"flight_number"`
	LaunchSite             string  `json:"launch_site"`
	Class                  int     `json:"class"`
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	BoosterVersion         string  `json:"booster_version,omitempty"`
	BoosterVersionCategory string  `json:"booster_version_category"`
}

// Succeeded reports whether the launch outcome class is a success.
func (r LaunchRecord) Succeeded() bool {
	return r.Class == ClassSuccess
}
