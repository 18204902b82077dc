// Package station holds the tide station record shared by the directory, the store and
// the resolver. A Station is created once during a scrape and never changed afterwards.
package station

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Station is a NOAA tide station.
type Station struct {
	// NOAA-assigned identifier, e.g. "8518750".
	ID   string `json:"id"`
	Name string `json:"name"`
	// Decimal degrees, south and west negative.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the station location as an orb point (longitude, latitude).
func (s Station) Point() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}

// Validate checks that the station can be persisted.
func (s Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station ID is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("station %s: invalid latitude: %f", s.ID, s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("station %s: invalid longitude: %f", s.ID, s.Longitude)
	}
	return nil
}

func (s Station) String() string {
	return fmt.Sprintf("#%s %s (%.4f, %.4f)", s.ID, s.Name, s.Latitude, s.Longitude)
}
