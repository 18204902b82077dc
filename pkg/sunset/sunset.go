// Package sunset computes daylight for a tide station's day.
package sunset

import (
	"fmt"
	"math"
	"time"

	"github.com/keep94/sunrise"

	"github.com/scubot/tidechart/pkg/station"
	"github.com/scubot/tidechart/pkg/timetricks"
)

// Daylight is the sunrise and sunset of one day in the station's wall clock.
type Daylight struct {
	Sunrise time.Time
	Sunset  time.Time
}

func (d Daylight) String() string {
	return fmt.Sprintf("Sunrise %s, sunset %s", d.Sunrise.Format("15:04"), d.Sunset.Format("15:04"))
}

// SolarZone approximates a location's time zone from its longitude, one hour per 15
// degrees. Stations do not carry a zone, so daylight saving and political boundaries
// are ignored and the result can be an hour off.
func SolarZone(lon float64) *time.Location {
	hours := int(math.Round(lon / 15))
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*60*60)
}

// ForDay returns the daylight at st on day. day is a station-local wall clock like the
// times of tide predictions and the result uses day's location. ok is false when the
// sun does not both rise and set that day.
func ForDay(st station.Station, day time.Time) (d Daylight, ok bool) {
	loc := SolarZone(st.Longitude)
	noon := timetricks.WallClock(timetricks.SetClock(day, 12, 0), loc)

	var s sunrise.Sunrise
	s.Around(st.Latitude, st.Longitude, noon)

	// Around may settle on a neighbouring day.
	for i := 0; i < 2 && !timetricks.SameDay(noon, s.Sunrise().In(loc)); i++ {
		if s.Sunrise().In(loc).Before(noon) {
			s.AddDays(1)
		} else {
			s.AddDays(-1)
		}
	}

	rise, set := s.Sunrise(), s.Sunset()
	if rise.IsZero() || set.IsZero() || !set.After(rise) {
		return Daylight{}, false
	}
	return Daylight{
		Sunrise: timetricks.WallClock(rise.In(loc), day.Location()),
		Sunset:  timetricks.WallClock(set.In(loc), day.Location()),
	}, true
}
