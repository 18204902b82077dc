// Package resolve turns what a user typed into a tide station. A query is a NOAA
// station ID, a "latitude, longitude" pair or a place name; coordinates and place names
// resolve to the nearest known station.
package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/station"
)

// Kind says which rule matched a query.
type Kind int

const (
	KindID Kind = iota
	KindCoordinates
	KindPlace
)

func (k Kind) String() string {
	switch k {
	case KindID:
		return "id"
	case KindCoordinates:
		return "coordinates"
	case KindPlace:
		return "place"
	}
	return "unknown"
}

// Query is a parsed user query.
type Query struct {
	Kind Kind
	Raw  string
	// Set for KindCoordinates.
	Point orb.Point
}

var (
	idPattern          = regexp.MustCompile(`^\d+$`)
	coordinatesPattern = regexp.MustCompile(`^(-?\d+\.\d+)(?:\s*,\s*|\s+)(-?\d+\.\d+)$`)
)

// Parse classifies raw. The first matching rule wins: digits only is an ID, two
// decimal numbers are latitude and longitude, anything else is a place name.
func Parse(raw string) Query {
	raw = strings.TrimSpace(raw)
	q := Query{Kind: KindPlace, Raw: raw}

	if idPattern.MatchString(raw) {
		q.Kind = KindID
		return q
	}
	if m := coordinatesPattern.FindStringSubmatch(raw); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			q.Kind = KindCoordinates
			q.Point = orb.Point{lon, lat}
		}
	}
	return q
}

// NotFoundError means no station matches the query.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	if e.Query == "" {
		return "no station query given"
	}
	return fmt.Sprintf("no station found for %q", e.Query)
}

// Directory is the station lookup the resolver needs.
type Directory interface {
	Station(id string) (station.Station, bool)
	Stations() []station.Station
}

// Geocoder turns a place name into a (longitude, latitude) point.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (orb.Point, error)
}

// Match is a resolved query.
type Match struct {
	Station station.Station
	Kind    Kind
	// From is the point that was searched around; zero for KindID.
	From orb.Point
	// DistanceKm is the great-circle distance from From to the station.
	DistanceKm float64
}

type Resolver struct {
	dir      Directory
	geocoder Geocoder
	log      *zap.Logger
}

type Option func(*Resolver)

func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

func New(dir Directory, g Geocoder, opts ...Option) *Resolver {
	r := &Resolver{dir: dir, geocoder: g, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds the station for raw. Errors are a *NotFoundError or whatever the
// geocoder returned.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Match, error) {
	q := Parse(raw)
	if q.Raw == "" {
		return Match{}, &NotFoundError{}
	}
	r.log.Debug("resolving station", zap.String("query", q.Raw), zap.Stringer("rule", q.Kind))

	switch q.Kind {
	case KindID:
		st, ok := r.dir.Station(q.Raw)
		if !ok {
			return Match{}, &NotFoundError{Query: q.Raw}
		}
		return Match{Station: st, Kind: KindID}, nil

	case KindCoordinates:
		return r.near(q, q.Point)

	default:
		if r.geocoder == nil {
			return Match{}, &NotFoundError{Query: q.Raw}
		}
		p, err := r.geocoder.Geocode(ctx, q.Raw)
		if err != nil {
			return Match{}, err
		}
		return r.near(q, p)
	}
}

func (r *Resolver) near(q Query, p orb.Point) (Match, error) {
	st, ok := Nearest(r.dir.Stations(), p)
	if !ok {
		return Match{}, &NotFoundError{Query: q.Raw}
	}
	return Match{
		Station:    st,
		Kind:       q.Kind,
		From:       p,
		DistanceKm: geo.Distance(p, st.Point()) / 1000,
	}, nil
}

// Nearest returns the station closest to p. Distance is squared Euclidean distance on
// raw degrees, which is only an approximation away from the equator and across the
// antimeridian. The first station wins ties.
func Nearest(stations []station.Station, p orb.Point) (station.Station, bool) {
	var (
		best  station.Station
		bestD float64
		found bool
	)
	for _, st := range stations {
		d := planar.DistanceSquared(p, st.Point())
		if !found || d < bestD {
			best, bestD, found = st, d, true
		}
	}
	return best, found
}
