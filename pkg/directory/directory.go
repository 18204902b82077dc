// Package directory keeps the list of every NOAA tide station in memory. Stations are
// scraped from NOAA once, written to a durable store and reloaded from there on later
// starts, so a warm directory never touches NOAA.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/scubot/tidechart/pkg/metrics"
	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/station"
	"github.com/scubot/tidechart/pkg/store"
)

// Source is where stations are scraped from. *noaa.Client implements it.
type Source interface {
	ListStations(ctx context.Context) ([]noaa.Listing, error)
	StationCoordinates(ctx context.Context, id string) (lat, lon float64, err error)
}

// Geocoder turns a place name into a (longitude, latitude) point.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (orb.Point, error)
}

// ScrapeError means the station listing could not be fetched or understood. The
// directory keeps serving the stations it already has.
type ScrapeError struct {
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("station scrape failed: %v", e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

var errEmptyListing = errors.New("listing contained no stations")

// Result summarises one scrape.
type Result struct {
	Listed  int // stations on the listing page
	Added   int // stations fetched and stored by this scrape
	Cached  int // stations skipped because they were already known
	Skipped int // stations that failed and will be retried next time
}

// snapshot is an immutable view of the directory. A new one is published after each
// successful store write.
type snapshot struct {
	stations []station.Station
	byID     map[string]int
}

func (s *snapshot) with(st station.Station) *snapshot {
	next := &snapshot{
		stations: make([]station.Station, len(s.stations), len(s.stations)+1),
		byID:     make(map[string]int, len(s.byID)+1),
	}
	copy(next.stations, s.stations)
	for id, i := range s.byID {
		next.byID[id] = i
	}
	next.byID[st.ID] = len(next.stations)
	next.stations = append(next.stations, st)
	return next
}

// Directory is the in-memory station list backed by a store.
type Directory struct {
	store    store.Store
	source   Source
	geocoder Geocoder
	log      *zap.Logger

	current atomic.Pointer[snapshot]
	scrapes singleflight.Group

	// life bounds shared scrapes, which outlive any single caller.
	life context.Context
	stop context.CancelFunc
}

type Option func(*Directory)

func WithLogger(log *zap.Logger) Option {
	return func(d *Directory) {
		d.log = log
	}
}

// WithGeocoder enables geocoding the station name when its home page has no
// coordinates.
func WithGeocoder(g Geocoder) Option {
	return func(d *Directory) {
		d.geocoder = g
	}
}

func New(s store.Store, src Source, opts ...Option) *Directory {
	d := &Directory{
		store:  s,
		source: src,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.current.Store(&snapshot{byID: map[string]int{}})
	d.life, d.stop = context.WithCancel(context.Background())
	return d
}

// Close cancels any running scrape.
func (d *Directory) Close() {
	d.stop()
}

// Load fills the directory from the store. If the store is empty a full scrape is run.
func (d *Directory) Load(ctx context.Context) error {
	all, err := d.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stations: %w", err)
	}

	snap := &snapshot{byID: make(map[string]int, len(all))}
	for _, st := range all {
		if _, dup := snap.byID[st.ID]; dup {
			continue
		}
		snap.byID[st.ID] = len(snap.stations)
		snap.stations = append(snap.stations, st)
	}
	d.current.Store(snap)
	metrics.SetDirectorySize(len(snap.stations))

	if len(snap.stations) > 0 {
		d.log.Info("loaded stations from store", zap.Int("count", len(snap.stations)))
		return nil
	}

	d.log.Info("station store is empty, scraping NOAA")
	_, err = d.Scrape(ctx)
	return err
}

// Scrape fetches the listing and stores every station not already known. Concurrent
// callers share a single scrape. A caller whose ctx ends stops waiting, but the scrape
// keeps running for the others until it finishes or the directory is closed.
func (d *Directory) Scrape(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ch := d.scrapes.DoChan("scrape", func() (interface{}, error) {
		return d.scrape(d.life)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			d.log.Debug("joined running scrape")
		}
		res, _ := r.Val.(Result)
		return res, r.Err
	}
}

func (d *Directory) scrape(ctx context.Context) (Result, error) {
	var res Result

	listings, err := d.source.ListStations(ctx)
	if err != nil {
		return res, &ScrapeError{Err: err}
	}
	if len(listings) == 0 {
		return res, &ScrapeError{Err: errEmptyListing}
	}
	res.Listed = len(listings)

	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, ok := d.Station(l.ID); ok {
			res.Cached++
			metrics.ObserveScrapedStation("cached")
			continue
		}

		st, err := d.fetch(ctx, l)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Skipped++
			metrics.ObserveScrapedStation("skipped")
			d.log.Warn("skipping station", zap.String("station", l.ID), zap.Error(err))
			continue
		}

		if err := d.store.Put(ctx, st); err != nil {
			res.Skipped++
			metrics.ObserveScrapedStation("skipped")
			d.log.Error("failed to store station", zap.String("station", l.ID), zap.Error(err))
			continue
		}
		d.publish(st)
		res.Added++
		metrics.ObserveScrapedStation("added")
	}

	d.log.Info("station scrape finished",
		zap.Int("listed", res.Listed),
		zap.Int("added", res.Added),
		zap.Int("cached", res.Cached),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// fetch reads a station's coordinates from its home page, falling back to geocoding
// its name when the page has none.
func (d *Directory) fetch(ctx context.Context, l noaa.Listing) (station.Station, error) {
	st := station.Station{ID: l.ID, Name: l.Name}

	lat, lon, err := d.source.StationCoordinates(ctx, l.ID)
	var parseErr *noaa.StationParseError
	switch {
	case err == nil:
		st.Latitude, st.Longitude = lat, lon
	case errors.As(err, &parseErr) && d.geocoder != nil:
		p, gerr := d.geocoder.Geocode(ctx, l.Name)
		if gerr != nil {
			return st, fmt.Errorf("%w (geocoding fallback: %w)", err, gerr)
		}
		d.log.Debug("geocoded station without coordinates", zap.String("station", l.ID))
		st.Latitude, st.Longitude = p.Lat(), p.Lon()
	default:
		return st, err
	}

	if err := st.Validate(); err != nil {
		return st, &noaa.StationParseError{ID: l.ID, Reason: err.Error()}
	}
	return st, nil
}

// publish makes st visible to readers. Only the scrape goroutine writes.
func (d *Directory) publish(st station.Station) {
	next := d.current.Load().with(st)
	d.current.Store(next)
	metrics.SetDirectorySize(len(next.stations))
}

// Refresh scrapes every interval until ctx is done. Failures are logged; the directory
// keeps what it has.
func (d *Directory) Refresh(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.Scrape(ctx); err != nil && ctx.Err() == nil {
				d.log.Error("periodic scrape failed", zap.Error(err))
			}
		}
	}
}

// Station looks up a station by its NOAA ID.
func (d *Directory) Station(id string) (station.Station, bool) {
	snap := d.current.Load()
	i, ok := snap.byID[id]
	if !ok {
		return station.Station{}, false
	}
	return snap.stations[i], true
}

// Stations returns every known station in the order they were added. The slice must
// not be modified.
func (d *Directory) Stations() []station.Station {
	return d.current.Load().stations
}

func (d *Directory) Len() int {
	return len(d.current.Load().stations)
}
