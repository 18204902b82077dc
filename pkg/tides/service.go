// Package tides is the entry point for anything that shows tides to a user: it
// resolves what the user typed to a station and fetches that station's tides as one
// page per day.
package tides

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/pager"
	"github.com/scubot/tidechart/pkg/resolve"
	"github.com/scubot/tidechart/pkg/station"
	"github.com/scubot/tidechart/pkg/sunset"
	"github.com/scubot/tidechart/pkg/timetricks"
)

// Resolver finds the station for a query. *resolve.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context, query string) (resolve.Match, error)
}

// Predictor fetches predictions. *noaa.Client implements it.
type Predictor interface {
	GetPredictions(ctx context.Context, q *noaa.PredictionQuery) (noaa.Predictions, error)
}

type Service struct {
	resolver  Resolver
	predictor Predictor
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(r Resolver, p Predictor, opts ...Option) *Service {
	s := &Service{
		resolver:  r,
		predictor: p,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveStation returns the station query refers to. Errors are a
// *resolve.NotFoundError or a *geocode.GeocodeError.
func (s *Service) ResolveStation(ctx context.Context, query string) (station.Station, error) {
	m, err := s.Locate(ctx, query)
	return m.Station, err
}

// Locate is ResolveStation with how the station was found.
func (s *Service) Locate(ctx context.Context, query string) (resolve.Match, error) {
	m, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		s.log.Info("station not resolved", zap.String("query", query), zap.Error(err))
		return m, err
	}
	s.log.Debug("station resolved",
		zap.String("query", query),
		zap.String("station", m.Station.ID),
		zap.Stringer("rule", m.Kind))
	return m, nil
}

// Today is the current calendar day at st, as a station wall clock. The station's zone
// is approximated by its solar zone, round(longitude/15) hours from UTC.
func (s *Service) Today(st station.Station) time.Time {
	local := s.now().In(sunset.SolarZone(st.Longitude))
	return timetricks.Day(timetricks.WallClock(local, noaa.StationLocal))
}

// FetchPredictions returns the high and low tides at st for days days starting today.
func (s *Service) FetchPredictions(ctx context.Context, st station.Station, days int) (noaa.Predictions, error) {
	q := &noaa.PredictionQuery{
		Start:   s.Today(st),
		Days:    days,
		Station: st.ID,
	}
	preds, err := s.predictor.GetPredictions(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tides for station %s: %w", st.ID, err)
	}
	return preds, nil
}

// FetchTidePages returns one page per day of tides at st. An *noaa.ApiError means NOAA
// has no predictions for the station. The first page is the station's day in its solar
// zone (see Today), which can differ by a day from its civil date near midnight where
// the civil zone is far from longitude/15, as in Hawaii, Alaska and the Pacific islands.
func (s *Service) FetchTidePages(ctx context.Context, st station.Station, days int) ([]pager.Page, error) {
	preds, err := s.FetchPredictions(ctx, st, days)
	if err != nil {
		return nil, err
	}
	pages := pager.Paginate(preds)
	s.log.Debug("fetched tides",
		zap.String("station", st.ID),
		zap.Int("predictions", len(preds)),
		zap.Int("pages", len(pages)))
	return pages, nil
}
