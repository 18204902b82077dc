package tides

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/config"
	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/resolve"
	"github.com/scubot/tidechart/pkg/station"
)

var battery = station.Station{ID: "8518750", Name: "The Battery, NY", Latitude: 40.7, Longitude: -74.015}

type fakeResolver struct {
	match resolve.Match
	err   error
}

func (f fakeResolver) Resolve(ctx context.Context, q string) (resolve.Match, error) {
	return f.match, f.err
}

type fakePredictor struct {
	preds noaa.Predictions
	err   error
	got   *noaa.PredictionQuery
}

func (f *fakePredictor) GetPredictions(ctx context.Context, q *noaa.PredictionQuery) (noaa.Predictions, error) {
	f.got = q
	return f.preds, f.err
}

func at(day, hour int) noaa.Time {
	return noaa.Time(time.Date(2024, time.March, day, hour, 0, 0, 0, noaa.StationLocal))
}

// 2024-03-01 14:00 UTC is 09:00 at the station.
func clock() time.Time {
	return time.Date(2024, time.March, 1, 14, 0, 0, 0, time.UTC)
}

func TestFetchTidePages(t *testing.T) {
	p := &fakePredictor{preds: noaa.Predictions{
		{Time: at(1, 4), Height: 4.9, Type: noaa.HighTide},
		{Time: at(1, 10), Height: 0.1, Type: noaa.LowTide},
		{Time: at(2, 5), Height: 5.0, Type: noaa.HighTide},
	}}
	s := NewService(fakeResolver{}, p, WithClock(clock))

	pages, err := s.FetchTidePages(context.Background(), battery, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 || len(pages[0].Points) != 2 || pages[1].Total != 2 {
		t.Errorf("unexpected pages: %+v", pages)
	}

	want := &noaa.PredictionQuery{
		Start:   time.Date(2024, time.March, 1, 0, 0, 0, 0, noaa.StationLocal),
		Days:    2,
		Station: "8518750",
	}
	if diff := cmp.Diff(want, p.got); diff != "" {
		t.Errorf("query (-want,+got): %s", diff)
	}
}

func TestTodayAtStation(t *testing.T) {
	// 03:00 UTC is still the previous evening in New York.
	s := NewService(nil, nil, WithClock(func() time.Time {
		return time.Date(2024, time.March, 2, 3, 0, 0, 0, time.UTC)
	}))
	got := s.Today(battery)
	if want := time.Date(2024, time.March, 1, 0, 0, 0, 0, noaa.StationLocal); !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}
}

func TestTodayUsesSolarZone(t *testing.T) {
	// Honolulu keeps UTC-10 but lies at UTC-11 by longitude. At 10:30 UTC it is
	// already March 2 on the civil clock and still March 1 by the sun.
	honolulu := station.Station{ID: "1612340", Name: "Honolulu", Latitude: 21.307, Longitude: -157.867}
	s := NewService(nil, nil, WithClock(func() time.Time {
		return time.Date(2024, time.March, 2, 10, 30, 0, 0, time.UTC)
	}))
	got := s.Today(honolulu)
	if want := time.Date(2024, time.March, 1, 0, 0, 0, 0, noaa.StationLocal); !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}
}

func TestFetchTidePagesApiError(t *testing.T) {
	apiErr := &noaa.ApiError{Station: battery.ID, Message: "No Predictions data was found."}
	s := NewService(fakeResolver{}, &fakePredictor{err: apiErr}, WithClock(clock))

	pages, err := s.FetchTidePages(context.Background(), battery, 7)
	if pages != nil {
		t.Errorf("pages built from a failed fetch: %+v", pages)
	}
	var got *noaa.ApiError
	if !errors.As(err, &got) || got.Message != apiErr.Message {
		t.Errorf("expected the *noaa.ApiError, got %v", err)
	}
}

func TestResolveStation(t *testing.T) {
	s := NewService(fakeResolver{match: resolve.Match{Station: battery, Kind: resolve.KindID}}, nil)
	st, err := s.ResolveStation(context.Background(), "8518750")
	if err != nil || st != battery {
		t.Errorf("ResolveStation = %v, %v", st, err)
	}

	s = NewService(fakeResolver{err: &resolve.NotFoundError{Query: "nowhere"}}, nil)
	var nf *resolve.NotFoundError
	if _, err := s.ResolveStation(context.Background(), "nowhere"); !errors.As(err, &nf) {
		t.Errorf("expected *resolve.NotFoundError, got %v", err)
	}
}

// TestApp runs a whole lookup against fake NOAA endpoints.
func TestApp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/datagetter", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("station") != battery.ID {
			w.Write([]byte(`{"error": {"message": "No Predictions data was found."}}`))
			return
		}
		w.Write([]byte(`{"predictions": [
			{"t": "2024-03-01 04:00", "v": "4.900", "type": "H"},
			{"t": "2024-03-01 10:00", "v": "0.100", "type": "L"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	cfg.StoreFile = filepath.Join(t.TempDir(), "stations.jsonl")
	cfg.GeocodeURL = srv.URL + "/search"

	app, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Store.Put(context.Background(), battery); err != nil {
		t.Fatal(err)
	}
	if err := app.Directory.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	app.Service.predictor = noaa.NewClient(noaa.WithDataURL(srv.URL + "/datagetter"))
	app.Service.now = clock

	st, err := app.Service.ResolveStation(context.Background(), "40.69, -74.02")
	if err != nil {
		t.Fatal(err)
	}
	pages, err := app.Service.FetchTidePages(context.Background(), st, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || len(pages[0].Points) != 2 {
		t.Errorf("unexpected pages: %+v", pages)
	}
}
