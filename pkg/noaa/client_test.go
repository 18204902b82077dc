package noaa

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const samplePredictions = `{"predictions":[
	{"t":"2020-10-20 02:17","v":"4.080","type":"H"},
	{"t":"2020-10-20 09:01","v":"0.512","type":"L"},
	{"t":"2020-10-21 03:05","v":"4.301","type":"H"}
]}`

func serve(t *testing.T, body string) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func query() *PredictionQuery {
	return &PredictionQuery{
		Start:   time.Date(2020, time.October, 20, 0, 0, 0, 0, time.UTC),
		Days:    2,
		Station: "8518750",
	}
}

func TestGetPredictions(t *testing.T) {
	srv, requests := serve(t, samplePredictions)
	c := NewClient(WithDataURL(srv.URL))

	got, err := c.GetPredictions(context.Background(), query())
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	var gotTimes []string
	for _, p := range got {
		gotTimes = append(gotTimes, p.T().Format(predTimeFormat))
	}
	wantTimes := []string{"2020-10-20 02:17", "2020-10-20 09:01", "2020-10-21 03:05"}
	if diff := cmp.Diff(wantTimes, gotTimes); diff != "" {
		t.Errorf("order not preserved (-want,+got): %s", diff)
	}
	if got[1].Type != LowTide || got[1].Height != 0.512 {
		t.Errorf("second prediction = %s", got[1])
	}

	r := (*requests)[0]
	for key, want := range map[string]string{
		"product":    "predictions",
		"begin_date": "20201020",
		"end_date":   "20201021",
		"station":    "8518750",
		"datum":      "MLLW",
		"interval":   "hilo",
	} {
		if got := r.URL.Query().Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
}

func TestGetPredictionsApiError(t *testing.T) {
	table := []struct {
		name string
		body string
		want string
	}{{
		name: "error object",
		body: `{"error": {"message": "No Predictions data was found. Please make sure the Datum input is valid."}}`,
		want: "No Predictions data was found. Please make sure the Datum input is valid.",
	}, {
		name: "error alongside predictions",
		body: `{"error": "", "predictions": []}`,
		want: `""`,
	}, {
		name: "no predictions",
		body: `{"metadata": {}}`,
		want: "response from NOAA contained no predictions",
	}, {
		name: "null predictions",
		body: `{"predictions": null}`,
		want: "response from NOAA contained no predictions",
	}, {
		name: "missing field",
		body: `{"predictions":[{"t":"2020-10-20 02:17","type":"H"}]}`,
		want: "prediction 0 from NOAA is missing a field",
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := serve(t, tc.body)
			c := NewClient(WithDataURL(srv.URL))

			preds, err := c.GetPredictions(context.Background(), query())
			if preds != nil {
				t.Errorf("expected no predictions, got %v", preds)
			}
			var apiErr *ApiError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *ApiError, got %T: %v", err, err)
			}
			if apiErr.Message != tc.want {
				t.Errorf("message = %q, want %q", apiErr.Message, tc.want)
			}
			if apiErr.Station != "8518750" {
				t.Errorf("station = %q", apiErr.Station)
			}
		})
	}
}

func TestGetPredictionsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(WithDataURL(srv.URL)).GetPredictions(context.Background(), query())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if !statusErr.Temporary() {
		t.Error("502 should be temporary")
	}
}

func TestGetPredictionsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(WithDataURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := c.GetPredictions(context.Background(), query())
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestStationEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stations.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleListing))
	})
	mux.HandleFunc("/stationhome.html", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "8518750" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleHome))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(
		WithStationsURL(srv.URL+"/stations.html"),
		WithStationHomeURL(srv.URL+"/stationhome.html"),
	)

	listings, err := c.ListStations(context.Background())
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if len(listings) != 3 {
		t.Errorf("got %d listings, want 3", len(listings))
	}

	lat, lon, err := c.StationCoordinates(context.Background(), "8518750")
	if err != nil {
		t.Fatalf("StationCoordinates: %v", err)
	}
	if math.Abs(lat-40.7) > 1e-6 || math.Abs(lon+74.015) > 1e-6 {
		t.Errorf("coordinates = %f, %f", lat, lon)
	}

	_, _, err = c.StationCoordinates(context.Background(), "1")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}
}
