package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "tidechart"

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: subsystem,
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "upstream_latency",
			Subsystem: subsystem,
			Help:      "Latency of calls to NOAA and the geocoder in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0},
		},
		[]string{"endpoint", "code"},
	)

	scrapedStations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "scraped_stations_total",
			Subsystem: subsystem,
			Help:      "Stations handled by directory scrapes, by result.",
		},
		[]string{"result"},
	)

	geocodeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "geocode_requests_total",
			Subsystem: subsystem,
			Help:      "Geocoding requests, by result.",
		},
		[]string{"result"},
	)

	directorySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:      "directory_stations",
			Subsystem: subsystem,
			Help:      "Stations currently known to the directory.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		upstreamLatency,
		scrapedStations,
		geocodeRequests,
		directorySize,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveUpstream records one outbound call. code is the HTTP status or "error".
func ObserveUpstream(endpoint, code string, latency float64) {
	upstreamLatency.With(prometheus.Labels{
		"endpoint": endpoint,
		"code":     code,
	}).Observe(latency)
}

// ObserveScrapedStation counts a station handled by a scrape: "added", "cached" or
// "skipped".
func ObserveScrapedStation(result string) {
	scrapedStations.WithLabelValues(result).Inc()
}

// ObserveGeocode counts a geocoding request: "ok", "empty", "error" or "cancelled".
func ObserveGeocode(result string) {
	geocodeRequests.WithLabelValues(result).Inc()
}

func SetDirectorySize(n int) {
	directorySize.Set(float64(n))
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// routeOf labels r by its route template so ids in the path do not each make a series.
func routeOf(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	if r.URL != nil {
		return r.URL.Path
	}
	return ""
}

// LatencyHandler records the latency of every request. Installed as mux middleware it
// labels requests by route.
func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := routeOf(r)
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, strconv.Itoa(rec.code), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}
