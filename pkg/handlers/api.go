package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/geocode"
	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/render"
	"github.com/scubot/tidechart/pkg/resolve"
	"github.com/scubot/tidechart/pkg/station"
)

type matchResponse struct {
	Station    station.Station `json:"station"`
	Rule       string          `json:"rule"`
	Latitude   *float64        `json:"latitude,omitempty"`
	Longitude  *float64        `json:"longitude,omitempty"`
	DistanceKm *float64        `json:"distance_km,omitempty"`
}

type tidesResponse struct {
	Station station.Station `json:"station"`
	Pages   []render.Embed  `json:"pages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toMatchResponse(m resolve.Match) matchResponse {
	resp := matchResponse{Station: m.Station, Rule: m.Kind.String()}
	if m.Kind != resolve.KindID {
		lat, lon, dist := m.From.Lat(), m.From.Lon(), m.DistanceKm
		resp.Latitude, resp.Longitude, resp.DistanceKm = &lat, &lon, &dist
	}
	return resp
}

func (s *Server) resolveStation(w http.ResponseWriter, r *http.Request) {
	m, err := s.tides.Locate(r.Context(), r.FormValue("q"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMatchResponse(m))
}

func (s *Server) getStation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	st, ok := s.stations.Station(id)
	if !ok {
		s.writeError(w, &resolve.NotFoundError{Query: id})
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) getTides(w http.ResponseWriter, r *http.Request) {
	days, err := s.days(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	m, err := s.tides.Locate(r.Context(), r.FormValue("q"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	pages, err := s.tides.FetchTidePages(r.Context(), m.Station, days)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := tidesResponse{Station: m.Station, Pages: make([]render.Embed, 0, len(pages))}
	for _, p := range pages {
		resp.Pages = append(resp.Pages, render.Page(m.Station, p, nil))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	n := s.stations.Len()
	code := http.StatusOK
	if n == 0 {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]int{"stations": n})
}

// days reads the days parameter, defaulting to the configured number of days.
func (s *Server) days(r *http.Request) (int, error) {
	raw := r.FormValue("days")
	if raw == "" {
		return s.opts.DaysAdvance, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxDays {
		return 0, fmt.Errorf("days must be a number from 1 to %d", maxDays)
	}
	return days, nil
}

// cached serves successful responses from memory, keyed by method and URL.
func (s *Server) cached(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%s %s", r.Method, r.URL)

		if body, ok := s.apiCache.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		// Duplicate the response onto a buffer for the cache.
		rec := &recorder{ResponseWriter: w, code: http.StatusOK}
		rec.body = io.MultiWriter(w, &rec.buf)
		next.ServeHTTP(rec, r)

		if rec.code == http.StatusOK {
			s.apiCache.Set(key, rec.buf.Bytes())
		}
	})
}

type recorder struct {
	http.ResponseWriter
	code int
	body io.Writer
	buf  bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= 500 {
		s.log.Error("request failed", zap.Int("code", code), zap.Error(err))
	}
	s.writeJSON(w, code, errorResponse{render.Error(err).Title})
}

// statusFor maps an error from the tides service to an HTTP status.
func statusFor(err error) int {
	var (
		notFound *resolve.NotFoundError
		geoErr   *geocode.GeocodeError
		apiErr   *noaa.ApiError
		status   *noaa.StatusError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, geocode.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, noaa.ErrTimeout), errors.Is(err, geocode.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &geoErr), errors.As(err, &status):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
