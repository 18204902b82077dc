// Package handlers serves tides over HTTP: a JSON API and server rendered pages that
// scroll through a station's days.
package handlers

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/cache"
	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/pager"
	"github.com/scubot/tidechart/pkg/resolve"
	"github.com/scubot/tidechart/pkg/scroll"
	"github.com/scubot/tidechart/pkg/station"
)

const (
	sessionName      = "tidechart"
	sessionLastQuery = "last-query"
	// See https://developer.chrome.com/blog/cookie-max-age-expires.
	defaultMaxAge = 60 * 60 * 24 * 400 // 400 days in seconds.

	// Cache for slightly less than one day so daily clients don't see stale data.
	apiCacheTTL = 23 * time.Hour
	maxDays     = 31
)

// Tides is what the handlers need from the tides service.
type Tides interface {
	Locate(ctx context.Context, query string) (resolve.Match, error)
	FetchTidePages(ctx context.Context, st station.Station, days int) ([]pager.Page, error)
}

// Stations is the station directory.
type Stations interface {
	Station(id string) (station.Station, bool)
	Len() int
}

// Options configures a Server.
type Options struct {
	Prefix        string
	DaysAdvance   int
	ViewCapacity  int
	ViewTTL       time.Duration
	SessionKey    []byte
	EncryptionKey []byte
	Logger        *zap.Logger
}

// view is one user's scrollable tide listing.
type view struct {
	Station station.Station
	Page    pager.Page
	// Neighbouring events so the chart of a day reaches its edges.
	Before, After *noaa.Prediction
}

type Server struct {
	tides    Tides
	stations Stations
	opts     Options
	log      *zap.Logger

	views    *scroll.Registry[view]
	apiCache *cache.Timed
	sessions *sessions.CookieStore
	index    *template.Template
	page     *template.Template
}

// New parses the templates in content (static/*.template.html).
func New(t Tides, s Stations, content fs.FS, opts Options) (*Server, error) {
	index, err := template.ParseFS(content, "static/index.template.html")
	if err != nil {
		return nil, err
	}
	page, err := template.New("view.template.html").Funcs(templateFuncs).ParseFS(content, "static/view.template.html")
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if !strings.HasSuffix(opts.Prefix, "/") {
		opts.Prefix += "/"
	}
	if opts.DaysAdvance < 1 {
		opts.DaysAdvance = 7
	}

	store := &sessions.CookieStore{
		Codecs: securecookie.CodecsFromPairs(opts.SessionKey, opts.EncryptionKey),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   defaultMaxAge,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
	store.MaxAge(defaultMaxAge)

	return &Server{
		tides:    t,
		stations: s,
		opts:     opts,
		log:      opts.Logger,
		views:    scroll.New[view](opts.ViewCapacity, opts.ViewTTL),
		apiCache: cache.NewTimed(apiCacheTTL),
		sessions: store,
		index:    index,
		page:     page,
	}, nil
}

// Register adds every route to r.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/tides", s.serveTides).Methods(http.MethodGet)
	r.HandleFunc("/views/{id}", s.serveView).Methods(http.MethodGet)
	r.HandleFunc("/views/{id}/chart.svg", s.serveChart).Methods(http.MethodGet)
	r.HandleFunc("/views/{id}/{dir:next|prev}", s.moveView).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stations/resolve", s.resolveStation).Methods(http.MethodGet)
	api.HandleFunc("/stations/{id:[0-9]+}", s.getStation).Methods(http.MethodGet)
	api.Handle("/tides", s.cached(http.HandlerFunc(s.getTides))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
}
