package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/pager"
	"github.com/scubot/tidechart/pkg/render"
	"github.com/scubot/tidechart/pkg/scroll"
	"github.com/scubot/tidechart/pkg/station"
	"github.com/scubot/tidechart/pkg/sunset"
	"github.com/scubot/tidechart/pkg/visualize"
)

var templateFuncs = template.FuncMap{
	"hex": func(c int) string {
		return fmt.Sprintf("#%06X", c)
	},
}

type indexInput struct {
	Prefix    string
	LastQuery string
	Error     string
}

type viewInput struct {
	Prefix string
	ID     string
	Embed  render.Embed
	Chart  template.HTML
	First  bool
	Last   bool
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	last, _ := session.Values[sessionLastQuery].(string)
	s.renderIndex(w, http.StatusOK, indexInput{LastQuery: last})
}

func (s *Server) renderIndex(w http.ResponseWriter, code int, in indexInput) {
	in.Prefix = s.opts.Prefix
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(code)
	if err := s.index.Execute(w, in); err != nil {
		s.log.Error("failed to execute template", zap.Error(err))
	}
}

// serveTides looks up the query, registers a new view on its first day and redirects
// to it.
func (s *Server) serveTides(w http.ResponseWriter, r *http.Request) {
	q := r.FormValue("q")
	m, err := s.tides.Locate(r.Context(), q)
	if err != nil {
		s.renderIndex(w, statusFor(err), indexInput{LastQuery: q, Error: render.Error(err).Title})
		return
	}
	pages, err := s.tides.FetchTidePages(r.Context(), m.Station, s.opts.DaysAdvance)
	if err != nil {
		s.renderIndex(w, statusFor(err), indexInput{LastQuery: q, Error: render.Error(err).Title})
		return
	}

	id := uuid.NewString()
	if !s.views.Add(id, views(m.Station, pages)) {
		s.renderIndex(w, http.StatusNotFound, indexInput{LastQuery: q, Error: "No tides were found for that station."})
		return
	}

	session, _ := s.sessions.Get(r, sessionName)
	session.Values[sessionLastQuery] = q
	if err := session.Save(r, w); err != nil {
		s.log.Warn("failed to save session", zap.Error(err))
	}

	s.log.Info("view created",
		zap.String("view", id),
		zap.String("query", q),
		zap.String("station", m.Station.ID))
	http.Redirect(w, r, path.Join(s.opts.Prefix, "views", id), http.StatusSeeOther)
}

// views pairs each page with the events just outside it.
func views(st station.Station, pages []pager.Page) []view {
	result := make([]view, len(pages))
	for i, p := range pages {
		result[i] = view{Station: st, Page: p}
		if i > 0 {
			prev := pages[i-1].Points
			result[i].Before = &prev[len(prev)-1]
		}
		if i+1 < len(pages) {
			result[i].After = &pages[i+1].Points[0]
		}
	}
	return result
}

func (s *Server) serveView(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	pos, ok := s.views.Current(id)
	if !ok {
		s.renderIndex(w, http.StatusNotFound, indexInput{Error: "That view has expired, search again."})
		return
	}
	s.renderView(w, id, pos)
}

func (s *Server) moveView(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	dir := scroll.Next
	if vars["dir"] == "prev" {
		dir = scroll.Previous
	}
	if _, ok := s.views.Move(vars["id"], dir); !ok {
		s.renderIndex(w, http.StatusNotFound, indexInput{Error: "That view has expired, search again."})
		return
	}
	http.Redirect(w, r, path.Join(s.opts.Prefix, "views", vars["id"]), http.StatusSeeOther)
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request) {
	pos, ok := s.views.Current(mux.Vars(r)["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := chart(pos.Page).Encode(w); err != nil {
		s.log.Warn("failed to write chart", zap.Error(err))
	}
}

func (s *Server) renderView(w http.ResponseWriter, id string, pos scroll.Position[view]) {
	v := pos.Page
	var daylight *sunset.Daylight
	if d, ok := sunset.ForDay(v.Station, v.Page.Day()); ok {
		daylight = &d
	}

	var svg bytes.Buffer
	if _, err := chart(v).Encode(&svg); err != nil {
		s.log.Warn("failed to draw chart", zap.Error(err))
	}

	in := viewInput{
		Prefix: s.opts.Prefix,
		ID:     id,
		Embed:  render.Page(v.Station, v.Page, daylight),
		// #nosec G203 -- generated by visualize from numbers only
		Chart: template.HTML(svg.String()),
		First: pos.Index == 0,
		Last:  pos.Index == pos.Total-1,
	}
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if err := s.page.Execute(w, in); err != nil {
		s.log.Error("failed to execute template", zap.Error(err))
	}
}

func chart(v view) *visualize.Chart {
	preds := make(noaa.Predictions, 0, len(v.Page.Points)+2)
	if v.Before != nil {
		preds = append(preds, *v.Before)
	}
	preds = append(preds, v.Page.Points...)
	if v.After != nil {
		preds = append(preds, *v.After)
	}

	c := visualize.NewChart(v.Page.Day(), preds)
	if d, ok := sunset.ForDay(v.Station, v.Page.Day()); ok {
		c.SetDaylight(d)
	}
	return c
}
