// Package render turns tide pages into chat embeds and terminal text.
package render

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/pager"
	"github.com/scubot/tidechart/pkg/resolve"
	"github.com/scubot/tidechart/pkg/station"
	"github.com/scubot/tidechart/pkg/sunset"
)

// Color is the embed accent colour.
const Color = 0x1C6BA0

// Fetching is shown while tides are being looked up.
var Fetching = Embed{Title: "🔄 Now fetching data..."}

// Embed is a chat message card.
type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// TideName is the field name of a prediction, e.g. "High tide at 04:12".
func TideName(p noaa.Prediction) string {
	switch p.Type {
	case noaa.HighTide:
		return "High tide at " + p.T().Format("15:04")
	case noaa.LowTide:
		return "Low tide at " + p.T().Format("15:04")
	}
	return ""
}

// TideValue is the field value of a prediction, e.g. "Depth: 5.123ft".
func TideValue(p noaa.Prediction) string {
	return "Depth: " + strconv.FormatFloat(float64(p.Height), 'f', -1, 64) + "ft"
}

// Page renders one day of tides at st. daylight may be nil.
func Page(st station.Station, page pager.Page, daylight *sunset.Daylight) Embed {
	e := Embed{
		Title:       "Tidal information for station #" + st.ID,
		Description: "Date: " + page.Day().Format("2006-01-02"),
		Color:       Color,
		Footer:      fmt.Sprintf("Page %d of %d | Data provided by the NOAA", page.Index+1, page.Total),
	}
	if st.Name != "" {
		e.Description = st.Name + "\n" + e.Description
	}
	if daylight != nil {
		e.Description += "\n" + daylight.String()
	}
	for _, p := range page.Points {
		e.Fields = append(e.Fields, Field{Name: TideName(p), Value: TideValue(p)})
	}
	return e
}

// Error renders a failed lookup. Upstream messages are shown as NOAA wrote them.
func Error(err error) Embed {
	var (
		notFound *resolve.NotFoundError
		apiErr   *noaa.ApiError
	)
	switch {
	case errors.As(err, &notFound):
		return Embed{Title: "That station does not exist or does not provide tidal data."}
	case errors.As(err, &apiErr):
		return Embed{Title: apiErr.Message}
	case errors.Is(err, noaa.ErrTimeout):
		return Embed{Title: "NOAA took too long to answer, try again later."}
	}
	return Embed{Title: err.Error()}
}
