// Package visualize draws a day of tide as an SVG chart.
package visualize

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/noaa/splines"
	"github.com/scubot/tidechart/pkg/sunset"
	"github.com/scubot/tidechart/pkg/timetricks"
)

const (
	width  = 1200
	height = 300

	// Vertical range in feet.
	minFeet = -3.0
	maxFeet = 9.0

	samples = 145 // every ten minutes
)

// Chart is one day of tide.
type Chart struct {
	day      time.Time
	preds    noaa.Predictions
	daylight *sunset.Daylight
}

// NewChart charts day from preds. preds may extend past day on either side so the curve
// reaches the edges of the chart.
func NewChart(day time.Time, preds noaa.Predictions) *Chart {
	return &Chart{day: timetricks.Day(day), preds: preds}
}

// SetDaylight shades the hours outside d as night.
func (c *Chart) SetDaylight(d sunset.Daylight) {
	c.daylight = &d
}

func (c *Chart) Encode(w io.Writer) (int, error) {
	var n int
	var err error
	write := func(format string, args ...interface{}) {
		if err != nil {
			return
		}
		var nn int
		nn, err = fmt.Fprintf(w, format, args...)
		n += nn
	}

	write(`<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height)

	// Zero foot line.
	write(`<rect class="zero_foot" fill="#e9c46a" x="0" y="%d" width="%d" height="1"/>`,
		feetToY(0), width)

	end := c.day.Add(24 * time.Hour)
	points := splines.CurvesBetween(c.preds).Sample(c.day, end, samples)
	if len(points) > 1 {
		var b strings.Builder
		fmt.Fprintf(&b, "M %d,%d ", c.timeToX(points[0].Time), height)
		for _, p := range points {
			fmt.Fprintf(&b, "L %d,%d ", c.timeToX(p.Time), feetToY(p.Height))
		}
		fmt.Fprintf(&b, "L %d,%d z", c.timeToX(points[len(points)-1].Time), height)
		write(`<path class="tide" fill="skyblue" d="%s"/>`, b.String())
	}

	for _, p := range c.preds {
		if !timetricks.SameDay(p.T(), c.day) {
			continue
		}
		write(`<circle class="tide_%s" cx="%d" cy="%d" r="4"/>`,
			p.Type, c.timeToX(p.T()), feetToY(float64(p.Height)))
	}

	if c.daylight != nil {
		risex := c.timeToX(c.daylight.Sunrise)
		setx := c.timeToX(c.daylight.Sunset)
		write(`<rect class="night" fill="blue" fill-opacity="25%%" x="0" y="0" width="%d" height="%d"/>`,
			risex, height)
		write(`<rect class="night" fill="blue" fill-opacity="25%%" x="%d" y="0" width="%d" height="%d"/>`,
			setx, width-setx, height)
	}

	write(`</svg>`)
	return n, err
}

func feetToY(feet float64) int {
	return height - int((feet-minFeet)*height/(maxFeet-minFeet))
}

func (c *Chart) timeToX(t time.Time) int {
	return int(t.Sub(c.day) * width / (24 * time.Hour))
}
