// Package splines joins tide events into a continuous water level curve.
package splines

import (
	"math"
	"time"

	"github.com/scubot/tidechart/pkg/noaa"
)

// Curve links one tide event to the next. It is flat at Start and End, so a high or low
// tide is a turning point, and it is undefined outside [Start, End].
type Curve struct {
	Start, End time.Time
	From, To   float64
}

// A Spline is a series of curves, each starting where the previous one ended.
type Spline []Curve

// Sample is a point on a spline.
type Sample struct {
	Time   time.Time
	Height float64
}

// CurvesBetween links consecutive predictions. Fewer than two predictions give no
// curve.
func CurvesBetween(preds noaa.Predictions) Spline {
	if len(preds) < 2 {
		return nil
	}

	curves := make(Spline, len(preds)-1)
	for i := range curves {
		curves[i] = Curve{
			Start: preds[i].T(),
			End:   preds[i+1].T(),
			From:  float64(preds[i].Height),
			To:    float64(preds[i+1].Height),
		}
	}
	return curves
}

// Eval returns the water level at t, or NaN outside the curve.
func (c Curve) Eval(t time.Time) float64 {
	if t.Before(c.Start) || t.After(c.End) {
		return math.NaN()
	}
	span := c.End.Sub(c.Start).Seconds()
	if span == 0 {
		return c.From
	}
	s := t.Sub(c.Start).Seconds() / span
	return c.From + (c.To-c.From)*s*s*(3-2*s)
}

// Eval returns the water level at t, or NaN when no curve covers t.
func (s Spline) Eval(t time.Time) float64 {
	left, right := 0, len(s)
	for left < right {
		mid := left + (right-left)/2
		switch {
		case t.Before(s[mid].Start):
			right = mid
		case t.After(s[mid].End):
			left = mid + 1
		default:
			return s[mid].Eval(t)
		}
	}
	return math.NaN()
}

// Sample evaluates the spline at n evenly spaced times from start to end inclusive,
// leaving out times no curve covers.
func (s Spline) Sample(start, end time.Time, n int) []Sample {
	if n < 2 || !end.After(start) {
		return nil
	}
	step := end.Sub(start) / time.Duration(n-1)

	result := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		t := start.Add(step * time.Duration(i))
		if h := s.Eval(t); !math.IsNaN(h) {
			result = append(result, Sample{Time: t, Height: h})
		}
	}
	return result
}
