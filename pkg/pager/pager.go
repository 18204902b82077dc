// Package pager splits a series of tide predictions into one page per calendar day.
package pager

import (
	"time"

	"github.com/scubot/tidechart/pkg/noaa"
	"github.com/scubot/tidechart/pkg/timetricks"
)

// Page holds every prediction of one day.
type Page struct {
	// Index is zero based.
	Index int
	Total int
	// Points are never empty and share a calendar day.
	Points noaa.Predictions
}

// Day is the calendar day of the page at midnight.
func (p Page) Day() time.Time {
	return timetricks.Day(p.Points[0].T())
}

// Paginate groups points into pages, starting a new page whenever a point falls on a
// different day than the one before it. Points must already be ordered by time; they
// are not sorted here, so out of order input can yield two pages for the same day.
func Paginate(points noaa.Predictions) []Page {
	if len(points) == 0 {
		return nil
	}

	var pages []Page
	start := 0
	for i := 1; i <= len(points); i++ {
		if i < len(points) && timetricks.SameDay(points[i-1].T(), points[i].T()) {
			continue
		}
		pages = append(pages, Page{
			Index:  len(pages),
			Points: points[start:i:i],
		})
		start = i
	}

	for i := range pages {
		pages[i].Total = len(pages)
	}
	return pages
}
