package noaa

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/scubot/tidechart/pkg/station"
)

// Listing is one station entry on the directory page.
type Listing struct {
	ID   string
	Name string
}

var (
	// <a style="color: #015FA9;" href="inventory.html?id=8518750">8518750 The Battery, NY</a>
	listingPattern = regexp.MustCompile(`<a[^>]*href="[^"]*?(?:inventory|stationhome)\.html\?id=(\d+)"[^>]*>\s*\d+\s+([^<]+?)\s*</a>`)

	// 40° 42.2' N, optionally with seconds: 40° 42' 12" N
	coordinatePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*°\s*(\d+(?:\.\d+)?)\s*'\s*(?:(\d+(?:\.\d+)?)\s*"\s*)?([NSEW])\b`)
)

// ParseListing extracts the stations from the directory page in page order. Names are
// HTML-unescaped; repeated ids keep their first entry.
func ParseListing(page []byte) []Listing {
	matches := listingPattern.FindAllSubmatch(page, -1)
	seen := make(map[string]bool, len(matches))
	result := make([]Listing, 0, len(matches))
	for _, m := range matches {
		id := string(m[1])
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, Listing{
			ID:   id,
			Name: strings.TrimSpace(html.UnescapeString(string(m[2]))),
		})
	}
	return result
}

// ParseStationHome finds the latitude and longitude on a station home page. The page
// renders them as degrees and decimal minutes with a hemisphere letter.
func ParseStationHome(id string, page []byte) (lat, lon float64, err error) {
	text := html.UnescapeString(string(page))

	var haveLat, haveLon bool
	for _, m := range coordinatePattern.FindAllStringSubmatch(text, -1) {
		dd, ok := parseDMS(m[1], m[2], m[3], m[4][0])
		if !ok {
			continue
		}
		switch m[4][0] {
		case 'N', 'S':
			if !haveLat && dd >= -90 && dd <= 90 {
				lat, haveLat = dd, true
			}
		case 'E', 'W':
			if !haveLon && dd >= -180 && dd <= 180 {
				lon, haveLon = dd, true
			}
		}
		if haveLat && haveLon {
			return lat, lon, nil
		}
	}

	switch {
	case !haveLat && !haveLon:
		return 0, 0, &StationParseError{ID: id, Reason: "no coordinates on station page"}
	case !haveLat:
		return 0, 0, &StationParseError{ID: id, Reason: "no latitude on station page"}
	default:
		return 0, 0, &StationParseError{ID: id, Reason: "no longitude on station page"}
	}
}

func parseDMS(deg, min, sec string, hemisphere byte) (float64, bool) {
	d, err := strconv.ParseFloat(deg, 64)
	if err != nil {
		return 0, false
	}
	m, err := strconv.ParseFloat(min, 64)
	if err != nil || m >= 60 {
		return 0, false
	}
	var s float64
	if sec != "" {
		if s, err = strconv.ParseFloat(sec, 64); err != nil || s >= 60 {
			return 0, false
		}
	}
	return station.DecimalDegrees(d, m, s, hemisphere), true
}
