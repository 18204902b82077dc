package station

import (
	"math"
	"testing"
)

func TestDecimalDegrees(t *testing.T) {
	table := []struct {
		deg, min, sec float64
		hemi          byte
		want          float64
	}{
		{40, 30, 0, 'N', 40.5},
		{40, 30, 0, 'S', -40.5},
		{74, 0, 0, 'W', -74.0},
		{74, 0, 0, 'E', 74.0},
		{10, 15, 36, 'N', 10.26},
	}

	for _, tc := range table {
		got := DecimalDegrees(tc.deg, tc.min, tc.sec, tc.hemi)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("DecimalDegrees(%v, %v, %v, %c) = %v, want %v", tc.deg, tc.min, tc.sec, tc.hemi, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	table := []struct {
		name    string
		st      Station
		wantErr bool
	}{
		{"ok", Station{ID: "8518750", Latitude: 40.7, Longitude: -74.01}, false},
		{"missing id", Station{Latitude: 1, Longitude: 1}, true},
		{"latitude", Station{ID: "1", Latitude: 91}, true},
		{"longitude", Station{ID: "1", Longitude: -181}, true},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.st.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestPoint(t *testing.T) {
	p := Station{ID: "1", Latitude: 40.5, Longitude: -74}.Point()
	if p.Lon() != -74 || p.Lat() != 40.5 {
		t.Errorf("Point() = %v, want lon -74 lat 40.5", p)
	}
}
