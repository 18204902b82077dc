package noaa

import (
	"fmt"
	"testing"
	"time"
)

func TestQueryURL(t *testing.T) {
	in := PredictionQuery{
		Start:   time.Date(2020, time.January, 5, 0, 0, 0, 0, time.Local),
		Days:    1,
		Station: SantaCruz,
	}
	want := fmt.Sprintf("https://api.tidesandcurrents.noaa.gov/api/prod/datagetter?application=NOS.COOPS.TAC.WL&begin_date=20200105&datum=MLLW&end_date=20200105&format=json&interval=hilo&product=predictions&station=%s&time_zone=lst_ldt&units=english", SantaCruz)
	got, err := in.url(NOAA_URL)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if want != got.String() {
		t.Errorf("got  %q", got)
		t.Errorf("want %q", want)
	}
}

func TestQueryEndDate(t *testing.T) {
	table := []struct {
		start time.Time
		days  int
		want  string
	}{
		{time.Date(2020, time.January, 5, 13, 0, 0, 0, time.UTC), 7, "20200111"},
		{time.Date(2020, time.February, 28, 0, 0, 0, 0, time.UTC), 2, "20200229"},
		{time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), 2, "20210101"},
	}
	for _, tc := range table {
		q := PredictionQuery{Start: tc.start, Days: tc.days, Station: "1"}
		if got := q.build().Get("end_date"); got != tc.want {
			t.Errorf("end_date for %s + %d days = %s, want %s", tc.start, tc.days, got, tc.want)
		}
	}
}

func TestQueryRejectsEmptyRange(t *testing.T) {
	q := PredictionQuery{Start: time.Now(), Days: 0, Station: SantaCruz}
	if _, err := q.url(NOAA_URL); err == nil {
		t.Error("expected an error for a zero day query")
	}
	q = PredictionQuery{Start: time.Now(), Days: 1}
	if _, err := q.url(NOAA_URL); err == nil {
		t.Error("expected an error for a query without a station")
	}
}
