package noaa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParsePrediction(t *testing.T) {
	table := []struct {
		input string
		want  Prediction
	}{{
		input: `{"t":"2020-10-20 02:17", "v":"4.080", "type":"H"}`,
		want: Prediction{
			Time:   Time(time.Date(2020, time.October, 20, 2, 17, 0, 0, StationLocal)),
			Height: 4.08,
			Type:   HighTide,
		},
	}, {
		input: `{"t":"2019-09-21 06:56", "v":"2.559", "type":"L"}`,
		want: Prediction{
			Time:   Time(time.Date(2019, time.September, 21, 6, 56, 0, 0, StationLocal)),
			Height: 2.559,
			Type:   LowTide,
		},
	}}

	for _, test := range table {
		t.Run(test.input, func(t *testing.T) {
			var got Prediction

			dec := json.NewDecoder(bytes.NewBufferString(test.input))
			if err := dec.Decode(&got); err != nil {
				t.Errorf("unexpected error: %+v", err)
			}

			gotstr := fmt.Sprintf("%s", got)
			wantstr := fmt.Sprintf("%s", test.want)
			if diff := cmp.Diff(gotstr, wantstr); diff != "" {
				t.Errorf("incorrect parse (-got,+want): %s", diff)
			}
		})
	}
}

func TestParsePredictionRejects(t *testing.T) {
	for _, input := range []string{
		`{"t":"2020/10/20 02:17", "v":"4.080", "type":"H"}`,
		`{"t":"2020-10-20 02:17", "v":"high", "type":"H"}`,
		`{"t":"2020-10-20 02:17", "v":"4.080", "type":"X"}`,
		`{"t":"2020-10-20 02:17", "v":4.080, "type":"H"}`,
	} {
		var got Prediction
		if err := json.Unmarshal([]byte(input), &got); err == nil {
			t.Errorf("expected error decoding %s, got %s", input, got)
		}
	}
}

func TestMarshalPrediction(t *testing.T) {
	p := Prediction{
		Time:   Time(time.Date(2020, time.October, 20, 2, 17, 0, 0, StationLocal)),
		Height: 4.08,
		Type:   LowTide,
	}
	got, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	want := `{"t":"2020-10-20 02:17","v":4.08,"type":"L"}`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("wrong encoding (-want,+got): %s", diff)
	}
}

func TestPredictionsCompare(t *testing.T) {
	at := time.Date(2020, time.October, 20, 2, 17, 0, 0, StationLocal)
	a := Predictions{{Time: Time(at), Height: 4.08, Type: HighTide}}
	b := Predictions{{Time: Time(at.In(time.FixedZone("UTC-8", -8*3600))), Height: 4.08, Type: HighTide}}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same instant compared unequal (-a,+b): %s", diff)
	}

	b[0].Time = Time(at.Add(time.Minute))
	if cmp.Equal(a, b) {
		t.Error("predictions a minute apart compared equal")
	}
}
