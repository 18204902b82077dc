package noaa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

const (
	NOAA_URL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	TIME_FMT = "20060102"

	// Application identifies this client to NOAA.
	Application = "NOS.COOPS.TAC.WL"
)

// GetPredictions fetches high/low predictions for q. An upstream error body, or a body
// without predictions, is returned as an *ApiError and no partial data is returned.
func (c *Client) GetPredictions(ctx context.Context, q *PredictionQuery) (Predictions, error) {
	addr, err := q.url(c.dataURL)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "datagetter", addr.String())
	if err != nil {
		return nil, err
	}

	preds, err := decodePredictions(body)
	if err != nil {
		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			apiErr.Station = q.Station
		}
		return nil, err
	}
	return preds, nil
}

func (q *PredictionQuery) url(base string) (*url.URL, error) {
	if q.Days < 1 {
		return nil, fmt.Errorf("prediction query for station %q must cover at least one day, got %d", q.Station, q.Days)
	}
	if q.Station == "" {
		return nil, fmt.Errorf("prediction query has no station")
	}
	addr, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	addr.RawQuery = q.build().Encode()
	return addr, nil
}

func (q *PredictionQuery) build() url.Values {
	// NOAA's end_date is inclusive.
	end := q.Start.AddDate(0, 0, q.Days-1)

	vals := make(url.Values)
	vals.Add("application", Application)
	vals.Add("begin_date", q.Start.Format(TIME_FMT))
	vals.Add("end_date", end.Format(TIME_FMT))
	vals.Add("station", q.Station)
	vals.Add("product", "predictions")
	vals.Add("datum", "MLLW")
	vals.Add("time_zone", "lst_ldt")
	vals.Add("interval", "hilo")
	vals.Add("units", "english")
	vals.Add("format", "json")
	return vals
}

// predictionRow mirrors one upstream row so missing fields can be told apart from
// zero values.
type predictionRow struct {
	Time   *Time   `json:"t"`
	Height *Height `json:"v"`
	Type   *Tide   `json:"type"`
}

func decodePredictions(body []byte) (Predictions, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &ApiError{Message: fmt.Sprintf("unreadable response from NOAA: %v", err)}
	}

	// Any error field means failure, whatever it holds.
	if raw, ok := fields["error"]; ok {
		return nil, &ApiError{Message: errorMessage(raw)}
	}

	raw, ok := fields["predictions"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, &ApiError{Message: "response from NOAA contained no predictions"}
	}

	var rows []predictionRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &ApiError{Message: fmt.Sprintf("malformed predictions from NOAA: %v", err)}
	}

	preds := make(Predictions, 0, len(rows))
	for i, row := range rows {
		if row.Time == nil || row.Height == nil || row.Type == nil {
			return nil, &ApiError{Message: fmt.Sprintf("prediction %d from NOAA is missing a field", i)}
		}
		preds = append(preds, Prediction{
			Time:   *row.Time,
			Height: *row.Height,
			Type:   *row.Type,
		})
	}
	return preds, nil
}

// errorMessage extracts the human readable part of an upstream error value. NOAA
// usually sends {"message": "..."}.
func errorMessage(raw json.RawMessage) string {
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return string(raw)
}
