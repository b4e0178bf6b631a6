package api

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"houseprice_service/internal/core"
	"houseprice_service/internal/domain/model"
)

const validPredictBody = `{"latitude":52.2,"longitude":0.12,"date":"2021-06-15","property_type":"D"}`

func TestHandler_Predict(t *testing.T) {
	t.Parallel()

	want := model.PredictionResult{
		PredictedPrice:       337762.24,
		ObservedPrice:        350000,
		PercentageError:      3.5,
		AvgCVPercentageError: 12.7,
		Correlation:          0.99,
	}

	service := newTestPredictionService(t)
	service.PredictPriceFunc = func(ctx context.Context, req core.Request) (*model.PredictionResult, error) {
		if req.Latitude != 52.2 {
			t.Errorf("Incorrect latitude; expected %g, was %g", 52.2, req.Latitude)
		}
		if req.Longitude != 0.12 {
			t.Errorf("Incorrect longitude; expected %g, was %g", 0.12, req.Longitude)
		}
		if !req.Date.Equal(time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Incorrect date; expected %s, was %s", "2021-06-15", req.Date)
		}
		if req.PropertyType != "D" {
			t.Errorf("Incorrect property type; expected %s, was %s", "D", req.PropertyType)
		}
		if req.DateRangeDays != 14 {
			t.Errorf("Incorrect date range; expected %d, was %d", 14, req.DateRangeDays)
		}
		if req.AreaRangeDegrees != 0.03 {
			t.Errorf("Incorrect area range; expected %g, was %g", 0.03, req.AreaRangeDegrees)
		}
		if req.Penalty != 2.5 {
			t.Errorf("Incorrect penalty; expected %g, was %g", 2.5, req.Penalty)
		}
		if !req.Intercept {
			t.Error("Incorrect intercept; expected true, was false")
		}
		result := want
		return &result, nil
	}

	body := `{"latitude":52.2,"longitude":0.12,"date":"2021-06-15","property_type":"D",` +
		`"date_range_days":14,"area_range_degrees":0.03,"penalty":2.5,"intercept":true}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/predict", strings.NewReader(body))

	NewHandler(service, zerolog.Nop()).Predict(recorder, request)

	result := recorder.Result()
	if result.StatusCode != 200 {
		t.Errorf("Incorrect status code; expected %d, was %d", 200, result.StatusCode)
	}
	if contentType := result.Header.Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Incorrect content type; expected %s, was %s", "application/json", contentType)
	}

	var got model.PredictionResult
	if err := json.NewDecoder(result.Body).Decode(&got); err != nil {
		t.Fatalf("Unexpected error decoding response: %s", err)
	}
	if got != want {
		t.Errorf("Incorrect response; expected %+v, was %+v", want, got)
	}
}

func TestHandler_Predict_UndefinedCorrelation(t *testing.T) {
	t.Parallel()

	service := newTestPredictionService(t)
	service.PredictPriceFunc = func(ctx context.Context, req core.Request) (*model.PredictionResult, error) {
		return &model.PredictionResult{
			PredictedPrice:       250000,
			ObservedPrice:        250000,
			AvgCVPercentageError: math.NaN(),
			Correlation:          math.NaN(),
		}, nil
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/predict", strings.NewReader(validPredictBody))

	NewHandler(service, zerolog.Nop()).Predict(recorder, request)

	result := recorder.Result()
	if result.StatusCode != 200 {
		t.Errorf("Incorrect status code; expected %d, was %d", 200, result.StatusCode)
	}

	var got struct {
		PredictedPrice       *float64 `json:"predicted_price"`
		AvgCVPercentageError *float64 `json:"avg_cv_percentage_error"`
		Correlation          *float64 `json:"correlation"`
	}
	if err := json.NewDecoder(result.Body).Decode(&got); err != nil {
		t.Fatalf("Unexpected error decoding response: %s", err)
	}
	if got.PredictedPrice == nil {
		t.Error("Incorrect predicted price; expected a value, was null")
	} else if *got.PredictedPrice != 250000 {
		t.Errorf("Incorrect predicted price; expected %g, was %g", 250000.0, *got.PredictedPrice)
	}
	if got.AvgCVPercentageError != nil {
		t.Errorf("Incorrect average error; expected null, was %g", *got.AvgCVPercentageError)
	}
	if got.Correlation != nil {
		t.Errorf("Incorrect correlation; expected null, was %g", *got.Correlation)
	}
}

func TestHandler_Predict_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/predict", nil)

	NewHandler(newTestPredictionService(t), zerolog.Nop()).Predict(recorder, request)

	result := recorder.Result()
	if result.StatusCode != 405 {
		t.Errorf("Incorrect status code; expected %d, was %d", 405, result.StatusCode)
	}
}

func TestHandler_Predict_InvalidBody(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/predict", strings.NewReader("{nope"))

	NewHandler(newTestPredictionService(t), zerolog.Nop()).Predict(recorder, request)

	result := recorder.Result()
	if result.StatusCode != 400 {
		t.Errorf("Incorrect status code; expected %d, was %d", 400, result.StatusCode)
	}
	content, _ := io.ReadAll(result.Body)
	if string(content) != "Invalid request body\n" {
		t.Errorf("Incorrect body; expected %q, was %q", "Invalid request body\n", content)
	}
}

func TestHandler_Predict_MissingFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		body    string
		message string
	}{
		{`{}`, "Latitude is required\n"},
		{`{"latitude":52.2}`, "Longitude is required\n"},
		{`{"latitude":52.2,"longitude":0.12}`, "Date is required\n"},
		{`{"latitude":52.2,"longitude":0.12,"date":"2021-06-15"}`, "Property type is required\n"},
		{`{"latitude":52.2,"longitude":0.12,"date":"15/06/2021","property_type":"D"}`, "Invalid date format. Use YYYY-MM-DD\n"},
	}

	for _, c := range cases {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/api/predict", strings.NewReader(c.body))

		NewHandler(newTestPredictionService(t), zerolog.Nop()).Predict(recorder, request)

		result := recorder.Result()
		if result.StatusCode != 400 {
			t.Errorf("Incorrect status code for %s; expected %d, was %d", c.body, 400, result.StatusCode)
		}
		content, _ := io.ReadAll(result.Body)
		if string(content) != c.message {
			t.Errorf("Incorrect body for %s; expected %q, was %q", c.body, c.message, content)
		}
	}
}

func TestHandler_Predict_ErrorStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
	}{
		{errors.Wrap(model.ErrTargetNotFound, "no detached transaction"), 404},
		{errors.Wrap(model.ErrDataAccess, "overpass query: boom"), 502},
		{errors.Wrap(model.ErrDegenerateFeatures, "1 samples"), 422},
		{errors.Wrap(model.ErrUndefinedMetric, "sample 0 has zero price"), 422},
		{errors.Wrap(model.ErrUnknownCategory, `new_build_flag "X"`), 422},
		{errors.New("kaput"), 500},
	}

	for _, c := range cases {
		service := newTestPredictionService(t)
		service.PredictPriceFunc = func(ctx context.Context, req core.Request) (*model.PredictionResult, error) {
			return nil, c.err
		}

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/api/predict", strings.NewReader(validPredictBody))

		NewHandler(service, zerolog.Nop()).Predict(recorder, request)

		result := recorder.Result()
		if result.StatusCode != c.status {
			t.Errorf("Incorrect status code for %q; expected %d, was %d", c.err, c.status, result.StatusCode)
		}
	}
}
