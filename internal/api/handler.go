package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"houseprice_service/internal/core"
	"houseprice_service/internal/domain/model"
)

// Service runs one price prediction end to end.
type Service interface {
	PredictPrice(ctx context.Context, req core.Request) (*model.PredictionResult, error)
}

type Handler struct {
	service Service
	lg      zerolog.Logger
}

func NewHandler(service Service, lg zerolog.Logger) *Handler {
	return &Handler{service: service, lg: lg}
}

type PredictRequest struct {
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Date             string   `json:"date"`
	PropertyType     string   `json:"property_type"`
	DateRangeDays    int      `json:"date_range_days"`
	AreaRangeDegrees float64  `json:"area_range_degrees"`
	Penalty          float64  `json:"penalty"`
	Intercept        bool     `json:"intercept"`
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Latitude == nil {
		http.Error(w, "Latitude is required", http.StatusBadRequest)
		return
	}

	if req.Longitude == nil {
		http.Error(w, "Longitude is required", http.StatusBadRequest)
		return
	}

	if req.Date == "" {
		http.Error(w, "Date is required", http.StatusBadRequest)
		return
	}

	if req.PropertyType == "" {
		http.Error(w, "Property type is required", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, err := h.service.PredictPrice(r.Context(), core.Request{
		Latitude:         *req.Latitude,
		Longitude:        *req.Longitude,
		Date:             date,
		PropertyType:     req.PropertyType,
		DateRangeDays:    req.DateRangeDays,
		AreaRangeDegrees: req.AreaRangeDegrees,
		Penalty:          req.Penalty,
		Intercept:        req.Intercept,
	})
	if err != nil {
		h.lg.Error().Err(err).Msg("prediction failed")
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// statusFor maps the prediction failure taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrTargetNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDataAccess):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrDegenerateFeatures),
		errors.Is(err, model.ErrUndefinedMetric),
		errors.Is(err, model.ErrUnknownCategory):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
