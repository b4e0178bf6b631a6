package core

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"houseprice_service/internal/domain/model"
)

// Defaults applied by PredictPrice when the request leaves a field zero.
const (
	DefaultDateRangeDays    = 28
	DefaultAreaRangeDegrees = 0.02
	DefaultSampleLimit      = 500
)

// Request is one price prediction to perform.
type Request struct {
	Latitude         float64
	Longitude        float64
	Date             time.Time
	PropertyType     string
	DateRangeDays    int
	AreaRangeDegrees float64
	Penalty          float64
	Intercept        bool
	Limit            int
}

// PredictionService orchestrates one prediction end to end: select the
// target and its comparables, featurize and compress every sample,
// cross-validate on the comparables, fit the final model, and price the
// target.
type PredictionService struct {
	selector   *SampleSelector
	featurizer *POIFeaturizer
	compressor *FeatureCompressor
	lg         zerolog.Logger
}

func NewPredictionService(
	selector *SampleSelector,
	featurizer *POIFeaturizer,
	compressor *FeatureCompressor,
	lg zerolog.Logger,
) *PredictionService {
	return &PredictionService{
		selector:   selector,
		featurizer: featurizer,
		compressor: compressor,
		lg:         lg,
	}
}

func (s *PredictionService) PredictPrice(ctx context.Context, req Request) (*model.PredictionResult, error) {
	req = withDefaults(req)
	q := Query{
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Date:             req.Date,
		PropertyType:     req.PropertyType,
		DateRangeDays:    req.DateRangeDays,
		AreaRangeDegrees: req.AreaRangeDegrees,
		Limit:            req.Limit,
	}

	s.lg.Info().
		Float64("latitude", req.Latitude).
		Float64("longitude", req.Longitude).
		Str("property_type", req.PropertyType).
		Time("date", req.Date).
		Msg("collecting training samples")

	target, err := s.selector.Target(ctx, q)
	if err != nil {
		return nil, err
	}
	comparables, err := s.selector.Comparables(ctx, q, target)
	if err != nil {
		return nil, err
	}

	// The target sits last so its projected row splits off the end after
	// compression.
	samples := make([]model.Sample, 0, len(comparables)+1)
	samples = append(samples, comparables...)
	samples = append(samples, target)

	s.lg.Info().Int("samples", len(samples)).Msg("training samples collected")

	s.lg.Info().Msg("extracting pois")
	poiFeatures := make([][]float64, len(samples))
	for i, sample := range samples {
		vector, err := s.featurizer.Featurize(ctx, sample.Latitude, sample.Longitude)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		poiFeatures[i] = vector
	}

	propertyFeatures, err := EncodeProperties(samples)
	if err != nil {
		return nil, err
	}

	compression, err := s.compressor.Compress(poiFeatures, propertyFeatures)
	if err != nil {
		return nil, err
	}

	rows, cols := compression.Projected.Dims()
	trainX := compression.Projected.Slice(0, rows-1, 0, cols).(*mat.Dense)
	targetRow := mat.Row(nil, rows-1, compression.Projected)
	trainY := make([]float64, len(comparables))
	for i, comparable := range comparables {
		trainY[i] = comparable.Price
	}

	avgError, correlation, err := CrossValidate(trainX, trainY, req.Penalty, req.Intercept)
	if err != nil {
		return nil, err
	}

	fitted, err := FitRegression(trainX, trainY, req.Penalty, req.Intercept)
	if err != nil {
		return nil, err
	}
	predicted, err := fitted.Predict(targetRow)
	if err != nil {
		return nil, err
	}

	if target.Price == 0 {
		return nil, errors.Wrap(model.ErrUndefinedMetric, "target price is zero")
	}
	percentageError := 100 * math.Abs(predicted-target.Price) / target.Price

	s.lg.Info().
		Float64("predicted_price", predicted).
		Float64("observed_price", target.Price).
		Float64("avg_cv_percentage_error", avgError).
		Int("components", compression.Components).
		Msg("prediction complete")

	return &model.PredictionResult{
		PredictedPrice:       predicted,
		ObservedPrice:        target.Price,
		PercentageError:      percentageError,
		AvgCVPercentageError: avgError,
		Correlation:          correlation,
	}, nil
}

func withDefaults(req Request) Request {
	if req.DateRangeDays <= 0 {
		req.DateRangeDays = DefaultDateRangeDays
	}
	if req.AreaRangeDegrees <= 0 {
		req.AreaRangeDegrees = DefaultAreaRangeDegrees
	}
	if req.Limit <= 0 {
		req.Limit = DefaultSampleLimit
	}
	return req
}
