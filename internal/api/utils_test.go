package api

import (
	"context"
	"testing"

	"houseprice_service/internal/core"
	"houseprice_service/internal/domain/model"
)

type testPredictionService struct {
	PredictPriceFunc func(ctx context.Context, req core.Request) (*model.PredictionResult, error)
}

func newTestPredictionService(t *testing.T) *testPredictionService {
	return &testPredictionService{
		PredictPriceFunc: func(ctx context.Context, req core.Request) (*model.PredictionResult, error) {
			t.Error("PredictPrice should not be called")
			return nil, nil
		},
	}
}

func (ts *testPredictionService) PredictPrice(ctx context.Context, req core.Request) (*model.PredictionResult, error) {
	return ts.PredictPriceFunc(ctx, req)
}
