package core

import (
	"context"
	"testing"

	"houseprice_service/internal/domain/model"
	"houseprice_service/internal/domain/repository"
)

type testTransactionSource struct {
	SelectTransactionsFunc func(ctx context.Context, table string, conds []repository.Condition, limit int) ([]model.Sample, error)
}

func newTestTransactionSource(t *testing.T) *testTransactionSource {
	return &testTransactionSource{
		SelectTransactionsFunc: func(ctx context.Context, table string, conds []repository.Condition, limit int) ([]model.Sample, error) {
			t.Error("SelectTransactions should not be called")
			return nil, nil
		},
	}
}

func (ts *testTransactionSource) SelectTransactions(ctx context.Context, table string, conds []repository.Condition, limit int) ([]model.Sample, error) {
	return ts.SelectTransactionsFunc(ctx, table, conds, limit)
}

type testPOISource struct {
	CountTagsFunc func(ctx context.Context, latitude, longitude float64, tags model.TagSet) (map[model.Tag]int, error)
}

func newTestPOISource(t *testing.T) *testPOISource {
	return &testPOISource{
		CountTagsFunc: func(ctx context.Context, latitude, longitude float64, tags model.TagSet) (map[model.Tag]int, error) {
			t.Error("CountTags should not be called")
			return nil, nil
		},
	}
}

func (ps *testPOISource) CountTags(ctx context.Context, latitude, longitude float64, tags model.TagSet) (map[model.Tag]int, error) {
	return ps.CountTagsFunc(ctx, latitude, longitude, tags)
}
