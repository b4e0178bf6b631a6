package core

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"houseprice_service/internal/domain/model"
	"houseprice_service/internal/domain/repository"
)

const (
	transactionsTable = "prices_coordinates_data"

	// coordTolerance bounds how far two coordinates may drift while still
	// naming the same transaction.
	coordTolerance = 1e-7
)

// TransactionSource is the tabular source comparable sales are drawn from.
type TransactionSource interface {
	SelectTransactions(ctx context.Context, table string, conds []repository.Condition, limit int) ([]model.Sample, error)
}

// Query names the transaction a prediction is anchored on and the bounding
// window comparables are selected from.
type Query struct {
	Latitude         float64
	Longitude        float64
	Date             time.Time
	PropertyType     string
	DateRangeDays    int
	AreaRangeDegrees float64
	Limit            int
}

type SampleSelector struct {
	source TransactionSource
}

func NewSampleSelector(source TransactionSource) *SampleSelector {
	return &SampleSelector{source: source}
}

// Target fetches the transaction the query points at: coordinates within
// tolerance, transfer date and property type exact.
func (s *SampleSelector) Target(ctx context.Context, q Query) (model.Sample, error) {
	conds := []repository.Condition{
		repository.GreaterEqual("latitude", q.Latitude-coordTolerance),
		repository.LessEqual("latitude", q.Latitude+coordTolerance),
		repository.GreaterEqual("longitude", q.Longitude-coordTolerance),
		repository.LessEqual("longitude", q.Longitude+coordTolerance),
		repository.Equal("date_of_transfer", q.Date.Format("2006-01-02")),
		repository.Equal("property_type", q.PropertyType),
	}
	rows, err := s.source.SelectTransactions(ctx, transactionsTable, conds, 1)
	if err != nil {
		return model.Sample{}, err
	}
	if len(rows) == 0 {
		return model.Sample{}, errors.Wrapf(model.ErrTargetNotFound,
			"no %s transaction at (%f, %f) on %s",
			q.PropertyType, q.Latitude, q.Longitude, q.Date.Format("2006-01-02"))
	}
	return rows[0], nil
}

// Comparables fetches every transaction inside the bounding window around
// the query, keeps only the requested property type, and drops rows carrying
// the target's own identity so the caller decides how the target is merged
// back in.
func (s *SampleSelector) Comparables(ctx context.Context, q Query, target model.Sample) ([]model.Sample, error) {
	since := q.Date.AddDate(0, 0, -q.DateRangeDays).Format("2006-01-02")
	until := q.Date.AddDate(0, 0, q.DateRangeDays).Format("2006-01-02")
	conds := []repository.Condition{
		repository.GreaterEqual("latitude", q.Latitude-q.AreaRangeDegrees),
		repository.LessEqual("latitude", q.Latitude+q.AreaRangeDegrees),
		repository.GreaterEqual("longitude", q.Longitude-q.AreaRangeDegrees),
		repository.LessEqual("longitude", q.Longitude+q.AreaRangeDegrees),
		repository.GreaterEqual("date_of_transfer", since),
		repository.LessEqual("date_of_transfer", until),
	}
	rows, err := s.source.SelectTransactions(ctx, transactionsTable, conds, q.Limit)
	if err != nil {
		return nil, err
	}

	comparables := make([]model.Sample, 0, len(rows))
	for _, row := range rows {
		if row.PropertyType != q.PropertyType {
			continue
		}
		if isSameTransaction(row, target) {
			continue
		}
		comparables = append(comparables, row)
	}
	return comparables, nil
}

// isSameTransaction reports whether two rows describe the same sale.
// Coordinates match within tolerance; the date comparison is exact, so two
// sales of the same property on different days stay distinct.
func isSameTransaction(a, b model.Sample) bool {
	return math.Abs(a.Latitude-b.Latitude) <= coordTolerance &&
		math.Abs(a.Longitude-b.Longitude) <= coordTolerance &&
		a.DateOfTransfer.Equal(b.DateOfTransfer) &&
		a.PropertyType == b.PropertyType
}
