package model

import "github.com/pkg/errors"

// Failure classes surfaced by the prediction pipeline. Components wrap these
// with context as they propagate; callers classify with errors.Is. No
// component retries or recovers; the first failure aborts the request.
var (
	// ErrDataAccess reports an unreachable or misbehaving external data
	// source (price database or point-of-interest service).
	ErrDataAccess = errors.New("data access failed")

	// ErrTargetNotFound reports that the requested transaction does not
	// exist in the price database.
	ErrTargetNotFound = errors.New("target transaction not found")

	// ErrDegenerateFeatures reports a feature table unusable for
	// compression: every feature dropped, or too few samples for PCA.
	ErrDegenerateFeatures = errors.New("degenerate feature table")

	// ErrUndefinedMetric reports an evaluation metric with no defined
	// value, such as a percentage error against a zero price.
	ErrUndefinedMetric = errors.New("undefined evaluation metric")

	// ErrUnknownCategory reports a categorical attribute value outside the
	// fixed encoding set.
	ErrUnknownCategory = errors.New("unknown category value")
)
