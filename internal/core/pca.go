package core

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"houseprice_service/internal/domain/model"
)

// DefaultVarianceThreshold is the cumulative explained-variance ratio a
// component prefix must exceed to be selected.
const DefaultVarianceThreshold = 0.95

// Compression is the outcome of projecting a feature table onto its leading
// principal components.
type Compression struct {
	// Projected holds one row per input sample and one column per selected
	// component.
	Projected *mat.Dense
	// Components is the number of selected components.
	Components int
	// Cumulative holds the running explained-variance ratio per component.
	Cumulative []float64
	// Kept lists the input feature columns that survived correlation
	// filtering.
	Kept []int
}

// FeatureCompressor reduces a combined feature table to the smallest number
// of principal components explaining the configured share of variance. The
// components are fitted on the features' correlation matrix, so they
// describe structure among features, not among samples.
type FeatureCompressor struct {
	threshold float64
}

func NewFeatureCompressor(threshold float64) *FeatureCompressor {
	if threshold <= 0 {
		threshold = DefaultVarianceThreshold
	}
	return &FeatureCompressor{threshold: threshold}
}

// Compress concatenates POI and property features per sample, drops features
// whose correlation is undefined against every partner, and projects every
// sample onto the leading component axes of the correlation matrix.
func (c *FeatureCompressor) Compress(poiFeatures, propertyFeatures [][]float64) (*Compression, error) {
	table, width, err := combineFeatures(poiFeatures, propertyFeatures)
	if err != nil {
		return nil, err
	}
	samples := len(poiFeatures)
	if samples < 2 {
		return nil, errors.Wrapf(model.ErrDegenerateFeatures, "%d samples, correlations need at least 2", samples)
	}

	kept := usableFeatures(table, samples, width)
	if len(kept) == 0 {
		return nil, errors.Wrap(model.ErrDegenerateFeatures, "no feature has a defined correlation")
	}
	reduced := reduceColumns(table, kept)

	// Pairwise correlations are unaffected by the dropped columns, so the
	// matrix is formed on the reduced table directly.
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, reduced, nil)

	axes, cumulative, err := principalAxes(&corr, len(kept))
	if err != nil {
		return nil, err
	}
	components := componentCutoff(cumulative, c.threshold)

	return &Compression{
		Projected:  project(reduced, &corr, axes, components),
		Components: components,
		Cumulative: cumulative,
		Kept:       kept,
	}, nil
}

// combineFeatures builds the raw feature table, POI columns first.
func combineFeatures(poiFeatures, propertyFeatures [][]float64) (*mat.Dense, int, error) {
	if len(poiFeatures) != len(propertyFeatures) {
		return nil, 0, errors.Errorf("feature tables disagree: %d poi rows, %d property rows",
			len(poiFeatures), len(propertyFeatures))
	}
	if len(poiFeatures) == 0 {
		return nil, 0, errors.Wrap(model.ErrDegenerateFeatures, "empty feature table")
	}
	width := len(poiFeatures[0]) + len(propertyFeatures[0])
	if width == 0 {
		return nil, 0, errors.Wrap(model.ErrDegenerateFeatures, "no features configured")
	}

	table := mat.NewDense(len(poiFeatures), width, nil)
	for i := range poiFeatures {
		if len(poiFeatures[i])+len(propertyFeatures[i]) != width {
			return nil, 0, errors.Errorf("sample %d has %d features, want %d",
				i, len(poiFeatures[i])+len(propertyFeatures[i]), width)
		}
		row := make([]float64, 0, width)
		row = append(row, poiFeatures[i]...)
		row = append(row, propertyFeatures[i]...)
		table.SetRow(i, row)
	}
	return table, width, nil
}

// usableFeatures returns the indices of feature columns carrying variance.
// A zero-variance feature correlates as NaN with every partner and is
// dropped before the matrix is formed.
func usableFeatures(table *mat.Dense, rows, width int) []int {
	col := make([]float64, rows)
	kept := make([]int, 0, width)
	for j := 0; j < width; j++ {
		mat.Col(col, j, table)
		if stat.Variance(col, nil) > 0 {
			kept = append(kept, j)
		}
	}
	return kept
}

func reduceColumns(table *mat.Dense, kept []int) *mat.Dense {
	rows, _ := table.Dims()
	reduced := mat.NewDense(rows, len(kept), nil)
	for i := 0; i < rows; i++ {
		for j, col := range kept {
			reduced.Set(i, j, table.At(i, col))
		}
	}
	return reduced
}

// principalAxes fits principal components on the correlation matrix itself,
// treating its rows as observations, and returns the component axes together
// with the cumulative explained-variance ratios.
func principalAxes(corr mat.Matrix, size int) (*mat.Dense, []float64, error) {
	if size == 1 {
		// A lone surviving feature leaves nothing to factorize: its axis is
		// the identity and its variance ratio is undefined.
		return mat.NewDense(1, 1, []float64{1}), []float64{math.NaN()}, nil
	}
	var pc stat.PC
	if ok := pc.PrincipalComponents(corr, nil); !ok {
		return nil, nil, errors.Wrap(model.ErrDegenerateFeatures, "principal components did not converge")
	}
	var axes mat.Dense
	pc.VectorsTo(&axes)
	return &axes, cumulativeRatios(pc.VarsTo(nil)), nil
}

// cumulativeRatios converts component variances into running explained
// variance ratios.
func cumulativeRatios(vars []float64) []float64 {
	var total float64
	for _, v := range vars {
		total += v
	}
	ratios := make([]float64, len(vars))
	sum := 0.0
	for i, v := range vars {
		sum += v / total
		ratios[i] = sum
	}
	return ratios
}

// componentCutoff selects the smallest component count whose cumulative
// ratio strictly exceeds the threshold. When no prefix exceeds it, which
// also covers undefined ratios, the first component is used alone.
func componentCutoff(cumulative []float64, threshold float64) int {
	for i, ratio := range cumulative {
		if ratio > threshold {
			return i + 1
		}
	}
	return 1
}

// project centers every sample row with the correlation matrix's column
// means, the means the axes were fitted against, and projects onto the first
// k axes.
func project(table *mat.Dense, corr mat.Matrix, axes *mat.Dense, k int) *mat.Dense {
	rows, width := table.Dims()

	means := make([]float64, width)
	col := make([]float64, width)
	for j := 0; j < width; j++ {
		mat.Col(col, j, corr)
		means[j] = stat.Mean(col, nil)
	}

	centered := mat.NewDense(rows, width, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < width; j++ {
			centered.Set(i, j, table.At(i, j)-means[j])
		}
	}

	var projected mat.Dense
	projected.Mul(centered, axes.Slice(0, width, 0, k))
	return &projected
}
