package core

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Model is a fitted linear price model over compressed features.
type Model struct {
	coef      *mat.VecDense
	intercept bool
}

// FitRegression solves least squares over the feature matrix with an L2
// penalty on the coefficients; a zero penalty gives plain least squares.
// The penalty is applied through the augmented system [X; sqrt(penalty)*I]
// against [prices; 0]. No intercept column is assumed; intercept appends
// one.
func FitRegression(features *mat.Dense, prices []float64, penalty float64, intercept bool) (*Model, error) {
	n, k := features.Dims()
	if n != len(prices) {
		return nil, errors.Errorf("regression: %d feature rows against %d prices", n, len(prices))
	}
	if n == 0 {
		return nil, errors.New("regression: no samples")
	}

	x := features
	if intercept {
		x = appendOnes(features)
		k++
	}

	rows := n
	if penalty > 0 {
		rows += k
	}
	augmented := mat.NewDense(rows, k, nil)
	target := mat.NewVecDense(rows, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			augmented.Set(i, j, x.At(i, j))
		}
		target.SetVec(i, prices[i])
	}
	if penalty > 0 {
		shrink := math.Sqrt(penalty)
		for j := 0; j < k; j++ {
			augmented.Set(n+j, j, shrink)
		}
	}

	var coef mat.VecDense
	if err := coef.SolveVec(augmented, target); err != nil {
		// An ill-conditioned system still yields a usable solution; only a
		// failed solve is fatal.
		if _, ok := err.(mat.Condition); !ok {
			return nil, errors.Wrapf(err, "regression: solve %dx%d system", rows, k)
		}
	}
	return &Model{coef: &coef, intercept: intercept}, nil
}

// Predict returns the price for one compressed feature row.
func (m *Model) Predict(features []float64) (float64, error) {
	want := m.coef.Len()
	if m.intercept {
		want--
	}
	if len(features) != want {
		return 0, errors.Errorf("regression: %d features against %d coefficients", len(features), want)
	}

	row := features
	if m.intercept {
		row = make([]float64, 0, len(features)+1)
		row = append(row, features...)
		row = append(row, 1)
	}
	return mat.Dot(mat.NewVecDense(len(row), row), m.coef), nil
}

func appendOnes(features *mat.Dense) *mat.Dense {
	n, k := features.Dims()
	out := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out.Set(i, j, features.At(i, j))
		}
		out.Set(i, k, 1)
	}
	return out
}
