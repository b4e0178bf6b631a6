package core

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"houseprice_service/internal/domain/model"
)

// CrossValidate measures the regression by leave-one-out: every sample is
// predicted by a model fitted on all the others. It returns the mean
// absolute percentage error and the Pearson correlation between actual
// prices and held-out predictions. A correlation of NaN means the held-out
// predictions carried no variance; it is reported as-is.
func CrossValidate(features *mat.Dense, prices []float64, penalty float64, intercept bool) (float64, float64, error) {
	n, k := features.Dims()
	if n != len(prices) {
		return 0, 0, errors.Errorf("cross-validation: %d feature rows against %d prices", n, len(prices))
	}
	if n < 2 {
		return 0, 0, errors.Wrapf(model.ErrUndefinedMetric, "%d samples, leave-one-out needs at least 2", n)
	}
	for i, price := range prices {
		if price == 0 {
			return 0, 0, errors.Wrapf(model.ErrUndefinedMetric, "sample %d has zero price", i)
		}
	}

	predictions := make([]float64, n)
	percentErrors := make([]float64, n)
	for i := 0; i < n; i++ {
		trainX, trainY, heldOut := holdOutRow(features, prices, i, k)
		fitted, err := FitRegression(trainX, trainY, penalty, intercept)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d", i)
		}
		predicted, err := fitted.Predict(heldOut)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d", i)
		}
		predictions[i] = predicted
		percentErrors[i] = 100 * math.Abs(predicted-prices[i]) / prices[i]
	}

	return stat.Mean(percentErrors, nil), stat.Correlation(prices, predictions, nil), nil
}

// holdOutRow splits the features and prices into a training set without row
// i and the held-out feature row itself.
func holdOutRow(features *mat.Dense, prices []float64, i, k int) (*mat.Dense, []float64, []float64) {
	n, _ := features.Dims()
	trainX := mat.NewDense(n-1, k, nil)
	trainY := make([]float64, 0, n-1)
	row := 0
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		for c := 0; c < k; c++ {
			trainX.Set(row, c, features.At(j, c))
		}
		trainY = append(trainY, prices[j])
		row++
	}
	return trainX, trainY, mat.Row(nil, i, features)
}
