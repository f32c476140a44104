package sgd_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/trialrun"
	"github.com/m-mizutani/trialrun/internal"
	"github.com/m-mizutani/trialrun/regression"
	"github.com/m-mizutani/trialrun/regression/sgd"
)

func line(t *testing.T, intercept, slope float64, n int) *regression.Dataset {
	t.Helper()
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range n {
		x[i] = float64(i) / float64(n-1)
		y[i] = intercept + slope*x[i]
	}
	return gt.R1(regression.NewDataset(x, y)).NoError(t)
}

func TestTrainNoiseless(t *testing.T) {
	ds := line(t, 2, 3, 11)

	m, err := sgd.Train(context.Background(), ds, trialrun.NewSource(1, 0),
		sgd.WithEpochs(5000),
		sgd.WithTolerance(0),
		sgd.WithLogger(internal.TestLogger()),
	)
	gt.NoError(t, err)
	gt.Equal(t, m.Epochs, 5000)
	gt.False(t, m.Converged)
	gt.True(t, math.Abs(m.Intercept-2) < 1e-3)
	gt.True(t, math.Abs(m.Slope-3) < 1e-3)
	gt.True(t, m.Loss < 1e-6)
}

func TestTrainMatchesLeastSquares(t *testing.T) {
	raw := gt.R1(regression.NewDataset(
		[]float64{2, 3, 5, 7, 12, 13},
		[]float64{4, 6, 9, 11, 15, 17},
	)).NoError(t)
	ds := gt.R1(raw.ScaleX()).NoError(t)
	reference := gt.R1(regression.Fit(ds)).NoError(t)

	// A batch larger than the data makes every step a full gradient step.
	m, err := sgd.Train(context.Background(), ds, trialrun.NewSource(2, 0),
		sgd.WithLearningRate(0.1),
		sgd.WithBatchSize(16),
		sgd.WithEpochs(20000),
	)
	gt.NoError(t, err)
	gt.True(t, m.Converged)
	gt.N(t, m.Epochs).Less(20000)

	cmp := sgd.Compare(m, reference, ds)
	gt.True(t, math.Abs(cmp.SlopeDelta) < 1e-3)
	gt.True(t, math.Abs(cmp.InterceptDelta) < 1e-3)
	gt.True(t, cmp.ModelMSE >= cmp.ReferenceMSE-1e-12)
	gt.Equal(t, cmp.Reference, *reference)
}

func TestTrainDiverges(t *testing.T) {
	ds := gt.R1(regression.NewDataset(
		[]float64{2, 3, 5, 7, 12, 13},
		[]float64{4, 6, 9, 11, 15, 17},
	)).NoError(t)

	_, err := sgd.Train(context.Background(), ds, trialrun.NewSource(3, 0),
		sgd.WithLearningRate(10),
		sgd.WithTolerance(0),
	)
	gt.True(t, errors.Is(err, sgd.ErrDiverged))
}

func TestTrainInvalidOptions(t *testing.T) {
	ds := line(t, 1, 1, 5)
	testCases := map[string]sgd.Option{
		"zero learning rate": sgd.WithLearningRate(0),
		"nan learning rate":  sgd.WithLearningRate(math.NaN()),
		"zero batch":         sgd.WithBatchSize(0),
		"zero epochs":        sgd.WithEpochs(0),
		"negative tolerance": sgd.WithTolerance(-1),
	}
	for name, opt := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := sgd.Train(context.Background(), ds, trialrun.NewSource(1, 0), opt)
			gt.True(t, errors.Is(err, trialrun.ErrInvalidArgument))
		})
	}

	_, err := sgd.Train(context.Background(), &regression.Dataset{X: []float64{1}, Y: []float64{1}}, trialrun.NewSource(1, 0))
	gt.True(t, errors.Is(err, regression.ErrInvalidDataset))
}

func TestTrainCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sgd.Train(ctx, line(t, 1, 1, 5), trialrun.NewSource(1, 0))
	gt.True(t, errors.Is(err, context.Canceled))
}

func TestTrainReproducible(t *testing.T) {
	ds := line(t, 0.5, -2, 20)
	train := func() *sgd.Model {
		return gt.R1(sgd.Train(context.Background(), ds, trialrun.NewSource(9, 1),
			sgd.WithEpochs(50), sgd.WithTolerance(0))).NoError(t)
	}
	a, b := train(), train()
	gt.Equal(t, a.Intercept, b.Intercept)
	gt.Equal(t, a.Slope, b.Slope)
}
