package regression_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/trialrun/regression"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func sample(t *testing.T) *regression.Dataset {
	t.Helper()
	return gt.R1(regression.NewDataset(
		[]float64{2, 3, 5, 7, 12, 13},
		[]float64{4, 6, 9, 11, 15, 17},
	)).NoError(t)
}

func TestFit(t *testing.T) {
	ds := sample(t)
	line := gt.R1(regression.Fit(ds)).NoError(t)

	gt.True(t, near(line.Slope, 115.0/106.0, 1e-9))
	gt.True(t, near(line.Intercept, 31.0/3.0-7*115.0/106.0, 1e-9))
	gt.True(t, near(line.Predict(0), line.Intercept, 0))
}

func TestCentroid(t *testing.T) {
	ds := sample(t)
	c := regression.Centroid(ds)
	gt.True(t, near(c.X, 7, 1e-12))
	gt.True(t, near(c.Y, 31.0/3.0, 1e-12))

	line := gt.R1(regression.Fit(ds)).NoError(t)
	residual, err := regression.CheckCentroid(line, ds, 1e-9)
	gt.NoError(t, err)
	gt.True(t, near(residual, 0, 1e-9))

	off := &regression.Line{Intercept: line.Intercept + 1, Slope: line.Slope}
	residual, err = regression.CheckCentroid(off, ds, 1e-9)
	gt.True(t, errors.Is(err, regression.ErrOffCentroid))
	gt.True(t, near(residual, 1, 1e-9))
}

func TestCentroidRelativeTolerance(t *testing.T) {
	ds := gt.R1(regression.NewDataset(
		[]float64{1, 2, 3, 4, 5},
		[]float64{1e8 + 3, 2e8 - 1, 3e8 + 7, 4e8 + 2, 5e8 - 4},
	)).NoError(t)
	c := regression.Centroid(ds)

	line := gt.R1(regression.Fit(ds)).NoError(t)
	_, err := regression.CheckCentroid(line, ds, 1e-9)
	gt.NoError(t, err)

	// 0.05 off at |y| = 3e8 is within 1e-9 relative, 1 is not.
	slight := &regression.Line{Intercept: c.Y + 0.05 - line.Slope*c.X, Slope: line.Slope}
	_, err = regression.CheckCentroid(slight, ds, 1e-9)
	gt.NoError(t, err)

	far := &regression.Line{Intercept: c.Y + 1 - line.Slope*c.X, Slope: line.Slope}
	_, err = regression.CheckCentroid(far, ds, 1e-9)
	gt.True(t, errors.Is(err, regression.ErrOffCentroid))
}

func TestEvaluate(t *testing.T) {
	ds := sample(t)
	line := gt.R1(regression.Fit(ds)).NoError(t)

	m := regression.Evaluate(line, ds)
	gt.True(t, near(m.MSE, 0.428197, 1e-5))
	gt.True(t, near(m.RSquared, 0.979823, 1e-5))

	perfect := gt.R1(regression.NewDataset([]float64{0, 1, 2}, []float64{1, 3, 5})).NoError(t)
	m = regression.Evaluate(&regression.Line{Intercept: 1, Slope: 2}, perfect)
	gt.Equal(t, m.MSE, 0.0)
	gt.True(t, near(m.RSquared, 1, 1e-12))
}

func TestDatasetValidate(t *testing.T) {
	testCases := map[string]struct {
		x, y []float64
	}{
		"length mismatch": {x: []float64{1, 2}, y: []float64{1}},
		"single point":    {x: []float64{1}, y: []float64{1}},
		"empty":           {},
		"constant x":      {x: []float64{3, 3, 3}, y: []float64{1, 2, 3}},
		"nan":             {x: []float64{1, math.NaN()}, y: []float64{1, 2}},
		"inf":             {x: []float64{1, 2}, y: []float64{math.Inf(1), 2}},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := regression.NewDataset(tc.x, tc.y)
			gt.True(t, errors.Is(err, regression.ErrInvalidDataset))

			_, err = regression.Fit(&regression.Dataset{X: tc.x, Y: tc.y})
			gt.True(t, errors.Is(err, regression.ErrInvalidDataset))
		})
	}
}

func TestMinMaxScale(t *testing.T) {
	scaled := gt.R1(regression.MinMaxScale([]float64{2, 7, 12})).NoError(t)
	gt.Equal(t, scaled, []float64{0, 0.5, 1})

	_, err := regression.MinMaxScale(nil)
	gt.True(t, errors.Is(err, regression.ErrInvalidDataset))
	_, err = regression.MinMaxScale([]float64{4, 4})
	gt.True(t, errors.Is(err, regression.ErrInvalidDataset))

	ds := sample(t)
	scaledDS := gt.R1(ds.ScaleX()).NoError(t)
	gt.Equal(t, scaledDS.X[0], 0.0)
	gt.Equal(t, scaledDS.X[5], 1.0)
	gt.Equal(t, scaledDS.Y, ds.Y)
	gt.Equal(t, ds.X[0], 2.0) // original untouched
}

func TestLoadCSV(t *testing.T) {
	input := "id,x,y\n" +
		"a, 2, 4\n" +
		"b, 3, 6\n" +
		"\n" +
		"c, 5, 9\n"

	ds := gt.R1(regression.LoadCSV(strings.NewReader(input), regression.Columns{X: 1, Y: 2, Header: true})).NoError(t)
	gt.Equal(t, ds.X, []float64{2, 3, 5})
	gt.Equal(t, ds.Y, []float64{4, 6, 9})
}

func TestLoadCSVErrors(t *testing.T) {
	testCases := map[string]struct {
		input string
		cols  regression.Columns
	}{
		"header without flag": {input: "x,y\n1,2\n3,4\n", cols: regression.Columns{X: 0, Y: 1}},
		"missing column":      {input: "1,2\n3,4\n", cols: regression.Columns{X: 0, Y: 2}},
		"negative column":     {input: "1,2\n3,4\n", cols: regression.Columns{X: -1, Y: 1}},
		"too few rows":        {input: "1,2\n", cols: regression.Columns{X: 0, Y: 1}},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := regression.LoadCSV(strings.NewReader(tc.input), tc.cols)
			gt.True(t, errors.Is(err, regression.ErrInvalidDataset))
		})
	}

	_, err := regression.LoadCSV(strings.NewReader("1,\"2\n"), regression.Columns{X: 0, Y: 1})
	gt.Error(t, err)
}
