package regression

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/m-mizutani/goerr/v2"
	"gonum.org/v1/gonum/stat"
)

// Line is y = Intercept + Slope*x.
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// Predict evaluates the line at x.
func (l Line) Predict(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Fit returns the ordinary least-squares line through ds.
func Fit(ds *Dataset) (*Line, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	alpha, beta := stat.LinearRegression(ds.X, ds.Y, nil, false)
	return &Line{Intercept: alpha, Slope: beta}, nil
}

// Point is a single (x, y) coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Centroid returns (mean x, mean y).
func Centroid(ds *Dataset) Point {
	xs := stats.Sample{Xs: ds.X}
	ys := stats.Sample{Xs: ds.Y}
	return Point{X: xs.Mean(), Y: ys.Mean()}
}

// CheckCentroid evaluates line at the centroid's x and returns how far the
// prediction is from the centroid's y. An OLS line with an intercept always
// passes through the centroid, so a residual beyond tolerance is ErrOffCentroid.
// tolerance is relative: it is scaled by max(1, |centroid y|).
func CheckCentroid(line *Line, ds *Dataset, tolerance float64) (float64, error) {
	c := Centroid(ds)
	residual := line.Predict(c.X) - c.Y
	allowed := tolerance * max(1, math.Abs(c.Y))
	if math.Abs(residual) > allowed {
		return residual, goerr.Wrap(ErrOffCentroid, "line misses the centroid",
			goerr.V("centroid", c),
			goerr.V("predicted", line.Predict(c.X)),
			goerr.V("tolerance", tolerance),
			goerr.V("allowed", allowed),
		)
	}
	return residual, nil
}

// Metrics describes how well a line fits a dataset.
type Metrics struct {
	MSE      float64 `json:"mse"`
	RSquared float64 `json:"r_squared"`
}

// Evaluate computes the mean squared error and the coefficient of determination.
func Evaluate(line *Line, ds *Dataset) Metrics {
	return Metrics{
		MSE:      MSE(line, ds),
		RSquared: stat.RSquared(ds.X, ds.Y, nil, line.Intercept, line.Slope),
	}
}

// MSE returns the mean squared residual of line over ds.
func MSE(line *Line, ds *Dataset) float64 {
	if ds.Len() == 0 {
		return 0
	}
	var sum float64
	for i, x := range ds.X {
		d := line.Predict(x) - ds.Y[i]
		sum += d * d
	}
	return sum / float64(ds.Len())
}
