// Package sgd fits a line by mini-batch stochastic gradient descent on the
// mean squared error, for comparison against the closed-form OLS fit.
package sgd

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun"
	"github.com/m-mizutani/trialrun/regression"
)

// ErrDiverged is returned when the loss stops being finite, usually because
// the learning rate is too large for the scale of x.
var ErrDiverged = errors.New("gradient descent diverged")

const (
	DefaultLearningRate = 0.05
	DefaultBatchSize    = 8
	DefaultEpochs       = 1000
	DefaultTolerance    = 1e-12
)

type config struct {
	learningRate float64
	batchSize    int
	epochs       int
	tolerance    float64
	logger       *slog.Logger
}

// Option configures Train.
type Option func(*config)

// WithLearningRate sets the step size.
func WithLearningRate(rate float64) Option {
	return func(c *config) {
		c.learningRate = rate
	}
}

// WithBatchSize sets the number of points per gradient step.
func WithBatchSize(n int) Option {
	return func(c *config) {
		c.batchSize = n
	}
}

// WithEpochs sets the maximum number of passes over the data.
func WithEpochs(n int) Option {
	return func(c *config) {
		c.epochs = n
	}
}

// WithTolerance stops training once an epoch improves the loss by less than
// tol. Zero runs every epoch.
func WithTolerance(tol float64) Option {
	return func(c *config) {
		c.tolerance = tol
	}
}

// WithLogger sets the logger for per-epoch debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Model is a line fitted by gradient descent.
type Model struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	// Epochs is the number of completed passes.
	Epochs int `json:"epochs"`
	// Loss is the mean squared error after the last epoch.
	Loss      float64 `json:"loss"`
	Converged bool    `json:"converged"`
}

// Line returns the model as a regression.Line.
func (m *Model) Line() *regression.Line {
	return &regression.Line{Intercept: m.Intercept, Slope: m.Slope}
}

// Train fits ds starting from a random intercept and slope drawn from src.
// Every epoch visits the points in a fresh random order, split into batches.
func Train(ctx context.Context, ds *regression.Dataset, src trialrun.Source, opts ...Option) (*Model, error) {
	cfg := config{
		learningRate: DefaultLearningRate,
		batchSize:    DefaultBatchSize,
		epochs:       DefaultEpochs,
		tolerance:    DefaultTolerance,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if !(cfg.learningRate > 0) {
		return nil, goerr.Wrap(trialrun.ErrInvalidArgument, "learning rate must be positive", goerr.V("learning_rate", cfg.learningRate))
	}
	if cfg.batchSize < 1 {
		return nil, goerr.Wrap(trialrun.ErrInvalidArgument, "batch size must be positive", goerr.V("batch_size", cfg.batchSize))
	}
	if cfg.epochs < 1 {
		return nil, goerr.Wrap(trialrun.ErrInvalidArgument, "epochs must be positive", goerr.V("epochs", cfg.epochs))
	}
	if cfg.tolerance < 0 {
		return nil, goerr.Wrap(trialrun.ErrInvalidArgument, "tolerance must not be negative", goerr.V("tolerance", cfg.tolerance))
	}

	m := &Model{
		Intercept: src.Float64(),
		Slope:     src.Float64(),
	}
	m.Loss = regression.MSE(m.Line(), ds)

	order := make([]int, ds.Len())
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= cfg.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "training canceled", goerr.V("epoch", epoch))
		}

		shuffle(order, src)
		for start := 0; start < len(order); start += cfg.batchSize {
			m.step(ds, order[start:min(start+cfg.batchSize, len(order))], cfg.learningRate)
		}

		prev := m.Loss
		m.Loss = regression.MSE(m.Line(), ds)
		m.Epochs = epoch

		if math.IsNaN(m.Loss) || math.IsInf(m.Loss, 0) {
			return nil, goerr.Wrap(ErrDiverged, "loss is not finite",
				goerr.V("epoch", epoch), goerr.V("learning_rate", cfg.learningRate))
		}

		cfg.logger.Debug("epoch done", "epoch", epoch, "loss", m.Loss)

		if cfg.tolerance > 0 && math.Abs(prev-m.Loss) < cfg.tolerance {
			m.Converged = true
			break
		}
	}

	return m, nil
}

// step applies one gradient update for the points at idx.
func (m *Model) step(ds *regression.Dataset, idx []int, rate float64) {
	var gradIntercept, gradSlope float64
	for _, i := range idx {
		residual := m.Intercept + m.Slope*ds.X[i] - ds.Y[i]
		gradIntercept += residual
		gradSlope += residual * ds.X[i]
	}
	scale := 2 / float64(len(idx))
	m.Intercept -= rate * scale * gradIntercept
	m.Slope -= rate * scale * gradSlope
}

// shuffle is a Fisher-Yates permutation driven by src.
func shuffle(order []int, src trialrun.Source) {
	for i := len(order) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
}

// Comparison sets a gradient-descent fit against a reference fit.
type Comparison struct {
	Model          regression.Line `json:"model"`
	Reference      regression.Line `json:"reference"`
	InterceptDelta float64         `json:"intercept_delta"`
	SlopeDelta     float64         `json:"slope_delta"`
	ModelMSE       float64         `json:"model_mse"`
	ReferenceMSE   float64         `json:"reference_mse"`
}

// Compare evaluates both lines on ds. Deltas are model minus reference.
func Compare(m *Model, reference *regression.Line, ds *regression.Dataset) Comparison {
	line := m.Line()
	return Comparison{
		Model:          *line,
		Reference:      *reference,
		InterceptDelta: line.Intercept - reference.Intercept,
		SlopeDelta:     line.Slope - reference.Slope,
		ModelMSE:       regression.MSE(line, ds),
		ReferenceMSE:   regression.MSE(reference, ds),
	}
}
