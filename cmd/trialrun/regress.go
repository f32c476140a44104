package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun"
	"github.com/m-mizutani/trialrun/regression"
	"github.com/m-mizutani/trialrun/regression/sgd"
	"github.com/urfave/cli/v3"
)

func datasetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "csv",
			Required: true,
			Sources:  cli.EnvVars("TRIALRUN_CSV"),
			Usage:    "CSV file with the observations",
		},
		&cli.IntFlag{
			Name:  "x-col",
			Value: 0,
			Usage: "Zero-based column index of x",
		},
		&cli.IntFlag{
			Name:  "y-col",
			Value: 1,
			Usage: "Zero-based column index of y",
		},
		&cli.BoolFlag{
			Name:  "header",
			Usage: "Skip the first CSV record",
		},
		&cli.BoolFlag{
			Name:  "scale",
			Usage: "Min-max scale x to [0, 1] before fitting",
		},
	}
}

func loadDataset(cmd *cli.Command) (*regression.Dataset, error) {
	path := cmd.String("csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open CSV", goerr.V("path", path))
	}
	defer func() { _ = f.Close() }()

	ds, err := regression.LoadCSV(f, regression.Columns{
		X:      cmd.Int("x-col"),
		Y:      cmd.Int("y-col"),
		Header: cmd.Bool("header"),
	})
	if err != nil {
		return nil, tagInvalid(goerr.Wrap(err, "failed to load dataset", goerr.V("path", path)))
	}

	if cmd.Bool("scale") {
		if ds, err = ds.ScaleX(); err != nil {
			return nil, tagInvalid(err)
		}
	}
	return ds, nil
}

func regressCommand() *cli.Command {
	return &cli.Command{
		Name:  "regress",
		Usage: "Fit a least-squares line and check that it passes through the centroid",
		Flags: append(datasetFlags(),
			&cli.Float64Flag{
				Name:  "tolerance",
				Value: 1e-9,
				Usage: "Allowed distance between the line and the centroid, relative to max(1, |centroid y|)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ds, err := loadDataset(cmd)
			if err != nil {
				return err
			}

			line, err := regression.Fit(ds)
			if err != nil {
				return tagInvalid(err)
			}
			m := regression.Evaluate(line, ds)
			c := regression.Centroid(ds)

			w := stdout(cmd)
			fmt.Fprintf(w, "y = %.6f * x + %.6f\n", line.Slope, line.Intercept)
			fmt.Fprintf(w, "mean squared error: %.6f\n", m.MSE)
			fmt.Fprintf(w, "coefficient of determination: %.6f\n", m.RSquared)
			fmt.Fprintf(w, "centroid: (%.6f, %.6f)\n", c.X, c.Y)

			residual, err := regression.CheckCentroid(line, ds, cmd.Float64("tolerance"))
			fmt.Fprintf(w, "centroid on line: expected %.6f, predicted %.6f\n", c.Y, c.Y+residual)
			if err != nil {
				return err
			}

			slog.Debug("regression done",
				slog.Int("points", ds.Len()),
				slog.Float64("slope", line.Slope),
				slog.Float64("intercept", line.Intercept),
			)
			return nil
		},
	}
}

func sgdCommand() *cli.Command {
	return &cli.Command{
		Name:  "sgd",
		Usage: "Fit a line by stochastic gradient descent and compare it to least squares",
		Flags: append(datasetFlags(),
			&cli.Float64Flag{
				Name:  "learning-rate",
				Value: sgd.DefaultLearningRate,
				Usage: "Gradient step size",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Value: sgd.DefaultBatchSize,
				Usage: "Points per gradient step",
			},
			&cli.IntFlag{
				Name:  "epochs",
				Value: sgd.DefaultEpochs,
				Usage: "Maximum passes over the data",
			},
			&cli.Float64Flag{
				Name:  "tolerance",
				Value: sgd.DefaultTolerance,
				Usage: "Stop when an epoch improves the loss by less than this (0 runs every epoch)",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Seed for the initial weights and shuffling (random when unset)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ds, err := loadDataset(cmd)
			if err != nil {
				return err
			}

			reference, err := regression.Fit(ds)
			if err != nil {
				return tagInvalid(err)
			}

			src := trialrun.NewSource(cmd.Uint64("seed"), 0)
			if !cmd.IsSet("seed") {
				src = trialrun.NewSource(rand.Uint64(), rand.Uint64())
			}

			model, err := sgd.Train(ctx, ds, src,
				sgd.WithLearningRate(cmd.Float64("learning-rate")),
				sgd.WithBatchSize(cmd.Int("batch-size")),
				sgd.WithEpochs(cmd.Int("epochs")),
				sgd.WithTolerance(cmd.Float64("tolerance")),
				sgd.WithLogger(slog.Default()),
			)
			if err != nil {
				if errors.Is(err, sgd.ErrDiverged) {
					return goerr.Wrap(err, "try a smaller --learning-rate or --scale")
				}
				return tagInvalid(err)
			}

			cmp := sgd.Compare(model, reference, ds)
			w := stdout(cmd)
			fmt.Fprintf(w, "least squares:    y = %.6f * x + %.6f (mse %.6f)\n",
				cmp.Reference.Slope, cmp.Reference.Intercept, cmp.ReferenceMSE)
			fmt.Fprintf(w, "gradient descent: y = %.6f * x + %.6f (mse %.6f)\n",
				cmp.Model.Slope, cmp.Model.Intercept, cmp.ModelMSE)
			fmt.Fprintf(w, "delta: slope %+.6f, intercept %+.6f after %d epochs (converged: %t)\n",
				cmp.SlopeDelta, cmp.InterceptDelta, model.Epochs, model.Converged)
			return nil
		},
	}
}
