package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun"
	"github.com/m-mizutani/trialrun/circle"
	"github.com/m-mizutani/trialrun/montyhall"
	"github.com/m-mizutani/trialrun/trace"
	"github.com/m-mizutani/trialrun/trace/console"
	"github.com/m-mizutani/trialrun/trace/logger"
	traceOtel "github.com/m-mizutani/trialrun/trace/otel"
	"github.com/urfave/cli/v3"
)

const (
	defaultTrials  = 1_000_000_000
	defaultCadence = 10_000_000
)

func runFlags(envPrefix string) []cli.Flag {
	flags := []cli.Flag{
		&cli.Int64Flag{
			Name:    "trials",
			Aliases: []string{"n"},
			Value:   defaultTrials,
			Sources: cli.EnvVars(envPrefix + "_TRIALS"),
			Usage:   "Total number of trials",
		},
		&cli.Int64Flag{
			Name:    "cadence",
			Value:   defaultCadence,
			Sources: cli.EnvVars(envPrefix + "_CADENCE"),
			Usage:   "Print a progress line every N trials",
		},
		&cli.IntFlag{
			Name:    "workers",
			Value:   1,
			Sources: cli.EnvVars(envPrefix + "_WORKERS"),
			Usage:   "Number of goroutines running trials",
		},
		&cli.Uint64Flag{
			Name:    "seed",
			Sources: cli.EnvVars(envPrefix + "_SEED"),
			Usage:   "Seed for reproducible runs (random when unset)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Sources: cli.EnvVars(envPrefix + "_QUIET"),
			Usage:   "Do not print progress lines",
		},
		&cli.BoolFlag{
			Name:    "log-progress",
			Sources: cli.EnvVars(envPrefix + "_LOG_PROGRESS"),
			Usage:   "Also emit run events as structured logs",
		},
		&cli.BoolFlag{
			Name:    "otel-stdout",
			Sources: cli.EnvVars("TRIALRUN_OTEL_STDOUT"),
			Usage:   "Export the run as an OpenTelemetry span to stderr",
		},
	}
	return append(flags, reportFlags()...)
}

func montyHallCommand() *cli.Command {
	return &cli.Command{
		Name:  "montyhall",
		Usage: "Simulate the Monty Hall problem",
		Flags: append(runFlags("TRIALRUN_MONTYHALL"),
			&cli.StringFlag{
				Name:    "strategy",
				Value:   montyhall.Switch.String(),
				Sources: cli.EnvVars("TRIALRUN_MONTYHALL_STRATEGY"),
				Usage:   "Guesser strategy (switch, stay)",
			},
			&cli.StringFlag{
				Name:    "reveal",
				Value:   montyhall.RevealLowest.String(),
				Sources: cli.EnvVars("TRIALRUN_MONTYHALL_REVEAL"),
				Usage:   "Host tie-break when the first pick is the prize (lowest, random, highest)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			strategy, err := montyhall.ParseStrategy(cmd.String("strategy"))
			if err != nil {
				return tagInvalid(err)
			}
			policy, err := montyhall.ParseRevealPolicy(cmd.String("reveal"))
			if err != nil {
				return tagInvalid(err)
			}

			exp := montyhall.New(
				montyhall.WithStrategy(strategy),
				montyhall.WithRevealPolicy(policy),
			)
			_, err = runExperiment(ctx, cmd, exp)
			return err
		},
	}
}

func piCommand() *cli.Command {
	return &cli.Command{
		Name:  "pi",
		Usage: "Estimate pi from random points in the unit square",
		Flags: runFlags("TRIALRUN_PI"),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			result, err := runExperiment(ctx, cmd, circle.Experiment{})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "pi is approximately %.6f (95%% CI %.6f-%.6f)\n",
				circle.EstimatePi(result.Probability),
				circle.EstimatePi(result.Lower),
				circle.EstimatePi(result.Upper),
			)
			return nil
		},
	}
}

// runExperiment wires the handlers selected by flags and runs exp.
func runExperiment(ctx context.Context, cmd *cli.Command, exp trialrun.Experiment) (*trialrun.Result, error) {
	var handlers []trace.Handler

	if !cmd.Bool("quiet") {
		handlers = append(handlers, console.New(console.WithWriter(stdout(cmd))))
	}
	if cmd.Bool("log-progress") {
		handlers = append(handlers, logger.New())
	}

	if cmd.Bool("otel-stdout") {
		tp, err := newStdoutTracerProvider(stderr(cmd))
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("failed to shut down tracer provider", slog.Any("error", err))
			}
		}()
		handlers = append(handlers, traceOtel.New(traceOtel.WithTracerProvider(tp)))
	}

	repo, closeRepo, err := newReportRepository(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer closeRepo()

	var rec *trace.Recorder
	if repo != nil {
		rec = trace.New(
			trace.WithRepository(repo),
			trace.WithMetadata(trace.ReportMetadata{Command: cmd.Name}),
		)
		handlers = append(handlers, rec)
	}

	opts := []trialrun.Option{
		trialrun.WithWorkers(cmd.Int("workers")),
		trialrun.WithLogger(slog.Default()),
		trialrun.WithTrace(trace.Multi(handlers...)),
	}
	if cmd.IsSet("seed") {
		opts = append(opts, trialrun.WithSeed(cmd.Uint64("seed")))
	}

	result, err := trialrun.New(exp, opts...).Run(ctx, cmd.Int64("trials"), cmd.Int64("cadence"))
	if err != nil {
		return nil, tagInvalid(err)
	}

	if rec != nil && rec.Report() != nil {
		slog.Info("report saved", slog.String("report_id", rec.Report().ReportID))
	}
	return result, nil
}

// tagInvalid marks caller-input errors so main can exit with a usage status.
func tagInvalid(err error) error {
	if !goerr.HasTag(err, trialrun.ErrTagInvalidArgument) && isInvalidArgument(err) {
		return goerr.Wrap(err, "invalid argument", goerr.Tag(trialrun.ErrTagInvalidArgument))
	}
	return err
}
