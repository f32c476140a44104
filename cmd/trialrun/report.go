package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun"
	"github.com/m-mizutani/trialrun/regression"
	"github.com/m-mizutani/trialrun/trace"
	"github.com/m-mizutani/trialrun/trace/cs"
	"github.com/urfave/cli/v3"
)

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "report-dir",
			Sources: cli.EnvVars("TRIALRUN_REPORT_DIR"),
			Usage:   "Local directory for run report JSON files",
		},
		&cli.StringFlag{
			Name:    "report-gcs",
			Sources: cli.EnvVars("TRIALRUN_REPORT_GCS"),
			Usage:   "Cloud Storage location for run reports (gs://bucket/prefix)",
		},
	}
}

type reportStore interface {
	trace.Repository
	trace.Browser
}

// parseGSURI splits gs://bucket/prefix. A non-empty prefix always ends with "/".
func parseGSURI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", goerr.Wrap(trialrun.ErrInvalidArgument, "Cloud Storage URI must start with gs://",
			goerr.V("uri", uri), goerr.Tag(trialrun.ErrTagInvalidArgument))
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", goerr.Wrap(trialrun.ErrInvalidArgument, "Cloud Storage URI has no bucket",
			goerr.V("uri", uri), goerr.Tag(trialrun.ErrTagInvalidArgument))
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, nil
}

// newReportRepository returns nil when neither --report-dir nor
// --report-gcs is set. The returned close func is always non-nil.
func newReportRepository(ctx context.Context, cmd *cli.Command) (reportStore, func(), error) {
	dir := cmd.String("report-dir")
	uri := cmd.String("report-gcs")
	noop := func() {}

	switch {
	case dir != "" && uri != "":
		return nil, noop, goerr.Wrap(trialrun.ErrInvalidArgument, "--report-dir and --report-gcs are mutually exclusive",
			goerr.Tag(trialrun.ErrTagInvalidArgument))
	case dir != "":
		return trace.NewFileRepository(dir), noop, nil
	case uri != "":
		bucket, prefix, err := parseGSURI(uri)
		if err != nil {
			return nil, noop, err
		}
		repo, err := cs.New(ctx, bucket, prefix)
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to create Cloud Storage repository")
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				slog.Warn("failed to close Cloud Storage client", slog.Any("error", err))
			}
		}, nil
	}
	return nil, noop, nil
}

func reportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "List saved run reports, or print one with --id",
		Flags: append(reportFlags(),
			&cli.StringFlag{
				Name:  "id",
				Usage: "Report ID to print as JSON",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Value: trace.DefaultPageSize,
				Usage: "Number of reports per page",
			},
			&cli.StringFlag{
				Name:  "page-token",
				Usage: "Token printed by the previous page",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, closeStore, err := newReportRepository(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeStore()
			if store == nil {
				return goerr.Wrap(trialrun.ErrInvalidArgument, "either --report-dir or --report-gcs must be specified",
					goerr.Tag(trialrun.ErrTagInvalidArgument))
			}

			if id := cmd.String("id"); id != "" {
				report, err := store.Get(ctx, id)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(stdout(cmd))
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return goerr.Wrap(err, "failed to print report", goerr.V("report_id", id))
				}
				return nil
			}

			resp, err := store.List(ctx, trace.ListRequest{
				PageSize:  cmd.Int("page-size"),
				PageToken: cmd.String("page-token"),
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(stdout(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REPORT ID\tSIZE\tUPDATED")
			for _, r := range resp.Reports {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.ReportID, r.Size, r.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			if err := tw.Flush(); err != nil {
				return goerr.Wrap(err, "failed to print reports")
			}
			if resp.NextPageToken != "" {
				fmt.Fprintf(stdout(cmd), "next page token: %s\n", resp.NextPageToken)
			}
			return nil
		},
	}
}

func isInvalidArgument(err error) bool {
	return errors.Is(err, trialrun.ErrInvalidArgument) || errors.Is(err, regression.ErrInvalidDataset)
}
