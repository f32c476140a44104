// Package cs stores run reports in Google Cloud Storage.
package cs

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun/trace"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Repository implements trace.Repository and trace.Browser on a bucket.
// Reports are stored as {prefix}{report_id}.json.
type Repository struct {
	bucket string
	prefix string
	client *storage.Client
}

var (
	_ trace.Repository = (*Repository)(nil)
	_ trace.Browser    = (*Repository)(nil)
)

// New creates a Repository with a new Cloud Storage client.
func New(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Repository, error) {
	if bucket == "" {
		return nil, goerr.New("bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}
	return &Repository{
		bucket: bucket,
		prefix: prefix,
		client: client,
	}, nil
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) objectName(reportID string) string {
	return r.prefix + reportID + ".json"
}

// Save uploads the report as a JSON object.
func (r *Repository) Save(ctx context.Context, report *trace.Report) error {
	objectName := r.objectName(report.ReportID)
	w := r.client.Bucket(r.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(report); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write report object",
			goerr.V("bucket", r.bucket),
			goerr.V("object", objectName),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close report object",
			goerr.V("bucket", r.bucket),
			goerr.V("object", objectName),
		)
	}
	return nil
}

// List returns a page of reports under the prefix.
func (r *Repository) List(ctx context.Context, req trace.ListRequest) (*trace.ListResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = trace.DefaultPageSize
	}

	it := r.client.Bucket(r.bucket).Objects(ctx, &storage.Query{Prefix: r.prefix})

	pager := iterator.NewPager(it, pageSize, req.PageToken)
	var attrs []*storage.ObjectAttrs
	nextToken, err := pager.NextPage(&attrs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list objects",
			goerr.V("bucket", r.bucket),
			goerr.V("prefix", r.prefix),
		)
	}

	resp := &trace.ListResponse{
		NextPageToken: nextToken,
	}

	for _, attr := range attrs {
		if !strings.HasSuffix(attr.Name, ".json") {
			continue
		}
		reportID := strings.TrimSuffix(strings.TrimPrefix(attr.Name, r.prefix), ".json")
		// Skip directory-like entries
		if reportID == "" || strings.Contains(reportID, "/") {
			continue
		}

		resp.Reports = append(resp.Reports, trace.ReportSummary{
			ReportID:  reportID,
			Size:      attr.Size,
			UpdatedAt: attr.Updated,
		})
	}

	return resp, nil
}

// Get downloads and decodes a report.
func (r *Repository) Get(ctx context.Context, reportID string) (*trace.Report, error) {
	objectName := r.objectName(reportID)
	reader, err := r.client.Bucket(r.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read report object",
			goerr.V("bucket", r.bucket),
			goerr.V("object", objectName),
		)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read report data",
			goerr.V("bucket", r.bucket),
			goerr.V("object", objectName),
		)
	}

	var report trace.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, goerr.Wrap(err, "failed to parse report data",
			goerr.V("bucket", r.bucket),
			goerr.V("object", objectName),
		)
	}

	return &report, nil
}
