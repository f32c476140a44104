package trace

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultPageSize is used by List when ListRequest.PageSize is not positive.
const DefaultPageSize = 20

// Repository is the interface for persisting reports.
type Repository interface {
	Save(ctx context.Context, report *Report) error
}

// ReportSummary is a lightweight representation of a saved report,
// derived from file or object metadata without reading its contents.
type ReportSummary struct {
	ReportID  string    `json:"report_id"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListRequest selects a page of saved reports.
type ListRequest struct {
	PageSize  int
	PageToken string
}

// ListResponse is a page of saved reports.
type ListResponse struct {
	Reports       []ReportSummary
	NextPageToken string
}

// Browser provides read access to saved reports.
type Browser interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, reportID string) (*Report, error)
}

// FileRepository persists reports as JSON files.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a new FileRepository that writes to the given directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Save writes the report as JSON to {dir}/{report_id}.json.
func (r *FileRepository) Save(_ context.Context, report *Report) error {
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return goerr.Wrap(err, "failed to create report directory", goerr.V("dir", r.dir))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal report")
	}

	filePath := filepath.Join(r.dir, report.ReportID+".json")
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write report file", goerr.V("path", filePath))
	}

	return nil
}

// List returns saved reports ordered by file name.
func (r *FileRepository) List(_ context.Context, req ListRequest) (*ListResponse, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory", goerr.V("dir", r.dir))
	}

	type fileEntry struct {
		name string
		info os.FileInfo
	}
	var files []fileEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileEntry{name: e.Name(), info: info})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].name < files[j].name
	})

	startIdx := 0
	if req.PageToken != "" {
		lastFile, err := DecodePageToken(req.PageToken)
		if err != nil {
			return nil, err
		}
		startIdx = len(files)
		for i, f := range files {
			if f.name > lastFile {
				startIdx = i
				break
			}
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	endIdx := min(startIdx+pageSize, len(files))

	resp := &ListResponse{}
	for _, f := range files[startIdx:endIdx] {
		resp.Reports = append(resp.Reports, ReportSummary{
			ReportID:  strings.TrimSuffix(f.name, ".json"),
			Size:      f.info.Size(),
			UpdatedAt: f.info.ModTime(),
		})
	}

	if endIdx < len(files) {
		resp.NextPageToken = EncodePageToken(files[endIdx-1].name)
	}

	return resp, nil
}

// Get reads a saved report.
func (r *FileRepository) Get(_ context.Context, reportID string) (*Report, error) {
	filePath := filepath.Join(r.dir, filepath.Base(reportID)+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "report not found", goerr.V("report_id", reportID))
		}
		return nil, goerr.Wrap(err, "failed to read report file", goerr.V("report_id", reportID))
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, goerr.Wrap(err, "failed to parse report file", goerr.V("report_id", reportID))
	}

	return &report, nil
}

// EncodePageToken encodes the last listed name as an opaque token.
func EncodePageToken(name string) string {
	return base64.URLEncoding.EncodeToString([]byte(name))
}

// DecodePageToken reverses EncodePageToken.
func DecodePageToken(token string) (string, error) {
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode page token")
	}
	return string(b), nil
}
