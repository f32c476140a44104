// Package regression fits a straight line to points by ordinary least
// squares and checks the textbook property that the fitted line passes
// through the centroid of the data.
package regression

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrInvalidDataset is returned for datasets a line cannot be fitted to.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrOffCentroid is returned by CheckCentroid when the centroid is not on the line.
	ErrOffCentroid = errors.New("centroid is not on the regression line")
)

// Dataset is a set of (x, y) observations.
type Dataset struct {
	X []float64
	Y []float64
}

// NewDataset validates and wraps the observations.
func NewDataset(x, y []float64) (*Dataset, error) {
	ds := &Dataset{X: x, Y: y}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	return len(d.X)
}

// Validate requires at least two finite points with distinct x values.
func (d *Dataset) Validate() error {
	if len(d.X) != len(d.Y) {
		return goerr.Wrap(ErrInvalidDataset, "x and y lengths differ",
			goerr.V("x_len", len(d.X)), goerr.V("y_len", len(d.Y)))
	}
	if len(d.X) < 2 {
		return goerr.Wrap(ErrInvalidDataset, "at least two points are required", goerr.V("len", len(d.X)))
	}
	for i := range d.X {
		if !finite(d.X[i]) || !finite(d.Y[i]) {
			return goerr.Wrap(ErrInvalidDataset, "non-finite value",
				goerr.V("index", i), goerr.V("x", d.X[i]), goerr.V("y", d.Y[i]))
		}
	}
	if slices.Min(d.X) == slices.Max(d.X) {
		return goerr.Wrap(ErrInvalidDataset, "x has no variance")
	}
	return nil
}

// ScaleX returns a copy with x min-max scaled to [0, 1].
func (d *Dataset) ScaleX() (*Dataset, error) {
	x, err := MinMaxScale(d.X)
	if err != nil {
		return nil, err
	}
	return &Dataset{X: x, Y: slices.Clone(d.Y)}, nil
}

// MinMaxScale maps values linearly so that min becomes 0 and max becomes 1.
func MinMaxScale(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, goerr.Wrap(ErrInvalidDataset, "no values to scale")
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		return nil, goerr.Wrap(ErrInvalidDataset, "cannot scale constant values", goerr.V("value", lo))
	}

	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i] = (v - lo) / (hi - lo)
	}
	return scaled, nil
}

// Columns selects the CSV columns holding x and y.
type Columns struct {
	X int
	Y int
	// Header skips the first record.
	Header bool
}

// LoadCSV reads a dataset from two numeric columns of a CSV stream.
func LoadCSV(r io.Reader, cols Columns) (*Dataset, error) {
	if cols.X < 0 || cols.Y < 0 {
		return nil, goerr.Wrap(ErrInvalidDataset, "column index must not be negative",
			goerr.V("x_col", cols.X), goerr.V("y_col", cols.Y))
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	ds := &Dataset{}
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read CSV", goerr.V("line", line))
		}
		if line == 1 && cols.Header {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		x, err := field(record, cols.X, line)
		if err != nil {
			return nil, err
		}
		y, err := field(record, cols.Y, line)
		if err != nil {
			return nil, err
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func field(record []string, col, line int) (float64, error) {
	if col >= len(record) {
		return 0, goerr.Wrap(ErrInvalidDataset, "column out of range",
			goerr.V("line", line), goerr.V("column", col), goerr.V("fields", len(record)))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidDataset, "not a number",
			goerr.V("line", line), goerr.V("column", col), goerr.V("value", record[col]), goerr.V("cause", err.Error()))
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
