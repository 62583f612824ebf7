package hpobench

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//////
// Tabular regression dataset.
//////

// Housing is a tabular regression data source in the style of the Boston
// housing benchmark. It reads CSV from the given reader, where every column
// but the last is a numeric feature and the last column is the target. A
// single non-numeric leading row is treated as a header and skipped.
//
// The split is deterministic by row order: the first 60% of rows train,
// the next 20% validate, and the remainder tests (integer floor, remainder
// to test).
type Housing struct {
	// Reader supplies the CSV content. Dataset loading is the caller's
	// concern; this type only parses and splits.
	Reader io.Reader
}

// NewHousingBenchmark builds the BNN benchmark over a housing-style CSV.
func NewHousingBenchmark(r io.Reader) (*BNNBenchmark, error) {
	return New(Housing{Reader: r})
}

// Data parses the CSV and returns its fixed split.
func (h Housing) Data() (Split, error) {
	if h.Reader == nil {
		return Split{}, errors.New("hpobench: housing data source has no reader")
	}

	features, targets, err := parseCSV(h.Reader)
	if err != nil {
		return Split{}, err
	}

	n := len(features)
	cols := len(features[0])

	nTrain := n * 60 / 100
	nValid := n * 20 / 100

	if nTrain == 0 || nValid == 0 || nTrain+nValid >= n {
		return Split{}, errors.Errorf("hpobench: dataset with %d rows is too small to split", n)
	}

	dense := func(rows [][]float64) *mat.Dense {
		out := mat.NewDense(len(rows), cols, nil)
		for i, row := range rows {
			out.SetRow(i, row)
		}

		return out
	}

	split := Split{
		TrainX: dense(features[:nTrain]),
		TrainY: targets[:nTrain],
		ValidX: dense(features[nTrain : nTrain+nValid]),
		ValidY: targets[nTrain : nTrain+nValid],
		TestX:  dense(features[nTrain+nValid:]),
		TestY:  targets[nTrain+nValid:],
	}

	return split, nil
}

// parseCSV reads all records, splitting each row into features and a final
// target column.
func parseCSV(r io.Reader) (features [][]float64, targets []float64, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "hpobench: read csv")
	}

	if len(records) == 0 {
		return nil, nil, errors.New("hpobench: empty csv")
	}

	if len(records[0]) < 2 {
		return nil, nil, errors.Errorf("hpobench: need at least one feature and a target column, got %d columns",
			len(records[0]))
	}

	for i, record := range records {
		row := make([]float64, len(record))

		var bad bool
		for j, cell := range record {
			row[j], err = strconv.ParseFloat(cell, 64)
			if err != nil {
				bad = true

				break
			}
		}

		if bad {
			// A non-numeric first row is a header.
			if i == 0 {
				continue
			}

			return nil, nil, errors.Errorf("hpobench: row %d is not numeric", i+1)
		}

		features = append(features, row[:len(row)-1])
		targets = append(targets, row[len(row)-1])
	}

	if len(features) == 0 {
		return nil, nil, errors.New("hpobench: csv has no data rows")
	}

	return features, targets, nil
}
