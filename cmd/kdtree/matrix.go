package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// readMatrix parses CSV rows of numbers into a flat row-major matrix. Lines
// starting with '#' are skipped; every row must have the same length.
func readMatrix(r io.Reader) (data []float32, rows, dims int, err error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, 0, err
		}
		if rows == 0 {
			dims = len(record)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("row %d column %d: %w", rows+1, j+1, err)
			}
			data = append(data, float32(v))
		}
		rows++
	}
	if rows == 0 {
		return nil, 0, 0, errors.New("no data rows")
	}
	return data, rows, dims, nil
}

// readMatrixFile opens path and parses it with readMatrix.
func readMatrixFile(path string) ([]float32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()
	data, rows, dims, err := readMatrix(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	return data, rows, dims, nil
}

// parseVector parses a comma-separated list of numbers.
func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("element %d of %q: %w", i+1, s, err)
		}
		v[i] = float32(x)
	}
	return v, nil
}
