// Package manifest parses the sample CSV into per-sample job descriptors.
package manifest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fastseq/fastseq/pkg/errdefs"
)

// Column names required in the manifest, in the order jobs report them.
// The CSV itself may list them in any order and carry extra columns.
const (
	ColSample    = "Sample"
	ColForward   = "Forward Read Path"
	ColReverse   = "Reverse Read Path"
	ColAdapter   = "Adapter Path"
	ColReference = "Reference Path"
)

var requiredColumns = []string{ColSample, ColForward, ColReverse, ColAdapter, ColReference}

// SampleJob describes one unit of sequencing data to push through the
// pipeline. Paths are absolute, resolved against the data directory.
// Immutable once created.
type SampleJob struct {
	Name           string
	ForwardRead    string
	ReverseRead    string
	Adapter        string
	Reference      string
	AlleleFraction float64
}

// Load reads the manifest at csvPath and returns one job per data row, in
// file order. Every path cell is resolved against dataDir and must point
// at an existing file. alleleFraction is attached to every job.
func Load(csvPath, dataDir string, alleleFraction float64) ([]SampleJob, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, errdefs.Configurationf("unable to open manifest %s: %v", csvPath, err)
	}
	defer file.Close()

	jobs, err := parse(file, dataDir, alleleFraction)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", csvPath)
	}

	return jobs, nil
}

func parse(r io.Reader, dataDir string, alleleFraction float64) ([]SampleJob, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errdefs.Configurationf("manifest is empty")
	}
	if err != nil {
		return nil, errdefs.Configurationf("unable to read header: %v", err)
	}

	colIdx := make(map[string]int, len(header))
	for idx, name := range header {
		colIdx[name] = idx
	}
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, errdefs.Configurationf("missing required column %q", name)
		}
	}

	var jobs []SampleJob
	seen := make(map[string]struct{})
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errdefs.Configurationf("row %d: %v", row, err)
		}

		job := SampleJob{AlleleFraction: alleleFraction}
		job.Name, err = cell(record, colIdx, ColSample, row)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[job.Name]; dup {
			return nil, errdefs.Configurationf("row %d: duplicate sample %q", row, job.Name)
		}
		seen[job.Name] = struct{}{}

		for _, bind := range []struct {
			column string
			dst    *string
		}{
			{ColForward, &job.ForwardRead},
			{ColReverse, &job.ReverseRead},
			{ColAdapter, &job.Adapter},
			{ColReference, &job.Reference},
		} {
			raw, err := cell(record, colIdx, bind.column, row)
			if err != nil {
				return nil, err
			}
			resolved, err := resolve(dataDir, raw, row, bind.column)
			if err != nil {
				return nil, err
			}
			*bind.dst = resolved
		}

		jobs = append(jobs, job)
	}

	if len(jobs) == 0 {
		return nil, errdefs.Configurationf("manifest has no data rows")
	}

	return jobs, nil
}

func cell(record []string, colIdx map[string]int, column string, row int) (string, error) {
	idx := colIdx[column]
	if idx >= len(record) || record[idx] == "" {
		return "", errdefs.Configurationf("row %d: empty %q cell", row, column)
	}
	return record[idx], nil
}

// resolve joins a manifest path with the data directory and verifies the
// result is an existing regular file.
func resolve(dataDir, raw string, row int, column string) (string, error) {
	path := raw
	if !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", errdefs.Configurationf("row %d: %s %q does not exist", row, column, path)
	}
	if info.IsDir() {
		return "", errdefs.Configurationf("row %d: %s %q is a directory", row, column, path)
	}
	return path, nil
}
