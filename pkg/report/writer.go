// Package report serializes the aggregated stats table to the final
// summary CSV.
package report

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/fastseq/fastseq/pkg/errdefs"
	"github.com/fastseq/fastseq/pkg/stats"
)

// FileName is the fixed name of the summary file inside the output
// directory.
const FileName = "final_stats.csv"

// Write serializes table to path, overwriting any existing file. The
// header is "Sample" followed by the table columns; a field a sample
// lacks is written as the empty string. Output bytes are deterministic
// for a given table.
func Write(path string, table *stats.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdefs.IO(err, "unable to create output directory")
	}

	file, err := os.Create(path)
	if err != nil {
		return errdefs.IO(err, "unable to create summary file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := append([]string{"Sample"}, table.Columns...)
	if err := writer.Write(header); err != nil {
		return errdefs.IO(err, "unable to write header")
	}

	for _, row := range table.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Sample)
		for _, column := range table.Columns {
			record = append(record, row.Values[column])
		}
		if err := writer.Write(record); err != nil {
			return errdefs.IO(err, "unable to write row for sample "+row.Sample)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errdefs.IO(err, "unable to flush summary file")
	}
	if err := file.Close(); err != nil {
		return errdefs.IO(err, "unable to close summary file")
	}

	return nil
}
