package stats

import (
	"bufio"
	"os"
	"strings"

	"github.com/fastseq/fastseq/pkg/errdefs"
)

// ParsePicardMetrics reads a Picard metrics report (CollectWgsMetrics or
// CollectInsertSizeMetrics) and returns its columns in report order plus
// the column→value map for the single metrics row.
//
// Contract: the two non-empty lines after the "## METRICS CLASS" header
// are a tab-separated header row and one value row; the section ends at
// the first blank line.
func ParsePicardMetrics(sample, path string) ([]string, map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, &errdefs.ParseError{Sample: sample, Report: path, Err: err}
	}
	defer file.Close()

	var rows [][]string
	keep := false
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if keep {
			if strings.TrimSpace(line) == "" {
				break
			}
			rows = append(rows, strings.Split(strings.TrimSpace(line), "\t"))
			continue
		}
		if strings.HasPrefix(line, "## METRICS CLASS") {
			keep = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, &errdefs.ParseError{Sample: sample, Report: path, Err: err}
	}

	if len(rows) < 2 {
		return nil, nil, &errdefs.ParseError{Sample: sample, Report: path, Field: "METRICS CLASS"}
	}

	header, values := rows[0], rows[1]
	metrics := make(map[string]string, len(header))
	for idx, column := range header {
		if idx < len(values) {
			metrics[column] = values[idx]
		} else {
			metrics[column] = ""
		}
	}

	return header, metrics, nil
}
