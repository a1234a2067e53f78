// Package stats extracts named metrics from the tool report files and
// assembles them into one row per sample. The report formats are treated
// as fixed contracts: bcftools stats summary-number lines and the Picard
// METRICS CLASS section.
package stats

import (
	"bufio"
	"os"
	"strings"

	"github.com/fastseq/fastseq/pkg/errdefs"
)

// BCFFields are the summary numbers pulled out of a bcftools stats
// report, in output order.
var BCFFields = []string{
	"number of SNPs",
	"number of MNPs",
	"number of indels",
	"number of others",
	"number of multiallelic sites",
	"number of multiallelic SNP sites",
}

// ParseBCFStats reads a bcftools stats report and returns the fields in
// BCFFields. Values stay strings; no numeric conversion is attempted.
//
// Contract: summary numbers are lines starting with "SN", tab-separated,
// with the field name (trailing colon) in the second-to-last column and
// the value in the last.
func ParseBCFStats(sample, path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &errdefs.ParseError{Sample: sample, Report: path, Err: err}
	}
	defer file.Close()

	wanted := make(map[string]struct{}, len(BCFFields))
	for _, field := range BCFFields {
		wanted[field] = struct{}{}
	}

	found := make(map[string]string, len(BCFFields))
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "SN") {
			continue
		}
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) < 2 {
			continue
		}
		field := strings.TrimSuffix(parts[len(parts)-2], ":")
		if _, ok := wanted[field]; ok {
			found[field] = parts[len(parts)-1]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &errdefs.ParseError{Sample: sample, Report: path, Err: err}
	}

	for _, field := range BCFFields {
		if _, ok := found[field]; !ok {
			return nil, &errdefs.ParseError{Sample: sample, Report: path, Field: field}
		}
	}

	return found, nil
}
