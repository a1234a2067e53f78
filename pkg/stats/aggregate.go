package stats

// SampleReports names the report files produced for one sample.
type SampleReports struct {
	Sample      string
	VCFStats    string
	WGSMetrics  string
	SizeMetrics string
}

// Row holds the extracted metrics for one sample. Immutable once built.
type Row struct {
	Sample string
	Values map[string]string
}

// Table is the aggregate of all samples: rows in manifest order and
// columns as the union of all field names in first-seen order.
type Table struct {
	Columns []string
	Rows    []Row
}

// Aggregator merges per-sample report files into a Table. With KeepGoing
// set, a sample whose reports cannot be parsed is dropped from the table
// and its error reported alongside; otherwise the first failure aborts.
type Aggregator struct {
	KeepGoing bool
}

// Aggregate parses each sample's reports in order and builds one row per
// sample. The returned errors (one per dropped sample under KeepGoing,
// at most one otherwise) leave the table usable for the samples that
// parsed cleanly.
func (a Aggregator) Aggregate(reports []SampleReports) (*Table, []error) {
	table := &Table{}
	seen := make(map[string]struct{})
	var errs []error

	for _, report := range reports {
		row, columns, err := collect(report)
		if err != nil {
			errs = append(errs, err)
			if !a.KeepGoing {
				return table, errs
			}
			continue
		}

		for _, column := range columns {
			if _, ok := seen[column]; ok {
				continue
			}
			seen[column] = struct{}{}
			table.Columns = append(table.Columns, column)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, errs
}

// collect extracts every field of one sample: the bcftools summary
// numbers first, then the WGS and insert-size metrics, preserving report
// column order.
func collect(report SampleReports) (Row, []string, error) {
	row := Row{Sample: report.Sample, Values: make(map[string]string)}
	var columns []string

	vcf, err := ParseBCFStats(report.Sample, report.VCFStats)
	if err != nil {
		return Row{}, nil, err
	}
	for _, field := range BCFFields {
		columns = append(columns, field)
		row.Values[field] = vcf[field]
	}

	for _, path := range []string{report.WGSMetrics, report.SizeMetrics} {
		header, metrics, err := ParsePicardMetrics(report.Sample, path)
		if err != nil {
			return Row{}, nil, err
		}
		for _, column := range header {
			columns = append(columns, column)
			row.Values[column] = metrics[column]
		}
	}

	return row, columns, nil
}
