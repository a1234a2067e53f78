package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/fastseq/fastseq/pkg/manifest"
)

// Layout collects every file path one sample's run touches. All
// intermediates live under the per-sample directory so concurrent reruns
// of different samples never collide.
type Layout struct {
	SampleDir string

	ForwardTrimmed  string
	ReverseTrimmed  string
	ForwardUnpaired string
	ReverseUnpaired string

	RefDict string

	SAM          string
	BAM          string
	ReadGroupBAM string

	VCF         string
	FilteredVCF string
	Consensus   string

	VCFStats      string
	WGSMetrics    string
	SizeMetrics   string
	SizeHistogram string
	Flagstat      string
}

// NewLayout derives the per-sample paths under outputDir for job.
func NewLayout(outputDir string, job manifest.SampleJob) Layout {
	dir := filepath.Join(outputDir, job.Name)
	base := func(suffix string) string {
		return filepath.Join(dir, job.Name+suffix)
	}

	return Layout{
		SampleDir: dir,

		ForwardTrimmed:  filepath.Join(dir, filepath.Base(job.ForwardRead)+".trimmed.fastq"),
		ReverseTrimmed:  filepath.Join(dir, filepath.Base(job.ReverseRead)+".trimmed.fastq"),
		ForwardUnpaired: filepath.Join(dir, filepath.Base(job.ForwardRead)+".unpaired.fastq"),
		ReverseUnpaired: filepath.Join(dir, filepath.Base(job.ReverseRead)+".unpaired.fastq"),

		RefDict: refDictPath(job.Reference),

		SAM:          base(".sam"),
		BAM:          base(".bam"),
		ReadGroupBAM: base(".readgroup.bam"),

		VCF:         base(".vcf"),
		FilteredVCF: base(".filtered.vcf.gz"),
		Consensus:   base(".consensus.fasta"),

		VCFStats:      base(".vcf.stats.txt"),
		WGSMetrics:    base(".picard_wgs.txt"),
		SizeMetrics:   base(".picard_size.txt"),
		SizeHistogram: base(".picard_size_hist.pdf"),
		Flagstat:      base(".flagstat.txt"),
	}
}

// refDictPath swaps the FASTA extension for .dict, the name
// CreateSequenceDictionary derives next to the reference.
func refDictPath(reference string) string {
	for _, ext := range []string{".fasta", ".fa"} {
		if strings.HasSuffix(reference, ext) {
			return strings.TrimSuffix(reference, ext) + ".dict"
		}
	}
	return reference + ".dict"
}
