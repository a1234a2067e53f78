package pipeline

import (
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/fastseq/fastseq/internal/config"
	"github.com/fastseq/fastseq/internal/execx"
	"github.com/fastseq/fastseq/pkg/errdefs"
	"github.com/fastseq/fastseq/pkg/manifest"
)

// Plan builds the fixed step sequence for one sample. The order mirrors
// the processing chain: trim, index the reference, align, sort, repair
// read groups, call and filter variants, build the consensus, then
// collect the report files the aggregator consumes.
func Plan(cfg *config.Config, job manifest.SampleJob, lay Layout) []Step {
	javaJar := func(jar string) []string {
		return []string{cfg.Tools.Java, "-Xmx" + cfg.Java.MaxHeap, "-jar", jar}
	}

	trimArgv := append(javaJar(cfg.Tools.Trimmomatic),
		"PE", "-phred33",
		job.ForwardRead, job.ReverseRead,
		lay.ForwardTrimmed, lay.ForwardUnpaired,
		lay.ReverseTrimmed, lay.ReverseUnpaired,
		fmt.Sprintf("ILLUMINACLIP:%s:%d:%d:%d", job.Adapter,
			cfg.Trim.ClipSeedMismatches, cfg.Trim.ClipPalindromeThreshold, cfg.Trim.ClipSimpleThreshold),
		fmt.Sprintf("LEADING:%d", cfg.Trim.Leading),
		fmt.Sprintf("TRAILING:%d", cfg.Trim.Trailing),
		fmt.Sprintf("SLIDINGWINDOW:%d:%d", cfg.Trim.WindowSize, cfg.Trim.WindowQuality),
		fmt.Sprintf("MINLEN:%d", cfg.Trim.MinLen),
	)

	// bcftools expression syntax: the quotes around * are part of the
	// expression, not shell quoting.
	filterExpr := fmt.Sprintf(
		"FORMAT/DP>%d && (FORMAT/AD[*:1]/ FORMAT/DP)>%g && FORMAT/AD[*:1] != '*'",
		cfg.VCF.MinDepth, job.AlleleFraction,
	)

	return []Step{
		{
			Name:    "trim",
			Inputs:  []string{job.ForwardRead, job.ReverseRead, job.Adapter},
			Outputs: []string{lay.ForwardTrimmed, lay.ReverseTrimmed, lay.ForwardUnpaired, lay.ReverseUnpaired},
			Commands: []execx.Command{
				{Argv: trimArgv},
			},
		},
		{
			Name:    "index-reference",
			Inputs:  []string{job.Reference},
			Outputs: []string{lay.RefDict},
			Commands: []execx.Command{
				{Argv: []string{cfg.Tools.BWA, "index", job.Reference}},
				{Argv: []string{cfg.Tools.Samtools, "faidx", job.Reference}},
				{Argv: append(javaJar(cfg.Tools.GATK), "CreateSequenceDictionary",
					"-R", job.Reference, "-O", lay.RefDict)},
			},
		},
		{
			Name:    "align",
			Inputs:  []string{job.Reference, lay.ForwardTrimmed, lay.ReverseTrimmed},
			Outputs: []string{lay.SAM},
			Commands: []execx.Command{
				{Argv: []string{cfg.Tools.BWA, "mem", job.Reference, lay.ForwardTrimmed, lay.ReverseTrimmed},
					StdoutPath: lay.SAM},
			},
		},
		{
			Name:    "sort-bam",
			Inputs:  []string{lay.SAM},
			Outputs: []string{lay.BAM},
			Commands: []execx.Command{
				{Argv: []string{cfg.Tools.Samtools, "sort", lay.SAM}, StdoutPath: lay.BAM},
				{Argv: []string{cfg.Tools.Samtools, "index", lay.BAM}},
			},
		},
		{
			Name:    "read-groups",
			Inputs:  []string{lay.BAM},
			Outputs: []string{lay.ReadGroupBAM},
			Commands: []execx.Command{
				{Argv: append(javaJar(cfg.Tools.GATK), "AddOrReplaceReadGroups",
					"-I", lay.BAM,
					"-O", lay.ReadGroupBAM,
					"-RGID", "4",
					"-RGLB", "lib1",
					"-RGPL", "illumina",
					"-RGPU", "unit1",
					"-RGSM", "20")},
				{Argv: []string{cfg.Tools.Samtools, "index", lay.ReadGroupBAM}},
			},
		},
		{
			Name:    "call-variants",
			Inputs:  []string{job.Reference, lay.RefDict, lay.ReadGroupBAM},
			Outputs: []string{lay.VCF},
			Commands: []execx.Command{
				{Argv: append(javaJar(cfg.Tools.GATK), "HaplotypeCaller",
					"-R", job.Reference,
					"-I", lay.ReadGroupBAM,
					"-O", lay.VCF)},
			},
		},
		{
			Name:    "filter-vcf",
			Inputs:  []string{lay.VCF},
			Outputs: []string{lay.FilteredVCF},
			Commands: []execx.Command{
				{Argv: []string{cfg.Tools.Bcftools, "filter", "-i", filterExpr, "-Oz", lay.VCF},
					StdoutPath: lay.FilteredVCF},
				{Argv: []string{cfg.Tools.Tabix, lay.FilteredVCF}},
			},
		},
		{
			Name:    "consensus",
			Inputs:  []string{job.Reference, lay.FilteredVCF},
			Outputs: []string{lay.Consensus},
			Commands: []execx.Command{
				{Argv: []string{cfg.Tools.Bcftools, "consensus", "-f", job.Reference, lay.FilteredVCF},
					StdoutPath: lay.Consensus},
			},
		},
		{
			Name:    "vcf-stats",
			Inputs:  []string{lay.FilteredVCF},
			Outputs: []string{lay.VCFStats},
			Commands: []execx.Command{
				{Argv: []string{cfg.Tools.Bcftools, "stats", lay.FilteredVCF}, StdoutPath: lay.VCFStats},
			},
		},
		{
			Name:    "wgs-metrics",
			Inputs:  []string{job.Reference, lay.BAM},
			Outputs: []string{lay.WGSMetrics},
			Commands: []execx.Command{
				{Argv: append(javaJar(cfg.Tools.Picard), "CollectWgsMetrics",
					fmt.Sprintf("COVERAGE_CAP=%d", cfg.Picard.CoverageCap),
					fmt.Sprintf("USE_FAST_ALGORITHM=%t", cfg.Picard.FastAlgorithm),
					fmt.Sprintf("SAMPLE_SIZE=%d", cfg.Picard.SampleSize),
					fmt.Sprintf("I=%s", lay.BAM),
					fmt.Sprintf("R=%s", job.Reference),
					fmt.Sprintf("O=%s", lay.WGSMetrics))},
			},
		},
		{
			Name:    "size-metrics",
			Inputs:  []string{lay.BAM},
			Outputs: []string{lay.SizeMetrics, lay.SizeHistogram},
			Commands: []execx.Command{
				{Argv: append(javaJar(cfg.Tools.Picard), "CollectInsertSizeMetrics",
					fmt.Sprintf("I=%s", lay.BAM),
					fmt.Sprintf("H=%s", lay.SizeHistogram),
					fmt.Sprintf("O=%s", lay.SizeMetrics))},
			},
		},
		{
			Name:    "flagstat",
			Inputs:  []string{lay.ReadGroupBAM},
			Outputs: []string{lay.Flagstat},
			Commands: []execx.Command{
				{Argv: []string{cfg.Tools.Samtools, "flagstat", lay.ReadGroupBAM}, StdoutPath: lay.Flagstat},
			},
		},
	}
}

// Dependencies returns the producer→consumer step pairs implied by the
// declared file sets, in plan order. Inputs no step produces are treated
// as external and skipped.
func Dependencies(steps []Step) [][2]string {
	producers := make(map[string]string)
	seen := make(map[[2]string]struct{})
	var deps [][2]string

	for _, step := range steps {
		for _, input := range step.Inputs {
			producer, ok := producers[input]
			if !ok {
				continue
			}
			pair := [2]string{producer, step.Name}
			if _, dup := seen[pair]; dup {
				continue
			}
			seen[pair] = struct{}{}
			deps = append(deps, pair)
		}
		for _, output := range step.Outputs {
			producers[output] = step.Name
		}
	}

	return deps
}

// Validate checks the step list forms a DAG over file dependencies:
// every declared input is a job input or the output of an earlier step,
// and no dependency cycle exists. A failure here is a wiring bug caught
// before any process starts.
func Validate(job manifest.SampleJob, steps []Step) error {
	_, err := dependencyGraph(job, steps)
	return err
}

func dependencyGraph(job manifest.SampleJob, steps []Step) (graph.Graph[string, string], error) {
	gra := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	producers := make(map[string]string)
	jobInputs := map[string]struct{}{
		job.ForwardRead: {},
		job.ReverseRead: {},
		job.Adapter:     {},
		job.Reference:   {},
	}

	for _, step := range steps {
		if err := gra.AddVertex(step.Name); err != nil {
			return nil, errdefs.Configurationf("plan: duplicate step %q", step.Name)
		}
	}

	for _, step := range steps {
		for _, input := range step.Inputs {
			if _, ok := jobInputs[input]; ok {
				continue
			}
			producer, ok := producers[input]
			if !ok {
				return nil, errdefs.Configurationf(
					"plan: step %q consumes %q before any step produces it", step.Name, input)
			}
			err := gra.AddEdge(producer, step.Name)
			switch {
			case err == graph.ErrEdgeAlreadyExists:
				// two files flowing between the same pair of steps
			case err == graph.ErrEdgeCreatesCycle:
				return nil, errdefs.Configurationf(
					"plan: dependency cycle between %q and %q", producer, step.Name)
			case err != nil:
				return nil, errdefs.Configurationf("plan: %v", err)
			}
		}
		for _, output := range step.Outputs {
			producers[output] = step.Name
		}
	}

	return gra, nil
}
