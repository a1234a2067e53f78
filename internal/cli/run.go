package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	logging "github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/fastseq/fastseq/internal/config"
	"github.com/fastseq/fastseq/internal/execx"
	"github.com/fastseq/fastseq/internal/runlog"
	"github.com/fastseq/fastseq/pkg/errdefs"
	"github.com/fastseq/fastseq/pkg/manifest"
	"github.com/fastseq/fastseq/pkg/pipeline"
	"github.com/fastseq/fastseq/pkg/pipeline/drawer"
	"github.com/fastseq/fastseq/pkg/pipeline/measure"
	"github.com/fastseq/fastseq/pkg/report"
	"github.com/fastseq/fastseq/pkg/stats"
)

type runOptions struct {
	configFile string
	logFile    string
	drawFile   string
	failFast   bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <data_directory> <csv_file> <allele_fraction>",
		Short: "Run the pipeline over every sample of a manifest",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "config file overriding tool paths and step parameters")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "log file path (default <data_directory>/Output/fastseq.log)")
	cmd.Flags().StringVar(&opts.drawFile, "draw", "", "write the step graph as a DOT file after the run")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "abort the whole batch on the first sample failure")

	return cmd
}

// parseAlleleFraction validates the third positional argument: a float in
// (0, 1].
func parseAlleleFraction(raw string) (float64, error) {
	af, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errdefs.Configurationf("allele fraction %q is not a number", raw)
	}
	if af <= 0 || af > 1 {
		return 0, errdefs.Configurationf("allele fraction %g is outside (0, 1]", af)
	}

	return af, nil
}

func runPipeline(dataDir, csvFile string, rawAF string, opts *runOptions) error {
	af, err := parseAlleleFraction(rawAF)
	if err != nil {
		return err
	}

	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		return errdefs.Configurationf("data directory %q is not a directory", dataDir)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	outputDir := filepath.Join(dataDir, "Output")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errdefs.Configurationf("unable to create output directory %s: %v", outputDir, err)
	}

	logFile := opts.logFile
	if logFile == "" {
		logFile = filepath.Join(outputDir, "fastseq.log")
	}
	logCloser, err := runlog.Setup(logFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	log := runlog.Logger

	runID := uuid.New()
	log.Infof("run %s: data=%s manifest=%s allele-fraction=%g", runID, dataDir, csvFile, af)

	// All validation happens before the first external invocation.
	jobs, err := manifest.Load(csvFile, dataDir, af)
	if err != nil {
		return err
	}
	log.Infof("loaded %d samples from manifest", len(jobs))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exec := &execx.Local{Prefix: cfg.Container.Prefix, Log: log}
	msr := measure.New()
	pipeOpts := []pipeline.Option{pipeline.WithLogger(log), pipeline.WithMeasure(msr)}
	if opts.failFast {
		pipeOpts = append(pipeOpts, pipeline.FailFast())
	}
	pipe := pipeline.New(cfg, exec, outputDir, pipeOpts...)

	results, runErr := pipe.Run(ctx, jobs)

	var reports []stats.SampleReports
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		reports = append(reports, stats.SampleReports{
			Sample:      res.Sample,
			VCFStats:    res.Layout.VCFStats,
			WGSMetrics:  res.Layout.WGSMetrics,
			SizeMetrics: res.Layout.SizeMetrics,
		})
	}

	aggregator := stats.Aggregator{KeepGoing: !opts.failFast}
	table, parseErrs := aggregator.Aggregate(reports)
	for _, perr := range parseErrs {
		log.Errorf("aggregation: %v", perr)
	}

	log.Info("starting writing final stats...")
	summaryPath := filepath.Join(outputDir, report.FileName)
	if err := report.Write(summaryPath, table); err != nil {
		return err
	}
	log.Infof("...end writing stats: %s (%d rows)", summaryPath, len(table.Rows))

	logTimings(log, msr)
	if opts.drawFile != "" {
		if err := drawPlan(opts.drawFile, cfg, jobs[0], msr); err != nil {
			log.Errorf("unable to draw step graph: %v", err)
		}
	}

	switch {
	case runErr != nil:
		return runErr
	case len(parseErrs) > 0:
		return parseErrs[0]
	}

	return nil
}

func logTimings(log *logging.Logger, msr *measure.Measure) {
	for _, step := range msr.Steps() {
		log.Infof("step %s: avg %s", step, msr.AVGDuration(step))
	}
}

// drawPlan renders the (sample-independent) step graph, using the first
// job only to instantiate concrete paths.
func drawPlan(fileName string, cfg *config.Config, job manifest.SampleJob, msr *measure.Measure) error {
	lay := pipeline.NewLayout(os.TempDir(), job)
	steps := pipeline.Plan(cfg, job, lay)

	d := drawer.New(fileName)
	for _, step := range steps {
		if err := d.AddStep(step.Name); err != nil {
			return err
		}
	}
	for _, dep := range pipeline.Dependencies(steps) {
		if err := d.AddLink(dep[0], dep[1]); err != nil {
			return err
		}
	}
	if err := d.AddMeasure(msr); err != nil {
		return err
	}

	return d.Draw()
}
