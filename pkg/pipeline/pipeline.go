// Package pipeline runs the fixed per-sample processing chain by invoking
// external tools through an injected executor. The heavy lifting is all
// theirs; this package owns ordering, paths and failure reporting.
package pipeline

import (
	"context"
	"os"
	"strings"
	"time"

	logging "github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/fastseq/fastseq/internal/config"
	"github.com/fastseq/fastseq/internal/execx"
	"github.com/fastseq/fastseq/pkg/errdefs"
	"github.com/fastseq/fastseq/pkg/manifest"
	"github.com/fastseq/fastseq/pkg/pipeline/measure"
)

// Pipeline drives the per-sample plan for a batch of jobs, one sample at
// a time, one command at a time.
type Pipeline struct {
	cfg       *config.Config
	exec      execx.Executor
	outputDir string

	log      *logging.Logger
	msr      *measure.Measure
	failFast bool
}

type Option func(p *Pipeline)

// FailFast aborts the whole batch on the first sample failure instead of
// skipping the sample and continuing.
func FailFast() Option {
	return func(p *Pipeline) { p.failFast = true }
}

func WithLogger(log *logging.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

func WithMeasure(msr *measure.Measure) Option {
	return func(p *Pipeline) { p.msr = msr }
}

// New creates a pipeline writing all sample outputs under outputDir.
func New(cfg *config.Config, exec execx.Executor, outputDir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		exec:      exec,
		outputDir: outputDir,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SampleResult is the outcome of one sample: the step results up to
// completion or first failure, plus the failure itself when there was
// one. A sample with a non-nil Err has no row in the final table.
type SampleResult struct {
	Sample string
	Layout Layout
	Steps  []StepResult
	Err    error
}

// Run processes jobs in manifest order. It returns every sample's result
// together with a non-nil error when any sample failed; under the default
// keep-going policy later samples still run after a failure, under
// fail-fast they do not. Cancellation always stops the batch.
func (p *Pipeline) Run(ctx context.Context, jobs []manifest.SampleJob) ([]SampleResult, error) {
	results := make([]SampleResult, 0, len(jobs))
	var failed []string

	for _, job := range jobs {
		res := p.runSample(ctx, job)
		results = append(results, res)
		if res.Err == nil {
			continue
		}

		failed = append(failed, job.Name)
		if p.failFast || ctx.Err() != nil {
			return results, res.Err
		}
		if p.log != nil {
			p.log.Errorf("sample %s failed, continuing with remaining samples: %v", job.Name, res.Err)
		}
	}

	if len(failed) > 0 {
		return results, errors.Wrapf(errdefs.ErrProcessing,
			"%d of %d samples failed: %s", len(failed), len(jobs), strings.Join(failed, ", "))
	}

	return results, nil
}

func (p *Pipeline) runSample(ctx context.Context, job manifest.SampleJob) SampleResult {
	lay := NewLayout(p.outputDir, job)
	res := SampleResult{Sample: job.Name, Layout: lay}

	steps := Plan(p.cfg, job, lay)
	if err := Validate(job, steps); err != nil {
		res.Err = err
		return res
	}

	if err := os.MkdirAll(lay.SampleDir, 0o755); err != nil {
		res.Err = errdefs.Configurationf("unable to create sample directory %s: %v", lay.SampleDir, err)
		return res
	}

	for _, step := range steps {
		if p.log != nil {
			p.log.Infof("starting %s for %s", step.Name, job.Name)
		}
		start := time.Now()
		err := p.runStep(ctx, step)
		elapsed := time.Since(start)
		if p.msr != nil {
			p.msr.Add(step.Name, elapsed)
		}

		res.Steps = append(res.Steps, StepResult{
			Step:       step.Name,
			Outputs:    step.Outputs,
			ExitStatus: execx.ExitStatus(err),
			Elapsed:    elapsed,
		})
		if err != nil {
			res.Err = &errdefs.ProcessError{Sample: job.Name, Step: step.Name, Err: err}
			return res
		}
		if p.log != nil {
			p.log.Infof("finished %s for %s in %s", step.Name, job.Name, elapsed)
		}
	}

	return res
}

func (p *Pipeline) runStep(ctx context.Context, step Step) error {
	for _, cmd := range step.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.exec.Run(ctx, cmd); err != nil {
			return err
		}
	}

	return nil
}
