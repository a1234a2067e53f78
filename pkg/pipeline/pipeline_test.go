package pipeline_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastseq/fastseq/internal/execx"
	"github.com/fastseq/fastseq/pkg/errdefs"
	"github.com/fastseq/fastseq/pkg/manifest"
	"github.com/fastseq/fastseq/pkg/pipeline"
	"github.com/fastseq/fastseq/pkg/pipeline/measure"
)

func TestRunSingleSample(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{}
	outputDir := t.TempDir()
	pipe := pipeline.New(testConfig(t), exec, outputDir)

	results, err := pipe.Run(context.Background(), []manifest.SampleJob{testJob("S1")})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "S1", res.Sample)
	require.NoError(t, res.Err)
	require.Len(t, res.Steps, 12)
	for _, step := range res.Steps {
		assert.Equal(t, 0, step.ExitStatus)
	}

	// 17 external commands across the 12 steps
	assert.Len(t, exec.calls, 17)
	assert.True(t, argvContains(exec.calls[0], "trimmomatic.jar", "PE", "-phred33"))

	// the sample directory was created
	info, statErr := os.Stat(res.Layout.SampleDir)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestRunCommandOrder(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{}
	pipe := pipeline.New(testConfig(t), exec, t.TempDir())

	_, err := pipe.Run(context.Background(), []manifest.SampleJob{testJob("S1")})
	require.NoError(t, err)

	lines := exec.commandLines()
	var order []int
	for _, want := range []string{
		"PE -phred33", "bwa index", "bwa mem", "samtools sort",
		"AddOrReplaceReadGroups", "HaplotypeCaller", "bcftools filter",
		"bcftools consensus", "bcftools stats", "CollectWgsMetrics",
		"CollectInsertSizeMetrics", "samtools flagstat",
	} {
		idx := -1
		for i, line := range lines {
			if idx < 0 && strings.Contains(line, want) {
				idx = i
			}
		}
		require.GreaterOrEqual(t, idx, 0, "command %q never ran", want)
		order = append(order, idx)
	}
	assert.IsIncreasing(t, order)
}

func TestRunStepFailure(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{
		failOn: func(cmd execx.Command) error {
			if argvContains(cmd, "HaplotypeCaller") {
				return errors.New("exit status 2")
			}
			return nil
		},
	}
	pipe := pipeline.New(testConfig(t), exec, t.TempDir())

	results, err := pipe.Run(context.Background(), []manifest.SampleJob{testJob("S1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrProcessing)

	res := results[0]
	require.Error(t, res.Err)

	var procErr *errdefs.ProcessError
	require.ErrorAs(t, res.Err, &procErr)
	assert.Equal(t, "S1", procErr.Sample)
	assert.Equal(t, "call-variants", procErr.Step)

	// nothing after the failing step ran
	for _, cmd := range exec.calls {
		assert.False(t, argvContains(cmd, "bcftools"), "step after failure ran: %s", cmd)
	}
}

func TestRunKeepGoing(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{
		failOn: func(cmd execx.Command) error {
			if argvContains(cmd, "HaplotypeCaller", "S1") {
				return errors.New("exit status 2")
			}
			return nil
		},
	}
	pipe := pipeline.New(testConfig(t), exec, t.TempDir())

	jobs := []manifest.SampleJob{testJob("S1"), testJob("S2")}
	results, err := pipe.Run(context.Background(), jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 samples failed")
	assert.Contains(t, err.Error(), "S1")

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Len(t, results[1].Steps, 12)
}

func TestRunFailFast(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{
		failOn: func(cmd execx.Command) error {
			if argvContains(cmd, "HaplotypeCaller", "S1") {
				return errors.New("exit status 2")
			}
			return nil
		},
	}
	pipe := pipeline.New(testConfig(t), exec, t.TempDir(), pipeline.FailFast())

	jobs := []manifest.SampleJob{testJob("S1"), testJob("S2")}
	results, err := pipe.Run(context.Background(), jobs)
	require.Error(t, err)

	var procErr *errdefs.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "S1", procErr.Sample)

	// the batch stopped before S2
	require.Len(t, results, 1)
	for _, cmd := range exec.calls {
		assert.False(t, argvContains(cmd, "S2"), "S2 ran after fail-fast: %s", cmd)
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	exec := &scriptedExecutor{
		failOn: func(cmd execx.Command) error {
			cancel()
			return ctx.Err()
		},
	}
	pipe := pipeline.New(testConfig(t), exec, t.TempDir())

	jobs := []manifest.SampleJob{testJob("S1"), testJob("S2")}
	results, err := pipe.Run(ctx, jobs)
	require.Error(t, err)
	// cancellation stops the batch even under keep-going
	assert.Len(t, results, 1)
}

func TestRunRecordsTimings(t *testing.T) {
	t.Parallel()

	exec := &scriptedExecutor{}
	msr := measure.New()
	pipe := pipeline.New(testConfig(t), exec, t.TempDir(), pipeline.WithMeasure(msr))

	_, err := pipe.Run(context.Background(), []manifest.SampleJob{testJob("S1")})
	require.NoError(t, err)

	steps := msr.Steps()
	assert.Len(t, steps, 12)
	assert.Equal(t, "trim", steps[0])
}
