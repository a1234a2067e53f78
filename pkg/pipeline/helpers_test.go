package pipeline_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/fastseq/fastseq/internal/config"
	"github.com/fastseq/fastseq/internal/execx"
	"github.com/fastseq/fastseq/pkg/manifest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Tools: config.Tools{
			Java:        "java",
			Trimmomatic: "trimmomatic.jar",
			BWA:         "bwa",
			Samtools:    "samtools",
			Bcftools:    "bcftools",
			Picard:      "picard.jar",
			GATK:        "gatk.jar",
			Tabix:       "tabix",
		},
		Trim: config.Trim{
			Leading: 3, Trailing: 3, MinLen: 50,
			WindowSize: 4, WindowQuality: 20,
			ClipSeedMismatches: 4, ClipPalindromeThreshold: 20, ClipSimpleThreshold: 10,
		},
		VCF:    config.VCF{MinDepth: 10},
		Picard: config.Picard{CoverageCap: 100000, FastAlgorithm: true, SampleSize: 5000},
		Java:   config.Java{MaxHeap: "2048m"},
	}
}

func testJob(name string) manifest.SampleJob {
	return manifest.SampleJob{
		Name:           name,
		ForwardRead:    "/data/" + name + "_R1.fastq.gz",
		ReverseRead:    "/data/" + name + "_R2.fastq.gz",
		Adapter:        "/data/adapter.fa",
		Reference:      "/data/ref.fa",
		AlleleFraction: 0.7,
	}
}

// scriptedExecutor records every command and fails the ones failOn
// matches. It never touches the filesystem.
type scriptedExecutor struct {
	mu     sync.Mutex
	calls  []execx.Command
	failOn func(cmd execx.Command) error
}

func (s *scriptedExecutor) Run(_ context.Context, cmd execx.Command) error {
	s.mu.Lock()
	s.calls = append(s.calls, cmd)
	s.mu.Unlock()
	if s.failOn != nil {
		return s.failOn(cmd)
	}
	return nil
}

func (s *scriptedExecutor) commandLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]string, 0, len(s.calls))
	for _, cmd := range s.calls {
		lines = append(lines, cmd.String())
	}
	return lines
}

func argvContains(cmd execx.Command, wants ...string) bool {
	joined := strings.Join(cmd.Argv, " ")
	for _, want := range wants {
		if !strings.Contains(joined, want) {
			return false
		}
	}
	return true
}
