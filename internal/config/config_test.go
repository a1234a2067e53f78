package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastseq/fastseq/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tools/trimmomatic/trimmomatic-0.38.jar", cfg.Tools.Trimmomatic)
	assert.Equal(t, "/gatk/gatk.jar", cfg.Tools.GATK)
	assert.Equal(t, 50, cfg.Trim.MinLen)
	assert.Equal(t, 20, cfg.Trim.WindowQuality)
	assert.Equal(t, 10, cfg.VCF.MinDepth)
	assert.Equal(t, 100000, cfg.Picard.CoverageCap)
	assert.True(t, cfg.Picard.FastAlgorithm)
	assert.Equal(t, "2048m", cfg.Java.MaxHeap)
	assert.Empty(t, cfg.Container.Prefix)
}

func TestLoadFileOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fastseq.yaml")
	content := `tools:
  bwa: /usr/local/bin/bwa
trim:
  minlen: 36
container:
  prefix: ["docker", "run", "--rm", "fastseq:latest"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/bwa", cfg.Tools.BWA)
	assert.Equal(t, 36, cfg.Trim.MinLen)
	assert.Equal(t, []string{"docker", "run", "--rm", "fastseq:latest"}, cfg.Container.Prefix)
	// untouched keys keep their defaults
	assert.Equal(t, "/tools/samtools/bin/samtools", cfg.Tools.Samtools)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FASTSEQ_VCF_MIN_DEPTH", "25")
	t.Setenv("FASTSEQ_TOOLS_TABIX", "/opt/tabix")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.VCF.MinDepth)
	assert.Equal(t, "/opt/tabix", cfg.Tools.Tabix)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
