// Package config loads the tool paths and step parameters the pipeline
// passes to the external utilities. Defaults match the preconfigured
// container image; an optional YAML file and FASTSEQ_* environment
// variables override them.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Tools struct {
	Java        string `mapstructure:"java"`
	Trimmomatic string `mapstructure:"trimmomatic"`
	BWA         string `mapstructure:"bwa"`
	Samtools    string `mapstructure:"samtools"`
	Bcftools    string `mapstructure:"bcftools"`
	Picard      string `mapstructure:"picard"`
	GATK        string `mapstructure:"gatk"`
	Tabix       string `mapstructure:"tabix"`
}

type Trim struct {
	Leading                 int `mapstructure:"leading"`
	Trailing                int `mapstructure:"trailing"`
	MinLen                  int `mapstructure:"minlen"`
	WindowSize              int `mapstructure:"window_size"`
	WindowQuality           int `mapstructure:"window_quality"`
	ClipSeedMismatches      int `mapstructure:"clip_seed_mismatches"`
	ClipPalindromeThreshold int `mapstructure:"clip_palindrome_threshold"`
	ClipSimpleThreshold     int `mapstructure:"clip_simple_threshold"`
}

type VCF struct {
	MinDepth int `mapstructure:"min_depth"`
}

type Picard struct {
	CoverageCap   int  `mapstructure:"coverage_cap"`
	FastAlgorithm bool `mapstructure:"fast_algorithm"`
	SampleSize    int  `mapstructure:"sample_size"`
}

type Java struct {
	MaxHeap string `mapstructure:"max_heap"`
}

// Container holds the optional argv prefix wrapped around every external
// invocation, e.g. ["docker", "run", "--rm", ...]. Empty means the tools
// are invoked directly.
type Container struct {
	Prefix []string `mapstructure:"prefix"`
}

type Config struct {
	Tools     Tools     `mapstructure:"tools"`
	Trim      Trim      `mapstructure:"trim"`
	VCF       VCF       `mapstructure:"vcf"`
	Picard    Picard    `mapstructure:"picard"`
	Java      Java      `mapstructure:"java"`
	Container Container `mapstructure:"container"`
}

// Load reads the configuration from file (optional, empty means defaults
// only) and the environment.
func Load(file string) (*Config, error) {
	vpr := viper.New()

	vpr.SetDefault("tools.java", "java")
	vpr.SetDefault("tools.trimmomatic", "/tools/trimmomatic/trimmomatic-0.38.jar")
	vpr.SetDefault("tools.bwa", "/tools/bwa/bwa")
	vpr.SetDefault("tools.samtools", "/tools/samtools/bin/samtools")
	vpr.SetDefault("tools.bcftools", "/tools/samtools/bin/bcftools")
	vpr.SetDefault("tools.picard", "/tools/picard/picard.jar")
	vpr.SetDefault("tools.gatk", "/gatk/gatk.jar")
	vpr.SetDefault("tools.tabix", "/usr/bin/tabix")

	vpr.SetDefault("trim.leading", 3)
	vpr.SetDefault("trim.trailing", 3)
	vpr.SetDefault("trim.minlen", 50)
	vpr.SetDefault("trim.window_size", 4)
	vpr.SetDefault("trim.window_quality", 20)
	vpr.SetDefault("trim.clip_seed_mismatches", 4)
	vpr.SetDefault("trim.clip_palindrome_threshold", 20)
	vpr.SetDefault("trim.clip_simple_threshold", 10)

	vpr.SetDefault("vcf.min_depth", 10)

	vpr.SetDefault("picard.coverage_cap", 100000)
	vpr.SetDefault("picard.fast_algorithm", true)
	vpr.SetDefault("picard.sample_size", 5000)

	vpr.SetDefault("java.max_heap", "2048m")

	vpr.SetEnvPrefix("FASTSEQ")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	if file != "" {
		vpr.SetConfigFile(file)
		if err := vpr.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", file)
		}
	}

	cfg := &Config{}
	if err := vpr.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal config")
	}

	return cfg, nil
}
