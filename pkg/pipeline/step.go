package pipeline

import (
	"time"

	"github.com/fastseq/fastseq/internal/execx"
)

// Step is one unit of the per-sample plan: a named bundle of external
// commands together with the files it consumes and produces. Declaring
// the file sets keeps the plan checkable (see Validate) and lets tests
// substitute a scripted executor for the real tools.
type Step struct {
	Name     string
	Inputs   []string
	Outputs  []string
	Commands []execx.Command
}

// StepResult records one finished step. Read-only once created.
type StepResult struct {
	Step       string
	Outputs    []string
	ExitStatus int
	Elapsed    time.Duration
}
