// Package execx runs the external bioinformatics tools. The Executor
// interface is the seam the pipeline is tested through; Local is the
// production implementation backed by os/exec.
package execx

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	logging "github.com/op/go-logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Command is one external invocation. When StdoutPath is set the child's
// stdout is written to that file, mirroring shell redirection; otherwise
// stdout joins stderr in the log.
type Command struct {
	Argv       []string
	StdoutPath string
}

func (c Command) String() string {
	s := strings.Join(c.Argv, " ")
	if c.StdoutPath != "" {
		s += " > " + c.StdoutPath
	}
	return s
}

// Executor runs a single external command to completion.
type Executor interface {
	Run(ctx context.Context, cmd Command) error
}

// Local executes commands on the host. Prefix, when non-empty, is
// prepended to every argv so the toolchain can be hosted by a container
// runtime instead of the local filesystem.
type Local struct {
	Prefix []string
	Log    *logging.Logger
}

func (l *Local) Run(ctx context.Context, cmd Command) error {
	if len(cmd.Argv) == 0 {
		return errors.New("empty command")
	}

	argv := append(append([]string{}, l.Prefix...), cmd.Argv...)
	proc := exec.CommandContext(ctx, argv[0], argv[1:]...)

	stderr, err := proc.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "unable to open stderr pipe")
	}

	var stdout io.ReadCloser
	var outFile *os.File
	if cmd.StdoutPath != "" {
		outFile, err = os.Create(cmd.StdoutPath)
		if err != nil {
			return errors.Wrapf(err, "unable to create %s", cmd.StdoutPath)
		}
		defer outFile.Close()
		proc.Stdout = outFile
	} else {
		stdout, err = proc.StdoutPipe()
		if err != nil {
			return errors.Wrap(err, "unable to open stdout pipe")
		}
	}

	if l.Log != nil {
		l.Log.Debugf("exec: %s", cmd)
	}

	if err := proc.Start(); err != nil {
		return errors.Wrapf(err, "unable to start %s", argv[0])
	}

	// Drain both streams concurrently so a chatty tool cannot block on a
	// full pipe while we wait on the other one.
	grp := errgroup.Group{}
	grp.Go(func() error { return l.drain(stderr) })
	if stdout != nil {
		grp.Go(func() error { return l.drain(stdout) })
	}
	drainErr := grp.Wait()

	if err := proc.Wait(); err != nil {
		return errors.Wrapf(err, "%s", argv[0])
	}
	if drainErr != nil {
		return errors.Wrap(drainErr, "unable to read tool output")
	}

	return nil
}

func (l *Local) drain(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if l.Log != nil {
			l.Log.Debug(scanner.Text())
		}
	}
	return scanner.Err()
}

// ExitStatus extracts the child exit code from a Run error. It returns 0
// for nil and -1 when the process never reported a code (start failure,
// kill by signal).
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

var _ Executor = (*Local)(nil)
