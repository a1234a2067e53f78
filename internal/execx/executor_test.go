package execx_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastseq/fastseq/internal/execx"
)

func TestLocalRun(t *testing.T) {
	t.Parallel()

	local := &execx.Local{}
	err := local.Run(context.Background(), execx.Command{Argv: []string{"true"}})
	require.NoError(t, err)
}

func TestLocalRunRedirectsStdout(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "out.txt")
	local := &execx.Local{}
	err := local.Run(context.Background(), execx.Command{
		Argv:       []string{"sh", "-c", "echo hello"},
		StdoutPath: out,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestLocalRunNonZeroExit(t *testing.T) {
	t.Parallel()

	local := &execx.Local{}
	err := local.Run(context.Background(), execx.Command{Argv: []string{"sh", "-c", "exit 3"}})
	require.Error(t, err)
	assert.Equal(t, 3, execx.ExitStatus(err))
}

func TestLocalRunPrefix(t *testing.T) {
	t.Parallel()

	// env acts as a stand-in for a container-runtime wrapper
	local := &execx.Local{Prefix: []string{"env"}}
	err := local.Run(context.Background(), execx.Command{Argv: []string{"true"}})
	require.NoError(t, err)
}

func TestLocalRunMissingTool(t *testing.T) {
	t.Parallel()

	local := &execx.Local{}
	err := local.Run(context.Background(), execx.Command{Argv: []string{"/no/such/tool"}})
	require.Error(t, err)
	assert.Equal(t, -1, execx.ExitStatus(err))
}

func TestLocalRunEmptyCommand(t *testing.T) {
	t.Parallel()

	local := &execx.Local{}
	err := local.Run(context.Background(), execx.Command{})
	require.Error(t, err)
}

func TestLocalRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	local := &execx.Local{}
	err := local.Run(ctx, execx.Command{Argv: []string{"sleep", "10"}})
	require.Error(t, err)
}

func TestExitStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, execx.ExitStatus(nil))
	assert.Equal(t, -1, execx.ExitStatus(errors.New("boom")))
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	cmd := execx.Command{Argv: []string{"bwa", "mem", "ref.fa"}, StdoutPath: "out.sam"}
	assert.Equal(t, "bwa mem ref.fa > out.sam", cmd.String())
}
