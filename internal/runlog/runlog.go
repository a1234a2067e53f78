// Package runlog configures the shared fastseq logger.
package runlog

import (
	"io"
	"os"

	logging "github.com/op/go-logging"
	"github.com/pkg/errors"
)

// Logger is the process-wide logger all packages write to.
var Logger = logging.MustGetLogger("fastseq")

var format = logging.MustStringFormatter(
	`%{time:2006-01-02 15:04:05} %{module} %{level:.4s} %{message}`,
)

// Setup installs a formatted stderr backend and, when logFile is not
// empty, a second backend appending to that file. The returned closer
// owns the log file handle.
func Setup(logFile string) (io.Closer, error) {
	stderrBackend := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), format)

	if logFile == "" {
		logging.SetBackend(stderrBackend)
		return io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open log file %s", logFile)
	}

	fileBackend := logging.NewBackendFormatter(logging.NewLogBackend(file, "", 0), format)
	logging.SetBackend(stderrBackend, fileBackend)

	return file, nil
}
