package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Runner runs an external command and reports non-zero exits as errors. It
// exists so the pieces that need privileged OS utilities stay independent of
// process spawning and can be tested with a mock.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

//go:generate mockery --case underscore --output runnermock --outpkg runnermock --name Runner

// NewOSRunner returns a Runner backed by real OS processes.
func NewOSRunner() Runner {
	return osRunner{}
}

type osRunner struct{}

// Run executes the command and waits for it. On a non-zero exit the captured
// standard error text becomes the error message; if the process could not be
// spawned at all, the spawn error is used instead.
func (osRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return errors.New(msg)
	}

	return nil
}
