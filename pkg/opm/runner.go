package opm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/lissto-dev/catalogger/pkg/declcfg"
	"github.com/lissto-dev/catalogger/pkg/logging"
)

// DefaultCommand is used when no opm command is configured
const DefaultCommand = "opm"

// ErrEmptyCommand is returned for blank command lines
var ErrEmptyCommand = errors.New("empty opm command")

// CommandError is a failed opm invocation
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Runner invokes the opm CLI
type Runner struct {
	command []string
}

// NewRunner creates a runner for a command line such as "opm" or
// "podman run --rm quay.io/operator-framework/opm:latest". The line is split
// with shell quoting rules.
func NewRunner(commandLine string) (*Runner, error) {
	if strings.TrimSpace(commandLine) == "" {
		commandLine = DefaultCommand
	}

	command, err := shlex.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("failed to parse opm command %q: %w", commandLine, err)
	}
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	return &Runner{command: command}, nil
}

// Available reports whether the opm executable can be found
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.command[0])
	return err == nil
}

// Render runs `opm render <imageRef> --output=yaml` and decodes its output
func (r *Runner) Render(ctx context.Context, imageRef string) ([]declcfg.Record, error) {
	stdout, err := r.run(ctx, true, "render", imageRef, "--output=yaml")
	if err != nil {
		return nil, err
	}
	return declcfg.DecodeRecords(stdout)
}

// Validate runs `opm validate <configsDir>`
func (r *Runner) Validate(ctx context.Context, configsDir string) error {
	_, err := r.run(ctx, false, "validate", configsDir)
	return err
}

// ServeCache runs `opm serve --cache-only <configsDir> --cache-dir=<cacheDir>`
func (r *Runner) ServeCache(ctx context.Context, configsDir, cacheDir string) error {
	_, err := r.run(ctx, false, "serve", "--cache-only", configsDir, "--cache-dir="+cacheDir)
	return err
}

func (r *Runner) run(ctx context.Context, quiet bool, args ...string) ([]byte, error) {
	argv := append(append([]string{}, r.command...), args...)

	if quiet {
		logging.Logger.Debug("Running "+strings.Join(argv, " "))
	} else {
		logging.Logger.Info("Running "+strings.Join(argv, " "))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Logger.Debug("opm command failed",
			zap.Strings("args", argv),
			zap.Error(err))
		return nil, &CommandError{
			Args:   argv,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	return stdout.Bytes(), nil
}
