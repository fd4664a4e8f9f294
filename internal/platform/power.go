package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNegativeTimeout indicates a timeout below zero minutes was requested.
var ErrNegativeTimeout = errors.New("monitor timeout must not be negative")

// CommandRunner executes an external program and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CommandError reports a power command that could not be launched or
// exited with a non-zero status.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (err *CommandError) Error() string {
	if err.Output == "" {
		return fmt.Sprintf("%s: %v", err.Command, err.Err)
	}
	return fmt.Sprintf("%s: %v: %s", err.Command, err.Err, err.Output)
}

func (err *CommandError) Unwrap() error {
	return err.Err
}

// PowerController changes the display sleep timeout of the AC power profile.
type PowerController struct {
	runner  CommandRunner
	timeout time.Duration
}

// NewPowerController returns a controller backed by os/exec. A zero timeout
// lets the command run until it exits.
func NewPowerController(timeout time.Duration) *PowerController {
	return NewPowerControllerWithRunner(execRunner{}, timeout)
}

// NewPowerControllerWithRunner returns a controller that runs commands through runner.
func NewPowerControllerWithRunner(runner CommandRunner, timeout time.Duration) *PowerController {
	if timeout < 0 {
		timeout = 0
	}
	return &PowerController{runner: runner, timeout: timeout}
}

// ApplyTimeout sets the monitor timeout to the given number of minutes.
// Zero disables display sleep.
func (controller *PowerController) ApplyTimeout(ctx context.Context, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("apply monitor timeout %d: %w", minutes, ErrNegativeTimeout)
	}

	if controller.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, controller.timeout)
		defer cancel()
	}

	name, args := timeoutCommand(minutes)
	output, err := controller.runner.Run(ctx, name, args...)
	if err != nil {
		return &CommandError{
			Command: strings.Join(append([]string{name}, args...), " "),
			Output:  strings.TrimSpace(string(output)),
			Err:     err,
		}
	}
	return nil
}
