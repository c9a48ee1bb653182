package sampler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Unknown is the identifier substituted when the foreground provider
// cannot resolve an active application.
const Unknown = "Unknown"

// ErrUnavailable is returned by a Provider when no foreground application
// can be resolved right now.
var ErrUnavailable = errors.New("sampler: foreground application unavailable")

// Provider reports the identifier of the currently focused application.
// It is polled synchronously from the sampler's tick.
type Provider interface {
	CurrentApp() (string, error)
}

// CommandProvider resolves the foreground application by running an
// external command (an xdotool or osascript wrapper, typically) and
// reading the identifier from its first line of output.
type CommandProvider struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommandProvider creates a provider that shells out to command.
func NewCommandProvider(command string, args []string, timeout time.Duration) *CommandProvider {
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	return &CommandProvider{command: command, args: args, timeout: timeout}
}

// CurrentApp runs the configured command and returns its trimmed first
// output line. Any failure or empty output maps to ErrUnavailable.
func (p *CommandProvider) CurrentApp() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, p.command, p.args...).Output()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	name, _, _ := strings.Cut(string(out), "\n")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrUnavailable
	}
	return name, nil
}

// StaticProvider always reports the same application. Used by tests and
// the run command's dry-run mode.
type StaticProvider struct {
	App string
}

// CurrentApp returns the fixed application name, or ErrUnavailable when
// it is empty.
func (p *StaticProvider) CurrentApp() (string, error) {
	if p.App == "" {
		return "", ErrUnavailable
	}
	return p.App, nil
}
