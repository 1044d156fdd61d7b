// Package ui provides terminal output for basis and project scopes.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// UI is the output surface handed to plugins and middleware. Implementations
// must be safe for concurrent use.
type UI interface {
	// Output writes a formatted line of normal output.
	Output(msg string, args ...any)
	// Warn writes a formatted warning line.
	Warn(msg string, args ...any)
	// Error writes a formatted error line.
	Error(msg string, args ...any)
	// Status returns a handle for transient progress output. The handle
	// must be closed when the operation finishes.
	Status() Status
}

// Status is a transient progress indicator. Close always succeeds and is
// safe to call more than once.
type Status interface {
	// Update replaces the current status line.
	Update(msg string)
	// Close finishes the status output.
	Close() error
}

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// Console is a UI writing colored output to stdout/stderr. It is bound to a
// context: output after cancellation is dropped.
type Console struct {
	ctx context.Context
	out io.Writer
	err io.Writer
	mu  sync.Mutex
}

// NewConsole creates a Console bound to the given context.
func NewConsole(ctx context.Context) *Console {
	return &Console{ctx: ctx, out: os.Stdout, err: os.Stderr}
}

// NewConsoleWithWriters creates a Console with custom writers, for testing.
func NewConsoleWithWriters(ctx context.Context, out, errOut io.Writer) *Console {
	return &Console{ctx: ctx, out: out, err: errOut}
}

func (c *Console) write(w io.Writer, line string) {
	if c.ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(w, line)
}

// Output writes a formatted line of normal output.
func (c *Console) Output(msg string, args ...any) {
	c.write(c.out, fmt.Sprintf(msg, args...))
}

// Warn writes a formatted warning line.
func (c *Console) Warn(msg string, args ...any) {
	c.write(c.err, warnColor.Sprintf(msg, args...))
}

// Error writes a formatted error line.
func (c *Console) Error(msg string, args ...any) {
	c.write(c.err, errorColor.Sprintf(msg, args...))
}

// Status returns a handle for transient progress output.
func (c *Console) Status() Status {
	return &consoleStatus{console: c}
}

// consoleStatus renders status updates as plain output lines.
type consoleStatus struct {
	console *Console
	once    sync.Once
}

func (s *consoleStatus) Update(msg string) {
	s.console.Output("    %s", msg)
}

func (s *consoleStatus) Close() error {
	s.once.Do(func() {})
	return nil
}

// Silent is a UI that discards all output. Useful in tests and for headless
// task execution.
type Silent struct{}

// NewSilent creates a Silent UI.
func NewSilent() *Silent { return &Silent{} }

// Output discards the message.
func (*Silent) Output(string, ...any) {}

// Warn discards the message.
func (*Silent) Warn(string, ...any) {}

// Error discards the message.
func (*Silent) Error(string, ...any) {}

// Status returns a no-op status handle.
func (*Silent) Status() Status { return silentStatus{} }

type silentStatus struct{}

func (silentStatus) Update(string) {}
func (silentStatus) Close() error  { return nil }
