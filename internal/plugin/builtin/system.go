// Package builtin provides the plugin components shipped with vagrant
// itself: the system command and the host detection components.
package builtin

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/lseinc/vagrant/internal/plugin"
	"github.com/lseinc/vagrant/internal/ui"
)

// SystemCommand reports information about the running system. It accepts
// request metadata, so it is specializable before dispatch.
type SystemCommand struct {
	plugin.RequestMetadata

	log *slog.Logger
}

// NewSystemCommand is the factory for the system command component. The
// dynamic invoker supplies the logger.
func NewSystemCommand(log *slog.Logger) (plugin.Command, error) {
	return &SystemCommand{log: log}, nil
}

// CommandInfoFunc returns the command tree producer.
func (c *SystemCommand) CommandInfoFunc() interface{} {
	return c.commandInfo
}

// ExecuteFunc returns the command executor.
func (c *SystemCommand) ExecuteFunc() interface{} {
	return c.execute
}

func (c *SystemCommand) commandInfo() (*plugin.CommandInfo, error) {
	return &plugin.CommandInfo{
		Name:     "system",
		Synopsis: "Show system information",
		Help:     "Show information about the system vagrant is running on.",
		Flags: []*plugin.FlagInfo{
			{
				LongName:    "verbose",
				ShortName:   "v",
				Description: "Show extended information",
				Kind:        plugin.FlagBool,
			},
		},
		Subcommands: []*plugin.CommandInfo{
			{
				Name:     "info",
				Synopsis: "Show platform and runtime details",
				Help:     "Show the platform, architecture, and runtime details.",
			},
		},
	}, nil
}

func (c *SystemCommand) execute(ctx context.Context, u ui.UI, args *plugin.CommandArgs) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 1, err
	}

	u.Output("platform: %s/%s", runtime.GOOS, runtime.GOARCH)
	if endpoint, ok := c.RequestMetadataValue(plugin.MetadataServiceEndpoint); ok {
		u.Output("service:  %s", endpoint)
	}
	for _, word := range args.Args {
		u.Output("arg: %s", word)
	}

	c.log.Debug("system command executed", slog.Int("args", len(args.Args)))
	return 0, nil
}

// FailCommand always exits with the configured code. It exists to exercise
// failure handling in composed pipelines.
type FailCommand struct {
	plugin.RequestMetadata

	// Code is the exit code execute produces.
	Code int64
}

// NewFailCommand is the factory for the fail command component.
func NewFailCommand() (plugin.Command, error) {
	return &FailCommand{Code: 1}, nil
}

// CommandInfoFunc returns the command tree producer.
func (c *FailCommand) CommandInfoFunc() interface{} {
	return func() (*plugin.CommandInfo, error) {
		return &plugin.CommandInfo{
			Name:     "fail",
			Synopsis: "Always fail",
			Help:     "Exit non-zero. Useful for exercising failure paths.",
		}, nil
	}
}

// ExecuteFunc returns the command executor.
func (c *FailCommand) ExecuteFunc() interface{} {
	return func() (int64, error) {
		return c.Code, nil
	}
}

// Register adds the builtin components to the given registry.
func Register(r *plugin.Registry) {
	r.Register(plugin.CommandKind, "system", NewSystemCommand)
	r.Register(plugin.CommandKind, "fail", NewFailCommand)
	r.Register(plugin.HostKind, "linux", NewLinuxHost)
	r.Register(plugin.HostKind, "bsd", NewBSDHost)
	r.Register(plugin.HostKind, "darwin", NewDarwinHost)
}

var (
	_ plugin.Command = (*SystemCommand)(nil)
	_ plugin.Command = (*FailCommand)(nil)
)
