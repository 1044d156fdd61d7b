package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lseinc/vagrant/internal/action"
	"github.com/lseinc/vagrant/internal/core"
	"github.com/lseinc/vagrant/internal/plugin"
	"github.com/spf13/cobra"
)

var basisName string

// taskCmd dispatches a task through the basis inside a middleware pipeline.
var taskCmd = &cobra.Command{
	Use:   "task NAME [ARGS...]",
	Short: "Run a command plugin as a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		s, err := buildSession(ctx, basisName)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := s.Close(); closeErr != nil {
				slog.Warn("session close reported failures", slog.String("error", closeErr.Error()))
			}
		}()

		return runTask(ctx, s.Basis, &core.Task{
			Component:   core.TaskComponent{Kind: plugin.CommandKind, Name: args[0]},
			CommandArgs: args[1:],
		})
	},
}

// runTask executes the task through a pipeline so locking and recovery wrap
// the dispatch.
func runTask(ctx context.Context, basis *core.Basis, task *core.Task) error {
	lock := &action.Lock{Key: "basis/" + basis.Name()}

	warden, err := action.NewWarden(slog.Default(), triggersFromConfig(basis), []any{
		lock,
		func(ctx context.Context, env action.Env) error {
			return basis.Run(ctx, task)
		},
		&action.Unlock{Lock: lock},
	})
	if err != nil {
		return err
	}

	env := action.NewEnv()
	if err := warden.Call(ctx, env); err != nil {
		var taskErr *core.TaskError
		if errors.As(err, &taskErr) {
			return fmt.Errorf("task %q failed with exit code %d", task.Component.Name, taskErr.Code)
		}
		return err
	}
	return nil
}

// triggersFromConfig builds the trigger spec from the configured
// before/after commands. Hook commands currently just echo through the UI;
// rendering full guest command execution is out of scope here.
func triggersFromConfig(basis *core.Basis) action.Triggers {
	cfg := basis.Config().Triggers
	spec := action.NewTriggerSpec()

	for name, cmds := range cfg.Before {
		for _, c := range cmds {
			spec.AddBefore(name, func(ctx context.Context, env action.Env) error {
				basis.UI().Output("trigger: %s", c)
				return nil
			})
		}
	}
	for name, cmds := range cfg.After {
		for _, c := range cmds {
			spec.AddAfter(name, func(ctx context.Context, env action.Env) error {
				basis.UI().Output("trigger: %s", c)
				return nil
			})
		}
	}
	return spec
}

func init() {
	taskCmd.Flags().StringVar(&basisName, "basis", "default", "basis scope to run within")
	rootCmd.AddCommand(taskCmd)
}
