// Package core implements the basis, project, and target scopes: plugin
// factory ownership, dynamic function invocation, persistence through the
// state service client, and cascading resource closure.
package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lseinc/vagrant/internal/plugin"
)

// Construction errors. Each missing invariant is a distinct fatal.
var (
	// ErrBasisRecordRequired indicates no basis record or name was supplied.
	ErrBasisRecordRequired = errors.New("basis record is required")

	// ErrProjectRecordRequired indicates no project record or name was supplied.
	ErrProjectRecordRequired = errors.New("project record is required")

	// ErrTargetRecordRequired indicates no target record or name was supplied.
	ErrTargetRecordRequired = errors.New("target record is required")

	// ErrClientRequired indicates no state service client was supplied.
	ErrClientRequired = errors.New("state service client is required")

	// ErrDataDirRequired indicates no data directory was supplied.
	ErrDataDirRequired = errors.New("data directory is required")

	// ErrNoDetectedHost indicates no registered host component matched the
	// running platform.
	ErrNoDetectedHost = errors.New("no host component detected this platform")
)

// TaskError reports a task whose execute function returned a non-zero code.
type TaskError struct {
	// Code is the exit code the command produced.
	Code int64
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task failed with exit code %d", e.Code)
}

// TaskComponent names the component a task dispatches to.
type TaskComponent struct {
	// Kind is the component kind, normally plugin.CommandKind.
	Kind plugin.ComponentKind
	// Name is the command name; subcommand words after the root token are
	// routed by the plugin itself.
	Name string
}

// Task describes a unit of work dispatched through a scope.
type Task struct {
	// Component names the plugin handling the task.
	Component TaskComponent
	// CommandArgs are the raw command words handed to the plugin.
	CommandArgs []string
}

// JobInfo carries invocation metadata injected into plugin functions.
type JobInfo struct {
	// ID uniquely identifies this job invocation.
	ID string
	// Local reports whether the job runs on the local runner.
	Local bool
}

// NewJobInfo creates a JobInfo for a local invocation.
func NewJobInfo() *JobInfo {
	return &JobInfo{
		ID:    uuid.NewString(),
		Local: true,
	}
}

// CommandFlag is the wire form of a command flag produced by Init.
type CommandFlag struct {
	// LongName is the flag's long form, without leading dashes.
	LongName string `json:"long_name"`
	// ShortName is the optional single-letter form.
	ShortName string `json:"short_name,omitempty"`
	// Description is shown in help output.
	Description string `json:"description,omitempty"`
	// DefaultValue is the rendered default.
	DefaultValue string `json:"default_value,omitempty"`
	// Kind is "string" or "bool".
	Kind string `json:"kind"`
}

// CommandEntry is one flattened command produced by Init. Name is the
// whitespace-joined path from the root command to this node.
type CommandEntry struct {
	Name     string         `json:"name"`
	Synopsis string         `json:"synopsis,omitempty"`
	Help     string         `json:"help,omitempty"`
	Flags    []*CommandFlag `json:"flags,omitempty"`
}

// FlagMapper translates plugin flag descriptions to their wire form. The
// mapper is pluggable per basis; DefaultFlagMapper is used when none is
// configured.
type FlagMapper func([]*plugin.FlagInfo) []*CommandFlag

// DefaultFlagMapper is the standard flag translation.
func DefaultFlagMapper(flags []*plugin.FlagInfo) []*CommandFlag {
	if len(flags) == 0 {
		return nil
	}

	out := make([]*CommandFlag, 0, len(flags))
	for _, f := range flags {
		kind := "string"
		if f.Kind == plugin.FlagBool {
			kind = "bool"
		}
		out = append(out, &CommandFlag{
			LongName:     f.LongName,
			ShortName:    f.ShortName,
			Description:  f.Description,
			DefaultValue: f.DefaultValue,
			Kind:         kind,
		})
	}
	return out
}
