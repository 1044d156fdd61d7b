package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-argmapper"
	"github.com/lseinc/vagrant/internal/datadir"
	"github.com/lseinc/vagrant/internal/models"
	"github.com/lseinc/vagrant/internal/observability"
	"github.com/lseinc/vagrant/internal/plugin"
	"github.com/lseinc/vagrant/internal/serverclient"
	"github.com/lseinc/vagrant/internal/ui"
)

// Project is a child scope of a Basis. It borrows the basis's factories and
// mappers, owns its targets, and follows the same closer/save lifecycle. A
// project is only valid when returned by Basis.LoadProject.
type Project struct {
	logger  *slog.Logger
	project *models.Project
	dir     *datadir.Project
	ui      ui.UI
	basis   *Basis
	client  serverclient.Client
	jobInfo *JobInfo
	ctx     context.Context

	// m guards close transitions, the targets index, and the closers list.
	m          sync.Mutex
	targets    map[string]*Target
	targetList []*Target
	closers    []func() error
	closed     bool
}

// resolveRecord looks up the project record within the owning basis,
// inserting it when the service has no match.
func (p *Project) resolveRecord(ctx context.Context) error {
	if !p.project.ResourceID.IsZero() {
		record, err := p.client.GetProject(ctx, p.Ref())
		if err != nil {
			return fmt.Errorf("resolving project record: %w", err)
		}
		p.project = record
		return nil
	}

	record, found, err := p.client.FindProject(ctx, p.Ref())
	if err != nil {
		return fmt.Errorf("resolving project record: %w", err)
	}
	if found {
		p.project = record
		return nil
	}

	record, err = p.client.UpsertProject(ctx, p.project)
	if err != nil {
		return fmt.Errorf("inserting project record: %w", err)
	}
	p.project = record
	return nil
}

// Name returns the project name.
func (p *Project) Name() string { return p.project.Name }

// ResourceID returns the project resource id.
func (p *Project) ResourceID() models.ULID { return p.project.ResourceID }

// Basis returns the owning basis.
func (p *Project) Basis() *Basis { return p.basis }

// UI returns the project UI.
func (p *Project) UI() ui.UI { return p.ui }

// DataDir returns the project data directory.
func (p *Project) DataDir() *datadir.Project { return p.dir }

// Ref returns the reference to this project for use in service calls.
func (p *Project) Ref() *serverclient.ProjectRef {
	return &serverclient.ProjectRef{
		ResourceID: p.project.ResourceID,
		BasisID:    p.project.BasisID,
		Name:       p.project.Name,
	}
}

// Closer registers a function to run when the project closes.
func (p *Project) Closer(f func() error) {
	p.m.Lock()
	defer p.m.Unlock()
	p.closers = append(p.closers, f)
}

// callDynamicFunc invokes a plugin-provided function with this project's
// scope defaults layered over the basis defaults.
func (p *Project) callDynamicFunc(
	ctx context.Context,
	expected interface{},
	f interface{},
	args ...argmapper.Arg,
) (interface{}, error) {
	log := observability.WithOperation(p.logger, "dynamic-call")

	args = append(args,
		argmapper.Typed(p, p.basis, p.jobInfo, p.project),
		argmapper.Named("project", p),
		argmapper.Named("basis", p.basis),
	)

	return dynamicCall(ctx, log, p.ui, p.basis.mappers, expected, f, args...)
}

// Run dispatches a task within this project's scope. Resolution and
// specialization follow the basis semantics; the project and its record are
// additionally available to the command's execute function.
func (p *Project) Run(ctx context.Context, task *Task) error {
	name := plugin.CommandNameRoot(task.Component.Name)
	log := p.logger.With(slog.String("task", name))

	inst, err := p.basis.component(ctx, plugin.CommandKind, name)
	if err != nil {
		return err
	}
	defer inst.Close()

	if err := p.basis.specialize(inst); err != nil {
		return err
	}

	cmd := inst.Component.(plugin.Command)
	raw, err := p.callDynamicFunc(ctx, (*int64)(nil), cmd.ExecuteFunc(),
		argmapper.Typed(&plugin.CommandArgs{Args: task.CommandArgs}),
	)
	if err != nil {
		log.Error("task execution failed",
			slog.String("kind", plugin.CommandKind.String()),
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return err
	}

	if code := raw.(int64); code != 0 {
		return &TaskError{Code: code}
	}

	log.Debug("task completed")
	return nil
}

// LoadTarget loads or returns a target within this project. Loading is
// idempotent by resource id.
func (p *Project) LoadTarget(opts ...TargetOption) (*Target, error) {
	t := &Target{
		project: p,
		client:  p.client,
		ctx:     p.ctx,
	}

	if err := applyTargetOptions(t, opts); err != nil {
		return nil, errOrNil(err)
	}

	if t.target == nil || t.target.Name == "" {
		return nil, ErrTargetRecordRequired
	}
	t.target.ProjectID = p.project.ResourceID
	t.logger = p.logger.With(slog.String("target", t.target.Name))

	if !t.target.ResourceID.IsZero() {
		if existing := p.Target(t.target.ResourceID.String()); existing != nil {
			return existing, nil
		}
	}

	if err := t.resolveRecord(p.ctx); err != nil {
		return nil, err
	}

	p.m.Lock()
	if existing, ok := p.targets[t.target.ResourceID.String()]; ok {
		p.m.Unlock()
		return existing, nil
	}
	p.targets[t.target.Name] = t
	p.targets[t.target.ResourceID.String()] = t
	p.targetList = append(p.targetList, t)
	p.m.Unlock()

	if t.dir == nil {
		dir, err := p.dir.Target(t.target.Name)
		if err != nil {
			return nil, err
		}
		t.dir = dir
	}

	// Register the target's self-save closer.
	t.Closer(func() error {
		return t.Save(t.ctx)
	})

	return t, nil
}

// Target returns a loaded target by name or resource id, or nil.
func (p *Project) Target(nameOrID string) *Target {
	p.m.Lock()
	defer p.m.Unlock()
	return p.targets[nameOrID]
}

// Targets returns the loaded targets in load order.
func (p *Project) Targets() []*Target {
	p.m.Lock()
	defer p.m.Unlock()
	out := make([]*Target, len(p.targetList))
	copy(out, p.targetList)
	return out
}

// Save persists the project record through the state service.
func (p *Project) Save(ctx context.Context) error {
	record, err := p.client.UpsertProject(ctx, p.project)
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	p.project = record
	return nil
}

// SaveFull persists every loaded target and then the project itself.
func (p *Project) SaveFull(ctx context.Context) error {
	var result error
	for _, t := range p.Targets() {
		result = appendErr(result, t.Save(ctx))
	}
	result = appendErr(result, p.Save(ctx))
	return errOrNil(result)
}

// Close releases the project: loaded targets close first, then registered
// closers run in registration order. Failures are aggregated and returned.
// Close is idempotent; calls after the first return nil.
func (p *Project) Close() error {
	p.m.Lock()
	if p.closed {
		p.m.Unlock()
		return nil
	}
	p.closed = true
	targets := make([]*Target, len(p.targetList))
	copy(targets, p.targetList)
	closers := make([]func() error, len(p.closers))
	copy(closers, p.closers)
	p.m.Unlock()

	p.logger.Debug("closing project")

	var result error
	for _, t := range targets {
		result = appendErr(result, t.Close())
	}
	for _, closer := range closers {
		result = appendErr(result, closer())
	}
	return errOrNil(result)
}
