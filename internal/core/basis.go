package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-argmapper"
	"github.com/lseinc/vagrant/internal/config"
	"github.com/lseinc/vagrant/internal/datadir"
	"github.com/lseinc/vagrant/internal/models"
	"github.com/lseinc/vagrant/internal/observability"
	"github.com/lseinc/vagrant/internal/plugin"
	"github.com/lseinc/vagrant/internal/serverclient"
	"github.com/lseinc/vagrant/internal/ui"
)

// Basis is the root scope. It owns the factory registry, the mapper list,
// the data directory, the UI, job metadata, loaded projects, and registered
// closers, and persists its record through the state service client.
type Basis struct {
	logger   *slog.Logger
	basis    *models.Basis
	dir      *datadir.Basis
	ui       ui.UI
	jobInfo  *JobInfo
	registry *plugin.Registry
	mappers  []*argmapper.Func
	config   *config.Config
	client   serverclient.Client
	ctx      context.Context

	flagMapper FlagMapper

	// m guards close transitions, the projects index, and the closers list.
	// Close is observed atomically under it; Save does not take it.
	m           sync.Mutex
	projects    map[string]*Project
	projectList []*Project
	closers     []func() error
	closed      bool
}

// NewBasis creates a Basis by applying the given options. The construction
// order is significant: options first (errors aggregated), then the logger
// namespace, then the record/client/data-directory invariants, UI and
// mapper defaults, configuration load, record resolution through the state
// service, and finally the self-save closer.
func NewBasis(ctx context.Context, opts ...BasisOption) (*Basis, error) {
	b := &Basis{
		ctx:      defaultContext(ctx),
		projects: make(map[string]*Project),
	}

	// Apply options, accumulating errors so the caller sees every misuse.
	if err := applyBasisOptions(b, opts); err != nil {
		return nil, errOrNil(err)
	}

	// Derive the logger namespace. Trace-level roots keep the fully
	// qualified component path.
	root := b.logger
	if root == nil {
		root = slog.Default()
	}
	if observability.Trace() {
		b.logger = observability.WithComponent(root, "vagrant.core.basis")
	} else {
		b.logger = observability.WithComponent(root, "basis")
	}

	// Enforce invariants. Each missing dependency is a distinct fatal.
	if b.basis == nil || b.basis.Name == "" {
		return nil, ErrBasisRecordRequired
	}
	if b.client == nil {
		return nil, ErrClientRequired
	}
	if b.dir == nil {
		return nil, ErrDataDirRequired
	}

	// Default the UI to a console bound to our context.
	if b.ui == nil {
		b.ui = ui.NewConsole(b.ctx)
	}

	if b.jobInfo == nil {
		b.jobInfo = NewJobInfo()
	}
	if b.registry == nil {
		b.registry = plugin.DefaultRegistry()
	}
	if b.flagMapper == nil {
		b.flagMapper = DefaultFlagMapper
	}

	// Seed the built-in mappers when the options supplied none.
	if len(b.mappers) == 0 {
		mappers, err := defaultMappers()
		if err != nil {
			return nil, err
		}
		b.mappers = mappers
	}

	// Load configuration. A load failure is recovered with a stub config.
	if b.config == nil {
		cfg, err := config.Load("")
		if err != nil {
			b.logger.Warn("configuration load failed, continuing with defaults",
				slog.String("error", err.Error()),
			)
			cfg = config.Default()
		}
		b.config = cfg
	}

	// Resolve or insert our server-side record so the basis has a resource
	// id before any save.
	if err := b.resolveRecord(b.ctx); err != nil {
		return nil, err
	}

	// Merge mapper components registered with the factory registry.
	if err := b.initMappers(b.ctx); err != nil {
		return nil, err
	}

	// Register the self-save closer last.
	b.Closer(func() error {
		return b.Save(b.ctx)
	})

	b.logger.Debug("basis initialized",
		slog.String("name", b.basis.Name),
		slog.String("resource_id", b.basis.ResourceID.String()),
	)

	return b, nil
}

// resolveRecord looks up the basis record by resource id or name, inserting
// it when the service has no match.
func (b *Basis) resolveRecord(ctx context.Context) error {
	if !b.basis.ResourceID.IsZero() {
		record, err := b.client.GetBasis(ctx, b.Ref())
		if err != nil {
			return fmt.Errorf("resolving basis record: %w", err)
		}
		b.basis = record
		return nil
	}

	record, found, err := b.client.FindBasis(ctx, b.Ref())
	if err != nil {
		return fmt.Errorf("resolving basis record: %w", err)
	}
	if found {
		b.basis = record
		return nil
	}

	if b.basis.Path == "" {
		b.basis.Path = b.dir.RootDir()
	}
	record, err = b.client.UpsertBasis(ctx, b.basis)
	if err != nil {
		return fmt.Errorf("inserting basis record: %w", err)
	}
	b.basis = record
	return nil
}

// initMappers constructs every registered mapper component and merges its
// conversion functions into the mapper list.
func (b *Basis) initMappers(ctx context.Context) error {
	for _, name := range b.registry.Registered(plugin.MapperKind) {
		b.logger.Debug("loading mapper component", slog.String("name", name))

		inst, err := b.component(ctx, plugin.MapperKind, name)
		if err != nil {
			return err
		}

		mapper, ok := inst.Component.(plugin.Mapper)
		if !ok {
			_ = inst.Close()
			return fmt.Errorf("component %q does not provide mapper functions", name)
		}

		for _, fn := range mapper.MapperFuncs() {
			m, err := argmapper.NewFunc(fn)
			if err != nil {
				_ = inst.Close()
				return fmt.Errorf("building mapper from component %q: %w", name, err)
			}
			b.mappers = append(b.mappers, m)
		}

		b.Closer(inst.Close)
	}
	return nil
}

// Name returns the basis name.
func (b *Basis) Name() string { return b.basis.Name }

// ResourceID returns the basis resource id.
func (b *Basis) ResourceID() models.ULID { return b.basis.ResourceID }

// Ref returns the reference to this basis for use in service calls.
func (b *Basis) Ref() *serverclient.BasisRef {
	return &serverclient.BasisRef{
		ResourceID: b.basis.ResourceID,
		Name:       b.basis.Name,
	}
}

// Client returns the state service client.
func (b *Basis) Client() serverclient.Client { return b.client }

// UI returns the basis UI.
func (b *Basis) UI() ui.UI { return b.ui }

// JobInfo returns the invocation metadata.
func (b *Basis) JobInfo() *JobInfo { return b.jobInfo }

// DataDir returns the basis data directory.
func (b *Basis) DataDir() *datadir.Basis { return b.dir }

// Config returns the loaded configuration.
func (b *Basis) Config() *config.Config { return b.config }

// Closer registers a function to run when the basis closes. Every closer
// runs exactly once across the basis's lifetime.
func (b *Basis) Closer(f func() error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.closers = append(b.closers, f)
}

// callDynamicFunc invokes a plugin-provided function with this basis's
// scope defaults: the basis itself (typed and under the name "basis"), the
// job metadata, the current record, the UI, the context, and a derived
// logger.
func (b *Basis) callDynamicFunc(
	ctx context.Context,
	expected interface{},
	f interface{},
	args ...argmapper.Arg,
) (interface{}, error) {
	log := observability.WithOperation(b.logger, "dynamic-call")

	args = append(args,
		argmapper.Typed(b, b.jobInfo, b.basis),
		argmapper.Named("basis", b),
	)

	return dynamicCall(ctx, log, b.ui, b.mappers, expected, f, args...)
}

// component constructs a component instance of the given kind and name by
// invoking its registered factory through the dynamic invoker.
func (b *Basis) component(ctx context.Context, kind plugin.ComponentKind, name string) (*plugin.Instance, error) {
	factory, err := b.registry.Lookup(kind, name)
	if err != nil {
		return nil, err
	}

	raw, err := b.callDynamicFunc(ctx, componentSentinel(kind), factory)
	if err != nil {
		return nil, fmt.Errorf("constructing %s component %q: %w", kind, name, err)
	}

	return plugin.NewInstance(kind, name, raw, nil), nil
}

// componentSentinel returns the expected-type sentinel for factory results
// of the given kind.
func componentSentinel(kind plugin.ComponentKind) interface{} {
	switch kind {
	case plugin.CommandKind:
		return (*plugin.Command)(nil)
	case plugin.HostKind:
		return (*plugin.Host)(nil)
	case plugin.ProviderKind:
		return (*plugin.Provider)(nil)
	default:
		return nil
	}
}

// specialize stamps request metadata onto a component instance before
// dispatch.
func (b *Basis) specialize(inst *plugin.Instance) error {
	return plugin.Specialize(inst, map[string]string{
		plugin.MetadataBasisResourceID: b.basis.ResourceID.String(),
		plugin.MetadataServiceEndpoint: b.client.Endpoint(),
	})
}

// Run dispatches a task: the command component named by the task is
// resolved, specialized, and its execute function invoked. A non-zero exit
// code or an invocation error is task failure.
func (b *Basis) Run(ctx context.Context, task *Task) error {
	name := plugin.CommandNameRoot(task.Component.Name)
	log := b.logger.With(slog.String("task", name))

	inst, err := b.component(ctx, plugin.CommandKind, name)
	if err != nil {
		return err
	}
	defer inst.Close()

	if err := b.specialize(inst); err != nil {
		return err
	}

	cmd := inst.Component.(plugin.Command)
	raw, err := b.callDynamicFunc(ctx, (*int64)(nil), cmd.ExecuteFunc(),
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

// Init enumerates every registered command component and flattens its
// command tree into a flat list of entries whose names are the
// whitespace-joined paths from the root command to each node. Enumeration
// follows factory registration order, so output is stable for a given
// factory set.
func (b *Basis) Init(ctx context.Context) ([]*CommandEntry, error) {
	var entries []*CommandEntry

	for _, name := range b.registry.Registered(plugin.CommandKind) {
		inst, err := b.component(ctx, plugin.CommandKind, name)
		if err != nil {
			return nil, err
		}

		if err := b.specialize(inst); err != nil {
			_ = inst.Close()
			return nil, err
		}

		cmd := inst.Component.(plugin.Command)
		raw, err := b.callDynamicFunc(ctx, (**plugin.CommandInfo)(nil), cmd.CommandInfoFunc())
		if err != nil {
			_ = inst.Close()
			return nil, fmt.Errorf("collecting command info for %q: %w", name, err)
		}

		entries = append(entries, b.flattenCommands(raw.(*plugin.CommandInfo), "")...)
		if err := inst.Close(); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// flattenCommands walks a command tree depth-first, joining parent names
// with a single space.
func (b *Basis) flattenCommands(info *plugin.CommandInfo, prefix string) []*CommandEntry {
	name := info.Name
	if prefix != "" {
		name = prefix + " " + info.Name
	}

	entries := []*CommandEntry{{
		Name:     name,
		Synopsis: info.Synopsis,
		Help:     info.Help,
		Flags:    b.flagMapper(info.Flags),
	}}

	for _, sub := range info.Subcommands {
		entries = append(entries, b.flattenCommands(sub, name)...)
	}
	return entries
}

// DetectHost constructs each registered host component in registration
// order and returns the first whose detect function reports a match. The
// caller owns the returned instance.
func (b *Basis) DetectHost(ctx context.Context) (*plugin.Instance, error) {
	for _, name := range b.registry.Registered(plugin.HostKind) {
		inst, err := b.component(ctx, plugin.HostKind, name)
		if err != nil {
			return nil, err
		}

		host := inst.Component.(plugin.Host)
		raw, err := b.callDynamicFunc(ctx, (*bool)(nil), host.DetectFunc())
		if err != nil {
			_ = inst.Close()
			return nil, fmt.Errorf("detecting host %q: %w", name, err)
		}

		if raw.(bool) {
			b.logger.Debug("host detected", slog.String("host", name))
			return inst, nil
		}
		if err := inst.Close(); err != nil {
			return nil, err
		}
	}
	return nil, ErrNoDetectedHost
}

// LoadProject loads or returns a project within this basis. Loading is
// idempotent by resource id: if the resolved record is already loaded the
// existing project is returned.
func (b *Basis) LoadProject(opts ...ProjectOption) (*Project, error) {
	p := &Project{
		basis:   b,
		client:  b.client,
		ctx:     b.ctx,
		ui:      b.ui,
		jobInfo: b.jobInfo,
		targets: make(map[string]*Target),
	}

	if err := applyProjectOptions(p, opts); err != nil {
		return nil, errOrNil(err)
	}

	if p.project == nil || p.project.Name == "" {
		return nil, ErrProjectRecordRequired
	}
	p.project.BasisID = b.basis.ResourceID

	if observability.Trace() {
		p.logger = observability.WithComponent(b.logger, "vagrant.core.project")
	} else {
		p.logger = observability.WithComponent(b.logger, "project")
	}
	p.logger = p.logger.With(slog.String("project", p.project.Name))

	// A known resource id that is already loaded short-circuits before any
	// service calls.
	if !p.project.ResourceID.IsZero() {
		if existing := b.Project(p.project.ResourceID.String()); existing != nil {
			return existing, nil
		}
	}

	if err := p.resolveRecord(b.ctx); err != nil {
		return nil, err
	}

	b.m.Lock()
	if existing, ok := b.projects[p.project.ResourceID.String()]; ok {
		b.m.Unlock()
		return existing, nil
	}

	// Index under both name and resource id; both resolve to the same
	// project.
	b.projects[p.project.Name] = p
	b.projects[p.project.ResourceID.String()] = p
	b.projectList = append(b.projectList, p)
	b.m.Unlock()

	// Default the data directory beneath ours.
	if p.dir == nil {
		dir, err := b.dir.Project(p.project.Name)
		if err != nil {
			return nil, err
		}
		p.dir = dir
	}

	// Register the project's self-save closer.
	p.Closer(func() error {
		return p.Save(p.ctx)
	})

	b.logger.Debug("project loaded",
		slog.String("project", p.project.Name),
		slog.String("resource_id", p.project.ResourceID.String()),
	)

	return p, nil
}

// Project returns a loaded project by name or resource id, or nil.
func (b *Basis) Project(nameOrID string) *Project {
	b.m.Lock()
	defer b.m.Unlock()
	return b.projects[nameOrID]
}

// Projects returns the loaded projects in load order.
func (b *Basis) Projects() []*Project {
	b.m.Lock()
	defer b.m.Unlock()
	out := make([]*Project, len(b.projectList))
	copy(out, b.projectList)
	return out
}

// Save persists the basis record through the state service.
func (b *Basis) Save(ctx context.Context) error {
	record, err := b.client.UpsertBasis(ctx, b.basis)
	if err != nil {
		return fmt.Errorf("saving basis: %w", err)
	}
	b.basis = record
	return nil
}

// SaveFull persists every loaded project and then the basis itself,
// aggregating failures so the caller sees all of them.
func (b *Basis) SaveFull(ctx context.Context) error {
	var result error
	for _, p := range b.Projects() {
		result = appendErr(result, p.SaveFull(ctx))
	}
	result = appendErr(result, b.Save(ctx))
	return errOrNil(result)
}

// Close releases the basis: every loaded project closes first, then the
// registered closers run in registration order. Failures are aggregated
// and returned, never raised. Close is idempotent; calls after the first
// are no-ops returning nil.
func (b *Basis) Close() error {
	b.m.Lock()
	if b.closed {
		b.m.Unlock()
		return nil
	}
	b.closed = true
	projects := make([]*Project, len(b.projectList))
	copy(projects, b.projectList)
	closers := make([]func() error, len(b.closers))
	copy(closers, b.closers)
	b.m.Unlock()

	b.logger.Debug("closing basis", slog.String("name", b.basis.Name))

	var result error
	for _, p := range projects {
		result = appendErr(result, p.Close())
	}
	for _, closer := range closers {
		result = appendErr(result, closer())
	}
	return errOrNil(result)
}
