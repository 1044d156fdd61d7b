package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lseinc/vagrant/internal/datadir"
	"github.com/lseinc/vagrant/internal/models"
	"github.com/lseinc/vagrant/internal/serverclient"
)

// Target is the leaf scope: a machine-like resource owned by a project. A
// target is only valid when returned by Project.LoadTarget.
type Target struct {
	logger  *slog.Logger
	target  *models.Target
	dir     *datadir.Target
	project *Project
	client  serverclient.Client
	ctx     context.Context

	m       sync.Mutex
	closers []func() error
	closed  bool
}

// resolveRecord looks up the target record within the owning project,
// inserting it when the service has no match.
func (t *Target) resolveRecord(ctx context.Context) error {
	if !t.target.ResourceID.IsZero() {
		record, err := t.client.GetTarget(ctx, t.Ref())
		if err != nil {
			return fmt.Errorf("resolving target record: %w", err)
		}
		t.target = record
		return nil
	}

	record, found, err := t.client.FindTarget(ctx, t.Ref())
	if err != nil {
		return fmt.Errorf("resolving target record: %w", err)
	}
	if found {
		t.target = record
		return nil
	}

	if t.target.State == "" {
		t.target.State = models.TargetStatePending
	}
	record, err = t.client.UpsertTarget(ctx, t.target)
	if err != nil {
		return fmt.Errorf("inserting target record: %w", err)
	}
	t.target = record
	return nil
}

// Name returns the target name.
func (t *Target) Name() string { return t.target.Name }

// ResourceID returns the target resource id.
func (t *Target) ResourceID() models.ULID { return t.target.ResourceID }

// Project returns the owning project.
func (t *Target) Project() *Project { return t.project }

// Provider returns the provider plugin name backing this target.
func (t *Target) Provider() string { return t.target.Provider }

// State returns the last recorded lifecycle state.
func (t *Target) State() models.TargetState { return t.target.State }

// SetState updates the lifecycle state on the record. The change persists
// on the next save.
func (t *Target) SetState(state models.TargetState) {
	t.target.State = state
}

// DataDir returns the target data directory.
func (t *Target) DataDir() *datadir.Target { return t.dir }

// Ref returns the reference to this target for use in service calls.
func (t *Target) Ref() *serverclient.TargetRef {
	return &serverclient.TargetRef{
		ResourceID: t.target.ResourceID,
		ProjectID:  t.target.ProjectID,
		Name:       t.target.Name,
	}
}

// Closer registers a function to run when the target closes.
func (t *Target) Closer(f func() error) {
	t.m.Lock()
	defer t.m.Unlock()
	t.closers = append(t.closers, f)
}

// Save persists the target record through the state service.
func (t *Target) Save(ctx context.Context) error {
	record, err := t.client.UpsertTarget(ctx, t.target)
	if err != nil {
		return fmt.Errorf("saving target: %w", err)
	}
	t.target = record
	return nil
}

// Close runs the registered closers in registration order, aggregating
// failures. Close is idempotent; calls after the first return nil.
func (t *Target) Close() error {
	t.m.Lock()
	if t.closed {
		t.m.Unlock()
		return nil
	}
	t.closed = true
	closers := make([]func() error, len(t.closers))
	copy(closers, t.closers)
	t.m.Unlock()

	var result error
	for _, closer := range closers {
		result = appendErr(result, closer())
	}
	return errOrNil(result)
}
