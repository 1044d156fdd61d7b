package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-argmapper"
	"github.com/lseinc/vagrant/internal/config"
	"github.com/lseinc/vagrant/internal/datadir"
	"github.com/lseinc/vagrant/internal/models"
	"github.com/lseinc/vagrant/internal/plugin"
	"github.com/lseinc/vagrant/internal/serverclient"
	"github.com/lseinc/vagrant/internal/ui"
)

// BasisOption is a named transformation applied to a basis during
// construction. All options are attempted; their errors are aggregated so
// the caller sees every misuse at once.
type BasisOption func(*Basis) error

// WithBasisName sets the basis name, creating the record template if none
// has been supplied yet.
func WithBasisName(name string) BasisOption {
	return func(b *Basis) error {
		if name == "" {
			return fmt.Errorf("basis name cannot be empty")
		}
		if b.basis == nil {
			b.basis = &models.Basis{}
		}
		b.basis.Name = name
		return nil
	}
}

// WithBasisRecord sets the basis record.
func WithBasisRecord(record *models.Basis) BasisOption {
	return func(b *Basis) error {
		if record == nil {
			return fmt.Errorf("basis record cannot be nil")
		}
		b.basis = record
		return nil
	}
}

// WithBasisResourceID sets the resource id on the basis record template.
func WithBasisResourceID(id models.ULID) BasisOption {
	return func(b *Basis) error {
		if b.basis == nil {
			b.basis = &models.Basis{}
		}
		b.basis.ResourceID = id
		return nil
	}
}

// WithClient sets the state service client.
func WithClient(client serverclient.Client) BasisOption {
	return func(b *Basis) error {
		if client == nil {
			return fmt.Errorf("state service client cannot be nil")
		}
		b.client = client
		return nil
	}
}

// WithBasisDataDir sets the basis data directory.
func WithBasisDataDir(dir *datadir.Basis) BasisOption {
	return func(b *Basis) error {
		if dir == nil {
			return fmt.Errorf("data directory cannot be nil")
		}
		b.dir = dir
		return nil
	}
}

// WithBasisUI sets the UI used for basis-scoped output.
func WithBasisUI(u ui.UI) BasisOption {
	return func(b *Basis) error {
		b.ui = u
		return nil
	}
}

// WithLogger sets the root logger the basis derives its namespace from.
func WithLogger(log *slog.Logger) BasisOption {
	return func(b *Basis) error {
		b.logger = log
		return nil
	}
}

// WithBasisConfig sets the configuration, skipping the load step.
func WithBasisConfig(cfg *config.Config) BasisOption {
	return func(b *Basis) error {
		b.config = cfg
		return nil
	}
}

// WithRegistry sets the factory registry. Without this option the basis
// uses the conventional default registry.
func WithRegistry(registry *plugin.Registry) BasisOption {
	return func(b *Basis) error {
		if registry == nil {
			return fmt.Errorf("factory registry cannot be nil")
		}
		b.registry = registry
		return nil
	}
}

// WithMappers sets the mapper list. Without this option the built-in
// mappers are seeded.
func WithMappers(mappers ...*argmapper.Func) BasisOption {
	return func(b *Basis) error {
		b.mappers = append(b.mappers, mappers...)
		return nil
	}
}

// WithJobInfo sets the job metadata injected into plugin functions.
func WithJobInfo(info *JobInfo) BasisOption {
	return func(b *Basis) error {
		b.jobInfo = info
		return nil
	}
}

// WithFlagMapper sets the translation used for command flags during Init.
func WithFlagMapper(mapper FlagMapper) BasisOption {
	return func(b *Basis) error {
		if mapper == nil {
			return fmt.Errorf("flag mapper cannot be nil")
		}
		b.flagMapper = mapper
		return nil
	}
}

// ProjectOption is a named transformation applied to a project during
// LoadProject. Errors are aggregated like basis options.
type ProjectOption func(*Project) error

// WithProjectName sets the project name, creating the record template if
// none has been supplied yet.
func WithProjectName(name string) ProjectOption {
	return func(p *Project) error {
		if name == "" {
			return fmt.Errorf("project name cannot be empty")
		}
		if p.project == nil {
			p.project = &models.Project{}
		}
		p.project.Name = name
		return nil
	}
}

// WithProjectRecord sets the project record.
func WithProjectRecord(record *models.Project) ProjectOption {
	return func(p *Project) error {
		if record == nil {
			return fmt.Errorf("project record cannot be nil")
		}
		p.project = record
		return nil
	}
}

// WithProjectDataDir sets the project data directory. Unset directories
// default to a subdirectory of the basis data directory.
func WithProjectDataDir(dir *datadir.Project) ProjectOption {
	return func(p *Project) error {
		if dir == nil {
			return fmt.Errorf("data directory cannot be nil")
		}
		p.dir = dir
		return nil
	}
}

// WithProjectUI sets a project-specific UI.
func WithProjectUI(u ui.UI) ProjectOption {
	return func(p *Project) error {
		p.ui = u
		return nil
	}
}

// TargetOption is a named transformation applied to a target during
// LoadTarget.
type TargetOption func(*Target) error

// WithTargetName sets the target name, creating the record template if none
// has been supplied yet.
func WithTargetName(name string) TargetOption {
	return func(t *Target) error {
		if name == "" {
			return fmt.Errorf("target name cannot be empty")
		}
		if t.target == nil {
			t.target = &models.Target{}
		}
		t.target.Name = name
		return nil
	}
}

// WithTargetRecord sets the target record.
func WithTargetRecord(record *models.Target) TargetOption {
	return func(t *Target) error {
		if record == nil {
			return fmt.Errorf("target record cannot be nil")
		}
		t.target = record
		return nil
	}
}

// WithTargetProvider sets the provider plugin name on the target record.
func WithTargetProvider(provider string) TargetOption {
	return func(t *Target) error {
		if t.target == nil {
			t.target = &models.Target{}
		}
		t.target.Provider = provider
		return nil
	}
}

// applyBasisOptions runs every option, aggregating errors.
func applyBasisOptions(b *Basis, opts []BasisOption) error {
	var result error
	for _, opt := range opts {
		if err := opt(b); err != nil {
			result = appendErr(result, err)
		}
	}
	return result
}

// applyProjectOptions runs every option, aggregating errors.
func applyProjectOptions(p *Project, opts []ProjectOption) error {
	var result error
	for _, opt := range opts {
		if err := opt(p); err != nil {
			result = appendErr(result, err)
		}
	}
	return result
}

// applyTargetOptions runs every option, aggregating errors.
func applyTargetOptions(t *Target, opts []TargetOption) error {
	var result error
	for _, opt := range opts {
		if err := opt(t); err != nil {
			result = appendErr(result, err)
		}
	}
	return result
}

// defaultContext returns ctx or a background context.
func defaultContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
