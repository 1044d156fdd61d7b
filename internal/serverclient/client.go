// Package serverclient defines the client contract the core uses to persist
// basis, project, and target records. The transport behind the interface is
// opaque to callers; the embedded implementation in this package is backed by
// the repository layer.
package serverclient

import (
	"context"
	"errors"

	"github.com/lseinc/vagrant/internal/models"
)

// ErrNotFound is returned by Get operations when no record matches the ref.
var ErrNotFound = errors.New("record not found")

// BasisRef identifies a basis record. ResourceID takes precedence; Name is
// used for resolution when no resource id has been assigned yet.
type BasisRef struct {
	ResourceID models.ULID
	Name       string
}

// ProjectRef identifies a project record within a basis.
type ProjectRef struct {
	ResourceID models.ULID
	BasisID    models.ULID
	Name       string
}

// TargetRef identifies a target record within a project.
type TargetRef struct {
	ResourceID models.ULID
	ProjectID  models.ULID
	Name       string
}

// Client is the persistence handle held by a basis and borrowed by its
// projects and targets. Upsert operations return the canonical stored record
// and are idempotent with respect to unchanged records. Find operations
// return a found flag instead of an error for missing records.
type Client interface {
	// UpsertBasis creates or updates a basis record, returning the stored form.
	UpsertBasis(ctx context.Context, basis *models.Basis) (*models.Basis, error)
	// GetBasis retrieves a basis record or ErrNotFound.
	GetBasis(ctx context.Context, ref *BasisRef) (*models.Basis, error)
	// FindBasis looks up a basis record, reporting whether it exists.
	FindBasis(ctx context.Context, ref *BasisRef) (*models.Basis, bool, error)

	// UpsertProject creates or updates a project record, returning the stored form.
	UpsertProject(ctx context.Context, project *models.Project) (*models.Project, error)
	// GetProject retrieves a project record or ErrNotFound.
	GetProject(ctx context.Context, ref *ProjectRef) (*models.Project, error)
	// FindProject looks up a project record, reporting whether it exists.
	FindProject(ctx context.Context, ref *ProjectRef) (*models.Project, bool, error)

	// UpsertTarget creates or updates a target record, returning the stored form.
	UpsertTarget(ctx context.Context, target *models.Target) (*models.Target, error)
	// GetTarget retrieves a target record or ErrNotFound.
	GetTarget(ctx context.Context, ref *TargetRef) (*models.Target, error)
	// FindTarget looks up a target record, reporting whether it exists.
	FindTarget(ctx context.Context, ref *TargetRef) (*models.Target, bool, error)

	// Endpoint returns the service endpoint this client talks to. The value
	// is stamped onto specialized plugin instances.
	Endpoint() string
}
