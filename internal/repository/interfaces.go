// Package repository defines data access interfaces for vagrant state
// records. All database access goes through these interfaces, enabling easy
// testing and database backend switching.
package repository

import (
	"context"

	"github.com/lseinc/vagrant/internal/models"
)

// BasisRepository defines operations for basis record persistence.
type BasisRepository interface {
	// Create creates a new basis record.
	Create(ctx context.Context, basis *models.Basis) error
	// GetByResourceID retrieves a basis by resource id.
	GetByResourceID(ctx context.Context, id models.ULID) (*models.Basis, error)
	// GetByName retrieves a basis by name.
	GetByName(ctx context.Context, name string) (*models.Basis, error)
	// GetAll retrieves all basis records.
	GetAll(ctx context.Context) ([]*models.Basis, error)
	// Update updates an existing basis record.
	Update(ctx context.Context, basis *models.Basis) error
	// Delete deletes a basis record by resource id.
	Delete(ctx context.Context, id models.ULID) error
}

// ProjectRepository defines operations for project record persistence.
type ProjectRepository interface {
	// Create creates a new project record.
	Create(ctx context.Context, project *models.Project) error
	// GetByResourceID retrieves a project by resource id.
	GetByResourceID(ctx context.Context, id models.ULID) (*models.Project, error)
	// GetByName retrieves a project by owning basis and name.
	GetByName(ctx context.Context, basisID models.ULID, name string) (*models.Project, error)
	// GetByBasisID retrieves all projects owned by a basis.
	GetByBasisID(ctx context.Context, basisID models.ULID) ([]*models.Project, error)
	// Update updates an existing project record.
	Update(ctx context.Context, project *models.Project) error
	// Delete deletes a project record by resource id.
	Delete(ctx context.Context, id models.ULID) error
}

// TargetRepository defines operations for target record persistence.
type TargetRepository interface {
	// Create creates a new target record.
	Create(ctx context.Context, target *models.Target) error
	// GetByResourceID retrieves a target by resource id.
	GetByResourceID(ctx context.Context, id models.ULID) (*models.Target, error)
	// GetByName retrieves a target by owning project and name.
	GetByName(ctx context.Context, projectID models.ULID, name string) (*models.Target, error)
	// GetByProjectID retrieves all targets owned by a project.
	GetByProjectID(ctx context.Context, projectID models.ULID) ([]*models.Target, error)
	// Update updates an existing target record.
	Update(ctx context.Context, target *models.Target) error
	// Delete deletes a target record by resource id.
	Delete(ctx context.Context, id models.ULID) error
}
