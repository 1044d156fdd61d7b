package serverclient

import (
	"context"
	"fmt"

	"github.com/lseinc/vagrant/internal/database"
	"github.com/lseinc/vagrant/internal/models"
	"github.com/lseinc/vagrant/internal/repository"
)

// LocalEndpoint is the endpoint value reported by the embedded client.
const LocalEndpoint = "local"

// localClient implements Client against the embedded repository layer.
type localClient struct {
	bases    repository.BasisRepository
	projects repository.ProjectRepository
	targets  repository.TargetRepository
	endpoint string
}

// NewLocal creates a Client backed by the given database. The database
// schema is migrated if needed.
func NewLocal(db *database.DB) (Client, error) {
	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("preparing state database: %w", err)
	}

	return &localClient{
		bases:    repository.NewBasisRepository(db.DB),
		projects: repository.NewProjectRepository(db.DB),
		targets:  repository.NewTargetRepository(db.DB),
		endpoint: LocalEndpoint,
	}, nil
}

// Endpoint returns the service endpoint this client talks to.
func (c *localClient) Endpoint() string {
	return c.endpoint
}

// --- Basis ---

func (c *localClient) UpsertBasis(ctx context.Context, basis *models.Basis) (*models.Basis, error) {
	if basis.ResourceID.IsZero() {
		if err := c.bases.Create(ctx, basis); err != nil {
			return nil, fmt.Errorf("creating basis record: %w", err)
		}
		return basis, nil
	}
	if err := c.bases.Update(ctx, basis); err != nil {
		return nil, fmt.Errorf("updating basis record: %w", err)
	}
	return basis, nil
}

func (c *localClient) GetBasis(ctx context.Context, ref *BasisRef) (*models.Basis, error) {
	basis, found, err := c.FindBasis(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("basis %q: %w", ref.Name, ErrNotFound)
	}
	return basis, nil
}

func (c *localClient) FindBasis(ctx context.Context, ref *BasisRef) (*models.Basis, bool, error) {
	var (
		basis *models.Basis
		err   error
	)
	if !ref.ResourceID.IsZero() {
		basis, err = c.bases.GetByResourceID(ctx, ref.ResourceID)
	} else {
		basis, err = c.bases.GetByName(ctx, ref.Name)
	}
	if err != nil {
		return nil, false, fmt.Errorf("finding basis record: %w", err)
	}
	return basis, basis != nil, nil
}

// --- Project ---

func (c *localClient) UpsertProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	if project.ResourceID.IsZero() {
		if err := c.projects.Create(ctx, project); err != nil {
			return nil, fmt.Errorf("creating project record: %w", err)
		}
		return project, nil
	}
	if err := c.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("updating project record: %w", err)
	}
	return project, nil
}

func (c *localClient) GetProject(ctx context.Context, ref *ProjectRef) (*models.Project, error) {
	project, found, err := c.FindProject(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("project %q: %w", ref.Name, ErrNotFound)
	}
	return project, nil
}

func (c *localClient) FindProject(ctx context.Context, ref *ProjectRef) (*models.Project, bool, error) {
	var (
		project *models.Project
		err     error
	)
	if !ref.ResourceID.IsZero() {
		project, err = c.projects.GetByResourceID(ctx, ref.ResourceID)
	} else {
		project, err = c.projects.GetByName(ctx, ref.BasisID, ref.Name)
	}
	if err != nil {
		return nil, false, fmt.Errorf("finding project record: %w", err)
	}
	return project, project != nil, nil
}

// --- Target ---

func (c *localClient) UpsertTarget(ctx context.Context, target *models.Target) (*models.Target, error) {
	if target.ResourceID.IsZero() {
		if err := c.targets.Create(ctx, target); err != nil {
			return nil, fmt.Errorf("creating target record: %w", err)
		}
		return target, nil
	}
	if err := c.targets.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("updating target record: %w", err)
	}
	return target, nil
}

func (c *localClient) GetTarget(ctx context.Context, ref *TargetRef) (*models.Target, error) {
	target, found, err := c.FindTarget(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("target %q: %w", ref.Name, ErrNotFound)
	}
	return target, nil
}

func (c *localClient) FindTarget(ctx context.Context, ref *TargetRef) (*models.Target, bool, error) {
	var (
		target *models.Target
		err    error
	)
	if !ref.ResourceID.IsZero() {
		target, err = c.targets.GetByResourceID(ctx, ref.ResourceID)
	} else {
		target, err = c.targets.GetByName(ctx, ref.ProjectID, ref.Name)
	}
	if err != nil {
		return nil, false, fmt.Errorf("finding target record: %w", err)
	}
	return target, target != nil, nil
}
