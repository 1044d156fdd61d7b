package repository

import (
	"context"
	"fmt"

	"github.com/lseinc/vagrant/internal/models"
	"gorm.io/gorm"
)

// projectRepository implements ProjectRepository using GORM.
type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create creates a new project record.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("validating project: %w", err)
	}
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByResourceID retrieves a project by resource id.
func (r *projectRepository) GetByResourceID(ctx context.Context, id models.ULID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "resource_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// GetByName retrieves a project by owning basis and name.
func (r *projectRepository) GetByName(ctx context.Context, basisID models.ULID, name string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).
		First(&project, "basis_id = ? AND name = ?", basisID, name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// GetByBasisID retrieves all projects owned by a basis.
func (r *projectRepository) GetByBasisID(ctx context.Context, basisID models.ULID) ([]*models.Project, error) {
	var projects []*models.Project
	if err := r.db.WithContext(ctx).
		Where("basis_id = ?", basisID).
		Order("created_at ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates an existing project record.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("validating project: %w", err)
	}
	if project.ResourceID.IsZero() {
		return fmt.Errorf("project resource id is required for update")
	}
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete deletes a project record by resource id.
func (r *projectRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, "resource_id = ?", id).Error
}
