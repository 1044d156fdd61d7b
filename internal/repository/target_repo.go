package repository

import (
	"context"
	"fmt"

	"github.com/lseinc/vagrant/internal/models"
	"gorm.io/gorm"
)

// targetRepository implements TargetRepository using GORM.
type targetRepository struct {
	db *gorm.DB
}

// NewTargetRepository creates a new TargetRepository.
func NewTargetRepository(db *gorm.DB) TargetRepository {
	return &targetRepository{db: db}
}

// Create creates a new target record.
func (r *targetRepository) Create(ctx context.Context, target *models.Target) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("validating target: %w", err)
	}
	return r.db.WithContext(ctx).Create(target).Error
}

// GetByResourceID retrieves a target by resource id.
func (r *targetRepository) GetByResourceID(ctx context.Context, id models.ULID) (*models.Target, error) {
	var target models.Target
	if err := r.db.WithContext(ctx).First(&target, "resource_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &target, nil
}

// GetByName retrieves a target by owning project and name.
func (r *targetRepository) GetByName(ctx context.Context, projectID models.ULID, name string) (*models.Target, error) {
	var target models.Target
	if err := r.db.WithContext(ctx).
		First(&target, "project_id = ? AND name = ?", projectID, name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &target, nil
}

// GetByProjectID retrieves all targets owned by a project.
func (r *targetRepository) GetByProjectID(ctx context.Context, projectID models.ULID) ([]*models.Target, error) {
	var targets []*models.Target
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

// Update updates an existing target record.
func (r *targetRepository) Update(ctx context.Context, target *models.Target) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("validating target: %w", err)
	}
	if target.ResourceID.IsZero() {
		return fmt.Errorf("target resource id is required for update")
	}
	return r.db.WithContext(ctx).Save(target).Error
}

// Delete deletes a target record by resource id.
func (r *targetRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.Target{}, "resource_id = ?", id).Error
}
