package repository

import (
	"context"
	"fmt"

	"github.com/lseinc/vagrant/internal/models"
	"gorm.io/gorm"
)

// basisRepository implements BasisRepository using GORM.
type basisRepository struct {
	db *gorm.DB
}

// NewBasisRepository creates a new BasisRepository.
func NewBasisRepository(db *gorm.DB) BasisRepository {
	return &basisRepository{db: db}
}

// Create creates a new basis record.
func (r *basisRepository) Create(ctx context.Context, basis *models.Basis) error {
	if err := basis.Validate(); err != nil {
		return fmt.Errorf("validating basis: %w", err)
	}
	return r.db.WithContext(ctx).Create(basis).Error
}

// GetByResourceID retrieves a basis by resource id.
func (r *basisRepository) GetByResourceID(ctx context.Context, id models.ULID) (*models.Basis, error) {
	var basis models.Basis
	if err := r.db.WithContext(ctx).First(&basis, "resource_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &basis, nil
}

// GetByName retrieves a basis by name.
func (r *basisRepository) GetByName(ctx context.Context, name string) (*models.Basis, error) {
	var basis models.Basis
	if err := r.db.WithContext(ctx).First(&basis, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &basis, nil
}

// GetAll retrieves all basis records.
func (r *basisRepository) GetAll(ctx context.Context) ([]*models.Basis, error) {
	var bases []*models.Basis
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&bases).Error; err != nil {
		return nil, err
	}
	return bases, nil
}

// Update updates an existing basis record.
func (r *basisRepository) Update(ctx context.Context, basis *models.Basis) error {
	if err := basis.Validate(); err != nil {
		return fmt.Errorf("validating basis: %w", err)
	}
	if basis.ResourceID.IsZero() {
		return fmt.Errorf("basis resource id is required for update")
	}
	return r.db.WithContext(ctx).Save(basis).Error
}

// Delete deletes a basis record by resource id.
func (r *basisRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.Basis{}, "resource_id = ?", id).Error
}
