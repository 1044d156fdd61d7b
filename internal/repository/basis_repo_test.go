package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lseinc/vagrant/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Basis{}, &models.Project{}, &models.Target{})
	require.NoError(t, err)

	return db
}

func TestBasisRepo_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBasisRepository(db)
	ctx := context.Background()

	basis := &models.Basis{Name: "default", Path: "/home/user/.vagrant"}
	err := repo.Create(ctx, basis)
	require.NoError(t, err)
	assert.False(t, basis.ResourceID.IsZero())

	// Verify the record round-trips
	found, err := repo.GetByResourceID(ctx, basis.ResourceID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "default", found.Name)
	assert.Equal(t, "/home/user/.vagrant", found.Path)
}

func TestBasisRepo_CreateInvalid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBasisRepository(db)

	err := repo.Create(context.Background(), &models.Basis{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestBasisRepo_GetByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBasisRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Basis{Name: "default"}))

	t.Run("existing", func(t *testing.T) {
		found, err := repo.GetByName(ctx, "default")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "default", found.Name)
	})

	t.Run("missing", func(t *testing.T) {
		found, err := repo.GetByName(ctx, "other")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestBasisRepo_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBasisRepository(db)
	ctx := context.Background()

	basis := &models.Basis{Name: "default"}
	require.NoError(t, repo.Create(ctx, basis))

	basis.Path = "/srv/vagrant"
	require.NoError(t, repo.Update(ctx, basis))

	found, err := repo.GetByResourceID(ctx, basis.ResourceID)
	require.NoError(t, err)
	assert.Equal(t, "/srv/vagrant", found.Path)

	// Update without a resource id is rejected
	err = repo.Update(ctx, &models.Basis{Name: "x"})
	require.Error(t, err)
}

func TestBasisRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBasisRepository(db)
	ctx := context.Background()

	basis := &models.Basis{Name: "default"}
	require.NoError(t, repo.Create(ctx, basis))
	require.NoError(t, repo.Delete(ctx, basis.ResourceID))

	found, err := repo.GetByResourceID(ctx, basis.ResourceID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestBasisRepo_GetAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBasisRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Basis{Name: "one"}))
	require.NoError(t, repo.Create(ctx, &models.Basis{Name: "two"}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
