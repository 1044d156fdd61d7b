package core

import (
	"context"
	"testing"

	"github.com/lseinc/vagrant/internal/models"
	"github.com/lseinc/vagrant/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProject_DoubleIndex(t *testing.T) {
	b := testBasis(t, nil)

	p, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.False(t, p.ResourceID().IsZero())

	// Both the name and the resource id resolve to the same project.
	assert.Same(t, p, b.Project("web"))
	assert.Same(t, p, b.Project(p.ResourceID().String()))
}

func TestLoadProject_IdempotentByResourceID(t *testing.T) {
	b := testBasis(t, nil)

	p, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)

	// Loading by the same name resolves the same record and returns the
	// already loaded project.
	again, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)
	assert.Same(t, p, again)

	// Loading by resource id short-circuits too.
	byID, err := b.LoadProject(WithProjectRecord(&models.Project{
		BaseModel: models.BaseModel{ResourceID: p.ResourceID()},
		Name:      "web",
	}))
	require.NoError(t, err)
	assert.Same(t, p, byID)

	assert.Len(t, b.Projects(), 1)
}

func TestLoadProject_MissingName(t *testing.T) {
	b := testBasis(t, nil)

	_, err := b.LoadProject()
	assert.ErrorIs(t, err, ErrProjectRecordRequired)
}

func TestLoadProject_DataDirDefaulted(t *testing.T) {
	b := testBasis(t, nil)

	p, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)
	require.NotNil(t, p.DataDir())
	assert.Contains(t, p.DataDir().RootDir(), "web")
}

func TestProject_Run(t *testing.T) {
	var gotProject *Project

	registry := plugin.NewRegistry()
	registry.Register(plugin.CommandKind, "up", func() (plugin.Command, error) {
		return &projectCommand{sink: &gotProject}, nil
	})

	b := testBasis(t, registry)
	p, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)

	err = p.Run(context.Background(), &Task{
		Component: TaskComponent{Kind: plugin.CommandKind, Name: "up"},
	})
	require.NoError(t, err)
	assert.Same(t, p, gotProject)
}

// projectCommand captures the project scope injected into its executor.
type projectCommand struct {
	plugin.RequestMetadata

	sink **Project
}

func (c *projectCommand) CommandInfoFunc() interface{} {
	return func() (*plugin.CommandInfo, error) {
		return &plugin.CommandInfo{Name: "up"}, nil
	}
}

func (c *projectCommand) ExecuteFunc() interface{} {
	return func(p *Project) (int64, error) {
		*c.sink = p
		return 0, nil
	}
}

func TestProject_Targets(t *testing.T) {
	b := testBasis(t, nil)
	p, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)

	target, err := p.LoadTarget(
		WithTargetName("vm-1"),
		WithTargetProvider("virtualbox"),
	)
	require.NoError(t, err)
	assert.False(t, target.ResourceID().IsZero())
	assert.Equal(t, "virtualbox", target.Provider())
	assert.Equal(t, models.TargetStatePending, target.State())

	// Double-indexed like projects.
	assert.Same(t, target, p.Target("vm-1"))
	assert.Same(t, target, p.Target(target.ResourceID().String()))

	// Idempotent by resource id.
	again, err := p.LoadTarget(WithTargetName("vm-1"))
	require.NoError(t, err)
	assert.Same(t, target, again)
	assert.Len(t, p.Targets(), 1)
}

func TestTarget_SaveState(t *testing.T) {
	b := testBasis(t, nil)
	ctx := context.Background()

	p, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)
	target, err := p.LoadTarget(WithTargetName("vm-1"))
	require.NoError(t, err)

	target.SetState(models.TargetStateCreated)
	require.NoError(t, target.Save(ctx))

	record, err := b.Client().GetTarget(ctx, target.Ref())
	require.NoError(t, err)
	assert.Equal(t, models.TargetStateCreated, record.State)
}

func TestProject_CloseClosesTargets(t *testing.T) {
	b := testBasis(t, nil)

	p, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)
	target, err := p.LoadTarget(WithTargetName("vm-1"))
	require.NoError(t, err)

	closed := 0
	target.Closer(func() error {
		closed++
		return nil
	})

	require.NoError(t, p.Close())
	assert.Equal(t, 1, closed)

	// Idempotent all the way down.
	require.NoError(t, p.Close())
	require.NoError(t, target.Close())
	assert.Equal(t, 1, closed)
}

func TestBasis_CloseClosesProjectsFirst(t *testing.T) {
	b := testBasis(t, nil)

	var order []string
	b.Closer(func() error {
		order = append(order, "basis")
		return nil
	})

	p, err := b.LoadProject(WithProjectName("web"))
	require.NoError(t, err)
	p.Closer(func() error {
		order = append(order, "project")
		return nil
	})

	require.NoError(t, b.Close())
	assert.Equal(t, []string{"project", "basis"}, order)
}
