package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// specializableComponent is a test component accepting request metadata.
type specializableComponent struct {
	RequestMetadata
}

type plainComponent struct{}

type closingComponent struct {
	closed int
	err    error
}

func (c *closingComponent) Close() error {
	c.closed++
	return c.err
}

func TestInstance_CloseOnce(t *testing.T) {
	component := &closingComponent{err: errors.New("close failed")}
	inst := NewInstance(CommandKind, "foo", component, nil)

	err := inst.Close()
	require.Error(t, err)
	assert.Equal(t, 1, component.closed)

	// A second close is a no-op returning the first result.
	err = inst.Close()
	require.Error(t, err)
	assert.Equal(t, 1, component.closed)
}

func TestInstance_ExplicitCloser(t *testing.T) {
	calls := 0
	inst := NewInstance(HostKind, "bsd", &plainComponent{}, func() error {
		calls++
		return nil
	})

	require.NoError(t, inst.Close())
	require.NoError(t, inst.Close())
	assert.Equal(t, 1, calls)
}

func TestSpecialize(t *testing.T) {
	component := &specializableComponent{}
	inst := NewInstance(CommandKind, "foo", component, nil)

	err := Specialize(inst, map[string]string{
		MetadataBasisResourceID: "01J",
		MetadataServiceEndpoint: "local",
	})
	require.NoError(t, err)

	v, ok := component.RequestMetadataValue(MetadataBasisResourceID)
	require.True(t, ok)
	assert.Equal(t, "01J", v)

	v, ok = component.RequestMetadataValue(MetadataServiceEndpoint)
	require.True(t, ok)
	assert.Equal(t, "local", v)
}

func TestSpecialize_NotSpecializable(t *testing.T) {
	inst := NewInstance(CommandKind, "foo", &plainComponent{}, nil)

	err := Specialize(inst, map[string]string{"k": "v"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotSpecializable))
}
