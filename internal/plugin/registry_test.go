package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	factory := func() (interface{}, error) { return "a", nil }
	r.Register(CommandKind, "foo", factory)

	got, err := r.Lookup(CommandKind, "foo")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRegistry_UnknownKindAndName(t *testing.T) {
	r := NewRegistry()
	r.Register(CommandKind, "foo", func() {})

	_, err := r.Lookup(HostKind, "foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = r.Lookup(CommandKind, "bar")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownName))
}

func TestRegistry_ReplaceKeepsPosition(t *testing.T) {
	r := NewRegistry()
	first := func() string { return "first" }
	second := func() string { return "second" }

	r.Register(CommandKind, "foo", first)
	r.Register(CommandKind, "bar", func() {})
	r.Register(CommandKind, "foo", second)

	// Replacement doesn't duplicate or reorder.
	assert.Equal(t, []string{"foo", "bar"}, r.Registered(CommandKind))

	got, err := r.Lookup(CommandKind, "foo")
	require.NoError(t, err)
	assert.Equal(t, "second", got.(func() string)())
}

func TestRegistry_NamesLexicographic(t *testing.T) {
	r := NewRegistry()
	r.Register(CommandKind, "foo", func() {})
	r.Register(CommandKind, "baz", func() {})
	r.Register(CommandKind, "bar", func() {})

	assert.Equal(t, []string{"bar", "baz", "foo"}, r.Names(CommandKind))
	assert.Equal(t, []string{"foo", "baz", "bar"}, r.Registered(CommandKind))
}

func TestCommandNameRoot(t *testing.T) {
	assert.Equal(t, "up", CommandNameRoot("up"))
	assert.Equal(t, "box", CommandNameRoot("box add"))
	assert.Equal(t, "box", CommandNameRoot("  box   list"))
	assert.Equal(t, "", CommandNameRoot("   "))
}

func TestArgsToMap(t *testing.T) {
	m := ArgsToMap(&CommandArgs{Args: []string{"name=web", "force", "count=3"}})
	assert.Equal(t, map[string]string{"name": "web", "force": "", "count": "3"}, m)
}
