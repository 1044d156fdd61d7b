package datadir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	root := filepath.Join(t.TempDir(), "basis")
	dir, err := New(root)
	require.NoError(t, err)

	info, err := os.Stat(dir.RootDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDir_Subdirectories(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	cache, err := dir.CacheDir()
	require.NoError(t, err)
	assert.DirExists(t, cache)

	data, err := dir.DataDir()
	require.NoError(t, err)
	assert.DirExists(t, data)

	tmp, err := dir.TempDir()
	require.NoError(t, err)
	assert.DirExists(t, tmp)
}

func TestDir_ResolveEscape(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	var escErr *EscapeError
	_, err = dir.resolve("../outside")
	require.Error(t, err)
	require.ErrorAs(t, err, &escErr)
	assert.Equal(t, "../outside", escErr.Path)

	_, err = dir.resolve("/etc/passwd")
	require.ErrorAs(t, err, &escErr)

	_, err = dir.resolve("nested/../../outside")
	require.ErrorAs(t, err, &escErr)

	// Paths that stay inside resolve fine, including the root itself.
	got, err := dir.resolve("")
	require.NoError(t, err)
	assert.Equal(t, dir.RootDir(), got)
}

func TestBasis_ProjectTarget(t *testing.T) {
	basis, err := NewBasis(t.TempDir())
	require.NoError(t, err)

	project, err := basis.Project("web")
	require.NoError(t, err)
	assert.Contains(t, project.RootDir(), filepath.Join("project", "web"))

	target, err := project.Target("vm-1")
	require.NoError(t, err)
	assert.Contains(t, target.RootDir(), filepath.Join("target", "vm-1"))

	component, err := project.Component("command", "system")
	require.NoError(t, err)
	assert.Contains(t, component.RootDir(), filepath.Join("component", "command-system"))

	_, err = basis.Project("")
	assert.Error(t, err)
}
