package fileurl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePathAndIsExist(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "a", "b", "db.sqlite3")

	assert.False(t, IsExist(filepath.Dir(dst)))
	require.NoError(t, CreatePath(dst, os.ModePerm))
	assert.True(t, IsExist(filepath.Dir(dst)))
	assert.False(t, IsExist(dst))
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x")
	assert.Equal(t, abs, ResolvePath(abs, "/root"))
	assert.Equal(t, filepath.Join("/srv", "config", "c.yaml"), ResolvePath("config/c.yaml", "/srv"))
}
