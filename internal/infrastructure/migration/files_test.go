package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"add match method", "add_match_method"},
		{"Add-Match__Reasoning", "add_match_reasoning"},
		{"  trailing  ", "trailing"},
		{"v2 index!", "v2_index"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.input))
		})
	}
}

func TestCreateAndListMigrations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	mf, err := CreateMigration(dir, "add review index")
	require.NoError(t, err)
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)
	assert.Contains(t, filepath.Base(mf.UpPath), "_add_review_index.up.sql")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.up.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.down.sql"), nil, 0o644))

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "000001_init", names[0])

	_, err = CreateMigration(dir, "???")
	assert.Error(t, err)
}

func TestListMigrations_MissingDir(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	names, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for _, name := range names {
		assert.FileExists(t, filepath.Join(dir, name+".down.sql"))
	}
}
