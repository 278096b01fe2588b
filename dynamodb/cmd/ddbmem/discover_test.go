package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverWithWalk(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"users", "orders/v2", "vendor/lib", "node_modules/x"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, schemaFilename), []byte("table: {}"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "users", "other.yaml"), nil, 0o644))

	files, err := discoverWithWalk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "orders", "v2", schemaFilename),
		filepath.Join(root, "users", schemaFilename),
	}, files)
}

func TestSchemaPaths(t *testing.T) {
	root := t.TempDir()
	output := []byte("go.mod\n" +
		"users/schema_dynamodb.yaml\n" +
		"users/not_schema_dynamodb.yaml\n" +
		"vendor/x/schema_dynamodb.yaml\n" +
		"  orders/schema_dynamodb.yaml  \n")

	files, err := schemaPaths(root, output)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "orders", schemaFilename),
		filepath.Join(root, "users", schemaFilename),
	}, files)
}

func TestLoadConfig_ResolvesRelativePaths(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFilename), []byte("schemas: schema/*.yaml\nfixtures: /abs/fixtures.yaml\n"), 0o644))
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(sub))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "schema", "*.yaml"), cfg.Schemas)
	assert.Equal(t, "/abs/fixtures.yaml", cfg.Fixtures)
}
