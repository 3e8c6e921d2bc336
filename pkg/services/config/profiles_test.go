package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRegistrySections(t *testing.T) {
	path := writeProfile(t, `
[aws]
region = us-east-1
profile = default

[snowflake]
account = acme-prod
user = exorcist
`)

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"aws", "snowflake"}, registry.Platforms())

	section, err := registry.Section("aws")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"region":  "us-east-1",
		"profile": "default",
	}, section)
}

func TestRegistrySectionMissing(t *testing.T) {
	path := writeProfile(t, "[aws]\nregion = us-east-1\n")

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	_, err = registry.Section("azure")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile section "azure" not found`)
}

func TestNewRegistryMissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "absent.ini"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load profile file")
}
