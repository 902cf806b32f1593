package testconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "enabled_test_types": {
    "functional": {
      "enabled": true,
      "tests": ["FUNC-HAPPY", "FUNC-NEGATIVE", "FUNC-VALIDATION", "FUNC-WORKFLOW", "FUNC-BOUNDARY"],
      "description": "Core functional checks",
      "priority": "high"
    },
    "security": {
      "enabled": false,
      "tests": ["SEC-AUTH", "SEC-AUTHZ", "SEC-CONTENT", "SEC-ENCRYPTION"]
    },
    "error_handling": {
      "enabled": true,
      "tests": ["ERR-NOTFOUND", "ERR-INVALID"]
    },
    "workflow": {
      "enabled": false,
      "tests": ["WORKFLOW-E2E", "WORKFLOW-SEQUENCE"]
    }
  },
  "predefined_profiles": {
    "security_only": {
      "description": "Security focused run",
      "enabled_types": ["security"]
    },
    "overlap": {
      "description": "Functional twice",
      "enabled_types": ["functional", "error_handling", "functional", "missing"]
    }
  },
  "current_profile": "none"
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config", "test_config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultProfileName, cfg.CurrentProfile)
	assert.Equal(t, 3, cfg.EnabledTestTypes.Len())

	functional, ok := cfg.EnabledTestTypes.Get("functional")
	require.True(t, ok)
	assert.Len(t, functional.Tests, 5)
	security, _ := cfg.EnabledTestTypes.Get("security")
	assert.Len(t, security.Tests, 4)
	errs, _ := cfg.EnabledTestTypes.Get("error_handling")
	assert.Len(t, errs.Tests, 2)

	assert.Len(t, ResolveEnabledSuffixes(cfg), 11)
}

func TestLoad_CorruptFileIsError(t *testing.T) {
	path := writeConfig(t, `{"enabled_test_types": {`)

	cfg, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, cfg)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, path, cfgErr.Path)
	assert.Contains(t, err.Error(), path)
}

func TestLoad_PreservesDocumentOrder(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	var names []string
	for pair := cfg.EnabledTestTypes.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	assert.Equal(t, []string{"functional", "security", "error_handling", "workflow"}, names)
	assert.Equal(t, []string{"security_only", "overlap"}, cfg.ProfileNames())
}

func TestResolveEnabledSuffixes_IndividualFlags(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	// "none" is not a defined profile, so per-type flags apply.
	got := ResolveEnabledSuffixes(cfg)
	assert.Equal(t, []string{
		"FUNC-HAPPY", "FUNC-NEGATIVE", "FUNC-VALIDATION", "FUNC-WORKFLOW", "FUNC-BOUNDARY",
		"ERR-NOTFOUND", "ERR-INVALID",
	}, got)
}

func TestResolveEnabledSuffixes_ProfileIgnoresEnabledFlag(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	cfg.CurrentProfile = "security_only"

	assert.Equal(t, []string{"SEC-AUTH", "SEC-AUTHZ", "SEC-CONTENT", "SEC-ENCRYPTION"}, ResolveEnabledSuffixes(cfg))
}

func TestResolveEnabledSuffixes_ProfileKeepsDuplicates(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	cfg.CurrentProfile = "overlap"

	got := ResolveEnabledSuffixes(cfg)
	want := []string{
		"FUNC-HAPPY", "FUNC-NEGATIVE", "FUNC-VALIDATION", "FUNC-WORKFLOW", "FUNC-BOUNDARY",
		"ERR-NOTFOUND", "ERR-INVALID",
		"FUNC-HAPPY", "FUNC-NEGATIVE", "FUNC-VALIDATION", "FUNC-WORKFLOW", "FUNC-BOUNDARY",
	}
	assert.Equal(t, want, got)
}

func TestResolveEnabledSuffixes_EmptyConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Empty(t, ResolveEnabledSuffixes(cfg))
}
