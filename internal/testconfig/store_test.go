package testconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SwitchProfile(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	store := NewStore(path)

	result, err := store.SwitchProfile("security_only")
	require.NoError(t, err)

	assert.Equal(t, "security_only", result.SwitchedTo)
	assert.Equal(t, "Security focused run", result.Description)
	assert.Equal(t, []string{"security"}, result.EnabledTypes)
	assert.Equal(t, []string{"SEC-AUTH", "SEC-AUTHZ", "SEC-CONTENT", "SEC-ENCRYPTION"}, result.EnabledSuffixes)
	assert.Equal(t, 4, result.TestsPerEndpoint)

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "security_only", reloaded.CurrentProfile)
	assert.Equal(t, []string{"SEC-AUTH", "SEC-AUTHZ", "SEC-CONTENT", "SEC-ENCRYPTION"}, ResolveEnabledSuffixes(reloaded))

	// The rest of the document survives the rewrite, in order.
	assert.Equal(t, []string{"security_only", "overlap"}, reloaded.ProfileNames())
	functional, ok := reloaded.EnabledTestTypes.Get("functional")
	require.True(t, ok)
	assert.Equal(t, "Core functional checks", functional.Description)
	assert.Equal(t, "high", functional.Priority)
}

func TestStore_SwitchProfile_UnknownLeavesFileUntouched(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	store := NewStore(path)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	result, err := store.SwitchProfile("does_not_exist")
	require.Error(t, err)
	assert.Nil(t, result)

	var notFound *ProfileNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "does_not_exist", notFound.Name)
	assert.Equal(t, []string{"security_only", "overlap"}, notFound.Available)
	assert.Contains(t, err.Error(), "security_only, overlap")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.CurrentProfile)
}

func TestStore_SwitchProfile_DefaultConfigHasNoProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "test_config.json")
	store := NewStore(path)

	_, err := store.SwitchProfile("smoke")
	var notFound *ProfileNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Empty(t, notFound.Available)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_SwitchProfile_CorruptConfig(t *testing.T) {
	store := NewStore(writeConfig(t, `not json`))

	_, err := store.SwitchProfile("security_only")
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test_config.json")
	store := NewStore(path)

	require.NoError(t, store.Save(Default()))

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileName, cfg.CurrentProfile)
	assert.Len(t, ResolveEnabledSuffixes(cfg), 11)
}

func TestStore_Describe(t *testing.T) {
	store := NewStore(writeConfig(t, sampleConfig))
	cfg, err := store.Load()
	require.NoError(t, err)

	summary := store.Describe(cfg)
	assert.Equal(t, "none", summary.CurrentProfile)
	assert.Empty(t, summary.ProfileDescription)
	assert.Equal(t, 7, summary.TestsPerEndpoint)
	require.Len(t, summary.EnabledTestTypes, 2)
	assert.Equal(t, "functional", summary.EnabledTestTypes[0].Type)
	assert.Equal(t, "error_handling", summary.EnabledTestTypes[1].Type)
	assert.Equal(t, store.Path(), summary.ConfigurationFile)

	securityOnly, ok := summary.AvailableProfiles.Get("security_only")
	require.True(t, ok)
	assert.Equal(t, 4, securityOnly.TestsPerEndpoint)

	overlap, ok := summary.AvailableProfiles.Get("overlap")
	require.True(t, ok)
	assert.Equal(t, 12, overlap.TestsPerEndpoint)

	cfg.CurrentProfile = "security_only"
	summary = store.Describe(cfg)
	assert.Equal(t, "Security focused run", summary.ProfileDescription)
	require.Len(t, summary.EnabledTestTypes, 1)
	assert.Equal(t, "security", summary.EnabledTestTypes[0].Type)
}

func TestStore_Describe_IndividualWhenNoProfile(t *testing.T) {
	store := NewStore(writeConfig(t, `{"enabled_test_types": {"functional": {"enabled": true, "tests": ["FUNC-HAPPY"]}}}`))
	cfg, err := store.Load()
	require.NoError(t, err)

	summary := store.Describe(cfg)
	assert.Equal(t, "individual", summary.CurrentProfile)
	assert.Equal(t, []string{"FUNC-HAPPY"}, summary.EnabledTestSuffixes)
	assert.Equal(t, 0, summary.AvailableProfiles.Len())
}
