// Package testconfig loads and persists the test-type configuration that decides which
// test-case templates are generated for every endpoint.
package testconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultPath is where the test-type configuration lives relative to the working directory.
const DefaultPath = "config/test_config.json"

// DefaultProfileName is the profile recorded in the built-in configuration.
const DefaultProfileName = "default"

// TestType is one entry of enabled_test_types.
type TestType struct {
	Enabled     bool     `json:"enabled"`
	Tests       []string `json:"tests"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
}

// Profile is a named, curated subset of test types.
type Profile struct {
	Description  string   `json:"description"`
	EnabledTypes []string `json:"enabled_types"`
}

// Config is the test-type configuration document. Both mappings keep the order in
// which their keys appear in the file.
type Config struct {
	EnabledTestTypes   *orderedmap.OrderedMap[string, TestType] `json:"enabled_test_types"`
	PredefinedProfiles *orderedmap.OrderedMap[string, Profile]  `json:"predefined_profiles,omitempty"`
	CurrentProfile     string                                   `json:"current_profile,omitempty"`
}

// Default returns the configuration used when no configuration file exists.
func Default() *Config {
	types := orderedmap.New[string, TestType]()
	types.Set("functional", TestType{
		Enabled: true,
		Tests:   []string{"FUNC-HAPPY", "FUNC-NEGATIVE", "FUNC-VALIDATION", "FUNC-WORKFLOW", "FUNC-BOUNDARY"},
	})
	types.Set("security", TestType{
		Enabled: true,
		Tests:   []string{"SEC-AUTH", "SEC-AUTHZ", "SEC-CONTENT", "SEC-ENCRYPTION"},
	})
	types.Set("error_handling", TestType{
		Enabled: true,
		Tests:   []string{"ERR-NOTFOUND", "ERR-INVALID"},
	})

	return &Config{
		EnabledTestTypes: types,
		CurrentProfile:   DefaultProfileName,
	}
}

// Load reads the configuration at path. A missing file yields Default(); a file that
// exists but cannot be read or parsed is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, &ConfigError{Path: path, Err: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	cfg.normalize()

	return &cfg, nil
}

func (c *Config) normalize() {
	if c.EnabledTestTypes == nil {
		c.EnabledTestTypes = orderedmap.New[string, TestType]()
	}
}

// Profile returns the profile called name.
func (c *Config) Profile(name string) (Profile, bool) {
	if c.PredefinedProfiles == nil || name == "" {
		return Profile{}, false
	}
	return c.PredefinedProfiles.Get(name)
}

// ActiveProfile returns the profile selected by current_profile, if it names one.
func (c *Config) ActiveProfile() (Profile, bool) {
	return c.Profile(c.CurrentProfile)
}

// ProfileNames lists the defined profiles in document order.
func (c *Config) ProfileNames() []string {
	names := []string{}
	if c.PredefinedProfiles == nil {
		return names
	}
	for pair := c.PredefinedProfiles.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// ResolveEnabledSuffixes returns the template suffixes to generate per endpoint.
//
// When current_profile names a predefined profile, the tests of each type listed by the
// profile are concatenated in profile order. Otherwise every type with enabled=true
// contributes its tests in mapping order. Duplicates are kept.
func ResolveEnabledSuffixes(cfg *Config) []string {
	suffixes := []string{}

	if profile, ok := cfg.ActiveProfile(); ok {
		for _, name := range profile.EnabledTypes {
			tt, ok := cfg.EnabledTestTypes.Get(name)
			if !ok {
				continue
			}
			suffixes = append(suffixes, tt.Tests...)
		}
		return suffixes
	}

	for pair := cfg.EnabledTestTypes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Enabled {
			suffixes = append(suffixes, pair.Value.Tests...)
		}
	}
	return suffixes
}

// testsForTypes counts the suffixes contributed by the named types.
func testsForTypes(cfg *Config, names []string) int {
	count := 0
	for _, name := range names {
		if tt, ok := cfg.EnabledTestTypes.Get(name); ok {
			count += len(tt.Tests)
		}
	}
	return count
}

// ConfigError reports a configuration file that exists but is unusable.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("error loading test config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
