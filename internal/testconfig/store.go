package testconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Store reads and writes the configuration file at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the configuration file at path.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the configuration file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration, falling back to Default() when the file is missing.
func (s *Store) Load() (*Config, error) {
	return Load(s.path)
}

// Save overwrites the configuration file with cfg.
func (s *Store) Save(cfg *Config) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal test config: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write test config file: %w", err)
	}

	return nil
}

// ProfileSwitch is the outcome of a successful profile switch.
type ProfileSwitch struct {
	SwitchedTo       string   `json:"switched_to"`
	Description      string   `json:"description"`
	EnabledTypes     []string `json:"enabled_types"`
	EnabledSuffixes  []string `json:"enabled_test_suffixes"`
	TestsPerEndpoint int      `json:"tests_per_endpoint"`
	Message          string   `json:"message"`
}

// SwitchProfile makes name the active profile and persists the whole configuration.
// An unknown name leaves the file untouched.
func (s *Store) SwitchProfile(name string) (*ProfileSwitch, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}

	profile, ok := cfg.Profile(name)
	if !ok {
		return nil, &ProfileNotFoundError{Name: name, Available: cfg.ProfileNames()}
	}

	cfg.CurrentProfile = name
	if err := s.Save(cfg); err != nil {
		return nil, err
	}

	suffixes := ResolveEnabledSuffixes(cfg)
	return &ProfileSwitch{
		SwitchedTo:       name,
		Description:      profile.Description,
		EnabledTypes:     profile.EnabledTypes,
		EnabledSuffixes:  suffixes,
		TestsPerEndpoint: len(suffixes),
		Message:          fmt.Sprintf("Successfully switched to profile '%s'. Next test generation will use these settings.", name),
	}, nil
}

// ProfileNotFoundError is returned when switching to a profile that is not defined.
type ProfileNotFoundError struct {
	Name      string
	Available []string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile '%s' not found. Available profiles: %s", e.Name, strings.Join(e.Available, ", "))
}

// EnabledType describes one test type contributing to the current suffix list.
type EnabledType struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tests       []string `json:"tests"`
}

// ProfileInfo summarizes a predefined profile.
type ProfileInfo struct {
	Description      string   `json:"description"`
	EnabledTypes     []string `json:"enabled_types"`
	TestsPerEndpoint int      `json:"tests_per_endpoint"`
}

// Summary is the show_test_config view of a configuration.
type Summary struct {
	CurrentProfile      string                                      `json:"current_profile"`
	ProfileDescription  string                                      `json:"profile_description,omitempty"`
	EnabledTestTypes    []EnabledType                               `json:"enabled_test_types"`
	EnabledTestSuffixes []string                                    `json:"enabled_test_suffixes"`
	TestsPerEndpoint    int                                         `json:"tests_per_endpoint"`
	AvailableProfiles   *orderedmap.OrderedMap[string, ProfileInfo] `json:"available_profiles"`
	ConfigurationFile   string                                      `json:"configuration_file"`
}

// Describe builds the Summary for cfg as loaded from the store.
func (s *Store) Describe(cfg *Config) *Summary {
	suffixes := ResolveEnabledSuffixes(cfg)

	current := cfg.CurrentProfile
	if current == "" {
		current = "individual"
	}

	summary := &Summary{
		CurrentProfile:      current,
		EnabledTestTypes:    []EnabledType{},
		EnabledTestSuffixes: suffixes,
		TestsPerEndpoint:    len(suffixes),
		AvailableProfiles:   orderedmap.New[string, ProfileInfo](),
		ConfigurationFile:   s.path,
	}

	if profile, ok := cfg.ActiveProfile(); ok {
		summary.ProfileDescription = profile.Description
		for _, name := range profile.EnabledTypes {
			tt, _ := cfg.EnabledTestTypes.Get(name)
			summary.EnabledTestTypes = append(summary.EnabledTestTypes, EnabledType{
				Type:        name,
				Description: tt.Description,
				Priority:    tt.Priority,
				Tests:       tt.Tests,
			})
		}
	} else {
		for pair := cfg.EnabledTestTypes.Oldest(); pair != nil; pair = pair.Next() {
			if !pair.Value.Enabled {
				continue
			}
			summary.EnabledTestTypes = append(summary.EnabledTestTypes, EnabledType{
				Type:        pair.Key,
				Description: pair.Value.Description,
				Priority:    pair.Value.Priority,
				Tests:       pair.Value.Tests,
			})
		}
	}

	if cfg.PredefinedProfiles != nil {
		for pair := cfg.PredefinedProfiles.Oldest(); pair != nil; pair = pair.Next() {
			summary.AvailableProfiles.Set(pair.Key, ProfileInfo{
				Description:      pair.Value.Description,
				EnabledTypes:     pair.Value.EnabledTypes,
				TestsPerEndpoint: testsForTypes(cfg, pair.Value.EnabledTypes),
			})
		}
	}

	return summary
}
