// Package pytestgen turns exported test case CSVs into runnable pytest modules.
package pytestgen

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SampleSize is how many cases ReadTestCases returns for preview.
const SampleSize = 5

const unknownComponent = "unknown"

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// TestCase is the subset of an exported record needed to write a pytest method
type TestCase struct {
	TestCaseID  string `json:"test_case_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	APIMethod   string `json:"api_method"`
	APIPath     string `json:"api_path"`
}

// Component is the first segment of the API path, or "unknown".
func (tc TestCase) Component() string {
	if !strings.Contains(tc.APIPath, "/") {
		return unknownComponent
	}
	first := strings.SplitN(strings.Trim(tc.APIPath, "/"), "/", 2)[0]
	if first == "" {
		return unknownComponent
	}
	return first
}

// SanitizedID is the test case ID lowercased and safe for a Python identifier.
func (tc TestCase) SanitizedID() string {
	return nonIdentifier.ReplaceAllString(strings.ToLower(tc.TestCaseID), "_")
}

// NoMatchingTestCasesError is returned when a component filter selects nothing
type NoMatchingTestCasesError struct {
	Component string
}

func (e *NoMatchingTestCasesError) Error() string {
	return fmt.Sprintf("no test cases found for component: %s", e.Component)
}

// ReadCSV reads test cases from a CSV export. Columns are matched by header name;
// missing columns read as empty strings.
func ReadCSV(path string) ([]TestCase, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}

	var cases []TestCase
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		get := func(column string) string {
			if i, ok := index[column]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}
		cases = append(cases, TestCase{
			TestCaseID:  get("test_case_id"),
			Title:       get("title"),
			Description: get("description"),
			Category:    get("category"),
			Priority:    get("priority"),
			APIMethod:   get("api_method"),
			APIPath:     get("api_path"),
		})
	}
	return cases, nil
}

// FilterByComponent keeps the cases whose component matches, ignoring case.
// An empty component keeps everything.
func FilterByComponent(cases []TestCase, component string) []TestCase {
	if component == "" {
		return cases
	}
	var filtered []TestCase
	for _, tc := range cases {
		if strings.EqualFold(tc.Component(), component) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

// Summary describes the cases found in a CSV export
type Summary struct {
	TotalTestCases int                                 `json:"total_test_cases"`
	Components     *orderedmap.OrderedMap[string, int] `json:"components"`
	TestCases      []TestCase                          `json:"test_cases"`
}

// ComponentNames lists the components in first-seen order.
func (s *Summary) ComponentNames() []string {
	names := make([]string, 0, s.Components.Len())
	for pair := s.Components.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Summarize counts cases per component and keeps a short sample.
func Summarize(cases []TestCase) *Summary {
	components := orderedmap.New[string, int]()
	for _, tc := range cases {
		count, _ := components.Get(tc.Component())
		components.Set(tc.Component(), count+1)
	}

	sample := cases
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}
	if sample == nil {
		sample = []TestCase{}
	}

	return &Summary{
		TotalTestCases: len(cases),
		Components:     components,
		TestCases:      sample,
	}
}

// ReadTestCases loads csvPath and summarizes the cases matching component.
func ReadTestCases(csvPath, component string) (*Summary, error) {
	cases, err := ReadCSV(csvPath)
	if err != nil {
		return nil, err
	}
	return Summarize(FilterByComponent(cases, component)), nil
}
