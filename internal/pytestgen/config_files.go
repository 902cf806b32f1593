package pytestgen

import (
	"fmt"
	"os"
	"path/filepath"
)

const pytestINI = `[tool:pytest]
testpaths = .
python_files = test_*.py
python_classes = Test*
python_functions = test_*
addopts = -v --tb=short --html=report.html --self-contained-html
markers =
    functional: Functional tests
    security: Security tests
    performance: Performance tests
    priority_critical: Critical priority
    priority_high: High priority
    priority_medium: Medium priority
    priority_low: Low priority
`

const requirementsTXT = `pytest>=7.0.0
requests>=2.28.0
pytest-html>=3.1.0
`

// WriteConfigFiles writes pytest.ini and requirements.txt into outputDir and returns
// their paths.
func WriteConfigFiles(outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{"pytest.ini", pytestINI},
		{"requirements.txt", requirementsTXT},
	}

	var written []string
	for _, file := range files {
		path := filepath.Join(outputDir, file.name)
		if err := os.WriteFile(path, []byte(file.content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
