package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"api-testcase-generator/internal/reporter"
	"api-testcase-generator/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliSpec = `{
  "openapi": "3.0.0",
  "info": {"title": "Inventory API", "version": "3.1.0"},
  "paths": {
    "/items": {
      "get": {"tags": ["Items"], "operationId": "listItems", "responses": {"200": {"description": "OK"}}},
      "post": {"tags": ["Items"], "operationId": "createItem", "responses": {"201": {"description": "Created"}}}
    }
  }
}`

const cliTestConfig = `{
  "enabled_test_types": {
    "functional": {"enabled": true, "tests": ["FUNC-HAPPY", "FUNC-NEGATIVE"]},
    "security": {"enabled": false, "tests": ["SEC-AUTH"]}
  },
  "predefined_profiles": {
    "security_only": {"description": "Security checks only", "enabled_types": ["security"]}
  }
}`

type cliEnv struct {
	root       string
	configPath string
	inputDir   string
	outputDir  string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	root := t.TempDir()
	e := cliEnv{
		root:       root,
		configPath: filepath.Join(root, "config.yaml"),
		inputDir:   filepath.Join(root, "input"),
		outputDir:  filepath.Join(root, "output"),
	}
	testConfig := filepath.Join(root, "test_config.json")

	appConfig := fmt.Sprintf(`paths:
  test_config: %s
  test_plan: %s
  log_dir: %s
reporting:
  format: [xlsx, csv]
  output_dir: %s
`, testConfig, filepath.Join(e.outputDir, "test_plan.md"), filepath.Join(root, "logs"), e.outputDir)

	require.NoError(t, os.MkdirAll(e.inputDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(e.inputDir, "openapi.json"), []byte(cliSpec), 0644))
	require.NoError(t, os.WriteFile(testConfig, []byte(cliTestConfig), 0644))
	require.NoError(t, os.WriteFile(e.configPath, []byte(appConfig), 0644))
	return e
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"generate-plan", "generate-cases", "pipeline", "show-config", "switch-profile", "pytest", "serve", "serve-http", "client"} {
		assert.Contains(t, names, want)
	}
}

func TestGenerateCasesCommand(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run(t, "generate-cases", "--input-dir", e.inputDir, "-o", "json")
	require.NoError(t, err)

	var result service.CasesResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 4, result.Statistics.TotalTestCases)
	assert.Equal(t, filepath.Join(e.outputDir, "test_cases.xlsx"), result.OutputFile)
	assert.FileExists(t, result.CSVFile)

	out, err = e.run(t, "generate-cases", "--input-dir", e.inputDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully generated 4 test cases for 2 API endpoints in Excel format")
	assert.Contains(t, out, "Functional: 4")
}

func TestGenerateCasesCommand_RequiresInputDir(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run(t, "generate-cases")
	assert.ErrorContains(t, err, `required flag(s) "input-dir" not set`)
}

func TestProfileCommands(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run(t, "show-config")
	require.NoError(t, err)
	assert.Contains(t, out, "Tests per endpoint: 2")
	assert.Contains(t, out, "security_only")

	out, err = e.run(t, "switch-profile", "security_only", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"switched_to": "security_only"`)

	_, err = e.run(t, "switch-profile", "nightly")
	assert.ErrorContains(t, err, "profile 'nightly' not found")

	_, err = e.run(t, "switch-profile")
	assert.Error(t, err)
}

func TestGeneratePlanCommand_NoLLM(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run(t, "generate-plan", "--input-dir", e.inputDir)
	assert.ErrorIs(t, err, service.ErrPlannerUnavailable)
}

func TestPytestCommands(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run(t, "generate-cases", "--input-dir", e.inputDir)
	require.NoError(t, err)
	csvPath := filepath.Join(e.outputDir, "test_cases.csv")

	out, err := e.run(t, "pytest", "read", "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Total test cases: 4")
	assert.Contains(t, out, "items")

	pyFile := filepath.Join(e.root, "tests", "test_items.py")
	_, err = e.run(t, "pytest", "generate", "--csv", csvPath, "--component", "items", "--out", pyFile)
	require.NoError(t, err)
	assert.FileExists(t, pyFile)

	_, err = e.run(t, "pytest", "config", "--dir", filepath.Join(e.root, "tests"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(e.root, "tests", "pytest.ini"))
}

func TestUnsupportedOutputFormat(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run(t, "show-config", "-o", "yaml")
	assert.ErrorContains(t, err, `unsupported output format "yaml"`)
}

func TestRender_FallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputTable, &service.ConfigFilesResult{OutputDir: "tests", Files: []string{"tests/pytest.ini"}}))
	assert.JSONEq(t, `{"output_dir": "tests", "files": ["tests/pytest.ini"]}`, buf.String())
}

func TestRenderCases(t *testing.T) {
	var buf bytes.Buffer
	renderCases(&buf, &service.CasesResult{
		Message:    "done",
		OutputFile: "output/test_cases.xlsx",
		Statistics: reporter.Statistics{
			TotalTestCases: 3,
			Categories:     map[string]int{"Security": 1, "Functional": 2},
			SheetsCreated:  reporter.Sheets,
		},
	})
	assert.Contains(t, buf.String(), "output/test_cases.xlsx")
	assert.Contains(t, buf.String(), "Functional: 2, Security: 1")
}

func TestFormatCounts(t *testing.T) {
	assert.Equal(t, "", formatCounts(nil))
	assert.Equal(t, "High: 2, Low: 1", formatCounts(map[string]int{"Low": 1, "High": 2}))
}
