// Package mcpserver exposes the generator operations as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"api-testcase-generator/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// ServerName is announced to MCP clients during initialization.
	ServerName = "api-testcase-generator"
	// ServerVersion is announced to MCP clients during initialization.
	ServerVersion = "2.0.0"
)

// Tool names.
const (
	ToolGenerateTestPlan    = "generate_test_plan"
	ToolGenerateTestCases   = "generate_test_cases"
	ToolShowTestConfig      = "show_test_config"
	ToolSwitchTestProfile   = "switch_test_profile"
	ToolReadTestCases       = "read_test_cases"
	ToolGenerateTestFile    = "generate_test_file"
	ToolGenerateConfigFiles = "generate_config_files"
	ToolRunPipeline         = "run_pipeline"
)

// MCPServer wraps the service and serves it over the MCP protocol.
type MCPServer struct {
	svc       *service.Service
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server with every generator tool registered.
func NewMCPServer(svc *service.Service) *MCPServer {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	ms := &MCPServer{
		svc:       svc,
		mcpServer: mcpServer,
	}
	ms.registerTools()

	return ms
}

// Server returns the underlying mcp-go server, for in-process clients.
func (m *MCPServer) Server() *server.MCPServer {
	return m.mcpServer
}

// Start serves MCP over stdin/stdout until the connection closes.
func (m *MCPServer) Start(ctx context.Context) error {
	return server.ServeStdio(m.mcpServer)
}

func (m *MCPServer) registerTools() {
	inputDir := mcp.WithString("input_dir",
		mcp.Required(),
		mcp.Description("Directory containing the input documents"),
	)

	m.mcpServer.AddTool(mcp.NewTool(ToolGenerateTestPlan,
		mcp.WithDescription("Generate a test plan from the documents in a directory"),
		inputDir,
	), m.handleGenerateTestPlan)

	m.mcpServer.AddTool(mcp.NewTool(ToolGenerateTestCases,
		mcp.WithDescription("Generate test cases in Excel and CSV format from the OpenAPI specification in a directory"),
		inputDir,
	), m.handleGenerateTestCases)

	m.mcpServer.AddTool(mcp.NewTool(ToolShowTestConfig,
		mcp.WithDescription("Show the current test configuration and available profiles"),
	), m.handleShowTestConfig)

	m.mcpServer.AddTool(mcp.NewTool(ToolSwitchTestProfile,
		mcp.WithDescription("Switch to a predefined test profile"),
		mcp.WithString("profile_name",
			mcp.Required(),
			mcp.Description("Name of the profile to activate"),
		),
	), m.handleSwitchTestProfile)

	m.mcpServer.AddTool(mcp.NewTool(ToolReadTestCases,
		mcp.WithDescription("Read test cases from CSV file"),
		mcp.WithString("csv_path",
			mcp.Required(),
			mcp.Description("Path to CSV file"),
		),
		mcp.WithString("component",
			mcp.Description("Filter by component (optional)"),
		),
	), m.handleReadTestCases)

	m.mcpServer.AddTool(mcp.NewTool(ToolGenerateTestFile,
		mcp.WithDescription("Generate pytest test file from test cases"),
		mcp.WithString("csv_path",
			mcp.Required(),
			mcp.Description("Path to CSV file"),
		),
		mcp.WithString("component",
			mcp.Required(),
			mcp.Description("Component to generate tests for"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Output file path"),
		),
		mcp.WithBoolean("use_ai",
			mcp.Description("Use AI enhancement"),
			mcp.DefaultBool(false),
		),
	), m.handleGenerateTestFile)

	m.mcpServer.AddTool(mcp.NewTool(ToolGenerateConfigFiles,
		mcp.WithDescription("Generate pytest configuration files"),
		mcp.WithString("output_dir",
			mcp.Required(),
			mcp.Description("Output directory"),
		),
	), m.handleGenerateConfigFiles)

	m.mcpServer.AddTool(mcp.NewTool(ToolRunPipeline,
		mcp.WithDescription("Generate the test plan and then the test cases for a directory"),
		inputDir,
	), m.handleRunPipeline)
}

func (m *MCPServer) handleGenerateTestPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputDir, err := request.RequireString("input_dir")
	if err != nil {
		return mcp.NewToolResultError("input_dir argument is required"), nil
	}
	result, err := m.svc.GenerateTestPlan(ctx, inputDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (m *MCPServer) handleGenerateTestCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputDir, err := request.RequireString("input_dir")
	if err != nil {
		return mcp.NewToolResultError("input_dir argument is required"), nil
	}
	result, err := m.svc.GenerateTestCases(ctx, inputDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate test cases: %v", err)), nil
	}
	return jsonResult(result)
}

func (m *MCPServer) handleShowTestConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := m.svc.ShowTestConfig()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load test configuration: %v", err)), nil
	}
	return jsonResult(summary)
}

func (m *MCPServer) handleSwitchTestProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("profile_name")
	if err != nil {
		return mcp.NewToolResultError("profile_name argument is required"), nil
	}
	result, err := m.svc.SwitchTestProfile(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (m *MCPServer) handleReadTestCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	csvPath, err := request.RequireString("csv_path")
	if err != nil {
		return mcp.NewToolResultError("csv_path argument is required"), nil
	}
	summary, err := m.svc.ReadTestCases(csvPath, request.GetString("component", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summary)
}

func (m *MCPServer) handleGenerateTestFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := make(map[string]string, 3)
	for _, key := range []string{"csv_path", "component", "output_path"} {
		value, err := request.RequireString(key)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s argument is required", key)), nil
		}
		args[key] = value
	}

	result, err := m.svc.GenerateTestFile(ctx, args["csv_path"], args["component"], args["output_path"], request.GetBool("use_ai", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (m *MCPServer) handleGenerateConfigFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outputDir, err := request.RequireString("output_dir")
	if err != nil {
		return mcp.NewToolResultError("output_dir argument is required"), nil
	}
	result, err := m.svc.GenerateConfigFiles(outputDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (m *MCPServer) handleRunPipeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputDir, err := request.RequireString("input_dir")
	if err != nil {
		return mcp.NewToolResultError("input_dir argument is required"), nil
	}
	result, err := m.svc.RunPipeline(ctx, inputDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
