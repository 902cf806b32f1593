// Package repl is the interactive client. It drives the generator tools through an MCP
// client, so the same code paths serve stdio clients and the terminal.
package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
)

const prompt = "testgen» "

// commandTimeout bounds one tool call; plan generation waits on the LLM.
const commandTimeout = 5 * time.Minute

// errExit ends the loop.
var errExit = errors.New("exit")

// ToolCaller is the part of an MCP client the REPL needs.
type ToolCaller interface {
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// REPL reads commands from the terminal and executes them as tool calls.
type REPL struct {
	client  ToolCaller
	out     io.Writer
	tools   []mcp.Tool
	spinner bool
}

// New creates a REPL writing results to out. Spinners are shown only when out is a terminal.
func New(c ToolCaller, out io.Writer) *REPL {
	return &REPL{client: c, out: out, spinner: out == os.Stdout}
}

// Run loads the tool list and processes commands until exit, EOF or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.loadTools(ctx); err != nil {
		return err
	}

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".testgen_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		AutoComplete:      r.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(r.out, "Interactive test case generator. Type 'help' for available commands.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		} else if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		if err := r.Execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(r.out, "Goodbye!")
				return nil
			}
			fmt.Fprintln(r.out, text.FgRed.Sprintf("Error: %v", err))
		}
		fmt.Fprintln(r.out)
	}
}

// Execute runs a single command line.
func (r *REPL) Execute(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "exit", "quit":
		return errExit
	case "help", "?":
		r.printHelp()
		return nil
	case "tools", "list":
		if len(r.tools) == 0 {
			if err := r.loadTools(ctx); err != nil {
				return err
			}
		}
		r.printTools()
		return nil
	case "call":
		if len(args) == 0 {
			return errors.New("usage: call <tool> [key=value ...]")
		}
		return r.call(ctx, args[0], ParseArgs(args[1:]))
	default:
		// tool names work without the call prefix
		if r.findTool(parts[0]) != nil {
			return r.call(ctx, parts[0], ParseArgs(args))
		}
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", parts[0])
	}
}

func (r *REPL) loadTools(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}
	r.tools = result.Tools
	sort.Slice(r.tools, func(i, j int) bool { return r.tools[i].Name < r.tools[j].Name })
	return nil
}

func (r *REPL) findTool(name string) *mcp.Tool {
	for i := range r.tools {
		if r.tools[i].Name == name {
			return &r.tools[i]
		}
	}
	return nil
}

func (r *REPL) call(ctx context.Context, tool string, args map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args

	var s *spinner.Spinner
	if r.spinner {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = fmt.Sprintf(" Running %s...", tool)
		s.Start()
	}
	log.Debug().Str("tool", tool).Interface("args", args).Msg("Calling tool")
	result, err := r.client.CallTool(ctx, req)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return fmt.Errorf("failed to execute tool %s: %w", tool, err)
	}

	output := resultText(result)
	if result.IsError {
		return errors.New(output)
	}
	fmt.Fprintln(r.out, output)
	return nil
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (r *REPL) printHelp() {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("COMMAND"), text.FgHiCyan.Sprint("DESCRIPTION")})
	t.AppendRows([]table.Row{
		{"tools", "List available tools"},
		{"call <tool> key=value ...", "Call a tool with arguments"},
		{"<tool> key=value ...", "Shorthand for call"},
		{"help", "Show this help"},
		{"exit", "Leave the client"},
	})
	t.Render()
}

func (r *REPL) printTools() {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("TOOL"), text.FgHiCyan.Sprint("ARGUMENTS"), text.FgHiCyan.Sprint("DESCRIPTION")})
	for _, tool := range r.tools {
		t.AppendRow(table.Row{tool.Name, toolArgs(tool), tool.Description})
	}
	t.Render()
}

// toolArgs lists a tool's arguments, marking optional ones with '?'.
func toolArgs(tool mcp.Tool) string {
	required := make(map[string]bool, len(tool.InputSchema.Required))
	for _, name := range tool.InputSchema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if !required[name] {
			names[i] = name + "?"
		}
	}
	return strings.Join(names, " ")
}

func (r *REPL) completer() *readline.PrefixCompleter {
	toolItems := make([]readline.PrefixCompleterInterface, 0, len(r.tools))
	for _, tool := range r.tools {
		toolItems = append(toolItems, readline.PcItem(tool.Name))
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("tools"),
		readline.PcItem("call", toolItems...),
		readline.PcItem("exit"),
	}
	items = append(items, toolItems...)
	return readline.NewPrefixCompleter(items...)
}

// ParseArgs turns key=value words into tool arguments. Values that parse as JSON keep
// their type, so use_ai=true is a boolean. Words without '=' are ignored.
func ParseArgs(args []string) map[string]interface{} {
	params := make(map[string]interface{}, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			log.Debug().Str("arg", arg).Msg("Ignoring argument without '='")
			continue
		}
		value = stripQuotes(value)

		var jsonValue interface{}
		if err := json.Unmarshal([]byte(value), &jsonValue); err == nil {
			params[key] = jsonValue
		} else {
			params[key] = value
		}
	}
	return params
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
