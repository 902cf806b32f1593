package plan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"api-testcase-generator/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlan = `# Test Plan

## Objectives
Verify the ordering service behaves correctly for every customer.

## Scenarios
1. Create an order and check the response.
2. Cancel an order and check the testing log.
`

var longBody = strings.Repeat("Orders can be created, updated and cancelled by customers. ", 5)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func docsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><head><title> Orders Guide </title><style>body{}</style></head>
<body><nav>Home | About</nav><p>%s</p><script>var x = 1;</script></body></html>`, longBody)
	})
	mux.HandleFunc("/docs/short", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("too short"))
	})
	mux.HandleFunc("/api/spec", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"description": %q}`, longBody)
	})
	mux.HandleFunc("/missing", http.NotFound)
	return httptest.NewServer(mux)
}

func fastFetcher() *Fetcher {
	return NewFetcher(FetchConfig{
		MaxURLs:     10,
		Concurrency: 2,
		Timeout:     2 * time.Second,
		Retry:       RetryConfig{Attempts: 3, Delay: time.Millisecond},
	})
}

func TestExtractURLs(t *testing.T) {
	text := `See https://docs.example.com/orders and http://api.example.com/v1.
Again https://docs.example.com/orders, plus "https://wiki.example.com/page"<br>
not a url: ftp://files.example.com`

	urls := ExtractURLs(text)
	assert.Equal(t, []string{
		"https://docs.example.com/orders",
		"http://api.example.com/v1.",
		"https://docs.example.com/orders,",
		"https://wiki.example.com/page",
	}, urls)
	assert.Empty(t, ExtractURLs("no links here"))
}

func TestExtractTextAndTitle(t *testing.T) {
	doc := `<html><head><title>Guide</title></head><body>
<header>Site header</header>
<h1>Orders</h1>   <p>Create   and
cancel</p><footer>Footer</footer><script>alert(1)</script></body></html>`

	assert.Equal(t, "Guide Orders Create and cancel", ExtractText(doc))
	assert.Equal(t, "Guide", ExtractTitle(doc))
	assert.Equal(t, "Untitled", ExtractTitle("<p>no title</p>"))
}

func TestFetcher_FetchAll(t *testing.T) {
	server := docsServer(t)
	defer server.Close()

	text := strings.Join([]string{
		server.URL + "/docs/orders",
		server.URL + "/docs/short",
		server.URL + "/missing",
		server.URL + "/image.png",
		server.URL + "/api/spec",
	}, "\n")

	pages, err := fastFetcher().FetchAll(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, server.URL+"/docs/orders", pages[0].URL)
	assert.Equal(t, "Orders Guide", pages[0].Title)
	assert.Equal(t, "text/html; charset=utf-8", pages[0].ContentType)
	assert.NotContains(t, pages[0].Content, "var x")
	assert.NotContains(t, pages[0].Content, "Home | About")
	assert.Contains(t, pages[0].Content, "Orders can be created")

	assert.Equal(t, server.URL+"/api/spec", pages[1].URL)
	assert.Equal(t, "application/json", pages[1].ContentType)
	assert.True(t, strings.HasPrefix(pages[1].Content, `{"description"`))
}

func TestFetcher_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(longBody))
	}))
	defer server.Close()

	page, err := fastFetcher().Fetch(context.Background(), server.URL+"/docs")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "Untitled", page.Title)
}

func TestFetcher_GivesUpAfterAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := fastFetcher().Fetch(context.Background(), server.URL+"/docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetcher_LimitsURLs(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(longBody))
	}))
	defer server.Close()

	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, fmt.Sprintf("%s/page/%d", server.URL, i))
	}

	pages, err := fastFetcher().FetchAll(context.Background(), strings.Join(lines, "\n"))
	require.NoError(t, err)
	assert.Len(t, pages, 10)
	assert.Equal(t, int32(10), atomic.LoadInt32(&calls))
	assert.Equal(t, server.URL+"/page/9", pages[9].URL)
}

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.md", "  # Orders\nCustomers place orders.\n  ")
	writeFile(t, dir, "api/openapi.json", `{"openapi":"3.0.0","info":{"title":"Orders"}}`)
	writeFile(t, dir, "diagram.png", "binary")
	writeFile(t, dir, "empty.txt", "   \n")
	writeFile(t, dir, "broken.json", `{"openapi":`)
	writeFile(t, dir, "latin1.txt", "caf\xe9")

	content, err := ReadInputs(context.Background(), dir, nil)
	require.NoError(t, err)

	assert.Contains(t, content, "=== JSON FILE: api/openapi.json ===\n{\n  \"openapi\": \"3.0.0\",\n  \"info\": {\n    \"title\": \"Orders\"\n  }\n}\n")
	assert.Contains(t, content, "=== FILE: requirements.md ===\n# Orders\nCustomers place orders.\n")
	assert.NotContains(t, content, "diagram.png")
	assert.NotContains(t, content, "empty.txt")
	assert.NotContains(t, content, "broken.json")
	assert.NotContains(t, content, "latin1.txt")
	assert.NotContains(t, content, "CONTENT FETCHED FROM URLs")
}

func TestReadInputs_FetchesListedURLs(t *testing.T) {
	server := docsServer(t)
	defer server.Close()

	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "Ordering service notes")
	writeFile(t, dir, URLsFile, server.URL+"/docs/orders\n")

	content, err := ReadInputs(context.Background(), dir, fastFetcher())
	require.NoError(t, err)

	assert.Contains(t, content, "=== FILE: urls.txt ===")
	assert.Contains(t, content, "\n=== CONTENT FETCHED FROM URLs ===\n")
	assert.Contains(t, content, "=== URL: "+server.URL+"/docs/orders ===\nTitle: Orders Guide\nContent Type: text/html; charset=utf-8\nContent:\n")
	assert.NotContains(t, content, "[Content truncated")
}

func TestReadInputs_MissingDir(t *testing.T) {
	_, err := ReadInputs(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	var notFound *InputNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, err.Error(), "directory not found")
}

func TestRenderPage_TruncatesLongContent(t *testing.T) {
	out := renderPage(Page{URL: "u", Title: "t", ContentType: "text/plain", Content: strings.Repeat("é", 6000)})
	assert.Contains(t, out, strings.Repeat("é", 5000)+"...\n[Content truncated - showing first 5000 characters]\n")
	assert.NotContains(t, out, strings.Repeat("é", 5001))
}

func TestTruncateContent(t *testing.T) {
	short, truncated := TruncateContent("abc")
	assert.False(t, truncated)
	assert.Equal(t, "abc", short)

	long, truncated := TruncateContent(strings.Repeat("x", MaxContentLength+1))
	assert.True(t, truncated)
	assert.Equal(t, strings.Repeat("x", MaxContentLength)+"\n\n[Content truncated due to length...]", long)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("=== FILE: a.txt ===\nhello\n")
	assert.Contains(t, prompt, "## INPUT DOCUMENTS TO ANALYZE:\n=== FILE: a.txt ===\nhello\n")
	assert.NotContains(t, prompt, contentPlaceholder)
	assert.True(t, strings.HasPrefix(prompt, "You are a Principal QA Architect"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    string
		valid   bool
		message string
	}{
		{"empty", "  \n ", false, "Test plan is empty or contains only whitespace"},
		{"short", "# Test objective scenario", false, "Test plan is too short (minimum 100 characters required)"},
		{"missing objectives", "# Test Plan\n" + strings.Repeat("test scenario ", 10), false, "Test plan is missing essential content. Consider adding more detail about testing objectives, scenarios, and steps."},
		{"no structure", strings.Repeat("test objective scenario ", 6), false, "Test plan lacks clear structure. Consider using headers, lists, or numbered steps."},
		{"bullets", "- " + strings.Repeat("test objective scenario ", 6), true, "Test plan validation passed"},
		{"numbered", "1. " + strings.Repeat("test goal step ", 8), true, "Test plan validation passed"},
		{"markdown", validPlan, true, "Test plan validation passed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.plan)
			assert.Equal(t, tt.valid, got.IsValid)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.md", "Customers place orders.")
	out := filepath.Join(t.TempDir(), "output", "test_plan.md")

	var prompt string
	gen := NewGenerator(llm.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return validPlan, nil
	}), nil, out)

	result, err := gen.Generate(context.Background(), dir)
	require.NoError(t, err)

	assert.Contains(t, prompt, "=== FILE: requirements.md ===\nCustomers place orders.\n")
	assert.Equal(t, validPlan, result.TestPlan)
	assert.Equal(t, out, result.OutputFile)
	assert.True(t, result.Validation.IsValid)

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, validPlan, string(saved))
}

func TestGenerator_TruncatesLargeInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.txt", strings.Repeat("a", 20000))

	var prompt string
	gen := NewGenerator(llm.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return validPlan, nil
	}), nil, filepath.Join(t.TempDir(), "plan.md"))

	_, err := gen.Generate(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, prompt, "\n\n[Content truncated due to length...]")
	assert.NotContains(t, prompt, strings.Repeat("a", 15000))
}

func TestGenerator_Errors(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plan.md")

	t.Run("no readable files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "image.png", "binary")
		gen := NewGenerator(llm.GeneratorFunc(func(context.Context, string) (string, error) {
			t.Fatal("model must not be called")
			return "", nil
		}), nil, out)

		_, err := gen.Generate(context.Background(), dir)
		assert.ErrorIs(t, err, ErrNoReadableFiles)
	})

	t.Run("model failure", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "content")
		gen := NewGenerator(llm.GeneratorFunc(func(context.Context, string) (string, error) {
			return "", errors.New("rate limited")
		}), nil, out)

		_, err := gen.Generate(context.Background(), dir)
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("invalid plan is not saved", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "content")
		gen := NewGenerator(llm.GeneratorFunc(func(context.Context, string) (string, error) {
			return "too short", nil
		}), nil, out)

		_, err := gen.Generate(context.Background(), dir)
		var invalid *InvalidPlanError
		require.True(t, errors.As(err, &invalid))
		assert.False(t, invalid.Validation.IsValid)
		assert.NoFileExists(t, out)
	})
}
