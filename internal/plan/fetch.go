package plan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	userAgent = "Mozilla/5.0 (MCP Test Plan Generator) AppleWebKit/537.36"

	// minPageContent is the shortest page text worth handing to the model.
	minPageContent = 100
)

var (
	urlPattern = regexp.MustCompile("(?i)https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")

	skipExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".mp4", ".mp3", ".zip", ".exe"}

	// skipElements never contribute readable text.
	skipElements = map[string]bool{
		"script": true,
		"style":  true,
		"nav":    true,
		"footer": true,
		"header": true,
	}
)

// FetchConfig holds configuration for fetching referenced documentation
type FetchConfig struct {
	MaxURLs     int
	Concurrency int
	Timeout     time.Duration
	Retry       RetryConfig
}

// RetryConfig holds configuration for retry behavior
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// DefaultFetchConfig returns the limits used when nothing is configured.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		MaxURLs:     10,
		Concurrency: 4,
		Timeout:     10 * time.Second,
		Retry:       RetryConfig{Attempts: 3, Delay: time.Second},
	}
}

// Page is the readable content of one fetched URL
type Page struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// Fetcher downloads the documentation pages listed in an input directory
type Fetcher struct {
	config FetchConfig
	client *http.Client
}

// NewFetcher creates a new fetcher. Zero values in config take their defaults.
func NewFetcher(config FetchConfig) *Fetcher {
	defaults := DefaultFetchConfig()
	if config.MaxURLs <= 0 {
		config.MaxURLs = defaults.MaxURLs
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Retry.Attempts <= 0 {
		config.Retry.Attempts = 1
	}

	return &Fetcher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// ExtractURLs returns the distinct http(s) URLs found in text, in first-seen order.
func ExtractURLs(text string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, match := range urlPattern.FindAllString(text, -1) {
		parsed, err := url.Parse(match)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			continue
		}
		if seen[match] {
			continue
		}
		seen[match] = true
		urls = append(urls, match)
	}
	return urls
}

func isFetchable(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	return true
}

// FetchAll fetches the first MaxURLs URLs found in text. Pages that cannot be fetched
// or carry too little text are left out; the result keeps the order of the URLs.
func (f *Fetcher) FetchAll(ctx context.Context, text string) ([]Page, error) {
	urls := ExtractURLs(text)
	if len(urls) == 0 {
		return nil, nil
	}
	log.Info().Int("count", len(urls)).Msg("Found URLs in content")
	if len(urls) > f.config.MaxURLs {
		log.Info().Int("limit", f.config.MaxURLs).Int("found", len(urls)).Msg("Limiting URLs to fetch")
		urls = urls[:f.config.MaxURLs]
	}

	pages := make([]*Page, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.config.Concurrency)
	for i, u := range urls {
		g.Go(func() error {
			page, err := f.Fetch(ctx, u)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn().Err(err).Str("url", u).Msg("Could not fetch content")
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fetched []Page
	for _, page := range pages {
		if page != nil {
			fetched = append(fetched, *page)
		}
	}
	return fetched, nil
}

// Fetch downloads a single URL, retrying transport failures and error statuses.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if !isFetchable(rawURL) {
		return nil, fmt.Errorf("skipping non-text URL %s", rawURL)
	}

	var lastErr error
	for attempt := 0; attempt < f.config.Retry.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.config.Retry.Delay):
			}
		}

		contentType, body, err := f.get(ctx, rawURL)
		if err != nil {
			log.Debug().Err(err).Str("url", rawURL).Int("attempt", attempt+1).Msg("Fetch failed")
			lastErr = err
			continue
		}

		var content string
		if strings.Contains(contentType, "application/json") {
			content = body
		} else {
			content = ExtractText(body)
		}
		content = strings.TrimSpace(content)
		if len(content) <= minPageContent {
			return nil, fmt.Errorf("content of %s too short (%d characters)", rawURL, len(content))
		}

		return &Page{
			URL:         rawURL,
			Title:       ExtractTitle(body),
			ContentType: contentType,
			Content:     content,
		}, nil
	}
	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", rawURL, f.config.Retry.Attempts, lastErr)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %w", err)
	}
	return strings.ToLower(resp.Header.Get("Content-Type")), string(body), nil
}

// ExtractText returns the readable text of an HTML document with whitespace collapsed.
// Plain text passes through unchanged apart from whitespace.
func ExtractText(document string) string {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return document
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// ExtractTitle returns the <title> of an HTML document, or "Untitled".
func ExtractTitle(document string) string {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "Untitled"
	}

	var title string
	var find func(n *html.Node) bool
	find = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			title = strings.TrimSpace(sb.String())
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if find(c) {
				return true
			}
		}
		return false
	}
	find(root)

	if title == "" {
		return "Untitled"
	}
	return title
}
