package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	// URLsFile lists documentation URLs to fetch, one or more per line.
	URLsFile = "urls.txt"

	maxPageExcerpt = 5000
)

var binaryExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bin":  true,
	".exe":  true,
}

// InputNotFoundError is returned when the input directory does not exist
type InputNotFoundError struct {
	Dir string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("directory not found: %s", e.Dir)
}

// ReadInputs combines every readable file under inputDir into one document. JSON files
// are re-indented, binary files and unreadable files are skipped. When the directory
// holds a urls.txt and fetcher is non-nil, the listed pages are appended.
func ReadInputs(ctx context.Context, inputDir string, fetcher *Fetcher) (string, error) {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return "", &InputNotFoundError{Dir: inputDir}
	}

	var sections []string
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Could not read path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		ext := strings.ToLower(filepath.Ext(path))
		if binaryExtensions[ext] {
			log.Debug().Str("file", rel).Msg("Skipping binary file")
			return nil
		}

		section, err := readSection(path, rel, ext)
		if err != nil {
			log.Warn().Err(err).Str("file", rel).Msg("Could not read file")
			return nil
		}
		if section == "" {
			log.Warn().Str("file", rel).Msg("Text file is empty")
			return nil
		}
		sections = append(sections, section)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read input directory: %w", err)
	}

	if fetcher != nil {
		pages, err := fetchListedURLs(ctx, inputDir, fetcher)
		if err != nil {
			return "", err
		}
		if len(pages) > 0 {
			sections = append(sections, "\n=== CONTENT FETCHED FROM URLs ===\n")
			for _, page := range pages {
				sections = append(sections, renderPage(page))
			}
			log.Info().Int("count", len(pages)).Msg("Fetched content from URLs")
		}
	}

	return strings.Join(sections, "\n"), nil
}

func readSection(path, rel, ext string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8 text")
	}

	if ext == ".json" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
			return "", fmt.Errorf("invalid JSON: %w", err)
		}
		log.Debug().Str("file", rel).Int("chars", buf.Len()).Msg("JSON file processed")
		return fmt.Sprintf("=== JSON FILE: %s ===\n%s\n", rel, buf.String()), nil
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", nil
	}
	log.Debug().Str("file", rel).Int("chars", len(content)).Msg("Text file processed")
	return fmt.Sprintf("=== FILE: %s ===\n%s\n", rel, content), nil
}

func fetchListedURLs(ctx context.Context, inputDir string, fetcher *Fetcher) ([]Page, error) {
	data, err := os.ReadFile(filepath.Join(inputDir, URLsFile))
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Msg("No urls.txt file found, skipping URL fetch")
		return nil, nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("Error reading urls.txt")
		return nil, nil
	}

	pages, err := fetcher.FetchAll(ctx, strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URLs: %w", err)
	}
	return pages, nil
}

func renderPage(page Page) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== URL: %s ===\n", page.URL)
	fmt.Fprintf(&sb, "Title: %s\n", page.Title)
	fmt.Fprintf(&sb, "Content Type: %s\n", page.ContentType)
	excerpt, truncated := truncateRunes(page.Content, maxPageExcerpt)
	fmt.Fprintf(&sb, "Content:\n%s...\n", excerpt)
	if truncated {
		fmt.Fprintf(&sb, "[Content truncated - showing first %d characters]\n", maxPageExcerpt)
	}
	return sb.String()
}

// truncateRunes cuts s to at most n characters.
func truncateRunes(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:n]), true
}
