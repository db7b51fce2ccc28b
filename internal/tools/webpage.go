package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/ragline/ragline/internal/log"
)

const (
	// maxPageBytes caps how much of a page is read before extraction.
	maxPageBytes = 10 << 20 // 10 MB

	// maxExtractedChars caps the text fed back into the answer prompt so a
	// long article cannot blow the context window.
	maxExtractedChars = 8000
)

// PageExtractor fetches a web page and reduces it to readable text.
type PageExtractor struct {
	HTTPClient *http.Client
	Logger     log.Logger
}

// NewPageTool wraps extractor as the extractTextFromPage tool.
func NewPageTool(extractor *PageExtractor) Tool {
	if extractor.HTTPClient == nil {
		extractor.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if extractor.Logger == nil {
		extractor.Logger = log.NewNop()
	}

	return Tool{
		Descriptor: Descriptor{
			FunctionName: "extractTextFromPage",
			Parameters:   map[string]string{"url": "<page url>"},
			Description:  "This tool is triggered if the user asks to read, summarize or extract the text of a web page.",
		},
		Execute: func(ctx context.Context, params Params) (string, error) {
			rawURL := strings.TrimSpace(params.String("url"))
			if rawURL == "" {
				return "Malformed parameter: url must not be empty.", nil
			}

			pageURL, err := url.Parse(rawURL)
			if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
				return fmt.Sprintf("Malformed parameter: %q is not an http(s) URL.", rawURL), nil
			}

			return extractor.extract(ctx, pageURL)
		},
	}
}

func (e *PageExtractor) extract(ctx context.Context, pageURL *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Fetching %s failed: %v", pageURL, err), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Fetching %s failed with status %d.", pageURL, resp.StatusCode), nil
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), pageURL)
	if err != nil {
		return fmt.Sprintf("Extracting text from %s failed: %v", pageURL, err), nil
	}

	e.Logger.Debug("page fetched", "url", pageURL.String(), "status", resp.StatusCode)

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return fmt.Sprintf("No readable text was found at %s.", pageURL), nil
	}
	if len(text) > maxExtractedChars {
		text = text[:maxExtractedChars] + "…"
	}

	if article.Title != "" {
		return fmt.Sprintf("%s\n\n%s", article.Title, text), nil
	}
	return text, nil
}
