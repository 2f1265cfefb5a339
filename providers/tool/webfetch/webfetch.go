package webfetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/grafo-ai/grafo/internal/utils"
	"github.com/grafo-ai/grafo/providers/tool"
)

const (
	// DefaultTimeout is the request timeout used when the model does not ask
	// for a specific one.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the tool to the fetched site.
	DefaultUserAgent = "grafo-webfetch-tool/1.0"
	// MaxBodySize caps the response body at 10MB.
	MaxBodySize = 10 * 1024 * 1024
	// MaxRedirects bounds how many HTTP redirects a single fetch follows.
	MaxRedirects = 10
)

// transport is shared by all fetches so idle connections get reused across
// calls. Per-request timeouts live on the client, not here.
var transport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 10 * time.Second,
	IdleConnTimeout:       90 * time.Second,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	ForceAttemptHTTP2:     true,
}

// NewWebFetchTool returns a [tool.Tool] that fetches web pages and converts
// their HTML content to Markdown. The underlying fetch logic is available
// directly through [Fetch].
//
// Example:
//
//	fetchTool, err := webfetch.NewWebFetchTool()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	aiClient, _ := client.New(provider, client.WithTools(fetchTool))
func NewWebFetchTool() (*tool.Tool[Input, Output], error) {
	return tool.New(
		"WebFetch",
		Fetch,
		tool.WithDescription("Fetches a web page and converts its HTML content to Markdown format. Supports HTTP and HTTPS protocols. Automatically handles partial URLs by adding https:// prefix. Follows redirects and returns the final URL and clean Markdown content."),
	)
}

// Fetch retrieves the web page at req.URL and returns its content as Markdown.
//
// Partial URLs such as "example.com" are normalised by prepending "https://".
// The request timeout comes from req.TimeoutSeconds when set, otherwise
// [DefaultTimeout]. Up to [MaxRedirects] redirects are followed and the final
// URL after all redirects is returned in [Output.URL].
//
// The response body is capped at [MaxBodySize] bytes. The body read runs in a
// goroutine so context cancellation is honoured even during slow reads.
//
// Fetch returns an error when the URL is empty, the HTTP status is not 200 OK,
// the body exceeds [MaxBodySize], HTML conversion fails, or the context is
// cancelled or times out.
func Fetch(ctx context.Context, req Input) (Output, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return Output{}, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	timeout := DefaultTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("failed to create request: %w", err)
	}

	userAgent := DefaultUserAgent
	if req.UserAgent != "" {
		userAgent = req.UserAgent
	}
	httpReq.Header.Set("User-Agent", userAgent)

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("too many redirects (>%d)", MaxRedirects)
			}
			return nil
		},
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("request timeout or canceled: %w", err)
		}
		return Output{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}

	htmlBytes, err := readBody(ctx, resp.Body)
	if err != nil {
		return Output{}, err
	}

	markdown, err := htmltomarkdown.ConvertString(string(htmlBytes))
	if err != nil {
		return Output{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	output := Output{
		URL:      resp.Request.URL.String(),
		Markdown: markdown,
	}
	if req.IncludeHTML {
		output.HTML = string(htmlBytes)
	}
	return output, nil
}

// readBody reads at most [MaxBodySize] bytes from r. The read happens in a
// goroutine so a stalled server cannot block past the context deadline.
func readBody(ctx context.Context, r io.Reader) ([]byte, error) {
	type readResult struct {
		data []byte
		err  error
	}

	readChan := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(r, MaxBodySize))
		readChan <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout while reading response body: %w", ctx.Err())
	case result := <-readChan:
		if result.err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", result.err)
		}
		if len(result.data) == MaxBodySize {
			return nil, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
		}
		return result.data, nil
	}
}

// Input holds the parameters passed to the web fetch tool by the language
// model. URL is the only required field.
type Input struct {
	// URL is the web page to fetch, partial ("example.com") or full.
	URL string `json:"url" jsonschema:"description=The URL of the web page to fetch (supports partial URLs like 'example.com' or full URLs like 'https://example.com'),required"`

	// TimeoutSeconds overrides the default request timeout.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" jsonschema:"description=Request timeout in seconds (default: 30 max: 300),minimum=1,maximum=300"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `json:"user_agent,omitempty" jsonschema:"description=Custom User-Agent header for the HTTP request"`

	// IncludeHTML also returns the raw HTML alongside the Markdown.
	IncludeHTML bool `json:"include_html,omitempty" jsonschema:"description=When true includes the raw HTML content in the output"`
}

// Output holds the result produced by [Fetch]. URL reflects the final
// destination after all redirects. HTML is only populated when
// [Input.IncludeHTML] is true.
type Output struct {
	URL      string `json:"url" jsonschema:"description=The final URL after following all redirects and normalization"`
	Markdown string `json:"markdown" jsonschema:"description=The web page content converted to Markdown format"`
	HTML     string `json:"html,omitempty" jsonschema:"description=The raw HTML content (only populated when include_html is true)"`
}
