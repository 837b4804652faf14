package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds version lookups when no client is supplied
const DefaultTimeout = 30 * time.Second

// RequestOptions customizes the version endpoint request
type RequestOptions struct {
	Method  string            // Defaults to GET
	Headers map[string]string // Extra headers, e.g. Authorization
}

// Fetcher issues GET requests and decodes JSON responses
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher; a nil client gets DefaultTimeout
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Fetcher{client: client}
}

// FetchJSON requests url and decodes the body into out.
// Any non-2xx status is a network error naming the URL and status.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return networkError(fmt.Sprintf("%s  invalid request", url), err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return networkError(fmt.Sprintf("%s  request failed", url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return networkError(statusMessage(resp), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return parseError(fmt.Sprintf("%s  invalid JSON response", url), err)
	}

	return nil
}

// statusMessage mirrors "<url>  <status text>", or "<url> Status Code:<n>"
// when the server sent no reason phrase.
func statusMessage(resp *http.Response) string {
	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}

	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text != "" {
		return fmt.Sprintf("%s  %s", url, text)
	}
	return fmt.Sprintf("%s Status Code:%d", url, resp.StatusCode)
}
