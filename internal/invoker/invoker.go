// Package invoker calls catalog APIs over HTTP.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobmcallan/apichat/internal/catalog"
	"github.com/bobmcallan/apichat/internal/common"
)

// maxResponseSize caps the API response body.
const maxResponseSize = 50 << 20 // 50MB

// Invoker resolves API names against the catalog and issues the requests.
type Invoker struct {
	baseURL    string
	catalog    *catalog.Catalog
	httpClient *http.Client
	logger     *common.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Invoker) { i.httpClient = c }
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) { i.httpClient = &http.Client{Timeout: d} }
}

// New creates an Invoker targeting baseURL.
func New(baseURL string, cat *catalog.Catalog, logger *common.Logger, opts ...Option) *Invoker {
	inv := &Invoker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		catalog:    cat,
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// BaseURL returns the configured API base URL.
func (i *Invoker) BaseURL() string {
	return i.baseURL
}

// Call invokes the API called name with params and returns the decoded JSON
// body of a 200 response. Every failure is returned as an error; callers
// decide how to present it.
func (i *Invoker) Call(ctx context.Context, name string, params map[string]string) (any, error) {
	d, ok := i.catalog.Lookup(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	path, forwarded, err := resolvePath(d, params)
	if err != nil {
		return nil, err
	}

	var body []byte
	switch d.Method {
	case http.MethodGet, http.MethodDelete:
		if q := encodeQuery(forwarded); q != "" {
			path += "?" + q
		}
		body, err = i.do(ctx, d.Method, path, nil)
	case http.MethodPost:
		payload, merr := json.Marshal(forwarded)
		if merr != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", merr)
		}
		body, err = i.do(ctx, d.Method, path, payload)
	default:
		return nil, &UnsupportedMethodError{Method: d.Method}
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var result any
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("error during API call: invalid JSON response: %w", err)
	}
	return result, nil
}

// do performs one HTTP request and returns the body of a 200 response.
func (i *Invoker) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	i.logger.Debug().Str("method", method).Str("path", path).Msg("api request")

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, i.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error during API call: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := i.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		i.logger.Error().Str("method", method).Str("path", path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("api request failed")
		return nil, fmt.Errorf("error during API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("error during API call: failed to read response: %w", err)
	}

	i.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("api response")

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// resolvePath substitutes {placeholders} in the descriptor path and returns
// the params left to send as query or body. Params used by a placeholder or
// declared "in: path" are not forwarded.
func resolvePath(d catalog.Descriptor, params map[string]string) (string, map[string]string, error) {
	consumed := make(map[string]bool)
	for _, p := range d.Parameters {
		if p.In == "path" {
			consumed[p.Name] = true
		}
	}

	var sb strings.Builder
	rest := d.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		name := rest[open+1 : open+end]
		val, ok := params[name]
		if !ok {
			return "", nil, &MissingPathParamError{Name: name}
		}
		sb.WriteString(rest[:open])
		sb.WriteString(url.PathEscape(val))
		consumed[name] = true
		rest = rest[open+end+1:]
	}
	sb.WriteString(rest)

	forwarded := make(map[string]string, len(params))
	for k, v := range params {
		if !consumed[k] {
			forwarded[k] = v
		}
	}
	return sb.String(), forwarded, nil
}

func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return q.Encode()
}
