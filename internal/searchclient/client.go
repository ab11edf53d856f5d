// Package searchclient talks to the moviesearch HTTP service.
package searchclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// maxErrorBody bounds how much of a failed response is kept on StatusError.
const maxErrorBody = 512

// Client issues GET requests against a base URL. It never retries and
// applies no timeout of its own; callers bound requests through ctx or
// WithHTTPClient.
type Client struct {
	base *url.URL
	http *http.Client
	log  logr.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing at V(1).
func WithLogger(log logr.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New parses baseURL, which must be absolute http(s).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}
	c := &Client{base: u, http: http.DefaultClient, log: logr.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Suggest calls GET /search?query=<query> and returns the titles in
// response order. The query is form encoded, so a space is sent as "+"
// and reserved characters as %XX.
func (c *Client) Suggest(ctx context.Context, query string) ([]string, error) {
	body, err := c.get(ctx, "/search", url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}
	return decodeStrings(body)
}

// Resolve calls GET /resolve?query=<query> and returns the closest title.
func (c *Client) Resolve(ctx context.Context, query string) (string, error) {
	body, err := c.get(ctx, "/resolve", url.Values{"query": {query}})
	if err != nil {
		return "", err
	}
	var out struct {
		Title *string `json:"title"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Title == nil {
		return "", fmt.Errorf("%w: expected {\"title\": string}, got %s", ErrUnexpectedShape, describe(body))
	}
	return *out.Title, nil
}

// Similar calls GET /similar?title=<title>&k=<k>. k <= 0 lets the server
// pick its default.
func (c *Client) Similar(ctx context.Context, title string, k int) ([]string, error) {
	params := url.Values{"title": {title}}
	if k > 0 {
		params.Set("k", strconv.Itoa(k))
	}
	body, err := c.get(ctx, "/similar", params)
	if err != nil {
		return nil, err
	}
	return decodeStrings(body)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.V(1).Info("request", "url", u.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// decodeStrings accepts a JSON array. String elements are used as is;
// numbers are printed in shortest form (1e3 becomes "1000", 1.0 becomes
// "1"); booleans and null keep their JSON text. Nested objects or
// arrays have no display value and fail the whole response.
func decodeStrings(body []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrUnexpectedShape, describe(body))
	}
	out := make([]string, 0, len(raw))
	for i, elem := range raw {
		switch kind := describe(elem); kind {
		case "string":
			var s string
			if err := json.Unmarshal(elem, &s); err != nil {
				return nil, fmt.Errorf("%w: element %d: %v", ErrUnexpectedShape, i, err)
			}
			out = append(out, s)
		case "number":
			f, err := strconv.ParseFloat(string(bytes.TrimSpace(elem)), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: element %d: %v", ErrUnexpectedShape, i, err)
			}
			out = append(out, formatNumber(f))
		case "boolean", "null":
			out = append(out, string(bytes.TrimSpace(elem)))
		default:
			return nil, fmt.Errorf("%w: element %d is %s", ErrUnexpectedShape, i, kind)
		}
	}
	return out, nil
}

// formatNumber prints f the way a browser would: plain decimals between
// 1e-6 and 1e21, exponent form with no zero padding outside that range.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// describe names the JSON kind of body for error messages.
func describe(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "empty body"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		if json.Valid(trimmed) {
			return "number"
		}
		return "invalid JSON"
	}
}
