package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/restcontract/api-contract-tests/framework"
)

// DefaultTimeout is the per-call ceiling used when Config.Timeout is zero.
const DefaultTimeout = time.Second * 10

const jsonContentType = "application/json"

// Method is one of the HTTP verbs the client is able to issue.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// IsSupported returns true if the method is one of the five verbs the client issues.
func (m Method) IsSupported() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// Config contains everything the Client needs to know about the service under test. There
// is no global default base URL: it must always be passed in.
type Config struct {
	// BaseURL is the absolute http or https URL that request paths are relative to.
	BaseURL string

	// Timeout is the ceiling for each call, including reading the response body. Zero
	// means DefaultTimeout.
	Timeout time.Duration

	// Logger receives a line for each request and response. It may be nil.
	Logger framework.Logger

	// HTTPClient can be set to use a custom transport. Its Timeout field is ignored;
	// Config.Timeout is used instead.
	HTTPClient *http.Client
}

// Client issues requests to the service under test. Every call is a single attempt: there
// are no retries. A Client is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  framework.Logger
}

// Request describes one HTTP call. Path is relative to the client's base URL. Body, if not
// nil, is encoded as JSON; if it is already a []byte or json.RawMessage it is sent as is.
type Request struct {
	Method  Method
	Path    string
	Body    interface{}
	Headers map[string]string
}

// String returns the request line, for instance "GET /users/1".
func (r Request) String() string {
	return fmt.Sprintf("%s %s", r.Method, r.Path)
}

// ConfigError is returned by New if the configuration cannot be used. It is always detected
// before any request is attempted.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "invalid client configuration: " + e.Message
}

// New validates the configuration and creates a Client.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, &ConfigError{Message: "base URL is required"}
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("base URL %q: %s", config.BaseURL, err)}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigError{Message: fmt.Sprintf("base URL %q must be an absolute http or https URL", config.BaseURL)}
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}

	hc := &http.Client{}
	if config.HTTPClient != nil {
		copied := *config.HTTPClient
		hc = &copied
	}
	hc.Timeout = timeout

	return &Client{
		baseURL: u,
		http:    hc,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// BaseURL returns the URL that request paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Timeout returns the per-call ceiling.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// WithLogger returns a copy of the client that logs to a different logger, such as the
// debug logger of an individual test. The copy shares the underlying transport.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	c1 := *c
	c1.logger = logger
	return &c1
}

// ResolveURL returns the absolute URL for a path relative to the base URL.
func (c *Client) ResolveURL(path string) (string, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if rel.IsAbs() || rel.Host != "" {
		return "", fmt.Errorf("request path %q must be relative to the base URL", path)
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimPrefix(rel.Path, "/")
	u.RawPath = ""
	u.RawQuery = rel.RawQuery
	u.Fragment = ""
	return u.String(), nil
}

// Send issues a request and waits for the response or the timeout. The returned error is a
// *TransportError or *TimeoutError if the service could not be reached or did not answer in
// time; any other error means the request was never sent.
func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	if !r.Method.IsSupported() {
		return nil, fmt.Errorf("unsupported HTTP method %q", r.Method)
	}
	fullURL, err := c.ResolveURL(r.Path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	var bodyData []byte
	if r.Body != nil {
		bodyData, err = encodeBody(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(bodyData)
	}

	req, err := http.NewRequestWithContext(ctx, string(r.Method), fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", jsonContentType)
	if r.Body != nil {
		req.Header.Set("Content-Type", jsonContentType)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	if bodyData != nil {
		c.logger.Printf("%s %s %s", r.Method, fullURL, string(bodyData))
	} else {
		c.logger.Printf("%s %s", r.Method, fullURL)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classifyError(r.Method, fullURL, time.Since(start), err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, c.classifyError(r.Method, fullURL, elapsed, err)
	}

	c.logger.Printf("%s %s -> %d (%s): %s", r.Method, fullURL, resp.StatusCode, elapsed, truncate(respData, 2000))

	return &Response{
		Request: r,
		URL:     fullURL,
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    respData,
		Elapsed: elapsed,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Send(ctx, Request{Method: MethodGet, Path: path})
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Send(ctx, Request{Method: MethodPost, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Send(ctx, Request{Method: MethodPut, Path: path, Body: body})
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Send(ctx, Request{Method: MethodPatch, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Send(ctx, Request{Method: MethodDelete, Path: path})
}

func (c *Client) classifyError(method Method, fullURL string, elapsed time.Duration, err error) error {
	if isTimeout(err) {
		c.logger.Printf("%s %s timed out after %s", method, fullURL, elapsed)
		return &TimeoutError{Method: method, URL: fullURL, Timeout: c.timeout, Err: err}
	}
	c.logger.Printf("%s %s failed: %s", method, fullURL, err)
	return &TransportError{Method: method, URL: fullURL, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	}
	return json.Marshal(body)
}

func truncate(data []byte, max int) string {
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}
