package wordcount

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API defines the word-count service operations used by the tracker.
// It is implemented by *Client and can be faked in tests.
type API interface {
	Upload(ctx context.Context, path string) (string, error)
	FetchStatus(ctx context.Context, identifier string) (JobStatus, error)
	FetchResult(ctx context.Context, identifier string) (Result, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the word-count HTTP API.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	userAgent      string
	requestTimeout time.Duration
	uploadTimeout  time.Duration
	logger         *slog.Logger
}

// Options tune a Client. Zero values use defaults.
type Options struct {
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	Logger         *slog.Logger
	HTTPClient     *http.Client
}

const (
	defaultAPIURL         = "http://localhost:8000"
	defaultUserAgent      = "wordcloud/0.1"
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 5 * time.Minute

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	// FileField is the multipart field holding the uploaded file.
	FileField = "file"

	maxTextBody = 64 << 10
)

// NewClient builds a Client for the service at apiURL (host:port or full URL).
func NewClient(apiURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Cookies set by the service are replayed on every later call.
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar}
	}

	c := &Client{
		baseURL:        base,
		http:           httpClient,
		userAgent:      defaultUserAgent,
		requestTimeout: opts.RequestTimeout,
		uploadTimeout:  opts.UploadTimeout,
		logger:         opts.Logger,
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = defaultRequestTimeout
	}
	if c.uploadTimeout <= 0 {
		c.uploadTimeout = defaultUploadTimeout
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// BaseURL returns the normalized service URL.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// Upload sends the file at path as multipart field "file" and returns the
// job identifier assigned by the service.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	body, contentType := multipartBody(file, filepath.Base(path))

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	rel := &url.URL{Path: "/upload"}
	text, err := c.doText(ctx, http.MethodPost, rel, body, contentType)
	if err != nil {
		return "", err
	}
	identifier := unquote(text)
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("api %s returned an empty identifier", rel.Path)
	}
	return identifier, nil
}

// FetchStatus retrieves the processing status for identifier.
func (c *Client) FetchStatus(ctx context.Context, identifier string) (JobStatus, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	if identifier == "" {
		return "", fmt.Errorf("identifier required")
	}
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	rel := &url.URL{Path: "/upload/status", RawQuery: identifierQuery(identifier)}
	text, err := c.doText(ctx, http.MethodGet, rel, nil, "")
	if err != nil {
		return "", err
	}
	status := ParseStatus(text)
	if status == "" {
		return "", fmt.Errorf("api %s returned an empty status", rel.Path)
	}
	return status, nil
}

// FetchResult retrieves the result payload for identifier. The payload may
// describe a job that is still processing.
func (c *Client) FetchResult(ctx context.Context, identifier string) (Result, error) {
	if c == nil {
		return Result{}, fmt.Errorf("client is nil")
	}
	if identifier == "" {
		return Result{}, fmt.Errorf("identifier required")
	}
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	rel := &url.URL{Path: "/upload", RawQuery: identifierQuery(identifier)}
	var payload Result
	if err := c.doJSON(ctx, rel, &payload); err != nil {
		return Result{}, err
	}
	return payload, nil
}

func (c *Client) doJSON(ctx context.Context, rel *url.URL, dest any) error {
	resp, err := c.send(ctx, http.MethodGet, rel, nil, "", "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doText(ctx context.Context, method string, rel *url.URL, body io.Reader, contentType string) (string, error) {
	resp, err := c.send(ctx, method, rel, body, contentType, "text/plain, application/json")
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	// Only the line terminator is dropped; the body is otherwise kept verbatim.
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

func (c *Client) send(ctx context.Context, method string, rel *url.URL, body io.Reader, contentType, accept string) (*http.Response, error) {
	reqURL := c.baseURL.JoinPath(rel.Path)
	reqURL.RawQuery = rel.RawQuery
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			slog.String("method", method),
			slog.String("path", rel.Path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", rel.Path),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	return resp, nil
}

// multipartBody streams file as a multipart form so large uploads are not
// buffered in memory.
func multipartBody(file io.Reader, name string) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(FileField, name)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			_ = pw.CloseWithError(fmt.Errorf("copy upload: %w", err))
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()
	return pr, mw.FormDataContentType()
}

func identifierQuery(identifier string) string {
	values := url.Values{}
	values.Set("identifier", identifier)
	return values.Encode()
}

func unquote(text string) string {
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal([]byte(text), &s); err == nil {
			return s
		}
	}
	return text
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	// A path prefix such as /api is kept; request paths are joined onto it.
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
