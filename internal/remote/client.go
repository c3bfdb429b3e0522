package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// onlineProbeTimeout caps the Online check so a dead network fails fast
// instead of hanging for the full request timeout.
const onlineProbeTimeout = 3 * time.Second

// Config holds connection settings for the backend.
type Config struct {
	// BaseURL is the project root, e.g. "https://abc123.supabase.co".
	BaseURL string

	// APIKey authenticates every request. It is sent both as the apikey
	// header and as a bearer token.
	APIKey string

	// Timeout bounds a single request. Zero means 30 seconds.
	Timeout time.Duration

	// Logger receives connectivity diagnostics. Nil means stderr.
	Logger *log.Logger
}

// Client implements Service against a Supabase-style backend: PostgREST
// for rows, the storage API for photo blobs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *log.Logger
}

// NewClient creates a backend client from config.
//
// Example:
//
//	svc, err := remote.NewClient(remote.Config{
//	    BaseURL: "https://abc123.supabase.co",
//	    APIKey:  key,
//	})
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[remote] ", log.LstdFlags)
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger,
	}, nil
}

// QueryAll implements Service.QueryAll.
func (c *Client) QueryAll(ctx context.Context, table, orderBy string, dest interface{}) error {
	op := fmt.Sprintf("query %s", table)
	path := "/rest/v1/" + table + "?select=*"
	if orderBy != "" {
		path += "&order=" + url.QueryEscape(orderBy)
	}

	resp, err := c.doRequest(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}

	return c.parseResponse(op, path, resp, dest)
}

// Upsert implements Service.Upsert.
func (c *Client) Upsert(ctx context.Context, table string, record interface{}) error {
	op := fmt.Sprintf("upsert %s record", table)
	path := "/rest/v1/" + table

	payload, err := json.Marshal(record)
	if err != nil {
		return &RequestError{Op: op, Path: path, Err: fmt.Errorf("encode record: %v", err)}
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Prefer":       "resolution=merge-duplicates,return=minimal",
	}

	resp, err := c.doRequest(ctx, op, http.MethodPost, path, bytes.NewReader(payload), headers)
	if err != nil {
		return err
	}

	return c.parseResponse(op, path, resp, nil)
}

// UploadBlob implements Service.UploadBlob.
func (c *Client) UploadBlob(ctx context.Context, bucket, objectPath string, data []byte, opts UploadOptions) error {
	op := fmt.Sprintf("upload blob %s/%s", bucket, objectPath)
	path := "/storage/v1/object/" + bucket + "/" + objectPath

	headers := map[string]string{
		"Content-Type": blobContentType(objectPath),
	}
	if opts.CacheControl != "" {
		headers["Cache-Control"] = opts.CacheControl
	}
	if opts.Upsert {
		headers["x-upsert"] = "true"
	}

	resp, err := c.doRequest(ctx, op, http.MethodPost, path, bytes.NewReader(data), headers)
	if err != nil {
		return err
	}

	return c.parseResponse(op, path, resp, nil)
}

// Online implements Service.Online.
func (c *Client) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, onlineProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/v1/", nil)
	if err != nil {
		return false
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("Connectivity check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Any response counts: an auth or server error still means the
	// network path is up.
	return true
}

func (c *Client) doRequest(ctx context.Context, op, method, path string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &RequestError{Op: op, Path: path, Err: err}
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: op, Path: path, Err: fmt.Errorf("%w: %v", ErrOffline, err)}
	}

	return resp, nil
}

func (c *Client) parseResponse(op, path string, resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: op, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("read response: %v", err)}
	}

	if resp.StatusCode >= 400 {
		return &RequestError{Op: op, Path: path, Status: resp.StatusCode, Err: errors.New(serverMessage(body, resp.StatusCode))}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return &RequestError{Op: op, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %v", err)}
		}
	}

	return nil
}

// serverMessage pulls the error text out of a backend error body. The
// data API reports {"message": ...}, the storage API {"error": ...}.
func serverMessage(body []byte, status int) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return fmt.Sprintf("server returned status %d", status)
}

// blobContentType guesses a MIME type from the object path extension.
func blobContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
