// Package httpfetch implements the typed HTTP fetch client (spec
// §4.5, C5), grounded on pkg/musicbrainz/client.go's http.Client usage
// generalized into the contract spec.md describes.
package httpfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Error kinds (spec §4.5, §7).
var (
	ErrRequest  = errors.New("httpfetch: request failed")
	ErrParse    = errors.New("httpfetch: response body not parseable")
	ErrServer   = errors.New("httpfetch: server error")
	ErrEmpty    = errors.New("httpfetch: empty response")
)

// Client is a constructor-time-timeout HTTP client with JSON/binary
// convenience methods.
type Client struct {
	http *http.Client
}

// New builds a Client with the given request timeout.
func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

func redactHeader(key, value string) string {
	if !strings.EqualFold(key, "Authorization") {
		return value
	}
	if len(value) <= 15 {
		return value + "..."
	}
	return value[:15] + "..."
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, string, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
		slog.Debug("httpfetch: request header", "key", k, "value", redactHeader(k, v))
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	reader := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, "", fmt.Errorf("%w: gzip: %v", ErrParse, err)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRequest, err)
	}

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("%w: http %d", ErrServer, resp.StatusCode)
	}
	if len(data) == 0 {
		return nil, resp.Header.Get("Content-Type"), ErrEmpty
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// GetText fetches url and returns the body as a UTF-8 string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	data, _, err := c.do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetBinary fetches url and returns the raw bytes plus content type.
func (c *Client) GetBinary(ctx context.Context, url string) ([]byte, string, error) {
	return c.do(ctx, http.MethodGet, url, nil, nil)
}

// GetJSONWithHeaders fetches url with extra headers and decodes the
// body as JSON into dst.
func (c *Client) GetJSONWithHeaders(ctx context.Context, url string, headers map[string]string, dst any) error {
	data, _, err := c.do(ctx, http.MethodGet, url, headers, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// PostJSONValue POSTs body as JSON and decodes the response into dst.
func (c *Client) PostJSONValue(ctx context.Context, url string, body any, dst any) error {
	return c.PostJSONValueWithHeaders(ctx, url, nil, body, dst)
}

// PostJSONValueWithHeaders POSTs body as JSON with extra headers.
func (c *Client) PostJSONValueWithHeaders(ctx context.Context, url string, headers map[string]string, body any, dst any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode body: %v", ErrRequest, err)
	}
	hdrs := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		hdrs[k] = v
	}
	data, _, err := c.do(ctx, http.MethodPost, url, hdrs, encoded)
	if err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// PutJSONValueWithHeaders PUTs body as JSON with extra headers.
func (c *Client) PutJSONValueWithHeaders(ctx context.Context, url string, headers map[string]string, body any, dst any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode body: %v", ErrRequest, err)
	}
	hdrs := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		hdrs[k] = v
	}
	data, _, err := c.do(ctx, http.MethodPut, url, hdrs, encoded)
	if err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}
