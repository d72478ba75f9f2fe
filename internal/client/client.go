// Package client is a small Go client for the REST and SOAP listeners. It
// sends Basic credentials with every call and turns error responses into Go
// errors.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/atinyakov/itemgate/internal/models"
)

// Client talks to both listeners.
type Client struct {
	// RESTURL is the REST listener base URL, e.g. http://localhost:5000.
	RESTURL string
	// SOAPURL is the full SOAP endpoint URL, e.g. http://localhost:8001/soap.
	SOAPURL string
	// Username and Password are sent as Basic credentials.
	Username string
	Password string
	// HTTP performs the requests. http.DefaultClient is used when nil.
	HTTP *http.Client
}

// Error is a non-2xx REST response.
type Error struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Message is the "error" field of the body, or the raw body.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, code int) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == code
}

// NewHTTPClient returns an http.Client with a timeout. When caFile is not
// empty the server certificate must chain to that CA.
func NewHTTPClient(caFile string, timeout time.Duration) (*http.Client, error) {
	if caFile == "" {
		return &http.Client{Timeout: timeout}, nil
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12},
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// ListItems fetches the whole collection.
func (c *Client) ListItems(ctx context.Context) (map[int64]models.Item, error) {
	var out map[int64]models.Item
	if err := c.doJSON(ctx, http.MethodGet, "/items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateItem stores item and returns the assigned record.
func (c *Client) CreateItem(ctx context.Context, item models.Item) (models.Record, error) {
	var rec models.Record
	err := c.doJSON(ctx, http.MethodPost, "/items", item, &rec)
	return rec, err
}

// GetItem fetches the item stored under id.
func (c *Client) GetItem(ctx context.Context, id int64) (models.Item, error) {
	var out map[int64]models.Item
	if err := c.doJSON(ctx, http.MethodGet, itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	item, ok := out[id]
	if !ok {
		return nil, fmt.Errorf("response does not contain item %d", id)
	}
	return item, nil
}

// ReplaceItem overwrites the item stored under id.
func (c *Client) ReplaceItem(ctx context.Context, id int64, item models.Item) (models.Record, error) {
	var rec models.Record
	err := c.doJSON(ctx, http.MethodPut, itemPath(id), item, &rec)
	return rec, err
}

// DeleteItem removes the item stored under id.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id int64) string {
	return "/items/" + strconv.FormatInt(id, 10)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.RESTURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := string(bytes.TrimSpace(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
