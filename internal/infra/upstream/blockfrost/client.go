// Package blockfrost implements the chainscan.ChainClient port against a
// Blockfrost-compatible REST API. Responses with missing optional fields
// (inputs, outputs, metadata) degrade to empty values; they are never a
// parse failure.
package blockfrost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/luccasmb/chainhook/internal/chainscan"
	transporthttp "github.com/luccasmb/chainhook/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrNotFound is returned when the provider does not know the requested
// resource.
var ErrNotFound = errors.New("resource not found")

// projectIDHeader carries the API key on every request.
const projectIDHeader = "project_id"

// Client talks to one Blockfrost-compatible endpoint.
type Client struct {
	http      *retryablehttp.Client
	baseURL   string
	projectID string
}

// Ensure the client satisfies the scanner's upstream port.
var _ chainscan.ChainClient = (*Client)(nil)

// NewClient creates a client for the given base URL and project API key.
// When httpClient is nil a default retrying client is used; upstream reads
// are idempotent, so transport-level retries are safe here.
func NewClient(baseURL, projectID string, httpClient *retryablehttp.Client) *Client {
	if httpClient == nil {
		httpClient = transporthttp.NewClient()
	}

	return &Client{
		http:      httpClient,
		baseURL:   baseURL,
		projectID: projectID,
	}
}

// get performs a GET against path and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set(projectIDHeader, c.projectID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("upstream returned status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// escape makes an address or hash safe for use as a path segment.
func escape(segment string) string {
	return url.PathEscape(segment)
}
