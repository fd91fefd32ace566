package upapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.up.com.au/api/v1"

// Client is a minimal Up API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client using the default Up API base URL.
func New(token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewWithBaseURL creates a client with a custom base URL.
// Intended for tests and local stubs.
func NewWithBaseURL(token, baseURL string) *Client {
	c := New(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// APIError is a non-2xx response. Detail carries the first JSON:API error
// detail when the body has one.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("up api status %d: %s", e.StatusCode, e.Detail)
	case e.Title != "":
		return fmt.Sprintf("up api status %d: %s", e.StatusCode, e.Title)
	default:
		return fmt.Sprintf("up api status %d", e.StatusCode)
	}
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.getURL(ctx, u, out)
}

func (c *Client) getURL(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	if json.Unmarshal(raw, &body) == nil && len(body.Errors) > 0 {
		apiErr.Title = body.Errors[0].Title
		apiErr.Detail = body.Errors[0].Detail
	}
	return apiErr
}

// listAll fetches path and follows links.next until the last page or until
// limit resources have been collected. limit <= 0 means no limit.
func (c *Client) listAll(ctx context.Context, path string, query url.Values, limit int) (*ListResponse, error) {
	var page ListResponse
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}

	out := &ListResponse{
		Data: append([]Resource{}, page.Data...),
	}
	out.Links = page.Links

	nextURL := page.Links.Next
	for nextURL != nil && *nextURL != "" {
		if limit > 0 && len(out.Data) >= limit {
			break
		}
		resolvedURL, err := resolveListURL(c.baseURL, *nextURL)
		if err != nil {
			return nil, err
		}

		page = ListResponse{}
		if err := c.getURL(ctx, resolvedURL, &page); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, page.Data...)
		out.Links = page.Links
		nextURL = page.Links.Next
	}

	if limit > 0 && len(out.Data) > limit {
		out.Data = out.Data[:limit]
	}
	return out, nil
}

func resolveListURL(baseURL, next string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("parse next page URL: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
