package upapi

import (
	"context"
	"net/url"
)

// CategoryListOptions narrows GET /categories. The zero value lists the
// whole tree, parents and children alike.
type CategoryListOptions struct {
	// Parent keeps only the direct children of this category id.
	Parent string
}

// ListCategories returns every category in one response; Up does not page
// this endpoint.
func (c *Client) ListCategories(ctx context.Context, opts CategoryListOptions) (*ListResponse, error) {
	var out ListResponse
	if err := c.get(ctx, "/categories", categoryQuery(opts), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func categoryQuery(opts CategoryListOptions) url.Values {
	if opts.Parent == "" {
		return nil
	}
	return url.Values{"filter[parent]": []string{opts.Parent}}
}
