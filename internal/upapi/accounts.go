package upapi

import "context"

// ListAccounts calls GET /accounts with page[size]=50 and follows pagination.
func (c *Client) ListAccounts(ctx context.Context) (*ListResponse, error) {
	return c.listAll(ctx, "/accounts", pageSizeQueryWithSize(accountsPageSize), 0)
}

// GetAccount calls GET /accounts/{id}.
func (c *Client) GetAccount(ctx context.Context, id string) (*ResourceResponse, error) {
	var out ResourceResponse
	if err := c.get(ctx, "/accounts/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
