package upapi

import (
	"net/url"
	"strconv"
)

const (
	defaultPageSize  = 100
	accountsPageSize = 50
)

// Resource models a generic JSON:API resource object.
type Resource struct {
	Type          string                            `json:"type"`
	ID            string                            `json:"id"`
	Attributes    map[string]any                    `json:"attributes,omitempty"`
	Relationships map[string]map[string]interface{} `json:"relationships,omitempty"`
	Links         map[string]string                 `json:"links,omitempty"`
}

// ResourceResponse models endpoints returning a single resource.
type ResourceResponse struct {
	Data Resource `json:"data"`
}

// ListResponse models paginated list endpoints.
type ListResponse struct {
	Data  []Resource `json:"data"`
	Links struct {
		Prev *string `json:"prev"`
		Next *string `json:"next"`
	} `json:"links"`
}

func pageSizeQueryWithSize(size int) url.Values {
	if size <= 0 {
		size = defaultPageSize
	}
	query := url.Values{}
	query.Set("page[size]", strconv.Itoa(size))
	return query
}
