package syncer

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/upapi"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.OpenWithConfig(context.Background(), storage.Config{
		Mode: storage.ModePlain,
		Path: filepath.Join(t.TempDir(), "ledgerline.db"),
	})
	if err != nil {
		t.Fatalf("OpenWithConfig() unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type txFixture struct {
	id        string
	account   string
	category  string
	parent    string
	value     string
	baseUnits int64
	createdAt string
	tags      []string
}

func (f txFixture) resource() map[string]any {
	rel := func(typ, id string) map[string]any {
		if id == "" {
			return map[string]any{"data": nil}
		}
		return map[string]any{"data": map[string]any{"type": typ, "id": id}}
	}
	tags := make([]any, 0, len(f.tags))
	for _, tag := range f.tags {
		tags = append(tags, map[string]any{"type": "tags", "id": tag})
	}
	return map[string]any{
		"type": "transactions",
		"id":   f.id,
		"attributes": map[string]any{
			"status":      "SETTLED",
			"rawText":     nil,
			"description": "Merchant " + f.id,
			"message":     nil,
			"amount": map[string]any{
				"currencyCode":     "AUD",
				"value":            f.value,
				"valueInBaseUnits": f.baseUnits,
			},
			"settledAt": nil,
			"createdAt": f.createdAt,
		},
		"relationships": map[string]any{
			"account":         rel("accounts", f.account),
			"transferAccount": rel("accounts", ""),
			"category":        rel("categories", f.category),
			"parentCategory":  rel("categories", f.parent),
			"tags":            map[string]any{"data": tags},
		},
	}
}

// upStub serves canned list responses and records the requests it saw.
type upStub struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	data     []map[string]any
}

func newUpStub(t *testing.T, data ...map[string]any) (*upStub, *upapi.Client) {
	t.Helper()
	stub := &upStub{status: http.StatusOK, data: data}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return stub, upapi.NewWithBaseURL("test-token", srv.URL)
}

func (s *upStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r)
	status := s.status
	data := s.data
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []any{map[string]any{"status": "500", "title": "Internal Server Error", "detail": "boom"}},
		})
		return
	}
	if data == nil {
		data = []map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":  data,
		"links": map[string]any{"prev": nil, "next": nil},
	})
}

func (s *upStub) setStatus(status int) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *upStub) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *upStub) last() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}
