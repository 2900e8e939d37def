package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet && r.URL.Path == "/" {
			_, _ = io.WriteString(w, `{"version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return c
}

func TestClient_Search(t *testing.T) {
	var gotQuery map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/_search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_id":"p1","_source":{"name":"Kopi"}}]}}`)
	})

	res, err := c.Search(context.Background(), "products", map[string]any{"query": map[string]any{"match_all": map[string]any{}}})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "query")
	assert.Equal(t, 1, res.Hits.Total.Value)
	require.Len(t, res.Hits.Hits, 1)
	assert.Equal(t, "p1", res.Hits.Hits[0].ID)
	assert.JSONEq(t, `{"name":"Kopi"}`, string(res.Hits.Hits[0].Source))
}

func TestClient_ToleratedErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/products":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"type":"resource_already_exists_exception"}}`)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"boom"}`)
		}
	})

	assert.NoError(t, c.CreateIndex(context.Background(), "products", `{}`))
	assert.NoError(t, c.Delete(context.Background(), "products", "missing"))

	err := c.Index(context.Background(), "products", "p1", map[string]string{"name": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
