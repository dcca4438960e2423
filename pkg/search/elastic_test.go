package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES answers just enough of the Elasticsearch API for ProductIndex.
type fakeES struct {
	created  bool
	bulkBody string
	query    string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/products":
		if f.created {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/products":
		f.created = true
		_, _ = io.WriteString(w, `{"acknowledged":true,"shards_acknowledged":true,"index":"products"}`)
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		raw, _ := io.ReadAll(r.Body)
		f.bulkBody = string(raw)
		_, _ = io.WriteString(w, `{"took":1,"errors":false,"items":[]}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		raw, _ := io.ReadAll(r.Body)
		f.query = string(raw)
		_, _ = io.WriteString(w, `{"took":1,"timed_out":false,"hits":{"total":{"value":7,"relation":"eq"},"hits":[
			{"_index":"products","_id":"3","_score":2.0,"_source":{"id":3,"name":"Orange"}},
			{"_index":"products","_id":"1","_score":1.0,"_source":{"id":1,"name":"Blood orange"}}]}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestIndex(t *testing.T) (*ProductIndex, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	idx, err := NewProductIndex(srv.URL, "products")
	require.NoError(t, err)
	return idx, fake
}

func TestEnsureIndexCreatesOnce(t *testing.T) {
	idx, fake := newTestIndex(t)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.True(t, fake.created)
	require.NoError(t, idx.EnsureIndex(context.Background()))
}

func TestIndexAll(t *testing.T) {
	idx, fake := newTestIndex(t)

	require.NoError(t, idx.IndexAll(context.Background(), nil))
	assert.Empty(t, fake.bulkBody)

	err := idx.IndexAll(context.Background(), []ProductDoc{
		{ID: 1, Name: "Orange", Slug: "orange", Category: "Fruits", Price: 89.9},
		{ID: 2, Name: "Carrot", Slug: "carrot", Category: "Vegetables", Price: 39.9},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(fake.bulkBody), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"_id":"1"`)
	var doc ProductDoc
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &doc))
	assert.Equal(t, "carrot", doc.Slug)
}

func TestSearchIDs(t *testing.T) {
	idx, fake := newTestIndex(t)

	ids, total, err := idx.SearchIDs(context.Background(), "orange", 5, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1}, ids)
	assert.EqualValues(t, 7, total)
	assert.Contains(t, fake.query, `"from":5`)
	assert.Contains(t, fake.query, "name^3")
}
