package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{"numFound":2,"docs":[
	{"key":"/works/OL1W","title":"The Hobbit","author_name":["J.R.R. Tolkien"],"first_publish_year":1937},
	{"key":"/works/OL2W","title":"Untitled","author_name":[]}
]}`

func TestSearchBooks(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c := NewClient("bookstore-test", 100, 0, WithBaseURL(srv.URL))
	res, err := c.SearchBooks(context.Background(), "fantasy fiction", 5)
	require.NoError(t, err)

	assert.Equal(t, "subject:fantasy fiction", gotQuery)
	assert.Equal(t, "bookstore-test", gotUA)
	assert.Equal(t, 2, res.NumFound)
	require.Len(t, res.Docs, 2)
	assert.Equal(t, "The Hobbit", res.Docs[0].Title)
	assert.Equal(t, []string{"J.R.R. Tolkien"}, res.Docs[0].AuthorNames)
	assert.Equal(t, 1937, res.Docs[0].FirstPublishYear)
	assert.Zero(t, res.Docs[1].FirstPublishYear)
}

func TestSearchBooks_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("t", 100, 3, WithBaseURL(srv.URL))
	_, err := c.SearchBooks(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSearchBooks_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c := NewClient("t", 100, 1, WithBaseURL(srv.URL))
	res, err := c.SearchBooks(context.Background(), "x", 2)
	require.NoError(t, err)
	assert.Len(t, res.Docs, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSearchBooks_GivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("t", 100, 0, WithBaseURL(srv.URL))
	_, err := c.SearchBooks(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 0 retries")
}

func TestSearchBooks_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("t", 100, 0, WithBaseURL("http://127.0.0.1:1"))
	_, err := c.SearchBooks(ctx, "x", 1)
	assert.Error(t, err)
}
