package jellyfin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjpeters/reel/internal/domain"
	"github.com/mjpeters/reel/internal/log"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "test-token", "user1", log.Null())
	return c, srv
}

func TestFetchItems_BuildsPagedQuery(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/Users/user1/Items", r.URL.Path)
		w.Write([]byte(`{"Items":[{"Id":"m1","Name":"The Thing","Type":"Movie"}],"TotalRecordCount":412}`))
	})

	page, err := c.FetchItems(context.Background(), "lib1", "Movie", 200, 100)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "ParentId=lib1")
	assert.Contains(t, gotQuery, "IncludeItemTypes=Movie")
	assert.Contains(t, gotQuery, "StartIndex=200")
	assert.Contains(t, gotQuery, "Limit=100")
	assert.Contains(t, gotQuery, "Recursive=true")

	require.Len(t, page.Items, 1)
	assert.Equal(t, "lib1", page.Items[0].LibraryID, "fetched items are stamped with their library")
	assert.Equal(t, 412, page.Total)
}

func TestFetchItems_OmitsFilterWhenEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("IncludeItemTypes"))
		w.Write([]byte(`{"Items":[]}`))
	})

	_, err := c.FetchItems(context.Background(), "lib1", "", 0, 100)
	require.NoError(t, err)
}

func TestDoRequest_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"Items":[]}`))
	})

	_, err := c.ListLibraries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoRequest_ClassifiesStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   *domain.Error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrAuthRequired},
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"bad request", http.StatusBadRequest, domain.ErrServerRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.ListLibraries(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestDoRequest_CancellationWinsOverRetry(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.ListLibraries(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsCancelled(err), "retry backoff yields to cancellation")
}

func TestDoRequest_SendsAuthHeader(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-Emby-Authorization")
		assert.Contains(t, header, `Token="test-token"`)
		assert.Contains(t, header, `Client="Reel"`)
		w.Write([]byte(`{"Items":[]}`))
	})

	_, err := c.ListLibraries(context.Background())
	require.NoError(t, err)
}

func TestRecentlyAdded_ParsesBareArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Users/user1/Items/Latest", r.URL.Path)
		assert.Equal(t, "Movie", r.URL.Query().Get("IncludeItemTypes"))
		w.Write([]byte(`[{"Id":"m1","Name":"New Movie","Type":"Movie"}]`))
	})

	items, err := c.RecentlyAdded(context.Background(), "Movie", 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].ID)
}

func TestSetFavorite_UsesPostAndDelete(t *testing.T) {
	var methods []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "/Users/user1/FavoriteItems/m1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.SetFavorite(context.Background(), "m1", true))
	require.NoError(t, c.SetFavorite(context.Background(), "m1", false))
	assert.Equal(t, []string{http.MethodPost, http.MethodDelete}, methods)
}

func TestDeleteItem(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/Items/m1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteItem(context.Background(), "m1"))
}
