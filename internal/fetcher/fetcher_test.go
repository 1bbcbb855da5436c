package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	calls int
	html  string
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

func TestFetchDirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		assert.Equal(t, "en-US,en;q=0.9", r.Header.Get("Accept-Language"))
		assert.Equal(t, "1", r.Header.Get("DNT"))
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	renderer := &fakeRenderer{}
	f := New(renderer, nil, nil)

	res, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, TierDirect, res.Tier)
	assert.Equal(t, "<html>ok</html>", res.HTML)
	assert.Equal(t, 0, renderer.calls)
}

func TestFetchNotFoundNeverFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	renderer := &fakeRenderer{}
	f := New(renderer, nil, nil)

	_, err := f.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, renderer.calls)
}

func TestFetchBlockSignalFallsBackExactlyOnce(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		renderer := &fakeRenderer{html: "<html>rendered</html>"}
		f := New(renderer, nil, nil)

		res, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, TierRendered, res.Tier)
		assert.Equal(t, "<html>rendered</html>", res.HTML)
		assert.Equal(t, 1, renderer.calls, "status %d", status)

		server.Close()
	}
}

func TestFetchRenderedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	renderer := &fakeRenderer{err: errors.New("chromium crashed")}
	f := New(renderer, nil, nil)

	_, err := f.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 1, renderer.calls)
}

func TestFetchUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	renderer := &fakeRenderer{}
	f := New(renderer, nil, nil)

	_, err := f.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTeapot, statusErr.Code)
	assert.Equal(t, 0, renderer.calls)
}

func TestFetchNetworkFailureNeverFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	renderer := &fakeRenderer{}
	f := New(renderer, nil, nil)

	_, err := f.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.Equal(t, 0, renderer.calls)
}
