package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `[{"insert":"Hello\n"}]`

func testLoader() *Loader {
	l := NewLoader()
	l.client.RetryMax = 2
	l.client.RetryWaitMin = time.Millisecond
	l.client.RetryWaitMax = time.Millisecond * 5
	return l
}

func TestLoadStdin(t *testing.T) {
	for _, in := range []string{"", "-"} {
		data, err := testLoader().Load(context.Background(), in, strings.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, doc, string(data))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	data, err := testLoader().Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))

	_, err = testLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadURLRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	data, err := testLoader().Load(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
	assert.EqualValues(t, 2, calls.Load())
}

func TestLoadURLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testLoader().Load(context.Background(), srv.URL, nil)
	var defined apierrors.DefinedError
	require.True(t, errors.As(err, &defined))
	assert.Equal(t, apierrors.ErrSourceFetch.Code, defined.Code)
	assert.Contains(t, defined.Err, "404")
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/doc.json"))
	assert.True(t, IsURL("http://localhost/doc"))
	assert.False(t, IsURL("doc.json"))
	assert.False(t, IsURL("ftp://host/doc"))
}
