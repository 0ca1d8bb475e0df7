package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnconfigured(t *testing.T) {
	c, err := New("", "us-east-1", "", "", "b", "")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = New("http://s3.local", "us-east-1", "k", "s", "", "")
	assert.Error(t, err)
}

func TestPhotoKey(t *testing.T) {
	k := PhotoKey(12, ".JPG")
	assert.True(t, strings.HasPrefix(k, "avatars/12/"))
	assert.True(t, strings.HasSuffix(k, ".jpg"))
	assert.NotEqual(t, k, PhotoKey(12, ".JPG"))
}

func TestURL(t *testing.T) {
	c, err := New("http://s3.local/", "us-east-1", "k", "s", "photos", "")
	require.NoError(t, err)
	assert.Equal(t, "http://s3.local/photos/a/b.png", c.URL("a/b.png"))

	c, err = New("http://s3.local", "us-east-1", "k", "s", "photos", "https://cdn.local/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.local/a/b.png", c.URL("a/b.png"))
}

func TestPutPathStyle(t *testing.T) {
	var (
		mu          sync.Mutex
		gotPath     string
		gotBody     []byte
		contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "us-east-1", "k", "s", "photos", "")
	require.NoError(t, err)

	body := []byte("png-bytes")
	require.NoError(t, c.Put(context.Background(), "avatars/1/x.png", "image/png", bytes.NewReader(body), int64(len(body))))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/photos/avatars/1/x.png", gotPath)
	assert.Equal(t, "image/png", contentType)
	assert.Contains(t, string(gotBody), "png-bytes")
}
