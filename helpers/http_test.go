package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "es-AR")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>login</body></html>"))
	}))
	defer server.Close()

	status, err := Probe(context.Background(), server.URL)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestProbeErrorPageIsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	status, err := Probe(context.Background(), server.URL)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestProbeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := Probe(context.Background(), url)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Probe(ctx, "http://127.0.0.1:1")
	assert.Error(t, err)
}

func TestDecodeUTF8(t *testing.T) {
	// "Ingeniería" in ISO-8859-1
	latin1 := []byte("<html><body>Ingenier\xeda</body></html>")

	reader, err := DecodeUTF8(latin1, "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Ingeniería")

	reader, err = DecodeUTF8([]byte("<html><body>Ingeniería</body></html>"), "text/html; charset=utf-8")
	require.NoError(t, err)
	body, err = io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Ingeniería")
}

func TestDecodeUTF8WithoutCharset(t *testing.T) {
	// multi-byte text past the sniffing window still decodes as UTF-8
	page := "<html><body>" + strings.Repeat(" ", 2048) + "Córdoba</body></html>"

	reader, err := DecodeUTF8([]byte(page), "text/html")
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Córdoba")

	reader, err = DecodeUTF8([]byte("<html><body>Ingenier\xeda</body></html>"), "text/html")
	require.NoError(t, err)
	body, err = io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Ingeniería")
}
