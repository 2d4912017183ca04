package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer serves the routes of a server transport with an echo handler
func startServer(t *testing.T, logLevel string) string {
	t.Helper()

	server := &httpServerTransport{config: common.ServerConfig{LogLevel: logLevel}}
	server.RegisterHandler(func(shardId uint64, req []byte) []byte {
		return []byte(fmt.Sprintf("%d:%s", shardId, req))
	})

	srv := httptest.NewServer(server.routes())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRoundTrip(t *testing.T) {
	for _, level := range []string{"info", "debug"} {
		t.Run(level, func(t *testing.T) {
			url := startServer(t, level)

			client := NewHttpClientTransport()
			require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{url}, TimeoutSecond: 5, RetryCount: 2}))
			defer client.Close()

			resp, err := client.Send(12, []byte("ping"))
			require.NoError(t, err)
			assert.Equal(t, "12:ping", string(resp))

			// the body is sent again on every attempt
			resp, err = client.Send(3, []byte("again"))
			require.NoError(t, err)
			assert.Equal(t, "3:again", string(resp))
		})
	}
}

func TestEndpointWithoutScheme(t *testing.T) {
	url := startServer(t, "info")

	client := NewHttpClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{strings.TrimPrefix(url, "http://")}}))
	defer client.Close()

	resp, err := client.Send(1, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "1:x", string(resp))
}

func TestInvalidShardID(t *testing.T) {
	url := startServer(t, "info")

	resp, err := http.Post(url+"/not-a-number", "application/octet-stream", strings.NewReader("x"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2, err := http.Get(url + "/1")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestClientErrors(t *testing.T) {
	client := NewHttpClientTransport()

	_, err := client.Send(1, []byte("x"))
	assert.Error(t, err, "send before connect")

	assert.Error(t, client.Connect(common.ClientConfig{}))

	// nothing listens on this endpoint
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{"127.0.0.1:1"}, TimeoutSecond: 1}))
	_, err = client.Send(1, []byte("x"))
	assert.Error(t, err)
}

func TestCloseBeforeListen(t *testing.T) {
	server := NewHttpServerTransport()
	server.RegisterHandler(func(uint64, []byte) []byte { return nil })

	require.NoError(t, server.Close())
	require.NoError(t, server.Listen(common.ServerConfig{Endpoint: "127.0.0.1:0"}))
}
