package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemlogs/folio/internal/watcher"
)

// startReloadServer serves a hot-reload server on a real listener so the
// allowed origin can be derived from its address.
func startReloadServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	ts := httptest.NewUnstartedServer(nil)
	cfg := testConfig()
	cfg.Server.Environment = "development"
	cfg.Development.HotReload = true
	cfg.Site.BaseURL = "http://" + ts.Listener.Addr().String()

	s := newTestServer(t, cfg, testContent())
	require.NotNil(t, s.Hub())

	ts.Config.Handler = s.Handler()
	ts.Start()
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Hub().Run(ctx)

	return s, ts
}

func dial(ctx context.Context, ts *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	return websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{origin}},
	})
}

func TestLiveReloadBroadcast(t *testing.T) {
	s, ts := startReloadServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := dial(ctx, ts, ts.URL)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	assert.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	err = s.handleContentChange(ctx, []watcher.ChangeEvent{{Type: watcher.EventTypeModified, Path: "content/blog/en/hello-world.md"}})
	require.NoError(t, err)

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageContentChanged, msg.Type)
	assert.Equal(t, "content/blog/en/hello-world.md", msg.Target)
	assert.False(t, msg.Timestamp.IsZero())

	err = s.handleContentChange(ctx, []watcher.ChangeEvent{
		{Type: watcher.EventTypeModified, Path: "content/blog/en/hello-world.md"},
		{Type: watcher.EventTypeCreated, Path: "content/resume/en.yaml"},
	})
	require.NoError(t, err)

	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	var reload UpdateMessage
	require.NoError(t, json.Unmarshal(data, &reload))
	assert.Equal(t, MessageFullReload, reload.Type)
	assert.Empty(t, reload.Target)
}

func TestLiveReloadRejectsForeignOrigin(t *testing.T) {
	_, ts := startReloadServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	testCases := []struct {
		name   string
		origin string
	}{
		{"other host", "http://evil.example"},
		{"non-http scheme", "file://" + strings.TrimPrefix(ts.URL, "http://")},
		{"missing origin", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, resp, err := dial(ctx, ts, tc.origin)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	s, ts := startReloadServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := dial(ctx, ts, ts.URL)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Hub().Close()

	_, _, err = conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	assert.NoError(t, s.Hub().Broadcast(UpdateMessage{Type: MessageFullReload}))
}
