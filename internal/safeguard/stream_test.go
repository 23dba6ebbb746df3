package safeguard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeongryuni/project-SafeGuard/internal/notification"
)

// sseHandler writes the given frames as one SSE response and closes.
func sseHandler(t *testing.T, wantToken string, frames []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantToken, r.URL.Query().Get("token"))
		assert.NotEmpty(t, r.Header.Get("X-Client-Instance"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}
}

func newStreamTest(t *testing.T, wantToken string, frames []string) (*Stream, *notification.Service) {
	t.Helper()

	server := httptest.NewServer(sseHandler(t, wantToken, frames))
	t.Cleanup(server.Close)

	svc := notification.NewService(notification.NewMemoryStore(), notification.ServiceConfig{
		Identity: "user1",
		PageSize: 5,
	}, nil)
	t.Cleanup(svc.Stop)

	settings := testSettings(wantToken)
	settings.Server.BaseURL = server.URL
	return NewStream(settings, svc, nil), svc
}

func TestStream_DeliversNotificationEvents(t *testing.T) {
	stream, svc := newStreamTest(t, "tok-123", []string{
		"event: notification\n" +
			`data: {"notificationId": 1, "type": "ANSWER", "message": "답변이 등록되었습니다", "isRead": false, "createdAt": "2026-03-15T12:00:00Z"}` + "\n\n",
		"event: notification\n" +
			`data: {"notificationId": 2, "type": "STATUS", "newStatus": "DONE", "isRead": false, "createdAt": 1895000000000}` + "\n\n",
	})

	err := stream.connect(context.Background())
	require.NoError(t, err)

	records := svc.Records()
	require.Len(t, records, 2)
	assert.Equal(t, 2, svc.UnreadCount())
	assert.NotNil(t, svc.Announcer().Current(), "a pushed record raises a toast")
}

func TestStream_IgnoresUnreadCountEvents(t *testing.T) {
	stream, svc := newStreamTest(t, "tok-123", []string{
		"event: unreadCount\ndata: 99\n\n",
	})

	require.NoError(t, stream.connect(context.Background()))
	assert.Zero(t, svc.UnreadCount(), "the server's count must never be adopted")
	assert.Empty(t, svc.Records())
}

func TestStream_DropsMalformedPayloads(t *testing.T) {
	stream, svc := newStreamTest(t, "tok-123", []string{
		"event: notification\ndata: {not json}\n\n",
		"event: notification\n" +
			`data: {"notificationId": 5, "type": "MANAGER", "message": "배정: 김철수", "isRead": false, "createdAt": "2026-03-15T12:00:00Z"}` + "\n\n",
	})

	require.NoError(t, stream.connect(context.Background()))

	records := svc.Records()
	require.Len(t, records, 1, "a bad payload must not take down the stream")
	assert.Equal(t, int64(5), records[0].ID)
}

func TestStream_DeduplicatesReplayedEvents(t *testing.T) {
	payload := "event: notification\n" +
		`data: {"notificationId": 9, "type": "info", "message": "점검 안내", "isRead": false, "createdAt": "2026-03-15T12:00:00Z"}` + "\n\n"
	stream, svc := newStreamTest(t, "tok-123", []string{payload, payload})

	require.NoError(t, stream.connect(context.Background()))
	assert.Len(t, svc.Records(), 1)
	assert.Equal(t, 1, svc.UnreadCount())
}

func TestStream_SkipsCommentsAndUnknownFields(t *testing.T) {
	stream, svc := newStreamTest(t, "tok-123", []string{
		": keepalive\n\n",
		"retry: 5000\nid: 12\nevent: notification\n" +
			`data: {"notificationId": 3, "type": "info", "message": "안내", "isRead": true, "createdAt": "2026-03-15T12:00:00Z"}` + "\n\n",
	})

	require.NoError(t, stream.connect(context.Background()))
	require.Len(t, svc.Records(), 1)
	assert.Zero(t, svc.UnreadCount())
}

func TestStream_RunWithoutToken(t *testing.T) {
	svc := notification.NewService(notification.NewMemoryStore(), notification.ServiceConfig{}, nil)
	t.Cleanup(svc.Stop)

	stream := NewStream(testSettings(""), svc, nil)
	require.NoError(t, stream.Run(context.Background()))
}

func TestStream_RunStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	svc := notification.NewService(notification.NewMemoryStore(), notification.ServiceConfig{}, nil)
	t.Cleanup(svc.Stop)

	settings := testSettings("tok-123")
	settings.Server.BaseURL = server.URL
	stream := NewStream(settings, svc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stream.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
