package safeguard

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/jeongryuni/project-SafeGuard/internal/conf"
	"github.com/jeongryuni/project-SafeGuard/internal/errors"
	"github.com/jeongryuni/project-SafeGuard/internal/httpclient"
	"github.com/jeongryuni/project-SafeGuard/internal/logging"
	"github.com/jeongryuni/project-SafeGuard/internal/notification"
)

const (
	// eventNotification carries a single pushed record.
	eventNotification = "notification"
	// eventUnreadCount is sent by the server but intentionally ignored;
	// the count is derived locally.
	eventUnreadCount = "unreadCount"

	streamInitialBackoff = time.Second
	streamMaxBackoff     = 30 * time.Second
)

// Stream holds the SSE push subscription and feeds decoded records into the
// notification service.
type Stream struct {
	http     *httpclient.Client
	baseURL  string
	token    string
	clientID string
	svc      *notification.Service
	metrics  *notification.Metrics
	logger   *slog.Logger
}

// NewStream builds a push subscription for the given service. Metrics may be
// nil.
func NewStream(settings *conf.Settings, svc *notification.Service, metrics *notification.Metrics) *Stream {
	cfg := httpclient.DefaultConfig()
	// Streaming connections stay open indefinitely; only the context ends them.
	cfg.DefaultTimeout = -1
	cfg.ResponseHeaderTimeout = settings.Server.Timeout

	logger := logging.ForService("safeguard-stream")
	if logger == nil {
		logger = slog.Default().With("service", "safeguard-stream")
	}

	return &Stream{
		http:     httpclient.New(&cfg),
		baseURL:  settings.Server.BaseURL,
		token:    settings.Server.Token,
		clientID: uuid.New().String(),
		svc:      svc,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run keeps the subscription alive until the context is cancelled,
// reconnecting with capped exponential backoff. Without a token it returns
// immediately.
func (s *Stream) Run(ctx context.Context) error {
	if s.token == "" {
		s.logger.Info("no auth token, push subscription disabled")
		return nil
	}

	backoff := streamInitialBackoff
	for {
		err := s.connect(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.logger.Warn("stream disconnected, reconnecting",
				"error", err,
				"backoff", backoff)
		} else {
			s.logger.Info("stream closed by server, reconnecting",
				"backoff", backoff)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > streamMaxBackoff {
			backoff = streamMaxBackoff
		}
	}
}

// connect opens one SSE connection and consumes events until it ends.
func (s *Stream) connect(ctx context.Context) error {
	endpoint := s.baseURL + "/api/notifications/subscribe?token=" + url.QueryEscape(s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return errors.New(err).
			Component("safeguard").
			Category(errors.CategoryNetwork).
			Context("operation", "stream_connect").
			Build()
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Client-Instance", s.clientID)

	resp, err := s.http.Do(ctx, req)
	if err != nil {
		return errors.New(err).
			Component("safeguard").
			Category(errors.CategoryNetwork).
			Context("operation", "stream_connect").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return errors.Newf("subscribe request returned status %d", resp.StatusCode).
			Component("safeguard").
			Category(errors.CategoryHTTP).
			Context("operation", "stream_connect").
			Context("status_code", resp.StatusCode).
			Build()
	}

	s.logger.Info("stream connected", "client_instance", s.clientID)
	return s.consume(resp.Body)
}

// consume reads the event stream line by line. An event dispatches on the
// blank line that terminates it; multi-line data fields are joined with
// newlines per the SSE framing rules.
func (s *Stream) consume(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventName string
	var data strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			s.dispatch(eventName, data.String())
			eventName = ""
			data.Reset()
			continue
		}
		if strings.HasPrefix(line, ":") {
			// keepalive comment
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			eventName = value
		case "data":
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(value)
		case "id", "retry":
			// not used
		}
	}
	return scanner.Err()
}

// splitField separates an SSE "field: value" line, trimming the single
// optional space after the colon.
func splitField(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}

// dispatch routes one complete event. Only notification events matter;
// everything else, including the server's unreadCount, is dropped.
func (s *Stream) dispatch(eventName, data string) {
	switch eventName {
	case eventNotification:
		if data == "" {
			return
		}
		var record notification.Notification
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			s.metrics.RecordPayloadError()
			s.logger.Warn("push payload dropped, not valid JSON",
				"error", err)
			return
		}
		s.svc.HandlePush(&record)
	case eventUnreadCount:
		// The server count may be stale; the local list is authoritative.
	default:
	}
}
