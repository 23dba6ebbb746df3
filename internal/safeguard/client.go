// Package safeguard talks to the SafeGuard server: it pulls notification
// snapshots, holds the SSE push subscription, and confirms local mutations
// upstream. All server data except record contents is treated as advisory;
// the notification service derives its own counts.
package safeguard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"log/slog"

	"github.com/jeongryuni/project-SafeGuard/internal/conf"
	"github.com/jeongryuni/project-SafeGuard/internal/errors"
	"github.com/jeongryuni/project-SafeGuard/internal/httpclient"
	"github.com/jeongryuni/project-SafeGuard/internal/logging"
	"github.com/jeongryuni/project-SafeGuard/internal/notification"
)

// snapshotResponse is the server's notification list payload. UnreadCount is
// decoded but never used; the local count is authoritative.
type snapshotResponse struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unreadCount"`
}

// Client is the SafeGuard API client.
type Client struct {
	http    *httpclient.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

// NewClient builds a client from settings.
func NewClient(settings *conf.Settings) *Client {
	cfg := httpclient.DefaultConfig()
	cfg.DefaultTimeout = settings.Server.Timeout

	logger := logging.ForService("safeguard-api")
	if logger == nil {
		logger = slog.Default().With("service", "safeguard-api")
	}

	return &Client{
		http:    httpclient.New(&cfg),
		baseURL: settings.Server.BaseURL,
		token:   settings.Server.Token,
		logger:  logger,
	}
}

// FetchSnapshot retrieves the current notification list. Without a token the
// caller is logged out and gets an empty list, not an error.
func (c *Client) FetchSnapshot(ctx context.Context) ([]notification.Notification, error) {
	if c.token == "" {
		return nil, nil
	}

	url := c.baseURL + "/api/notifications"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.New(err).
			Component("safeguard").
			Category(errors.CategoryNetwork).
			Context("operation", "fetch_snapshot").
			Build()
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, errors.New(err).
			Component("safeguard").
			Category(errors.CategoryNetwork).
			Context("operation", "fetch_snapshot").
			Build()
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Newf("snapshot request returned status %d", resp.StatusCode).
			Component("safeguard").
			Category(errors.CategoryHTTP).
			Context("operation", "fetch_snapshot").
			Context("status_code", resp.StatusCode).
			Build()
	}

	var payload snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.New(err).
			Component("safeguard").
			Category(errors.CategoryJSONParsing).
			Context("operation", "decode_snapshot").
			Build()
	}

	c.logger.Debug("snapshot fetched",
		"records", len(payload.Notifications),
		"server_unread", payload.UnreadCount)
	return payload.Notifications, nil
}

// MarkRead confirms a read mark upstream. The endpoint is idempotent, so
// re-confirming an already-read record is harmless. Without a token this is
// a no-op.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	if c.token == "" {
		return nil
	}

	url := fmt.Sprintf("%s/api/notifications/%d/read", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, http.NoBody)
	if err != nil {
		return errors.New(err).
			Component("safeguard").
			Category(errors.CategoryNetwork).
			Context("operation", "mark_read").
			Build()
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return errors.New(err).
			Component("safeguard").
			Category(errors.CategoryNetwork).
			Context("operation", "mark_read").
			Context("notification_id", id).
			Build()
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf("mark-read request returned status %d", resp.StatusCode).
			Component("safeguard").
			Category(errors.CategoryHTTP).
			Context("operation", "mark_read").
			Context("notification_id", id).
			Context("status_code", resp.StatusCode).
			Build()
	}
	return nil
}
