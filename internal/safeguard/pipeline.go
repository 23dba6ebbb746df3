package safeguard

import (
	"context"

	"log/slog"

	"github.com/jeongryuni/project-SafeGuard/internal/conf"
	"github.com/jeongryuni/project-SafeGuard/internal/logging"
	"github.com/jeongryuni/project-SafeGuard/internal/notification"
)

// Pipeline ties the notification service to the server client. Local state
// mutates first; upstream confirmation is best effort and never rolled back.
type Pipeline struct {
	svc     *notification.Service
	client  *Client
	metrics *notification.Metrics
	logger  *slog.Logger
}

// NewPipeline wires a service and a client together. Metrics may be nil.
func NewPipeline(svc *notification.Service, client *Client, metrics *notification.Metrics) *Pipeline {
	logger := logging.ForService("safeguard-pipeline")
	if logger == nil {
		logger = slog.Default().With("service", "safeguard-pipeline")
	}
	return &Pipeline{svc: svc, client: client, metrics: metrics, logger: logger}
}

// Bootstrap opens the cache store, seeds a service from it, and wires the
// pipeline. The returned cleanup stops the service and closes the store.
func Bootstrap(settings *conf.Settings, metrics *notification.Metrics) (*Pipeline, func(), error) {
	store, err := notification.NewSQLiteStore(settings.Cache.Path)
	if err != nil {
		return nil, nil, err
	}

	svc := notification.NewService(store, notification.ServiceConfig{
		Identity:      settings.Identity,
		PageSize:      settings.Panel.PageSize,
		Retention:     settings.Cache.Retention,
		ToastDuration: settings.Panel.ToastDuration,
		Debug:         settings.Debug,
	}, metrics)

	if err := svc.LoadCache(); err != nil {
		svc.Stop()
		_ = store.Close()
		return nil, nil, err
	}

	pipeline := NewPipeline(svc, NewClient(settings), metrics)
	cleanup := func() {
		svc.Stop()
		if err := store.Close(); err != nil {
			pipeline.logger.Warn("cache store close failed", "error", err)
		}
		if err := notification.CloseLogger(); err != nil {
			pipeline.logger.Warn("notification log close failed", "error", err)
		}
	}
	return pipeline, cleanup, nil
}

// Service returns the underlying notification service.
func (p *Pipeline) Service() *notification.Service {
	return p.svc
}

// Refresh pulls a snapshot and reconciles it into the list. A failed fetch
// leaves the current list untouched.
func (p *Pipeline) Refresh(ctx context.Context) {
	records, err := p.client.FetchSnapshot(ctx)
	if err != nil {
		p.metrics.RecordSnapshotFailure()
		p.logger.Warn("snapshot fetch failed, keeping current list", "error", err)
		return
	}
	p.svc.MergeSnapshot(records)
}

// OpenPanel resets the view to the first page and refreshes from the server.
func (p *Pipeline) OpenPanel(ctx context.Context) {
	p.svc.OpenPanel()
	p.Refresh(ctx)
}

// MarkRead marks a record read locally, then confirms upstream. The local
// mark stands even if the confirmation fails.
func (p *Pipeline) MarkRead(ctx context.Context, id int64) bool {
	found := p.svc.MarkRead(id)
	if !found {
		return false
	}
	if err := p.client.MarkRead(ctx, id); err != nil {
		p.logger.Warn("mark-read confirmation failed",
			"notification_id", id,
			"error", err)
	}
	return true
}

// MarkAllRead marks every record read locally and confirms each one
// upstream. Confirmation failures are logged per record.
func (p *Pipeline) MarkAllRead(ctx context.Context) int {
	marked := p.svc.MarkAllRead()
	for _, id := range marked {
		if err := p.client.MarkRead(ctx, id); err != nil {
			p.logger.Warn("mark-read confirmation failed",
				"notification_id", id,
				"error", err)
		}
	}
	return len(marked)
}

// Delete removes a record locally. The server keeps the record but is told
// it was read, so it stops counting as unread anywhere.
func (p *Pipeline) Delete(ctx context.Context, id int64) bool {
	found, wasUnread := p.svc.Delete(id)
	if !found {
		return false
	}
	if wasUnread {
		if err := p.client.MarkRead(ctx, id); err != nil {
			p.logger.Warn("mark-read confirmation failed",
				"notification_id", id,
				"error", err)
		}
	}
	return true
}
