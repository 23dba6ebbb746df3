package notification

import (
	"context"
	"sync"
	"time"

	"log/slog"
)

// ViewEvent reasons. Subscribers use them to decide how much to re-render.
const (
	ReasonCacheLoaded   = "cache_loaded"
	ReasonSnapshotMerge = "snapshot_merge"
	ReasonPush          = "push"
	ReasonMarkRead      = "mark_read"
	ReasonMarkAllRead   = "mark_all_read"
	ReasonDelete        = "delete"
	ReasonPageChange    = "page_change"
	ReasonPanelOpened   = "panel_opened"
)

// ViewEvent announces a state change to view subscribers.
type ViewEvent struct {
	Reason      string
	UnreadCount int
	Total       int
}

// viewSubscriber is a single view-event listener.
type viewSubscriber struct {
	ch     chan ViewEvent
	ctx    context.Context
	cancel context.CancelFunc
}

// ServiceConfig configures a notification service.
type ServiceConfig struct {
	// Identity keys the persisted cache. Empty means logged out: the
	// service still works but skips persistence.
	Identity string

	// PageSize is the number of records per panel page.
	PageSize int

	// Retention is the rolling expiry window for cached records.
	Retention time.Duration

	// ToastDuration is how long an announced toast stays visible.
	ToastDuration time.Duration

	Debug bool
}

// Service owns the in-memory notification list and reconciles every source
// of change: the persisted cache, server snapshots, push events, and local
// mutations. The unread count is always derived from the list itself.
type Service struct {
	mu      sync.RWMutex
	config  ServiceConfig
	store   CacheStore
	records []Notification
	unread  int
	page    int

	subscribers   []*viewSubscriber
	subscribersMu sync.RWMutex

	announcer *Announcer
	metrics   *Metrics
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewService creates a service backed by the given cache store. A nil store
// disables persistence. Metrics may be nil.
func NewService(store CacheStore, config ServiceConfig, metrics *Metrics) *Service {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.Retention <= 0 {
		config.Retention = DefaultRetention
	}
	if config.ToastDuration <= 0 {
		config.ToastDuration = DefaultToastDuration
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		config:    config,
		store:     store,
		page:      1,
		announcer: NewAnnouncer(config.ToastDuration, nil),
		metrics:   metrics,
		logger:    getFileLogger(config.Debug),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Announcer exposes the toast announcer for UI wiring.
func (s *Service) Announcer() *Announcer {
	return s.announcer
}

// LoadCache seeds the list from the persisted cache. Expired and
// unparseable entries are pruned and the normalized list is written back.
func (s *Service) LoadCache() error {
	if s.store == nil || s.config.Identity == "" {
		return nil
	}

	records, err := s.store.Load(s.config.Identity)
	if err != nil {
		s.logger.Warn("cache load failed, starting empty",
			"identity", s.config.Identity,
			"error", err)
		records = nil
	}

	s.mu.Lock()
	s.records = pruneExpired(records, time.Now(), s.config.Retention)
	loaded := len(s.records)
	s.finalizeLocked(ReasonCacheLoaded)
	s.mu.Unlock()

	if s.config.Debug {
		s.logger.Debug("cache loaded",
			"identity", s.config.Identity,
			"records", loaded)
	}
	return nil
}

// MergeSnapshot reconciles a server snapshot into the list. Known IDs keep
// their local record; only previously unseen records are added. The server's
// unread count is never consulted.
func (s *Service) MergeSnapshot(incoming []Notification) {
	s.mu.Lock()
	known := make(map[int64]struct{}, len(s.records))
	for i := range s.records {
		known[s.records[i].ID] = struct{}{}
	}

	added := 0
	for i := range incoming {
		if _, dup := known[incoming[i].ID]; dup {
			continue
		}
		known[incoming[i].ID] = struct{}{}
		s.records = append(s.records, *incoming[i].Clone())
		added++
	}

	s.finalizeLocked(ReasonSnapshotMerge)
	total := len(s.records)
	s.mu.Unlock()

	s.metrics.RecordSnapshotMerge()
	if s.config.Debug {
		s.logger.Debug("snapshot merged",
			"incoming", len(incoming),
			"added", added,
			"total", total)
	}
}

// HandlePush processes one push event: the record is merged unless its ID is
// already known, and a toast is announced either way.
func (s *Service) HandlePush(n *Notification) {
	s.metrics.RecordPushReceived()

	s.mu.Lock()
	dup := false
	for i := range s.records {
		if s.records[i].ID == n.ID {
			dup = true
			break
		}
	}
	if !dup {
		s.records = append(s.records, *n.Clone())
	}
	s.finalizeLocked(ReasonPush)
	s.mu.Unlock()

	if dup {
		s.metrics.RecordPushDuplicate()
		if s.config.Debug {
			s.logger.Debug("push duplicate dropped", "id", n.ID)
		}
	}

	// A replayed event still deserves a toast; the sender considered it new.
	s.announcer.Announce(n)
}

// MarkRead marks a single record read. Marking an already-read or unknown ID
// changes nothing. It reports whether the record exists.
func (s *Service) MarkRead(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].MarkAsRead()
			s.finalizeLocked(ReasonMarkRead)
			return true
		}
	}
	return false
}

// MarkAllRead marks every record read and returns the IDs that were unread.
func (s *Service) MarkAllRead() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var marked []int64
	for i := range s.records {
		if !s.records[i].Read {
			marked = append(marked, s.records[i].ID)
			s.records[i].MarkAsRead()
		}
	}
	s.finalizeLocked(ReasonMarkAllRead)
	return marked
}

// Delete removes a record from the local list. It reports whether the ID was
// present and whether the removed record was still unread.
func (s *Service) Delete(id int64) (found, wasUnread bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			wasUnread = !s.records[i].Read
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.finalizeLocked(ReasonDelete)
			return true, wasUnread
		}
	}
	return false, false
}

// UnreadCount returns the locally derived unread count.
func (s *Service) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Records returns a copy of the full list, newest first.
func (s *Service) Records() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.records))
	for i := range s.records {
		out[i] = *s.records[i].Clone()
	}
	return out
}

// finalizeLocked re-establishes every list invariant after a mutation:
// ID uniqueness, newest-first order, derived unread count, page clamping,
// cache write-back, and the view broadcast. Expiry pruning happens only at
// cache load; a live record never disappears mid-session. Callers hold s.mu.
func (s *Service) finalizeLocked(reason string) {
	s.records = dedupeAndSort(s.records)

	unread := 0
	for i := range s.records {
		if !s.records[i].Read {
			unread++
		}
	}
	s.unread = unread
	s.page = clampPage(s.page, len(s.records), s.config.PageSize)

	s.metrics.SetUnreadCount(unread)
	s.persistLocked()
	s.broadcast(ViewEvent{Reason: reason, UnreadCount: unread, Total: len(s.records)})
}

// persistLocked writes the current list back to the cache store. Failures
// are logged, not surfaced; the in-memory list stays authoritative.
func (s *Service) persistLocked() {
	if s.store == nil || s.config.Identity == "" {
		return
	}
	if err := s.store.Save(s.config.Identity, s.records); err != nil {
		s.logger.Warn("cache save failed",
			"identity", s.config.Identity,
			"error", err)
	}
}

// Subscribe creates a channel receiving view events. The returned context is
// cancelled when the subscription ends; subscribers must not close the
// channel. Cancelled subscribers are pruned during broadcast.
func (s *Service) Subscribe() (<-chan ViewEvent, context.Context) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	ctx, cancel := context.WithCancel(s.ctx)
	sub := &viewSubscriber{
		ch:     make(chan ViewEvent, DefaultChannelBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
	s.subscribers = append(s.subscribers, sub)
	return sub.ch, ctx
}

// Unsubscribe removes a subscription created by Subscribe.
func (s *Service) Unsubscribe(ch <-chan ViewEvent) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	for i, sub := range s.subscribers {
		if sub.ch == ch {
			sub.cancel()
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			break
		}
	}
}

// broadcast delivers a view event to every live subscriber. Slow subscribers
// with a full buffer miss the event rather than block a mutation.
func (s *Service) broadcast(event ViewEvent) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	active := s.subscribers[:0]
	for _, sub := range s.subscribers {
		select {
		case <-sub.ctx.Done():
			continue
		default:
		}
		active = append(active, sub)

		select {
		case sub.ch <- event:
		default:
			if s.config.Debug {
				s.logger.Debug("subscriber buffer full, view event dropped",
					"reason", event.Reason)
			}
		}
	}
	s.subscribers = active
}

// Stop cancels all subscriptions and the pending toast.
func (s *Service) Stop() {
	s.cancel()

	s.subscribersMu.Lock()
	for _, sub := range s.subscribers {
		sub.cancel()
	}
	s.subscribers = nil
	s.subscribersMu.Unlock()

	s.announcer.Stop()
	s.logger.Info("notification service stopped")
}
