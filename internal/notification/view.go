package notification

import (
	"strconv"
	"time"
)

// RecordView is one classified row of the panel.
type RecordView struct {
	ID           int64
	Title        string
	Description  string
	RelativeTime string
	Color        Color
	Read         bool
	ComplaintNo  *int64
}

// PageView is one rendered page of the panel.
type PageView struct {
	Records     []RecordView
	Page        int
	TotalPages  int
	UnreadCount int
	Total       int
	Badge       string
}

// clampPage keeps a page number inside [1, totalPages]. An empty list still
// has one page.
func clampPage(page, total, pageSize int) int {
	totalPages := totalPagesFor(total, pageSize)
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

func totalPagesFor(total, pageSize int) int {
	if total <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// CurrentPage returns the panel's current page number.
func (s *Service) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// TotalPages returns the page count for the current list.
func (s *Service) TotalPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalPagesFor(len(s.records), s.config.PageSize)
}

// NextPage advances to the next page if one exists and reports whether the
// page changed.
func (s *Service) NextPage() bool {
	return s.setPage(func(page int) int { return page + 1 })
}

// PrevPage moves to the previous page if one exists and reports whether the
// page changed.
func (s *Service) PrevPage() bool {
	return s.setPage(func(page int) int { return page - 1 })
}

// SetPage jumps to a specific page, clamped into range.
func (s *Service) SetPage(page int) bool {
	return s.setPage(func(int) int { return page })
}

func (s *Service) setPage(next func(int) int) bool {
	s.mu.Lock()
	old := s.page
	s.page = clampPage(next(s.page), len(s.records), s.config.PageSize)
	changed := s.page != old
	unread, total := s.unread, len(s.records)
	s.mu.Unlock()

	if changed {
		s.broadcast(ViewEvent{Reason: ReasonPageChange, UnreadCount: unread, Total: total})
	}
	return changed
}

// OpenPanel resets the view to the first page, mirroring the panel being
// opened fresh.
func (s *Service) OpenPanel() {
	s.mu.Lock()
	s.page = 1
	unread, total := s.unread, len(s.records)
	s.mu.Unlock()

	s.broadcast(ViewEvent{Reason: ReasonPanelOpened, UnreadCount: unread, Total: total})
}

// Page renders the current page: classified records with relative
// timestamps, page position, and the badge label.
func (s *Service) Page(now time.Time) PageView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.records)
	totalPages := totalPagesFor(total, s.config.PageSize)
	page := clampPage(s.page, total, s.config.PageSize)

	start := (page - 1) * s.config.PageSize
	end := start + s.config.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	views := make([]RecordView, 0, end-start)
	for i := start; i < end; i++ {
		rec := &s.records[i]
		display := Classify(rec)
		views = append(views, RecordView{
			ID:           rec.ID,
			Title:        display.Title,
			Description:  display.Description,
			RelativeTime: FormatRelative(rec.CreatedAt, now),
			Color:        display.Color,
			Read:         rec.Read,
			ComplaintNo:  rec.ComplaintNo,
		})
	}

	return PageView{
		Records:     views,
		Page:        page,
		TotalPages:  totalPages,
		UnreadCount: s.unread,
		Total:       total,
		Badge:       badgeLabel(s.unread),
	}
}

// BadgeLabel returns the unread badge text: the count, "9+" above nine, or
// empty when nothing is unread.
func (s *Service) BadgeLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return badgeLabel(s.unread)
}

func badgeLabel(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > BadgeMaxCount:
		return BadgeOverflowLabel
	default:
		return strconv.Itoa(unread)
	}
}
