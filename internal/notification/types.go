// Package notification implements the client-resident notification pipeline
// for the SafeGuard application: it reconciles snapshot, push and cached
// records into one deduplicated, time-sorted working set, derives the unread
// count locally and exposes a paginated view to the presentation layer.
package notification

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind categorizes a notification record
type Kind string

const (
	// KindStatusChange indicates a complaint status transition
	KindStatusChange Kind = "STATUS"
	// KindAnswerPosted indicates an answer was posted or edited
	KindAnswerPosted Kind = "ANSWER"
	// KindManagerAssigned indicates a manager was assigned to a complaint
	KindManagerAssigned Kind = "MANAGER"

	// Legacy severity kinds emitted by older server builds. They carry no
	// structured payload and classify as generic records.
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// epochSecondsCutoff separates second-resolution epoch values from
// millisecond-resolution ones: 10-digit values are seconds, longer values
// are milliseconds.
const epochSecondsCutoff = 10_000_000_000

// EventTime is a timestamp of ambiguous wire representation: either an
// ISO-like string or a numeric epoch in second or millisecond resolution.
// The raw value is preserved so that persisting a record does not alter
// what the server sent.
type EventTime struct {
	raw   string
	t     time.Time
	valid bool
}

// NewEventTime creates an EventTime from a concrete instant.
func NewEventTime(t time.Time) EventTime {
	return EventTime{raw: t.Format(time.RFC3339), t: t, valid: true}
}

// EventTimeFromRaw creates an EventTime from a raw wire value.
func EventTimeFromRaw(raw string) EventTime {
	t, ok := parseEventTime(raw)
	return EventTime{raw: raw, t: t, valid: ok}
}

// Time returns the parsed instant and whether parsing succeeded.
func (et EventTime) Time() (time.Time, bool) {
	return et.t, et.valid
}

// Raw returns the wire value the timestamp was built from.
func (et EventTime) Raw() string {
	return et.raw
}

// sortKey returns a value usable for descending time ordering. Unparseable
// timestamps sort as the zero instant, placing them last.
func (et EventTime) sortKey() time.Time {
	if !et.valid {
		return time.Time{}
	}
	return et.t
}

// UnmarshalJSON accepts a JSON string or a bare number.
func (et *EventTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*et = EventTime{}
		return nil
	}
	if len(raw) >= 2 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	*et = EventTimeFromRaw(raw)
	return nil
}

// MarshalJSON writes the raw wire value back out, so cached records
// round-trip without losing the server's representation.
func (et EventTime) MarshalJSON() ([]byte, error) {
	if et.raw == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(et.raw, 64); err == nil {
		return []byte(et.raw), nil
	}
	return json.Marshal(et.raw)
}

// eventTimeLayouts are the calendar formats accepted for string timestamps.
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseEventTime resolves the ambiguous wire representation. Pure numeric
// values below the 10-digit cutoff are second-resolution epochs, larger
// values are millisecond-resolution. Anything else is tried as a calendar
// string.
func parseEventTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if num, err := strconv.ParseFloat(raw, 64); err == nil {
		if num < epochSecondsCutoff {
			return time.UnixMilli(int64(num * 1000)), true
		}
		return time.UnixMilli(int64(num)), true
	}

	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StructuredData carries nested status hints some producers emit instead of
// the top-level fields.
type StructuredData struct {
	Status    string `json:"status,omitempty"`
	NewStatus string `json:"newStatus,omitempty"`
}

// Notification is the canonical notification record, unique by ID across all
// sources. The structured hint fields are preferred over text-mining Message
// during classification.
type Notification struct {
	// ID is the unique identity key across snapshot, push and cache
	ID int64 `json:"notificationId"`
	// Kind categorizes the record and selects the classification branch
	Kind Kind `json:"type"`
	// Message is the free-text content, also a secondary classification signal
	Message string `json:"message"`
	// Read is monotonic: it only ever transitions false to true
	Read bool `json:"isRead"`
	// CreatedAt orders the merged working set, newest first
	CreatedAt EventTime `json:"createdAt"`
	// ComplaintNo optionally references the related complaint record
	ComplaintNo *int64 `json:"complaintNo,omitempty"`
	// Action and Event hint at create/update semantics for answer records
	Action string `json:"action,omitempty"`
	Event  string `json:"event,omitempty"`
	// Status and NewStatus are explicit status hints for status-change records
	Status    string `json:"status,omitempty"`
	NewStatus string `json:"newStatus,omitempty"`
	// Data holds nested equivalents of the status hints
	Data *StructuredData `json:"data,omitempty"`
}

// MarkAsRead sets the read flag. The transition is one-directional; there is
// deliberately no way back to unread.
func (n *Notification) MarkAsRead() {
	n.Read = true
}

// Clone returns a deep copy of the record.
func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	clone := *n
	if n.ComplaintNo != nil {
		no := *n.ComplaintNo
		clone.ComplaintNo = &no
	}
	if n.Data != nil {
		data := *n.Data
		clone.Data = &data
	}
	return &clone
}
