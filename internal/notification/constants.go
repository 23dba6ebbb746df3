package notification

import "time"

const (
	// DefaultPageSize is the number of records shown per panel page.
	DefaultPageSize = 5

	// DefaultToastDuration is how long a toast stays visible before
	// auto-dismissal.
	DefaultToastDuration = 2 * time.Second

	// DefaultRetention is the rolling window after which cached records
	// expire.
	DefaultRetention = 72 * time.Hour

	// DefaultChannelBufferSize is the buffer size for view subscriber
	// channels.
	DefaultChannelBufferSize = 16

	// BadgeOverflowLabel replaces the unread count above BadgeMaxCount.
	BadgeOverflowLabel = "9+"

	// BadgeMaxCount is the largest unread count rendered as a number.
	BadgeMaxCount = 9
)
