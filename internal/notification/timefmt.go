package notification

import (
	"fmt"
	"time"
)

// relativeTimeFallback is shown whenever a timestamp cannot be resolved.
const relativeTimeFallback = "방금 전"

// FormatRelative renders a timestamp for display relative to now:
// under a minute "방금 전", under an hour "N분 전", under a day "N시간 전",
// otherwise the absolute date as YYYY.MM.DD. Unparseable timestamps fall
// back to "방금 전" rather than erroring.
func FormatRelative(et EventTime, now time.Time) string {
	t, ok := et.Time()
	if !ok {
		return relativeTimeFallback
	}

	diff := int(now.Sub(t).Seconds())
	switch {
	case diff < 60:
		return relativeTimeFallback
	case diff < 3600:
		return fmt.Sprintf("%d분 전", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%d시간 전", diff/3600)
	default:
		return t.Format("2006.01.02")
	}
}
