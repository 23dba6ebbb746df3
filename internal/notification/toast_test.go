package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncer_AnnounceAndAutoClear(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var cleared bool
	announcer := NewAnnouncer(50*time.Millisecond, func(toast *Toast) {
		mu.Lock()
		defer mu.Unlock()
		if toast == nil {
			cleared = true
		}
	})
	t.Cleanup(announcer.Stop)

	rec := Notification{ID: 1, Kind: KindAnswerPosted, Message: "답변"}
	announcer.Announce(&rec)

	current := announcer.Current()
	require.NotNil(t, current)
	assert.Equal(t, "답변이 등록되었습니다", current.Title)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return cleared && announcer.Current() == nil
	}, time.Second, 10*time.Millisecond, "toast should auto-clear after its duration")
}

func TestAnnouncer_ReplaceNotQueue(t *testing.T) {
	t.Parallel()

	announcer := NewAnnouncer(time.Hour, nil)
	t.Cleanup(announcer.Stop)

	first := Notification{ID: 1, Kind: KindAnswerPosted, Message: "첫 번째"}
	second := Notification{ID: 2, Kind: KindManagerAssigned, Message: "배정: 김철수"}

	announcer.Announce(&first)
	announcer.Announce(&second)

	current := announcer.Current()
	require.NotNil(t, current)
	assert.Equal(t, "담당자가 배정되었습니다", current.Title, "the newer toast replaces the older one")
}

func TestAnnouncer_ReplacedToastTimerDoesNotClearSuccessor(t *testing.T) {
	t.Parallel()

	announcer := NewAnnouncer(time.Hour, nil)
	t.Cleanup(announcer.Stop)

	first := Notification{ID: 1, Kind: KindInfo, Message: "first"}
	announcer.Announce(&first)
	stale := announcer.Current()

	second := Notification{ID: 2, Kind: KindInfo, Message: "second"}
	announcer.Announce(&second)

	// A late fire of the replaced toast's timer must not clear the successor.
	announcer.clear(stale)

	current := announcer.Current()
	require.NotNil(t, current)
	assert.Equal(t, "second", current.Title)
}

func TestAnnouncer_Stop(t *testing.T) {
	t.Parallel()

	announcer := NewAnnouncer(time.Hour, nil)
	rec := Notification{ID: 1, Kind: KindInfo, Message: "알림"}
	announcer.Announce(&rec)

	announcer.Stop()
	assert.Nil(t, announcer.Current())
}
