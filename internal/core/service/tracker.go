package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Tracker interface {
	AddUsage(chatID int64, tokens int)
	UnderLimit(chatID int64) bool
	Usage(chatID int64) int
}

// UsageTracker counts per-chat token usage for the current day. The counters
// reset at local midnight.
type UsageTracker struct {
	mu         sync.Mutex
	chats      map[int64]int
	dailyLimit int
}

func NewUsageTracker(ctx context.Context) *UsageTracker {
	ut := &UsageTracker{
		chats:      make(map[int64]int),
		dailyLimit: viper.GetInt("openrouter.daily_token_limit"),
	}

	go ut.resetDaily(ctx)

	return ut
}

func (t *UsageTracker) AddUsage(chatID int64, tokens int) {
	t.mu.Lock()
	t.chats[chatID] += tokens
	t.mu.Unlock()
}

func (t *UsageTracker) Usage(chatID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.chats[chatID]
}

// UnderLimit reports whether the chat may still spend tokens today. A zero or
// negative limit disables the quota entirely.
func (t *UsageTracker) UnderLimit(chatID int64) bool {
	if t.dailyLimit <= 0 {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.chats[chatID] < t.dailyLimit
}

// NextReset returns the next midnight, when the counters clear.
func NextReset() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

func (t *UsageTracker) resetDaily(ctx context.Context) {
	reset := NextReset()

	for {
		log.Debug().Time("reset", reset).Msg("running usage reset timer")
		select {
		case <-time.After(time.Until(reset)):
			log.Debug().Msg("resetting daily usage")
			t.mu.Lock()
			t.chats = make(map[int64]int)
			t.mu.Unlock()
			time.Sleep(time.Second)
			reset = NextReset()
		case <-ctx.Done():
			log.Debug().Msg("stopping daily usage reset")
			return
		}
	}
}
