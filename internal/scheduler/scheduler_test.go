package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"widt/internal/structures"
	"widt/internal/testutil"
)

func newTestScheduler(conf *structures.Config) *Scheduler {
	s := NewScheduler(conf, &testutil.MockLogger{}, &testutil.MockMetrics{}, nil)
	return s.(*Scheduler)
}

func TestScheduler_FirstRunAlignsToMinuteBoundary(t *testing.T) {
	s := newTestScheduler(&structures.Config{
		Scheduler: structures.SchedulerConfig{Interval: time.Hour, FirstRunMinute: 10},
	})

	now := time.Date(2026, 9, 1, 13, 4, 0, 0, time.UTC)
	assert.Equal(t, 6*time.Minute, s.firstRunDelay(now))

	now = time.Date(2026, 9, 1, 13, 10, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, s.firstRunDelay(now))

	now = time.Date(2026, 9, 1, 13, 45, 30, 0, time.UTC)
	assert.Equal(t, 24*time.Minute+30*time.Second, s.firstRunDelay(now))
}

func TestScheduler_FirstRunMinuteDefaultsToTen(t *testing.T) {
	s := newTestScheduler(&structures.Config{
		Scheduler: structures.SchedulerConfig{Interval: time.Hour},
	})
	now := time.Date(2026, 9, 1, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, 10*time.Minute, s.firstRunDelay(now))
}

func TestScheduler_DebugChatShortensFirstRun(t *testing.T) {
	s := newTestScheduler(&structures.Config{
		DebugChat: "tester",
		Scheduler: structures.SchedulerConfig{Interval: 5 * time.Minute},
	})
	now := time.Date(2026, 9, 1, 13, 4, 0, 0, time.UTC)
	assert.Equal(t, 5*time.Second, s.firstRunDelay(now))
}
