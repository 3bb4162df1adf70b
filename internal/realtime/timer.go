package realtime

import (
	"fmt"
	"sync"
	"time"
)

// SessionKey identifies one (exam, student) sitting in the timer registry
// and the websocket hub.
func SessionKey(examID, studentID uint) string {
	return fmt.Sprintf("%d:%d", examID, studentID)
}

// TimerRegistry owns the per-sitting auto-submission countdowns. Timers are
// process-local and do not survive a restart; the cache TTL on the session is
// the passive backstop that eventually ends a sitting whose timer was lost,
// but only a live timer triggers auto-submission.
type TimerRegistry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{timers: make(map[string]*time.Timer)}
}

// Arm schedules fn after d. An existing timer for the key is cancelled and
// replaced, which defends against duplicate start events.
func (r *TimerRegistry) Arm(key string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.timers[key]; ok {
		existing.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		r.mu.Lock()
		current, ok := r.timers[key]
		if !ok || current != t {
			// Cancelled or replaced between fire and lock acquisition.
			r.mu.Unlock()
			return
		}
		delete(r.timers, key)
		r.mu.Unlock()
		fn()
	})
	r.timers[key] = t
}

// Cancel stops and removes the timer for the key. Returns whether a timer
// was pending.
func (r *TimerRegistry) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(r.timers, key)
	return true
}

// Active reports whether a countdown is pending for the key.
func (r *TimerRegistry) Active(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[key]
	return ok
}
