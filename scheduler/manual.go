package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by explicit Advance calls instead of wall
// time. Callbacks run synchronously inside Advance, in due order, so tests
// get deterministic countdowns and expirations.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*manualTimer
}

type manualTimer struct {
	id     int
	at     time.Time
	period time.Duration // 0 for one-shots
	fn     func()
}

func NewManual() *Manual {
	return &Manual{
		now:    time.Unix(0, 0),
		timers: make(map[int]*manualTimer),
	}
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Handle {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := &manualTimer{id: m.nextID, at: m.now.Add(d), period: period, fn: fn}
	m.timers[t.id] = t
	return &manualHandle{m: m, id: t.id}
}

// Advance moves virtual time forward by d, firing every due timer in order.
// Callbacks may schedule or cancel timers; newly scheduled timers fire
// within the same Advance if they come due before the target instant.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.at
		if t.period > 0 {
			t.at = t.at.Add(t.period)
		} else {
			delete(m.timers, t.id)
		}
		fn := t.fn
		// Run outside the lock so the callback can use the scheduler.
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// nextDue must be called with the lock held. Ties fire in scheduling order.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	ids := make([]int, 0, len(m.timers))
	for id := range m.timers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var best *manualTimer
	for _, id := range ids {
		t := m.timers[id]
		if t.at.After(target) {
			continue
		}
		if best == nil || t.at.Before(best.at) {
			best = t
		}
	}
	return best
}

// Pending returns the number of timers that have not fired or been
// cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

type manualHandle struct {
	m  *Manual
	id int
}

func (h *manualHandle) Cancel() {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	delete(h.m.timers, h.id)
}
