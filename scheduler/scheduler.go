// Package scheduler abstracts the timer facility the match and duel state
// machines run on: delayed one-shots and periodic ticks with idempotent
// cancellation. Production uses gocron; tests drive a manual implementation
// with virtual time.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Handle refers to a scheduled callback. Cancel is idempotent: cancelling a
// fired or already-cancelled timer is a no-op.
type Handle interface {
	Cancel()
}

type Scheduler interface {
	// After runs fn once after d has elapsed.
	After(d time.Duration, fn func()) Handle
	// Every runs fn repeatedly with period d, first run after one period.
	Every(d time.Duration, fn func()) Handle
}

// Gocron is the production Scheduler backed by a gocron/v2 scheduler.
type Gocron struct {
	s gocron.Scheduler
}

func NewGocron() (*Gocron, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	s.Start()
	return &Gocron{s: s}, nil
}

func (g *Gocron) After(d time.Duration, fn func()) Handle {
	job, err := g.s.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(d))),
		gocron.NewTask(fn),
	)
	if err != nil {
		return noopHandle{}
	}
	return &gocronHandle{s: g.s, id: job.ID()}
}

func (g *Gocron) Every(d time.Duration, fn func()) Handle {
	job, err := g.s.NewJob(gocron.DurationJob(d), gocron.NewTask(fn))
	if err != nil {
		return noopHandle{}
	}
	return &gocronHandle{s: g.s, id: job.ID()}
}

// Shutdown stops the underlying scheduler and drops all outstanding jobs.
func (g *Gocron) Shutdown() error {
	return g.s.Shutdown()
}

type gocronHandle struct {
	s  gocron.Scheduler
	id uuid.UUID
}

func (h *gocronHandle) Cancel() {
	// RemoveJob errors when the job is gone already, which is exactly the
	// idempotent behaviour Handle promises.
	_ = h.s.RemoveJob(h.id)
}

type noopHandle struct{}

func (noopHandle) Cancel() {}
