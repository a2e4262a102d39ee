package generate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/nhle/kitchen-roster/internal/model"
)

// Scheduler runs a Generator for the current day on a cron schedule.
type Scheduler struct {
	gen      *Generator
	schedule string
	keywords []string
	now      func() time.Time

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
}

// NewScheduler creates a Scheduler. schedule is a standard five-field cron
// expression such as "0 5 * * *".
func NewScheduler(gen *Generator, schedule string, keywords []string) *Scheduler {
	return &Scheduler{gen: gen, schedule: schedule, keywords: keywords, now: time.Now}
}

// Start registers the job and starts the cron runner. It stops when ctx
// is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := rcron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.run(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("scheduling generation %q: %w", s.schedule, err)
	}

	s.cron = c
	s.cancel = cancel
	c.Start()
	log.Printf("[generate] scheduled with %q", s.schedule)

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		log.Printf("[generate] stop timeout waiting for running job")
	}
	log.Printf("[generate] stopped")
}

// RunOnce generates for today immediately.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	return s.gen.Generate(ctx, s.now().Format(model.DayLayout), s.keywords)
}

func (s *Scheduler) run(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		log.Printf("[generate] scheduled run failed: %v", err)
	}
}
