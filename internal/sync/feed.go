// Package sync delivers the store's change log to roster sessions as a
// per-day subscription.
package sync

import (
	"context"
	"fmt"
	"log"
	gosync "sync"
	"time"

	"github.com/nhle/kitchen-roster/internal/model"
)

const (
	// fetchTimeout is the maximum time allowed for a single poll.
	fetchTimeout = 10 * time.Second

	// defaultInterval is used when the configured interval is not positive.
	defaultInterval = 500 * time.Millisecond

	// batchSize is how many change rows are read per query.
	batchSize = 100
)

// ChangeSource is the part of the store the feed reads.
type ChangeSource interface {
	ChangesSince(ctx context.Context, day string, afterSeq int64, limit int) ([]model.Change, error)
	LatestChangeSeq(ctx context.Context) (int64, error)
}

// Feed hands out change subscriptions backed by polling a ChangeSource.
type Feed struct {
	source   ChangeSource
	interval time.Duration
}

// NewFeed creates a Feed polling src every interval.
func NewFeed(src ChangeSource, interval time.Duration) *Feed {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Feed{source: src, interval: interval}
}

// Subscription delivers the changes for one day, in sequence order,
// starting after the newest change that existed when it was opened.
type Subscription struct {
	feed *Feed
	day  string

	mu     gosync.Mutex
	cursor int64

	changes   chan model.Change
	errCh     chan error
	triggerCh chan struct{}
	stopCh    chan struct{}
	wg        gosync.WaitGroup
	closeOnce gosync.Once
}

// Subscribe opens a subscription for day. The subscription holds a
// polling goroutine until Close is called.
func (f *Feed) Subscribe(ctx context.Context, day string) (*Subscription, error) {
	if !model.ValidDay(day) {
		return nil, fmt.Errorf("subscribing: invalid day %q", day)
	}
	cursor, err := f.source.LatestChangeSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", day, err)
	}

	sub := &Subscription{
		feed:      f,
		day:       day,
		cursor:    cursor,
		changes:   make(chan model.Change, batchSize),
		errCh:     make(chan error, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
	sub.wg.Add(1)
	go sub.poll()

	log.Printf("[feed] subscribed to %s after seq %d", day, cursor)
	return sub, nil
}

// Changes delivers change rows in sequence order. It is closed after
// Close returns.
func (s *Subscription) Changes() <-chan model.Change { return s.changes }

// Errors reports poll failures. Polling continues after an error.
func (s *Subscription) Errors() <-chan error { return s.errCh }

// Day returns the subscribed day.
func (s *Subscription) Day() string { return s.day }

// Cursor returns the sequence number of the last delivered change.
func (s *Subscription) Cursor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Trigger requests an immediate poll.
func (s *Subscription) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
		// A poll is already pending.
	}
}

// Close stops polling and closes the Changes channel. It is safe to call
// more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		close(s.changes)
		log.Printf("[feed] unsubscribed from %s at seq %d", s.day, s.Cursor())
	})
}

// poll runs until Close.
func (s *Subscription) poll() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.feed.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.fetch()
		case <-s.triggerCh:
			s.fetch()
		}
	}
}

// fetch reads every change past the cursor and delivers it. Delivery
// blocks until the consumer takes the row or the subscription closes;
// rows are never dropped or reordered.
func (s *Subscription) fetch() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	for {
		after := s.Cursor()
		batch, err := s.feed.source.ChangesSince(ctx, s.day, after, batchSize)
		if err != nil {
			log.Printf("[feed] polling %s after seq %d: %v", s.day, after, err)
			s.sendErr(fmt.Errorf("polling changes for %s: %w", s.day, err))
			return
		}

		for _, c := range batch {
			select {
			case s.changes <- c:
			case <-s.stopCh:
				return
			}
			s.mu.Lock()
			s.cursor = c.Seq
			s.mu.Unlock()
		}

		if len(batch) < batchSize {
			return
		}
	}
}

// sendErr reports err without blocking the poll loop.
func (s *Subscription) sendErr(err error) {
	select {
	case s.errCh <- err:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}
