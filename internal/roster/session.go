package roster

import (
	"context"
	"errors"
	"fmt"
	"log"
	gosync "sync"
	"time"

	"github.com/nhle/kitchen-roster/internal/model"
)

// Loader fetches the authoritative records for a day.
type Loader interface {
	QueryDay(ctx context.Context, day string) ([]model.TaskRecord, error)
}

// Store is everything a session needs from the remote store.
type Store interface {
	Loader
	Remote
}

// ChangeStream is an open change-feed subscription for one day.
type ChangeStream interface {
	Changes() <-chan model.Change
	Errors() <-chan error
	Close()
}

// SubscribeFunc opens a change-feed subscription for day.
type SubscribeFunc func(ctx context.Context, day string) (ChangeStream, error)

// Options configure a Session.
type Options struct {
	Day    string
	Viewer model.Viewer
	Store  Store

	// Subscribe is optional; without it the roster only changes through
	// local mutations and Reload.
	Subscribe SubscribeFunc

	Categories []model.CategoryConfig

	// MineOnly admits only records that are Mine for the viewer at the
	// time they arrive.
	MineOnly bool

	Rollback      bool
	CommitTimeout time.Duration
	Clock         func() time.Time
}

// Session owns one day's roster for a viewer: it subscribes to the feed,
// loads the day, and applies feed events until Close.
type Session struct {
	roster     *Roster
	store      Store
	stream     ChangeStream
	categories []model.CategoryConfig

	mu     gosync.Mutex
	viewer model.Viewer

	cancel    context.CancelFunc
	wg        gosync.WaitGroup
	closeOnce gosync.Once
}

// Open starts a session. The subscription is opened before the initial
// load so no change between the two is missed; replayed events are
// harmless against the loaded state. A failed load leaves the session
// open with an empty roster and a LoadError recorded; Open only returns
// an error when the session could not be started at all.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, errors.New("roster session needs a store")
	}
	if opts.Day == "" {
		opts.Day = model.Today()
	}
	if !model.ValidDay(opts.Day) {
		return nil, fmt.Errorf("invalid roster day %q", opts.Day)
	}

	s := &Session{
		store:      opts.Store,
		categories: opts.Categories,
		viewer:     model.Viewer{UserID: opts.Viewer.UserID, Roles: opts.Viewer.Roles.Clone()},
	}
	if s.viewer.Roles == nil {
		s.viewer.Roles = model.NewRoleSet()
	}

	ropts := []Option{
		WithRollback(opts.Rollback),
		WithCommitTimeout(opts.CommitTimeout),
	}
	if opts.Clock != nil {
		ropts = append(ropts, WithClock(opts.Clock))
	}
	if opts.MineOnly {
		ropts = append(ropts, WithAdmission(func(rec model.TaskRecord) bool {
			return Mine(rec, s.Viewer())
		}))
	}
	s.roster = New(opts.Day, ropts...)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if opts.Subscribe != nil {
		stream, err := opts.Subscribe(ctx, opts.Day)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("subscribing to changes for %s: %w", opts.Day, err)
		}
		s.stream = stream
	}

	_ = s.Reload(ctx)

	if s.stream != nil {
		s.wg.Add(1)
		go s.run(runCtx)
	}
	return s, nil
}

// run applies feed events in delivery order until the session closes or
// the stream ends.
func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()

	changes := s.stream.Changes()
	errs := s.stream.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			s.roster.ApplyChange(c)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("[roster] change feed: %v", err)
			s.roster.Report(fmt.Errorf("change feed: %w", err))
		}
	}
}

// Close stops applying events and releases the subscription. It is safe
// to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		if s.stream != nil {
			s.stream.Close()
		}
		s.wg.Wait()
	})
}

// Roster returns the session's roster.
func (s *Session) Roster() *Roster { return s.roster }

// Day returns the day being viewed.
func (s *Session) Day() string { return s.roster.Day() }

// Categories returns the configured category tabs.
func (s *Session) Categories() []model.CategoryConfig { return s.categories }

// Viewer returns a copy of the current viewer.
func (s *Session) Viewer() model.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Viewer{UserID: s.viewer.UserID, Roles: s.viewer.Roles.Clone()}
}

// SetRoles replaces the viewer's held roles. Filters pick the change up
// on the next View.
func (s *Session) SetRoles(roleIDs []string) {
	s.mu.Lock()
	s.viewer.Roles = model.NewRoleSet(roleIDs...)
	s.mu.Unlock()
	s.roster.notify()
}

// View derives the display order for filter.
func (s *Session) View(filter Filter) View {
	return Build(s.roster.Snapshot(), s.Viewer(), filter, s.categories)
}

// Reload re-queries the day and merges the result into the roster.
// Feed events and local mutations applied while the query ran win over
// the snapshot, and records with a commit in flight keep their local
// state.
func (s *Session) Reload(ctx context.Context) error {
	since := s.roster.Generation()
	recs, err := s.store.QueryDay(ctx, s.roster.Day())
	if err != nil {
		loadErr := &LoadError{Day: s.roster.Day(), Err: err}
		log.Printf("[roster] %v", loadErr)
		s.roster.Report(loadErr)
		return loadErr
	}
	s.roster.Merge(since, recs)
	return nil
}

// ToggleDone flips completion of id.
func (s *Session) ToggleDone(ctx context.Context, id string) error {
	return s.roster.Mutate(ctx, id, ToggleDone, s.store.UpdateTask)
}

// SaveNotes sets the notes and completion reason of id.
func (s *Session) SaveNotes(ctx context.Context, id, notes, reason string) error {
	return s.roster.Mutate(ctx, id, EditNotes(notes, reason), s.store.UpdateTask)
}

// AssignUser reassigns id to userID; "" unassigns.
func (s *Session) AssignUser(ctx context.Context, id, userID string) error {
	return s.roster.Mutate(ctx, id, AssignUser(userID), s.store.UpdateTask)
}

// AssignRole reassigns id to roleID; "" unassigns.
func (s *Session) AssignRole(ctx context.Context, id, roleID string) error {
	return s.roster.Mutate(ctx, id, AssignRole(roleID), s.store.UpdateTask)
}

// Delete removes id.
func (s *Session) Delete(ctx context.Context, id string) error {
	return s.roster.Remove(ctx, id, s.store.DeleteTask)
}

// Create adds a new task for the session's day.
func (s *Session) Create(ctx context.Context, rec model.TaskRecord) (string, error) {
	if rec.ForDate == "" {
		rec.ForDate = s.roster.Day()
	}
	return s.roster.Add(ctx, rec, s.store.InsertTask)
}

// Bulk applies op to every id.
func (s *Session) Bulk(ctx context.Context, ids []string, op BulkOp) BulkResult {
	return RunBulk(ctx, s.roster, s.store, ids, op)
}
