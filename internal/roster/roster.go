// Package roster holds one day's task collection for a viewing session
// and keeps it consistent with the remote store while change-feed events
// and optimistic local mutations both write into it.
package roster

import (
	"log"
	"sort"
	gosync "sync"
	"time"

	"github.com/nhle/kitchen-roster/internal/model"
)

// errBuffer is the capacity of the Errors channel. Errors beyond it are
// still recorded as LastError but not queued.
const errBuffer = 16

// AdmitFunc decides whether a record may enter the roster. It is
// evaluated when the record arrives, never cached.
type AdmitFunc func(rec model.TaskRecord) bool

// Option configures a Roster.
type Option func(*Roster)

// WithRollback makes failed commits restore the values the mutation
// overwrote. Off by default: a failed commit leaves the optimistic
// patch in place.
func WithRollback(enabled bool) Option {
	return func(r *Roster) { r.rollback = enabled }
}

// WithCommitTimeout bounds every remote commit. Zero waits indefinitely.
func WithCommitTimeout(d time.Duration) Option {
	return func(r *Roster) { r.commitTimeout = d }
}

// WithClock replaces time.Now for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Roster) { r.now = now }
}

// WithAdmission restricts which records are admitted by loads and by
// Created events.
func WithAdmission(admit AdmitFunc) Option {
	return func(r *Roster) { r.admit = admit }
}

// Roster is the collection of TaskRecords for one calendar day.
//
// All entry points serialize on a single mutex. The mutex is never held
// across a remote call: optimistic patches are applied before the commit
// starts and reconciled after it returns.
type Roster struct {
	day string

	mu       gosync.Mutex
	order    []string
	records  map[string]*model.TaskRecord
	inFlight map[string]int
	lastErr  error

	// gen counts writes; touched holds the generation of each id's most
	// recent write, including deletes.
	gen     uint64
	touched map[string]uint64

	rollback      bool
	commitTimeout time.Duration
	now           func() time.Time
	admit         AdmitFunc

	errCh   chan error
	changed chan struct{}
}

// New creates an empty roster for day.
func New(day string, opts ...Option) *Roster {
	r := &Roster{
		day:      day,
		records:  make(map[string]*model.TaskRecord),
		inFlight: make(map[string]int),
		touched:  make(map[string]uint64),
		now:      time.Now,
		errCh:    make(chan error, errBuffer),
		changed:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Day returns the calendar day this roster holds.
func (r *Roster) Day() string { return r.day }

// Seed replaces the roster contents with recs. Records of other days or
// refused by the admission check are skipped. Records with a mutation in
// flight keep their local state, including being absent while a delete
// is committing.
func (r *Roster) Seed(recs []model.TaskRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merge(r.gen, recs)
}

// Generation returns a marker for the roster's writes so far. Take it
// before querying the store and pass it to Merge with the result.
func (r *Roster) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Merge folds a store snapshot taken after Generation returned since.
// Ids written locally or by the feed after since keep their local state:
// a record created meanwhile stays, one deleted meanwhile stays gone.
// Every other id takes the snapshot's version.
func (r *Roster) Merge(since uint64, recs []model.TaskRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merge(since, recs)
}

// merge must be called with r.mu held.
func (r *Roster) merge(since uint64, recs []model.TaskRecord) {
	order := make([]string, 0, len(recs))
	records := make(map[string]*model.TaskRecord, len(recs))
	for _, rec := range recs {
		if rec.ID == "" {
			continue
		}
		if _, dup := records[rec.ID]; dup {
			continue
		}
		if r.touched[rec.ID] > since || r.inFlight[rec.ID] > 0 {
			cur, ok := r.records[rec.ID]
			if !ok {
				continue
			}
			records[rec.ID] = cur
		} else {
			if !r.admissible(rec) {
				continue
			}
			c := rec.Clone()
			records[rec.ID] = &c
		}
		order = append(order, rec.ID)
	}

	// Records the snapshot predates, or still being committed, survive.
	for _, id := range r.order {
		if _, ok := records[id]; ok {
			continue
		}
		if r.touched[id] <= since && r.inFlight[id] == 0 {
			continue
		}
		records[id] = r.records[id]
		order = append(order, id)
	}

	r.order = order
	r.records = records
	r.notify()
}

// touch must be called with r.mu held.
func (r *Roster) touch(id string) {
	r.gen++
	r.touched[id] = r.gen
}

// Snapshot returns copies of all records in arrival order.
func (r *Roster) Snapshot() []model.TaskRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.TaskRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id].Clone())
	}
	return out
}

// Get returns a copy of the record with id.
func (r *Roster) Get(id string) (model.TaskRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return model.TaskRecord{}, false
	}
	return rec.Clone(), true
}

// Len returns the number of records.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// InFlight reports whether a remote commit for id has not yet returned.
func (r *Roster) InFlight(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight[id] > 0
}

// InFlightIDs returns the ids with a commit outstanding, sorted.
func (r *Roster) InFlightIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.inFlight))
	for id := range r.inFlight {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Errors delivers every error the roster records. Sends never block; a
// full channel only loses the queued copy, LastError still holds it.
func (r *Roster) Errors() <-chan error { return r.errCh }

// Changed receives a value after the contents or in-flight set change.
// Bursts coalesce into one pending notification.
func (r *Roster) Changed() <-chan struct{} { return r.changed }

// LastError returns the most recent error, or nil once dismissed.
func (r *Roster) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// DismissError clears LastError.
func (r *Roster) DismissError() {
	r.mu.Lock()
	r.lastErr = nil
	r.mu.Unlock()
	r.notify()
}

// Report records err as the most recent error.
func (r *Roster) Report(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.report(err)
	r.mu.Unlock()
}

// report must be called with r.mu held.
func (r *Roster) report(err error) {
	r.lastErr = err
	select {
	case r.errCh <- err:
	default:
	}
	r.notify()
}

func (r *Roster) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

// admissible must be called with r.mu held.
func (r *Roster) admissible(rec model.TaskRecord) bool {
	if rec.ForDate != r.day {
		log.Printf("[roster] dropping task %s for %s: roster is %s", rec.ID, rec.ForDate, r.day)
		return false
	}
	if r.admit != nil && !r.admit(rec) {
		return false
	}
	return true
}

// insertAt must be called with r.mu held. pos beyond the end appends.
func (r *Roster) insertAt(pos int, rec model.TaskRecord) {
	c := rec.Clone()
	r.records[rec.ID] = &c
	r.touch(rec.ID)
	if pos < 0 || pos >= len(r.order) {
		r.order = append(r.order, rec.ID)
		return
	}
	r.order = append(r.order, "")
	copy(r.order[pos+1:], r.order[pos:])
	r.order[pos] = rec.ID
}

// remove must be called with r.mu held. It returns the position the
// record occupied, or -1.
func (r *Roster) remove(id string) int {
	if _, ok := r.records[id]; !ok {
		return -1
	}
	delete(r.records, id)
	r.touch(id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return i
		}
	}
	return -1
}

func (r *Roster) begin(id string) { r.inFlight[id]++ }

func (r *Roster) finish(id string) {
	if r.inFlight[id] <= 1 {
		delete(r.inFlight, id)
		return
	}
	r.inFlight[id]--
}
