package roster_test

import (
	"context"
	"encoding/json"
	"errors"
	gosync "sync"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/roster"
)

const day = "2026-03-14"

var errRemote = errors.New("remote unavailable")

// fakeStore records calls and fails for ids listed in failIDs. When gate
// is non-nil every write waits on it before returning. afterQuery runs
// once QueryDay has taken its snapshot, before it returns.
type fakeStore struct {
	mu         gosync.Mutex
	records    []model.TaskRecord
	loadErr    error
	afterQuery func()
	failIDs map[string]bool
	gate    chan struct{}
	started chan string

	updates []string
	deletes []string
	inserts []model.TaskRecord
}

func newFakeStore(recs ...model.TaskRecord) *fakeStore {
	return &fakeStore{records: recs, failIDs: make(map[string]bool)}
}

func (f *fakeStore) wait(ctx context.Context, id string) error {
	if f.started != nil {
		f.started <- id
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return errRemote
	}
	return nil
}

func (f *fakeStore) QueryDay(_ context.Context, d string) ([]model.TaskRecord, error) {
	f.mu.Lock()
	if f.loadErr != nil {
		err := f.loadErr
		f.mu.Unlock()
		return nil, err
	}
	var out []model.TaskRecord
	for _, r := range f.records {
		if r.ForDate == d {
			out = append(out, r)
		}
	}
	hook := f.afterQuery
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, id string, _ model.Patch) error {
	if err := f.wait(ctx, id); err != nil {
		return err
	}
	f.mu.Lock()
	f.updates = append(f.updates, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) InsertTask(ctx context.Context, rec model.TaskRecord) (string, error) {
	if err := f.wait(ctx, rec.ID); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.inserts = append(f.inserts, rec)
	f.mu.Unlock()
	return rec.ID, nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id string) error {
	if err := f.wait(ctx, id); err != nil {
		return err
	}
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) setFail(id string) {
	f.mu.Lock()
	f.failIDs[id] = true
	f.mu.Unlock()
}

// fakeStream is a ChangeStream fed by the test.
type fakeStream struct {
	changes   chan model.Change
	errs      chan error
	closeOnce gosync.Once
	closed    chan struct{}
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		changes: make(chan model.Change, 16),
		errs:    make(chan error, 4),
		closed:  make(chan struct{}),
	}
}

func (s *fakeStream) Changes() <-chan model.Change { return s.changes }
func (s *fakeStream) Errors() <-chan error         { return s.errs }

func (s *fakeStream) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *fakeStream) subscribe(context.Context, string) (roster.ChangeStream, error) {
	return s, nil
}

func task(id, title string, opts ...func(*model.TaskRecord)) model.TaskRecord {
	rec := model.TaskRecord{ID: id, Title: title, ForDate: day, Status: model.StatusPending}
	for _, o := range opts {
		o(&rec)
	}
	return rec
}

func due(h, m int) func(*model.TaskRecord) {
	return func(r *model.TaskRecord) {
		t := model.NewTimeOfDay(h, m)
		r.DueAt = &t
	}
}

func user(id string) func(*model.TaskRecord) {
	return func(r *model.TaskRecord) { r.AssigneeUserID = model.StringPtr(id) }
}

func role(id string) func(*model.TaskRecord) {
	return func(r *model.TaskRecord) { r.AssigneeRoleID = model.StringPtr(id) }
}

func done(r *model.TaskRecord) {
	r.Status = model.StatusCompleted
}

func createdChange(seq int64, rec model.TaskRecord) model.Change {
	body, _ := json.Marshal(rec)
	return model.Change{Seq: seq, TaskID: rec.ID, ForDate: rec.ForDate, Kind: model.ChangeCreated, Payload: string(body)}
}

func updatedChange(seq int64, id, payload string) model.Change {
	return model.Change{Seq: seq, TaskID: id, ForDate: day, Kind: model.ChangeUpdated, Payload: payload}
}

func deletedChange(seq int64, id string) model.Change {
	return model.Change{Seq: seq, TaskID: id, ForDate: day, Kind: model.ChangeDeleted, Payload: model.DeletedPayload(id)}
}

func ids(recs []model.TaskRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
