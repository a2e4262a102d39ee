package roster

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/kitchen-roster/internal/model"
)

// Transform computes the patch a mutation applies. It receives a copy of
// the current record and must not perform I/O.
type Transform func(rec model.TaskRecord, now time.Time) model.Patch

// CommitFunc writes a patch to the remote store.
type CommitFunc func(ctx context.Context, id string, patch model.Patch) error

// InsertFunc writes a new record to the remote store and returns its id.
type InsertFunc func(ctx context.Context, rec model.TaskRecord) (string, error)

// DeleteFunc removes a record from the remote store.
type DeleteFunc func(ctx context.Context, id string) error

// Operation names used in MutationError.
const (
	OpUpdate = "update"
	OpCreate = "create"
	OpDelete = "delete"
)

// ToggleDone flips completion. Status and CompletedAt always move
// together.
func ToggleDone(rec model.TaskRecord, now time.Time) model.Patch {
	if model.IsDone(rec) {
		return model.Patch{
			Status:      model.Set(model.StatusPending),
			CompletedAt: model.Clear[time.Time](),
		}
	}
	return model.Patch{
		Status:      model.Set(model.StatusCompleted),
		CompletedAt: model.Set(now),
	}
}

// EditNotes sets the notes and completion reason. Completion state is
// left alone.
func EditNotes(notes, reason string) Transform {
	return func(model.TaskRecord, time.Time) model.Patch {
		return model.Patch{
			Notes:            model.Set(notes),
			CompletionReason: model.Set(reason),
		}
	}
}

// AssignUser reassigns to userID; "" unassigns the user.
func AssignUser(userID string) Transform {
	return func(model.TaskRecord, time.Time) model.Patch {
		return model.Patch{AssigneeUserID: model.SetOrClear(model.StringPtr(userID))}
	}
}

// AssignRole reassigns to roleID; "" unassigns the role.
func AssignRole(roleID string) Transform {
	return func(model.TaskRecord, time.Time) model.Patch {
		return model.Patch{AssigneeRoleID: model.SetOrClear(model.StringPtr(roleID))}
	}
}

// Mutate applies transform to the record with id, marks id in flight,
// and then calls commit without holding the roster lock.
//
// The optimistic patch is visible before commit is called. On failure
// the error is recorded and returned as a *MutationError; the patch
// stays in place unless rollback is enabled.
func (r *Roster) Mutate(ctx context.Context, id string, transform Transform, commit CommitFunc) error {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		err := &MutationError{ID: id, Op: OpUpdate, Err: ErrNotFound}
		r.report(err)
		r.mu.Unlock()
		return err
	}
	before := rec.Clone()
	patch := transform(before.Clone(), r.now())
	if patch.IsEmpty() {
		r.mu.Unlock()
		return nil
	}
	patch.ApplyTo(rec)
	r.touch(id)
	r.begin(id)
	r.notify()
	r.mu.Unlock()

	err := r.commit(ctx, func(ctx context.Context) error {
		return commit(ctx, id, patch)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.finish(id)
	if err == nil {
		r.notify()
		return nil
	}

	if r.rollback {
		if cur, ok := r.records[id]; ok {
			patch.Inverse(before).ApplyTo(cur)
			r.touch(id)
		}
	}
	mutErr := &MutationError{ID: id, Op: OpUpdate, Err: err}
	log.Printf("[roster] %v", mutErr)
	r.report(mutErr)
	return mutErr
}

// Add inserts rec locally under a client-generated id, then commits it.
// The feed echo of the insert is dropped by the Created rule. If the
// commit fails the local copy is removed.
func (r *Roster) Add(ctx context.Context, rec model.TaskRecord, insert InsertFunc) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.ForDate == "" {
		rec.ForDate = r.day
	}
	if rec.Status == "" {
		rec.Status = model.StatusPending
	}
	now := r.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	localID := rec.ID
	r.mu.Lock()
	if _, exists := r.records[localID]; exists {
		err := &MutationError{ID: localID, Op: OpCreate, Err: fmt.Errorf("id already in roster")}
		r.report(err)
		r.mu.Unlock()
		return "", err
	}
	local := rec.ForDate == r.day && (r.admit == nil || r.admit(rec))
	if local {
		r.insertAt(-1, rec)
		r.begin(localID)
		r.notify()
	}
	r.mu.Unlock()

	var remoteID string
	err := r.commit(ctx, func(ctx context.Context) error {
		var err error
		remoteID, err = insert(ctx, rec)
		return err
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if local {
		r.finish(localID)
	}

	if err != nil {
		if local {
			r.remove(localID)
		}
		mutErr := &MutationError{ID: localID, Op: OpCreate, Err: err}
		log.Printf("[roster] %v", mutErr)
		r.report(mutErr)
		return "", mutErr
	}

	if remoteID == "" {
		remoteID = localID
	}
	if local && remoteID != localID {
		r.rekey(localID, remoteID)
	}
	r.notify()
	return remoteID, nil
}

// Remove deletes the record locally, then commits the delete. If the
// commit fails the record is put back where it was, unless the feed has
// re-created it in the meantime.
func (r *Roster) Remove(ctx context.Context, id string, del DeleteFunc) error {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		err := &MutationError{ID: id, Op: OpDelete, Err: ErrNotFound}
		r.report(err)
		r.mu.Unlock()
		return err
	}
	before := rec.Clone()
	pos := r.remove(id)
	r.begin(id)
	r.notify()
	r.mu.Unlock()

	err := r.commit(ctx, func(ctx context.Context) error {
		return del(ctx, id)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.finish(id)
	if err == nil {
		r.notify()
		return nil
	}

	if _, back := r.records[id]; !back {
		r.insertAt(pos, before)
	}
	mutErr := &MutationError{ID: id, Op: OpDelete, Err: err}
	log.Printf("[roster] %v", mutErr)
	r.report(mutErr)
	return mutErr
}

// commit runs fn under the configured timeout.
func (r *Roster) commit(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.commitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.commitTimeout)
		defer cancel()
	}
	return fn(ctx)
}

// rekey must be called with r.mu held. If the store assigned its own id
// and the feed already delivered that record, the local copy is dropped.
func (r *Roster) rekey(from, to string) {
	rec, ok := r.records[from]
	if !ok {
		return
	}
	if _, exists := r.records[to]; exists {
		r.remove(from)
		return
	}
	delete(r.records, from)
	rec.ID = to
	r.records[to] = rec
	for i, id := range r.order {
		if id == from {
			r.order[i] = to
			break
		}
	}
}
