package roster

import (
	"context"
	"fmt"
	"log"

	"github.com/nhle/kitchen-roster/internal/model"
)

// BulkKind is the single-task operation a bulk run repeats.
type BulkKind int

const (
	BulkToggle BulkKind = iota
	BulkDelete
	BulkAssignUser
	BulkAssignRole
)

func (k BulkKind) String() string {
	switch k {
	case BulkToggle:
		return "toggle"
	case BulkDelete:
		return "delete"
	case BulkAssignUser:
		return "assign user"
	case BulkAssignRole:
		return "assign role"
	default:
		return fmt.Sprintf("bulk(%d)", int(k))
	}
}

// BulkOp is one operation plus its argument. Target is the user or role
// id for reassignment; "" unassigns.
type BulkOp struct {
	Kind   BulkKind
	Target string
}

// BulkFailure is one member of a bulk run that failed.
type BulkFailure struct {
	ID  string
	Err error
}

// BulkResult is the outcome of a bulk run.
type BulkResult struct {
	Succeeded []string
	Failures  []BulkFailure
}

// Err returns a *BulkError when any member failed, or nil.
func (r BulkResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &BulkError{Succeeded: len(r.Succeeded), Failures: r.Failures}
}

// Summary renders the outcome as "N succeeded, M failed".
func (r BulkResult) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", len(r.Succeeded), len(r.Failures))
}

// Remote is the store the roster commits to.
type Remote interface {
	UpdateTask(ctx context.Context, id string, patch model.Patch) error
	InsertTask(ctx context.Context, rec model.TaskRecord) (string, error)
	DeleteTask(ctx context.Context, id string) error
}

// RunBulk applies op to each id in turn. A failed member never stops the
// rest; there is no transaction across members. Duplicate ids run once.
func RunBulk(ctx context.Context, r *Roster, remote Remote, ids []string, op BulkOp) BulkResult {
	var res BulkResult
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		var err error
		switch op.Kind {
		case BulkToggle:
			err = r.Mutate(ctx, id, ToggleDone, remote.UpdateTask)
		case BulkDelete:
			err = r.Remove(ctx, id, remote.DeleteTask)
		case BulkAssignUser:
			err = r.Mutate(ctx, id, AssignUser(op.Target), remote.UpdateTask)
		case BulkAssignRole:
			err = r.Mutate(ctx, id, AssignRole(op.Target), remote.UpdateTask)
		default:
			err = fmt.Errorf("unsupported bulk operation %v", op.Kind)
		}

		if err != nil {
			res.Failures = append(res.Failures, BulkFailure{ID: id, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}

	if err := res.Err(); err != nil {
		log.Printf("[roster] bulk %s: %s", op.Kind, res.Summary())
		r.Report(err)
	}
	return res
}
