package roster

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/nhle/kitchen-roster/internal/model"
)

// Event is a change to apply to a roster: exactly one of Created,
// Updated, or Deleted.
type Event interface {
	TaskID() string
	event()
}

// Created carries a full record inserted remotely.
type Created struct {
	Record model.TaskRecord
}

// Updated carries the fields of a record that changed remotely.
type Updated struct {
	ID    string
	Patch model.Patch
}

// Deleted names a record removed remotely.
type Deleted struct {
	ID string
}

func (e Created) TaskID() string { return e.Record.ID }
func (e Updated) TaskID() string { return e.ID }
func (e Deleted) TaskID() string { return e.ID }

func (Created) event() {}
func (Updated) event() {}
func (Deleted) event() {}

// Decode validates a change-log row and turns it into an Event. Rows
// without an id, with an unknown kind, or with a payload that does not
// parse yield a *MalformedEventError.
func Decode(c model.Change) (Event, error) {
	malformed := func(reason string) error {
		return &MalformedEventError{Seq: c.Seq, Kind: c.Kind, Reason: reason}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(c.Payload), &raw); err != nil {
		return nil, malformed("payload is not a JSON object")
	}
	id, err := payloadID(raw)
	if err != nil {
		return nil, malformed(err.Error())
	}
	if id == "" {
		return nil, malformed("missing id")
	}

	switch c.Kind {
	case model.ChangeCreated:
		delete(raw, "id")
		body, err := json.Marshal(raw)
		if err != nil {
			return nil, malformed(err.Error())
		}
		var rec model.TaskRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, malformed(err.Error())
		}
		rec.ID = id
		if rec.ForDate == "" {
			rec.ForDate = c.ForDate
		}
		return Created{Record: rec}, nil

	case model.ChangeUpdated:
		delete(raw, "id")
		patch, err := model.DecodePatchObject(raw)
		if err != nil {
			return nil, malformed(err.Error())
		}
		return Updated{ID: id, Patch: patch}, nil

	case model.ChangeDeleted:
		return Deleted{ID: id}, nil

	default:
		return nil, malformed("unknown kind")
	}
}

func payloadID(raw map[string]json.RawMessage) (string, error) {
	msg, ok := raw["id"]
	if !ok || string(msg) == "null" {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(msg, &id); err != nil {
		// Numeric ids are accepted and kept in their decimal form.
		var n json.Number
		if nerr := json.Unmarshal(msg, &n); nerr != nil {
			return "", err
		}
		id = n.String()
	}
	return strings.TrimSpace(id), nil
}

// Apply folds one event into the roster and reports whether the roster
// changed.
//
// A Created for an id already present is dropped: the existing entry
// wins. Updated merges only the fields it carries. Updated and Deleted
// for absent ids are no-ops.
func (r *Roster) Apply(ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := r.apply(ev)
	if changed {
		r.notify()
	}
	return changed
}

// ApplyChange decodes and applies a change-log row. Malformed rows are
// dropped, logged, and reported on Errors.
func (r *Roster) ApplyChange(c model.Change) bool {
	ev, err := Decode(c)
	if err != nil {
		log.Printf("[roster] %v", err)
		r.Report(err)
		return false
	}
	return r.Apply(ev)
}

// apply must be called with r.mu held.
func (r *Roster) apply(ev Event) bool {
	switch e := ev.(type) {
	case Created:
		if _, exists := r.records[e.Record.ID]; exists {
			return false
		}
		if !r.admissible(e.Record) {
			return false
		}
		r.insertAt(-1, e.Record)
		return true

	case Updated:
		rec, ok := r.records[e.ID]
		if !ok {
			return false
		}
		if e.Patch.IsEmpty() {
			return false
		}
		e.Patch.ApplyTo(rec)
		r.touch(e.ID)
		return true

	case Deleted:
		return r.remove(e.ID) >= 0
	}
	return false
}
