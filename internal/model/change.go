package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change kinds recorded in the store's change log.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Change is one row of the change log as delivered by the feed. Payload
// is the raw JSON body; it is only interpreted by the roster.
type Change struct {
	Seq       int64     `json:"seq" db:"seq"`
	TaskID    string    `json:"task_id" db:"task_id"`
	ForDate   string    `json:"for_date" db:"for_date"`
	Kind      string    `json:"kind" db:"kind"`
	Payload   string    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UpdatedPayload encodes an update body: the task id plus the present
// fields of p.
func UpdatedPayload(id string, p Patch) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding patch for %s: %w", id, err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return "", fmt.Errorf("re-reading patch for %s: %w", id, err)
	}
	idJSON, _ := json.Marshal(id)
	m["id"] = idJSON
	out, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding update payload for %s: %w", id, err)
	}
	return string(out), nil
}

// DeletedPayload encodes a delete body.
func DeletedPayload(id string) string {
	out, _ := json.Marshal(map[string]string{"id": id})
	return string(out)
}
