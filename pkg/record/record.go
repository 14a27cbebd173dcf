package record

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status indicates the outcome of a fetch attempt
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Record is the result of one attempted fetch for one identifier. It is
// immutable once produced. Payload holds the variant-specific fields,
// which are flattened alongside id/status/fetched_at when serialized.
type Record struct {
	ID        string
	Status    Status
	FetchedAt time.Time
	Payload   map[string]interface{}
}

// OK builds a success record stamped with the current time
func OK(id string, payload map[string]interface{}) Record {
	return Record{
		ID:        id,
		Status:    StatusOK,
		FetchedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

// Failed builds an error record stamped with the current time. The payload
// carries the variant's fields as explicit nulls so every row shares one schema.
func Failed(id string, payload map[string]interface{}) Record {
	return Record{
		ID:        id,
		Status:    StatusError,
		FetchedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

// MarshalJSON flattens the payload fields into the row alongside the fixed columns
func (r Record) MarshalJSON() ([]byte, error) {
	row := make(map[string]interface{}, len(r.Payload)+3)
	for k, v := range r.Payload {
		row[k] = v
	}
	row["id"] = r.ID
	row["status"] = string(r.Status)
	row["fetched_at"] = r.FetchedAt.UTC().Format(time.RFC3339)
	return json.Marshal(row)
}

// UnmarshalJSON splits the fixed columns back out of a flattened row
func (r *Record) UnmarshalJSON(data []byte) error {
	var row map[string]interface{}
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}

	id, ok := row["id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("record missing id field")
	}

	status, ok := row["status"].(string)
	if !ok {
		return fmt.Errorf("record %q missing status field", id)
	}
	if status != string(StatusOK) && status != string(StatusError) {
		return fmt.Errorf("record %q has unknown status %q", id, status)
	}

	var fetchedAt time.Time
	if ts, ok := row["fetched_at"].(string); ok {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return fmt.Errorf("record %q has malformed fetched_at: %w", id, err)
		}
		fetchedAt = parsed
	}

	delete(row, "id")
	delete(row, "status")
	delete(row, "fetched_at")

	r.ID = id
	r.Status = Status(status)
	r.FetchedAt = fetchedAt
	if len(row) > 0 {
		r.Payload = row
	} else {
		r.Payload = nil
	}
	return nil
}
