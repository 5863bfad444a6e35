package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ItemID identifies a training item. The backend may send it as a JSON string
// or a JSON number; the client only displays it and echoes it back on delete.
type ItemID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as numbers so they round-trip to
// backends that use integer keys. Anything else, including "007", stays a string.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ItemID) String() string { return string(id) }

// TrainingItem is a previously uploaded route paired with its known completion time.
type TrainingItem struct {
	// Opaque identifier assigned by the backend.
	// example: 1
	ID ItemID `json:"id" example:"1"`
	// Display label, usually the uploaded file name.
	// example: Ridge Loop
	Name string `json:"name" example:"Ridge Loop"`
	// Known completion time in minutes.
	// example: 87.4
	CompletionTime float64 `json:"completion_time" example:"87.4"`
}

// SelectedFile is the transient handle produced by a file picker. It is never
// persisted; its bytes are read from Path when the request body is built.
type SelectedFile struct {
	Name string
	Size int64
	Path string
	MIME string
}
