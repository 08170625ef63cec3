package fabricate

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Trace captures provenance for one fabrication run: one entry per processed
// level, in processing order.
type Trace struct {
	Levels []LevelProvenance `json:"levels"`
}

// LevelProvenance details how one level contributed to the fabricated table.
type LevelProvenance struct {
	Level      string   `json:"level"`
	SnapshotID string   `json:"snapshot_id"`
	N          int      `json:"n"`
	Variables  []string `json:"variables,omitempty"`
}

func (t *Trace) record(level string, n int, variables []string) {
	t.Levels = append(t.Levels, LevelProvenance{
		Level:      level,
		SnapshotID: uuid.NewString(),
		N:          n,
		Variables:  variables,
	})
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
