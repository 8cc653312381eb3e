package change

import (
	"time"

	"github.com/google/uuid"
)

// Batch is the unit handed to a Sink: every record of one update pass.
type Batch struct {
	ID        string   `json:"id"`        // UUIDv7
	Seq       uint64   `json:"seq"`       // starts at 1, increases by one per pass
	Records   []Record `json:"records"`
	Timestamp int64    `json:"timestamp"` // epoch milliseconds at flush
}

// NewBatch wraps the records of pass seq.
func NewBatch(seq uint64, records []Record) Batch {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Batch{
		ID:        id.String(),
		Seq:       seq,
		Records:   records,
		Timestamp: time.Now().UnixMilli(),
	}
}
