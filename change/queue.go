package change

import "slices"

// Queue collects the records of one update pass.
type Queue struct {
	records []Record
}

// Push appends records to the queue.
func (q *Queue) Push(records ...Record) {
	q.records = append(q.records, records...)
}

// Len returns the number of pending records.
func (q *Queue) Len() int {
	return len(q.records)
}

// Drain returns the pending records in flush order and empties the queue.
func (q *Queue) Drain() []Record {
	out := q.records
	q.records = nil
	Sort(out)
	return out
}

// Discard drops the pending records.
func (q *Queue) Discard() {
	q.records = nil
}

// Sort orders records for flushing. The sort is stable, so records with
// equal keys keep the order they were pushed in.
func Sort(records []Record) {
	slices.SortStableFunc(records, compare)
}

func compare(a, b Record) int {
	pa, pb := phase(a), phase(b)
	if pa != pb {
		return pa - pb
	}
	if a.Level != b.Level {
		return a.Level - b.Level
	}
	if ca, cb := a.Kind == ElementCreated, b.Kind == ElementCreated; ca != cb {
		if ca {
			return -1
		}
		return 1
	}
	return b.Index - a.Index
}

func phase(r Record) int {
	if r.Kind == ElementDeleted {
		return 1
	}
	return 0
}
