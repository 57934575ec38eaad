// Package actionitem decodes, inspects and mutates the action item list
// embedded in a meeting record.
package actionitem

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
)

// ErrIndexOutOfRange is returned when an item is addressed outside the list
var ErrIndexOutOfRange = errors.New("action item index out of range")

// Counters summarises a list of action items
type Counters struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Overdue int `json:"overdue"`
}

// Add accumulates other into c
func (c *Counters) Add(other Counters) {
	c.Total += other.Total
	c.Done += other.Done
	c.Overdue += other.Overdue
}

// Store applies the status rule and the toggle and bulk mutations. The clock
// decides what "today" and the completion timestamp are.
type Store struct {
	now func() time.Time
}

// NewStore creates a Store using the wall clock
func NewStore() *Store {
	return &Store{now: time.Now}
}

// NewStoreWithClock creates a Store with a custom clock
func NewStoreWithClock(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// Now returns the store's current time
func (s *Store) Now() time.Time {
	return s.now()
}

// Parse decodes the at-rest encoding. Empty input, invalid syntax and JSON
// values that are not arrays all yield an empty list.
func Parse(raw []byte) []entities.ActionItem {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []entities.ActionItem{}
	}
	var items []entities.ActionItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return []entities.ActionItem{}
	}
	if items == nil {
		return []entities.ActionItem{}
	}
	return items
}

// Encode serialises items to their at-rest encoding
func Encode(items []entities.ActionItem) ([]byte, error) {
	if items == nil {
		items = []entities.ActionItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action items: %w", err)
	}
	return b, nil
}

// Counters computes totals relative to the store's clock
func (s *Store) Counters(items []entities.ActionItem) Counters {
	return ComputeCounters(items, s.now())
}

// ComputeCounters counts well-formed records, how many are done and how many
// are overdue as of today. Non-record entries are ignored.
func ComputeCounters(items []entities.ActionItem, today time.Time) Counters {
	var c Counters
	for _, item := range items {
		if !item.IsRecord() {
			continue
		}
		c.Total++
		switch {
		case item.Done():
			c.Done++
		case item.Overdue(today):
			c.Overdue++
		}
	}
	return c
}

// Toggle flips the completion of the item at index and returns a new list
// together with the new completion value. The input list is not modified.
func (s *Store) Toggle(items []entities.ActionItem, index int) ([]entities.ActionItem, bool, error) {
	if index < 0 || index >= len(items) {
		return nil, false, fmt.Errorf("toggle index %d of %d: %w", index, len(items), ErrIndexOutOfRange)
	}

	updated := slices.Clone(items)
	target := !updated[index].Done()
	updated[index].SetDone(target, s.now())
	return updated, target, nil
}

// BulkSet sets completion to done on every addressed record. Indices out of
// range or pointing at non-record entries are skipped. applied lists the
// indices that were changed, in request order, repeats included.
func (s *Store) BulkSet(items []entities.ActionItem, indices []int, done bool) (updated []entities.ActionItem, applied []int) {
	updated = slices.Clone(items)
	applied = make([]int, 0, len(indices))
	now := s.now()
	for _, idx := range indices {
		if idx < 0 || idx >= len(updated) {
			continue
		}
		if !updated[idx].IsRecord() {
			continue
		}
		updated[idx].SetDone(done, now)
		applied = append(applied, idx)
	}
	return updated, applied
}

// ValidateAssignment clears an assignee that is not one of attendees
func ValidateAssignment(item entities.ActionItem, attendees []string) entities.ActionItem {
	if item.AssignedTo == "" {
		return item
	}
	if !slices.Contains(attendees, item.AssignedTo) {
		item.AssignedTo = ""
	}
	return item
}
