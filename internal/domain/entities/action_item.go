package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// At-rest keys of an action item object
const (
	ActionKeyDescription = "description"
	ActionKeyAssignedTo  = "assigned_to"
	ActionKeyDeadline    = "deadline"
	ActionKeyIsDone      = "is_done"
	ActionKeyDoneAt      = "done_at"
	ActionKeyStatus      = "status"
)

// DeadlineLayout is the at-rest form of a deadline
const DeadlineLayout = "2006-01-02"

// DoneAtLayout is the at-rest form of a completion timestamp
const DoneAtLayout = "2006-01-02T15:04:05.000000Z07:00"

// legacy status values that count as done, compared case-insensitively
var legacyDoneStatuses = map[string]bool{
	"done":      true,
	"closed":    true,
	"completed": true,
	"true":      true,
	"1":         true,
}

var doneAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ActionItem is one entry of a meeting's action item list.
//
// Entries are addressed by position. An entry that is not a JSON object at
// rest is kept verbatim and reported by IsRecord as false; it never counts
// towards totals and is never mutated by bulk updates.
type ActionItem struct {
	Description string
	AssignedTo  string
	Deadline    string
	IsDone      bool
	DoneAt      *time.Time
	// Status is the legacy textual status; it is read-only except that
	// clearing completion also clears a legacy "done" value.
	Status string

	record    bool
	raw       json.RawMessage
	fields    map[string]json.RawMessage
	doneAtRaw json.RawMessage
}

// NewActionItem creates a well-formed, open action item
func NewActionItem(description, assignedTo, deadline string) ActionItem {
	return ActionItem{
		Description: description,
		AssignedTo:  assignedTo,
		Deadline:    deadline,
		record:      true,
	}
}

// IsRecord reports whether the entry is a well-formed action item object
func (a ActionItem) IsRecord() bool {
	return a.record
}

// Done applies the completion rule: the explicit flag, or a legacy status
// equal (case-insensitively) to one of done, closed, completed, true, 1.
func (a ActionItem) Done() bool {
	return a.IsDone || legacyDoneStatuses[strings.ToLower(a.Status)]
}

// DeadlineDate parses the deadline. ok is false when it is empty or invalid.
func (a ActionItem) DeadlineDate() (t time.Time, ok bool) {
	if a.Deadline == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DeadlineLayout, a.Deadline)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Overdue reports whether the item is not done and its deadline falls
// strictly before the calendar day of today.
func (a ActionItem) Overdue(today time.Time) bool {
	if a.Done() {
		return false
	}
	deadline, ok := a.DeadlineDate()
	if !ok {
		return false
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return deadline.Before(day)
}

// SetDone sets the completion flag and its timestamp. A non-record entry
// becomes an empty record first.
func (a *ActionItem) SetDone(done bool, now time.Time) {
	if !a.record {
		*a = ActionItem{record: true}
	}
	a.IsDone = done
	a.doneAtRaw = nil
	if done {
		t := now.UTC()
		a.DoneAt = &t
		return
	}
	a.DoneAt = nil
	if legacyDoneStatuses[strings.ToLower(a.Status)] {
		a.Status = "open"
	}
}

// UnmarshalJSON decodes one at-rest entry. Missing keys and values of the
// wrong type map to zero values instead of failing.
func (a *ActionItem) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*a = ActionItem{raw: append(json.RawMessage(nil), trimmed...)}
		return nil
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("failed to decode action item: %w", err)
	}

	item := ActionItem{record: true, fields: fields}
	item.Description = jsonString(fields[ActionKeyDescription])
	item.AssignedTo = jsonString(fields[ActionKeyAssignedTo])
	item.Deadline = jsonString(fields[ActionKeyDeadline])
	item.IsDone = JSONTruthy(fields[ActionKeyIsDone])
	item.Status = jsonText(fields[ActionKeyStatus])

	if raw, ok := fields[ActionKeyDoneAt]; ok {
		if t, ok := parseDoneAt(jsonString(raw)); ok {
			item.DoneAt = &t
		} else if !isNull(raw) {
			item.doneAtRaw = raw
		}
	}

	*a = item
	return nil
}

// MarshalJSON encodes the entry back to its at-rest form, keeping keys this
// type does not model.
func (a ActionItem) MarshalJSON() ([]byte, error) {
	if !a.record {
		if len(a.raw) == 0 {
			return []byte("null"), nil
		}
		return a.raw, nil
	}

	out := make(map[string]any, len(a.fields)+5)
	for k, v := range a.fields {
		out[k] = v
	}
	out[ActionKeyDescription] = a.Description
	out[ActionKeyAssignedTo] = a.AssignedTo
	if a.Deadline != "" {
		out[ActionKeyDeadline] = a.Deadline
	} else {
		out[ActionKeyDeadline] = nil
	}
	out[ActionKeyIsDone] = a.IsDone
	switch {
	case a.DoneAt != nil:
		out[ActionKeyDoneAt] = a.DoneAt.UTC().Format(DoneAtLayout)
	case a.doneAtRaw != nil:
		out[ActionKeyDoneAt] = a.doneAtRaw
	default:
		out[ActionKeyDoneAt] = nil
	}
	if a.Status != jsonText(a.fields[ActionKeyStatus]) {
		out[ActionKeyStatus] = a.Status
	}
	return json.Marshal(out)
}

func parseDoneAt(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range doneAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// jsonString returns raw as a string when it is a JSON string
func jsonString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// jsonText returns the textual form of a scalar: strings unquoted, numbers
// and booleans as written. Objects, arrays and null yield "".
func jsonText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '"':
		return jsonString(trimmed)
	case '{', '[':
		return ""
	default:
		return string(trimmed)
	}
}

// JSONTruthy reports whether raw holds a truthy value: true, a non-zero
// number, a non-empty string, array or object.
func JSONTruthy(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}
