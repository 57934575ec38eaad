package meeting

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
)

// ErrMalformedBulkRequest is returned for a bulk body that is not an object
// with an indices array
var ErrMalformedBulkRequest = errors.New("malformed bulk request")

// ActionItemRequest is one action item of a submitted meeting
type ActionItemRequest struct {
	Description string `json:"description" validate:"max=2000"`
	AssignedTo  string `json:"assigned_to" validate:"max=150"`
	Deadline    string `json:"deadline"`
	IsDone      *bool  `json:"is_done,omitempty"`
}

// MeetingRequest represents the request to create or edit a meeting
type MeetingRequest struct {
	Title            string              `json:"title" validate:"required,min=1,max=200"`
	MeetingDate      string              `json:"meeting_date" validate:"required,datetime=2006-01-02"`
	Attendees        []string            `json:"attendees"`
	AgendaItems      []string            `json:"agenda_items"`
	Minutes          string              `json:"minutes"`
	ActionItems      []ActionItemRequest `json:"action_items" validate:"dive"`
	Company          string              `json:"company" validate:"required,max=100"`
	CompanyOtherName string              `json:"company_other_name" validate:"max=150"`
}

// ListMeetingsRequest represents query parameters for listing meetings.
// Dates that do not parse are ignored.
type ListMeetingsRequest struct {
	Search   string `query:"q"`
	Company  string `query:"company"`
	DateFrom string `query:"date_from"`
	DateTo   string `query:"date_to"`
	Status   string `query:"status"`
	Page     int    `query:"page"`
	Lang     string `query:"lang" validate:"omitempty,locale"`
}

// BulkUpdateRequest is a decoded bulk completion update
type BulkUpdateRequest struct {
	Indices []int
	Done    bool
}

// ParseBulkUpdateRequest decodes {"indices": [...], "done": ...}. Entries of
// indices that are not integers are dropped and done is read for truthiness.
// A missing or falsy indices value is an empty update; any other non-array
// value is malformed.
func ParseBulkUpdateRequest(body []byte) (BulkUpdateRequest, error) {
	var fields map[string]json.RawMessage
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return BulkUpdateRequest{}, ErrMalformedBulkRequest
	}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return BulkUpdateRequest{}, ErrMalformedBulkRequest
	}

	var raw []json.RawMessage
	if indices := fields["indices"]; entities.JSONTruthy(indices) {
		if err := json.Unmarshal(indices, &raw); err != nil {
			return BulkUpdateRequest{}, ErrMalformedBulkRequest
		}
	}

	req := BulkUpdateRequest{
		Indices: make([]int, 0, len(raw)),
		Done:    entities.JSONTruthy(fields["done"]),
	}
	for _, r := range raw {
		var n int
		if err := json.Unmarshal(r, &n); err != nil {
			continue
		}
		req.Indices = append(req.Indices, n)
	}
	return req, nil
}
