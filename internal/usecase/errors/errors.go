package errors

import "errors"

// Meeting errors
var (
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrNotMeetingOwner  = errors.New("user does not own this meeting")
	ErrInvalidDateRange = errors.New("date_from is after date_to")
)
