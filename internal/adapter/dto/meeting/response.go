package meeting

import "time"

// CountersResponse summarises a meeting's action items
type CountersResponse struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Overdue int `json:"overdue"`
}

// ActionItemResponse is one action item as shown to clients
type ActionItemResponse struct {
	Index       int        `json:"index"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to"`
	Deadline    string     `json:"deadline,omitempty"`
	IsDone      bool       `json:"is_done"`
	DoneAt      *time.Time `json:"done_at,omitempty"`
	Overdue     bool       `json:"overdue"`
}

// MeetingResponse represents a meeting in list and dashboard views
type MeetingResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	MeetingDate string           `json:"meeting_date"`
	JalaliDate  string           `json:"jalali_date,omitempty"`
	Company     string           `json:"company"`
	LogoRef     string           `json:"logo_ref,omitempty"`
	Counters    CountersResponse `json:"counters"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// MeetingDetailResponse represents the full view of one meeting
type MeetingDetailResponse struct {
	MeetingResponse
	CompanyKey       string               `json:"company_key"`
	CompanyOtherName string               `json:"company_other_name,omitempty"`
	Attendees        []string             `json:"attendees"`
	AgendaItems      []string             `json:"agenda_items"`
	Minutes          string               `json:"minutes"`
	ActionItems      []ActionItemResponse `json:"action_items"`
}

// MeetingListResponse represents one page of meetings
type MeetingListResponse struct {
	Meetings   []*MeetingResponse `json:"meetings"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// SummaryResponse represents the dashboard figures
type SummaryResponse struct {
	MeetingCount   int64              `json:"meeting_count"`
	Recent         []*MeetingResponse `json:"recent"`
	TotalActions   int                `json:"total_actions"`
	OverdueActions int                `json:"overdue_actions"`
}

// ToggleResponse is the body of a successful toggle
type ToggleResponse struct {
	OK       bool             `json:"ok"`
	IsDone   bool             `json:"is_done"`
	Counters CountersResponse `json:"counters"`
}

// BulkUpdateResponse is the body of a successful bulk update
type BulkUpdateResponse struct {
	OK       bool             `json:"ok"`
	Updated  []int            `json:"updated"`
	Counters CountersResponse `json:"counters"`
	Done     bool             `json:"done"`
}

// MutationErrorResponse is the body of a rejected toggle or bulk update
type MutationErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// FontResponse is one entry of the font catalogue
type FontResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
