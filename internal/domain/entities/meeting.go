package entities

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CompanyOther marks a meeting whose company is not in the known list
const CompanyOther = "Other"

// Meeting represents the minutes of one meeting owned by a single user.
// Attendees, Agenda and ActionItems hold JSON-text arrays.
type Meeting struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title            string         `gorm:"type:varchar(200);not null" json:"title"`
	MeetingDate      time.Time      `gorm:"not null;index" json:"meeting_date"`
	Attendees        datatypes.JSON `gorm:"type:text" json:"attendees"`
	Agenda           datatypes.JSON `gorm:"type:text" json:"agenda"`
	Minutes          string         `gorm:"type:text" json:"minutes"`
	ActionItems      datatypes.JSON `gorm:"type:text" json:"action_items"`
	Company          string         `gorm:"type:varchar(100);index" json:"company"`
	CompanyOtherName *string        `gorm:"type:varchar(150)" json:"company_other_name,omitempty"`
	CompanyLogo      *string        `gorm:"type:varchar(255)" json:"company_logo,omitempty"`
	CreatedAt        time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// CompanyDisplay returns the custom company name when set, else the company
func (m *Meeting) CompanyDisplay() string {
	if m.CompanyOtherName != nil && strings.TrimSpace(*m.CompanyOtherName) != "" {
		return *m.CompanyOtherName
	}
	return m.Company
}

// UploadedLogo returns the custom logo reference, if any
func (m *Meeting) UploadedLogo() (string, bool) {
	if m.CompanyLogo == nil || *m.CompanyLogo == "" {
		return "", false
	}
	return *m.CompanyLogo, true
}

// AttendeeList decodes the attendee names
func (m *Meeting) AttendeeList() []string {
	return DecodeStringList(m.Attendees)
}

// AgendaList decodes the agenda items
func (m *Meeting) AgendaList() []string {
	return DecodeStringList(m.Agenda)
}

// DecodeStringList decodes a JSON-text array. Missing or malformed input
// yields an empty list; non-string elements keep their JSON text.
func DecodeStringList(raw []byte) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []string{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		e = bytes.TrimSpace(e)
		switch {
		case isNull(e):
			continue
		case e[0] == '"':
			out = append(out, jsonString(e))
		default:
			out = append(out, string(e))
		}
	}
	return out
}

// EncodeStringList trims each entry, drops blank ones and encodes the rest
func EncodeStringList(items []string) datatypes.JSON {
	kept := NormalizeStringList(items)
	b, _ := json.Marshal(kept)
	return datatypes.JSON(b)
}

// NormalizeStringList trims entries and drops blank ones
func NormalizeStringList(items []string) []string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			kept = append(kept, s)
		}
	}
	return kept
}
