package presenter

import (
	"time"

	"github.com/johnquangdev/meeting-minutes/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/assets"
	meetingUsecase "github.com/johnquangdev/meeting-minutes/internal/usecase/meeting"
)

// ToCountersResponse converts action item counters to their DTO
func ToCountersResponse(c actionitem.Counters) meeting.CountersResponse {
	return meeting.CountersResponse{
		Total:   c.Total,
		Done:    c.Done,
		Overdue: c.Overdue,
	}
}

// ToMeetingResponse converts a meeting overview to MeetingResponse DTO
func ToMeetingResponse(o meetingUsecase.Overview) *meeting.MeetingResponse {
	if o.Meeting == nil {
		return nil
	}
	m := o.Meeting
	return &meeting.MeetingResponse{
		ID:          m.ID.String(),
		Title:       m.Title,
		MeetingDate: m.MeetingDate.Format(entities.DeadlineLayout),
		JalaliDate:  o.JalaliDate,
		Company:     o.Company,
		LogoRef:     o.LogoRef,
		Counters:    ToCountersResponse(o.Counters),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToMeetingDetailResponse converts a meeting detail to its DTO. Entries that
// are not well-formed action items are left out but keep their index slot.
func ToMeetingDetailResponse(d *meetingUsecase.Detail, today time.Time) *meeting.MeetingDetailResponse {
	if d == nil || d.Meeting == nil {
		return nil
	}

	response := &meeting.MeetingDetailResponse{
		MeetingResponse: *ToMeetingResponse(d.Overview),
		CompanyKey:      d.Meeting.Company,
		Attendees:       d.Attendees,
		AgendaItems:     d.Agenda,
		Minutes:         d.Meeting.Minutes,
		ActionItems:     make([]meeting.ActionItemResponse, 0, len(d.ActionItems)),
	}
	if d.Meeting.CompanyOtherName != nil {
		response.CompanyOtherName = *d.Meeting.CompanyOtherName
	}

	for i, item := range d.ActionItems {
		if !item.IsRecord() {
			continue
		}
		response.ActionItems = append(response.ActionItems, meeting.ActionItemResponse{
			Index:       i,
			Description: item.Description,
			AssignedTo:  item.AssignedTo,
			Deadline:    item.Deadline,
			IsDone:      item.Done(),
			DoneAt:      item.DoneAt,
			Overdue:     item.Overdue(today),
		})
	}

	return response
}

// ToMeetingListResponse converts a list page to MeetingListResponse
func ToMeetingListResponse(r *meetingUsecase.ListResult) *meeting.MeetingListResponse {
	meetings := make([]*meeting.MeetingResponse, len(r.Items))
	for i, o := range r.Items {
		meetings[i] = ToMeetingResponse(o)
	}

	return &meeting.MeetingListResponse{
		Meetings:   meetings,
		Total:      r.Total,
		Page:       r.Page,
		PageSize:   r.PerPage,
		TotalPages: r.TotalPages,
	}
}

// ToSummaryResponse converts the dashboard summary to its DTO
func ToSummaryResponse(s *meetingUsecase.Summary) *meeting.SummaryResponse {
	recent := make([]*meeting.MeetingResponse, len(s.Recent))
	for i, o := range s.Recent {
		recent[i] = ToMeetingResponse(o)
	}

	return &meeting.SummaryResponse{
		MeetingCount:   s.MeetingCount,
		Recent:         recent,
		TotalActions:   s.TotalActions,
		OverdueActions: s.OverdueActions,
	}
}

// ToFontResponses converts the font catalogue to its DTO
func ToFontResponses(fonts []assets.FontOption) []meeting.FontResponse {
	out := make([]meeting.FontResponse, len(fonts))
	for i, f := range fonts {
		out[i] = meeting.FontResponse{ID: f.ID, Label: f.Label}
	}
	return out
}
