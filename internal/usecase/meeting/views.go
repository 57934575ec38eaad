package meeting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	usecaseErrors "github.com/johnquangdev/meeting-minutes/internal/usecase/errors"
	"github.com/johnquangdev/meeting-minutes/pkg/jalali"
)

// Status filters of the meeting list
const (
	StatusAll     = "all"
	StatusOverdue = "overdue"
	StatusDone    = "done"
	StatusOpen    = "open"
)

// Overview is a meeting with its derived display values
type Overview struct {
	Meeting    *entities.Meeting
	Company    string
	JalaliDate string
	LogoRef    string
	Counters   actionitem.Counters
}

// Detail is the full view of one meeting
type Detail struct {
	Overview
	Agenda      []string
	Attendees   []string
	ActionItems []entities.ActionItem
}

// ListQuery filters the meeting list
type ListQuery struct {
	Search   string
	Company  string
	DateFrom *time.Time
	DateTo   *time.Time
	Status   string
	Page     int
}

// ListResult is one page of the meeting list
type ListResult struct {
	Items      []Overview
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Summary is the dashboard of one user
type Summary struct {
	MeetingCount   int64
	Recent         []Overview
	TotalActions   int
	OverdueActions int
}

// Get returns the detail view of a meeting owned by userID
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Detail, error) {
	m, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	items := actionitem.Parse(m.ActionItems)
	return &Detail{
		Overview:    s.overview(ctx, m, items),
		Agenda:      m.AgendaList(),
		Attendees:   m.AttendeeList(),
		ActionItems: items,
	}, nil
}

// List returns one page of the user's meetings. The status filter runs on
// the computed counters, after the repository filters.
func (s *Service) List(ctx context.Context, userID uuid.UUID, q ListQuery) (*ListResult, error) {
	if q.DateFrom != nil && q.DateTo != nil && q.DateFrom.After(*q.DateTo) {
		return nil, usecaseErrors.ErrInvalidDateRange
	}
	meetings, err := s.repo.List(ctx, repositories.MeetingFilters{
		UserID:   userID,
		Search:   strings.TrimSpace(q.Search),
		Company:  strings.TrimSpace(q.Company),
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}

	status := strings.ToLower(strings.TrimSpace(q.Status))
	today := s.store.Now()
	matched := make([]*entities.Meeting, 0, len(meetings))
	counters := make([]actionitem.Counters, 0, len(meetings))
	for _, m := range meetings {
		c := actionitem.ComputeCounters(actionitem.Parse(m.ActionItems), today)
		if matchStatus(status, c) {
			matched = append(matched, m)
			counters = append(counters, c)
		}
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	result := &ListResult{
		Items:      []Overview{},
		Page:       page,
		PerPage:    PerPage,
		Total:      len(matched),
		TotalPages: (len(matched) + PerPage - 1) / PerPage,
	}
	start := (page - 1) * PerPage
	for i := start; i < len(matched) && i < start+PerPage; i++ {
		o := s.describe(ctx, matched[i])
		o.Counters = counters[i]
		result.Items = append(result.Items, o)
	}
	return result, nil
}

// Summary returns the user's dashboard figures
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count meetings: %w", err)
	}
	all, err := s.repo.List(ctx, repositories.MeetingFilters{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	recent, err := s.repo.FindRecent(ctx, userID, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meetings: %w", err)
	}

	today := s.store.Now()
	var total actionitem.Counters
	for _, m := range all {
		total.Add(actionitem.ComputeCounters(actionitem.Parse(m.ActionItems), today))
	}

	summary := &Summary{
		MeetingCount:   count,
		Recent:         make([]Overview, 0, len(recent)),
		TotalActions:   total.Total,
		OverdueActions: total.Overdue,
	}
	for _, m := range recent {
		summary.Recent = append(summary.Recent, s.overview(ctx, m, actionitem.Parse(m.ActionItems)))
	}
	return summary, nil
}

func (s *Service) overview(ctx context.Context, m *entities.Meeting, items []entities.ActionItem) Overview {
	o := s.describe(ctx, m)
	o.Counters = s.store.Counters(items)
	return o
}

// describe fills the display values that do not depend on action items
func (s *Service) describe(ctx context.Context, m *entities.Meeting) Overview {
	o := Overview{Meeting: m, Company: m.CompanyDisplay()}
	if d, ok := jalali.Format(m.MeetingDate); ok {
		o.JalaliDate = d
	} else {
		s.logger.Debug("meeting.jalali.unavailable", zap.String("meeting_id", m.ID.String()))
	}
	if ref, ok := s.assets.LogoReference(ctx, m); ok {
		o.LogoRef = ref
	}
	return o
}

func matchStatus(status string, c actionitem.Counters) bool {
	switch status {
	case StatusOverdue:
		return c.Overdue > 0
	case StatusDone:
		return c.Done > 0
	case StatusOpen:
		return c.Total > 0 && c.Done < c.Total
	default:
		return true
	}
}
