// Package meeting implements the meeting write path, the list and detail
// views and the action item mutations.
package meeting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/assets"
	usecaseErrors "github.com/johnquangdev/meeting-minutes/internal/usecase/errors"
)

// PerPage is the page size of the meeting list
const PerPage = 9

// RecentLimit is the number of meetings on the dashboard
const RecentLimit = 5

// Assets is the asset access the meeting views need
type Assets interface {
	SaveCustomLogo(ctx context.Context, filename string, content io.Reader, size int64) (string, error)
	LogoReference(ctx context.Context, meeting *entities.Meeting) (string, bool)
	FontCatalogue(ctx context.Context) ([]assets.FontOption, error)
}

// ActionItemInput is one submitted action item. A nil IsDone keeps the
// current completion of an edited item.
type ActionItemInput struct {
	Description string
	AssignedTo  string
	Deadline    string
	IsDone      *bool
}

// LogoUpload is an uploaded company logo
type LogoUpload struct {
	Filename string
	Content  io.Reader
	Size     int64
}

// Input is a submitted meeting
type Input struct {
	Title            string
	MeetingDate      time.Time
	Attendees        []string
	Agenda           []string
	Minutes          string
	ActionItems      []ActionItemInput
	Company          string
	CompanyOtherName string
	Logo             *LogoUpload
}

// Service handles meeting business logic
type Service struct {
	repo   repositories.MeetingRepository
	store  *actionitem.Store
	assets Assets
	logger *zap.Logger
}

// NewService creates a new meeting service
func NewService(repo repositories.MeetingRepository, store *actionitem.Store, assets Assets, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		store:  store,
		assets: assets,
		logger: logger,
	}
}

// Create stores a new meeting owned by userID
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (*entities.Meeting, error) {
	m := &entities.Meeting{
		ID:     uuid.New(),
		UserID: userID,
	}
	if name := strings.TrimSpace(in.CompanyOtherName); name != "" {
		m.CompanyOtherName = &name
	}
	if err := s.apply(ctx, m, in, nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	s.logger.Info("meeting.created",
		zap.String("meeting_id", m.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return m, nil
}

// Update replaces the content of a meeting. Action items are matched to the
// stored ones by position so completion timestamps and extra keys survive.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in Input) (*entities.Meeting, error) {
	m, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.CompanyOtherName); name != "" {
		m.CompanyOtherName = &name
	}
	if err := s.apply(ctx, m, in, actionitem.Parse(m.ActionItems)); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}

	s.logger.Info("meeting.updated", zap.String("meeting_id", m.ID.String()))
	return m, nil
}

// apply copies in onto m: blank attendees and agenda entries are dropped and
// assignees outside the attendee list are cleared
func (s *Service) apply(ctx context.Context, m *entities.Meeting, in Input, existing []entities.ActionItem) error {
	attendees := entities.NormalizeStringList(in.Attendees)

	items := make([]entities.ActionItem, 0, len(in.ActionItems))
	now := s.store.Now()
	for i, input := range in.ActionItems {
		item := entities.NewActionItem("", "", "")
		if i < len(existing) && existing[i].IsRecord() {
			item = existing[i]
		}
		item.Description = strings.TrimSpace(input.Description)
		item.AssignedTo = strings.TrimSpace(input.AssignedTo)
		item.Deadline = normalizeDeadline(input.Deadline)
		if input.IsDone != nil && *input.IsDone != item.Done() {
			item.SetDone(*input.IsDone, now)
		}
		items = append(items, actionitem.ValidateAssignment(item, attendees))
	}
	raw, err := actionitem.Encode(items)
	if err != nil {
		return fmt.Errorf("failed to encode action items: %w", err)
	}

	m.Title = strings.TrimSpace(in.Title)
	m.MeetingDate = in.MeetingDate
	m.Attendees = entities.EncodeStringList(attendees)
	m.Agenda = entities.EncodeStringList(in.Agenda)
	m.Minutes = in.Minutes
	m.ActionItems = datatypes.JSON(raw)
	m.Company = strings.TrimSpace(in.Company)

	// uploads are only taken for companies without a mapped logo
	if m.Company == entities.CompanyOther && in.Logo != nil && in.Logo.Filename != "" {
		ref, err := s.assets.SaveCustomLogo(ctx, in.Logo.Filename, in.Logo.Content, in.Logo.Size)
		if err != nil {
			return fmt.Errorf("failed to save company logo: %w", err)
		}
		m.CompanyLogo = &ref
		s.logger.Info("meeting.logo.saved",
			zap.String("meeting_id", m.ID.String()),
			zap.String("ref", ref),
		)
	}
	return nil
}

// normalizeDeadline keeps a deadline in its at-rest form; anything that is
// not a calendar date is dropped
func normalizeDeadline(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := time.Parse(entities.DeadlineLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return ""
		}
	}
	return t.Format(entities.DeadlineLayout)
}

// GetOwned loads a meeting and checks that userID owns it
func (s *Service) GetOwned(ctx context.Context, userID, id uuid.UUID) (*entities.Meeting, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if m.UserID != userID {
		return nil, usecaseErrors.ErrNotMeetingOwner
	}
	return m, nil
}

// Delete removes a meeting owned by userID
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return usecaseErrors.ErrMeetingNotFound
		}
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	s.logger.Info("meeting.deleted", zap.String("meeting_id", id.String()))
	return nil
}

// FontCatalogue lists the font families available to reports
func (s *Service) FontCatalogue(ctx context.Context) ([]assets.FontOption, error) {
	fonts, err := s.assets.FontCatalogue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fonts: %w", err)
	}
	return fonts, nil
}
