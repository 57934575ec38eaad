package handler

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-minutes/errors"
	"github.com/johnquangdev/meeting-minutes/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-minutes/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/assets"
	meetingUsecase "github.com/johnquangdev/meeting-minutes/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/report"
)

// Multipart field names of a meeting submission
const (
	payloadField = "payload"
	logoField    = "company_logo"
)

// Bodies of rejected action item mutations
const (
	errIndexOutOfRange = "index_out_of_range"
	errBadRequest      = "bad_request"
)

// MeetingService is the meeting use case the handler drives
type MeetingService interface {
	Create(ctx context.Context, userID uuid.UUID, in meetingUsecase.Input) (*entities.Meeting, error)
	Update(ctx context.Context, userID, id uuid.UUID, in meetingUsecase.Input) (*entities.Meeting, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	GetOwned(ctx context.Context, userID, id uuid.UUID) (*entities.Meeting, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*meetingUsecase.Detail, error)
	List(ctx context.Context, userID uuid.UUID, q meetingUsecase.ListQuery) (*meetingUsecase.ListResult, error)
	Summary(ctx context.Context, userID uuid.UUID) (*meetingUsecase.Summary, error)
	ToggleActionItem(ctx context.Context, userID, id uuid.UUID, index int) (*meetingUsecase.ToggleResult, error)
	BulkSetActionItems(ctx context.Context, userID, id uuid.UUID, indices []int, done bool) (*meetingUsecase.BulkResult, error)
	FontCatalogue(ctx context.Context) ([]assets.FontOption, error)
}

// ReportGenerator renders meeting reports
type ReportGenerator interface {
	Generate(ctx context.Context, req report.Request) ([]byte, error)
}

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	meetings MeetingService
	reports  ReportGenerator
	now      func() time.Time
	logger   *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetings MeetingService, reports ReportGenerator, logger *zap.Logger) *Meeting {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Meeting{
		meetings: meetings,
		reports:  reports,
		now:      time.Now,
		logger:   logger,
	}
}

// CreateMeeting handles POST /meetings
func (h *Meeting) CreateMeeting(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	input, err := h.bindMeeting(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	m, err := h.meetings.Create(c.Request().Context(), userID, input)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleCreated(h.logger, c, map[string]string{"id": m.ID.String()})
}

// UpdateMeeting handles PUT /meetings/:id
func (h *Meeting) UpdateMeeting(c echo.Context) error {
	userID, meetingID, err := h.identify(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	input, err := h.bindMeeting(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	m, err := h.meetings.Update(c.Request().Context(), userID, meetingID, input)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID.String()))
	}

	return HandleSuccess(h.logger, c, map[string]string{"id": m.ID.String()})
}

// DeleteMeeting handles DELETE /meetings/:id
func (h *Meeting) DeleteMeeting(c echo.Context) error {
	userID, meetingID, err := h.identify(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.meetings.Delete(c.Request().Context(), userID, meetingID); err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID.String()))
	}

	return HandleSuccess(h.logger, c, map[string]string{"id": meetingID.String()})
}

// GetMeeting handles GET /meetings/:id
func (h *Meeting) GetMeeting(c echo.Context) error {
	userID, meetingID, err := h.identify(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	detail, err := h.meetings.Get(c.Request().Context(), userID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID.String()))
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingDetailResponse(detail, h.now()))
}

// ListMeetings handles GET /meetings
func (h *Meeting) ListMeetings(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req meeting.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	result, err := h.meetings.List(c.Request().Context(), userID, meetingUsecase.ListQuery{
		Search:   req.Search,
		Company:  req.Company,
		DateFrom: parseDay(req.DateFrom),
		DateTo:   parseDay(req.DateTo),
		Status:   req.Status,
		Page:     req.Page,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingListResponse(result))
}

// Summary handles GET /meetings/summary
func (h *Meeting) Summary(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	summary, err := h.meetings.Summary(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleSuccess(h.logger, c, presenter.ToSummaryResponse(summary))
}

// Fonts handles GET /fonts
func (h *Meeting) Fonts(c echo.Context) error {
	fonts, err := h.meetings.FontCatalogue(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("list fonts", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToFontResponses(fonts))
}

// ToggleActionItem handles POST /meetings/:id/actions/:index/toggle
func (h *Meeting) ToggleActionItem(c echo.Context) error {
	userID, meetingID, err := h.identify(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, meeting.MutationErrorResponse{Error: errIndexOutOfRange})
	}

	result, err := h.meetings.ToggleActionItem(c.Request().Context(), userID, meetingID, index)
	if err != nil {
		if stdErrors.Is(err, actionitem.ErrIndexOutOfRange) {
			return c.JSON(http.StatusBadRequest, meeting.MutationErrorResponse{Error: errIndexOutOfRange})
		}
		return HandleError(h.logger, c, toAppError(err, meetingID.String()))
	}

	return c.JSON(http.StatusOK, meeting.ToggleResponse{
		OK:       true,
		IsDone:   result.IsDone,
		Counters: presenter.ToCountersResponse(result.Counters),
	})
}

// BulkUpdateActionItems handles POST /meetings/:id/actions/bulk
func (h *Meeting) BulkUpdateActionItems(c echo.Context) error {
	userID, meetingID, err := h.identify(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, meeting.MutationErrorResponse{Error: errBadRequest})
	}
	req, err := meeting.ParseBulkUpdateRequest(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, meeting.MutationErrorResponse{Error: errBadRequest})
	}

	result, err := h.meetings.BulkSetActionItems(c.Request().Context(), userID, meetingID, req.Indices, req.Done)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID.String()))
	}

	return c.JSON(http.StatusOK, meeting.BulkUpdateResponse{
		OK:       true,
		Updated:  result.Updated,
		Counters: presenter.ToCountersResponse(result.Counters),
		Done:     result.Done,
	})
}

// DownloadReport handles GET /meetings/:id/pdf
func (h *Meeting) DownloadReport(c echo.Context) error {
	userID, meetingID, err := h.identify(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx := c.Request().Context()
	m, err := h.meetings.GetOwned(ctx, userID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID.String()))
	}

	prefs := middleware.GetPreferences(c)
	pdf, err := h.reports.Generate(ctx, report.Request{
		Meeting: m,
		Locale:  middleware.GetLocale(c),
		Fonts:   assets.Selection{FontFA: prefs.FontFA, FontEN: prefs.FontEN},
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, meetingID.String()))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// identify reads the authenticated user and the meeting id path parameter
func (h *Meeting) identify(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, errors.ErrUnauthenticated()
	}
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.ErrInvalidArgument("meeting ID must be a valid UUID")
	}
	return userID, meetingID, nil
}

// bindMeeting decodes a JSON body, or a multipart form carrying the JSON in
// the payload field and an optional logo file
func (h *Meeting) bindMeeting(c echo.Context) (meetingUsecase.Input, error) {
	var req meeting.MeetingRequest
	var logo *meetingUsecase.LogoUpload

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(strings.ToLower(contentType), echo.MIMEMultipartForm) {
		if err := json.Unmarshal([]byte(c.FormValue(payloadField)), &req); err != nil {
			return meetingUsecase.Input{}, errors.ErrInvalidPayload()
		}
		file, err := c.FormFile(logoField)
		switch {
		case err == nil:
			if logo, err = openUpload(file); err != nil {
				return meetingUsecase.Input{}, errors.ErrLogoUploadRejected(err.Error())
			}
		case !stdErrors.Is(err, http.ErrMissingFile):
			return meetingUsecase.Input{}, errors.ErrInvalidPayload()
		}
	} else if err := c.Bind(&req); err != nil {
		return meetingUsecase.Input{}, errors.ErrInvalidPayload()
	}

	if err := c.Validate(&req); err != nil {
		return meetingUsecase.Input{}, errors.ErrInvalidArgument(err.Error())
	}

	date, err := time.Parse(entities.DeadlineLayout, req.MeetingDate)
	if err != nil {
		return meetingUsecase.Input{}, errors.ErrInvalidArgument("meeting_date must be YYYY-MM-DD")
	}

	input := meetingUsecase.Input{
		Title:            req.Title,
		MeetingDate:      date,
		Attendees:        req.Attendees,
		Agenda:           req.AgendaItems,
		Minutes:          req.Minutes,
		ActionItems:      make([]meetingUsecase.ActionItemInput, len(req.ActionItems)),
		Company:          req.Company,
		CompanyOtherName: req.CompanyOtherName,
		Logo:             logo,
	}
	for i, item := range req.ActionItems {
		input.ActionItems[i] = meetingUsecase.ActionItemInput{
			Description: item.Description,
			AssignedTo:  item.AssignedTo,
			Deadline:    item.Deadline,
			IsDone:      item.IsDone,
		}
	}
	return input, nil
}

func openUpload(file *multipart.FileHeader) (*meetingUsecase.LogoUpload, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &meetingUsecase.LogoUpload{
		Filename: file.Filename,
		Content:  bytes.NewReader(content),
		Size:     int64(len(content)),
	}, nil
}

// parseDay parses a YYYY-MM-DD filter; anything else is ignored
func parseDay(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(entities.DeadlineLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
