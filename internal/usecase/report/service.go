package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/infrastructure/renderer"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/assets"
	"github.com/johnquangdev/meeting-minutes/pkg/locale"
)

// Filename is the attachment name of a downloaded report
const Filename = "meeting_report.pdf"

// AssetResolver supplies the embeddable assets of one report
type AssetResolver interface {
	Resolve(ctx context.Context, meeting *entities.Meeting, rtl bool, sel assets.Selection) (assets.Bundle, error)
}

// Renderer prints a composed document to PDF
type Renderer interface {
	Render(ctx context.Context, doc renderer.Document) ([]byte, error)
}

// Cache keeps rendered reports
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Request identifies one report rendering
type Request struct {
	Meeting *entities.Meeting
	Locale  locale.Locale
	Fonts   assets.Selection
}

// Service generates meeting reports
type Service struct {
	assets   AssetResolver
	composer *Composer
	renderer Renderer
	cache    Cache
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a report Service. cache may be nil.
func NewService(resolver AssetResolver, composer *Composer, r Renderer, cache Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		assets:   resolver,
		composer: composer,
		renderer: r,
		cache:    cache,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the clock used for overdue computation
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CacheKey identifies a rendered report. Overdue markers depend on the day,
// so the day is part of the key.
func CacheKey(req Request, today time.Time) string {
	return fmt.Sprintf("report:%s:%d:%s:%s:%s:%s",
		req.Meeting.ID,
		req.Meeting.UpdatedAt.UnixNano(),
		req.Locale.Code,
		req.Fonts.FontFA,
		req.Fonts.FontEN,
		today.Format(dateLayout),
	)
}

// Generate renders the report for req. Rendering engine failures are
// returned wrapping renderer.ErrEngineUnavailable or renderer.ErrRenderFailed.
func (s *Service) Generate(ctx context.Context, req Request) ([]byte, error) {
	today := s.now()
	meetingID := req.Meeting.ID.String()
	key := CacheKey(req, today)

	if s.cache != nil && s.ttl > 0 {
		pdf, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("report.cache.get_failed", zap.String("meeting_id", meetingID), zap.Error(err))
		}
		if ok {
			s.logger.Debug("report.cache.hit", zap.String("meeting_id", meetingID))
			return pdf, nil
		}
	}

	s.logger.Info("report.render.started",
		zap.String("meeting_id", meetingID),
		zap.String("locale", req.Locale.Code),
	)
	start := time.Now()

	items := actionitem.Parse(req.Meeting.ActionItems)

	bundle, err := s.assets.Resolve(ctx, req.Meeting, req.Locale.IsRTL(), req.Fonts)
	if err != nil {
		return nil, err
	}

	doc, err := s.composer.Compose(Input{
		Meeting:     req.Meeting,
		ActionItems: items,
		Locale:      req.Locale,
		Assets:      bundle,
		Today:       today,
	})
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.Render(ctx, doc)
	if err != nil {
		s.logger.Error("report.render.failed",
			zap.String("meeting_id", meetingID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("report.render.completed",
		zap.String("meeting_id", meetingID),
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, pdf, s.ttl); err != nil {
			s.logger.Warn("report.cache.set_failed", zap.String("meeting_id", meetingID), zap.Error(err))
		}
	}
	return pdf, nil
}
