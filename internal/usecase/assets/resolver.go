// Package assets discovers fonts and logos in the asset store and encodes
// the ones a report needs as self-contained data URIs.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
)

// StylesheetKey is the optional report stylesheet override in the asset store
const StylesheetKey = "css/pdf.css"

// Selection is the user's font choice per script
type Selection struct {
	FontFA string
	FontEN string
}

// Options configures a Resolver
type Options struct {
	CompanyMap    CompanyMap
	DefaultFontFA string
	DefaultFontEN string
	LogoMaxWidth  int
}

// EmbeddedFont is a font ready for an @font-face rule
type EmbeddedFont struct {
	URI    string
	Format string
}

// Bundle holds every embeddable asset of one report. Empty fields mean the
// asset was unavailable and the report renders without it.
type Bundle struct {
	FontFamily  string
	FontRegular *EmbeddedFont
	FontBold    *EmbeddedFont
	LogoURI     string
	Stylesheet  string
}

// Resolver resolves and encodes report assets
type Resolver struct {
	store  repositories.AssetStore
	opts   Options
	logger *zap.Logger
}

// NewResolver creates a Resolver over store
func NewResolver(store repositories.AssetStore, opts Options, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CompanyMap.Default == "" {
		opts.CompanyMap = DefaultCompanyMap()
	}
	return &Resolver{store: store, opts: opts, logger: logger}
}

// DiscoverFontFamilies scans the fonts prefix of the store
func (r *Resolver) DiscoverFontFamilies(ctx context.Context) (Families, error) {
	keys, err := r.store.List(ctx, FontsPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list fonts: %w", err)
	}
	return DiscoverFontFamilies(keys), nil
}

// FontCatalogue lists the available font families
func (r *Resolver) FontCatalogue(ctx context.Context) ([]FontOption, error) {
	families, err := r.DiscoverFontFamilies(ctx)
	if err != nil {
		return nil, err
	}
	return families.Catalogue(), nil
}

// ResolveLogo picks the uploaded logo, else the company's mapped logo, and
// falls back to the default logo when the pick is not in the store. ok is
// false when not even the default exists.
func (r *Resolver) ResolveLogo(ctx context.Context, meeting *entities.Meeting) (key string, ok bool) {
	candidate, uploaded := meeting.UploadedLogo()
	if !uploaded {
		candidate = r.opts.CompanyMap.LogoFor(meeting.Company)
	}

	key = imageKey(candidate)
	if r.exists(ctx, key) {
		return key, true
	}

	fallback := imageKey(r.opts.CompanyMap.Default)
	r.logger.Warn("assets.logo.fallback",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("missing", key),
		zap.String("fallback", fallback),
	)
	if fallback != key && r.exists(ctx, fallback) {
		return fallback, true
	}
	return "", false
}

// LogoReference returns the logo reference relative to the images prefix,
// for clients that serve images themselves
func (r *Resolver) LogoReference(ctx context.Context, meeting *entities.Meeting) (string, bool) {
	key, ok := r.ResolveLogo(ctx, meeting)
	if !ok {
		return "", false
	}
	rel, _ := relativeTo(ImagesPrefix, key)
	return rel, true
}

// ReadImage returns an image by its reference relative to the images prefix,
// together with its media type. References that leave the prefix are
// reported as missing.
func (r *Resolver) ReadImage(ctx context.Context, ref string) ([]byte, string, error) {
	key := imageKey(ref)
	if _, ok := relativeTo(ImagesPrefix, key); !ok || strings.Contains(ref, "..") {
		return nil, "", repositories.ErrAssetNotFound
	}
	b, err := r.store.Read(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return b, MediaType(key), nil
}

func (r *Resolver) exists(ctx context.Context, key string) bool {
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		r.logger.Warn("assets.stat.failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

// EncodeAsDataReference reads key and encodes it as a data URI. ok is false
// when the asset cannot be read.
func (r *Resolver) EncodeAsDataReference(ctx context.Context, key string) (uri string, ok bool) {
	b, err := r.store.Read(ctx, key)
	if err != nil {
		r.logger.Warn("assets.read.failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return DataURI(MediaType(key), b), true
}

// EncodeLogo is EncodeAsDataReference with oversized raster logos scaled
// down to the configured width
func (r *Resolver) EncodeLogo(ctx context.Context, key string) (uri string, ok bool) {
	b, err := r.store.Read(ctx, key)
	if err != nil {
		r.logger.Warn("assets.read.failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	mediaType, b := downscale(key, b, r.opts.LogoMaxWidth)
	return DataURI(mediaType, b), true
}

// Stylesheet returns the stylesheet override, if the store has one
func (r *Resolver) Stylesheet(ctx context.Context) (string, bool) {
	b, err := r.store.Read(ctx, StylesheetKey)
	if err != nil {
		if !errors.Is(err, repositories.ErrAssetNotFound) {
			r.logger.Warn("assets.read.failed", zap.String("key", StylesheetKey), zap.Error(err))
		}
		return "", false
	}
	return string(b), true
}

// SaveCustomLogo stores an uploaded logo and returns its reference
// relative to the images prefix
func (r *Resolver) SaveCustomLogo(ctx context.Context, filename string, content io.Reader, size int64) (string, error) {
	ref, err := CustomLogoRef(filename, time.Now().UTC())
	if err != nil {
		return "", err
	}
	key := imageKey(ref)
	if err := r.store.Put(ctx, key, content, size, MediaType(key)); err != nil {
		return "", fmt.Errorf("failed to save logo: %w", err)
	}
	return ref, nil
}

// Resolve gathers and encodes the fonts, logo and stylesheet for one report.
// Missing assets are logged and left empty; only cancellation is an error.
func (r *Resolver) Resolve(ctx context.Context, meeting *entities.Meeting, rtl bool, sel Selection) (Bundle, error) {
	families, err := r.DiscoverFontFamilies(ctx)
	if err != nil {
		r.logger.Warn("assets.fonts.unavailable", zap.Error(err))
		families = Families{}
	}

	selection, fallback := sel.FontEN, r.opts.DefaultFontEN
	if rtl {
		selection, fallback = sel.FontFA, r.opts.DefaultFontFA
	}
	active := ResolveActiveFonts(selection, fallback, families)
	if active.Family == "" {
		r.logger.Warn("assets.font.missing",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("selection", selection),
		)
	}

	bundle := Bundle{FontFamily: active.Family}
	g, gctx := errgroup.WithContext(ctx)

	encodeFont := func(asset *FontAsset, dst **EmbeddedFont) {
		if asset == nil {
			return
		}
		g.Go(func() error {
			if uri, ok := r.EncodeAsDataReference(gctx, asset.Key); ok {
				*dst = &EmbeddedFont{URI: uri, Format: asset.Format}
			}
			return gctx.Err()
		})
	}
	encodeFont(active.Regular, &bundle.FontRegular)
	encodeFont(active.Bold, &bundle.FontBold)

	g.Go(func() error {
		if key, ok := r.ResolveLogo(gctx, meeting); ok {
			bundle.LogoURI, _ = r.EncodeLogo(gctx, key)
		}
		return gctx.Err()
	})
	g.Go(func() error {
		bundle.Stylesheet, _ = r.Stylesheet(gctx)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return Bundle{}, fmt.Errorf("failed to resolve assets: %w", err)
	}
	return bundle, nil
}

func relativeTo(prefix, key string) (string, bool) {
	rel := path.Clean(key)
	p := path.Clean(prefix) + "/"
	if len(rel) <= len(p) || rel[:len(p)] != p {
		return rel, false
	}
	return rel[len(p):], true
}
