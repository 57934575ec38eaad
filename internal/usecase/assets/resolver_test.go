package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
)

// memStore is an in-memory AssetStore
type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStore(files map[string]string) *memStore {
	s := &memStore{files: map[string][]byte{}}
	for k, v := range files {
		s.files[k] = []byte(v)
	}
	return s
}

func (s *memStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.files {
		if strings.HasPrefix(k, strings.TrimSuffix(prefix, "/")+"/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[key]
	return ok, nil
}

func (s *memStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, repositories.ErrAssetNotFound)
	}
	return b, nil
}

func (s *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = b
	return nil
}

func TestDiscoverFontFamilies(t *testing.T) {
	keys := []string{
		"fonts/Vazirmatn-Regular.ttf",
		"fonts/Vazirmatn-Bold.ttf",
		"fonts/Vazirmatn-Regular.woff2",
		"fonts/Dana-RegularFaNum.woff2",
		"fonts/Pelak-Medium.ttf",
		"fonts/README.md",
		"fonts/NoWeight.ttf",
		"fonts/sub/Inter-Regular.ttf",
		"images/Fake-Regular.ttf",
	}
	families := DiscoverFontFamilies(keys)

	if len(families) != 2 {
		t.Fatalf("expected 2 families, got %v", families)
	}
	vazir := families["Vazirmatn"]
	if vazir.Regular == nil || vazir.Regular.Key != "fonts/Vazirmatn-Regular.woff2" || vazir.Regular.Format != "woff2" {
		t.Fatalf("woff2 should win for Vazirmatn regular: %+v", vazir.Regular)
	}
	if vazir.Bold == nil || vazir.Bold.Format != "truetype" {
		t.Fatalf("unexpected Vazirmatn bold: %+v", vazir.Bold)
	}
	dana := families["Dana"]
	if dana.Regular == nil || dana.Bold != nil {
		t.Fatalf("Dana should only have a regular weight: %+v", dana)
	}
	if _, ok := families["Pelak"]; ok {
		t.Fatal("family without a recognised weight must be omitted")
	}
}

func TestResolveActiveFonts(t *testing.T) {
	families := DiscoverFontFamilies([]string{
		"fonts/Vazirmatn-Regular.ttf",
		"fonts/Dana-Bold.ttf",
	})

	got := ResolveActiveFonts("Dana", "Vazirmatn", families)
	if got.Family != "Dana" || got.Regular != nil || got.Bold == nil {
		t.Fatalf("unexpected Dana selection: %+v", got)
	}
	if got := ResolveActiveFonts("Unknown", "Vazirmatn", families); got.Family != "Vazirmatn" {
		t.Fatalf("unknown selection should fall back, got %+v", got)
	}
	if got := ResolveActiveFonts("", "Missing", families); got.Family != "" || got.Regular != nil {
		t.Fatalf("nothing resolvable should yield empty, got %+v", got)
	}
}

func TestCatalogue(t *testing.T) {
	families := DiscoverFontFamilies([]string{
		"fonts/Vazirmatn-Regular.ttf",
		"fonts/Custom-Bold.ttf",
	})
	got := families.Catalogue()
	if len(got) != 2 || got[0].ID != "Custom" || got[0].Label != "Custom" {
		t.Fatalf("unexpected catalogue %v", got)
	}
	if got[1].Label != "وزیرمتن" {
		t.Fatalf("Vazirmatn label = %q", got[1].Label)
	}
}

func TestResolveLogo(t *testing.T) {
	ctx := context.Background()
	custom := "custom/acme_1.png"
	missing := "custom/gone.png"

	cases := []struct {
		name    string
		files   map[string]string
		meeting entities.Meeting
		want    string
		ok      bool
	}{
		{
			name:    "mapped company",
			files:   map[string]string{"images/eazymig.png": "x", "images/default_logo.png": "d"},
			meeting: entities.Meeting{Company: "EazyMig"},
			want:    "images/eazymig.png", ok: true,
		},
		{
			name:    "uploaded logo wins",
			files:   map[string]string{"images/custom/acme_1.png": "x", "images/default_logo.png": "d"},
			meeting: entities.Meeting{Company: "Other", CompanyLogo: &custom},
			want:    "images/custom/acme_1.png", ok: true,
		},
		{
			name:    "missing upload falls back to default",
			files:   map[string]string{"images/default_logo.png": "d"},
			meeting: entities.Meeting{Company: "Other", CompanyLogo: &missing},
			want:    "images/default_logo.png", ok: true,
		},
		{
			name:    "unknown company uses default",
			files:   map[string]string{"images/default_logo.png": "d"},
			meeting: entities.Meeting{Company: "Nobody"},
			want:    "images/default_logo.png", ok: true,
		},
		{
			name:    "no default means no logo",
			files:   map[string]string{},
			meeting: entities.Meeting{Company: "EazyMig"},
			want:    "", ok: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(newMemStore(tc.files), Options{}, nil)
			got, ok := r.ResolveLogo(ctx, &tc.meeting)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("ResolveLogo = %q, %v; want %q, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestEncodeAsDataReference(t *testing.T) {
	r := NewResolver(newMemStore(map[string]string{"fonts/Dana-Bold.woff2": "abc"}), Options{}, nil)

	uri, ok := r.EncodeAsDataReference(context.Background(), "fonts/Dana-Bold.woff2")
	if !ok || uri != "data:font/woff2;base64,"+base64.StdEncoding.EncodeToString([]byte("abc")) {
		t.Fatalf("unexpected data uri %q", uri)
	}
	if _, ok := r.EncodeAsDataReference(context.Background(), "fonts/missing.ttf"); ok {
		t.Fatal("missing asset must not encode")
	}
}

func TestEncodeLogo_Downscales(t *testing.T) {
	img := imaging.New(1200, 300, color.White)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	store := newMemStore(nil)
	store.files["images/wide.png"] = buf.Bytes()

	r := NewResolver(store, Options{LogoMaxWidth: 600}, nil)
	uri, ok := r.EncodeLogo(context.Background(), "images/wide.png")
	if !ok {
		t.Fatal("encode failed")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	if err != nil {
		t.Fatalf("bad base64: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Width != 600 || cfg.Height != 150 {
		t.Fatalf("resized to %dx%d", cfg.Width, cfg.Height)
	}
}

func TestCustomLogoRef(t *testing.T) {
	now := time.Unix(1700000000, 0)

	got, err := CustomLogoRef("My Logo.PNG", now)
	if err != nil || got != "custom/My_Logo_1700000000.png" {
		t.Fatalf("CustomLogoRef = %q, %v", got, err)
	}
	got, err = CustomLogoRef("../../etc/لوگو.webp", now)
	if err != nil || got != "custom/logo_1700000000.webp" {
		t.Fatalf("CustomLogoRef = %q, %v", got, err)
	}
	if _, err := CustomLogoRef("logo.svg", now); err == nil {
		t.Fatal("svg upload must be rejected")
	}
}

func TestResolve_Bundle(t *testing.T) {
	store := newMemStore(map[string]string{
		"fonts/Vazirmatn-Regular.ttf": "r",
		"fonts/Vazirmatn-Bold.ttf":    "b",
		"fonts/Inter-Regular.woff2":   "i",
		"images/default_logo.png":     "not really a png",
		"css/pdf.css":                 "body{}",
	})
	r := NewResolver(store, Options{DefaultFontFA: "Vazirmatn", DefaultFontEN: "Inter", LogoMaxWidth: 600}, nil)
	meeting := &entities.Meeting{ID: uuid.New(), Company: "Other"}

	fa, err := r.Resolve(context.Background(), meeting, true, Selection{})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if fa.FontFamily != "Vazirmatn" || fa.FontRegular == nil || fa.FontBold == nil {
		t.Fatalf("unexpected fa fonts: %+v", fa)
	}
	if fa.FontRegular.Format != "truetype" || !strings.HasPrefix(fa.FontRegular.URI, "data:font/ttf;base64,") {
		t.Fatalf("unexpected regular font %+v", fa.FontRegular)
	}
	if !strings.HasPrefix(fa.LogoURI, "data:image/png;base64,") {
		t.Fatalf("logo not embedded: %q", fa.LogoURI)
	}
	if fa.Stylesheet != "body{}" {
		t.Fatalf("stylesheet = %q", fa.Stylesheet)
	}

	en, err := r.Resolve(context.Background(), meeting, false, Selection{FontEN: "Inter"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if en.FontFamily != "Inter" || en.FontBold != nil {
		t.Fatalf("unexpected en fonts: %+v", en)
	}
}

func TestSaveCustomLogo(t *testing.T) {
	store := newMemStore(nil)
	r := NewResolver(store, Options{}, nil)

	ref, err := r.SaveCustomLogo(context.Background(), "acme.png", strings.NewReader("png"), 3)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(ref, "custom/acme_") {
		t.Fatalf("unexpected ref %q", ref)
	}
	if ok, _ := store.Exists(context.Background(), "images/"+ref); !ok {
		t.Fatal("logo not written to the images prefix")
	}
}

func TestReadImage(t *testing.T) {
	store := newMemStore(map[string]string{
		"images/custom/acme_1.png": "png",
		"secrets.txt":              "nope",
	})
	r := NewResolver(store, Options{}, nil)
	ctx := context.Background()

	b, mediaType, err := r.ReadImage(ctx, "custom/acme_1.png")
	if err != nil || string(b) != "png" || mediaType != "image/png" {
		t.Fatalf("got %q %q %v", b, mediaType, err)
	}

	for _, ref := range []string{"../secrets.txt", "custom/missing.png", ""} {
		if _, _, err := r.ReadImage(ctx, ref); !errors.Is(err, repositories.ErrAssetNotFound) {
			t.Fatalf("ReadImage(%q) err = %v", ref, err)
		}
	}
}
