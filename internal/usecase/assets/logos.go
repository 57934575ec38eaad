package assets

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ImagesPrefix is where logos live in the asset store
const ImagesPrefix = "images"

// CustomLogoDir holds uploaded logos, relative to ImagesPrefix
const CustomLogoDir = "custom"

// ErrUnsupportedLogo is returned for uploads with a disallowed extension
var ErrUnsupportedLogo = errors.New("unsupported logo file type")

//go:embed companies.yaml
var defaultCompanyMap []byte

var allowedLogoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// CompanyMap maps a company name to its logo file under ImagesPrefix
type CompanyMap struct {
	Default   string            `yaml:"default"`
	Companies map[string]string `yaml:"companies"`
}

// DefaultCompanyMap returns the built-in company mapping
func DefaultCompanyMap() CompanyMap {
	m, err := ParseCompanyMap(defaultCompanyMap)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in company map: %v", err))
	}
	return m
}

// ParseCompanyMap decodes a YAML company mapping
func ParseCompanyMap(b []byte) (CompanyMap, error) {
	var m CompanyMap
	if err := yaml.Unmarshal(b, &m); err != nil {
		return CompanyMap{}, fmt.Errorf("failed to parse company map: %w", err)
	}
	if m.Default == "" {
		return CompanyMap{}, fmt.Errorf("company map has no default logo")
	}
	if m.Companies == nil {
		m.Companies = map[string]string{}
	}
	return m, nil
}

// LoadCompanyMap reads a YAML company mapping from r
func LoadCompanyMap(r io.Reader) (CompanyMap, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return CompanyMap{}, fmt.Errorf("failed to read company map: %w", err)
	}
	return ParseCompanyMap(b)
}

// LogoFor returns the logo file for company, or the default
func (m CompanyMap) LogoFor(company string) string {
	if file, ok := m.Companies[company]; ok && file != "" {
		return file
	}
	return m.Default
}

// imageKey turns a logo reference relative to ImagesPrefix into a store key
func imageKey(ref string) string {
	return path.Join(ImagesPrefix, strings.TrimLeft(ref, "/"))
}

// CustomLogoRef builds the reference under which an uploaded logo is kept:
// custom/<name>_<unix>.<ext>
func CustomLogoRef(filename string, now time.Time) (string, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	if !allowedLogoExtensions[ext] {
		return "", fmt.Errorf("%q: %w", filename, ErrUnsupportedLogo)
	}
	name := sanitizeFilename(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "logo"
	}
	return fmt.Sprintf("%s/%s_%d%s", CustomLogoDir, name, now.Unix(), ext), nil
}

// sanitizeFilename keeps ASCII letters, digits, dot, dash and underscore,
// turning whitespace into underscores
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
