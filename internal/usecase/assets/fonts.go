package assets

import (
	"path"
	"sort"
	"strings"
)

// FontsPrefix is where font files live in the asset store
const FontsPrefix = "fonts"

// FontAsset is one discovered font file
type FontAsset struct {
	Key    string
	Format string // CSS @font-face format()
}

// FontFamily lists the weights discovered for one family
type FontFamily struct {
	Name    string
	Regular *FontAsset
	Bold    *FontAsset
}

// Families maps family name to its discovered weights
type Families map[string]FontFamily

// ActiveFonts is the resolved font selection for one report
type ActiveFonts struct {
	Family  string
	Regular *FontAsset
	Bold    *FontAsset
}

// FontOption is one entry of the font catalogue
type FontOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// container extensions by preference; earlier entries win when a weight
// exists in more than one format
var fontFormats = []struct {
	ext    string
	format string
}{
	{".woff2", "woff2"},
	{".woff", "woff"},
	{".ttf", "truetype"},
	{".otf", "opentype"},
}

// native names shown for known Persian font families
var familyLabels = map[string]string{
	"Vazirmatn":  "وزیرمتن",
	"IRANYekanX": "ایران‌یکان ایکس",
	"Dana":       "دانا",
	"PeydaWeb":   "پیدا",
	"Pelak":      "پلاک",
	"ModamWeb":   "مدام",
	"AbarMid":    "آبار مید",
}

func fontFormatRank(name string) (format string, rank int, ok bool) {
	lower := strings.ToLower(name)
	for i, f := range fontFormats {
		if strings.HasSuffix(lower, f.ext) {
			return f.format, i, true
		}
	}
	return "", 0, false
}

// DiscoverFontFamilies groups store keys named <Family>-<Weight>.<ext> that
// sit directly under the fonts prefix. Weight must start with "regular" or
// "bold", case-insensitively; anything else is ignored.
func DiscoverFontFamilies(keys []string) Families {
	type pick struct {
		asset FontAsset
		rank  int
	}
	picked := make(map[string]map[string]pick)

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	for _, key := range sorted {
		dir, name := path.Split(key)
		if strings.Trim(dir, "/") != FontsPrefix {
			continue
		}
		format, rank, ok := fontFormatRank(name)
		if !ok {
			continue
		}
		dash := strings.LastIndex(name, "-")
		if dash <= 0 {
			continue
		}
		family := name[:dash]
		weightPart := strings.ToLower(strings.SplitN(name[dash+1:], ".", 2)[0])

		var weight string
		switch {
		case strings.HasPrefix(weightPart, "regular"):
			weight = "regular"
		case strings.HasPrefix(weightPart, "bold"):
			weight = "bold"
		default:
			continue
		}

		weights := picked[family]
		if weights == nil {
			weights = make(map[string]pick)
			picked[family] = weights
		}
		if prev, ok := weights[weight]; ok && prev.rank <= rank {
			continue
		}
		weights[weight] = pick{asset: FontAsset{Key: key, Format: format}, rank: rank}
	}

	families := make(Families, len(picked))
	for name, weights := range picked {
		fam := FontFamily{Name: name}
		if p, ok := weights["regular"]; ok {
			asset := p.asset
			fam.Regular = &asset
		}
		if p, ok := weights["bold"]; ok {
			asset := p.asset
			fam.Bold = &asset
		}
		families[name] = fam
	}
	return families
}

// ResolveActiveFonts returns the weights present for selection, falling back
// to fallback when the selection is empty or unknown. Missing weights stay nil.
func ResolveActiveFonts(selection, fallback string, discovered Families) ActiveFonts {
	for _, name := range []string{selection, fallback} {
		if name == "" {
			continue
		}
		if fam, ok := discovered[name]; ok {
			return ActiveFonts{Family: fam.Name, Regular: fam.Regular, Bold: fam.Bold}
		}
	}
	return ActiveFonts{}
}

// Catalogue lists discovered families sorted by name, labelled with their
// native display names where known
func (f Families) Catalogue() []FontOption {
	options := make([]FontOption, 0, len(f))
	for name := range f {
		label := name
		if native, ok := familyLabels[name]; ok {
			label = native
		}
		options = append(options, FontOption{ID: name, Label: label})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].ID < options[j].ID })
	return options
}
