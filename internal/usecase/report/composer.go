// Package report composes meeting reports and renders them to PDF.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/infrastructure/renderer"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/assets"
	"github.com/johnquangdev/meeting-minutes/pkg/bidi"
	"github.com/johnquangdev/meeting-minutes/pkg/jalali"
	"github.com/johnquangdev/meeting-minutes/pkg/locale"
)

// FontFamily is the CSS family name the embedded report font is bound to
const FontFamily = "PDFAppFont"

const dateLayout = "2006-01-02"

//go:embed templates
var templateFS embed.FS

var (
	pageTemplate   = template.Must(template.ParseFS(templateFS, "templates/meeting.html"))
	footerTemplate = template.Must(template.ParseFS(templateFS, "templates/footer.html"))
)

// locales whose reports carry the Jalali date
var jalaliLocales = map[string]bool{"fa": true}

// Input is everything a report is composed from
type Input struct {
	Meeting     *entities.Meeting
	ActionItems []entities.ActionItem
	Locale      locale.Locale
	Assets      assets.Bundle
	Today       time.Time
}

// Composer assembles report documents
type Composer struct {
	attribution       string
	defaultStylesheet string
	logger            *zap.Logger
}

// NewComposer creates a Composer that prints attribution in every footer
func NewComposer(attribution string, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	css, err := templateFS.ReadFile("templates/pdf.css")
	if err != nil {
		panic(fmt.Sprintf("missing built-in report stylesheet: %v", err))
	}
	return &Composer{
		attribution:       attribution,
		defaultStylesheet: string(css),
		logger:            logger,
	}
}

// formatter renders values into the document: T for text, D for numbers
type formatter struct {
	shaper bidi.Shaper
}

// T shapes v for right-to-left locales. Shaped text is already in visual
// order, so it is pinned left-to-right to stop the browser reordering it.
func (f formatter) T(v any) template.HTML {
	text := template.HTMLEscapeString(f.shaper.Text(v))
	if !f.shaper.Locale().IsRTL() || text == "" {
		return template.HTML(text)
	}
	return template.HTML(`<span style="unicode-bidi: bidi-override; direction: ltr">` + text + `</span>`)
}

// D maps digits in v to the locale's native digits
func (f formatter) D(v any) string {
	return f.shaper.Digits(v)
}

type page struct {
	formatter
	Lang       string
	Dir        string
	DocTitle   string
	FontFaces  template.CSS
	Stylesheet template.CSS
	FontFamily string
	LogoURI    template.URL
	Title      string
	Company    string
	Date       string
	JalaliDate string
	Agenda     []string
	Attendees  []string
	Minutes    []string
	Counters   actionitem.Counters
	Actions    []actionRow
	Labels     labels
}

// actionRow is one table row; Deadline is free text unless DeadlineIsDate
type actionRow struct {
	Number         int
	Description    string
	AssignedTo     string
	Deadline       string
	DeadlineIsDate bool
	Status         string
	State          string
}

type footer struct {
	formatter
	Dir         string
	Attribution string
	Labels      labels
}

// Compose builds the report page and its print footer
func (c *Composer) Compose(in Input) (renderer.Document, error) {
	m := in.Meeting
	f := formatter{shaper: bidi.NewShaper(in.Locale)}
	l := labelsFor(in.Locale.Code)

	p := page{
		formatter:  f,
		Lang:       in.Locale.Code,
		Dir:        string(in.Locale.Direction),
		DocTitle:   m.Title,
		FontFaces:  fontFaces(in.Assets),
		Stylesheet: template.CSS(c.defaultStylesheet),
		LogoURI:    template.URL(in.Assets.LogoURI),
		Title:      m.Title,
		Company:    m.CompanyDisplay(),
		Date:       m.MeetingDate.Format(dateLayout),
		Agenda:     m.AgendaList(),
		Attendees:  m.AttendeeList(),
		Minutes:    paragraphs(m.Minutes),
		Counters:   actionitem.ComputeCounters(in.ActionItems, in.Today),
		Actions:    actionRows(in.ActionItems, in.Today, l),
		Labels:     l,
	}
	if in.Assets.Stylesheet != "" {
		p.Stylesheet = template.CSS(in.Assets.Stylesheet)
	}
	if p.FontFaces != "" {
		p.FontFamily = FontFamily
	}
	if jalaliLocales[in.Locale.Code] {
		if d, ok := jalali.Format(m.MeetingDate); ok {
			p.JalaliDate = d
		} else {
			c.logger.Warn("report.date.unavailable",
				zap.String("meeting_id", m.ID.String()),
				zap.Time("meeting_date", m.MeetingDate),
			)
		}
	}

	var body bytes.Buffer
	if err := pageTemplate.Execute(&body, p); err != nil {
		return renderer.Document{}, fmt.Errorf("failed to compose report: %w", err)
	}

	var foot bytes.Buffer
	ft := footer{formatter: f, Dir: p.Dir, Attribution: c.attribution, Labels: l}
	if err := footerTemplate.Execute(&foot, ft); err != nil {
		return renderer.Document{}, fmt.Errorf("failed to compose footer: %w", err)
	}

	return renderer.Document{HTML: body.String(), Footer: foot.String()}, nil
}

// fontFaces declares the embedded regular and bold faces under FontFamily
func fontFaces(b assets.Bundle) template.CSS {
	var sb strings.Builder
	face := func(f *assets.EmbeddedFont, weight int) {
		if f == nil || f.URI == "" {
			return
		}
		fmt.Fprintf(&sb,
			"@font-face { font-family: '%s'; src: url(\"%s\") format('%s'); font-weight: %d; font-style: normal; }\n",
			FontFamily, f.URI, f.Format, weight,
		)
	}
	face(b.FontRegular, 400)
	face(b.FontBold, 700)
	return template.CSS(sb.String())
}

// paragraphs splits minutes into non-blank lines
func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// actionRows lists the well-formed items, numbered by their position in the
// full sequence
func actionRows(items []entities.ActionItem, today time.Time, l labels) []actionRow {
	rows := make([]actionRow, 0, len(items))
	for i, item := range items {
		if !item.IsRecord() {
			continue
		}
		row := actionRow{
			Number:      i + 1,
			Description: item.Description,
			AssignedTo:  item.AssignedTo,
			Deadline:    item.Deadline,
			Status:      l.Open,
			State:       "open",
		}
		if d, ok := item.DeadlineDate(); ok {
			row.Deadline = d.Format(entities.DeadlineLayout)
			row.DeadlineIsDate = true
		}
		switch {
		case item.Done():
			row.Status, row.State = l.Done, "done"
		case item.Overdue(today):
			row.Status, row.State = l.Overdue, "overdue"
		}
		rows = append(rows, row)
	}
	return rows
}
