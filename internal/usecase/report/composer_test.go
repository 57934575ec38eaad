package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/assets"
	"github.com/johnquangdev/meeting-minutes/pkg/bidi"
	"github.com/johnquangdev/meeting-minutes/pkg/locale"
)

var today = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func testMeeting() *entities.Meeting {
	return &entities.Meeting{
		ID:          uuid.MustParse("7d0b8c3e-5a51-4b8e-9a43-6c2f0d1e9b11"),
		Title:       "Quarterly review",
		MeetingDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		Attendees:   datatypes.JSON(`["Sara","Reza"]`),
		Agenda:      datatypes.JSON(`["Budget","Hiring"]`),
		Minutes:     "line one\r\n\r\nline two",
		ActionItems: datatypes.JSON(`[
			{"description":"Send budget","assigned_to":"Sara","deadline":"2024-07-01","is_done":true},
			{"description":"Post job ad","assigned_to":"Reza","deadline":"2024-01-01","is_done":false},
			{"description":"Book venue","assigned_to":"","deadline":"","is_done":false},
			42
		]`),
		Company: entities.CompanyOther,
	}
}

func compose(t *testing.T, code string, bundle assets.Bundle) (string, string) {
	t.Helper()
	m := testMeeting()
	doc, err := NewComposer("Powered by Rasha Press", nil).Compose(Input{
		Meeting:     m,
		ActionItems: actionitem.Parse(m.ActionItems),
		Locale:      locale.New(code),
		Assets:      bundle,
		Today:       today,
	})
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	return doc.HTML, doc.Footer
}

func TestCompose_RightToLeft(t *testing.T) {
	html, footer := compose(t, "fa", assets.Bundle{LogoURI: "data:image/png;base64,bG9nbw=="})

	for _, want := range []string{
		`<html lang="fa" dir="rtl">`,
		`unicode-bidi: bidi-override; direction: ltr`,
		`<bdi class="date-jalali">۱۴۰۳-۰۱-۰۱</bdi>`,
		`<bdi class="date-gregorian">۲۰۲۴-۰۳-۲۰</bdi>`,
		`<img class="report-logo" src="data:image/png;base64,bG9nbw=="`,
		`<bdi>۳</bdi>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report is missing %q", want)
		}
	}
	if !strings.Contains(footer, `dir="rtl"`) || !strings.Contains(footer, `class="pageNumber"`) || !strings.Contains(footer, `class="totalPages"`) {
		t.Errorf("unexpected footer %q", footer)
	}
}

func TestCompose_LeftToRight(t *testing.T) {
	html, footer := compose(t, "en", assets.Bundle{})

	if !strings.Contains(html, `<html lang="en" dir="ltr">`) {
		t.Fatal("root direction should be ltr")
	}
	if strings.Contains(html, "bidi-override") {
		t.Error("left-to-right text must not be shaped")
	}
	if strings.Contains(html, "date-jalali") {
		t.Error("jalali date is only printed for persian reports")
	}
	if strings.Contains(html, "<img") {
		t.Error("missing logo must be omitted")
	}
	if strings.Contains(html, "@font-face") {
		t.Error("no font face without embedded fonts")
	}
	for _, want := range []string{
		`<h1 class="report-title">Quarterly review</h1>`,
		`<bdi class="date-gregorian">2024-03-20</bdi>`,
		`<li>Budget</li>`,
		`<li>Reza</li>`,
		`<p>line one</p>`,
		`<p>line two</p>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report is missing %q", want)
		}
	}
	if !strings.Contains(footer, "Powered by Rasha Press") || !strings.Contains(footer, "Page") {
		t.Errorf("unexpected footer %q", footer)
	}
}

func TestCompose_ActionItemRows(t *testing.T) {
	html, _ := compose(t, "en", assets.Bundle{})

	if got := strings.Count(html, `<tr class="status-`); got != 3 {
		t.Fatalf("expected 3 action rows, got %d", got)
	}
	for _, want := range []string{
		`<tr class="status-done">`,
		`<tr class="status-overdue">`,
		`<tr class="status-open">`,
		`<span class="counter total">Total: <bdi>3</bdi></span>`,
		`<span class="counter done">Done: <bdi>1</bdi></span>`,
		`<span class="counter overdue">Overdue: <bdi>1</bdi></span>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report is missing %q", want)
		}
	}
}

func TestCompose_DeadlineCell(t *testing.T) {
	cases := []struct {
		name     string
		locale   string
		deadline string
		want     string
		absent   string
	}{
		{
			name:     "persian free text is shaped",
			locale:   "fa",
			deadline: "هفته بعد",
			want:     `<td class="deadline"><bdi><span style="unicode-bidi: bidi-override; direction: ltr">` + bidi.Shape("هفته بعد") + `</span></bdi></td>`,
			absent:   "هفته بعد",
		},
		{
			name:     "persian date uses native digits",
			locale:   "fa",
			deadline: "2024-07-01",
			want:     `<td class="deadline"><bdi>۲۰۲۴-۰۷-۰۱</bdi></td>`,
		},
		{
			name:     "free text is escaped",
			locale:   "en",
			deadline: "after <launch>",
			want:     `<td class="deadline"><bdi>after &lt;launch&gt;</bdi></td>`,
			absent:   "<launch>",
		},
		{
			name:     "missing deadline",
			locale:   "en",
			deadline: "",
			want:     `<td class="deadline"><bdi>-</bdi></td>`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := testMeeting()
			raw, err := json.Marshal([]map[string]any{
				{"description": "Plan", "assigned_to": "Sara", "deadline": tc.deadline, "is_done": false},
			})
			if err != nil {
				t.Fatal(err)
			}
			m.ActionItems = datatypes.JSON(raw)
			doc, err := NewComposer("", nil).Compose(Input{
				Meeting:     m,
				ActionItems: actionitem.Parse(m.ActionItems),
				Locale:      locale.New(tc.locale),
				Today:       today,
			})
			if err != nil {
				t.Fatalf("compose failed: %v", err)
			}
			if !strings.Contains(doc.HTML, tc.want) {
				t.Errorf("report is missing %q", tc.want)
			}
			if tc.absent != "" && strings.Contains(doc.HTML, tc.absent) {
				t.Errorf("report must not contain %q", tc.absent)
			}
		})
	}
}

func TestCompose_FontsAndStylesheet(t *testing.T) {
	html, _ := compose(t, "en", assets.Bundle{
		FontFamily:  "Inter",
		FontRegular: &assets.EmbeddedFont{URI: "data:font/woff2;base64,AAAA", Format: "woff2"},
		FontBold:    &assets.EmbeddedFont{URI: "data:font/woff2;base64,BBBB", Format: "woff2"},
		Stylesheet:  ".custom { color: red; }",
	})

	for _, want := range []string{
		`@font-face { font-family: 'PDFAppFont'; src: url("data:font/woff2;base64,AAAA") format('woff2'); font-weight: 400;`,
		`font-weight: 700;`,
		`.custom { color: red; }`,
		`PDFAppFont`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report is missing %q", want)
		}
	}
	if strings.Contains(html, ".report-header {") {
		t.Error("stylesheet override should replace the built-in one")
	}
}

func TestCompose_EscapesUserText(t *testing.T) {
	m := testMeeting()
	m.Title = `<script>alert(1)</script>`
	doc, err := NewComposer("", nil).Compose(Input{Meeting: m, Locale: locale.New("en"), Today: today})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(doc.HTML, "<script>") {
		t.Fatal("user text must be escaped")
	}
}

func TestParagraphs(t *testing.T) {
	got := paragraphs("a\n  \nb\r\nc")
	if strings.Join(got, "|") != "a|b|c" {
		t.Fatalf("paragraphs = %q", got)
	}
	if len(paragraphs("")) != 0 {
		t.Fatal("empty minutes have no paragraphs")
	}
}
