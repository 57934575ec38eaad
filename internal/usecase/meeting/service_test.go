package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-minutes/internal/domain/entities"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/actionitem"
	"github.com/johnquangdev/meeting-minutes/internal/usecase/assets"
	usecaseErrors "github.com/johnquangdev/meeting-minutes/internal/usecase/errors"
)

var fixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

// fakeRepo is an in-memory MeetingRepository
type fakeRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{meetings: map[uuid.UUID]*entities.Meeting{}}
}

func (r *fakeRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *m
	r.meetings[m.ID] = &c
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (r *fakeRepo) Update(_ context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *m
	r.meetings[m.ID] = &c
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.meetings, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, f repositories.MeetingFilters) ([]*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Meeting
	for _, m := range r.meetings {
		if m.UserID != f.UserID {
			continue
		}
		if f.Company != "" && m.Company != f.Company {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(m.Title+" "+m.Minutes), strings.ToLower(f.Search)) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MeetingDate.After(out[j].MeetingDate) })
	return out, nil
}

func (r *fakeRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	all, _ := r.List(ctx, repositories.MeetingFilters{UserID: userID})
	return int64(len(all)), nil
}

func (r *fakeRepo) FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error) {
	all, _ := r.List(ctx, repositories.MeetingFilters{UserID: userID})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeRepo) MutateActionItems(_ context.Context, id uuid.UUID, mutate repositories.ActionItemsMutation) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *m
	items, err := mutate(&c)
	if err != nil {
		return nil, err
	}
	c.ActionItems = items
	r.meetings[id] = &c
	return &c, nil
}

type fakeAssets struct {
	saved []string
	err   error
}

func (a *fakeAssets) SaveCustomLogo(_ context.Context, filename string, content io.Reader, _ int64) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	ref, err := assets.CustomLogoRef(filename, fixedNow)
	if err != nil {
		return "", err
	}
	a.saved = append(a.saved, ref)
	return ref, nil
}

func (a *fakeAssets) LogoReference(_ context.Context, m *entities.Meeting) (string, bool) {
	if ref, ok := m.UploadedLogo(); ok {
		return ref, true
	}
	return "default_logo.png", true
}

func (a *fakeAssets) FontCatalogue(context.Context) ([]assets.FontOption, error) {
	return []assets.FontOption{{ID: "Vazirmatn", Label: "وزیرمتن"}}, nil
}

func newTestService() (*Service, *fakeRepo, *fakeAssets) {
	repo := newFakeRepo()
	a := &fakeAssets{}
	store := actionitem.NewStoreWithClock(func() time.Time { return fixedNow })
	return NewService(repo, store, a, nil), repo, a
}

func boolPtr(b bool) *bool { return &b }

func sampleInput() Input {
	return Input{
		Title:       "  Weekly sync ",
		MeetingDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Attendees:   []string{"Sara", " ", "Reza", ""},
		Agenda:      []string{"Budget", "", "Hiring"},
		Minutes:     "notes",
		ActionItems: []ActionItemInput{
			{Description: "Send budget", AssignedTo: "Sara", Deadline: "2024-06-01"},
			{Description: "Call vendor", AssignedTo: "Mina", Deadline: "2024-07-01"},
			{Description: "Archive", Deadline: "not a date", IsDone: boolPtr(true)},
		},
		Company: "Rahkar Gasht",
	}
}

func TestCreate_NormalisesInput(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()

	m, err := svc.Create(context.Background(), owner, sampleInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	stored := repo.meetings[m.ID]

	if stored.Title != "Weekly sync" {
		t.Errorf("title = %q", stored.Title)
	}
	if got := strings.Join(stored.AttendeeList(), ","); got != "Sara,Reza" {
		t.Errorf("attendees = %q", got)
	}
	if got := strings.Join(stored.AgendaList(), ","); got != "Budget,Hiring" {
		t.Errorf("agenda = %q", got)
	}

	items := actionitem.Parse(stored.ActionItems)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].AssignedTo != "Sara" {
		t.Error("valid assignee must be kept")
	}
	if items[1].AssignedTo != "" {
		t.Error("assignee outside the attendee list must be cleared")
	}
	if items[2].Deadline != "" || !items[2].IsDone || items[2].DoneAt == nil {
		t.Errorf("unexpected third item %+v", items[2])
	}
	if stored.CompanyLogo != nil {
		t.Error("no logo was uploaded")
	}
}

func TestCreate_LogoOnlyForOther(t *testing.T) {
	svc, repo, a := newTestService()
	in := sampleInput()
	in.Logo = &LogoUpload{Filename: "acme logo.PNG", Content: strings.NewReader("png"), Size: 3}

	m, err := svc.Create(context.Background(), uuid.New(), in)
	if err != nil {
		t.Fatal(err)
	}
	if repo.meetings[m.ID].CompanyLogo != nil || len(a.saved) != 0 {
		t.Fatal("logos of mapped companies are ignored")
	}

	in.Company = entities.CompanyOther
	in.CompanyOtherName = "Acme"
	in.Logo = &LogoUpload{Filename: "acme logo.PNG", Content: strings.NewReader("png"), Size: 3}
	m, err = svc.Create(context.Background(), uuid.New(), in)
	if err != nil {
		t.Fatal(err)
	}
	stored := repo.meetings[m.ID]
	if stored.CompanyLogo == nil || *stored.CompanyLogo != "custom/acme_logo_1718443800.png" {
		t.Fatalf("unexpected logo ref %v", stored.CompanyLogo)
	}
	if stored.CompanyDisplay() != "Acme" {
		t.Errorf("company display = %q", stored.CompanyDisplay())
	}
}

func TestCreate_RejectsUnsupportedLogo(t *testing.T) {
	svc, _, _ := newTestService()
	in := sampleInput()
	in.Company = entities.CompanyOther
	in.Logo = &LogoUpload{Filename: "logo.gif", Content: strings.NewReader("gif"), Size: 3}

	if _, err := svc.Create(context.Background(), uuid.New(), in); !errors.Is(err, assets.ErrUnsupportedLogo) {
		t.Fatalf("expected ErrUnsupportedLogo, got %v", err)
	}
}

func TestUpdate_PreservesCompletionByPosition(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()
	m, err := svc.Create(context.Background(), owner, sampleInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ToggleActionItem(context.Background(), owner, m.ID, 0); err != nil {
		t.Fatal(err)
	}
	before := actionitem.Parse(repo.meetings[m.ID].ActionItems)[0].DoneAt

	in := sampleInput()
	in.ActionItems[0].Description = "Send revised budget"
	if _, err := svc.Update(context.Background(), owner, m.ID, in); err != nil {
		t.Fatal(err)
	}

	items := actionitem.Parse(repo.meetings[m.ID].ActionItems)
	if items[0].Description != "Send revised budget" || !items[0].Done() {
		t.Fatalf("edit should keep completion, got %+v", items[0])
	}
	if items[0].DoneAt == nil || !items[0].DoneAt.Equal(*before) {
		t.Fatal("edit should keep done_at")
	}

	if _, err := svc.Update(context.Background(), uuid.New(), m.ID, in); !errors.Is(err, usecaseErrors.ErrNotMeetingOwner) {
		t.Fatalf("expected ErrNotMeetingOwner, got %v", err)
	}
}

func TestToggleActionItem(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()
	m, _ := svc.Create(context.Background(), owner, sampleInput())

	res, err := svc.ToggleActionItem(context.Background(), owner, m.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := actionitem.Counters{Total: 3, Done: 2, Overdue: 0}
	if !res.IsDone || res.Counters != want {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = svc.ToggleActionItem(context.Background(), owner, m.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	want = actionitem.Counters{Total: 3, Done: 1, Overdue: 1}
	if res.IsDone || res.Counters != want {
		t.Fatalf("second toggle should restore, got %+v", res)
	}
	if item := actionitem.Parse(repo.meetings[m.ID].ActionItems)[0]; item.DoneAt != nil {
		t.Fatal("done_at must be cleared")
	}

	if _, err := svc.ToggleActionItem(context.Background(), owner, m.ID, 3); !errors.Is(err, actionitem.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := svc.ToggleActionItem(context.Background(), uuid.New(), m.ID, 0); !errors.Is(err, usecaseErrors.ErrNotMeetingOwner) {
		t.Fatalf("expected ErrNotMeetingOwner, got %v", err)
	}
	if _, err := svc.ToggleActionItem(context.Background(), owner, uuid.New(), 0); !errors.Is(err, usecaseErrors.ErrMeetingNotFound) {
		t.Fatalf("expected ErrMeetingNotFound, got %v", err)
	}
}

func TestBulkSetActionItems(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()
	m, _ := svc.Create(context.Background(), owner, sampleInput())
	repo.meetings[m.ID].ActionItems = datatypes.JSON(`[{"description":"a","deadline":"2024-01-01"},"legacy",{"description":"b","status":"Closed"}]`)

	res, err := svc.BulkSetActionItems(context.Background(), owner, m.ID, []int{0, 1, 7, -1, 2}, true)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := json.Marshal(res.Updated); string(got) != "[0,2]" {
		t.Fatalf("updated = %s", got)
	}
	if !res.Done || res.Counters != (actionitem.Counters{Total: 2, Done: 2}) {
		t.Fatalf("unexpected result %+v", res)
	}

	raw := string(repo.meetings[m.ID].ActionItems)
	if !strings.Contains(raw, `"legacy"`) {
		t.Fatalf("non-record entries must be kept, got %s", raw)
	}
}

func TestList_FiltersAndPaginates(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()
	for i := 0; i < 12; i++ {
		in := sampleInput()
		in.MeetingDate = fixedNow.AddDate(0, 0, -i)
		if i%3 == 0 {
			in.ActionItems = nil
		}
		if _, err := svc.Create(context.Background(), owner, in); err != nil {
			t.Fatal(err)
		}
	}
	_, _ = svc.Create(context.Background(), uuid.New(), sampleInput())

	res, err := svc.List(context.Background(), owner, ListQuery{Page: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 12 || res.TotalPages != 2 || len(res.Items) != 3 || res.Page != 2 {
		t.Fatalf("unexpected page %+v", res)
	}
	if res.Items[0].JalaliDate == "" || res.Items[0].LogoRef == "" {
		t.Fatal("rows carry display values")
	}

	res, _ = svc.List(context.Background(), owner, ListQuery{Status: "OVERDUE"})
	if res.Total != 8 {
		t.Fatalf("overdue filter matched %d", res.Total)
	}
	for _, o := range res.Items {
		if o.Counters.Overdue == 0 {
			t.Fatal("overdue filter returned a meeting without overdue items")
		}
	}

	res, _ = svc.List(context.Background(), owner, ListQuery{Page: 5})
	if len(res.Items) != 0 || res.Total != 12 {
		t.Fatalf("out of range page should be empty, got %+v", res)
	}

	from, to := fixedNow, fixedNow.AddDate(0, 0, -1)
	if _, err := svc.List(context.Background(), owner, ListQuery{DateFrom: &from, DateTo: &to}); !errors.Is(err, usecaseErrors.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestMatchStatus(t *testing.T) {
	cases := []struct {
		status string
		c      actionitem.Counters
		want   bool
	}{
		{"", actionitem.Counters{}, true},
		{StatusAll, actionitem.Counters{}, true},
		{"bogus", actionitem.Counters{}, true},
		{StatusOverdue, actionitem.Counters{Total: 2, Overdue: 1}, true},
		{StatusOverdue, actionitem.Counters{Total: 2}, false},
		{StatusDone, actionitem.Counters{Total: 2, Done: 1}, true},
		{StatusOpen, actionitem.Counters{Total: 2, Done: 2}, false},
		{StatusOpen, actionitem.Counters{Total: 2, Done: 1}, true},
		{StatusOpen, actionitem.Counters{}, false},
	}
	for _, tc := range cases {
		if got := matchStatus(tc.status, tc.c); got != tc.want {
			t.Errorf("matchStatus(%q, %+v) = %v", tc.status, tc.c, got)
		}
	}
}

func TestSummary(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()
	for i := 0; i < 7; i++ {
		in := sampleInput()
		in.MeetingDate = fixedNow.AddDate(0, 0, -i)
		_, _ = svc.Create(context.Background(), owner, in)
	}

	s, err := svc.Summary(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	if s.MeetingCount != 7 || len(s.Recent) != RecentLimit {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.TotalActions != 21 || s.OverdueActions != 7 {
		t.Fatalf("actions total=%d overdue=%d", s.TotalActions, s.OverdueActions)
	}
	if !s.Recent[0].Meeting.MeetingDate.Equal(fixedNow) {
		t.Fatal("recent meetings are newest first")
	}
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()
	m, _ := svc.Create(context.Background(), owner, sampleInput())

	if err := svc.Delete(context.Background(), uuid.New(), m.ID); !errors.Is(err, usecaseErrors.ErrNotMeetingOwner) {
		t.Fatalf("expected ErrNotMeetingOwner, got %v", err)
	}
	if err := svc.Delete(context.Background(), owner, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.meetings[m.ID]; ok {
		t.Fatal("meeting should be gone")
	}
	if _, err := svc.Get(context.Background(), owner, m.ID); !errors.Is(err, usecaseErrors.ErrMeetingNotFound) {
		t.Fatalf("expected ErrMeetingNotFound, got %v", err)
	}
}
