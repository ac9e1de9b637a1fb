package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/leads/internal/model"
	"github.com/Makepad-fr/leads/internal/store/leadstore"
)

var seed = []model.Lead{
	{ID: 1, CompanyName: "Acme", CompanyLocation: "Lyon", Source: "web", StatusName: model.Str("New"),
		Contacts: []model.Contact{{Name: model.Str("Ann"), Email: model.Str("ann@acme.test")}}},
	{ID: 2, CompanyName: "Globex", CompanyLocation: "Nantes", Source: "fair"},
}

func newModel(t *testing.T, fetch leadstore.FetcherFunc) (Model, *leadstore.Store) {
	t.Helper()
	l := log.New()
	l.SetOutput(io.Discard)
	s := leadstore.New(fetch, leadstore.WithLogger(log.NewEntry(l)))
	m := New(context.Background(), s)
	m.now = func() time.Time { return time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC) }
	m = step(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, s
}

func loaded(t *testing.T) (Model, *leadstore.Store) {
	t.Helper()
	m, s := newModel(t, func(context.Context) ([]model.Lead, error) { return seed, nil })
	m = step(m, m.loadCmd()())
	return m, s
}

func step(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func keys(m Model, s string) Model {
	return step(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = keys(m, string(r))
	}
	return m
}

func TestLoadFillsList(t *testing.T) {
	m, _ := loaded(t)
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
	view := m.View()
	if !strings.Contains(view, "Acme") || !strings.Contains(view, "Globex") {
		t.Fatalf("view missing leads:\n%s", view)
	}
}

func TestLoadErrorShown(t *testing.T) {
	m, _ := newModel(t, func(context.Context) ([]model.Lead, error) {
		return nil, leadstore.TransportFailure(io.ErrUnexpectedEOF)
	})
	m = step(m, m.loadCmd()())
	view := m.View()
	if !strings.Contains(view, leadstore.MsgTransportFailure) || !strings.Contains(view, "r to retry") {
		t.Fatalf("expected error line in view:\n%s", view)
	}
}

func TestLoadingIndicator(t *testing.T) {
	release := make(chan struct{})
	m, s := newModel(t, func(ctx context.Context) ([]model.Lead, error) {
		<-release
		return seed, nil
	})
	done := make(chan tea.Msg)
	go func() { done <- m.loadCmd()() }()

	deadline := time.Now().Add(time.Second)
	for !s.Snapshot().Loading {
		if time.Now().After(deadline) {
			t.Fatal("store never entered loading state")
		}
		time.Sleep(time.Millisecond)
	}
	m = step(m, refreshMsg{})
	if !strings.Contains(m.View(), "Loading leads...") {
		t.Fatalf("expected loading line:\n%s", m.View())
	}
	close(release)
	m = step(m, <-done)
	if strings.Contains(m.View(), "Loading leads...") {
		t.Fatal("loading line still shown after fetch")
	}
}

func TestDeleteAndUndo(t *testing.T) {
	m, s := loaded(t)
	m = keys(m, "d")
	if got := s.Snapshot().List; len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected lead 1 removed, got %+v", got)
	}
	if !strings.Contains(m.View(), "u to undo") {
		t.Fatalf("expected undo hint:\n%s", m.View())
	}

	m = keys(m, "u")
	if got := s.Snapshot().List; len(got) != 2 || got[0].ID != 1 {
		t.Fatalf("expected list restored, got %+v", got)
	}

	// Undo is single use.
	m = keys(m, "d")
	m = keys(m, "u")
	m = keys(m, "u")
	if got := len(s.Snapshot().List); got != 2 {
		t.Fatalf("expected 2 leads, got %d", got)
	}
}

func TestReloadDropsUndo(t *testing.T) {
	m, s := loaded(t)
	m = keys(m, "d")
	m = keys(m, "r")
	if m.canUndo {
		t.Fatal("reload should clear undo")
	}
	m = keys(m, "u")
	if got := len(s.Snapshot().List); got != 1 {
		t.Fatalf("undo after reload changed the list: %d leads", got)
	}
}

func TestFinishedLoadDropsUndo(t *testing.T) {
	fresh := []model.Lead{{ID: 9, CompanyName: "Fresh", CompanyLocation: "Paris", Source: "web"}}
	release := make(chan struct{})
	m, s := newModel(t, func(ctx context.Context) ([]model.Lead, error) {
		<-release
		return fresh, nil
	})
	s.ReplaceAll(seed)
	m = step(m, refreshMsg{})

	done := make(chan tea.Msg)
	go func() { done <- m.loadCmd()() }()
	deadline := time.Now().Add(time.Second)
	for !s.Snapshot().Loading {
		if time.Now().After(deadline) {
			t.Fatal("store never entered loading state")
		}
		time.Sleep(time.Millisecond)
	}
	m = step(m, refreshMsg{})

	m = keys(m, "d")
	if !m.canUndo {
		t.Fatal("expected undo to be available after delete")
	}
	close(release)
	m = step(m, <-done)
	if m.canUndo {
		t.Fatal("undo should be dropped once the load finished")
	}

	m = keys(m, "u")
	got := s.Snapshot().List
	if len(got) != 1 || got[0].ID != 9 {
		t.Fatalf("undo overwrote the fetched list: %+v", got)
	}
}

func TestAddLead(t *testing.T) {
	m, s := loaded(t)
	m = keys(m, "a")
	if m.mode != modeAdd {
		t.Fatal("expected add form")
	}

	m = step(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.formErr != "Company cannot be empty" {
		t.Fatalf("unexpected form error %q", m.formErr)
	}

	m = typeText(m, "Initech")
	m = step(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "Lille")
	m = step(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "referral")
	m = step(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeList {
		t.Fatalf("form still open: %q", m.formErr)
	}
	got := s.Snapshot().List
	if len(got) != 3 {
		t.Fatalf("expected 3 leads, got %d", len(got))
	}
	l := got[2]
	if l.ID != 3 || l.CompanyName != "Initech" || l.CompanyLocation != "Lille" || l.Source != "referral" || l.Date != "2024-05-06" {
		t.Fatalf("unexpected new lead %+v", l)
	}
}

func TestEditLead(t *testing.T) {
	m, s := loaded(t)
	m = keys(m, "e")
	if m.mode != modeEdit || m.editID != 1 {
		t.Fatalf("expected edit form for lead 1, mode=%d id=%d", m.mode, m.editID)
	}
	if v := m.inputs[0].Value(); v != "Acme" {
		t.Fatalf("expected prefilled company, got %q", v)
	}
	m = typeText(m, " Corp")
	m = step(m, tea.KeyMsg{Type: tea.KeyEnter})

	got := s.Snapshot().List
	if got[0].CompanyName != "Acme Corp" || got[0].Status() != "New" || len(got[0].Contacts) != 1 {
		t.Fatalf("unexpected edited lead %+v", got[0])
	}
}

func TestFormEscCancels(t *testing.T) {
	m, s := loaded(t)
	m = keys(m, "a")
	m = typeText(m, "Nope")
	m = step(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Fatal("esc should close the form")
	}
	if got := len(s.Snapshot().List); got != 2 {
		t.Fatalf("cancel changed the list: %d leads", got)
	}
}

func TestDetailToggle(t *testing.T) {
	m, _ := loaded(t)
	m = step(m, tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	if !strings.Contains(view, "ann@acme.test") {
		t.Fatalf("expected contact details:\n%s", view)
	}
	m = step(m, tea.KeyMsg{Type: tea.KeyEnter})
	if strings.Contains(m.View(), "ann@acme.test") {
		t.Fatal("detail pane should toggle off")
	}
}

func TestQuit(t *testing.T) {
	m, _ := loaded(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestFormCheck(t *testing.T) {
	tests := []struct {
		f    leadForm
		want string
	}{
		{leadForm{"Acme", "Lyon", "web"}, ""},
		{leadForm{"", "Lyon", "web"}, "Company cannot be empty"},
		{leadForm{"Acme", "", "web"}, "Location cannot be empty"},
		{leadForm{"Acme", "Lyon", strings.Repeat("x", 101)}, "Source is longer than 100 characters"},
	}
	for _, tc := range tests {
		if got := tc.f.check(); got != tc.want {
			t.Errorf("check(%+v) = %q, want %q", tc.f, got, tc.want)
		}
	}
}

func TestNextID(t *testing.T) {
	if got := nextID(nil); got != 1 {
		t.Fatalf("nextID(nil) = %d", got)
	}
	if got := nextID([]model.Lead{{ID: 7}, {ID: 3}}); got != 8 {
		t.Fatalf("nextID = %d, want 8", got)
	}
}
