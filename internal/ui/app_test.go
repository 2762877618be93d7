package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campuslib/stacks/internal/api"
	"github.com/campuslib/stacks/internal/catalog"
	"github.com/campuslib/stacks/internal/session"
)

// newTestModel builds a sized model with a resolved (unauthenticated) session
// and no prefs path so theme cycling does not touch the filesystem.
func newTestModel(t *testing.T, backend api.Backend) Model {
	t.Helper()

	store := session.NewStore()
	store.Resolve(nil)

	m := New(Options{
		Client:    backend,
		Session:   store,
		PrefsPath: "-",
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

// step feeds a message to the model and returns the new model and command.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestLoginSuccessNavigatesToLibrary(t *testing.T) {
	backend := &fakeBackend{
		signIn: func(ctx context.Context, email, password string) (*api.Session, error) {
			if email != "test@example.com" || password != "password123" {
				return nil, &api.APIError{StatusCode: 401, Message: "Credenciais inválidas"}
			}
			return &api.Session{User: api.User{ID: "u1", Name: "Test", Email: email}}, nil
		},
	}
	m := newTestModel(t, backend)

	m.login.inputs[0].SetValue("test@example.com")
	m.login.inputs[1].SetValue("password123")

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a sign-in command")
	}
	m, _ = step(t, m, cmd())

	if m.currentView != ViewLibrary {
		t.Fatalf("current view = %v, want ViewLibrary", m.currentView)
	}
	if m.session.State() != session.StateAuthenticated {
		t.Fatalf("session state = %v, want authenticated", m.session.State())
	}
}

func TestLoginFailureShowsServerMessageVerbatim(t *testing.T) {
	backend := &fakeBackend{
		signIn: func(ctx context.Context, email, password string) (*api.Session, error) {
			return nil, &api.APIError{StatusCode: 401, Message: "Credenciais inválidas"}
		},
	}
	m := newTestModel(t, backend)

	m.login.inputs[0].SetValue("test@example.com")
	m.login.inputs[1].SetValue("wrong")

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = step(t, m, cmd())

	if m.currentView != ViewLogin {
		t.Fatalf("current view = %v, want ViewLogin (no navigation on failure)", m.currentView)
	}
	if m.session.State() != session.StateUnauthenticated {
		t.Fatalf("session state = %v, want unauthenticated", m.session.State())
	}
	if !strings.Contains(m.View(), "Credenciais inválidas") {
		t.Fatal("server message not rendered verbatim")
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)

	m.login.inputs[0].SetValue("test@example.com")

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command for an incomplete form")
	}
	if m.login.errLine == "" {
		t.Fatal("expected a validation error line")
	}
}

func TestBookDetailAbsentIDRendersErrorWithoutFetch(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)
	m.session.Resolve(&api.Session{User: api.User{ID: "u1"}})

	m, cmd := m.openDetail("")
	if cmd != nil {
		t.Fatal("expected no fetch command for an absent book id")
	}
	if backend.bookByIDCalls != 0 {
		t.Fatalf("BookByID called %d times, want 0", backend.bookByIDCalls)
	}
	if m.currentView != ViewBookDetail {
		t.Fatalf("current view = %v, want ViewBookDetail", m.currentView)
	}
	if m.detail.errLine == "" {
		t.Fatal("expected an in-page error state")
	}
}

func TestDashboardOneFailureRendersNoStatistics(t *testing.T) {
	backend := &fakeBackend{
		myLoans: func(ctx context.Context) ([]api.LoanWithBook, error) {
			return []api.LoanWithBook{{}, {}}, nil
		},
		overdueLoans: func(ctx context.Context) ([]api.LoanWithBook, error) {
			return nil, errors.New("boom")
		},
	}
	m := newTestModel(t, backend)
	m.session.Resolve(&api.Session{User: api.User{ID: "u1", Name: "Test"}})

	m, cmd := m.navigate(ViewDashboard)
	if cmd == nil {
		t.Fatal("expected a stats command")
	}
	m, _ = step(t, m, cmd())

	if m.dash.loaded {
		t.Fatal("stats should not be marked loaded when any fetch fails")
	}
	if m.dash.errLine == "" {
		t.Fatal("expected an error line")
	}
	if strings.Contains(m.View(), "Active loans") {
		t.Fatal("no statistics should render when one of the five fails")
	}
}

func TestDashboardAllFiveSettle(t *testing.T) {
	two := []api.LoanWithBook{{}, {}}
	one := []api.ReadingStatusWithBook{{}}
	backend := &fakeBackend{
		myLoans:          func(ctx context.Context) ([]api.LoanWithBook, error) { return two, nil },
		overdueLoans:     func(ctx context.Context) ([]api.LoanWithBook, error) { return nil, nil },
		wishlist:         func(ctx context.Context) ([]api.ReadingStatusWithBook, error) { return one, nil },
		currentlyReading: func(ctx context.Context) ([]api.ReadingStatusWithBook, error) { return one, nil },
		completedBooks:   func(ctx context.Context) ([]api.ReadingStatusWithBook, error) { return nil, nil },
	}
	m := newTestModel(t, backend)
	m.session.Resolve(&api.Session{User: api.User{ID: "u1", Name: "Test"}})

	m, cmd := m.navigate(ViewDashboard)
	m, _ = step(t, m, cmd())

	if !m.dash.loaded {
		t.Fatalf("stats not loaded: %q", m.dash.errLine)
	}
	want := dashStats{ActiveLoans: 2, Wishlist: 1, Reading: 1, Completed: 0, Overdue: 0}
	if m.dash.stats != want {
		t.Fatalf("stats = %+v, want %+v", m.dash.stats, want)
	}
}

func TestStaleFetchResultIsDropped(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(t, backend)
	m.session.Resolve(&api.Session{User: api.User{ID: "u1"}})

	m, _ = m.navigate(ViewLibrary)
	staleGen := m.fetchGen

	// The user navigates away before the library fetch lands.
	m, _ = m.navigate(ViewMyLoans)

	late := libraryBooksMsg{gen: staleGen, books: []catalog.Book{{Title: "Late"}}}
	m, _ = step(t, m, late)

	if len(m.library.books) != 0 {
		t.Fatal("stale library result mutated state for a dead view")
	}
}

func TestSignOutInvalidatesThenNavigates(t *testing.T) {
	signedOut := false
	backend := &fakeBackend{
		signOut: func(ctx context.Context) error {
			signedOut = true
			return nil
		},
	}
	m := newTestModel(t, backend)
	m.session.Resolve(&api.Session{User: api.User{ID: "u1"}})
	m.currentView = ViewDashboard

	m, cmd := step(t, m, keyRune('o'))
	if cmd == nil {
		t.Fatal("expected a sign-out command")
	}
	if m.session.State() != session.StateAuthenticated {
		t.Fatal("session must stay valid until the server sign-out completes")
	}
	m, _ = step(t, m, cmd())

	if !signedOut {
		t.Fatal("SignOut not called")
	}
	if m.session.State() != session.StateUnauthenticated {
		t.Fatalf("session state = %v, want unauthenticated", m.session.State())
	}
	if m.currentView != ViewLogin {
		t.Fatalf("current view = %v, want ViewLogin", m.currentView)
	}
}

func TestProtectedNavigationRedirectsToLogin(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})

	m, _ = m.navigate(ViewMyLoans)
	if m.currentView != ViewLogin {
		t.Fatalf("current view = %v, want ViewLogin for unauthenticated navigation", m.currentView)
	}
}

func TestHistoryCappedAtLimit(t *testing.T) {
	history := make([]api.LoanWithBook, 14)
	backend := &fakeBackend{
		loanHistory: func(ctx context.Context) ([]api.LoanWithBook, error) { return history, nil },
	}
	m := newTestModel(t, backend)
	m.session.Resolve(&api.Session{User: api.User{ID: "u1"}})

	m, cmd := m.navigate(ViewMyLoans)
	m, _ = step(t, m, cmd())

	if len(m.loans.history) != 10 {
		t.Fatalf("history rows = %d, want 10", len(m.loans.history))
	}
}
