// Package ui implements the Bubble Tea terminal interface: a session-gated
// set of views over the library backend. All model state lives on the event
// loop; fetches run as commands and deliver generation-tagged messages.
package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/campuslib/stacks/internal/api"
	"github.com/campuslib/stacks/internal/config"
	"github.com/campuslib/stacks/internal/prefs"
	"github.com/campuslib/stacks/internal/session"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewSignUp
	ViewDashboard
	ViewLibrary
	ViewBookDetail
	ViewMyLoans
	ViewWishlist
)

// protected reports whether a view requires an authenticated session.
func (v View) protected() bool {
	return v != ViewLogin && v != ViewSignUp
}

func (v View) title() string {
	switch v {
	case ViewLogin:
		return "Sign In"
	case ViewSignUp:
		return "Sign Up"
	case ViewDashboard:
		return "Dashboard"
	case ViewLibrary:
		return "Library"
	case ViewBookDetail:
		return "Book"
	case ViewMyLoans:
		return "My Loans"
	case ViewWishlist:
		return "Wishlist"
	default:
		return ""
	}
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Client       api.Backend
	Session      *session.Store
	Config       *config.Config
	ThemeName    string
	PrefsPath    string
	HistoryLimit int
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	client       api.Backend
	session      *session.Store
	config       *config.Config
	prefsPath    string
	historyLimit int

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spin        spinner.Model
	notice      string

	// Fetch generation. Bumped on every navigation and sign-out; results
	// tagged with an older generation are dropped on arrival.
	fetchGen int

	// Per-view state
	login    loginState
	signup   signupState
	dash     dashState
	library  libraryState
	detail   detailState
	loans    loansState
	wishlist wishlistState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Slate"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	historyLimit := opts.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 10
	}

	theme := GetTheme(themeName)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	return Model{
		ctx:          ctx,
		client:       opts.Client,
		session:      opts.Session,
		config:       opts.Config,
		prefsPath:    prefsPath,
		historyLimit: historyLimit,
		theme:        theme,
		currentView:  ViewLogin,
		spin:         sp,
		login:        newLoginState(),
		signup:       newSignupState(),
		library:      newLibraryState(),
		detail:       newDetailState(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.spin.Tick,
		resolveSessionCmd(m.ctx, m.client),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initDetailViewport()
		}
		m.ready = true
		m.resizeDetailViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionResolvedMsg:
		return m.handleSessionResolved(msg)

	case signInResultMsg:
		return m.handleSignInResult(msg)

	case signUpResultMsg:
		return m.handleSignUpResult(msg)

	case signOutDoneMsg:
		return m.handleSignOutDone(msg)

	case dashStatsMsg:
		return m.handleDashStats(msg)

	case libraryBooksMsg:
		return m.handleLibraryBooks(msg)

	case bookDetailMsg:
		return m.handleBookDetail(msg)

	case detailActionMsg:
		return m.handleDetailAction(msg)

	case borrowDoneMsg:
		return m.handleBorrowDone(msg)

	case loansMsg:
		return m.handleLoans(msg)

	case returnDoneMsg:
		return m.handleReturnDone(msg)

	case wishlistMsg:
		return m.handleWishlist(msg)

	case wishlistRemovedMsg:
		return m.handleWishlistRemoved(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderContent() string {
	if m.session != nil && m.session.State() == session.StatePending {
		styles := m.theme.Styles()
		return "\n " + m.spin.View() + styles.MutedText.Render("Checking session...")
	}

	switch m.currentView {
	case ViewLogin:
		return m.renderLogin()
	case ViewSignUp:
		return m.renderSignUp()
	case ViewDashboard:
		return m.renderDashboard()
	case ViewLibrary:
		return m.renderLibrary()
	case ViewBookDetail:
		return m.renderDetail()
	case ViewMyLoans:
		return m.renderMyLoans()
	case ViewWishlist:
		return m.renderWishlist()
	default:
		return ""
	}
}

// stale reports whether a message generation no longer matches the model.
// Stale results belong to a view that was left or a session that ended.
func (m Model) stale(gen int) bool {
	return gen != m.fetchGen
}

// navigate switches to a view, bumping the fetch generation so in-flight
// results for the previous view are dropped, and returns the view's entry
// fetch command.
func (m Model) navigate(view View) (Model, tea.Cmd) {
	if view.protected() && m.session.State() != session.StateAuthenticated {
		view = ViewLogin
	}

	m.fetchGen++
	m.currentView = view
	m.notice = ""

	switch view {
	case ViewDashboard:
		m.dash = dashState{loading: true}
		return m, fetchDashStatsCmd(m.ctx, m.client, m.fetchGen)
	case ViewLibrary:
		m.library = newLibraryState()
		m.library.loading = true
		return m, fetchPopularCmd(m.ctx, m.client, m.fetchGen)
	case ViewMyLoans:
		m.loans = loansState{loading: true}
		return m, fetchLoansCmd(m.ctx, m.client, m.fetchGen, m.historyLimit)
	case ViewWishlist:
		m.wishlist = wishlistState{loading: true}
		return m, fetchWishlistCmd(m.ctx, m.client, m.fetchGen)
	case ViewLogin:
		m.login = newLoginState()
		return m, nil
	case ViewSignUp:
		m.signup = newSignupState()
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.session != nil && m.session.State() == session.StatePending {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	// Text-entry views own the keyboard.
	switch m.currentView {
	case ViewLogin:
		return m.handleLoginKey(msg)
	case ViewSignUp:
		return m.handleSignUpKey(msg)
	}
	if m.currentView == ViewLibrary && m.library.searching {
		return m.handleSearchKey(msg)
	}

	// Global keys
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, HistoryLimit: m.historyLimit})
		}
		return m, nil

	case "d":
		return m.navigate(ViewDashboard)

	case "l":
		return m.navigate(ViewLibrary)

	case "m":
		return m.navigate(ViewMyLoans)

	case "w":
		return m.navigate(ViewWishlist)

	case "o":
		// Sign out: invalidate server-side first, navigate on completion.
		return m, signOutCmd(m.ctx, m.client)

	case "esc":
		if m.currentView != ViewDashboard {
			return m.navigate(ViewDashboard)
		}
		return m, nil
	}

	// View-specific keys
	switch m.currentView {
	case ViewLibrary:
		return m.handleLibraryKey(msg)
	case ViewBookDetail:
		return m.handleDetailKey(msg)
	case ViewMyLoans:
		return m.handleLoansKey(msg)
	case ViewWishlist:
		return m.handleWishlistKey(msg)
	}

	return m, nil
}

// Session messages

type sessionResolvedMsg struct {
	session *api.Session
	err     error
}

type signOutDoneMsg struct {
	err error
}

func resolveSessionCmd(ctx context.Context, client api.Backend) tea.Cmd {
	return func() tea.Msg {
		sess, err := client.CurrentSession(ctx)
		return sessionResolvedMsg{session: sess, err: err}
	}
}

func signOutCmd(ctx context.Context, client api.Backend) tea.Cmd {
	return func() tea.Msg {
		return signOutDoneMsg{err: client.SignOut(ctx)}
	}
}

func (m Model) handleSessionResolved(msg sessionResolvedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Lookup failure means no usable session; the user can sign in.
		m.session.Resolve(nil)
		m.currentView = ViewLogin
		m.login.errLine = networkErrorLine(msg.err)
		return m, nil
	}

	m.session.Resolve(msg.session)
	if msg.session != nil {
		return m.navigate(ViewDashboard)
	}
	m.currentView = ViewLogin
	return m, nil
}

func (m Model) handleSignOutDone(msg signOutDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notice = "sign out failed: " + msg.err.Error()
		return m, nil
	}
	m.session.Invalidate()
	return m.navigate(ViewLogin)
}

// networkErrorLine renders an error for display: server-provided messages
// verbatim, everything else as a generic network failure.
func networkErrorLine(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "network error: " + err.Error()
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
