package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campuslib/stacks/internal/api"
	"github.com/campuslib/stacks/internal/catalog"
)

// detailState holds the book detail view.
type detailState struct {
	bookID  string
	book    catalog.Book
	loaded  bool
	status  *api.ReadingStatus
	loading bool
	busy    bool
	errLine string
	notice  string

	vp      viewport.Model
	vpReady bool
}

func newDetailState() detailState {
	return detailState{}
}

func (m *Model) initDetailViewport() {
	m.detail.vp = viewport.New(m.width-4, max(m.height-16, 3))
	m.detail.vpReady = true
}

func (m *Model) resizeDetailViewport() {
	if !m.detail.vpReady {
		return
	}
	m.detail.vp.Width = m.width - 4
	m.detail.vp.Height = max(m.height-16, 3)
}

type bookDetailMsg struct {
	gen    int
	book   catalog.Book
	status *api.ReadingStatus
	err    error
}

// detailActionMsg reports a reservation or reading-status action.
type detailActionMsg struct {
	gen     int
	status  *api.ReadingStatus
	cleared bool
	notice  string
	err     error
}

type borrowDoneMsg struct {
	gen int
	err error
}

// openDetail navigates to the book detail view. An absent id renders the
// in-page error state without issuing any fetch.
func (m Model) openDetail(id string) (Model, tea.Cmd) {
	m.fetchGen++
	m.currentView = ViewBookDetail
	m.notice = ""

	vp := m.detail.vp
	vpReady := m.detail.vpReady
	m.detail = detailState{bookID: id, vp: vp, vpReady: vpReady}

	if id == "" {
		m.detail.errLine = "no book selected"
		return m, nil
	}
	m.detail.loading = true
	return m, fetchBookDetailCmd(m.ctx, m.client, m.fetchGen, id)
}

// fetchBookDetailCmd loads the book and the user's reading status for it
// concurrently. A status failure is tolerated; the book failure is not.
func fetchBookDetailCmd(ctx context.Context, client api.Backend, gen int, id string) tea.Cmd {
	return func() tea.Msg {
		type statusResult struct {
			status *api.ReadingStatus
		}
		statusCh := make(chan statusResult, 1)
		go func() {
			status, err := client.ReadingStatusFor(ctx, id)
			if err != nil {
				status = nil
			}
			statusCh <- statusResult{status: status}
		}()

		rec, err := client.BookByID(ctx, id)
		status := <-statusCh
		if err != nil {
			return bookDetailMsg{gen: gen, err: err}
		}
		return bookDetailMsg{gen: gen, book: catalog.Normalize(rec), status: status.status}
	}
}

// borrowCmd adds the book to the local catalog, then borrows it. The add is
// idempotent server-side; borrowing an unregistered book would fail.
func borrowCmd(ctx context.Context, client api.Backend, gen int, bookID string) tea.Cmd {
	return func() tea.Msg {
		if err := client.AddToLibrary(ctx, bookID); err != nil {
			return borrowDoneMsg{gen: gen, err: err}
		}
		if _, err := client.BorrowBook(ctx, bookID); err != nil {
			return borrowDoneMsg{gen: gen, err: err}
		}
		return borrowDoneMsg{gen: gen}
	}
}

func reserveCmd(ctx context.Context, client api.Backend, gen int, bookID string) tea.Cmd {
	return func() tea.Msg {
		if _, err := client.ReserveBook(ctx, bookID); err != nil {
			return detailActionMsg{gen: gen, err: err}
		}
		return detailActionMsg{gen: gen, notice: "reservation placed"}
	}
}

func setStatusCmd(ctx context.Context, client api.Backend, gen int, bookID, status string) tea.Cmd {
	return func() tea.Msg {
		updated, err := client.SetReadingStatus(ctx, bookID, api.ReadingStatusUpdate{Status: status})
		if err != nil {
			return detailActionMsg{gen: gen, err: err}
		}
		return detailActionMsg{gen: gen, status: &updated, notice: "marked as " + titleCase(status)}
	}
}

func removeStatusCmd(ctx context.Context, client api.Backend, gen int, bookID string) tea.Cmd {
	return func() tea.Msg {
		if err := client.RemoveReadingStatus(ctx, bookID); err != nil {
			return detailActionMsg{gen: gen, err: err}
		}
		return detailActionMsg{gen: gen, cleared: true, notice: "reading status removed"}
	}
}

func (m Model) handleBookDetail(msg bookDetailMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.detail.loading = false
	if msg.err != nil {
		m.detail.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.detail.errLine = ""
	m.detail.book = msg.book
	m.detail.loaded = true
	m.detail.status = msg.status
	if m.detail.vpReady {
		m.detail.vp.SetContent(msg.book.Description)
		m.detail.vp.GotoTop()
	}
	return m, nil
}

func (m Model) handleDetailAction(msg detailActionMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.detail.busy = false
	if msg.err != nil {
		m.detail.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.detail.errLine = ""
	m.detail.notice = msg.notice
	if msg.cleared {
		m.detail.status = nil
	} else if msg.status != nil {
		m.detail.status = msg.status
	}
	return m, nil
}

func (m Model) handleBorrowDone(msg borrowDoneMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.detail.busy = false
	if msg.err != nil {
		m.detail.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	return m.navigate(ViewMyLoans)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.detail.loaded {
		return m, nil
	}
	if m.detail.busy {
		return m, nil
	}

	switch msg.String() {
	case "b":
		m.detail.busy = true
		m.detail.errLine = ""
		return m, borrowCmd(m.ctx, m.client, m.fetchGen, m.detail.bookID)

	case "v":
		m.detail.busy = true
		m.detail.errLine = ""
		return m, reserveCmd(m.ctx, m.client, m.fetchGen, m.detail.bookID)

	case "a":
		m.detail.busy = true
		m.detail.errLine = ""
		return m, setStatusCmd(m.ctx, m.client, m.fetchGen, m.detail.bookID, api.ReadingWishlist)

	case "r":
		m.detail.busy = true
		m.detail.errLine = ""
		return m, setStatusCmd(m.ctx, m.client, m.fetchGen, m.detail.bookID, api.ReadingReading)

	case "c":
		m.detail.busy = true
		m.detail.errLine = ""
		return m, setStatusCmd(m.ctx, m.client, m.fetchGen, m.detail.bookID, api.ReadingCompleted)

	case "x":
		if m.detail.status == nil {
			return m, nil
		}
		m.detail.busy = true
		m.detail.errLine = ""
		return m, removeStatusCmd(m.ctx, m.client, m.fetchGen, m.detail.bookID)

	case "j", "down":
		m.detail.vp.ScrollDown(1)
	case "k", "up":
		m.detail.vp.ScrollUp(1)
	case "ctrl+d":
		m.detail.vp.HalfPageDown()
	case "ctrl+u":
		m.detail.vp.HalfPageUp()
	}

	return m, nil
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.detail.errLine != "" && !m.detail.loaded:
		b.WriteString("  " + styles.DangerText.Render(m.detail.errLine))
		b.WriteString("\n")
	case m.detail.loading:
		b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Loading book..."))
		b.WriteString("\n")
	case m.detail.loaded:
		book := m.detail.book

		b.WriteString("  " + styles.Text.Bold(true).Render(book.Title))
		b.WriteString("\n")
		b.WriteString("  " + styles.MutedText.Render(book.AuthorLine()))
		b.WriteString("\n\n")

		meta := []string{book.PublishedYear()}
		if book.PageCount > 0 {
			meta = append(meta, fmt.Sprintf("%d pages", book.PageCount))
		}
		meta = append(meta, book.Language)
		if book.ISBN != "" {
			meta = append(meta, "ISBN "+book.ISBN)
		}
		b.WriteString("  " + styles.FaintText.Render(strings.Join(meta, " · ")))
		b.WriteString("\n")
		b.WriteString("  " + styles.InfoText.Render(book.CategoryLine()))
		b.WriteString("\n")

		if book.Local {
			copies := fmt.Sprintf("%d of %d copies available", book.AvailableCopies, book.TotalCopies)
			copyStyle := styles.SuccessText
			if book.AvailableCopies == 0 {
				copyStyle = styles.WarningText
			}
			b.WriteString("  " + copyStyle.Render(copies))
			b.WriteString("\n")
		}

		if m.detail.status != nil {
			b.WriteString("  " + styles.StatusStyle(m.detail.status.Status).Render(titleCase(m.detail.status.Status)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		if m.detail.vpReady {
			b.WriteString(m.detail.vp.View())
			b.WriteString("\n")
		}

		if m.detail.busy {
			b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Working..."))
			b.WriteString("\n")
		}
		if m.detail.errLine != "" {
			b.WriteString("  " + styles.DangerText.Render(m.detail.errLine))
			b.WriteString("\n")
		}
		if m.detail.notice != "" {
			b.WriteString("  " + styles.SuccessText.Render(m.detail.notice))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + styles.FaintText.Render("b borrow · v reserve · a wishlist · r reading · c completed · x clear · esc dashboard"))
	return b.String()
}
