package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campuslib/stacks/internal/api"
	"github.com/campuslib/stacks/internal/catalog"
)

const libraryPageSize = 20

// libraryState holds the catalog browsing view.
type libraryState struct {
	books    []catalog.Book
	selected int
	loading  bool
	errLine  string
	query    string // last executed search, empty for popular

	searching   bool
	searchInput textinput.Model
}

func newLibraryState() libraryState {
	input := textinput.New()
	input.Placeholder = "title, author, subject..."
	input.CharLimit = 120
	input.Width = 40
	return libraryState{searchInput: input}
}

type libraryBooksMsg struct {
	gen   int
	query string
	books []catalog.Book
	err   error
}

func fetchPopularCmd(ctx context.Context, client api.Backend, gen int) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.PopularBooks(ctx, libraryPageSize)
		if err != nil {
			return libraryBooksMsg{gen: gen, err: err}
		}
		return libraryBooksMsg{gen: gen, books: catalog.NormalizeAll(resp.Items)}
	}
}

func searchBooksCmd(ctx context.Context, client api.Backend, gen int, query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.SearchBooks(ctx, api.SearchQuery{Q: query, MaxResults: libraryPageSize})
		if err != nil {
			return libraryBooksMsg{gen: gen, query: query, err: err}
		}
		return libraryBooksMsg{gen: gen, query: query, books: catalog.NormalizeAll(resp.Items)}
	}
}

func (m Model) handleLibraryBooks(msg libraryBooksMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.library.loading = false
	m.library.query = msg.query
	if msg.err != nil {
		m.library.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.library.errLine = ""
	m.library.books = msg.books
	m.library.selected = 0
	return m, nil
}

func (m Model) handleLibraryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.library.books)

	switch msg.String() {
	case "/":
		m.library.searching = true
		m.library.searchInput.SetValue(m.library.query)
		m.library.searchInput.Focus()
		return m, nil

	case "j", "down":
		if m.library.selected < count-1 {
			m.library.selected++
		}
	case "k", "up":
		if m.library.selected > 0 {
			m.library.selected--
		}
	case "g", "home":
		m.library.selected = 0
	case "G", "end":
		if count > 0 {
			m.library.selected = count - 1
		}

	case "p":
		// Back to popular books
		m.fetchGen++
		m.library.loading = true
		m.library.query = ""
		return m, fetchPopularCmd(m.ctx, m.client, m.fetchGen)

	case "enter":
		if count == 0 {
			return m, nil
		}
		return m.openDetail(m.library.books[m.library.selected].ID)
	}

	return m, nil
}

// handleSearchKey owns the keyboard while the search input is open.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.library.searching = false
		m.library.searchInput.Blur()
		return m, nil

	case "enter":
		query := strings.TrimSpace(m.library.searchInput.Value())
		m.library.searching = false
		m.library.searchInput.Blur()
		if query == "" {
			return m, nil
		}
		m.fetchGen++
		m.library.loading = true
		return m, searchBooksCmd(m.ctx, m.client, m.fetchGen, query)
	}

	var cmd tea.Cmd
	m.library.searchInput, cmd = m.library.searchInput.Update(msg)
	return m, cmd
}

func (m Model) renderLibrary() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n")

	heading := "Popular books"
	if m.library.query != "" {
		heading = fmt.Sprintf("Results for %q", m.library.query)
	}
	b.WriteString("  " + styles.Text.Bold(true).Render(heading))
	b.WriteString("\n\n")

	if m.library.searching {
		b.WriteString("  " + styles.AccentText.Render("Search: ") + m.library.searchInput.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.library.loading:
		b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Loading books..."))
		b.WriteString("\n")
	case m.library.errLine != "":
		b.WriteString("  " + styles.DangerText.Render(m.library.errLine))
		b.WriteString("\n")
	case len(m.library.books) == 0:
		b.WriteString("  " + styles.MutedText.Render("No books found."))
		b.WriteString("\n")
	default:
		for i, book := range m.library.books {
			line := fmt.Sprintf("%s  %s  %s",
				padRight(truncate(book.Title, 44), 44),
				padRight(truncate(book.AuthorLine(), 28), 28),
				book.PublishedYear(),
			)
			if i == m.library.selected {
				b.WriteString("  " + styles.Selected.Render("> "+line))
			} else {
				b.WriteString("  " + styles.Text.Render("  "+line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + styles.FaintText.Render("j/k move · enter open · / search · p popular · esc dashboard"))
	return b.String()
}
