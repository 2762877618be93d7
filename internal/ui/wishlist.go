package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campuslib/stacks/internal/api"
	"github.com/campuslib/stacks/internal/catalog"
)

// wishlistState holds the wishlist view.
type wishlistState struct {
	items    []api.ReadingStatusWithBook
	selected int
	loading  bool
	busy     bool
	errLine  string
	notice   string
}

type wishlistMsg struct {
	gen   int
	items []api.ReadingStatusWithBook
	err   error
}

type wishlistRemovedMsg struct {
	gen int
	err error
}

func fetchWishlistCmd(ctx context.Context, client api.Backend, gen int) tea.Cmd {
	return func() tea.Msg {
		items, err := client.Wishlist(ctx)
		return wishlistMsg{gen: gen, items: items, err: err}
	}
}

func removeWishlistCmd(ctx context.Context, client api.Backend, gen int, bookID string) tea.Cmd {
	return func() tea.Msg {
		return wishlistRemovedMsg{gen: gen, err: client.RemoveReadingStatus(ctx, bookID)}
	}
}

func (m Model) handleWishlist(msg wishlistMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.wishlist.loading = false
	if msg.err != nil {
		m.wishlist.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.wishlist.errLine = ""
	m.wishlist.items = msg.items
	if m.wishlist.selected >= len(msg.items) {
		m.wishlist.selected = 0
	}
	return m, nil
}

func (m Model) handleWishlistRemoved(msg wishlistRemovedMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.wishlist.busy = false
	if msg.err != nil {
		m.wishlist.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.fetchGen++
	m.wishlist.loading = true
	m.wishlist.notice = "removed from wishlist"
	return m, fetchWishlistCmd(m.ctx, m.client, m.fetchGen)
}

func (m Model) handleWishlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.wishlist.items)

	switch msg.String() {
	case "j", "down":
		if m.wishlist.selected < count-1 {
			m.wishlist.selected++
		}
	case "k", "up":
		if m.wishlist.selected > 0 {
			m.wishlist.selected--
		}

	case "x":
		if m.wishlist.busy || count == 0 {
			return m, nil
		}
		item := m.wishlist.items[m.wishlist.selected]
		m.wishlist.busy = true
		m.wishlist.errLine = ""
		m.wishlist.notice = ""
		return m, removeWishlistCmd(m.ctx, m.client, m.fetchGen, item.ReadingStatus.BookID)

	case "enter":
		if count == 0 {
			return m, nil
		}
		return m.openDetail(m.wishlist.items[m.wishlist.selected].Book.CatalogID())
	}

	return m, nil
}

func (m Model) renderWishlist() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + styles.Text.Bold(true).Render("Wishlist"))
	b.WriteString("\n\n")

	switch {
	case m.wishlist.loading:
		b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Loading wishlist..."))
		b.WriteString("\n")
	case m.wishlist.errLine != "" && len(m.wishlist.items) == 0:
		b.WriteString("  " + styles.DangerText.Render(m.wishlist.errLine))
		b.WriteString("\n")
	case len(m.wishlist.items) == 0:
		b.WriteString("  " + styles.MutedText.Render("Your wishlist is empty."))
		b.WriteString("\n")
	default:
		for i, item := range m.wishlist.items {
			book := catalog.Normalize(item.Book)
			line := padRight(truncate(book.Title, 44), 44) + "  " +
				padRight(truncate(book.AuthorLine(), 28), 28) + "  " +
				book.PublishedYear()
			if i == m.wishlist.selected {
				b.WriteString("  " + styles.Selected.Render("> "+line))
			} else {
				b.WriteString("  " + styles.Text.Render("  "+line))
			}
			b.WriteString("\n")
		}
		if m.wishlist.busy {
			b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Removing..."))
			b.WriteString("\n")
		}
		if m.wishlist.errLine != "" {
			b.WriteString("  " + styles.DangerText.Render(m.wishlist.errLine))
			b.WriteString("\n")
		}
		if m.wishlist.notice != "" {
			b.WriteString("  " + styles.SuccessText.Render(m.wishlist.notice))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + styles.FaintText.Render("j/k move · enter open · x remove · esc dashboard"))
	return b.String()
}
