package ui

import (
	"context"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campuslib/stacks/internal/api"
	"github.com/campuslib/stacks/internal/catalog"
	"github.com/campuslib/stacks/internal/loans"
)

// loansState holds the loans view. The selection spans active then overdue
// loans; history rows are not selectable.
type loansState struct {
	active   []api.LoanWithBook
	overdue  []api.LoanWithBook
	history  []api.LoanWithBook
	selected int
	loading  bool
	busy     bool
	errLine  string
	notice   string
}

type loansMsg struct {
	gen     int
	active  []api.LoanWithBook
	overdue []api.LoanWithBook
	history []api.LoanWithBook
	err     error
}

type returnDoneMsg struct {
	gen int
	err error
}

// fetchLoansCmd fetches active loans, overdue loans and history concurrently.
func fetchLoansCmd(ctx context.Context, client api.Backend, gen, historyLimit int) tea.Cmd {
	return func() tea.Msg {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			msg     = loansMsg{gen: gen}
			first   error
			collect = func(dest *[]api.LoanWithBook, fetch func(context.Context) ([]api.LoanWithBook, error)) {
				defer wg.Done()
				items, err := fetch(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if first == nil {
						first = err
					}
					return
				}
				*dest = items
			}
		)

		wg.Add(3)
		go collect(&msg.active, client.MyLoans)
		go collect(&msg.overdue, client.OverdueLoans)
		go collect(&msg.history, client.LoanHistory)
		wg.Wait()

		if first != nil {
			return loansMsg{gen: gen, err: first}
		}
		if len(msg.history) > historyLimit {
			msg.history = msg.history[:historyLimit]
		}
		return msg
	}
}

func returnLoanCmd(ctx context.Context, client api.Backend, gen int, loanID string) tea.Cmd {
	return func() tea.Msg {
		return returnDoneMsg{gen: gen, err: client.ReturnBook(ctx, loanID)}
	}
}

func (m Model) handleLoans(msg loansMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.loans.loading = false
	if msg.err != nil {
		m.loans.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.loans.errLine = ""
	m.loans.active = msg.active
	m.loans.overdue = msg.overdue
	m.loans.history = msg.history
	if m.loans.selected >= len(msg.active)+len(msg.overdue) {
		m.loans.selected = 0
	}
	return m, nil
}

func (m Model) handleReturnDone(msg returnDoneMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.loans.busy = false
	if msg.err != nil {
		m.loans.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	// Re-fetch so the returned loan moves into history.
	m.fetchGen++
	m.loans.loading = true
	m.loans.notice = "book returned"
	return m, fetchLoansCmd(m.ctx, m.client, m.fetchGen, m.historyLimit)
}

// selectedLoan returns the loan under the cursor across active then overdue.
func (s loansState) selectedLoan() *api.LoanWithBook {
	if s.selected < len(s.active) {
		return &s.active[s.selected]
	}
	idx := s.selected - len(s.active)
	if idx < len(s.overdue) {
		return &s.overdue[idx]
	}
	return nil
}

func (m Model) handleLoansKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.loans.active) + len(m.loans.overdue)

	switch msg.String() {
	case "j", "down":
		if m.loans.selected < count-1 {
			m.loans.selected++
		}
	case "k", "up":
		if m.loans.selected > 0 {
			m.loans.selected--
		}

	case "r":
		if m.loans.busy {
			return m, nil
		}
		loan := m.loans.selectedLoan()
		if loan == nil {
			return m, nil
		}
		m.loans.busy = true
		m.loans.errLine = ""
		m.loans.notice = ""
		return m, returnLoanCmd(m.ctx, m.client, m.fetchGen, loan.Loan.ID)

	case "enter":
		loan := m.loans.selectedLoan()
		if loan == nil {
			return m, nil
		}
		return m.openDetail(loan.Book.CatalogID())
	}

	return m, nil
}

func (m Model) renderMyLoans() string {
	styles := m.theme.Styles()
	now := time.Now()

	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.loans.loading:
		b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Loading loans..."))
		b.WriteString("\n")
	case m.loans.errLine != "" && len(m.loans.active) == 0 && len(m.loans.overdue) == 0:
		b.WriteString("  " + styles.DangerText.Render(m.loans.errLine))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderLoanSection(styles, now, "Active loans", m.loans.active, 0))
		b.WriteString(m.renderLoanSection(styles, now, "Overdue", m.loans.overdue, len(m.loans.active)))
		b.WriteString(m.renderHistorySection(styles))

		if m.loans.busy {
			b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Returning..."))
			b.WriteString("\n")
		}
		if m.loans.errLine != "" {
			b.WriteString("  " + styles.DangerText.Render(m.loans.errLine))
			b.WriteString("\n")
		}
		if m.loans.notice != "" {
			b.WriteString("  " + styles.SuccessText.Render(m.loans.notice))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + styles.FaintText.Render("j/k move · r return · enter open book · esc dashboard"))
	return b.String()
}

func (m Model) renderLoanSection(styles Styles, now time.Time, heading string, items []api.LoanWithBook, offset int) string {
	var b strings.Builder
	b.WriteString("  " + styles.Text.Bold(true).Render(heading))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString("  " + styles.MutedText.Render("none"))
		b.WriteString("\n\n")
		return b.String()
	}

	for i, item := range items {
		book := catalog.Normalize(item.Book)
		due := item.Loan.DueDate.Time
		dueLine := loans.DueLine(now, due)

		dueStyle := styles.MutedText
		switch loans.Classify(now, due) {
		case loans.BucketDueSoon:
			dueStyle = styles.WarningText
		case loans.BucketOverdue:
			dueStyle = styles.DangerText
		}

		line := padRight(truncate(book.Title, 40), 40) + "  " +
			padRight(truncate(book.AuthorLine(), 24), 24) + "  "
		if i+offset == m.loans.selected {
			b.WriteString("  " + styles.Selected.Render("> "+line) + dueStyle.Render(dueLine))
		} else {
			b.WriteString("  " + styles.Text.Render("  "+line) + dueStyle.Render(dueLine))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHistorySection(styles Styles) string {
	var b strings.Builder
	b.WriteString("  " + styles.Text.Bold(true).Render("History"))
	b.WriteString("\n")

	if len(m.loans.history) == 0 {
		b.WriteString("  " + styles.MutedText.Render("none"))
		b.WriteString("\n\n")
		return b.String()
	}

	for _, item := range m.loans.history {
		book := catalog.Normalize(item.Book)
		returned := ""
		if item.Loan.ReturnDate != nil && !item.Loan.ReturnDate.IsZero() {
			returned = item.Loan.ReturnDate.Format("2006-01-02")
		}
		b.WriteString("    " + styles.FaintText.Render(
			padRight(truncate(book.Title, 40), 40)+"  "+
				padRight(titleCase(item.Loan.Status), 10)+"  "+returned))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
