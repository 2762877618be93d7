package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campuslib/stacks/internal/api"
)

// dashState holds the dashboard statistics view.
type dashState struct {
	loading bool
	loaded  bool
	errLine string
	stats   dashStats
}

// dashStats are the five account statistics shown on the dashboard.
type dashStats struct {
	ActiveLoans int
	Wishlist    int
	Reading     int
	Completed   int
	Overdue     int
}

type dashStatsMsg struct {
	gen   int
	stats dashStats
	err   error
}

// fetchDashStatsCmd fetches all five statistics concurrently. The set is
// whole-or-nothing: any single failure aborts into one error line and no
// statistics are rendered.
func fetchDashStatsCmd(ctx context.Context, client api.Backend, gen int) tea.Cmd {
	return func() tea.Msg {
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			stats dashStats
			first error
		)

		fail := func(err error) {
			mu.Lock()
			if first == nil {
				first = err
			}
			mu.Unlock()
		}

		wg.Add(5)
		go func() {
			defer wg.Done()
			loans, err := client.MyLoans(ctx)
			if err != nil {
				fail(err)
				return
			}
			mu.Lock()
			stats.ActiveLoans = len(loans)
			mu.Unlock()
		}()
		go func() {
			defer wg.Done()
			items, err := client.Wishlist(ctx)
			if err != nil {
				fail(err)
				return
			}
			mu.Lock()
			stats.Wishlist = len(items)
			mu.Unlock()
		}()
		go func() {
			defer wg.Done()
			items, err := client.CurrentlyReading(ctx)
			if err != nil {
				fail(err)
				return
			}
			mu.Lock()
			stats.Reading = len(items)
			mu.Unlock()
		}()
		go func() {
			defer wg.Done()
			items, err := client.CompletedBooks(ctx)
			if err != nil {
				fail(err)
				return
			}
			mu.Lock()
			stats.Completed = len(items)
			mu.Unlock()
		}()
		go func() {
			defer wg.Done()
			loans, err := client.OverdueLoans(ctx)
			if err != nil {
				fail(err)
				return
			}
			mu.Lock()
			stats.Overdue = len(loans)
			mu.Unlock()
		}()
		wg.Wait()

		if first != nil {
			return dashStatsMsg{gen: gen, err: first}
		}
		return dashStatsMsg{gen: gen, stats: stats}
	}
}

func (m Model) handleDashStats(msg dashStatsMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.dash.loading = false
	if msg.err != nil {
		m.dash.loaded = false
		m.dash.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.dash.loaded = true
	m.dash.errLine = ""
	m.dash.stats = msg.stats
	return m, nil
}

func (m Model) renderDashboard() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n")

	if user, ok := m.session.User(); ok {
		b.WriteString("  " + styles.Text.Bold(true).Render("Welcome, "+user.Name))
		b.WriteString("\n")
		b.WriteString("  " + styles.MutedText.Render(user.Email))
		b.WriteString("\n\n")
	}

	switch {
	case m.dash.loading:
		b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Loading statistics..."))
		b.WriteString("\n")
	case m.dash.errLine != "":
		b.WriteString("  " + styles.DangerText.Render(m.dash.errLine))
		b.WriteString("\n")
	case m.dash.loaded:
		rows := []struct {
			label string
			value int
		}{
			{"Active loans", m.dash.stats.ActiveLoans},
			{"Overdue", m.dash.stats.Overdue},
			{"Currently reading", m.dash.stats.Reading},
			{"Completed", m.dash.stats.Completed},
			{"Wishlist", m.dash.stats.Wishlist},
		}
		for _, row := range rows {
			value := fmt.Sprintf("%d", row.value)
			valueStyle := styles.Text
			if row.label == "Overdue" && row.value > 0 {
				valueStyle = styles.DangerText
			}
			b.WriteString("  " + styles.MutedText.Render(padRight(row.label, 20)) + valueStyle.Render(value))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + styles.FaintText.Render("l library · m my loans · w wishlist · o sign out"))
	return b.String()
}
