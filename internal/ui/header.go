package ui

import (
	"strings"

	"github.com/campuslib/stacks/internal/session"
)

// renderHeader renders the top bar: logo, current view, identity.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	parts := []string{
		styles.Logo.Render("stacks"),
		styles.AccentText.Render(m.currentView.title()),
	}

	switch m.session.State() {
	case session.StatePending:
		parts = append(parts, styles.WarningText.Render("checking session"))
	case session.StateUnauthenticated:
		parts = append(parts, styles.MutedText.Render("signed out"))
	case session.StateAuthenticated:
		if user, ok := m.session.User(); ok {
			parts = append(parts, styles.MutedText.Render(user.Email))
		}
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderFooter renders the bottom bar: transient notice plus global hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	hints := "h help · T theme · q quit"
	if m.currentView.protected() {
		hints = "d dashboard · l library · m loans · w wishlist · " + hints
	}

	line := hints
	if m.notice != "" {
		line = m.notice + "  " + hints
	}
	return styles.Footer.Width(m.width).Render(line)
}
