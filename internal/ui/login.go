package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campuslib/stacks/internal/api"
)

// loginState holds the sign-in form.
type loginState struct {
	inputs   [2]textinput.Model // email, password
	focusIdx int
	errLine  string
	busy     bool
}

func newLoginState() loginState {
	email := textinput.New()
	email.Placeholder = "student@university.edu"
	email.CharLimit = 80
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 80
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginState{inputs: [2]textinput.Model{email, password}}
}

type signInResultMsg struct {
	gen     int
	session *api.Session
	err     error
}

func signInCmd(ctx context.Context, client api.Backend, gen int, email, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := client.SignIn(ctx, email, password)
		return signInResultMsg{gen: gen, session: sess, err: err}
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+s":
		return m.navigate(ViewSignUp)

	case "tab", "down":
		m.login.inputs[m.login.focusIdx].Blur()
		m.login.focusIdx = (m.login.focusIdx + 1) % len(m.login.inputs)
		m.login.inputs[m.login.focusIdx].Focus()
		return m, nil

	case "shift+tab", "up":
		m.login.inputs[m.login.focusIdx].Blur()
		m.login.focusIdx = (m.login.focusIdx - 1 + len(m.login.inputs)) % len(m.login.inputs)
		m.login.inputs[m.login.focusIdx].Focus()
		return m, nil

	case "enter":
		if m.login.busy {
			return m, nil
		}
		email := strings.TrimSpace(m.login.inputs[0].Value())
		password := m.login.inputs[1].Value()
		if email == "" || password == "" {
			m.login.errLine = "email and password are required"
			return m, nil
		}
		m.login.busy = true
		m.login.errLine = ""
		return m, signInCmd(m.ctx, m.client, m.fetchGen, email, password)
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focusIdx], cmd = m.login.inputs[m.login.focusIdx].Update(msg)
	return m, cmd
}

func (m Model) handleSignInResult(msg signInResultMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.login.busy = false
	if msg.err != nil {
		// Server-provided messages render verbatim; the form stays put.
		m.login.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.session.Resolve(msg.session)
	return m.navigate(ViewLibrary)
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + styles.Text.Bold(true).Render("Sign in to your library account"))
	b.WriteString("\n\n")

	labels := [2]string{"Email:    ", "Password: "}
	for i, input := range m.login.inputs {
		label := labels[i]
		if i == m.login.focusIdx {
			label = styles.AccentText.Render(label)
		} else {
			label = styles.MutedText.Render(label)
		}
		b.WriteString("  " + label + input.View())
		b.WriteString("\n\n")
	}

	if m.login.busy {
		b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Signing in..."))
		b.WriteString("\n")
	}
	if m.login.errLine != "" {
		b.WriteString("  " + styles.DangerText.Render(m.login.errLine))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + styles.FaintText.Render("enter sign in · ctrl+s create account · ctrl+c quit"))
	return b.String()
}
