package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campuslib/stacks/internal/api"
)

// signupState holds the account creation form.
type signupState struct {
	inputs   [3]textinput.Model // name, email, password
	focusIdx int
	errLine  string
	busy     bool
}

func newSignupState() signupState {
	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 80
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "student@university.edu"
	email.CharLimit = 80
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password (min 8 characters)"
	password.CharLimit = 80
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return signupState{inputs: [3]textinput.Model{name, email, password}}
}

type signUpResultMsg struct {
	gen     int
	session *api.Session
	err     error
}

func signUpCmd(ctx context.Context, client api.Backend, gen int, name, email, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := client.SignUp(ctx, name, email, password)
		return signUpResultMsg{gen: gen, session: sess, err: err}
	}
}

func (m Model) handleSignUpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		return m.navigate(ViewLogin)

	case "tab", "down":
		m.signup.inputs[m.signup.focusIdx].Blur()
		m.signup.focusIdx = (m.signup.focusIdx + 1) % len(m.signup.inputs)
		m.signup.inputs[m.signup.focusIdx].Focus()
		return m, nil

	case "shift+tab", "up":
		m.signup.inputs[m.signup.focusIdx].Blur()
		m.signup.focusIdx = (m.signup.focusIdx - 1 + len(m.signup.inputs)) % len(m.signup.inputs)
		m.signup.inputs[m.signup.focusIdx].Focus()
		return m, nil

	case "enter":
		if m.signup.busy {
			return m, nil
		}
		name := strings.TrimSpace(m.signup.inputs[0].Value())
		email := strings.TrimSpace(m.signup.inputs[1].Value())
		password := m.signup.inputs[2].Value()
		if name == "" || email == "" || password == "" {
			m.signup.errLine = "name, email and password are required"
			return m, nil
		}
		m.signup.busy = true
		m.signup.errLine = ""
		return m, signUpCmd(m.ctx, m.client, m.fetchGen, name, email, password)
	}

	var cmd tea.Cmd
	m.signup.inputs[m.signup.focusIdx], cmd = m.signup.inputs[m.signup.focusIdx].Update(msg)
	return m, cmd
}

func (m Model) handleSignUpResult(msg signUpResultMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.gen) {
		return m, nil
	}
	m.signup.busy = false
	if msg.err != nil {
		m.signup.errLine = networkErrorLine(msg.err)
		return m, nil
	}
	m.session.Resolve(msg.session)
	return m.navigate(ViewLibrary)
}

func (m Model) renderSignUp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + styles.Text.Bold(true).Render("Create a library account"))
	b.WriteString("\n\n")

	labels := [3]string{"Name:     ", "Email:    ", "Password: "}
	for i, input := range m.signup.inputs {
		label := labels[i]
		if i == m.signup.focusIdx {
			label = styles.AccentText.Render(label)
		} else {
			label = styles.MutedText.Render(label)
		}
		b.WriteString("  " + label + input.View())
		b.WriteString("\n\n")
	}

	if m.signup.busy {
		b.WriteString("  " + m.spin.View() + styles.MutedText.Render("Creating account..."))
		b.WriteString("\n")
	}
	if m.signup.errLine != "" {
		b.WriteString("  " + styles.DangerText.Render(m.signup.errLine))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + styles.FaintText.Render("enter create account · esc back to sign in · ctrl+c quit"))
	return b.String()
}
