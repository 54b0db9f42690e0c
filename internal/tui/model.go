package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/quiz"
)

// Model is the bubbletea model for one quiz session.
type Model struct {
	session *quiz.Session
	theme   Theme
	keys    keyMap
	help    help.Model

	width  int
	height int

	warning string // last answer-recording failure
	aborted bool
	done    bool
}

// New creates a Model over s. The session is started if it is still idle.
func New(s *quiz.Session, accentColor string) Model {
	if s.State() == quiz.Idle {
		_ = s.Start()
	}
	return Model{
		session: s,
		theme:   NewTheme(accentColor),
		keys:    defaultKeyMap(),
		help:    help.New(),
		width:   80,
		height:  24,
	}
}

// Session returns the session driven by the model.
func (m Model) Session() *quiz.Session { return m.session }

// Aborted reports whether the user quit before the session completed.
func (m Model) Aborted() bool { return m.aborted }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.session.State() != quiz.Complete {
			m.aborted = true
		}
		m.done = true
		return m, tea.Quit
	}

	switch m.session.State() {
	case quiz.Presenting:
		if !key.Matches(msg, m.keys.Choose) {
			return m, nil
		}
		t, _ := m.session.Current()
		choice, err := quiz.ParseChoice(msg.String(), len(t.Options))
		if err != nil {
			return m, nil
		}
		m.warning = ""
		if _, err := m.session.Answer(choice); err != nil {
			m.warning = err.Error()
		}

	case quiz.Scored:
		if key.Matches(msg, m.keys.Next) {
			_ = m.session.Next()
		}

	case quiz.Complete:
		if key.Matches(msg, m.keys.Next) {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		return ""
	}

	var body string
	switch m.session.State() {
	case quiz.Presenting, quiz.Scored:
		body = m.renderTrial()
	case quiz.Complete:
		body = m.renderSummary()
	}

	panelWidth := max(min(m.width-2, 90), 20)
	var b strings.Builder
	b.WriteString(m.theme.Title("gch quiz"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.panel.Width(panelWidth).Render(body))
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(wrongStyle.Render("warning: "+m.warning) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTrial() string {
	t, _ := m.session.Current()
	optWidth := max(min(m.width-14, 80), 20)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", dimStyle.Render(fmt.Sprintf("Question %d of %d", m.session.Index()+1, m.session.Len())))
	b.WriteString(questionStyle.Render(t.Question.Question))
	b.WriteString("\n\n")

	scored := m.session.State() == quiz.Scored
	fb := m.session.Feedback()
	for i, opt := range t.Options {
		n := i + 1
		line := fmt.Sprintf("%d. %s", n, truncate(opt, optWidth))
		switch {
		case scored && n == t.Correct:
			line = correctStyle.Render(line + "  ✓")
		case scored && n == fb.Chosen:
			line = wrongStyle.Render(line + "  ✗")
		default:
			line = commandStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}

	if scored {
		b.WriteString("\n")
		if fb.Correct {
			b.WriteString(correctStyle.Render("Correct!"))
		} else {
			b.WriteString(wrongStyle.Render("Incorrect.") + " The answer is " + commandStyle.Render(fb.Answer))
		}
		if fb.Explanation != "" {
			b.WriteString("\n" + dimStyle.Render(fb.Explanation))
		}
	}
	return b.String()
}

func (m Model) renderSummary() string {
	sc := m.session.Score()
	if sc.Total == 0 {
		return "No questions to ask."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.accentText.Render("Quiz complete"),
		"",
		fmt.Sprintf("Score: %d/%d (%.1f%%)", sc.Correct, sc.Total, sc.Percent()),
		verdictStyle(sc.Percent()).Render(sc.Verdict()),
	)
}

// Run shows the quiz full-screen until the session completes or the user
// quits. It returns the final model.
func Run(s *quiz.Session, accentColor string) (Model, error) {
	final, err := tea.NewProgram(New(s, accentColor), tea.WithAltScreen()).Run()
	if err != nil {
		return Model{}, fmt.Errorf("tui: %w", err)
	}
	return final.(Model), nil
}
