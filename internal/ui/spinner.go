package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type spinnerDoneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

// WithSpinner shows a spinner with message while fn runs. Without a terminal
// the spinner is skipped and fn runs bare, so piped output stays clean.
func WithSpinner(message string, fn func() error) error {
	if !Interactive() {
		return fn()
	}

	m := spinnerModel{spinner: spinner.New(), message: message}
	m.spinner.Spinner = spinner.Dot

	p := tea.NewProgram(m)
	finished := make(chan struct{})
	var runErr error
	go func() {
		defer close(finished)
		_, runErr = p.Run()
	}()

	err := fn()
	p.Send(spinnerDoneMsg{})
	<-finished
	if err != nil {
		return err
	}
	return runErr
}
