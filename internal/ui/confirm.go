package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmResult holds the result of a confirmation prompt.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

type confirmModel struct {
	prompt    string
	warning   string
	confirmed bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.confirmed = true
		m.done = true
	case "n", "N", "enter":
		// Destructive prompts default to no.
		m.confirmed = false
		m.done = true
	case "ctrl+c", "q", "esc":
		m.cancelled = true
		m.done = true
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	if m.warning != "" {
		return fmt.Sprintf("%s\n%s [y/N] ", dimStyle.Render(m.warning), m.prompt)
	}
	return fmt.Sprintf("%s [y/N] ", m.prompt)
}

// Confirm shows a yes/no prompt and returns the user's choice. Enter without
// input answers no.
func Confirm(prompt string) (ConfirmResult, error) {
	return runConfirm(confirmModel{prompt: prompt})
}

// ConfirmDestructive is Confirm with an extra warning line above the prompt,
// for operations that discard data (db reset, forced removal).
func ConfirmDestructive(prompt, warning string) (ConfirmResult, error) {
	return runConfirm(confirmModel{prompt: prompt, warning: warning})
}

func runConfirm(model confirmModel) (ConfirmResult, error) {
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return ConfirmResult{}, err
	}
	m := finalModel.(confirmModel)
	return ConfirmResult{
		Confirmed: m.confirmed,
		Cancelled: m.cancelled,
	}, nil
}
