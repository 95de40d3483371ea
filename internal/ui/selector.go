package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/pascalporedda/wrt-cli/internal/state"
)

var (
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	unselectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

// SelectorResult contains the result of the selection
type SelectorResult struct {
	Allocation state.Allocation
	Selected   bool
	Cancelled  bool
}

// allocSource adapts allocations to fuzzy matching over slug and branch.
type allocSource []state.Allocation

func (s allocSource) String(i int) string {
	return s[i].Slug + " " + s[i].Branch
}

func (s allocSource) Len() int {
	return len(s)
}

// selectorModel is the bubbletea model for worktree selection
type selectorModel struct {
	allocations []state.Allocation
	filtered    []state.Allocation
	textInput   textinput.Model
	cursor      int
	selected    *state.Allocation
	cancelled   bool
	maxHeight   int
}

func newSelectorModel(allocations []state.Allocation) selectorModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40
	ti.PromptStyle = cursorStyle
	ti.TextStyle = lipgloss.NewStyle()

	return selectorModel{
		allocations: allocations,
		filtered:    allocations,
		textInput:   ti,
		cursor:      0,
		maxHeight:   10,
	}
}

func (m selectorModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if len(m.filtered) > 0 && m.cursor < len(m.filtered) {
				m.selected = &m.filtered[m.cursor]
			}
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	// Handle text input
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)

	m.filtered = filterAllocations(m.allocations, m.textInput.Value())

	// Reset cursor if out of bounds
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}

	return m, cmd
}

// filterAllocations ranks allocations by fuzzy match quality against query.
func filterAllocations(allocations []state.Allocation, query string) []state.Allocation {
	if strings.TrimSpace(query) == "" {
		return allocations
	}

	matches := fuzzy.FindFrom(query, allocSource(allocations))
	filtered := make([]state.Allocation, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, allocations[match.Index])
	}
	return filtered
}

func (m selectorModel) View() string {
	var sb strings.Builder

	sb.WriteString("Select worktree:\n")
	sb.WriteString(m.textInput.View())
	sb.WriteString("\n\n")

	if len(m.filtered) == 0 {
		sb.WriteString(dimStyle.Render("  No matches found"))
		sb.WriteString("\n")
	} else {
		// Calculate visible range
		start := 0
		end := len(m.filtered)
		if end > m.maxHeight {
			// Center the cursor in the visible area
			halfHeight := m.maxHeight / 2
			start = m.cursor - halfHeight
			if start < 0 {
				start = 0
			}
			end = start + m.maxHeight
			if end > len(m.filtered) {
				end = len(m.filtered)
				start = max(0, end-m.maxHeight)
			}
		}

		for i := start; i < end; i++ {
			a := m.filtered[i]
			line := fmt.Sprintf("%s (%s) block %d", a.Slug, a.Branch, a.Block)

			if i == m.cursor {
				sb.WriteString(cursorStyle.Render("> "))
				sb.WriteString(selectedStyle.Render(line))
			} else {
				sb.WriteString("  ")
				sb.WriteString(unselectedStyle.Render(line))
			}
			sb.WriteString("\n")
		}

		// Show scroll indicator
		if len(m.filtered) > m.maxHeight {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  %d/%d", m.cursor+1, len(m.filtered))))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑/↓ navigate • enter select • esc cancel"))

	return sb.String()
}

// RunSelector shows an interactive fuzzy search selector for tracked
// worktrees. Returns a cancelled result when the user aborts or there is
// nothing to select.
func RunSelector(allocations []state.Allocation) (*SelectorResult, error) {
	if len(allocations) == 0 {
		return &SelectorResult{Cancelled: true}, nil
	}

	model := newSelectorModel(allocations)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := finalModel.(selectorModel)
	if m.cancelled {
		return &SelectorResult{Cancelled: true}, nil
	}
	if m.selected != nil {
		return &SelectorResult{Allocation: *m.selected, Selected: true}, nil
	}
	return &SelectorResult{Cancelled: true}, nil
}
