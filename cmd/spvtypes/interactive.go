package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/spirv-types/spirv"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	warning  error
	module   *spirv.Module
	opts     spirv.Options
	src      source
	types    []*spirv.Type
	visible  []*spirv.Type
	filter   textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
	stateDetail
)

func newInteractiveModel(src source, opts spirv.Options) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "opcode, name or id"
	ti.Width = 40
	return &interactiveModel{
		src:    src,
		opts:   opts,
		filter: ti,
		state:  stateBrowse,
	}
}

type loadedMsg struct {
	err    error
	module *spirv.Module
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	mod, err := load(m.src, m.opts)
	return loadedMsg{module: mod, err: err}
}

func (m *interactiveModel) applyFilter() {
	m.visible = m.visible[:0]
	for _, t := range m.types {
		if matchType(m.module, t, m.filter.Value()) {
			m.visible = append(m.visible, t)
		}
	}
	m.selected = min(m.selected, max(len(m.visible)-1, 0))
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				m.filter.Blur()
				m.state = stateBrowse
				return m, nil
			case "esc":
				m.filter.Blur()
				m.filter.SetValue("")
				m.applyFilter()
				m.state = stateBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateBrowse && m.module != nil {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.visible) > 0 {
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateBrowse
			}

		case "esc":
			switch m.state {
			case stateDetail:
				m.state = stateBrowse
			case stateBrowse:
				m.filter.SetValue("")
				m.applyFilter()
			}
		}

	case loadedMsg:
		if msg.module == nil {
			m.err = msg.err
			return m, nil
		}
		m.warning = msg.err
		m.module = msg.module
		m.types = msg.module.Types()
		m.applyFilter()
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.module == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("SPIR-V Types"))
	b.WriteString(" ")
	b.WriteString(m.src.path)
	b.WriteString("\n")
	if m.warning != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Warning: %v", m.warning)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateBrowse, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching types"))
			b.WriteString("\n")
		}
		for i, t := range m.visible {
			line := typeLine(m.module, t)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + typeStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(helpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • / filter • enter details • q quit"))
		}

	case stateDetail:
		t := m.visible[m.selected]
		b.WriteString(fmt.Sprintf("Details of %s:\n\n", typeStyle.Render(t.String())))
		for _, line := range details(m.module, t) {
			style := detailStyle
			if strings.HasPrefix(line, "invalid:") {
				style = errorStyle
			}
			b.WriteString("  ")
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter back • q quit"))
	}

	return b.String()
}

func runInteractive(src source, opts spirv.Options) error {
	p := tea.NewProgram(newInteractiveModel(src, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
