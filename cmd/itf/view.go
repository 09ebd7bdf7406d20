package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/itf/trace"
	"github.com/wippyai/itf/value"
)

// chrome is the number of lines taken by the header, filter and help.
const chrome = 5

func runView(args []string, stdout io.Writer) error {
	fs, verbose := flags("view")
	files, err := parse(fs, verbose, args)
	if err != nil || files == nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("view takes one trace file, got %d", len(files))
	}
	t, err := readTrace(files[0])
	if err != nil {
		return err
	}

	if f, ok := stdout.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(stdout, renderSummary(files[0], t, true))
		return nil
	}
	p := tea.NewProgram(newViewModel(files[0], t), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type viewModel struct {
	trace     *trace.Trace[value.Value]
	filename  string
	filter    textinput.Model
	body      viewport.Model
	cursor    int
	filtering bool
	ready     bool
}

func newViewModel(filename string, t *trace.Trace[value.Value]) *viewModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "variable"
	ti.Width = 30
	return &viewModel{
		trace:    t,
		filename: filename,
		filter:   ti,
	}
}

func (m *viewModel) Init() tea.Cmd {
	return nil
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chrome, 1)
		if !m.ready {
			m.body = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.body.Width = msg.Width
			m.body.Height = height
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "right", "l", "n":
			m.move(m.cursor + 1)
		case "left", "h", "p":
			m.move(m.cursor - 1)
		case "home", "g":
			m.move(0)
		case "end", "G":
			m.move(m.trace.Len() - 1)
		case "L":
			if m.trace.Loop != nil {
				m.move(int(*m.trace.Loop))
			}
		case "/":
			m.filtering = true
			return m, m.filter.Focus()
		default:
			var cmd tea.Cmd
			m.body, cmd = m.body.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *viewModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		m.filter.SetValue("")
		fallthrough
	case "enter":
		m.filtering = false
		m.filter.Blur()
		m.refresh()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return cmd
}

func (m *viewModel) move(i int) {
	if i < 0 || i >= m.trace.Len() || i == m.cursor {
		return
	}
	m.cursor = i
	m.refresh()
	m.body.GotoTop()
}

func (m *viewModel) refresh() {
	if m.ready {
		m.body.SetContent(m.content())
	}
}

// content renders the variables of the current state. Variables whose
// value differs from the previous state are highlighted.
func (m *viewModel) content() string {
	if m.trace.Len() == 0 {
		return helpStyle.Render("trace has no states")
	}
	cur := m.trace.States[m.cursor].Value
	var prev value.Value
	if m.cursor > 0 {
		prev = m.trace.States[m.cursor-1].Value
	}

	width := max(m.body.Width-2, 20)
	wrap := lipgloss.NewStyle().Width(width).PaddingLeft(2)
	query := strings.ToLower(m.filter.Value())

	var b strings.Builder
	shown := 0
	for _, f := range cur.Fields() {
		if query != "" && !strings.Contains(strings.ToLower(f.Name), query) {
			continue
		}
		shown++
		name := varStyle.Render(f.Name)
		if old, ok := prev.Lookup(f.Name); m.cursor > 0 && (!ok || !old.Equivalent(f.Value)) {
			name = changedStyle.Render("* " + f.Name)
		}
		b.WriteString(name)
		b.WriteString("\n")
		b.WriteString(wrap.Render(f.Value.String()))
		b.WriteString("\n")
	}
	if shown == 0 {
		b.WriteString(helpStyle.Render("no variables match " + m.filter.Value()))
	}
	return b.String()
}

func (m *viewModel) View() string {
	if !m.ready {
		return "Loading trace..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ITF viewer"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("  ")
	b.WriteString(selectedStyle.Render(fmt.Sprintf(" state %d/%d ", m.cursor, max(m.trace.Len()-1, 0))))
	if m.trace.Loop != nil && int(*m.trace.Loop) == m.cursor {
		b.WriteString(" ")
		b.WriteString(changedStyle.Render("loop target"))
	}
	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.body.View())
	b.WriteString("\n")
	if m.trace.Len() == 0 {
		b.WriteString(errorStyle.Render("empty trace"))
		b.WriteString(" ")
	}
	b.WriteString(helpStyle.Render("←/→ step • g/G first/last • L loop • / filter • ↑/↓ scroll • q quit"))
	return b.String()
}
