package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hbc-format/hbc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const pageSize = 20

type modelState int

const (
	stateListFuncs modelState = iota
	stateShowFunc
	stateJump
)

type interactiveModel struct {
	err      error
	filename string
	form     hbc.Form
	fields   *hbc.FileFields
	funcs    []funcInfo
	jump     textinput.Model
	selected int
	top      int
	state    modelState
}

type funcInfo struct {
	name     string
	header   hbc.FunctionHeader
	handlers hbc.ExceptionHandlerTable
}

type loadedMsg struct {
	err    error
	fields *hbc.FileFields
	funcs  []funcInfo
}

func newInteractiveModel(filename string, form hbc.Form) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		form:     form,
		state:    stateListFuncs,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadFile
}

func (m *interactiveModel) loadFile() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	fields, err := hbc.PopulateFromBuffer(data, m.form)
	if err != nil {
		return loadedMsg{err: err}
	}

	funcs := make([]funcInfo, fields.FunctionHeaders.Count())
	for i := range funcs {
		fh, err := fields.FunctionHeader(i)
		if err != nil {
			return loadedMsg{err: err}
		}
		eh, err := fields.ExceptionHandlers(i)
		if err != nil {
			return loadedMsg{err: err}
		}
		name := fmt.Sprintf("<function %d>", i)
		if raw, err := fields.StringBytes(int(fh.FunctionName)); err == nil && len(raw) > 0 {
			name = string(raw)
		}
		funcs[i] = funcInfo{name: name, header: fh, handlers: eh}
	}

	return loadedMsg{fields: fields, funcs: funcs}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateJump {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				if idx, err := strconv.Atoi(m.jump.Value()); err == nil &&
					idx >= 0 && idx < len(m.funcs) {
					m.selected = idx
					m.state = stateShowFunc
				} else {
					m.state = stateListFuncs
				}
			case "esc":
				m.state = stateListFuncs
			default:
				var cmd tea.Cmd
				m.jump, cmd = m.jump.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateListFuncs && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateListFuncs && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateListFuncs:
				if len(m.funcs) > 0 {
					m.state = stateShowFunc
				}
			case stateShowFunc:
				m.state = stateListFuncs
			}

		case "/", "g":
			if m.state == stateListFuncs {
				m.jump = textinput.New()
				m.jump.Prompt = "function index: "
				m.jump.Width = 10
				m.jump.Focus()
				m.state = stateJump
			}

		case "esc":
			if m.state == stateShowFunc {
				m.state = stateListFuncs
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.fields = msg.fields
		m.funcs = msg.funcs
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.fields == nil {
		return "Loading bytecode file..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Bytecode Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateListFuncs:
		h := m.fields.Header
		b.WriteString(fmt.Sprintf("%s functions, %s strings, %s modules\n\n",
			fieldStyle.Render(strconv.Itoa(int(h.FunctionCount))),
			fieldStyle.Render(strconv.Itoa(int(h.StringCount))),
			fieldStyle.Render(strconv.Itoa(h.ModuleCount()))))

		if m.selected < m.top {
			m.top = m.selected
		}
		if m.selected >= m.top+pageSize {
			m.top = m.selected - pageSize + 1
		}
		end := m.top + pageSize
		if end > len(m.funcs) {
			end = len(m.funcs)
		}
		for i := m.top; i < end; i++ {
			f := m.funcs[i]
			line := fmt.Sprintf("[%d] %s (%d params, %d bytes)",
				i, f.name, f.header.ParamCount, f.header.BytecodeSizeInBytes)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter inspect • / jump • q quit"))

	case stateShowFunc:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Function %d: %s\n\n", m.selected, funcStyle.Render(f.name)))
		b.WriteString(fmt.Sprintf("  %s %d\n", fieldStyle.Render("params:"), f.header.ParamCount))
		b.WriteString(fmt.Sprintf("  %s %d\n", fieldStyle.Render("frame size:"), f.header.FrameSize))
		b.WriteString(fmt.Sprintf("  %s %d\n", fieldStyle.Render("environment:"), f.header.EnvironmentSize))
		b.WriteString(fmt.Sprintf("  %s %d bytes at offset %d\n",
			fieldStyle.Render("bytecode:"), f.header.BytecodeSizeInBytes, f.header.Offset))
		if flags := formatFlags(f.header.Flags); flags != "" {
			b.WriteString(fmt.Sprintf("  %s %s\n", fieldStyle.Render("flags:"), flags))
		}
		if f.handlers.Count() > 0 {
			b.WriteString(fmt.Sprintf("\n  %s\n", fieldStyle.Render("exception handlers:")))
			for j := 0; j < f.handlers.Count(); j++ {
				h := f.handlers.At(j)
				b.WriteString(fmt.Sprintf("    [%d, %d) -> %d\n", h.Start, h.End, h.Target))
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))

	case stateJump:
		b.WriteString(m.jump.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter go • esc cancel"))
	}

	return b.String()
}

func runInteractive(filename string, form hbc.Form) error {
	p := tea.NewProgram(newInteractiveModel(filename, form), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
