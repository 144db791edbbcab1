// Package tui provides a terminal user interface for toontrack2ad2
package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/toontrack2ad2/pkg/converter"
	"github.com/james-see/toontrack2ad2/pkg/converter/devices"
)

// Drum-kit color scheme (brass cymbals on a dark stage)
var (
	brass      = lipgloss.Color("#E1B12C")
	cream      = lipgloss.Color("#F5E6C8")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brass).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(cream).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brass).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StatePackagePicker
	StateStyleInput
	StateConverting
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	DryRun      bool
}

var menuItems = []MenuItem{
	{Title: "Convert package", Description: "Copy a Toontrack package into an Addictive Drums 2 folder"},
	{Title: "Preview package", Description: "Show the new file names without copying anything", DryRun: true},
	{Title: "Exit", Description: "Exit the application"},
}

// Config holds what the TUI needs to run conversions
type Config struct {
	OutputDir  string
	MappingDir string
	Normalizer *converter.TypeNormalizer
}

// Model represents the TUI model
type Model struct {
	cfg         Config
	state       State
	menuIndex   int
	filePicker  filepicker.Model
	styleInput  textinput.Model
	spinner     spinner.Model
	packagePath string
	action      MenuItem
	result      *converter.Result
	trace       []string
	err         error
	width       int
	height      int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	result *converter.Result
	trace  []string
	err    error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(cfg Config) Model {
	// Package folders are picked, not files
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.CurrentDirectory, _ = os.Getwd()

	ti := textinput.New()
	ti.Placeholder = "Funk"
	ti.CharLimit = 64

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(brass)

	return Model{
		cfg:        cfg,
		state:      StateMenu,
		filePicker: fp,
		styleInput: ti,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages while it is shown
	if m.state == StatePackagePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.packagePath = path
			m.state = StateStyleInput
			focus := m.styleInput.Focus()
			return m, focus
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateStyleInput:
			return m.updateStyleInput(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.result = msg.result
		m.trace = msg.trace
		m.err = msg.err
		return m, nil
	}

	if m.state == StateStyleInput {
		var cmd tea.Cmd
		m.styleInput, cmd = m.styleInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.action = menuItems[m.menuIndex]
		m.state = StatePackagePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateStyleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.styleInput.Blur()
		m.state = StatePackagePicker
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		if strings.TrimSpace(m.styleInput.Value()) == "" {
			return m, nil
		}
		m.styleInput.Blur()
		m.state = StateConverting
		return m, tea.Batch(m.spinner.Tick, m.performConversion())
	}

	var cmd tea.Cmd
	m.styleInput, cmd = m.styleInput.Update(msg)
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.result = nil
		m.trace = nil
		m.packagePath = ""
		m.styleInput.Reset()
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	root := m.packagePath
	style := strings.TrimSpace(m.styleInput.Value())
	cfg := m.cfg
	dryRun := m.action.DryRun

	return func() tea.Msg {
		var trace bytes.Buffer
		conv := converter.NewWithOptions(devices.NewAD2(), cfg.Normalizer, converter.Options{
			OutputDir:  cfg.OutputDir,
			MappingDir: cfg.MappingDir,
			DryRun:     dryRun,
			Trace:      &trace,
		})

		res, err := conv.Run(context.Background(), root, style)
		lines := strings.Split(strings.TrimRight(trace.String(), "\n"), "\n")
		return conversionDoneMsg{result: res, trace: lines, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(logo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StatePackagePicker:
		s.WriteString(m.viewPackagePicker())
	case StateStyleInput:
		s.WriteString(m.viewStyleInput())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" TOONTRACK → ADDICTIVE DRUMS 2 "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(cream).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewPackagePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT PACKAGE FOLDER "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: pick folder • →/l: open • esc: back to menu"))

	return s.String()
}

func (m Model) viewStyleInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" STYLE CATEGORY "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Package: %s\n\n", filepath.Base(m.packagePath)))
	s.WriteString(m.styleInput.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: convert • esc: back"))

	return boxStyle.Render(s.String())
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.packagePath)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  style: %s", m.styleInput.Value())))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	case m.result != nil && m.result.DryRun:
		s.WriteString(titleStyle.Render(" PREVIEW "))
		s.WriteString("\n\n")
		for _, line := range m.previewLines() {
			s.WriteString(line)
			s.WriteString("\n")
		}
	default:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Package: %s\n", filepath.Base(m.packagePath)))
		if m.result != nil {
			s.WriteString(fmt.Sprintf("Files:   %d\n", m.result.Files))
			for _, dir := range m.result.Dirs {
				s.WriteString(fmt.Sprintf("Folder:  %s\n", dir))
			}
			if m.result.MappingDest != "" {
				s.WriteString(fmt.Sprintf("Mapping: %s", filepath.Base(m.result.MappingDest)))
			}
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

// previewLines returns the planned destinations, capped to fit the window
func (m Model) previewLines() []string {
	var lines []string
	for _, line := range m.trace {
		if strings.HasPrefix(line, "  -> ") {
			lines = append(lines, filepath.Base(strings.TrimPrefix(line, "  -> ")))
		}
	}
	limit := m.height - 16
	if limit < 5 {
		limit = 5
	}
	if len(lines) > limit {
		more := len(lines) - limit
		lines = append(lines[:limit], fmt.Sprintf("… and %d more", more))
	}
	return lines
}

func logo() string {
	logo := `
  ╔╦╗╔═╗╔═╗╔╗╔╔╦╗╦═╗╔═╗╔═╗╦╔═  ┌─┐  ╔═╗╔╦╗╔═╗
   ║ ║ ║║ ║║║║ ║ ╠╦╝╠═╣║  ╠╩╗  └─┐  ╠═╣ ║║╔═╝
   ╩ ╚═╝╚═╝╝╚╝ ╩ ╩╚═╩ ╩╚═╝╩ ╩   ─┘  ╩ ╩═╩╝╚═╝
`
	return lipgloss.NewStyle().Foreground(brass).Render(logo)
}

// Run starts the TUI application
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
