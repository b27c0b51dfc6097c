// package ui implements the interactive terminal front end for batch conversion.
//
// The engine runs on a worker goroutine; progress updates cross back into the
// bubbletea event loop over a channel, so the UI thread never touches the
// conversion session directly.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/swbatch/internal/converter"
	"github.com/desertthunder/swbatch/internal/formats"
	"github.com/desertthunder/swbatch/internal/scanner"
	"github.com/desertthunder/swbatch/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	ConfirmView
	ConvertView
	ResultView
)

const (
	inputDirField = iota
	outputDirField
	fieldCount
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	engine     *converter.Engine
	config     *shared.Config
	configPath string

	inputs  []textinput.Model
	focused int

	formats      map[formats.ExportFormat]bool
	skipExisting bool
	flatten      bool

	pending   []scanner.Task
	skippable []scanner.Task
	tasks     []scanner.Task

	progressChan chan progressEvent
	current      progressEvent
	bar          progress.Model

	results []converter.Result
	err     error

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// progressEvent bridges the engine's progress callback into tea messages.
type progressEvent struct {
	Current int
	Total   int
	Task    scanner.Task
	Status  *converter.Status
}

type keyMap struct {
	next    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "scan"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "convert"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "cancel"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.enter},
		{k.back, k.yes, k.no},
		{k.restart, k.quit},
	}
}

type scanDoneMsg struct {
	pending   []scanner.Task
	skippable []scanner.Task
	err       error
}

type progressUpdateMsg progressEvent

type convertDoneMsg struct {
	results []converter.Result
	err     error
}

// NewModel creates a new TUI model with the provided dependencies. configPath
// may be empty, in which case last-used directories are not persisted.
func NewModel(ctx context.Context, engine *converter.Engine, config *shared.Config, configPath string) *Model {
	inputDir := textinput.New()
	inputDir.Placeholder = "Input directory"
	inputDir.SetValue(config.UI.LastInputDir)
	inputDir.Focus()

	outputDir := textinput.New()
	outputDir.Placeholder = "Output directory"
	outputDir.SetValue(config.UI.LastOutputDir)

	selected := map[formats.ExportFormat]bool{formats.STL: true}
	if parsed, err := formats.ParseFormats(config.Conversion.Formats, true); err == nil {
		selected = make(map[formats.ExportFormat]bool)
		for _, f := range parsed {
			selected[f] = true
		}
	}

	return &Model{
		ctx:          ctx,
		view:         FormView,
		engine:       engine,
		config:       config,
		configPath:   configPath,
		inputs:       []textinput.Model{inputDir, outputDir},
		formats:      selected,
		skipExisting: config.Conversion.SkipExisting,
		flatten:      !config.Conversion.PreserveStructure,
		bar:          progress.New(progress.WithDefaultGradient()),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case scanDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.pending = msg.pending
		m.skippable = msg.skippable
		m.tasks = append(append([]scanner.Task{}, msg.pending...), msg.skippable...)
		m.view = ConfirmView
		return m, nil

	case progressUpdateMsg:
		m.current = progressEvent(msg)
		return m, m.waitForProgress()

	case convertDoneMsg:
		m.results = msg.results
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m, m.updateInputs(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case ConfirmView:
		return m.renderConfirm()
	case ConvertView:
		return m.renderConvert()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.inputs[m.focused].Blur()
		m.focused = (m.focused + 1) % fieldCount
		m.inputs[m.focused].Focus()
		return m, nil
	case "ctrl+s":
		m.toggleFormat(formats.STL)
		return m, nil
	case "ctrl+t":
		m.toggleFormat(formats.ThreeMF)
		return m, nil
	case "ctrl+x":
		m.skipExisting = !m.skipExisting
		return m, nil
	case "ctrl+f":
		m.flatten = !m.flatten
		return m, nil
	case "enter":
		return m, m.startScan()
	}
	return m, m.updateInputs(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = FormView
		return m, nil
	case "y", "enter":
		m.view = ConvertView
		return m, m.startConversion()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = FormView
		m.pending = nil
		m.skippable = nil
		m.tasks = nil
		m.results = nil
		m.current = progressEvent{}
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m *Model) toggleFormat(f formats.ExportFormat) {
	if m.formats[f] {
		// Keep at least one format selected.
		count := 0
		for _, on := range m.formats {
			if on {
				count++
			}
		}
		if count == 1 {
			return
		}
	}
	m.formats[f] = !m.formats[f]
}

func (m *Model) selectedFormats() []formats.ExportFormat {
	var selected []formats.ExportFormat
	for _, f := range formats.All() {
		if m.formats[f] {
			selected = append(selected, f)
		}
	}
	return selected
}

func (m *Model) startScan() tea.Cmd {
	inputDir := strings.TrimSpace(m.inputs[inputDirField].Value())
	outputDir := strings.TrimSpace(m.inputs[outputDirField].Value())

	if err := shared.ValidatePaths(inputDir, outputDir); err != nil {
		m.err = err
		return nil
	}

	m.persistDirs(inputDir, outputDir)

	inputExtensions, err := formats.ParseSourceExtensions(m.config.Conversion.InputFormats)
	if err != nil {
		inputExtensions = nil
	}

	return func() tea.Msg {
		s := scanner.New(scanner.Opts{
			InputDir:        inputDir,
			OutputDir:       outputDir,
			Formats:         m.selectedFormats(),
			Flatten:         m.flatten,
			InputExtensions: inputExtensions,
		})
		pending, skippable, err := s.ScanPending()
		return scanDoneMsg{pending: pending, skippable: skippable, err: err}
	}
}

// persistDirs saves the last-used directories. Best effort; a failed write
// never blocks a conversion.
func (m *Model) persistDirs(inputDir, outputDir string) {
	m.config.UI.LastInputDir = inputDir
	m.config.UI.LastOutputDir = outputDir
	if m.configPath != "" {
		_ = shared.SaveConfig(m.config, m.configPath)
	}
}

func (m *Model) startConversion() tea.Cmd {
	m.progressChan = make(chan progressEvent, 2*len(m.tasks)+2)
	ch := m.progressChan

	go func() {
		results, err := m.engine.ConvertBatch(m.ctx, m.tasks, converter.Opts{
			SkipExisting: m.skipExisting,
			OnProgress: func(current, total int, task scanner.Task, status *converter.Status) {
				select {
				case ch <- progressEvent{Current: current, Total: total, Task: task, Status: status}:
				default:
					// Channel full, skip this update
				}
			},
		})
		m.results = results
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	ch := m.progressChan
	return func() tea.Msg {
		if ch == nil {
			return convertDoneMsg{results: m.results, err: m.err}
		}
		event, ok := <-ch
		if !ok {
			return convertDoneMsg{results: m.results, err: m.err}
		}
		return progressUpdateMsg(event)
	}
}

func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("swbatch: SolidWorks batch conversion"))
	b.WriteString("\n\n")
	b.WriteString("Input directory:\n")
	b.WriteString(m.inputs[inputDirField].View())
	b.WriteString("\n\nOutput directory:\n")
	b.WriteString(m.inputs[outputDirField].View())
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Formats: %s %s    Options: %s %s\n",
		checkbox("STL (ctrl+s)", m.formats[formats.STL]),
		checkbox("3MF (ctrl+t)", m.formats[formats.ThreeMF]),
		checkbox("skip up-to-date (ctrl+x)", m.skipExisting),
		checkbox("flatten (ctrl+f)", m.flatten),
	))

	if m.err != nil {
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.enter, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func checkbox(label string, checked bool) string {
	if checked {
		return styles.ok.Render("[x] " + label)
	}
	return styles.help.Render("[ ] " + label)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Scan complete")
	info := fmt.Sprintf(
		"\nPending conversion: %d\nAlready up to date: %d\nTotal tasks: %d\n",
		len(m.pending), len(m.skippable), len(m.tasks),
	)

	preview := ""
	limit := len(m.pending)
	if limit > 10 {
		limit = 10
	}
	for _, task := range m.pending[:limit] {
		preview += fmt.Sprintf("  %s -> %s\n", task.RelativeSource(), strings.ToUpper(string(task.Format)))
	}
	if len(m.pending) > limit {
		preview += fmt.Sprintf("  ... and %d more\n", len(m.pending)-limit)
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, info, preview, helpView)
}

func (m *Model) renderConvert() string {
	title := styles.title.Render("Converting")

	percent := 0.0
	if m.current.Total > 0 {
		percent = float64(m.current.Current) / float64(m.current.Total)
	}

	line := "Starting session..."
	if m.current.Total > 0 {
		verb := "converting"
		if m.current.Status != nil {
			verb = string(*m.current.Status)
		}
		line = fmt.Sprintf("[%d/%d] %s: %s", m.current.Current, m.current.Total, verb, m.current.Task.RelativeSource())
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.bar.ViewAs(percent), line)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Conversion failed: %v\n\nPress r to restart, q to quit", m.err))
	}

	stats := converter.Summarize(m.results)
	title := styles.ok.Render("Conversion complete")
	info := fmt.Sprintf("\nSuccess: %d\nSkipped: %d\nFailed: %d\n", stats.Success, stats.Skipped, stats.Failed)

	var failed string
	if stats.Failed > 0 {
		failed = "\n" + styles.warn.Render("Failed tasks:") + "\n"
		for _, result := range m.results {
			if result.Status == converter.StatusFailed || result.Status == converter.StatusOpenFailed {
				failed += fmt.Sprintf("  • %s: %s\n", result.Task.RelativeSource(), result.Message)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n%s", title, info, failed, helpView)
}
