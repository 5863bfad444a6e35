// Package tui is the interactive route screen: pick a GPX file, upload it as
// training data or ask for a predicted completion time, and manage the list of
// training items.
package tui

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"hikepredict/internal/picker"
	"hikepredict/internal/store"
	"hikepredict/internal/view"
)

type mode int

const (
	modeMain mode = iota
	modePicker
)

// actionMsg carries a store action through the bubbletea loop.
type actionMsg struct{ action store.Action }

// Options configures the screen.
type Options struct {
	Exec     *store.Executor
	StartDir string
	Accept   []string
	Styles   *view.Styles
	Logger   *zerolog.Logger
}

// Model is the bubbletea model of the route screen.
type Model struct {
	ctx     context.Context
	exec    *store.Executor
	state   store.State
	styles  view.Styles
	cursor  int
	mode    mode
	purpose picker.Purpose
	accept  []string
	start   string
	height  int
	fp      filepicker.Model
	spin    spinner.Model
	log     zerolog.Logger
}

// New builds the screen. ctx bounds every request the screen issues.
func New(ctx context.Context, opts Options) *Model {
	accept := opts.Accept
	if len(accept) == 0 {
		accept = picker.DefaultAccept
	}
	start := opts.StartDir
	if start == "" {
		if wd, err := os.Getwd(); err == nil {
			start = wd
		} else {
			start = "."
		}
	}
	styles := view.DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Model{
		ctx:    ctx,
		exec:   opts.Exec,
		state:  store.Initial(),
		styles: styles,
		accept: accept,
		start:  start,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		log:    log.With().Str("component", "tui").Logger(),
	}
}

// State returns a snapshot of the screen state.
func (m *Model) State() store.State { return m.state.Clone() }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.dispatch(store.Mounted{}), m.spin.Tick)
}

// dispatch reduces a and turns the resulting effects into commands.
func (m *Model) dispatch(a store.Action) tea.Cmd {
	next, effects := store.Reduce(m.state, a)
	m.state = next
	if n := len(m.state.TrainingItems); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 && len(m.state.TrainingItems) > 0 {
		m.cursor = 0
	}
	var cmds []tea.Cmd
	for _, eff := range effects {
		if pf, ok := eff.(store.PickFile); ok {
			cmds = append(cmds, m.openPicker(pf.Purpose))
			continue
		}
		cmds = append(cmds, m.run(eff))
	}
	return tea.Batch(cmds...)
}

// run performs eff off the update loop and reports its outcome as an action.
func (m *Model) run(eff store.Effect) tea.Cmd {
	ctx, exec := m.ctx, m.exec
	return func() tea.Msg {
		return actionMsg{action: exec.Run(ctx, eff)}
	}
}

func (m *Model) openPicker(p picker.Purpose) tea.Cmd {
	fp := filepicker.New()
	fp.CurrentDirectory = m.start
	fp.AllowedTypes = picker.Extensions(m.accept)
	fp.ShowSize = true
	fp.Height = 12
	if m.height > 3 {
		fp.Height = m.height
	}
	m.fp = fp
	m.purpose = p
	m.mode = modePicker
	return m.fp.Init()
}

// choose resolves a selected path into the pick outcome.
func (m *Model) choose(path string) tea.Cmd {
	m.mode = modeMain
	f, err := picker.Describe(path, m.accept)
	if err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("pick failed")
		return m.dispatch(store.PickFailed{Err: err})
	}
	return m.dispatch(store.FilePicked{Purpose: m.purpose, File: f})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionMsg:
		return m, m.dispatch(msg.action)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height > 3 {
			m.fp.Height = m.height
		}
		return m, nil
	}
	if m.mode == modePicker {
		return m.updatePicker(msg)
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc", "q":
			m.mode = modeMain
			return m, m.dispatch(store.PickCanceled{})
		}
	}
	var cmd tea.Cmd
	m.fp, cmd = m.fp.Update(msg)
	if ok, path := m.fp.DidSelectFile(msg); ok {
		return m, tea.Batch(cmd, m.choose(path))
	}
	if ok, path := m.fp.DidSelectDisabledFile(msg); ok {
		m.mode = modeMain
		m.log.Warn().Str("path", path).Msg("file type not accepted")
		return m, m.dispatch(store.PickFailed{Err: errors.New("unsupported file type")})
	}
	return m, cmd
}

func (m *Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "t":
		return m, m.dispatch(store.PickRequested{Purpose: picker.ForTraining})
	case "p":
		return m, m.dispatch(store.PickRequested{Purpose: picker.ForPrediction})
	case "r":
		return m, m.dispatch(store.RefreshRequested{})
	case "esc":
		return m, m.dispatch(store.ErrorDismissed{})
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.TrainingItems)-1 {
			m.cursor++
		}
	case "x", "d", "delete":
		if m.cursor >= 0 && m.cursor < len(m.state.TrainingItems) {
			return m, m.dispatch(store.DeleteRequested{ID: m.state.TrainingItems[m.cursor].ID})
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.mode == modePicker {
		title := "Select a route file for " + m.purpose.String()
		return m.styles.Title.Render(title) + "\n\n" + m.fp.View() + "\n" +
			m.styles.Muted.Render("enter select • backspace up • esc cancel")
	}
	sc := view.Screen{Styles: m.styles, Cursor: m.cursor}
	if m.state.Loading {
		sc.Spinner = m.spin.View()
	}
	help := "t upload • p predict • ↑/↓ select • x delete • r refresh • esc clear error • q quit"
	return sc.Render(m.state) + "\n" + m.styles.Muted.Render(help) + "\n"
}

// Run starts the screen on the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
