package viz

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/fedbatch/internal/config"
	"github.com/san-kum/fedbatch/internal/export"
	"github.com/san-kum/fedbatch/internal/models"
	"github.com/san-kum/fedbatch/internal/sim"
)

const (
	canvasWidth  = 40
	canvasHeight = 20
	plotWidth    = 40
	plotHeight   = 8
	barWidth     = 12
)

type TickMsg time.Time

// Model is the bubbletea frontend for a sim.Controller. Slider edits collect
// in a pending config and reach the controller on the next start or reset.
type Model struct {
	ctrl     *sim.Controller
	pending  *config.Config
	selected int
	canvas   *Canvas
	theme    Theme
	st       styles
	fps      int
	err      error
	status   string
	showHelp bool
	exportTo string
	log      *zap.Logger
}

type ModelOption func(*Model)

func WithTheme(name string) ModelOption {
	return func(m *Model) {
		m.theme = GetTheme(name)
		m.st = newStyles(m.theme)
	}
}

// WithExportDir sets where the export key writes CSV and JSON files.
func WithExportDir(dir string) ModelOption {
	return func(m *Model) { m.exportTo = dir }
}

func WithLogger(l *zap.Logger) ModelOption {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// NewModel wraps ctrl. cfg seeds the sliders and is clamped to their ranges.
func NewModel(ctrl *sim.Controller, cfg *config.Config, opts ...ModelOption) Model {
	pending := cfg.Clone()
	pending.ClampToBounds()

	fps := pending.FrameRate
	if fps <= 0 {
		fps = config.DefaultFrameRate
	}

	m := Model{
		ctrl:     ctrl,
		pending:  pending,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		theme:    ThemeLab,
		st:       newStyles(ThemeLab),
		fps:      fps,
		exportTo: ".",
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s", "enter":
			if m.apply() {
				m.ctrl.Start()
				m.err = nil
				m.status = "run " + m.ctrl.RunID()
			}
		case "r":
			if m.apply() {
				m.ctrl.Reset()
				m.err = nil
				m.status = ""
			}
		case "tab":
			m.selected = (m.selected + 1) % len(config.Bounds)
		case "shift+tab":
			m.selected = (m.selected + len(config.Bounds) - 1) % len(config.Bounds)
		case "up", "k", "right", "l":
			m.adjust(0.05)
		case "down", "j", "left", "h":
			m.adjust(-0.05)
		case "v":
			m.togglePolicy()
		case "x":
			m.exportRun()
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if err := m.ctrl.Tick(); err != nil {
			m.err = err
			m.log.Warn("run stopped", zap.Error(err))
		}
		return m, m.tick()
	}
	return m, nil
}

// apply pushes the pending sliders into the controller.
func (m *Model) apply() bool {
	err := m.ctrl.Configure(m.pending.Params, m.pending.Initial.Biomass, m.pending.Initial.Substrate)
	if err != nil {
		m.err = err
		return false
	}
	return true
}

func (m *Model) adjust(fraction float64) {
	r := config.Bounds[m.selected]
	m.pending.Set(r.Key, r.Step(m.pending.Get(r.Key), fraction))
}

func (m *Model) togglePolicy() {
	if m.pending.Params.VolumePolicy == models.Growing {
		m.pending.Params.VolumePolicy = models.Constant
	} else {
		m.pending.Params.VolumePolicy = models.Growing
	}
}

func (m *Model) exportRun() {
	if m.ctrl.Steps() == 0 {
		m.status = "nothing to export"
		return
	}
	run := export.FromController(m.ctrl)
	csvPath := export.DefaultPath(m.exportTo, run.ID, "csv")
	jsonPath := export.DefaultPath(m.exportTo, run.ID, "json")

	err := export.WriteFile(csvPath, func(w io.Writer) error { return export.WriteCSV(w, run.Series) })
	if err == nil {
		err = export.WriteFile(jsonPath, func(w io.Writer) error { return export.WriteJSON(w, run) })
	}
	if err != nil {
		m.err = err
		m.log.Error("export failed", zap.Error(err))
		return
	}
	m.status = "saved " + csvPath
	m.log.Info("exported run", zap.String("run_id", run.ID), zap.String("csv", csvPath), zap.String("json", jsonPath))
}

// current is the configuration the controller is running with, for
// comparing against pending slider values.
func (m Model) current() *config.Config {
	x0, s0 := m.ctrl.Initial()
	return &config.Config{
		Initial: config.InitialConfig{Biomass: x0, Substrate: s0},
		Params:  m.ctrl.Params(),
	}
}

func (m Model) draw() {
	m.canvas.Clear()
	DrawVessel(m.canvas, Vessel{
		Volume:  m.ctrl.State().Volume,
		Phase:   m.ctrl.Phase(),
		Feeding: m.ctrl.Params().FeedRate > 0,
	})
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()

	var left strings.Builder
	left.WriteString(m.st.header.Render("FED-BATCH BIOREACTOR") + "\n")
	left.WriteString(m.canvas.String())
	left.WriteString(m.st.label.Width(0).Render("feed in, no outflow") + "\n")
	canvasView := m.st.canvas.Render(left.String())

	var s strings.Builder
	if m.ctrl.RunState() == sim.Running {
		s.WriteString(m.st.running.Render(m.ctrl.RunState().String()))
	} else {
		s.WriteString(m.st.idle.Render(m.ctrl.RunState().String()))
	}
	if m.status != "" {
		s.WriteString("  " + m.st.label.Width(0).Render(m.status))
	}
	s.WriteString("\n\n")

	st := m.ctrl.State()
	s.WriteString(m.readout("Biomass X", st.Biomass, "g/L"))
	s.WriteString(m.readout("Substrate S", st.Substrate, "g/L"))
	s.WriteString(m.readout("Product P", st.Product, "g/L"))
	s.WriteString(m.readout("Volume V", st.Volume, "L"))
	s.WriteString(m.readout("Time", m.ctrl.Elapsed(), "h"))
	s.WriteString(m.readout("Growth mu", models.GrowthRate(m.ctrl.Params(), st.Substrate), "1/h"))

	if series := m.ctrl.History(); series.Len() > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{series.Biomass, series.Substrate, series.Product},
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Precision(1),
			asciigraph.SeriesColors(m.theme.Biomass, m.theme.Substrate, m.theme.Product),
			asciigraph.Caption("X S P (g/L) vs time"),
		)
		s.WriteString(m.st.graph.Render(chart) + "\n")
	} else {
		s.WriteString("\n")
	}

	s.WriteString("CONTROLS\n")
	cur := m.current()
	for i, r := range config.Bounds {
		val := m.pending.Get(r.Key)
		line := fmt.Sprintf("%-7s %s %6.2f %s", r.Key, SliderBar(r.Fraction(val), barWidth), val, r.Unit)
		if val != cur.Get(r.Key) {
			line += " *"
		}
		if i == m.selected {
			s.WriteString(m.st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.st.value.Render(line) + "\n")
		}
	}
	sel := config.Bounds[m.selected]
	s.WriteString("  " + m.st.label.Width(0).Render(fmt.Sprintf("%s [%g, %g]", sel.Label, sel.Min, sel.Max)) + "\n")
	policy := "volume " + m.pending.Params.VolumePolicy.String()
	if m.pending.Params.VolumePolicy != cur.Params.VolumePolicy {
		policy += " *"
	}
	s.WriteString("  " + m.st.value.Render(policy) + "\n")
	if m.pendingChanges() {
		s.WriteString(m.st.pending.Render("* applied on start/reset") + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + m.st.errorMsg.Render(m.err.Error()) + "\n")
	}

	s.WriteString(m.st.help.Render("S:Start R:Reset Q:Quit ?:Help"))
	statsView := m.st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func (m Model) readout(label string, v float64, unit string) string {
	return m.st.label.Render(label) + m.st.value.Render(fmt.Sprintf("%.2f %s", v, unit)) + "\n"
}

func (m Model) pendingChanges() bool {
	cur := m.current()
	for _, r := range config.Bounds {
		if m.pending.Get(r.Key) != cur.Get(r.Key) {
			return true
		}
	}
	return m.pending.Params.VolumePolicy != cur.Params.VolumePolicy
}

const helpText = `
  S / Enter  apply controls and start a new run
  R          apply controls and reset to idle
  Tab        select next control (Shift+Tab previous)
  Up / Down  adjust selected control by 5% of its range
  V          toggle growing / constant volume
  X          export current run to CSV and JSON
  T          cycle colour theme
  Q          quit
`

// Run starts the bubbletea program on the alternate screen.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
