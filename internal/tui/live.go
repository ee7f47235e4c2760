// Package tui shows a launch as it runs.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/launchlab/coilsim/internal/launch"
	"github.com/launchlab/coilsim/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Feed forwards every nth recorded sample into a channel the live view
// drains. It runs on the simulation goroutine, so the channel is buffered
// and sends never block.
type Feed struct {
	ch    chan launch.Sample
	every int
	n     int
}

func NewFeed(every int) *Feed {
	if every < 1 {
		every = 1
	}
	return &Feed{ch: make(chan launch.Sample, 256), every: every}
}

func (f *Feed) OnStep(s launch.Sample) {
	f.n++
	if f.n%f.every != 0 {
		return
	}
	select {
	case f.ch <- s:
	default:
	}
}

func (f *Feed) Close() { close(f.ch) }

type sampleMsg launch.Sample

type doneMsg struct {
	result *launch.Result
	err    error
}

type model struct {
	orch       *sim.Orchestrator
	maxTime    float64
	tubeLength float64
	stagePos   []float64

	feed   *Feed
	done   chan doneMsg
	ctx    context.Context
	cancel context.CancelFunc

	latest  launch.Sample
	history []float64
	result  *launch.Result
	err     error

	width  int
	height int
}

// NewLiveApp builds a bubbletea program that runs the launch in the
// background and renders its progress.
func NewLiveApp(orch *sim.Orchestrator, maxTime float64, sampleEvery int) *tea.Program {
	stages := orch.Stages()
	pos := make([]float64, len(stages))
	for i, st := range stages {
		pos[i] = st.Position
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := model{
		orch:       orch,
		maxTime:    maxTime,
		tubeLength: orch.TubeLength(),
		stagePos:   pos,
		feed:       NewFeed(sampleEvery),
		done:       make(chan doneMsg, 1),
		cancel:     cancel,
		ctx:        ctx,
		history:    make([]float64, 0, 48),
		width:      80,
		height:     24,
	}
	return tea.NewProgram(m)
}

func (m model) Init() tea.Cmd {
	ctx := m.ctx
	m.orch.AddObserver(m.feed)
	go func() {
		result, err := m.orch.Run(ctx, m.maxTime)
		m.feed.Close()
		m.done <- doneMsg{result: result, err: err}
	}()
	return tea.Batch(m.waitSample(), m.waitDone())
}

func (m model) waitSample() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.feed.ch
		if !ok {
			return nil
		}
		return sampleMsg(s)
	}
}

func (m model) waitDone() tea.Cmd {
	return func() tea.Msg { return <-m.done }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "escape":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case sampleMsg:
		m.latest = launch.Sample(msg)
		m.history = append(m.history, m.latest.Velocity)
		if len(m.history) > 48 {
			m.history = m.history[1:]
		}
		return m, m.waitSample()
	case doneMsg:
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n   " + cyan.Render("coilsim") + "  " + dim.Render("live launch") + "\n\n")
	b.WriteString(m.viewTube())
	b.WriteString(m.viewStages())
	b.WriteString(m.viewStats())

	if len(m.history) > 1 {
		b.WriteString("\n   " + dim.Render("velocity ") + cyan.Render(sparkline(m.history, 32)) + "\n")
	}

	if m.result != nil {
		b.WriteString(m.viewResult())
	} else if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n   " + dim.Render("q quit") + "\n")
	return b.String()
}

func (m model) viewTube() string {
	barWidth := m.width - 10
	if barWidth < 40 {
		barWidth = 40
	}
	if barWidth > 100 {
		barWidth = 100
	}

	cells := make([]rune, barWidth)
	for i := range cells {
		cells[i] = '─'
	}
	for _, p := range m.stagePos {
		idx := cellIndex(p, m.tubeLength, barWidth)
		cells[idx] = '╪'
	}
	capIdx := cellIndex(m.latest.Position, m.tubeLength, barWidth)

	var bar strings.Builder
	for i, c := range cells {
		switch {
		case i == capIdx:
			bar.WriteString(white.Render("▣"))
		case c == '╪':
			bar.WriteString(yellow.Render(string(c)))
		default:
			bar.WriteString(dimmer.Render(string(c)))
		}
	}
	return fmt.Sprintf("   %s%s%s\n", dim.Render("┤"), bar.String(), dim.Render("├ muzzle"))
}

func (m model) viewStages() string {
	var b strings.Builder
	b.WriteString("   ")
	for i, phase := range m.latest.StagePhases {
		var mark string
		switch phase {
		case launch.StageDischarging:
			mark = green.Render("●")
		case launch.StageDepleted:
			mark = dimmer.Render("○")
		default:
			mark = yellow.Render("○")
		}
		b.WriteString(fmt.Sprintf("%s%s  ", mark, dim.Render(fmt.Sprintf("s%d", i))))
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) viewStats() string {
	s := m.latest
	return fmt.Sprintf("\n   %s%s   %s%s   %s%s   %s%s\n",
		dim.Render("t="), white.Render(fmt.Sprintf("%.1fms", s.Time*1000)),
		dim.Render("x="), white.Render(fmt.Sprintf("%.4fm", s.Position)),
		dim.Render("v="), white.Render(fmt.Sprintf("%.4fm/s", s.Velocity)),
		dim.Render("F="), white.Render(fmt.Sprintf("%.3gN", s.NetForce)))
}

func (m model) viewResult() string {
	r := m.result
	status := green.Render(string(r.Termination))
	if r.Termination != launch.TerminateMuzzleExit {
		status = yellow.Render(string(r.Termination))
	}
	var b strings.Builder
	b.WriteString("\n   " + status + "\n")
	b.WriteString(fmt.Sprintf("   %s %s   %s %s\n",
		dim.Render("final velocity"), white.Render(fmt.Sprintf("%.4f m/s", r.FinalVelocity)),
		dim.Render("efficiency"), white.Render(fmt.Sprintf("%.4g", r.EnergyEfficiency))))
	if m.err != nil {
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
	}
	return b.String()
}

func cellIndex(pos, tube float64, width int) int {
	if tube <= 0 {
		return 0
	}
	idx := int(pos / tube * float64(width-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= width {
		idx = width - 1
	}
	return idx
}

func sparkline(data []float64, width int) string {
	if len(data) > width {
		data = data[len(data)-width:]
	}
	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	var b strings.Builder
	for _, v := range data {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
