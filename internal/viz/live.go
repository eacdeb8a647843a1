package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/boxsim/internal/dynamo"
	"github.com/san-kum/boxsim/internal/metrics"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

// DoneMsg reports the end of the simulation driving the view.
type DoneMsg struct {
	Result *dynamo.Result
	Err    error
}

type streamClosedMsg struct{}

// Model is the bubbletea view of a running simulation. It only renders
// what arrives on its Stream; the simulation runs elsewhere.
type Model struct {
	title    string
	stream   *Stream
	boxSize  float64
	total    int
	canvas   *Canvas
	frame    FrameMsg
	seen     bool
	energy   []float64
	running  bool
	waiting  bool
	finished bool
	result   *dynamo.Result
	err      error
}

func NewModel(title string, stream *Stream, boxSize float64, totalSteps int) Model {
	return Model{
		title:   title,
		stream:  stream,
		boxSize: boxSize,
		total:   totalSteps,
		canvas:  NewCanvas(width, height),
		energy:  make([]float64, 0, historyCapacity),
		running: true,
		waiting: true,
	}
}

// Init starts the first wait, which NewModel already accounts for.
func (m Model) Init() tea.Cmd {
	return waitForFrame(m.stream.Frames())
}

func (m *Model) next() tea.Cmd {
	m.waiting = true
	return waitForFrame(m.stream.Frames())
}

func waitForFrame(frames <-chan FrameMsg) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return streamClosedMsg{}
		}
		return f
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stream.Detach()
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
			if m.running && !m.waiting && !m.finished {
				return m, m.next()
			}
		}
	case FrameMsg:
		m.waiting = false
		m.frame = msg
		m.seen = true
		if len(m.energy) == historyCapacity {
			m.energy = m.energy[1:]
		}
		m.energy = append(m.energy, msg.Kinetic)
		if m.running {
			return m, m.next()
		}
	case streamClosedMsg:
		m.waiting = false
		m.finished = true
	case DoneMsg:
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
	}
	return m, nil
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED: " + m.err.Error())
	case m.finished:
		return StatusRunning.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	m.canvas.DrawEnsemble(m.frame.Ensemble, m.boxSize)
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	progress := 0.0
	if m.total > 0 {
		progress = float64(m.frame.Step) / float64(m.total)
	}
	px, py := metrics.Momentum(m.frame.Ensemble)

	s.WriteString(MetricLabel.Render("Step") + MetricValue.Render(fmt.Sprintf("%d/%d", m.frame.Step, m.total)) + "\n")
	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.3f", m.frame.Time)) + "\n")
	s.WriteString(MetricLabel.Render("Particles") + MetricValue.Render(fmt.Sprintf("%d", len(m.frame.Ensemble))) + "\n")
	s.WriteString(MetricLabel.Render("Kinetic") + MetricValue.Render(fmt.Sprintf("%.4f", m.frame.Kinetic)) + "\n")
	s.WriteString(MetricLabel.Render("Momentum") + MetricValue.Render(fmt.Sprintf("(%.3f, %.3f)", px, py)) + "\n")
	if m.result != nil {
		s.WriteString(MetricLabel.Render("Bounces") + MetricValue.Render(fmt.Sprintf("%d", m.result.Bounces)) + "\n")
	}
	s.WriteString("\n" + ProgressBar(progress, 30) + "\n")
	s.WriteString(SparklineChart(m.energy, 30) + "\n")

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause Q:Quit"))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
