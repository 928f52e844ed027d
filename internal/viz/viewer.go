package viz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/attractor/internal/raster"
	"github.com/san-kum/attractor/internal/search"
)

const (
	historyCapacity = 120
	defaultPoints   = 40_000
	statsWidth      = 44
	rotateStep      = 0.08
)

// SearchFunc produces the attractor to display. It should report attempts
// to obs and honour ctx, which is cancelled when the viewer quits.
type SearchFunc func(ctx context.Context, obs search.Observer) (*search.Result, error)

// Progress collects attempt statistics from search goroutines for the UI.
type Progress struct {
	mu        sync.Mutex
	counts    map[search.State]int
	total     int
	densities []float64
}

func NewProgress() *Progress {
	return &Progress{counts: make(map[search.State]int)}
}

func (p *Progress) OnAttempt(a search.Attempt) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[a.State]++
	p.total++
	if a.State != search.Escaped {
		p.densities = append(p.densities, a.Density)
		if len(p.densities) > historyCapacity {
			p.densities = p.densities[len(p.densities)-historyCapacity:]
		}
	}
}

// Snapshot returns a copy of the counters.
func (p *Progress) Snapshot() (counts map[search.State]int, total int, densities []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	counts = make(map[search.State]int, len(p.counts))
	for k, v := range p.counts {
		counts[k] = v
	}
	return counts, p.total, append([]float64(nil), p.densities...)
}

type Options struct {
	Title       string
	Theme       string
	MaxPoints   int
	MaxAttempts int
}

type TickMsg time.Time

// ResultMsg carries the outcome of the search.
type ResultMsg struct {
	Result *search.Result
	Err    error
}

// Model is the bubbletea model of the viewer: a progress screen while the
// search runs, then a rotatable Braille rendering of the accepted cloud.
type Model struct {
	run      SearchFunc
	ctx      context.Context
	cancel   context.CancelFunc
	progress *Progress
	opts     Options

	result *search.Result
	err    error

	planes [][3]int
	plane  int
	cloud  *Cloud

	canvas     *Canvas
	camera     *Camera
	theme      int
	autoRotate bool
	frame      int
	started    time.Time
	elapsed    time.Duration
	width      int
	height     int
}

func NewModel(run SearchFunc, opts Options) Model {
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = defaultPoints
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		run:        run,
		ctx:        ctx,
		cancel:     cancel,
		progress:   NewProgress(),
		opts:       opts,
		canvas:     NewCanvas(60, 24),
		camera:     NewCamera(),
		theme:      themeIndex(opts.Theme),
		autoRotate: true,
		started:    time.Now(),
		width:      120,
		height:     32,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/20, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	run, ctx, progress := m.run, m.ctx, m.progress
	return tea.Batch(tick(), func() tea.Msg {
		res, err := run(ctx, progress)
		return ResultMsg{Result: res, Err: err}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.canvas.Resize(max(10, m.width-statsWidth-8), max(6, m.height-4))
		return m, nil
	case TickMsg:
		m.frame++
		if m.cloud != nil && m.autoRotate {
			m.camera.RotateY(rotateStep / 4)
		}
		return m, tick()
	case ResultMsg:
		m.elapsed = time.Since(m.started)
		m.result, m.err = msg.Result, msg.Err
		if m.result != nil {
			m.planes = raster.Planes(m.result.Trajectory.Dim)
			m.plane = 0
			m.loadCloud()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) loadCloud() {
	cloud, err := NewCloud(m.result.Trajectory, m.planes[m.plane], m.opts.MaxPoints)
	if err != nil {
		m.err = err
		m.cloud = nil
		return
	}
	m.cloud = cloud
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.cancel()
		return m, tea.Quit
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	}

	if m.cloud == nil {
		return m, nil
	}

	switch msg.String() {
	case "left", "h":
		m.camera.RotateY(-rotateStep)
	case "right", "l":
		m.camera.RotateY(rotateStep)
	case "up", "k":
		m.camera.RotateX(-rotateStep)
	case "down", "j":
		m.camera.RotateX(rotateStep)
	case "+", "=":
		m.camera.ZoomIn()
	case "-":
		m.camera.ZoomOut()
	case "r":
		m.camera.Reset()
	case " ", "space":
		m.autoRotate = !m.autoRotate
	case "a", "tab":
		m.plane = (m.plane + 1) % len(m.planes)
		m.loadCloud()
	}
	return m, nil
}

// Result is the accepted attractor, nil until the search finishes.
func (m Model) Result() (*search.Result, error) {
	return m.result, m.err
}

func (m Model) View() string {
	theme := Themes[m.theme]
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)

	var left string
	switch {
	case m.cloud != nil:
		m.cloud.Draw(m.canvas, m.camera)
		left = canvasStyle.Render(m.canvas.Render(theme))
	case m.err != nil:
		left = canvasStyle.Render(theme.style(theme.Error).Render("search failed: " + m.err.Error()))
	default:
		left = canvasStyle.Render(fmt.Sprintf("%s searching for a strange attractor…",
			theme.style(theme.Primary).Render(AnimatedSpinner(m.frame))))
	}

	var s strings.Builder
	name := m.opts.Title
	if name == "" {
		name = "ATTRACTOR"
	}
	s.WriteString(title.Render(strings.ToUpper(name)) + "\n\n")
	s.WriteString(m.statsView(theme))

	s.WriteString(helpStyle.Render("←→↑↓ rotate  +/- zoom  a axes\nspace spin  r reset  t theme  q quit"))
	stats := panelStyle.Width(statsWidth).Render(s.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, stats)
}

func (m Model) statsView(theme Theme) string {
	value := theme.style(theme.Text)
	row := func(label, v string) string {
		return labelStyle.Render(label) + value.Render(v) + "\n"
	}

	counts, total, densities := m.progress.Snapshot()
	var s strings.Builder
	s.WriteString(row("Attempts", fmt.Sprintf("%d", total)))
	for _, st := range []search.State{search.Escaped, search.Sparse, search.Periodic} {
		if counts[st] > 0 {
			s.WriteString(row("  "+st.String(), fmt.Sprintf("%d", counts[st])))
		}
	}
	if m.opts.MaxAttempts > 0 && m.result == nil {
		s.WriteString(ProgressBar(theme, float64(total)/float64(m.opts.MaxAttempts), 30) + "\n")
	}
	if len(densities) > 1 {
		s.WriteString("\n" + asciigraph.Plot(densities,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.Caption("density per attempt")) + "\n")
		s.WriteString(SparklineChart(theme, densities, 30) + "\n")
	}

	if r := m.result; r != nil {
		s.WriteString("\n")
		s.WriteString(row("Seed", ""))
		s.WriteString(theme.style(theme.Primary).Render(wrap(r.Seed, statsWidth-6)) + "\n")
		s.WriteString(row("Density", fmt.Sprintf("%.3f", r.Density)))
		if r.Lyapunov != 0 {
			s.WriteString(row("Lyapunov", fmt.Sprintf("%.4f", r.Lyapunov)))
		}
		s.WriteString(row("Points", fmt.Sprintf("%d", r.Trajectory.Len())))
		s.WriteString(row("Axes", fmt.Sprintf("%v", m.planes[m.plane])))
		s.WriteString(row("Elapsed", m.elapsed.Round(time.Millisecond).String()))
	}
	s.WriteString(row("Theme", theme.Name))
	return s.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width] + "\n")
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

// Run shows the viewer until the user quits and returns whatever the search
// produced.
func Run(run SearchFunc, opts Options) (*search.Result, error) {
	p := tea.NewProgram(NewModel(run, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(Model)
	m.cancel()
	return m.Result()
}
