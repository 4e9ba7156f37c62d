package viz

import (
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/wavescope/internal/signal"
)

const (
	defaultFPS  = 15
	maxFPS      = 120
	graphWidth  = 32
	graphHeight = 6
	panelWidth  = 44
	minCols     = 20
)

// FrameSource is the animation being played.
type FrameSource interface {
	FrameCount() int
	Frame(n int) (*image.RGBA, error)
	Title(n int) string
	Step(n int) int
}

type releaser interface {
	Release(img *image.RGBA)
}

type TickMsg time.Time

// Player plays frames of a FrameSource in the terminal. Playback stops on
// the last frame.
type Player struct {
	src    FrameSource
	trace  []float64
	frame  int
	paused bool
	fps    int
	theme  int
	cols   int
	view   string
	err    error
}

// NewPlayer starts at frame 0. trace is the pulse-echo signal indexed by
// time step and may be nil.
func NewPlayer(src FrameSource, trace []float64, cols int) Player {
	if cols < minCols {
		cols = minCols
	}
	p := Player{src: src, trace: trace, fps: defaultFPS, cols: cols}
	p.render()
	return p
}

// WithTheme switches the chrome to the named theme.
func (p Player) WithTheme(name string) (Player, error) {
	if _, err := GetTheme(name); err != nil {
		return p, err
	}
	p.theme = themeIndex(name)
	p.render()
	return p, nil
}

func (p Player) Frame() int   { return p.frame }
func (p Player) Paused() bool { return p.paused }
func (p Player) FPS() int     { return p.fps }
func (p Player) Theme() Theme { return Themes[p.theme] }

// Err is the rendering error that stopped the player, if any.
func (p Player) Err() error { return p.err }

func (p Player) atEnd() bool { return p.frame >= p.src.FrameCount()-1 }

func (p Player) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(p.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p Player) Init() tea.Cmd {
	return p.tick()
}

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case " ":
			p.paused = !p.paused
		case "[":
			p.paused = true
			p.seek(p.frame - 1)
		case "]":
			p.paused = true
			p.seek(p.frame + 1)
		case "+", "=":
			if p.fps *= 2; p.fps > maxFPS {
				p.fps = maxFPS
			}
		case "-", "_":
			if p.fps /= 2; p.fps < 1 {
				p.fps = 1
			}
		case "r":
			p.paused = false
			p.seek(0)
		case "t":
			p.theme = (p.theme + 1) % len(Themes)
		}
		if p.err != nil {
			return p, tea.Quit
		}
	case tea.WindowSizeMsg:
		cols := msg.Width - panelWidth
		if cols < minCols {
			cols = minCols
		}
		if cols != p.cols {
			p.cols = cols
			p.render()
		}
	case TickMsg:
		if !p.paused && !p.atEnd() {
			p.seek(p.frame + 1)
		}
		if p.err != nil {
			return p, tea.Quit
		}
		return p, p.tick()
	}
	return p, nil
}

func (p *Player) seek(n int) {
	if n < 0 {
		n = 0
	}
	if last := p.src.FrameCount() - 1; n > last {
		n = last
	}
	if n == p.frame && p.view != "" {
		return
	}
	p.frame = n
	p.render()
}

func (p *Player) render() {
	img, err := p.src.Frame(p.frame)
	if err != nil {
		p.err = err
		return
	}
	p.view = Preview(img, p.cols)
	if r, ok := p.src.(releaser); ok {
		r.Release(img)
	}
}

func (p Player) status() string {
	switch {
	case p.atEnd():
		return "END"
	case p.paused:
		return "PAUSED"
	}
	return "PLAYING"
}

func (p Player) View() string {
	st := Themes[p.theme].styles()
	n := p.src.FrameCount()

	var s strings.Builder
	s.WriteString(st.title.Render(p.src.Title(p.frame)) + "\n")
	status := p.status()
	if status == "PLAYING" {
		s.WriteString(st.value.Render(status) + "\n\n")
	} else {
		s.WriteString(st.paused.Render(status) + "\n\n")
	}
	s.WriteString(st.label.Render("Frame") + st.value.Render(fmt.Sprintf("%d / %d", p.frame+1, n)) + "\n")
	s.WriteString(st.label.Render("Step") + st.value.Render(fmt.Sprintf("%d", p.src.Step(p.frame))) + "\n")
	s.WriteString(st.label.Render("Speed") + st.value.Render(fmt.Sprintf("%d fps", p.fps)) + "\n")
	s.WriteString(ProgressBar(float64(p.frame+1)/float64(n), graphWidth) + "\n")

	if k := p.src.Step(p.frame) + 1; len(p.trace) > 1 && k > 1 {
		if k > len(p.trace) {
			k = len(p.trace)
		}
		chart := signal.Plot(p.trace[:k], "pulse-echo signal", graphWidth, graphHeight)
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.muted.Render("\nSP:Pause [ ]:Step +/-:Speed\nR:Restart T:Theme Q:Quit"))
	return lipgloss.JoinHorizontal(lipgloss.Top, p.view, st.panel.Render(s.String()))
}

// ProgressBar renders a filled bar for a fraction in [0, 1].
func ProgressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
