package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type stripes struct {
	n        int
	failAt   int
	released int
}

func (s *stripes) FrameCount() int    { return s.n }
func (s *stripes) Title(n int) string { return fmt.Sprintf("frame %d", n) }
func (s *stripes) Step(n int) int     { return 2 * n }

func (s *stripes) Frame(n int) (*image.RGBA, error) {
	if n == s.failAt {
		return nil, errors.New("render failed")
	}
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(n * 10), uint8(y * 10), 0, 255})
		}
	}
	return img, nil
}

func (s *stripes) Release(*image.RGBA) { s.released++ }

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(p Player, msgs ...tea.Msg) (Player, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var m tea.Model
		m, cmd = p.Update(msg)
		p = m.(Player)
	}
	return p, cmd
}

func tick() tea.Msg { return TickMsg(time.Now()) }

func TestPlayerStopsAtLastFrame(t *testing.T) {
	src := &stripes{n: 3, failAt: -1}
	p := NewPlayer(src, nil, 20)

	p, _ = send(p, tick(), tick(), tick(), tick(), tick())
	if p.Frame() != 2 {
		t.Errorf("expected to stop on frame 2, got %d", p.Frame())
	}
	if p.status() != "END" {
		t.Errorf("expected END, got %s", p.status())
	}
	if src.released != 3 {
		t.Errorf("expected 3 released frames, got %d", src.released)
	}
}

func TestPlayerKeys(t *testing.T) {
	p := NewPlayer(&stripes{n: 10, failAt: -1}, nil, 20)

	p, _ = send(p, key(" "), tick())
	if !p.Paused() || p.Frame() != 0 {
		t.Errorf("paused player advanced to %d", p.Frame())
	}

	p, _ = send(p, key("]"), key("]"), key("["))
	if p.Frame() != 1 {
		t.Errorf("expected frame 1 after stepping, got %d", p.Frame())
	}

	p, _ = send(p, key("["), key("["))
	if p.Frame() != 0 {
		t.Errorf("expected to clamp at frame 0, got %d", p.Frame())
	}

	p, _ = send(p, key("+"))
	if p.FPS() != 2*defaultFPS {
		t.Errorf("expected %d fps, got %d", 2*defaultFPS, p.FPS())
	}
	for i := 0; i < 10; i++ {
		p, _ = send(p, key("-"))
	}
	if p.FPS() != 1 {
		t.Errorf("expected fps to bottom out at 1, got %d", p.FPS())
	}

	p, _ = send(p, key("]"), key("]"), key("r"))
	if p.Frame() != 0 || p.Paused() {
		t.Errorf("restart should rewind and play, got frame %d paused %v", p.Frame(), p.Paused())
	}

	name := p.Theme().Name
	p, _ = send(p, key("t"))
	if p.Theme().Name == name {
		t.Error("theme did not change")
	}
}

func TestPlayerWithTheme(t *testing.T) {
	p := NewPlayer(&stripes{n: 2, failAt: -1}, nil, 20)
	p, err := p.WithTheme("paper")
	if err != nil {
		t.Fatal(err)
	}
	if p.Theme() != ThemePaper {
		t.Errorf("expected paper theme, got %s", p.Theme().Name)
	}

	if _, err := p.WithTheme("neon"); err == nil || !strings.Contains(err.Error(), "sonar") {
		t.Errorf("expected error listing the themes, got %v", err)
	}
	if names := ThemeNames(); len(names) != len(Themes) || names[0] != "sonar" {
		t.Errorf("unexpected theme names %v", names)
	}
}

func TestPlayerQuit(t *testing.T) {
	p := NewPlayer(&stripes{n: 2, failAt: -1}, nil, 20)
	_, cmd := send(p, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestPlayerRenderError(t *testing.T) {
	p := NewPlayer(&stripes{n: 4, failAt: 1}, nil, 20)
	p, cmd := send(p, tick())
	if p.Err() == nil {
		t.Fatal("expected render error")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected player to quit on error")
	}
}

func TestPlayerView(t *testing.T) {
	trace := []float64{0, 1, 0, -1, 0, 1, 0, -1}
	p := NewPlayer(&stripes{n: 4, failAt: -1}, trace, 20)
	p, _ = send(p, tick(), tick())

	view := p.View()
	for _, want := range []string{"frame 2", "3 / 4", "PLAYING", "pulse-echo signal", halfBlock} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPreviewSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	out := Preview(img, 20)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(lines))
	}
	if n := strings.Count(lines[0], halfBlock); n != 20 {
		t.Errorf("expected 20 cells, got %d", n)
	}

	if Preview(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10) != "" {
		t.Error("expected empty preview for empty image")
	}
}

func TestPreviewOddHeight(t *testing.T) {
	out := Preview(image.NewRGBA(image.Rect(0, 0, 4, 3)), 0)
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}
}

func TestColorHex(t *testing.T) {
	if got := colorHex(color.RGBA{255, 16, 1, 255}); got != "#ff1001" {
		t.Errorf("expected #ff1001, got %s", got)
	}
}

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("dot (%d, %d) not set", i, i)
		}
	}
	if c.IsSet(7, 0) {
		t.Error("unexpected dot at (7, 0)")
	}
	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("canvas not cleared")
	}
}

func TestCanvasBoundaries(t *testing.T) {
	labels := make([][]int, 8)
	for y := range labels {
		labels[y] = make([]int, 8)
		for x := range labels[y] {
			if y >= 4 {
				labels[y][x] = 1
			}
		}
	}
	c := NewCanvas(4, 2)
	c.DrawBoundaries(labels)
	for x := 0; x < 8; x++ {
		if !c.IsSet(x, 3) {
			t.Errorf("expected boundary dot at (%d, 3)", x)
		}
		if c.IsSet(x, 0) || c.IsSet(x, 6) {
			t.Errorf("unexpected dot in column %d", x)
		}
	}
}

func TestGridMapper(t *testing.T) {
	c := NewCanvas(10, 5)
	m := c.Mapper(40, 40)
	x, y := m.Dot(0, 0)
	if x != 0 || y != 0 {
		t.Errorf("expected (0, 0), got (%d, %d)", x, y)
	}
	x, y = m.Dot(39, 39)
	if x != 19 || y != 19 {
		t.Errorf("expected (19, 19), got (%d, %d)", x, y)
	}
}
