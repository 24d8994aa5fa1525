// Package ebitenhost runs a glitter.Manager inside an [Ebitengine] game loop.
//
// Each ebiten Update is one simulation tick. Each Draw renders the manager
// into a DrawList, interpolating by the time elapsed since the last tick,
// and submits it with DrawTriangles32. View space is projected
// orthographically: the camera looks at the screen centre and Scale pixels
// span one world unit.
//
//	m := glitter.NewManager()
//	m.Add(system)
//	err := ebitenhost.Run(m, ebitenhost.Options{Title: "Sparks"})
//
// F3 toggles the debug overlay, F5 reloads sprites and F12 saves a
// screenshot.
//
// [Ebitengine]: https://ebitengine.org
package ebitenhost

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/glitter"
	"go.uber.org/zap"
)

// Options configures a Host.
type Options struct {
	Title  string
	Width  int
	Height int
	// TPS is the simulation rate. Defaults to 20.
	TPS int
	// Scale is pixels per world unit. Defaults to 32.
	Scale      float64
	ClearColor glitter.Color
	// ShowDebug starts with the debug overlay visible.
	ShowDebug bool
	// PauseWhenUnfocused stops ticking while the window is in the background.
	PauseWhenUnfocused bool
	// ScreenshotDir receives screenshots. Defaults to "screenshots".
	ScreenshotDir string
	Logger        *zap.Logger
}

func (o *Options) defaults() {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.TPS <= 0 {
		o.TPS = 20
	}
	if o.Scale <= 0 {
		o.Scale = 32
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = "screenshots"
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// OptionsFromConfig fills the simulation fields of Options from cfg.
func OptionsFromConfig(cfg glitter.Config, title string) Options {
	return Options{Title: title, TPS: cfg.TPS, ShowDebug: cfg.Debug}
}

// Host is an ebiten.Game driving a glitter.Manager.
type Host struct {
	// Camera is handed to render modules each frame.
	Camera glitter.Camera
	// Sprites, when set, is invalidated before a reload.
	Sprites *Sprites
	// OnTick runs before every manager tick; use it to spawn particles.
	// A returned error stops the game.
	OnTick func() error

	manager *glitter.Manager
	opts    Options
	ctx     *glitter.RenderContext
	batch   batcher

	lastTick    time.Time
	period      time.Duration
	screenshots []string
}

var _ ebiten.Game = (*Host)(nil)

// New returns a host for m.
func New(m *glitter.Manager, opts Options) *Host {
	opts.defaults()
	return &Host{
		manager: m,
		opts:    opts,
		ctx:     glitter.NewRenderContext(),
		period:  time.Second / time.Duration(opts.TPS),
	}
}

// Manager returns the driven manager.
func (h *Host) Manager() *glitter.Manager { return h.manager }

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		h.opts.ShowDebug = !h.opts.ShowDebug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		h.Reload()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		h.Screenshot(h.opts.Title)
	}

	h.manager.Paused = h.opts.PauseWhenUnfocused && !ebiten.IsFocused()
	if h.manager.Paused {
		return nil
	}
	if h.OnTick != nil {
		if err := h.OnTick(); err != nil {
			return err
		}
	}
	h.manager.Tick()
	h.lastTick = time.Now()
	return nil
}

// Reload invalidates loaded sprites and runs the manager's two-phase reload.
// Failures are logged; systems keep their previous sprites.
func (h *Host) Reload() {
	if h.Sprites != nil {
		h.Sprites.Invalidate()
	}
	if err := h.manager.PrepareReload(); err != nil {
		h.opts.Logger.Warn("prepare reload failed", zap.Error(err))
	}
	if err := h.manager.ApplyReload(); err != nil {
		h.opts.Logger.Warn("apply reload failed", zap.Error(err))
	}
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	c := h.opts.ClearColor
	if c.A > 0 {
		p := c.Premultiplied()
		screen.Fill(color.RGBA64{
			R: uint16(p.R * 0xffff),
			G: uint16(p.G * 0xffff),
			B: uint16(p.B * 0xffff),
			A: uint16(p.A * 0xffff),
		})
	}

	h.ctx.Camera = h.Camera
	h.ctx.PartialTick = partialTick(time.Since(h.lastTick), h.period)
	h.ctx.Draw.Reset()
	h.manager.Render(h.ctx)

	bounds := screen.Bounds()
	h.batch.begin(projection{
		cx:    float64(bounds.Dx()) / 2,
		cy:    float64(bounds.Dy()) / 2,
		scale: h.opts.Scale,
	})
	h.batch.drawList(screen, h.ctx.Draw)
	h.flushScreenshots(screen)

	if h.opts.ShowDebug {
		ebitenutil.DebugPrint(screen, h.debugText())
	}
}

func (h *Host) debugText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FPS: %.1f\nTPS: %.1f\ndraw calls: %d\n", ebiten.ActualFPS(), ebiten.ActualTPS(), h.batch.calls)
	for _, line := range h.manager.DebugLines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Layout implements ebiten.Game.
func (h *Host) Layout(_, _ int) (int, int) {
	return h.opts.Width, h.opts.Height
}

// partialTick returns how far a frame lies between ticks, in [0, 1).
func partialTick(since, period time.Duration) float64 {
	if period <= 0 || since <= 0 {
		return 0
	}
	f := float64(since) / float64(period)
	if f >= 1 {
		return math.Nextafter(1, 0)
	}
	return f
}

// Run opens a window and drives m until the window closes.
func Run(m *glitter.Manager, opts Options) error {
	h := New(m, opts)
	return RunHost(h)
}

// RunHost is Run for a preconfigured Host.
func RunHost(h *Host) error {
	ebiten.SetWindowTitle(h.opts.Title)
	ebiten.SetWindowSize(h.opts.Width, h.opts.Height)
	ebiten.SetTPS(h.opts.TPS)
	h.opts.Logger.Info("starting host",
		zap.String("title", h.opts.Title),
		zap.Int("tps", h.opts.TPS),
		zap.Int("systems", len(h.manager.Systems())),
	)
	return ebiten.RunGame(h)
}
