package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/config"
	"github.com/matzehuels/mindcanvas/pkg/core/input"
	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/render"
	"github.com/matzehuels/mindcanvas/pkg/render/grid"
	"github.com/matzehuels/mindcanvas/pkg/render/svg"
)

// panStep is the screen distance of one arrow key press.
const panStep = 4 * grid.DefaultCellWidth

// Node colors by depth, cycling for deep trees.
var levelColors = []lipgloss.Color{colorCyan, colorBlue, colorGreen, colorYellow, colorGray}

var styleHelp = lipgloss.NewStyle().Foreground(colorDim)

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "view [tree.json|tree.yaml]",
		Short: "Explore a tree in the terminal",
		Long: `Open a tree in an interactive terminal viewer.

Drag the empty canvas to pan. In free-drag mode nodes can be dragged too. The wheel and
+/- zoom, f frames the root, a fits the whole tree and 0 resets the view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "layout mode: tree, free-drag (default from config)")
	return cmd
}

func (c *CLI) runView(ctx context.Context, path, mode string) error {
	cfg := *c.Config
	if mode != "" {
		if _, ok := layout.ParseMode(mode); !ok {
			return fmt.Errorf("invalid mode %q: must be tree or free-drag", mode)
		}
		cfg.Layout.Mode = mode
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	root, err := runner.Load(ctx, path)
	if err != nil {
		return err
	}
	tree, _, _ := runner.Prepare(root)

	// The alternate screen owns the terminal, so the settler stays quiet.
	v := newViewer(&cfg, tree, filepath.Base(path), log.New(io.Discard))
	defer v.Close()

	p := tea.NewProgram(v, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// viewer - interactive terminal model
// =============================================================================

// frameMsg carries a frame published by the settler's resize timer.
type frameMsg settle.Frame

// viewer is the bubbletea model behind the view command. It owns a settler
// that measures each estimated generation against the SVG label metrics,
// and a viewport controller fed from terminal mouse events.
type viewer struct {
	settler  *settle.Settler
	measurer *svg.Measurer
	ctrl     *viewport.Controller
	norm     *input.Normalizer
	frames   chan settle.Frame

	frame      settle.Frame
	title      string
	cols, rows int
}

func newViewer(cfg *config.Config, tree *mindmap.Node, title string, logger *log.Logger) *viewer {
	engine := cfg.NewEngine()
	v := &viewer{
		measurer: svg.NewMeasurer(cfg.Estimator()),
		norm:     cfg.NewNormalizer(),
		frames:   make(chan settle.Frame, 1),
		title:    title,
		cols:     80,
		rows:     23,
	}
	opts := append(cfg.SettleOptions(), settle.WithLogger(logger), settle.WithOnEstimate(v.publish))
	v.settler = settle.New(engine, opts...)
	v.ctrl = cfg.NewController(viewport.WithOnNodeDrag(v.drag))
	v.accept(v.settler.Load(tree, v.canvas()))
	// Load already published the frame just accepted.
	select {
	case <-v.frames:
	default:
	}
	return v
}

// Close stops the settler.
func (v *viewer) Close() { v.settler.Close() }

// publish hands a frame to the event loop, replacing one not yet consumed.
func (v *viewer) publish(f settle.Frame) {
	for {
		select {
		case v.frames <- f:
			return
		default:
		}
		select {
		case <-v.frames:
		default:
		}
	}
}

func (v *viewer) waitFrame() tea.Cmd {
	return func() tea.Msg { return frameMsg(<-v.frames) }
}

// accept adopts a frame unless it is older than the one shown, and
// measures it when it is only estimated.
func (v *viewer) accept(f settle.Frame) {
	if f.Generation < v.frame.Generation {
		return
	}
	if f.Generation == v.frame.Generation && v.frame.Phase == settle.PhaseMeasured && f.Phase != settle.PhaseMeasured {
		return
	}
	v.frame = f
	if f.Phase == settle.PhaseEstimated && f.Root != nil {
		if m, ok := v.settler.Rendered(v.measurer.Measure(f.Root)); ok {
			v.frame = m
		}
	}
}

func (v *viewer) drag(id string, dx, dy float64) {
	if f, ok := v.settler.Drag(id, dx, dy); ok {
		v.frame = f
	}
}

// canvas is the pixel size of the drawing area.
func (v *viewer) canvas() geom.Size {
	return geom.Size{
		Width:  float64(v.cols) * grid.DefaultCellWidth,
		Height: float64(v.rows) * grid.DefaultCellHeight,
	}
}

func (v *viewer) Init() tea.Cmd {
	return v.waitFrame()
}

func (v *viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		v.accept(settle.Frame(msg))
		return v, v.waitFrame()

	case tea.WindowSizeMsg:
		v.cols = max(1, msg.Width)
		v.rows = max(1, msg.Height-1)
		v.settler.Resize(v.canvas())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return v, tea.Quit
		case "+", "=":
			v.ctrl.ZoomIn()
		case "-", "_":
			v.ctrl.ZoomOut()
		case "f":
			if box, ok := v.frame.RootBox(); ok {
				v.ctrl.FitToFrame(box, v.canvas())
			}
		case "a":
			if box, ok := layout.Bounds(v.frame.Positions, v.frame.Sizes); ok {
				v.ctrl.FitAll(box, v.canvas())
			}
		case "0":
			v.norm.Reset()
			v.ctrl.Reset()
		case "left", "h":
			v.ctrl.PanBy(panStep, 0)
		case "right", "l":
			v.ctrl.PanBy(-panStep, 0)
		case "up", "k":
			v.ctrl.PanBy(0, panStep)
		case "down", "j":
			v.ctrl.PanBy(0, -panStep)
		}

	case tea.MouseMsg:
		v.mouse(msg)
	}
	return v, nil
}

// mouse feeds a terminal mouse event through the normalizer. Cell
// coordinates become the screen pixel at the cell center.
func (v *viewer) mouse(msg tea.MouseMsg) {
	p := geom.Point{
		X: (float64(msg.X) + 0.5) * grid.DefaultCellWidth,
		Y: (float64(msg.Y) + 0.5) * grid.DefaultCellHeight,
	}

	var events []input.Event
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		events = v.norm.Wheel(input.WheelEvent{X: p.X, Y: p.Y, DeltaY: -1, Ctrl: msg.Ctrl})
	case msg.Button == tea.MouseButtonWheelDown:
		events = v.norm.Wheel(input.WheelEvent{X: p.X, Y: p.Y, DeltaY: 1, Ctrl: msg.Ctrl})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		events = v.norm.Mouse(input.MouseEvent{Kind: input.MouseDown, X: p.X, Y: p.Y, Target: v.target(p)})
	case msg.Action == tea.MouseActionMotion:
		events = v.norm.Mouse(input.MouseEvent{Kind: input.MouseMove, X: p.X, Y: p.Y})
	case msg.Action == tea.MouseActionRelease:
		// Terminals do not always report which button was released.
		events = v.norm.Mouse(input.MouseEvent{Kind: input.MouseUp, X: p.X, Y: p.Y})
	}
	for _, ev := range events {
		v.ctrl.Handle(ev)
	}
}

// target hit-tests a screen point. A press on a node grabs it instead of
// panning; only free-drag mode lets it move.
func (v *viewer) target(p geom.Point) input.Target {
	if id, ok := layout.NodeAt(v.frame.Positions, v.frame.Sizes, v.ctrl.ScreenToCanvas(p)); ok {
		return input.Node(id)
	}
	return input.Canvas()
}

func (v *viewer) View() string {
	g := grid.Rasterize(render.FromFrame(v.frame), v.ctrl.State(), v.cols, v.rows)

	var b strings.Builder
	for y := range v.rows {
		b.WriteString(renderRow(g, y))
		b.WriteByte('\n')
	}
	b.WriteString(v.statusLine())
	return b.String()
}

// renderRow styles one grid row, grouping runs of cells that share a style.
func renderRow(g *grid.Grid, y int) string {
	cols, _ := g.Size()
	var (
		out  strings.Builder
		run  strings.Builder
		curr *lipgloss.Style
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if curr == nil {
			out.WriteString(run.String())
		} else {
			out.WriteString(curr.Render(run.String()))
		}
		run.Reset()
	}
	for x := range cols {
		c := g.At(x, y)
		if c.Rune == 0 {
			continue
		}
		s := cellStyle(c)
		if s != curr {
			flush()
			curr = s
		}
		run.WriteRune(c.Rune)
	}
	flush()
	return out.String()
}

var (
	levelStyles = func() []lipgloss.Style {
		out := make([]lipgloss.Style, len(levelColors))
		for i, c := range levelColors {
			out[i] = lipgloss.NewStyle().Foreground(c)
		}
		out[0] = out[0].Bold(true)
		return out
	}()
	connectorStyle = lipgloss.NewStyle().Foreground(colorDim)
)

func cellStyle(c grid.Cell) *lipgloss.Style {
	switch c.Kind {
	case grid.KindConnector:
		return &connectorStyle
	case grid.KindBorder, grid.KindText:
		return &levelStyles[c.Level%len(levelStyles)]
	}
	return nil
}

func (v *viewer) statusLine() string {
	state := v.ctrl.State()
	parts := []string{
		StyleTitle.Render(v.title),
		StyleDim.Render(v.frame.Phase.String()),
		StyleValue.Render(fmt.Sprintf("%.0f%%", state.Zoom*100)),
		StyleDim.Render(v.ctrl.Gesture().String()),
	}
	if n := len(v.frame.Dropped); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d pending", n)))
	}
	help := styleHelp.Render("+/- zoom  f frame  a all  0 reset  arrows pan  q quit")
	return strings.Join(parts, StyleDim.Render(" · ")) + "  " + help
}
