package settle

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/route"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/observability"
)

// Resize debounce bounds.
const (
	DefaultDebounce = 250 * time.Millisecond
	MinDebounce     = 100 * time.Millisecond
	MaxDebounce     = 500 * time.Millisecond
)

// Phase is the settling state of the current layout generation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEstimated
	PhaseSettling
	PhaseMeasured
)

func (p Phase) String() string {
	switch p {
	case PhaseEstimated:
		return "estimated"
	case PhaseSettling:
		return "settling"
	case PhaseMeasured:
		return "measured"
	default:
		return "idle"
	}
}

// Frame is a consistent snapshot of one layout generation.
type Frame struct {
	Generation  uint64
	Phase       Phase
	Root        *mindmap.Node
	Canvas      geom.Size
	Positions   layout.Positions
	Sizes       layout.Sizes
	Connections []route.Connection
	Dropped     []*errors.Error
	Issues      []*errors.Error
}

// RootBox returns the canvas box of the root node.
func (f Frame) RootBox() (geom.Box, bool) {
	if f.Root == nil {
		return geom.Box{}, false
	}
	return f.Positions.Box(f.Root.ID, f.Sizes)
}

// Option configures a Settler.
type Option func(*Settler)

// WithLogger sets the logger (default: discard).
func WithLogger(l *log.Logger) Option {
	return func(s *Settler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDebounce sets the resize debounce, clamped to [MinDebounce, MaxDebounce].
func WithDebounce(d time.Duration) Option {
	return func(s *Settler) { s.debounce = min(MaxDebounce, max(MinDebounce, d)) }
}

// WithOnEstimate registers a callback for phase A frames.
func WithOnEstimate(fn func(Frame)) Option {
	return func(s *Settler) { s.onEstimate = fn }
}

// WithOnMeasured registers a callback for phase B frames.
func WithOnMeasured(fn func(Frame)) Option {
	return func(s *Settler) { s.onMeasured = fn }
}

// WithRouter sets the connection router (default [route.New]).
func WithRouter(r *route.Router) Option {
	return func(s *Settler) {
		if r != nil {
			s.router = r
		}
	}
}

// Settler owns the current tree, its layout and its connectors.
// It is safe for concurrent use.
type Settler struct {
	engine     *layout.Engine
	router     *route.Router
	logger     *log.Logger
	debounce   time.Duration
	onEstimate func(Frame)
	onMeasured func(Frame)

	mu        sync.Mutex
	phase     Phase
	gen       uint64
	moves     uint64
	input     *mindmap.Node
	root      *mindmap.Node
	canvas    geom.Size
	positions layout.Positions
	estimated layout.Sizes
	sizes     layout.Sizes
	conns     []route.Connection
	dropped   []*errors.Error
	issues    []*errors.Error
	geometry  route.GeometryProvider
	measured  chan struct{}
	changed   chan struct{}
	timer     *time.Timer
	pending   geom.Size
	resizeSeq uint64
	closed    bool
}

// New creates a Settler around a layout engine.
func New(engine *layout.Engine, opts ...Option) *Settler {
	if engine == nil {
		engine = layout.New()
	}
	s := &Settler{
		engine:   engine,
		router:   route.New(),
		logger:   log.New(io.Discard),
		debounce: DefaultDebounce,
		measured: make(chan struct{}),
		changed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current phase.
func (s *Settler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Frame returns a snapshot of the current generation.
func (s *Settler) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

// Measured returns a channel that is closed once the current generation
// reaches PhaseMeasured. A generation superseded before it settles never
// closes its channel; use [Settler.Wait] to follow the latest generation.
func (s *Settler) Measured() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.measured
}

// Load replaces the tree and canvas, lays out from scratch and publishes a
// phase A frame. Malformed nodes are repaired and reported in Frame.Issues.
func (s *Settler) Load(root *mindmap.Node, canvas geom.Size) Frame {
	norm, issues := mindmap.Normalize(root)
	for _, is := range issues {
		s.logger.Warn("repaired tree", "issue", is.Message)
	}

	s.mu.Lock()
	if s.closed {
		f := s.frameLocked()
		s.mu.Unlock()
		return f
	}
	s.input = root
	s.root = norm
	s.canvas = canvas
	s.issues = issues
	s.relayoutLocked()
	f := s.frameLocked()
	s.mu.Unlock()

	s.publishEstimate(f)
	return f
}

// Update replaces the tree and lays it out again. Passing the tree already
// held is a no-op that returns the current frame. Drag offsets survive.
func (s *Settler) Update(root *mindmap.Node) Frame {
	norm, issues := mindmap.Normalize(root)
	for _, is := range issues {
		s.logger.Warn("repaired tree", "issue", is.Message)
	}

	s.mu.Lock()
	if s.closed {
		f := s.frameLocked()
		s.mu.Unlock()
		return f
	}
	if s.phase == PhaseIdle {
		canvas := s.canvas
		s.mu.Unlock()
		return s.Load(root, canvas)
	}
	if !layout.NeedsRelayout(s.input, root, s.canvas, s.canvas) {
		f := s.frameLocked()
		s.mu.Unlock()
		return f
	}
	s.input = root
	s.root = norm
	s.issues = issues
	s.relayoutLocked()
	f := s.frameLocked()
	s.mu.Unlock()

	s.publishEstimate(f)
	return f
}

// Resize schedules a full layout at the new canvas size after the debounce
// interval. Calling Resize again before it fires replaces the pending size.
func (s *Settler) Resize(canvas geom.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = canvas
	s.resizeSeq++
	if s.timer != nil && s.timer.Stop() {
		observability.Settle().OnResizeSuperseded(context.Background())
		s.logger.Debug("resize superseded", "width", canvas.Width, "height", canvas.Height)
	}
	seq := s.resizeSeq
	s.timer = time.AfterFunc(s.debounce, func() { s.fireResize(seq) })
}

func (s *Settler) fireResize(seq uint64) {
	s.mu.Lock()
	if s.closed || seq != s.resizeSeq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	canvas := s.pending
	if canvas == s.canvas && s.phase != PhaseIdle {
		s.mu.Unlock()
		return
	}
	s.canvas = canvas
	if s.root == nil {
		s.mu.Unlock()
		return
	}
	s.logger.Debug("resize relayout", "width", canvas.Width, "height", canvas.Height)
	s.relayoutLocked()
	f := s.frameLocked()
	s.mu.Unlock()

	s.publishEstimate(f)
}

// Rendered signals that the host painted the current generation and can
// report true node geometry. It routes phase B and publishes the measured
// frame. It reports false when there is nothing to settle or the generation
// was superseded while routing.
func (s *Settler) Rendered(geometry route.GeometryProvider) (Frame, bool) {
	if geometry == nil {
		return s.Frame(), false
	}

	s.mu.Lock()
	if s.closed || s.phase == PhaseIdle {
		f := s.frameLocked()
		s.mu.Unlock()
		return f, false
	}
	gen, moves := s.gen, s.moves
	root, positions := s.root, s.positions
	s.setPhaseLocked(PhaseSettling)
	s.mu.Unlock()

	conns, report := s.router.Route(root, positions, geometry)
	sizes := make(layout.Sizes, len(positions))
	for id := range positions {
		if sz, ok := geometry.RenderedBox(id); ok {
			sizes[id] = sz
		}
	}

	s.mu.Lock()
	if s.gen != gen || s.closed {
		f := s.frameLocked()
		s.mu.Unlock()
		return f, false
	}
	if s.moves != moves {
		// A drag landed while routing.
		conns, report = s.router.Route(s.root, s.positions, geometry)
	}
	for id, sz := range s.estimated {
		if _, ok := sizes[id]; !ok {
			sizes[id] = sz
		}
	}
	s.geometry = geometry
	s.sizes = sizes
	s.conns = conns
	s.dropped = report.Dropped
	s.setPhaseLocked(PhaseMeasured)
	select {
	case <-s.measured:
	default:
		close(s.measured)
	}
	f := s.frameLocked()
	s.mu.Unlock()

	if n := len(report.Dropped); n > 0 {
		observability.Settle().OnDropped(context.Background(), n)
		s.logger.Debug("connections pending geometry", "dropped", n, "generation", gen)
	}
	if s.onMeasured != nil {
		s.onMeasured(f)
	}
	return f, true
}

// Drag moves a node in free-drag mode and re-routes without a new layout
// generation. It reports false when the engine does not allow dragging.
// A measured frame is re-routed against the geometry of the last Rendered
// call, which is queried while the settler is locked.
func (s *Settler) Drag(id string, dx, dy float64) (Frame, bool) {
	s.mu.Lock()
	if s.closed || s.phase == PhaseIdle {
		f := s.frameLocked()
		s.mu.Unlock()
		return f, false
	}
	if _, ok := s.positions[id]; !ok || !s.engine.Drag(id, dx, dy) {
		f := s.frameLocked()
		s.mu.Unlock()
		return f, false
	}
	s.positions = layout.Moved(s.positions, id, dx, dy)
	s.moves++
	measured := s.phase == PhaseMeasured && s.geometry != nil
	if measured {
		conns, report := s.router.Route(s.root, s.positions, s.geometry)
		s.conns, s.dropped = conns, report.Dropped
	} else {
		s.conns = s.router.Estimate(s.root, s.positions, s.sizes)
	}
	f := s.frameLocked()
	s.mu.Unlock()

	if measured {
		if s.onMeasured != nil {
			s.onMeasured(f)
		}
	} else if s.onEstimate != nil {
		s.onEstimate(f)
	}
	return f, true
}

// Wait blocks until the latest generation is measured or ctx is done.
func (s *Settler) Wait(ctx context.Context) (Frame, error) {
	for {
		s.mu.Lock()
		if s.phase == PhaseMeasured {
			f := s.frameLocked()
			s.mu.Unlock()
			return f, nil
		}
		if s.closed {
			s.mu.Unlock()
			return Frame{}, errors.New(errors.ErrCodeInternal, "settler closed")
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		}
	}
}

// Close stops any pending resize. Later calls are no-ops.
func (s *Settler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.notifyLocked()
}

func (s *Settler) relayoutLocked() {
	start := time.Now()
	ctx := context.Background()
	mode := s.engine.Mode().String()
	observability.Pipeline().OnLayoutStart(ctx, mode, mindmap.Count(s.root))

	s.positions = s.engine.Layout(s.root, s.canvas)
	s.estimated = s.engine.Sizes()
	s.sizes = s.estimated
	s.conns = s.router.Estimate(s.root, s.positions, s.estimated)
	s.dropped = nil
	s.geometry = nil
	s.startGenerationLocked()

	observability.Pipeline().OnLayoutComplete(ctx, mode, time.Since(start), nil)
	s.logger.Debug("layout estimated",
		"generation", s.gen,
		"nodes", len(s.positions),
		"connections", len(s.conns),
		"duration", time.Since(start))
}

func (s *Settler) startGenerationLocked() {
	s.gen++
	select {
	case <-s.measured:
		s.measured = make(chan struct{})
	default:
	}
	s.setPhaseLocked(PhaseEstimated)
}

func (s *Settler) setPhaseLocked(p Phase) {
	s.phase = p
	observability.Settle().OnPhase(context.Background(), s.gen, p.String())
	s.notifyLocked()
}

func (s *Settler) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Settler) publishEstimate(f Frame) {
	if s.onEstimate != nil {
		s.onEstimate(f)
	}
}

func (s *Settler) frameLocked() Frame {
	conns := make([]route.Connection, len(s.conns))
	copy(conns, s.conns)
	return Frame{
		Generation:  s.gen,
		Phase:       s.phase,
		Root:        s.root,
		Canvas:      s.canvas,
		Positions:   s.positions.Clone(),
		Sizes:       s.sizes,
		Connections: conns,
		Dropped:     s.dropped,
		Issues:      s.issues,
	}
}
