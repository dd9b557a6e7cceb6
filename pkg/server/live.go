package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/mindcanvas/pkg/buildinfo"
	"github.com/matzehuels/mindcanvas/pkg/core/input"
	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/route"
	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

// Client message types.
const (
	MsgLoad     = "load"
	MsgUpdate   = "update"
	MsgResize   = "resize"
	MsgRendered = "rendered"
	MsgInput    = "input"
	MsgFit      = "fit"
	MsgFitAll   = "fit_all"
	MsgZoomIn   = "zoom_in"
	MsgZoomOut  = "zoom_out"
	MsgReset    = "reset"
)

// Server message types.
const (
	MsgHello    = "hello"
	MsgLayout   = "layout"
	MsgViewport = "viewport"
	MsgError    = "error"
)

// ClientMessage is one frame from the browser. Which fields are set
// depends on Type.
type ClientMessage struct {
	Type string `json:"type"`

	// load, update
	Tree json.RawMessage `json:"tree,omitempty"`

	// load, resize: viewport size in pixels
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// rendered
	Generation uint64               `json:"generation,omitempty"`
	Boxes      map[string]geom.Size `json:"boxes,omitempty"`

	// input: exactly one of these
	Mouse *input.MouseEvent `json:"mouse,omitempty"`
	Touch *input.TouchEvent `json:"touch,omitempty"`
	Wheel *input.WheelEvent `json:"wheel,omitempty"`
}

// HelloMessage greets a new session.
type HelloMessage struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Version string `json:"version"`
}

// LayoutMessage carries one published frame.
type LayoutMessage struct {
	Type string `json:"type"`
	framePayload
}

// ViewportMessage carries the viewport after a change.
type ViewportMessage struct {
	Type         string         `json:"type"`
	State        viewport.State `json:"state"`
	Gesture      string         `json:"gesture"`
	Transform    string         `json:"transform"`
	SVGTransform string         `json:"svg_transform"`
}

// ErrorMessage reports a rejected client message. The session stays open.
type ErrorMessage struct {
	Type    string      `json:"type"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// session is one live connection. The read loop owns the input normalizer
// and viewport controller; settler callbacks may fire from its resize timer
// and only enqueue.
type session struct {
	id      string
	conn    *websocket.Conn
	logger  *log.Logger
	engine  *layout.Engine
	settler *settle.Settler
	input   *input.Normalizer
	view    *viewport.Controller
	screen  geom.Size

	send chan any
	done chan struct{}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	sess := s.newSession(conn)
	s.logger.Info("live session opened", "session", sess.id)
	go sess.writeLoop()
	sess.enqueue(HelloMessage{Type: MsgHello, Session: sess.id, Version: buildinfo.Version})
	sess.readLoop()
	s.logger.Info("live session closed", "session", sess.id)
}

func (s *Server) newSession(conn *websocket.Conn) *session {
	id := uuid.NewString()
	sess := &session{
		id:     id,
		conn:   conn,
		logger: s.logger.With("session", id[:8]),
		engine: s.cfg.NewEngine(),
		input:  s.cfg.NewNormalizer(),
		screen: s.cfg.Canvas(),
		send:   make(chan any, sendBuffer),
		done:   make(chan struct{}),
	}
	publish := func(f settle.Frame) {
		sess.enqueue(LayoutMessage{Type: MsgLayout, framePayload: newFramePayload(f)})
	}
	opts := append(s.cfg.SettleOptions(),
		settle.WithLogger(sess.logger),
		settle.WithOnEstimate(publish),
		settle.WithOnMeasured(publish),
	)
	sess.settler = settle.New(sess.engine, opts...)
	sess.view = s.cfg.NewController(viewport.WithOnNodeDrag(func(id string, dx, dy float64) {
		sess.settler.Drag(id, dx, dy)
	}))
	return sess
}

// enqueue hands a message to the writer. It drops the message once the
// session is closing.
func (sess *session) enqueue(msg any) {
	select {
	case sess.send <- msg:
	case <-sess.done:
	}
}

func (sess *session) readLoop() {
	defer func() {
		close(sess.done)
		sess.settler.Close()
		sess.conn.Close()
	}()

	sess.conn.SetReadLimit(maxMessageSize)
	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.Warn("read failed", "err", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.reject(errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid message"))
			continue
		}
		if err := sess.handle(msg); err != nil {
			sess.reject(err)
		}
	}
}

func (sess *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sess.conn.Close()
	}()

	for {
		select {
		case msg := <-sess.send:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteJSON(msg); err != nil {
				sess.logger.Debug("write failed", "err", err)
				return
			}
		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sess.done:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = sess.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (sess *session) reject(err error) {
	sess.logger.Debug("rejected message", "err", err)
	sess.enqueue(ErrorMessage{
		Type:    MsgError,
		Code:    errors.GetCodeOr(err, errors.ErrCodeInternal),
		Message: errors.UserMessage(err),
	})
}

func (sess *session) handle(msg ClientMessage) error {
	switch msg.Type {
	case MsgLoad:
		root, err := sess.tree(msg.Tree)
		if err != nil {
			return err
		}
		if msg.Width > 0 && msg.Height > 0 {
			sess.screen = geom.Size{Width: msg.Width, Height: msg.Height}
		}
		sess.input.Reset()
		sess.settler.Load(root, sess.screen)

	case MsgUpdate:
		root, err := sess.tree(msg.Tree)
		if err != nil {
			return err
		}
		sess.settler.Update(root)

	case MsgResize:
		if msg.Width <= 0 || msg.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "resize needs a positive size, got %gx%g", msg.Width, msg.Height)
		}
		sess.screen = geom.Size{Width: msg.Width, Height: msg.Height}
		sess.settler.Resize(sess.screen)

	case MsgRendered:
		frame := sess.settler.Frame()
		if msg.Generation != 0 && msg.Generation != frame.Generation {
			sess.logger.Debug("stale measurement", "generation", msg.Generation, "current", frame.Generation)
			return nil
		}
		sess.settler.Rendered(route.SizeMap(msg.Boxes))

	case MsgInput:
		return sess.handleInput(msg)

	case MsgFit:
		box, ok := sess.settler.Frame().RootBox()
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "nothing loaded to fit")
		}
		sess.view.FitToFrame(box, sess.screen)
		sess.publishView()

	case MsgFitAll:
		frame := sess.settler.Frame()
		box, ok := layout.Bounds(frame.Positions, frame.Sizes)
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "nothing loaded to fit")
		}
		sess.view.FitAll(box, sess.screen)
		sess.publishView()

	case MsgZoomIn:
		sess.view.ZoomIn()
		sess.publishView()

	case MsgZoomOut:
		sess.view.ZoomOut()
		sess.publishView()

	case MsgReset:
		sess.input.Reset()
		sess.view.Reset()
		sess.publishView()

	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
	}
	return nil
}

func (sess *session) handleInput(msg ClientMessage) error {
	var events []input.Event
	switch {
	case msg.Mouse != nil:
		ev := *msg.Mouse
		if ev.Kind == input.MouseDown {
			ev.Target = sess.hitTest(ev.Target, geom.Point{X: ev.X, Y: ev.Y})
		}
		events = sess.input.Mouse(ev)
	case msg.Touch != nil:
		ev := *msg.Touch
		if ev.Kind == input.TouchStart && len(ev.Touches) == 1 {
			ev.Target = sess.hitTest(ev.Target, geom.Point{X: ev.Touches[0].X, Y: ev.Touches[0].Y})
		}
		events = sess.input.Touch(ev)
	case msg.Wheel != nil:
		events = sess.input.Wheel(*msg.Wheel)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "input message has no event")
	}

	changed := false
	before := sess.view.Gesture()
	for _, ev := range events {
		if sess.view.Handle(ev) {
			changed = true
		}
	}
	if changed || sess.view.Gesture() != before {
		sess.publishView()
	}
	return nil
}

// hitTest resolves a canvas target to the node under p, so a press on a
// node never pans. Clients that already know the target keep it.
func (sess *session) hitTest(t input.Target, p geom.Point) input.Target {
	if t.Kind != input.TargetCanvas {
		return t
	}
	frame := sess.settler.Frame()
	if id, ok := layout.NodeAt(frame.Positions, frame.Sizes, sess.view.ScreenToCanvas(p)); ok {
		return input.Node(id)
	}
	return t
}

func (sess *session) publishView() {
	state := sess.view.State()
	sess.enqueue(ViewportMessage{
		Type:         MsgViewport,
		State:        state,
		Gesture:      sess.view.Gesture().String(),
		Transform:    state.CSSTransform(),
		SVGTransform: state.SVGTransform(),
	})
}

func (sess *session) tree(raw json.RawMessage) (*mindmap.Node, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "message has no tree")
	}
	return mindmap.UnmarshalTree(raw, mindmap.FormatJSON)
}
