package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/route"
	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

// treeRequest is the body of the stateless endpoints. Options overlay the
// server configuration field by field.
type treeRequest struct {
	Tree    json.RawMessage  `json:"tree"`
	Options pipeline.Options `json:"options"`
}

// issue is the wire form of a repair or dropped connector.
type issue struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func issues(errs []*errors.Error) []issue {
	if len(errs) == 0 {
		return nil
	}
	out := make([]issue, len(errs))
	for i, e := range errs {
		out[i] = issue{Code: e.Code, Message: e.Message}
	}
	return out
}

// framePayload is the wire form of one layout generation.
type framePayload struct {
	Generation  uint64             `json:"generation"`
	Phase       string             `json:"phase"`
	Canvas      geom.Size          `json:"canvas"`
	Positions   layout.Positions   `json:"positions"`
	Sizes       layout.Sizes       `json:"sizes"`
	Connections []route.Connection `json:"connections"`
	Dropped     []issue            `json:"dropped,omitempty"`
	Issues      []issue            `json:"issues,omitempty"`
}

func newFramePayload(f settle.Frame) framePayload {
	conns := f.Connections
	if conns == nil {
		conns = []route.Connection{}
	}
	return framePayload{
		Generation:  f.Generation,
		Phase:       f.Phase.String(),
		Canvas:      f.Canvas,
		Positions:   f.Positions,
		Sizes:       f.Sizes,
		Connections: conns,
		Dropped:     issues(f.Dropped),
		Issues:      issues(f.Issues),
	}
}

type layoutResponse struct {
	TreeHash string `json:"tree_hash"`
	framePayload
	Viewport  viewport.State `json:"viewport"`
	Transform string         `json:"transform"`
	Cached    bool           `json:"cached"`
}

// decodeTree reads the request body. JSON bodies carry {"tree", "options"};
// YAML bodies are the bare tree and take options from the query string.
func (s *Server) decodeTree(r *http.Request) (*mindmap.Node, pipeline.Options, error) {
	opts := s.cfg.PipelineOptions()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			return nil, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", s.cfg.Server.MaxBodyBytes)
		}
		return nil, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.Contains(mediaType, "yaml") {
		if err := queryOptions(r, &opts); err != nil {
			return nil, opts, err
		}
		root, err := s.runner.LoadBytes(r.Context(), "request", body, mindmap.FormatYAML)
		return root, opts, err
	}

	req := treeRequest{Options: opts}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if len(req.Tree) == 0 {
		return nil, req.Options, errors.New(errors.ErrCodeInvalidInput, "request has no tree")
	}
	if err := queryOptions(r, &req.Options); err != nil {
		return nil, req.Options, err
	}
	root, err := s.runner.LoadBytes(r.Context(), "request", req.Tree, mindmap.FormatJSON)
	return root, req.Options, err
}

// queryOptions applies the query parameters shared by both endpoints.
func queryOptions(r *http.Request, opts *pipeline.Options) error {
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"scale", &opts.Scale},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", p.name, v)
		}
		*p.dst = f
	}
	if v := q.Get("mode"); v != "" {
		opts.Mode = v
	}
	if v := q.Get("theme"); v != "" {
		opts.Theme = v
	}
	if v := q.Get("fit"); v != "" {
		fit, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "invalid fit: %q", v)
		}
		opts.Fit = fit
	}
	if v := q.Get("format"); v != "" {
		opts.Formats = []string{v}
	}
	return nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	root, opts, err := s.decodeTree(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{string(render.FormatJSON)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	tree, hash, repairs := s.runner.Prepare(root)
	frame, _, hit, err := s.runner.LayoutWithCacheInfo(ctx, tree, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	frame.Issues = repairs
	view := pipeline.FitView(frame, opts)

	writeJSON(w, http.StatusOK, layoutResponse{
		TreeHash:     hash,
		framePayload: newFramePayload(frame),
		Viewport:     view,
		Transform:    view.CSSTransform(),
		Cached:       hit,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	root, opts, err := s.decodeTree(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var requested string
	if len(opts.Formats) > 0 {
		requested = opts.Formats[0]
	}
	format, err := render.ParseFormat(requested)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{string(format)}

	result, err := s.runner.Execute(r.Context(), root, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, ok := result.Artifacts[string(format)]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInternal, "no %s artifact produced", format))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Tree-Hash", result.TreeHash)
	w.Header().Set("X-Layout-Phase", result.Frame.Phase.String())
	if result.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
