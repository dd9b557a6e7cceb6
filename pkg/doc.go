// Package pkg provides the core libraries for mindcanvas mind-map layout.
//
// # Overview
//
// mindcanvas turns a tree of labelled ideas into a top-down mind map: the
// root at the top, each level below its parent, connected by orthogonal
// elbow connectors. The pkg directory is organized into four areas:
//
//  1. [mindmap] and [geom] - the tree model and plane geometry
//  2. core - estimation, layout, connector routing, settling and the
//     viewport gesture machine
//  3. [render] - SVG, DOT, PNG, PDF, JSON and terminal output
//  4. [pipeline], [cache], [server] - orchestration, result caching and the
//     HTTP/WebSocket API
//
// # Architecture
//
// A layout settles in two phases:
//
//	tree (JSON/YAML)
//	     ↓
//	[mindmap] normalize (repair ids, empty text)
//	     ↓
//	core/estimate + core/layout      phase A: estimated boxes, positions
//	     ↓
//	core/route (estimated boxes)     provisional connectors
//	     ↓
//	host renders, reports true boxes
//	     ↓
//	core/route (rendered boxes)      phase B: measured connectors
//
// [settle.Settler] runs this protocol per generation, debounces resizes
// and discards measurements that arrive for a superseded generation. The
// [viewport.Controller] is independent of layout: it pans and zooms the
// finished canvas and forwards node drags in free-drag mode.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/mindcanvas/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.ExecuteFile(ctx, "roadmap.yaml", pipeline.Options{
//	    Width:   1200,
//	    Height:  800,
//	    Formats: []string{"svg", "txt"},
//	    Fit:     true,
//	})
//	os.WriteFile("roadmap.svg", result.Artifacts["svg"], 0o644)
//
// # Main Packages
//
//   - [mindmap]: Node, normalization, edits, JSON/YAML loading with schema checks
//   - [estimate]: per-level label box estimation
//   - [layout]: fixed-spacing row and stacked columns, free-drag offsets, hit testing
//   - [route]: connector generation from estimated or rendered boxes
//   - [settle]: two-phase settling, resize debounce, generations
//   - [input]: mouse, touch and wheel normalization
//   - [viewport]: pan/zoom state machine and fit-to-frame
//   - [pipeline]: load, normalize, settle, render with caching
//   - [server]: REST endpoints and live WebSocket sessions
//
// [mindmap]: github.com/matzehuels/mindcanvas/pkg/mindmap
// [geom]: github.com/matzehuels/mindcanvas/pkg/geom
// [render]: github.com/matzehuels/mindcanvas/pkg/render
// [pipeline]: github.com/matzehuels/mindcanvas/pkg/pipeline
// [cache]: github.com/matzehuels/mindcanvas/pkg/cache
// [server]: github.com/matzehuels/mindcanvas/pkg/server
// [estimate]: github.com/matzehuels/mindcanvas/pkg/core/estimate
// [layout]: github.com/matzehuels/mindcanvas/pkg/core/layout
// [route]: github.com/matzehuels/mindcanvas/pkg/core/route
// [settle]: github.com/matzehuels/mindcanvas/pkg/core/settle
// [settle.Settler]: github.com/matzehuels/mindcanvas/pkg/core/settle#Settler
// [input]: github.com/matzehuels/mindcanvas/pkg/core/input
// [viewport]: github.com/matzehuels/mindcanvas/pkg/core/viewport
// [viewport.Controller]: github.com/matzehuels/mindcanvas/pkg/core/viewport#Controller
package pkg
