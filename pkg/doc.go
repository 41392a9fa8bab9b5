// Package pkg provides the core libraries for stackbuilder.
//
// # Overview
//
// Stackbuilder models a cookie stack as an ordered list of layers (top
// image, bottom image, label, spacer) and draws it with a fixed table of
// vertical offsets that makes neighbouring layers overlap.
//
//  1. [layer] - Layer kinds and identifiers
//  2. [stack] - Immutable stack values, the six actions and the Store with undo/redo
//  3. [spacing] - The offset table and its rules
//  4. [render] - Column layout, styles and sinks; the node-link view
//  5. [pipeline] - Orchestration (build → layout → render) with artifact caching
//  6. [session] - Per-browser stores for the HTTP server
//
// # Architecture
//
//	actions ("top", "label", "bottom")
//	         ↓
//	    [stack] Store (reduce, history, observers)
//	         ↓
//	    [spacing] offsets
//	         ↓
//	    [render/column/layout] positioned blocks
//	         ↓
//	    SVG/PNG/PDF/JSON, or DOT via [render/nodelink]
//
// # Quick Start
//
//	st := stack.NewStore()
//	st.DispatchAll(stack.AddTop, stack.AddLabel, stack.AddBottom)
//
//	l := layout.Build(st.State(), layout.Options{})
//	svg := sink.RenderSVG(l)
//
// # Supporting Packages
//
// [config] loads settings from TOML and the environment. [errors] carries
// machine-readable codes. [observability] exposes hooks that the serve
// command backs with Prometheus metrics. [cache] stores rendered artifacts on
// disk. [buildinfo] reports the version.
package pkg
