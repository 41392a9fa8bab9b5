package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackbuilder/pkg/buildinfo"
	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/pipeline"
	"github.com/matzehuels/stackbuilder/pkg/render/column/styles"
	"github.com/matzehuels/stackbuilder/pkg/spacing"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// stateResponse is the JSON view of a session's store.
type stateResponse struct {
	Layers    stack.Stack      `json:"layers"`
	Offsets   []spacing.Offset `json:"offsets"`
	Len       int              `json:"len"`
	MaxLayers int              `json:"max_layers,omitempty"`
	Full      bool             `json:"full"`
	CanUndo   bool             `json:"can_undo"`
	CanRedo   bool             `json:"can_redo"`
	Changed   *bool            `json:"changed,omitempty"`
}

func newStateResponse(st *stack.Store) stateResponse {
	cur := st.State()
	return stateResponse{
		Layers:    cur,
		Offsets:   spacing.Offsets(cur),
		Len:       cur.Len(),
		MaxLayers: st.MaxLayers(),
		Full:      st.Full(),
		CanUndo:   st.CanUndo(),
		CanRedo:   st.CanRedo(),
	}
}

type indexButton struct {
	Path  string
	Label string
	Title string
}

type indexData struct {
	Actions []indexButton
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}

	data := indexData{}
	for _, a := range stack.Actions() {
		label := a.String()
		if k, ok := a.Kind(); ok {
			label = "+ " + styles.Label(k)
		}
		data.Actions = append(data.Actions, indexButton{
			Path:  "/actions/" + a.String(),
			Label: label,
			Title: a.String(),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"build":    buildinfo.Get(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var resp stateResponse
	sess.Do(func(st *stack.Store) { resp = newStateResponse(st) })
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action, err := stack.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var resp stateResponse
	sess.Do(func(st *stack.Store) {
		before := st.State()
		after := st.Dispatch(action)
		resp = newStateResponse(st)
		changed := !before.Equal(after)
		resp.Changed = &changed
	})
	writeJSON(w, http.StatusOK, resp)
}

type historyOp int

const (
	historyUndo historyOp = iota
	historyRedo
	historyReset
)

func (s *Server) handleHistory(op historyOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var resp stateResponse
		sess.Do(func(st *stack.Store) {
			var changed bool
			switch op {
			case historyUndo:
				changed = st.Undo()
			case historyRedo:
				changed = st.Redo()
			case historyReset:
				changed = !st.State().IsEmpty()
				st.Reset()
			}
			resp = newStateResponse(st)
			resp.Changed = &changed
		})
		writeJSON(w, http.StatusOK, resp)
	}
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	vizType := r.URL.Query().Get("type")
	if vizType == "" {
		vizType = pipeline.VizTypeColumn
	}
	if err := pipeline.ValidateFormat(vizType, format); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.render
	opts.VizType = vizType
	opts.Formats = []string{format}
	opts.Interactive = r.URL.Query().Get("interactive") != ""
	if style := r.URL.Query().Get("style"); style != "" {
		opts.Style = style
	}

	artifacts, err := s.runner.Render(r.Context(), sess.State(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, ok := artifacts[format]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInternal, "renderer produced no %s output", format))
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}
