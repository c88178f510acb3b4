package server

import (
	"cmp"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pageprint/pkg/buildinfo"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/compact"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/merge"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

type idResponse struct {
	ID string `json:"id"`
}

// POST /v1/documents
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		s.fail(w, r, errNoStore)
		return
	}
	doc, err := canon.Decode(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.opts.Store.Put(r.Context(), doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// GET /v1/documents/{id}
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		s.fail(w, r, errNoStore)
		return
	}
	doc, err := s.opts.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DELETE /v1/documents/{id}
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		s.fail(w, r, errNoStore)
		return
	}
	if err := s.opts.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var errNoStore = errors.New(errors.ErrCodeUnsupported, "no document store configured")

// document loads the request's document: ?id= from the store, else the body.
func (s *Server) document(w http.ResponseWriter, r *http.Request) (*canon.Document, error) {
	if id := r.URL.Query().Get("id"); id != "" {
		if s.opts.Store == nil {
			return nil, errNoStore
		}
		return s.opts.Store.Get(r.Context(), id)
	}
	return canon.Decode(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
}

// mergeRequest lists documents inline, by id, or both (inline first).
type mergeRequest struct {
	Documents []json.RawMessage `json:"documents"`
	IDs       []string          `json:"ids"`
	Base      string            `json:"base"`
	Tolerance *float64          `json:"tolerance"`
	// Store saves the merged document and returns only its id.
	Store bool `json:"store"`
}

type mergeResponse struct {
	ID          string          `json:"id,omitempty"`
	Document    *canon.Document `json:"document,omitempty"`
	Conflicts   int             `json:"conflicts"`
	Diagnostics []diag.Entry    `json:"diagnostics"`
}

// POST /v1/merge
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)).Decode(&req); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode merge request"))
		return
	}
	docs := make([]*canon.Document, 0, len(req.Documents)+len(req.IDs))
	for i, raw := range req.Documents {
		doc, err := canon.Unmarshal(raw)
		if err != nil {
			s.fail(w, r, errors.Wrap(errors.GetCode(err), err, "document %d", i))
			return
		}
		docs = append(docs, doc)
	}
	for _, id := range req.IDs {
		if s.opts.Store == nil {
			s.fail(w, r, errNoStore)
			return
		}
		doc, err := s.opts.Store.Get(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		docs = append(docs, doc)
	}
	if req.Store && s.opts.Store == nil {
		s.fail(w, r, errNoStore)
		return
	}

	mopts := merge.Options{Base: req.Base, Logger: s.logger}
	if tol := cmp.Or(req.Tolerance, s.opts.Tolerance); tol != nil {
		mopts.SetTolerance(*tol)
	}
	merged, report, err := merge.Documents(docs, mopts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := mergeResponse{
		Conflicts:   report.Count(diag.MergeConflictWarning),
		Diagnostics: report.Entries(),
	}
	if req.Store {
		id, err := s.opts.Store.Put(r.Context(), merged)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp.ID = id
	} else {
		resp.Document = merged
	}
	writeJSON(w, http.StatusOK, resp)
}

type reconstructResponse struct {
	Payload     reconstruct.Payload `json:"payload"`
	Nodes       int                 `json:"nodes"`
	Failures    int                 `json:"failures"`
	Diagnostics []diag.Entry        `json:"diagnostics"`
}

// POST /v1/reconstruct
func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rec := reconstruct.NewRecorder(s.opts.Fonts)
	res, err := reconstruct.Reconstruct(r.Context(), doc, rec, reconstruct.Options{
		FontAliases: s.opts.FontAliases,
		Logger:      s.logger,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reconstructResponse{
		Payload:     rec.Payload(),
		Nodes:       res.Nodes,
		Failures:    res.Failures,
		Diagnostics: res.Report.Entries(),
	})
}

type compactResponse struct {
	ID       string          `json:"id,omitempty"`
	Document *canon.Document `json:"document,omitempty"`
	Stats    compact.Stats   `json:"stats"`
}

// POST /v1/compact?aggressive=&strip_debug=&max_depth=&max_image_bytes=&max_svg_bytes=&store=
func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := compactOptions(q.Get)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	store := q.Get("store") == "true"
	if store && s.opts.Store == nil {
		s.fail(w, r, errNoStore)
		return
	}
	doc, err := s.document(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Logger = s.logger
	out, stats, err := compact.Compact(doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := compactResponse{Stats: stats}
	if store {
		id, err := s.opts.Store.Put(r.Context(), out)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp.ID = id
	} else {
		resp.Document = out
	}
	writeJSON(w, http.StatusOK, resp)
}

func compactOptions(get func(string) string) (compact.Options, error) {
	var opts compact.Options
	var err error
	parseBool := func(key string) bool {
		if err != nil || get(key) == "" {
			return false
		}
		var v bool
		v, err = strconv.ParseBool(get(key))
		return v
	}
	parseInt := func(key string) int64 {
		if err != nil || get(key) == "" {
			return 0
		}
		var v int64
		v, err = strconv.ParseInt(get(key), 10, 64)
		return v
	}
	opts.Aggressive = parseBool("aggressive")
	opts.StripDebug = parseBool("strip_debug")
	opts.MaxDepth = int(parseInt("max_depth"))
	opts.MaxImageBytes = parseInt("max_image_bytes")
	opts.MaxSVGBytes = parseInt("max_svg_bytes")
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "compaction parameters")
	}
	return opts, nil
}
