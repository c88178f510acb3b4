package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/docstore"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
)

func frame(id, parent string, order int, l, t, w, h float64, state string, children ...*canon.Node) *canon.Node {
	return &canon.Node{
		ID: id, ParentID: parent, Kind: canon.KindFrame, Name: id,
		Rect: geom.NewRect(l, t, w, h), Opacity: 1, DocOrder: order,
		Children: children, ObservedInStates: []string{state},
	}
}

func stateDocument(state string, withMenu bool) *canon.Document {
	root := frame("root", "", 0, 0, 0, 800, 600, state,
		frame("header", "root", 1, 0, 0, 800, 60, state))
	root.Paints = []paint.Paint{paint.Solid(paint.White)}
	if withMenu {
		root.Children = append(root.Children, frame("menu", "root", 2, 600, 60, 200, 300, state))
	}
	doc := canon.NewDocument(root, assets.NewRegistry())
	doc.States, doc.BaseState = []string{state}, state
	return doc
}

func body(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	if doc, ok := v.(*canon.Document); ok {
		data, err := canon.Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		return bytes.NewReader(data)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(data)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(New(Options{Store: docstore.NewCacheStore(c, nil, 0)}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, payload *bytes.Reader, out any) int {
	t.Helper()
	var rd *bytes.Reader = payload
	if rd == nil {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	var got map[string]string
	if status := do(t, http.MethodGet, srv.URL+"/healthz", nil, &got); status != http.StatusOK || got["status"] != "ok" {
		t.Errorf("GET /healthz = %d %v", status, got)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	srv := newServer(t)

	var created idResponse
	if status := do(t, http.MethodPost, srv.URL+"/v1/documents", body(t, stateDocument("default", false)), &created); status != http.StatusCreated {
		t.Fatalf("POST /v1/documents = %d", status)
	}
	if created.ID == "" {
		t.Fatal("no id returned")
	}

	var doc canon.Document
	if status := do(t, http.MethodGet, srv.URL+"/v1/documents/"+created.ID, nil, &doc); status != http.StatusOK {
		t.Fatalf("GET document = %d", status)
	}
	if doc.Tree == nil || doc.Tree.ID != "root" {
		t.Errorf("GET document tree = %+v", doc.Tree)
	}

	if status := do(t, http.MethodDelete, srv.URL+"/v1/documents/"+created.ID, nil, nil); status != http.StatusNoContent {
		t.Errorf("DELETE document = %d", status)
	}
	var e errorBody
	if status := do(t, http.MethodGet, srv.URL+"/v1/documents/"+created.ID, nil, &e); status != http.StatusNotFound || e.Code != errors.ErrCodeNotFound {
		t.Errorf("GET deleted = %d %+v", status, e)
	}
}

func TestMergeEndpoint(t *testing.T) {
	srv := newServer(t)

	var stored idResponse
	do(t, http.MethodPost, srv.URL+"/v1/documents", body(t, stateDocument("menu-open", true)), &stored)

	base, _ := canon.Marshal(stateDocument("default", false))
	req := mergeRequest{Documents: []json.RawMessage{base}, IDs: []string{stored.ID}, Base: "default"}
	var resp mergeResponse
	if status := do(t, http.MethodPost, srv.URL+"/v1/merge", body(t, req), &resp); status != http.StatusOK {
		t.Fatalf("POST /v1/merge = %d", status)
	}
	if resp.Document == nil || resp.Document.Tree.Count() != 3 {
		t.Fatalf("merged document = %+v", resp.Document)
	}
	if got := resp.Document.States; len(got) != 2 || got[0] != "default" {
		t.Errorf("States = %v, want default first", got)
	}
}

func TestReconstructEndpoint(t *testing.T) {
	srv := newServer(t)

	var resp reconstructResponse
	if status := do(t, http.MethodPost, srv.URL+"/v1/reconstruct", body(t, stateDocument("default", true)), &resp); status != http.StatusOK {
		t.Fatalf("POST /v1/reconstruct = %d", status)
	}
	if resp.Nodes != 3 || resp.Failures != 0 {
		t.Errorf("nodes = %d failures = %d, want 3 and 0", resp.Nodes, resp.Failures)
	}
	if resp.Payload.Version != reconstruct.PayloadVersion || len(resp.Payload.Ops) == 0 {
		t.Fatalf("payload = %+v", resp.Payload)
	}
	if first := resp.Payload.Ops[0]; first.Type != reconstruct.OpCreateFrame || first.Parent != "" {
		t.Errorf("first op = %+v, want a top-level createFrame", first)
	}
}

func TestCompactEndpoint(t *testing.T) {
	srv := newServer(t)
	doc := stateDocument("default", true)
	doc.Assets.Register(bytes.Repeat([]byte{0x89}, 30*1024), "image/png")

	var resp compactResponse
	url := srv.URL + "/v1/compact?aggressive=true&strip_debug=1"
	if status := do(t, http.MethodPost, url, body(t, doc), &resp); status != http.StatusOK {
		t.Fatalf("POST /v1/compact = %d", status)
	}
	if resp.Stats.ImagesRemoved != 1 || resp.Document == nil || resp.Document.Assets.Len() != 0 {
		t.Errorf("compact = %+v", resp.Stats)
	}

	var e errorBody
	if status := do(t, http.MethodPost, srv.URL+"/v1/compact?max_depth=deep", body(t, doc), &e); status != http.StatusBadRequest {
		t.Errorf("bad max_depth = %d %+v", status, e)
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newServer(t)
	invalid := stateDocument("default", false)
	invalid.Tree.Children[0].ParentID = "elsewhere"

	tests := []struct {
		name   string
		path   string
		body   *bytes.Reader
		status int
		code   errors.Code
	}{
		{"malformed json", "/v1/reconstruct", bytes.NewReader([]byte("{")), http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"schema violation", "/v1/reconstruct", body(t, invalid), http.StatusUnprocessableEntity, errors.ErrCodeSchemaInvalid},
		{"unknown id", "/v1/reconstruct?id=" + docstore.NewID(), nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"empty merge", "/v1/merge", bytes.NewReader([]byte(`{"documents":[]}`)), http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorBody
			status := do(t, http.MethodPost, srv.URL+tt.path, tt.body, &e)
			if status != tt.status || e.Code != tt.code {
				t.Errorf("POST %s = %d %s, want %d %s", tt.path, status, e.Code, tt.status, tt.code)
			}
			if strings.TrimSpace(e.Error) == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestNoStore(t *testing.T) {
	srv := httptest.NewServer(New(Options{}).Handler())
	defer srv.Close()
	var e errorBody
	if status := do(t, http.MethodPost, srv.URL+"/v1/documents", body(t, stateDocument("default", false)), &e); status != http.StatusUnsupportedMediaType || e.Code != errors.ErrCodeUnsupported {
		t.Errorf("POST without store = %d %+v", status, e)
	}
}

func TestMergeTolerance(t *testing.T) {
	zero := 0.0
	jitter := stateDocument("jitter", false)
	jitter.Tree.Children[0].Rect = geom.NewRect(0, 0.5, 800, 60)
	base, _ := canon.Marshal(stateDocument("default", false))
	shifted, _ := canon.Marshal(jitter)

	tests := []struct {
		name          string
		serverDefault *float64
		request       *float64
		want          int
	}{
		{"default tolerance", nil, nil, 0},
		{"exact request", nil, &zero, 1},
		{"exact server default", &zero, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(New(Options{Tolerance: tt.serverDefault}).Handler())
			defer srv.Close()

			req := mergeRequest{Documents: []json.RawMessage{base, shifted}, Tolerance: tt.request}
			var resp mergeResponse
			if status := do(t, http.MethodPost, srv.URL+"/v1/merge", body(t, req), &resp); status != http.StatusOK {
				t.Fatalf("POST /v1/merge = %d", status)
			}
			if resp.Conflicts != tt.want {
				t.Errorf("conflicts = %d, want %d", resp.Conflicts, tt.want)
			}
		})
	}
}
