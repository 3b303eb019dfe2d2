package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/matzehuels/domgraph/pkg/layout"
	"github.com/matzehuels/domgraph/pkg/session"
	"github.com/matzehuels/domgraph/pkg/visualizer"
)

const payload = `{"div":[{"attributes":{"id":"a"},"innerText":"hi"}],"span":[]}`

type envelope struct {
	Success bool            `json:"success"`
	TabID   string          `json:"tabId"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := session.NewMemoryStore(func() *visualizer.Controller {
		return visualizer.New(visualizer.WithLayout(layout.NameRadial))
	}, 0)
	s := New(Config{Logger: log.New(io.Discard)}, store)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, envelope, http.Header) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	var env envelope
	if resp.Header.Get("Content-Disposition") == "" {
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("%s %s: bad envelope %q: %v", method, path, data, err)
		}
	} else {
		env.Data = data
	}
	return resp.StatusCode, env, resp.Header
}

func openTab(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	status, env, _ := do(t, ts, http.MethodPost, "/api/visualizer", "")
	if status != http.StatusCreated && status != http.StatusOK {
		t.Fatalf("open status = %d", status)
	}
	if !env.Success || env.TabID == "" {
		t.Fatalf("open reply = %+v", env)
	}
	return env.TabID
}

func TestOpenFocusesExistingTab(t *testing.T) {
	ts := newTestServer(t)

	status, first, _ := do(t, ts, http.MethodPost, "/api/visualizer", "")
	if status != http.StatusCreated {
		t.Errorf("first open status = %d, want %d", status, http.StatusCreated)
	}
	status, second, _ := do(t, ts, http.MethodPost, "/api/visualizer", "")
	if status != http.StatusOK {
		t.Errorf("second open status = %d, want %d", status, http.StatusOK)
	}
	if first.TabID != second.TabID {
		t.Errorf("tab ids differ: %s vs %s", first.TabID, second.TabID)
	}
}

func TestVisualizeWithoutTab(t *testing.T) {
	ts := newTestServer(t)

	status, env, _ := do(t, ts, http.MethodPost, "/api/visualize", payload)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", status, http.StatusNotFound)
	}
	if env.Success || env.Error != "Visualizer tab not created" {
		t.Errorf("reply = %+v", env)
	}
}

func TestVisualizeRelay(t *testing.T) {
	ts := newTestServer(t)
	id := openTab(t, ts)

	status, env, _ := do(t, ts, http.MethodPost, "/api/visualize", payload)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("visualize = %d %+v", status, env)
	}
	var summary visualizer.Summary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatal(err)
	}
	want := visualizer.Summary{Nodes: 4, Links: 3, Tags: 2, Elements: 1, Layout: layout.NameRadial}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}

	status, env, _ = do(t, ts, http.MethodGet, "/api/visualizer/"+id+"/frame", "")
	if status != http.StatusOK {
		t.Fatalf("frame status = %d", status)
	}
	var frame struct {
		Nodes []struct {
			ID int `json:"id"`
		} `json:"nodes"`
		Links []json.RawMessage `json:"links"`
	}
	if err := json.Unmarshal(env.Data, &frame); err != nil {
		t.Fatal(err)
	}
	if len(frame.Nodes) != 4 || len(frame.Links) != 3 {
		t.Errorf("frame has %d nodes, %d links; want 4, 3", len(frame.Nodes), len(frame.Links))
	}
}

func TestMalformedPayload(t *testing.T) {
	ts := newTestServer(t)
	id := openTab(t, ts)

	status, env, _ := do(t, ts, http.MethodPost, "/api/visualizer/"+id+"/visualize", `{"div": 3}`)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
	}
	if env.Code != "MALFORMED_INPUT" {
		t.Errorf("code = %q, want MALFORMED_INPUT", env.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	status, env, _ := do(t, ts, http.MethodGet, "/api/visualizer/nope/frame", "")
	if status != http.StatusNotFound || env.Code != "SESSION_NOT_FOUND" {
		t.Errorf("got %d %+v", status, env)
	}
}

func TestCommands(t *testing.T) {
	ts := newTestServer(t)
	id := openTab(t, ts)
	base := "/api/visualizer/" + id

	if status, env, _ := do(t, ts, http.MethodPost, base+"/select", `{"id":1}`); status != http.StatusConflict {
		t.Errorf("select before payload = %d %+v, want 409", status, env)
	}
	do(t, ts, http.MethodPost, base+"/visualize", payload)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"layout", http.MethodPut, "/layout", `{"layout":"force"}`, http.StatusOK},
		{"unknown layout", http.MethodPut, "/layout", `{"layout":"spiral"}`, http.StatusBadRequest},
		{"search", http.MethodPut, "/search", `{"query":"div"}`, http.StatusOK},
		{"forces", http.MethodPut, "/forces", `{"gravity":0.2,"charge":50}`, http.StatusOK},
		{"negative charge", http.MethodPut, "/forces", `{"charge":-1}`, http.StatusBadRequest},
		{"select", http.MethodPost, "/select", `{"id":1}`, http.StatusOK},
		{"select missing", http.MethodPost, "/select", `{"id":99}`, http.StatusNotFound},
		{"select no id", http.MethodPost, "/select", `{}`, http.StatusBadRequest},
		{"clear selection", http.MethodDelete, "/select", "", http.StatusOK},
		{"viewport", http.MethodPut, "/viewport", `{"width":800,"height":600}`, http.StatusOK},
		{"bad viewport", http.MethodPut, "/viewport", `{"width":0,"height":600}`, http.StatusBadRequest},
		{"zoom", http.MethodPost, "/zoom", `{"factor":2,"x":400,"y":300}`, http.StatusOK},
		{"bad zoom", http.MethodPost, "/zoom", `{"factor":0}`, http.StatusBadRequest},
		{"fit", http.MethodPost, "/fit", "", http.StatusOK},
		{"drag start", http.MethodPost, "/drag", `{"id":1,"phase":"start"}`, http.StatusOK},
		{"drag move", http.MethodPost, "/drag", `{"id":1,"x":10,"y":20,"phase":"move"}`, http.StatusOK},
		{"drag end", http.MethodPost, "/drag", `{"id":1,"phase":"end"}`, http.StatusOK},
		{"drag bad phase", http.MethodPost, "/drag", `{"id":1,"phase":"fling"}`, http.StatusBadRequest},
		{"bad json", http.MethodPut, "/search", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env, _ := do(t, ts, tt.method, base+tt.path, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d (%+v)", status, tt.status, env)
			}
			if ok := status == http.StatusOK; env.Success != ok {
				t.Errorf("success = %v, want %v", env.Success, ok)
			}
		})
	}

	_, env, _ := do(t, ts, http.MethodGet, base, "")
	var summary struct {
		Layout string `json:"layout"`
		Search string `json:"search"`
	}
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Layout != layout.NameForce || summary.Search != "div" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	id := openTab(t, ts)
	base := "/api/visualizer/" + id
	do(t, ts, http.MethodPost, base+"/visualize", payload)

	status, env, header := do(t, ts, http.MethodGet, base+"/export/json", "")
	if status != http.StatusOK {
		t.Fatalf("export status = %d", status)
	}
	if got := header.Get("Content-Disposition"); got != `attachment; filename="dom-graph.json"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !bytes.Contains(env.Data, []byte(`"document"`)) {
		t.Errorf("export body missing root node: %s", env.Data)
	}

	status, env, _ = do(t, ts, http.MethodGet, base+"/export/csv", "")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("csv export = %d %+v", status, env)
	}
	var files []struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(env.Data, &files); err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Filename != "dom-nodes.csv" || files[1].Filename != "dom-edges.csv" {
		t.Errorf("csv files = %+v", files)
	}

	if status, _, _ := do(t, ts, http.MethodGet, base+"/export/bmp", ""); status != http.StatusBadRequest {
		t.Errorf("bad format status = %d, want 400", status)
	}
	if status, _, _ := do(t, ts, http.MethodGet, base+"/export/json?scope=everything", ""); status != http.StatusBadRequest {
		t.Errorf("bad scope status = %d, want 400", status)
	}
}

func TestCloseTab(t *testing.T) {
	ts := newTestServer(t)
	id := openTab(t, ts)

	if status, _, _ := do(t, ts, http.MethodDelete, "/api/visualizer/"+id, ""); status != http.StatusOK {
		t.Fatalf("close status = %d", status)
	}
	if status, _, _ := do(t, ts, http.MethodGet, "/api/visualizer/"+id+"/frame", ""); status != http.StatusNotFound {
		t.Errorf("frame after close = %d, want 404", status)
	}
	if status, env, _ := do(t, ts, http.MethodPost, "/api/visualize", payload); status != http.StatusNotFound {
		t.Errorf("relay after close = %d %+v", status, env)
	}
	if next := openTab(t, ts); next == id {
		t.Error("reopen returned the closed tab id")
	}
}
