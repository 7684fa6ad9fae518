package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"polisee/internal/config"
	"polisee/internal/domain"
	"polisee/internal/engine"
	"polisee/internal/gateway"
	"polisee/internal/ledger"
	"polisee/internal/seed"
	"polisee/internal/store"
)

type stubGateway struct {
	generated string
	result    domain.Evaluation
}

func (g stubGateway) Generate(ctx context.Context, task domain.Task) (string, error) {
	return g.generated, nil
}

func (g stubGateway) Evaluate(ctx context.Context, task domain.Task, rubric domain.Rubric, responseText string) (domain.Evaluation, error) {
	return g.result, nil
}

type testServer struct {
	URL    string
	Store  *store.Store
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T, gw gateway.Gateway) *testServer {
	t.Helper()
	st := store.New(store.Empty())
	clock := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	if _, err := seed.Apply(st, nil, clock); err != nil {
		t.Fatalf("seed: %v", err)
	}
	eng := engine.New(st, nil)
	eng.Now = clock
	eng.Ledger = ledger.Writer{Now: clock}
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	handler, err := New(Config{Engine: eng, Store: st, Gateway: gw, AppCfg: cfg, BasePath: "/v0"})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Store:  st,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
		},
	}
	t.Cleanup(testSrv.Close)
	return testSrv
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func TestHealthAndStatus(t *testing.T) {
	srv := newTestServer(t, nil)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, data)
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/status", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, data)
	}
	var status StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.SchemaVersion != domain.SchemaVersion {
		t.Errorf("schema = %q", status.SchemaVersion)
	}
	if status.Counts["tasks"] != 2 || status.Counts["rubrics"] != 1 {
		t.Errorf("seeded counts = %v", status.Counts)
	}
}

func TestCreateAndGetTask(t *testing.T) {
	srv := newTestServer(t, nil)
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title":       "Transit Fare Reform",
		"domain":      "transportation",
		"prompt_text": "Draft a memo.",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, data)
	}
	var created domain.Task
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Title != "Transit Fare Reform" || created.Domain != domain.DomainTransportation {
		t.Errorf("created = %+v", created)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks/"+created.ID, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get status %d: %s", res.StatusCode, data)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks/t-missing", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing task status %d: %s", res.StatusCode, data)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v", err)
	}
	if envelope.Error.Code != "not_found" {
		t.Errorf("error code = %q", envelope.Error.Code)
	}
}

func TestUpdateTaskMerge(t *testing.T) {
	srv := newTestServer(t, nil)
	res, data := doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/tasks/t-1", map[string]any{
		"title": "Zoning Reform v2",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("patch status %d: %s", res.StatusCode, data)
	}
	var updated domain.Task
	if err := json.Unmarshal(data, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Zoning Reform v2" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Domain != domain.DomainHousing {
		t.Errorf("untouched domain changed: %q", updated.Domain)
	}
}

func TestGenerateAndScoreFlow(t *testing.T) {
	gw := stubGateway{
		generated: "**TO:** Council\n### **Executive Summary**\nDo the thing.",
		result: domain.Evaluation{
			Scores:    map[string]float64{"c-1": 4, "c-2": 3},
			Notes:     "Strong memo.",
			Rationale: "Meets both criteria.",
		},
	}
	srv := newTestServer(t, gw)

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/t-1/generate", nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("generate status %d: %s", res.StatusCode, data)
	}
	var response domain.Response
	if err := json.Unmarshal(data, &response); err != nil {
		t.Fatal(err)
	}
	if response.TaskID != "t-1" || response.Text != gw.generated {
		t.Errorf("response = %+v", response)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/responses/"+response.ID+"/reviews", map[string]any{
		"rubric_id": "r-1",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("score status %d: %s", res.StatusCode, data)
	}
	var review domain.Review
	if err := json.Unmarshal(data, &review); err != nil {
		t.Fatal(err)
	}
	if review.ResponseID != response.ID || review.RubricID != "r-1" {
		t.Errorf("review = %+v", review)
	}
	if review.Scores["c-1"] != 4 {
		t.Errorf("scores = %v", review.Scores)
	}

	// seed + generate + review
	events := srv.Store.Ledger()
	if len(events) != 3 {
		t.Fatalf("ledger = %d, want 3", len(events))
	}
	if events[1].Type != domain.EventGenerateResponse || events[2].Type != domain.EventScoreResponse {
		t.Errorf("event types: %q %q", events[1].Type, events[2].Type)
	}
}

func TestGenerateWithoutGateway(t *testing.T) {
	srv := newTestServer(t, nil)
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/t-1/generate", nil)
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d: %s", res.StatusCode, data)
	}
}

func TestLedgerEndpointNewestFirst(t *testing.T) {
	srv := newTestServer(t, nil)
	doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{"title": "A"})
	doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{"title": "B"})

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/ledger?limit=2", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("ledger status %d: %s", res.StatusCode, data)
	}
	var events []domain.LedgerEvent
	if err := json.Unmarshal(data, &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Summary != "Created task: B" || events[1].Summary != "Created task: A" {
		t.Errorf("order: %q, %q", events[0].Summary, events[1].Summary)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/export", map[string]any{"format": "json"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("export status %d: %s", res.StatusCode, data)
	}
	var out ExportResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Path == "" || out.Event.Type != domain.EventExportDataset {
		t.Errorf("export = %+v", out)
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/export", map[string]any{"format": "xml"})
	if res.StatusCode == http.StatusCreated {
		t.Fatalf("bad format accepted: %s", data)
	}
}
