package mockserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/leads/internal/model"
	"github.com/Makepad-fr/leads/internal/store/jsonstore"
)

func quietLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

func newServer(t *testing.T, leads []model.Lead) *Server {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fixture.json")
	if err := jsonstore.Save(p, leads); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	s, err := New(Options{Fixture: p, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServesFixture(t *testing.T) {
	want := []model.Lead{
		{ID: 1, CompanyName: "Acme", CompanyLocation: "Lyon", Source: "web", Date: "2024-01-01"},
		{ID: 2, CompanyName: "Initech", CompanyLocation: "Lille", Source: "fair", Date: "2024-01-02", StatusName: model.Str("New")},
	}
	s := newServer(t, want)

	rec := get(t, s.Handler(), LeadsPath)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []model.Lead
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("served leads mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingFixtureServesEmptyArray(t *testing.T) {
	s, err := New(Options{Fixture: filepath.Join(t.TempDir(), "none.json"), Logger: quietLogger()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec := get(t, s.Handler(), LeadsPath)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected [], got %q", rec.Body.String())
	}
}

func TestFailStatus(t *testing.T) {
	s := newServer(t, []model.Lead{{ID: 1}})
	s.SetFailStatus(http.StatusServiceUnavailable)

	if rec := get(t, s.Handler(), LeadsPath); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	s.SetFailStatus(0)
	if rec := get(t, s.Handler(), LeadsPath); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after clearing failure, got %d", rec.Code)
	}
}

func TestMetricsEndpointCountsLeadRequests(t *testing.T) {
	s := newServer(t, nil)
	get(t, s.Handler(), LeadsPath)
	s.SetFailStatus(http.StatusInternalServerError)
	get(t, s.Handler(), LeadsPath)

	rec := get(t, s.Handler(), MetricsPath)
	body := rec.Body.String()
	for _, want := range []string{
		`leads_fixture_requests_total{status="200"} 1`,
		`leads_fixture_requests_total{status="500"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "leads_fetch_") {
		t.Fatalf("fixture server should not expose client fetch metrics:\n%s", body)
	}
}

func TestBadFixtureFailsConstruction(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(p, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Options{Fixture: p, Logger: quietLogger()}); err == nil {
		t.Fatal("expected error for invalid fixture")
	}
}
