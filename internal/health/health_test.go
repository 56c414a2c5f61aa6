package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func readyz(t *testing.T, h *Handler) (int, result) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest("GET", "/readyz", nil))
	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return rec.Code, body
}

func TestHealthz_AlwaysReturns200(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Healthz(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestReadyz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	tests := []struct {
		name       string
		checkers   []Checker
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "no checkers",
			wantStatus: http.StatusOK,
			wantChecks: nil,
		},
		{
			name:       "all pass",
			checkers:   []Checker{{Name: "catalog", Check: ok}, {Name: "post_db_load", Check: ok}},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"catalog": "ok", "post_db_load": "ok"},
		},
		{
			name: "one fails",
			checkers: []Checker{
				{Name: "catalog", Check: ok},
				{Name: "post_db_load", Check: func(context.Context) error { return errors.New("missing items record") }},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"catalog": "ok", "post_db_load": "fail: missing items record"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := readyz(t, New(tt.checkers...))
			if code != tt.wantStatus {
				t.Errorf("status = %d, want %d", code, tt.wantStatus)
			}
			wantStatus := "ok"
			if tt.wantStatus != http.StatusOK {
				wantStatus = "fail"
			}
			if body.Status != wantStatus {
				t.Errorf("body status = %q, want %q", body.Status, wantStatus)
			}
			if len(body.Checks) != len(tt.wantChecks) {
				t.Errorf("checks = %v, want %v", body.Checks, tt.wantChecks)
			}
			for k, v := range tt.wantChecks {
				if body.Checks[k] != v {
					t.Errorf("check %s = %q, want %q", k, body.Checks[k], v)
				}
			}
		})
	}
}

func TestReadyz_RespectsContextCancellation(t *testing.T) {
	h := New(Checker{Name: "slow", Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest("GET", "/readyz", nil).WithContext(ctx))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestGate(t *testing.T) {
	g := NewGate("post_server_load")
	if err := g.Err(); !errors.Is(err, ErrPending) {
		t.Fatalf("new gate Err = %v, want ErrPending", err)
	}

	h := New(g.Checker())
	if code, body := readyz(t, h); code != http.StatusServiceUnavailable || body.Checks["post_server_load"] != "fail: pending" {
		t.Errorf("pending gate: %d %v", code, body.Checks)
	}

	g.Pass()
	if code, _ := readyz(t, h); code != http.StatusOK {
		t.Errorf("passed gate status = %d", code)
	}

	boom := errors.New("boom")
	g.Fail(boom)
	if err := g.Err(); !errors.Is(err, boom) {
		t.Errorf("failed gate Err = %v, want wrapping boom", err)
	}
	if _, body := readyz(t, h); body.Checks["post_server_load"] != "fail: post_server_load: boom" {
		t.Errorf("failed gate check = %q", body.Checks["post_server_load"])
	}
}

func TestRegister_RoutesWork(t *testing.T) {
	mux := http.NewServeMux()
	New(Checker{Name: "test", Check: func(context.Context) error { return nil }}).Register(mux)

	for _, path := range []string{"/healthz", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
		})
	}
}
