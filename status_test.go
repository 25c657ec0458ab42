package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatusEndpoint(t *testing.T) {
	evDeviceSelected.Set("/dev/input/event5")
	evConnected.Set(1)
	inputs := evInputs.Value()
	evInputs.Add(3)
	t.Cleanup(func() { evConnected.Set(0) })

	r := newStatusRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /status = %d, want 200", rec.Code)
	}
	var got statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Device != "/dev/input/event5" || !got.Connected || got.Inputs != inputs+3 {
		t.Errorf("status = %+v", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	var vars map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &vars); err != nil {
		t.Fatalf("decode /debug/vars: %v", err)
	}
	if _, ok := vars["events_dispatched"]; !ok {
		t.Errorf("/debug/vars lacks events_dispatched")
	}
}

func TestCurrentStatusLastInput(t *testing.T) {
	now := time.Now()
	evLastInputMS.Set(now.Add(-1500 * time.Millisecond).UnixMilli())
	t.Cleanup(func() { evLastInputMS.Set(0) })
	if got := currentStatus(now).LastInputAgo; got != "1.5s" {
		t.Errorf("LastInputAgo = %q, want 1.5s", got)
	}
}
