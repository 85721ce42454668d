package common

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSubmitParamsJSON(t *testing.T) {
	p := SubmitParams{
		Backend:  "sim1q",
		Name:     "rabi-sweep",
		Qobj:     json.RawMessage(`{"qobj_id":"abc","type":"PULSE"}`),
		Priority: 2,
		Every:    "0 * * * *",
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out SubmitParams
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Backend != p.Backend || out.Name != p.Name || out.Every != p.Every {
		t.Fatalf("unexpected round trip: %+v", out)
	}
	if string(out.Qobj) != string(p.Qobj) {
		t.Fatalf("qobj payload altered: %s", out.Qobj)
	}
}

func TestJobInfoJSONKeys(t *testing.T) {
	info := JobInfo{
		JobId:       "j1",
		Backend:     "sim1q",
		Status:      "DONE",
		Shots:       1024,
		SubmittedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"job_id", "backend", "status", "shots", "submitted_at"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in payload, got %s", key, b)
		}
	}
	if _, ok := raw["error"]; ok {
		t.Errorf("expected empty error to be omitted, got %s", b)
	}
}

func TestRunningResponseOmitsZeroFields(t *testing.T) {
	ev := RunningResponse{
		JobId:  "j1",
		Action: JobQueued,
		Status: "QUEUED",
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"total_shots", "completed_shots", "error", "experiments"} {
		if _, ok := raw[key]; ok {
			t.Errorf("expected %q omitted for zero value, got %s", key, b)
		}
	}
	if raw["action"] != string(JobQueued) {
		t.Errorf("expected action %q, got %v", JobQueued, raw["action"])
	}
}
