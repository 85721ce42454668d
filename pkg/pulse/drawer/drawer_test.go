package drawer

import (
	"strings"
	"testing"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

func drawnSchedule(t *testing.T) *pulse.Schedule {
	t.Helper()
	sched := pulse.NewSchedule("drawertest")
	gauss, err := pulse.Gaussian(160, 0.3, 40, &pulse.WaveformOpts{Name: "xpulse"})
	if err != nil {
		t.Fatalf("unexpected gaussian error: %v", err)
	}
	play, err := pulse.NewPlay(gauss, pulse.DriveChannel(0))
	if err != nil {
		t.Fatalf("unexpected play error: %v", err)
	}
	if err := sched.Insert(0, play); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	fc, err := pulse.NewShiftPhase(0.5, pulse.DriveChannel(0))
	if err != nil {
		t.Fatalf("unexpected shift phase error: %v", err)
	}
	if err := sched.Insert(160, fc); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	acq, err := pulse.NewAcquire(800, pulse.AcquireChannel(0), pulse.MemorySlot(0))
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	if err := sched.Insert(160, acq); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	return sched
}

// TestSVGRendererOutput verifies the SVG document carries a lane per
// channel and a waveform envelope for the play.
func TestSVGRendererOutput(t *testing.T) {
	var sb strings.Builder
	if err := NewSVGRenderer().Render(drawnSchedule(t), &sb); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "<svg") {
		t.Fatalf("expected an SVG document, got:\n%.80s", out)
	}
	for _, want := range []string{"d0", "a0", "mem0", "<polyline", "acquire 800 @160"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected SVG to contain %q, got:\n%s", want, out)
		}
	}
}

// TestDOTRendererOutput verifies the DOT graph is a digraph with channel
// head nodes and chained instruction nodes.
func TestDOTRendererOutput(t *testing.T) {
	var sb strings.Builder
	if err := NewDOTRenderer().Render(drawnSchedule(t), &sb); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "strict digraph") {
		t.Fatalf("expected a strict digraph, got:\n%.80s", out)
	}
	for _, want := range []string{`"d0"`, `"a0"`, "xpulse", "acquire", "->"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected DOT to contain %q, got:\n%s", want, out)
		}
	}
}

// TestDOTRendererDeterministic verifies two renders of the same schedule
// produce identical output despite map-backed adjacency.
func TestDOTRendererDeterministic(t *testing.T) {
	sched := drawnSchedule(t)
	var a, b strings.Builder
	if err := NewDOTRenderer().Render(sched, &a); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if err := NewDOTRenderer().Render(sched, &b); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if a.String() != b.String() {
		t.Fatal("expected deterministic DOT output")
	}
}

// TestSVGEmptySchedule verifies rendering an empty schedule succeeds.
func TestSVGEmptySchedule(t *testing.T) {
	var sb strings.Builder
	if err := NewSVGRenderer().Render(pulse.NewSchedule("void"), &sb); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if !strings.Contains(sb.String(), "void") {
		t.Fatal("expected title with schedule name")
	}
}
