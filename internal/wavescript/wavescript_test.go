package wavescript

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/spf13/afero"
)

func writeScript(t *testing.T, fs afero.Fs, path, src string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(src), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func TestEvalRealEnvelope(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeScript(t, fs, "/scripts/ramp.js", `
exports.samples = function(n, params) {
	var out = [];
	for (var i = 0; i < n; i++) {
		out.push(params.amp * i / (n - 1));
	}
	return out;
};`)
	eng := NewEngine(fs, nil)
	samples, err := eng.Eval("/scripts/ramp.js", 5, map[string]float64{"amp": 0.5})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
	if real(samples[4]) != 0.5 {
		t.Errorf("expected last sample 0.5, got %v", samples[4])
	}
	if imag(samples[2]) != 0 {
		t.Errorf("expected real envelope, got imag %v", imag(samples[2]))
	}
}

func TestEvalComplexPairs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeScript(t, fs, "/scripts/spiral.js", `
exports.samples = function(n, params) {
	var out = [];
	for (var i = 0; i < n; i++) {
		var phi = 2 * Math.PI * i / n;
		out.push([0.3 * Math.cos(phi), 0.3 * Math.sin(phi)]);
	}
	return out;
};`)
	eng := NewEngine(fs, nil)
	samples, err := eng.Eval("/scripts/spiral.js", 8, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	for i, s := range samples {
		if math.Abs(cmplx.Abs(s)-0.3) > 1e-9 {
			t.Fatalf("sample %d: expected norm 0.3, got %v", i, cmplx.Abs(s))
		}
	}
}

func TestEvalRequireSiblingModule(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeScript(t, fs, "/scripts/shapes.js", `
exports.constant = function(n, amp) {
	var out = [];
	for (var i = 0; i < n; i++) out.push(amp);
	return out;
};`)
	writeScript(t, fs, "/scripts/flat.js", `
var shapes = require("/scripts/shapes.js");
exports.samples = function(n, params) {
	return shapes.constant(n, 0.25);
};`)
	eng := NewEngine(fs, nil)
	samples, err := eng.Eval("/scripts/flat.js", 4, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	for _, s := range samples {
		if real(s) != 0.25 {
			t.Fatalf("expected 0.25, got %v", s)
		}
	}
}

func TestEvalCountMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeScript(t, fs, "/bad.js", `
exports.samples = function(n, params) { return [0.1, 0.2]; };`)
	eng := NewEngine(fs, nil)
	_, err := eng.Eval("/bad.js", 7, nil)
	if !errors.Is(err, ErrSampleCountMismatch) {
		t.Fatalf("expected ErrSampleCountMismatch, got %v", err)
	}
}

func TestEvalMissingExport(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeScript(t, fs, "/none.js", `exports.other = 1;`)
	eng := NewEngine(fs, nil)
	_, err := eng.Eval("/none.js", 4, nil)
	if !errors.Is(err, ErrNoSamplesExport) {
		t.Fatalf("expected ErrNoSamplesExport, got %v", err)
	}
}

func TestEvalMissingScript(t *testing.T) {
	eng := NewEngine(afero.NewMemMapFs(), nil)
	_, err := eng.Eval("/nope.js", 4, nil)
	if !errors.Is(err, ErrScriptLoad) {
		t.Fatalf("expected ErrScriptLoad, got %v", err)
	}
}

func TestEvalBadShape(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeScript(t, fs, "/shape.js", `
exports.samples = function(n, params) { return "not an array"; };`)
	eng := NewEngine(fs, nil)
	_, err := eng.Eval("/shape.js", 4, nil)
	if !errors.Is(err, ErrBadReturnShape) {
		t.Fatalf("expected ErrBadReturnShape, got %v", err)
	}
}

func TestEvalBadCount(t *testing.T) {
	eng := NewEngine(afero.NewMemMapFs(), nil)
	if _, err := eng.Eval("/x.js", 0, nil); !errors.Is(err, ErrBadSampleCount) {
		t.Fatalf("expected ErrBadSampleCount for n=0, got %v", err)
	}
	if _, err := eng.Eval("/x.js", MaxSamples+1, nil); !errors.Is(err, ErrBadSampleCount) {
		t.Fatalf("expected ErrBadSampleCount for oversized n, got %v", err)
	}
}

func TestWaveformValidatesAmplitude(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeScript(t, fs, "/hot.js", `
exports.samples = function(n, params) {
	var out = [];
	for (var i = 0; i < n; i++) out.push(1.5);
	return out;
};`)
	eng := NewEngine(fs, nil)
	if _, err := eng.Waveform("/hot.js", 4, nil, nil); err == nil {
		t.Fatal("expected amplitude validation error, got nil")
	}
}

func TestWaveformDefaultName(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeScript(t, fs, "/lib/custom.js", `
exports.samples = function(n, params) {
	var out = [];
	for (var i = 0; i < n; i++) out.push(0.1);
	return out;
};`)
	eng := NewEngine(fs, nil)
	w, err := eng.Waveform("/lib/custom.js", 16, nil, nil)
	if err != nil {
		t.Fatalf("Waveform: %v", err)
	}
	if w.Name() != "custom" {
		t.Errorf("expected waveform name %q, got %q", "custom", w.Name())
	}
	if w.Len() != 16 {
		t.Errorf("expected 16 samples, got %d", w.Len())
	}
}
