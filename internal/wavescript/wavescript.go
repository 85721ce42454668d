// Package wavescript evaluates user-defined waveform generator scripts.
// A script is a JavaScript module that exports a samples(n, params)
// function returning an array of [re, im] pairs (or plain numbers for
// purely real envelopes). The returned envelope is validated against
// the same amplitude rules as every built-in waveform.
package wavescript

import (
	"fmt"
	"path/filepath"

	"github.com/dop251/goja"
	requirePkg "github.com/dop251/goja_nodejs/require"
	"github.com/spf13/afero"

	"github.com/cjliu20152/qiskit/pkg/logger"
	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// ExportName is the function a waveform script must export.
const ExportName = "samples"

// MaxSamples bounds the envelope length a script may return.
const MaxSamples = 1 << 20

// Engine loads and runs waveform scripts from a filesystem. Scripts may
// require sibling modules; resolution stays inside the engine's fs.
type Engine struct {
	fs  afero.Fs
	log logger.Logger
}

// NewEngine creates a script engine reading from fs. A nil fs means the
// host filesystem.
func NewEngine(fs afero.Fs, l logger.Logger) *Engine {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Engine{fs: fs, log: l}
}

// Eval runs the script at path and returns the envelope its exported
// samples(n, params) function produces. Each script run gets a fresh
// runtime, so scripts cannot leak state into each other.
func (e *Engine) Eval(path string, n int64, params map[string]float64) ([]complex128, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n = %d", ErrBadSampleCount, n)
	}
	if n > MaxSamples {
		return nil, fmt.Errorf("%w: n = %d exceeds %d", ErrBadSampleCount, n, MaxSamples)
	}
	fn, rt, err := e.load(path)
	if err != nil {
		return nil, err
	}
	arg := rt.NewObject()
	for k, v := range params {
		if err := arg.Set(k, v); err != nil {
			return nil, fmt.Errorf("script %s: set param %s: %w", path, k, err)
		}
	}
	v, err := fn(goja.Undefined(), rt.ToValue(n), arg)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	samples, err := exportSamples(v)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	if int64(len(samples)) != n {
		return nil, fmt.Errorf("script %s: %w: asked for %d, got %d",
			path, ErrSampleCountMismatch, n, len(samples))
	}
	return samples, nil
}

// Waveform evaluates the script and wraps the envelope in a validated
// Waveform. The waveform name defaults to the script's base name.
func (e *Engine) Waveform(path string, n int64, params map[string]float64, opts *pulse.WaveformOpts) (*pulse.Waveform, error) {
	samples, err := e.Eval(path, n, params)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		base := filepath.Base(path)
		name := base[:len(base)-len(filepath.Ext(base))]
		opts = &pulse.WaveformOpts{Name: name}
	}
	return pulse.NewWaveform(samples, opts)
}

// load builds a runtime, requires the script as a module and resolves
// its exported samples function.
func (e *Engine) load(path string) (goja.Callable, *goja.Runtime, error) {
	registry := requirePkg.NewRegistry(requirePkg.WithLoader(e.sourceLoader))
	rt := goja.New()
	req := registry.Enable(rt)
	if err := rt.Set("print", e.print); err != nil {
		return nil, nil, err
	}
	module, err := req.Require(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrScriptLoad, path, err)
	}
	exports := module.ToObject(rt)
	fnVal := exports.Get(ExportName)
	if fnVal == nil {
		return nil, nil, fmt.Errorf("%w: %s does not export %q", ErrNoSamplesExport, path, ExportName)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s exports %q but it is not a function",
			ErrNoSamplesExport, path, ExportName)
	}
	return fn, rt, nil
}

// sourceLoader adapts the engine's afero fs to the require registry.
func (e *Engine) sourceLoader(path string) ([]byte, error) {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return nil, requirePkg.ModuleFileDoesNotExistError
	}
	return data, nil
}

// print is exposed to scripts for debugging; output goes through the
// engine's logger rather than stdout.
func (e *Engine) print(call goja.FunctionCall) goja.Value {
	args := make([]interface{}, 0, len(call.Arguments))
	for _, v := range call.Arguments {
		args = append(args, v.Export())
	}
	e.log.Info("wavescript: %v", args)
	return goja.Undefined()
}

// exportSamples converts a script return value into complex samples.
// Accepted element shapes: [re, im] pairs or bare numbers.
func exportSamples(v goja.Value) ([]complex128, error) {
	exported := v.Export()
	arr, ok := exported.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrBadReturnShape, exported)
	}
	samples := make([]complex128, 0, len(arr))
	for i, el := range arr {
		switch t := el.(type) {
		case []interface{}:
			if len(t) != 2 {
				return nil, fmt.Errorf("%w: element %d has %d parts, want 2", ErrBadReturnShape, i, len(t))
			}
			re, okRe := toFloat(t[0])
			im, okIm := toFloat(t[1])
			if !okRe || !okIm {
				return nil, fmt.Errorf("%w: element %d is not numeric", ErrBadReturnShape, i)
			}
			samples = append(samples, complex(re, im))
		default:
			re, ok := toFloat(el)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", ErrBadReturnShape, i, el)
			}
			samples = append(samples, complex(re, 0))
		}
	}
	return samples, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}
