package program

import (
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/cjliu20152/qiskit/internal/wavescript"
	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// waveformType carries a *pulse.Waveform through cty expression
// evaluation.
var waveformType = cty.Capsule("waveform", reflect.TypeOf(pulse.Waveform{}))

// waveformFunctions builds the function table available in program
// expressions. Parametric shapes mirror pkg/pulse's library; script()
// delegates to the wavescript engine with paths resolved against
// baseDir.
func waveformFunctions(scripts *wavescript.Engine, baseDir string) map[string]function.Function {
	return map[string]function.Function{
		"gaussian":        gaussianFunc(),
		"gaussian_square": gaussianSquareFunc(),
		"drag":            dragFunc(),
		"constant":        constantFunc(),
		"samples":         samplesFunc(),
		"script":          scriptFunc(scripts, baseDir),
	}
}

func gaussianFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "duration", Type: cty.Number},
			{Name: "amp", Type: cty.DynamicPseudoType},
			{Name: "sigma", Type: cty.Number},
		},
		Type: function.StaticReturnType(waveformType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			dur := int64Arg(args[0])
			amp, err := complexArg(args[1])
			if err != nil {
				return cty.NilVal, err
			}
			sigma := floatArg(args[2])
			w, err := pulse.Gaussian(dur, amp, sigma, nil)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.CapsuleVal(waveformType, w), nil
		},
	})
}

func gaussianSquareFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "duration", Type: cty.Number},
			{Name: "amp", Type: cty.DynamicPseudoType},
			{Name: "sigma", Type: cty.Number},
			{Name: "width", Type: cty.Number},
		},
		Type: function.StaticReturnType(waveformType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			dur := int64Arg(args[0])
			amp, err := complexArg(args[1])
			if err != nil {
				return cty.NilVal, err
			}
			w, err := pulse.GaussianSquare(dur, amp, floatArg(args[2]), int64Arg(args[3]), nil)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.CapsuleVal(waveformType, w), nil
		},
	})
}

func dragFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "duration", Type: cty.Number},
			{Name: "amp", Type: cty.DynamicPseudoType},
			{Name: "sigma", Type: cty.Number},
			{Name: "beta", Type: cty.Number},
		},
		Type: function.StaticReturnType(waveformType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			dur := int64Arg(args[0])
			amp, err := complexArg(args[1])
			if err != nil {
				return cty.NilVal, err
			}
			w, err := pulse.Drag(dur, amp, floatArg(args[2]), floatArg(args[3]), nil)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.CapsuleVal(waveformType, w), nil
		},
	})
}

func constantFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "duration", Type: cty.Number},
			{Name: "amp", Type: cty.DynamicPseudoType},
		},
		Type: function.StaticReturnType(waveformType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			amp, err := complexArg(args[1])
			if err != nil {
				return cty.NilVal, err
			}
			w, err := pulse.Constant(int64Arg(args[0]), amp, nil)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.CapsuleVal(waveformType, w), nil
		},
	})
}

// samplesFunc wraps a literal sample list. Elements are numbers or
// [re, im] pairs, matching the wavescript return convention.
func samplesFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "values", Type: cty.DynamicPseudoType},
		},
		Type: function.StaticReturnType(waveformType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if !args[0].CanIterateElements() {
				return cty.NilVal, fmt.Errorf("samples() expects a list")
			}
			var out []complex128
			for it := args[0].ElementIterator(); it.Next(); {
				_, el := it.Element()
				c, err := complexArg(el)
				if err != nil {
					return cty.NilVal, err
				}
				out = append(out, c)
			}
			w, err := pulse.NewWaveform(out, nil)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.CapsuleVal(waveformType, w), nil
		},
	})
}

// scriptFunc evaluates script(path, n) or script(path, n, {param = v}).
func scriptFunc(scripts *wavescript.Engine, baseDir string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
			{Name: "n", Type: cty.Number},
		},
		VarParam: &function.Parameter{Name: "params", Type: cty.DynamicPseudoType},
		Type:     function.StaticReturnType(waveformType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			path := args[0].AsString()
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			n := int64Arg(args[1])
			params := map[string]float64{}
			if len(args) > 2 {
				obj := args[2]
				if !obj.CanIterateElements() {
					return cty.NilVal, fmt.Errorf("script() params must be an object of numbers")
				}
				for it := obj.ElementIterator(); it.Next(); {
					k, v := it.Element()
					if v.Type() != cty.Number {
						return cty.NilVal, fmt.Errorf("script() param %s is not a number", k.AsString())
					}
					params[k.AsString()], _ = v.AsBigFloat().Float64()
				}
			}
			w, err := scripts.Waveform(path, n, params, nil)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.CapsuleVal(waveformType, w), nil
		},
	})
}

func int64Arg(v cty.Value) int64 {
	n, _ := v.AsBigFloat().Int64()
	return n
}

func floatArg(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}

// complexArg accepts a bare number (real amplitude) or a two-element
// list [re, im].
func complexArg(v cty.Value) (complex128, error) {
	if v.Type() == cty.Number {
		return complex(floatArg(v), 0), nil
	}
	if v.CanIterateElements() && v.LengthInt() == 2 {
		parts := make([]float64, 0, 2)
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			if el.Type() != cty.Number {
				return 0, fmt.Errorf("amplitude parts must be numbers")
			}
			parts = append(parts, floatArg(el))
		}
		return complex(parts[0], parts[1]), nil
	}
	return 0, fmt.Errorf("amplitude must be a number or [re, im] pair, got %s", v.Type().FriendlyName())
}
