package program

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// Attribute evaluation helpers. Every helper reports failures as hcl
// diagnostics carrying the expression's source range.

func attrString(content *hcl.BodyContent, name string, ctx *hcl.EvalContext) (string, error) {
	attr, ok := content.Attributes[name]
	if !ok {
		return "", nil
	}
	return exprString(attr.Expr, ctx)
}

func attrInt(content *hcl.BodyContent, name string, ctx *hcl.EvalContext, def int) (int, error) {
	attr, ok := content.Attributes[name]
	if !ok {
		return def, nil
	}
	return exprInt(attr.Expr, ctx)
}

func attrChannel(content *hcl.BodyContent, name string, ctx *hcl.EvalContext) (pulse.Channel, error) {
	return exprChannel(content.Attributes[name].Expr, ctx)
}

func attrWaveform(content *hcl.BodyContent, name string, ctx *hcl.EvalContext) (*pulse.Waveform, error) {
	attr := content.Attributes[name]
	val, diags := attr.Expr.Value(ctx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w", name, diags)
	}
	if !val.Type().Equals(waveformType) {
		return nil, diagErr(attr.Range.Ptr(), "invalid waveform",
			fmt.Sprintf("%s must be a waveform expression, got %s", name, val.Type().FriendlyName()))
	}
	return val.EncapsulatedValue().(*pulse.Waveform), nil
}

func exprString(expr hcl.Expression, ctx *hcl.EvalContext) (string, error) {
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.Type() != cty.String {
		return "", diagErr(expr.Range().Ptr(), "invalid value",
			"expected a string, got "+val.Type().FriendlyName())
	}
	return val.AsString(), nil
}

func exprInt(expr hcl.Expression, ctx *hcl.EvalContext) (int, error) {
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.Type() != cty.Number {
		return 0, diagErr(expr.Range().Ptr(), "invalid value",
			"expected a number, got "+val.Type().FriendlyName())
	}
	n, _ := val.AsBigFloat().Int64()
	return int(n), nil
}

func exprFloat(expr hcl.Expression, ctx *hcl.EvalContext) (float64, error) {
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.Type() != cty.Number {
		return 0, diagErr(expr.Range().Ptr(), "invalid value",
			"expected a number, got "+val.Type().FriendlyName())
	}
	f, _ := val.AsBigFloat().Float64()
	return f, nil
}

func exprChannel(expr hcl.Expression, ctx *hcl.EvalContext) (pulse.Channel, error) {
	raw, err := exprString(expr, ctx)
	if err != nil {
		return pulse.Channel{}, err
	}
	ch, err := pulse.ParseChannel(raw)
	if err != nil {
		return pulse.Channel{}, diagErr(expr.Range().Ptr(), "invalid channel", err.Error())
	}
	return ch, nil
}
