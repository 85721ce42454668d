package program

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "program", LabelNames: []string{"name"}},
	},
}

var programSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "backend", Required: true},
		{Name: "shots"},
		{Name: "meas_level"},
		{Name: "meas_return"},
		{Name: "seed"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "schedule", LabelNames: []string{"name"}},
	},
}

// scheduleSchema lists one block type per instruction. Blocks compile
// in source order, so a schedule file reads top to bottom like the
// pulse sequence it produces.
var scheduleSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "play"},
		{Type: "delay"},
		{Type: "set_frequency"},
		{Type: "shift_frequency"},
		{Type: "set_phase"},
		{Type: "shift_phase"},
		{Type: "acquire"},
		{Type: "barrier"},
	},
}

var instructionSchemas = map[string]*hcl.BodySchema{
	"play": {
		Attributes: []hcl.AttributeSchema{
			{Name: "channel", Required: true},
			{Name: "waveform", Required: true},
			{Name: "at"},
		},
	},
	"delay": {
		Attributes: []hcl.AttributeSchema{
			{Name: "channel", Required: true},
			{Name: "duration", Required: true},
			{Name: "at"},
		},
	},
	"set_frequency": {
		Attributes: []hcl.AttributeSchema{
			{Name: "channel", Required: true},
			{Name: "frequency", Required: true},
			{Name: "at"},
		},
	},
	"shift_frequency": {
		Attributes: []hcl.AttributeSchema{
			{Name: "channel", Required: true},
			{Name: "delta", Required: true},
			{Name: "at"},
		},
	},
	"set_phase": {
		Attributes: []hcl.AttributeSchema{
			{Name: "channel", Required: true},
			{Name: "phase", Required: true},
			{Name: "at"},
		},
	},
	"shift_phase": {
		Attributes: []hcl.AttributeSchema{
			{Name: "channel", Required: true},
			{Name: "phase", Required: true},
			{Name: "at"},
		},
	},
	"acquire": {
		Attributes: []hcl.AttributeSchema{
			{Name: "channel", Required: true},
			{Name: "memory_slot", Required: true},
			{Name: "register_slot"},
			{Name: "duration", Required: true},
			{Name: "at"},
		},
	},
	"barrier": {
		Attributes: []hcl.AttributeSchema{
			{Name: "channels", Required: true},
		},
	},
}

// Parse compiles HCL program source. filename is used for diagnostics
// and to resolve relative script() paths.
func Parse(filename string, src []byte, opts *Opts) (*Program, error) {
	opts = opts.withDefaults()
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}
	var progBlock *hcl.Block
	for _, block := range content.Blocks {
		if progBlock != nil {
			return nil, diagErr(block.DefRange.Ptr(), "duplicate program block",
				"a program file defines exactly one program")
		}
		progBlock = block
	}
	if progBlock == nil {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoProgram)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pi": cty.NumberFloatVal(math.Pi),
		},
		Functions: waveformFunctions(opts.Scripts, filepath.Dir(filename)),
	}
	return compileProgram(filename, progBlock, evalCtx)
}

func compileProgram(filename string, block *hcl.Block, evalCtx *hcl.EvalContext) (*Program, error) {
	content, diags := block.Body.Content(programSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}

	prog := &Program{Name: block.Labels[0]}
	var err error
	if prog.Backend, err = attrString(content, "backend", evalCtx); err != nil {
		return nil, err
	}
	if prog.Shots, err = attrInt(content, "shots", evalCtx, 0); err != nil {
		return nil, err
	}
	if prog.MeasLevel, err = attrInt(content, "meas_level", evalCtx, 0); err != nil {
		return nil, err
	}
	if attr, ok := content.Attributes["meas_return"]; ok {
		if prog.MeasReturn, err = exprString(attr.Expr, evalCtx); err != nil {
			return nil, err
		}
	}
	if seed, err := attrInt(content, "seed", evalCtx, 0); err != nil {
		return nil, err
	} else {
		prog.Seed = int64(seed)
	}

	for _, sb := range content.Blocks {
		sched, err := compileSchedule(sb, evalCtx)
		if err != nil {
			return nil, err
		}
		prog.Schedules = append(prog.Schedules, sched)
	}
	if len(prog.Schedules) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoSchedules)
	}
	return prog, nil
}

func compileSchedule(block *hcl.Block, evalCtx *hcl.EvalContext) (*pulse.Schedule, error) {
	content, diags := block.Body.Content(scheduleSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("schedule %q: %w", block.Labels[0], diags)
	}
	sched := pulse.NewSchedule(block.Labels[0])
	for _, ib := range content.Blocks {
		if err := compileInstruction(sched, ib, evalCtx); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

// compileInstruction builds one instruction from its block, then
// appends it, or inserts it when the block carries an explicit at.
func compileInstruction(sched *pulse.Schedule, block *hcl.Block, evalCtx *hcl.EvalContext) error {
	content, diags := block.Body.Content(instructionSchemas[block.Type])
	if diags.HasErrors() {
		return fmt.Errorf("%s block: %w", block.Type, diags)
	}

	if block.Type == "barrier" {
		return compileBarrier(sched, content, evalCtx)
	}

	instr, err := buildInstruction(block.Type, content, evalCtx)
	if err != nil {
		return err
	}

	if attr, ok := content.Attributes["at"]; ok {
		at, err := exprInt(attr.Expr, evalCtx)
		if err != nil {
			return err
		}
		if err := sched.Insert(int64(at), instr); err != nil {
			return diagErr(attr.Range.Ptr(), "cannot place instruction",
				err.Error())
		}
		return nil
	}
	if _, err := sched.Append(instr); err != nil {
		return diagErr(block.DefRange.Ptr(), "cannot append instruction", err.Error())
	}
	return nil
}

func buildInstruction(kind string, content *hcl.BodyContent, evalCtx *hcl.EvalContext) (pulse.Instruction, error) {
	ch, err := attrChannel(content, "channel", evalCtx)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "play":
		wave, err := attrWaveform(content, "waveform", evalCtx)
		if err != nil {
			return nil, err
		}
		return pulse.NewPlay(wave, ch)
	case "delay":
		dur, err := exprInt(content.Attributes["duration"].Expr, evalCtx)
		if err != nil {
			return nil, err
		}
		return pulse.NewDelay(int64(dur), ch)
	case "set_frequency":
		hz, err := exprFloat(content.Attributes["frequency"].Expr, evalCtx)
		if err != nil {
			return nil, err
		}
		return pulse.NewSetFrequency(hz, ch)
	case "shift_frequency":
		delta, err := exprFloat(content.Attributes["delta"].Expr, evalCtx)
		if err != nil {
			return nil, err
		}
		return pulse.NewShiftFrequency(delta, ch)
	case "set_phase":
		rad, err := exprFloat(content.Attributes["phase"].Expr, evalCtx)
		if err != nil {
			return nil, err
		}
		return pulse.NewSetPhase(rad, ch)
	case "shift_phase":
		rad, err := exprFloat(content.Attributes["phase"].Expr, evalCtx)
		if err != nil {
			return nil, err
		}
		return pulse.NewShiftPhase(rad, ch)
	case "acquire":
		dur, err := exprInt(content.Attributes["duration"].Expr, evalCtx)
		if err != nil {
			return nil, err
		}
		mem, err := attrChannel(content, "memory_slot", evalCtx)
		if err != nil {
			return nil, err
		}
		acq, err := pulse.NewAcquire(int64(dur), ch, mem)
		if err != nil {
			return nil, err
		}
		if attr, ok := content.Attributes["register_slot"]; ok {
			reg, err := exprChannel(attr.Expr, evalCtx)
			if err != nil {
				return nil, err
			}
			return acq.WithRegister(reg)
		}
		return acq, nil
	}
	return nil, fmt.Errorf("unhandled instruction block %q", kind)
}

// compileBarrier aligns the named channels by delaying each one to the
// latest stop time among them.
func compileBarrier(sched *pulse.Schedule, content *hcl.BodyContent, evalCtx *hcl.EvalContext) error {
	attr := content.Attributes["channels"]
	val, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return fmt.Errorf("barrier channels: %w", diags)
	}
	if !val.CanIterateElements() {
		return diagErr(attr.Range.Ptr(), "invalid barrier", "channels must be a list of channel names")
	}
	var chans []pulse.Channel
	var until int64
	for it := val.ElementIterator(); it.Next(); {
		_, el := it.Element()
		if el.Type() != cty.String {
			return diagErr(attr.Range.Ptr(), "invalid barrier", "channel names must be strings")
		}
		ch, err := pulse.ParseChannel(el.AsString())
		if err != nil {
			return diagErr(attr.Range.Ptr(), "invalid barrier", err.Error())
		}
		chans = append(chans, ch)
		if stop := sched.ChannelStop(ch); stop > until {
			until = stop
		}
	}
	for _, ch := range chans {
		gap := until - sched.ChannelStop(ch)
		if gap <= 0 {
			continue
		}
		d, err := pulse.NewDelay(gap, ch)
		if err != nil {
			return err
		}
		if err := sched.Insert(sched.ChannelStop(ch), d); err != nil {
			return err
		}
	}
	return nil
}

// diagErr builds a single-diagnostic error with a source range, so
// CLI output can point at the offending line.
func diagErr(rng *hcl.Range, summary, detail string) error {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng,
	}}
}
