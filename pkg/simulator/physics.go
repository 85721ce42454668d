package simulator

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// Params are the device model knobs of a simulated backend.
type Params struct {
	// RabiHz is the qubit rotation rate at unit drive amplitude.
	RabiHz float64
	// ReadoutError is the probability of flipping a discriminated bit.
	ReadoutError float64
	// IQSigma is the standard deviation of kerneled readout noise.
	IQSigma float64
}

// withDefaults fills zero fields with the stock device model.
func (p Params) withDefaults() Params {
	if p.RabiHz == 0 {
		p.RabiHz = 4.5e7
	}
	if p.IQSigma == 0 {
		p.IQSigma = 0.15
	}
	return p
}

// Kerneled readout centers in the IQ plane, per discriminated bit.
var (
	iqGround  = provider.IQ{-1, 0}
	iqExcited = provider.IQ{1, 0}
)

// frame is the rotating-frame state of one transmit channel: carrier
// frequency and accumulated phase.
type frame struct {
	freq  float64
	phase float64
}

// acquisition is one acquire window resolved against the evolved state:
// the excited-state population of the measured qubit at the window start.
type acquisition struct {
	start int64
	qubit int
	slot  int
	reg   int // -1 when unset
	prob1 float64
}

// evolve walks the schedule tick by tick, rotating each driven qubit in the
// frame of its channel, and returns the populations seen by every acquire
// window. Each qubit is an independent two-level system; drives overlapping
// on distinct channels of the same qubit apply in channel order rather than
// as a summed field.
func evolve(sched *pulse.Schedule, cfg provider.Configuration, params Params) ([]acquisition, error) {
	states := make([][2]complex128, cfg.NumQubits)
	for q := range states {
		states[q] = [2]complex128{1, 0}
	}
	frames := make(map[pulse.Channel]*frame)

	type playSpan struct {
		start   int64
		samples []complex128
		ch      pulse.Channel
		qubit   int
	}
	var (
		plays    []playSpan
		frameOps []pulse.ScheduledInstruction
		acqs     []acquisition
	)
	for _, si := range sched.Instructions() {
		switch in := si.Instruction.(type) {
		case *pulse.Play:
			ch := in.Channel()
			if ch.Kind() == pulse.KindMeasure {
				// Readout stimulus does not move the qubit in this
				// model; discrimination happens at acquire time.
				continue
			}
			if ch.Index() >= cfg.NumQubits {
				return nil, fmt.Errorf("%s: %w", ch, provider.ErrQubitRange)
			}
			plays = append(plays, playSpan{
				start:   si.Start,
				samples: in.Waveform().Samples(),
				ch:      ch,
				qubit:   ch.Index(),
			})
		case *pulse.Acquire:
			q := in.Channel().Index()
			if q >= cfg.NumQubits {
				return nil, fmt.Errorf("%s: %w", in.Channel(), provider.ErrQubitRange)
			}
			reg := -1
			if r, ok := in.RegisterSlot(); ok {
				reg = r.Index()
			}
			acqs = append(acqs, acquisition{
				start: si.Start,
				qubit: q,
				slot:  in.MemorySlot().Index(),
				reg:   reg,
			})
		case *pulse.Delay:
			// Idling is free evolution, which is the identity in the
			// qubit frame.
		default:
			frameOps = append(frameOps, si)
		}
	}
	sort.SliceStable(acqs, func(i, j int) bool { return acqs[i].start < acqs[j].start })

	stop := sched.Duration()
	var nextFrame, nextAcq int
	for t := int64(0); t <= stop; t++ {
		for nextFrame < len(frameOps) && frameOps[nextFrame].Start == t {
			applyFrameOp(frames, frameOps[nextFrame].Instruction, cfg)
			nextFrame++
		}
		for nextAcq < len(acqs) && acqs[nextAcq].start == t {
			b := states[acqs[nextAcq].qubit][1]
			acqs[nextAcq].prob1 = real(b * cmplx.Conj(b))
			nextAcq++
		}
		for _, p := range plays {
			i := t - p.start
			if i < 0 || i >= int64(len(p.samples)) {
				continue
			}
			s := p.samples[i]
			norm := cmplx.Abs(s)
			if norm == 0 {
				continue
			}
			fr := channelFrame(frames, p.ch, cfg)
			detune := fr.freq - qubitFreq(cfg, p.qubit)
			phi := cmplx.Phase(s) + fr.phase + 2*math.Pi*detune*float64(t)*cfg.DT
			theta := 2 * math.Pi * params.RabiHz * norm * cfg.DT
			rotate(&states[p.qubit], theta, phi)
		}
	}
	return acqs, nil
}

// rotate applies the single-tick drive unitary
// cos(θ/2)·I − i·sin(θ/2)·(cosφ·σx + sinφ·σy) to a qubit state.
func rotate(state *[2]complex128, theta, phi float64) {
	c := complex(math.Cos(theta/2), 0)
	s := math.Sin(theta / 2)
	e := cmplx.Exp(complex(0, phi))
	a, b := state[0], state[1]
	is := complex(0, -s)
	state[0] = c*a + is*cmplx.Conj(e)*b
	state[1] = is*e*a + c*b
}

func applyFrameOp(frames map[pulse.Channel]*frame, instr pulse.Instruction, cfg provider.Configuration) {
	switch in := instr.(type) {
	case *pulse.SetFrequency:
		channelFrame(frames, in.Channel(), cfg).freq = in.Frequency()
	case *pulse.ShiftFrequency:
		channelFrame(frames, in.Channel(), cfg).freq += in.Delta()
	case *pulse.SetPhase:
		channelFrame(frames, in.Channel(), cfg).phase = in.Phase()
	case *pulse.ShiftPhase:
		channelFrame(frames, in.Channel(), cfg).phase += in.Phase()
	}
}

// channelFrame returns the mutable frame of ch, creating it at the device
// default frequency on first touch.
func channelFrame(frames map[pulse.Channel]*frame, ch pulse.Channel, cfg provider.Configuration) *frame {
	if fr, ok := frames[ch]; ok {
		return fr
	}
	fr := &frame{}
	switch ch.Kind() {
	case pulse.KindMeasure:
		if i := ch.Index(); i < len(cfg.MeasFreqs) {
			fr.freq = cfg.MeasFreqs[i]
		}
	default:
		fr.freq = qubitFreq(cfg, ch.Index())
	}
	frames[ch] = fr
	return fr
}

func qubitFreq(cfg provider.Configuration, qubit int) float64 {
	if qubit < len(cfg.DriveFreqs) {
		return cfg.DriveFreqs[qubit]
	}
	return 0
}
