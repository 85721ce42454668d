package qobj

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// Assemble flattens schedules into a submission payload. Waveforms are
// deduplicated into the shared pulse library by content digest; two
// different waveforms that happen to share a name are disambiguated with a
// digest suffix.
func Assemble(scheds []*pulse.Schedule, cfg provider.Configuration, opts provider.RunOpts) (*Qobj, error) {
	if len(scheds) == 0 {
		return nil, ErrNoExperiments
	}
	lib := newLibraryBuilder()
	experiments := make([]Experiment, 0, len(scheds))
	for _, sched := range scheds {
		exp, err := assembleExperiment(sched, lib)
		if err != nil {
			return nil, fmt.Errorf("assemble %s: %w", sched.Name(), err)
		}
		experiments = append(experiments, exp)
	}
	jobName := opts.Name
	if jobName == "" {
		jobName = scheds[0].Name()
	}
	return &Qobj{
		ID:            newQobjID(),
		Type:          TypePulse,
		SchemaVersion: SchemaVersion,
		Header: Header{
			BackendName:    cfg.BackendName,
			BackendVersion: cfg.BackendVersion,
			JobName:        jobName,
		},
		Config: Config{
			Shots:        opts.Shots,
			MeasLevel:    opts.MeasLevel,
			MeasReturn:   opts.MeasReturn,
			MemorySlots:  cfg.MemorySlots,
			Seed:         opts.Seed,
			QubitLoFreq:  cfg.DriveFreqs,
			MeasLoFreq:   cfg.MeasFreqs,
			PulseLibrary: lib.defs,
		},
		Experiments: experiments,
	}, nil
}

func assembleExperiment(sched *pulse.Schedule, lib *libraryBuilder) (Experiment, error) {
	insts := make([]Instruction, 0, sched.Len())
	for _, si := range sched.Instructions() {
		inst, err := assembleInstruction(si, lib)
		if err != nil {
			return Experiment{}, err
		}
		insts = append(insts, inst)
	}
	return Experiment{
		Header:       ExperimentHeader{Name: sched.Name()},
		Instructions: insts,
	}, nil
}

func assembleInstruction(si pulse.ScheduledInstruction, lib *libraryBuilder) (Instruction, error) {
	switch in := si.Instruction.(type) {
	case *pulse.Play:
		return Instruction{
			Name:    lib.add(in.Waveform()),
			T0:      si.Start,
			Channel: in.Channel().Name(),
		}, nil
	case *pulse.Delay:
		return Instruction{
			Name:     "delay",
			T0:       si.Start,
			Channel:  in.Channel().Name(),
			Duration: in.Duration(),
		}, nil
	case *pulse.Acquire:
		inst := Instruction{
			Name:       "acquire",
			T0:         si.Start,
			Duration:   in.Duration(),
			Qubits:     []int{in.Channel().Index()},
			MemorySlot: []int{in.MemorySlot().Index()},
		}
		if reg, ok := in.RegisterSlot(); ok {
			inst.RegisterSlot = []int{reg.Index()}
		}
		return inst, nil
	case *pulse.SetFrequency:
		return Instruction{
			Name:      "setf",
			T0:        si.Start,
			Channel:   in.Channel().Name(),
			Frequency: in.Frequency(),
		}, nil
	case *pulse.ShiftFrequency:
		return Instruction{
			Name:      "shiftf",
			T0:        si.Start,
			Channel:   in.Channel().Name(),
			Frequency: in.Delta(),
		}, nil
	case *pulse.SetPhase:
		return Instruction{
			Name:    "setp",
			T0:      si.Start,
			Channel: in.Channel().Name(),
			Phase:   in.Phase(),
		}, nil
	case *pulse.ShiftPhase:
		return Instruction{
			Name:    "fc",
			T0:      si.Start,
			Channel: in.Channel().Name(),
			Phase:   in.Phase(),
		}, nil
	default:
		return Instruction{}, fmt.Errorf("%T: %w", si.Instruction, ErrUnknownOpcode)
	}
}

// libraryBuilder deduplicates waveforms by content digest while keeping
// names stable and unique.
type libraryBuilder struct {
	defs     []PulseDef
	byDigest map[string]string
	byName   map[string]string
}

func newLibraryBuilder() *libraryBuilder {
	return &libraryBuilder{
		byDigest: make(map[string]string),
		byName:   make(map[string]string),
	}
}

// add registers a waveform and returns the library name plays should
// reference.
func (lb *libraryBuilder) add(w *pulse.Waveform) string {
	digest := w.Digest()
	if name, ok := lb.byDigest[digest]; ok {
		return name
	}
	name := w.Name()
	if other, taken := lb.byName[name]; taken && other != digest {
		name = fmt.Sprintf("%s_%s", name, digest[:6])
	}
	lb.byDigest[digest] = name
	lb.byName[name] = digest

	samples := w.Samples()
	def := PulseDef{Name: name, Samples: make([]Sample, len(samples))}
	for i, s := range samples {
		def.Samples[i] = Sample{real(s), imag(s)}
	}
	lb.defs = append(lb.defs, def)
	return name
}

func newQobjID() string {
	var buf [8]byte
	rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
