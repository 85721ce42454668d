package qobj

import (
	"fmt"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// Disassemble rebuilds executable schedules from a submission payload. It
// is the inverse of Assemble up to waveform names mangled during library
// deduplication.
func Disassemble(q *Qobj) ([]*pulse.Schedule, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	library := make(map[string]*pulse.Waveform, len(q.Config.PulseLibrary))
	for _, def := range q.Config.PulseLibrary {
		samples := make([]complex128, len(def.Samples))
		for i, s := range def.Samples {
			samples[i] = complex(s[0], s[1])
		}
		w, err := pulse.NewWaveform(samples, &pulse.WaveformOpts{Name: def.Name})
		if err != nil {
			return nil, fmt.Errorf("pulse library %q: %w", def.Name, err)
		}
		library[def.Name] = w
	}

	scheds := make([]*pulse.Schedule, 0, len(q.Experiments))
	for ei, exp := range q.Experiments {
		sched := pulse.NewSchedule(exp.Header.Name)
		for ii, inst := range exp.Instructions {
			built, err := disassembleInstruction(inst, library)
			if err != nil {
				return nil, fmt.Errorf("experiment %d instruction %d: %w", ei, ii, err)
			}
			for _, b := range built {
				if err := sched.Insert(inst.T0, b); err != nil {
					return nil, fmt.Errorf("experiment %d instruction %d: %w", ei, ii, err)
				}
			}
		}
		scheds = append(scheds, sched)
	}
	return scheds, nil
}

func disassembleInstruction(inst Instruction, library map[string]*pulse.Waveform) ([]pulse.Instruction, error) {
	switch inst.Name {
	case "delay":
		ch, err := pulse.ParseChannel(inst.Channel)
		if err != nil {
			return nil, err
		}
		d, err := pulse.NewDelay(inst.Duration, ch)
		if err != nil {
			return nil, err
		}
		return []pulse.Instruction{d}, nil
	case "acquire":
		// One wire acquire may fan out over several qubit/slot pairs.
		if len(inst.MemorySlot) != len(inst.Qubits) {
			return nil, fmt.Errorf("acquire with %d qubits but %d memory slots: %w",
				len(inst.Qubits), len(inst.MemorySlot), ErrMissingChannel)
		}
		out := make([]pulse.Instruction, 0, len(inst.Qubits))
		for i, q := range inst.Qubits {
			acq, err := pulse.NewAcquire(inst.Duration, pulse.AcquireChannel(q), pulse.MemorySlot(inst.MemorySlot[i]))
			if err != nil {
				return nil, err
			}
			if i < len(inst.RegisterSlot) {
				acq, err = acq.WithRegister(pulse.RegisterSlot(inst.RegisterSlot[i]))
				if err != nil {
					return nil, err
				}
			}
			out = append(out, acq)
		}
		return out, nil
	case "setf":
		ch, err := pulse.ParseChannel(inst.Channel)
		if err != nil {
			return nil, err
		}
		sf, err := pulse.NewSetFrequency(inst.Frequency, ch)
		if err != nil {
			return nil, err
		}
		return []pulse.Instruction{sf}, nil
	case "shiftf":
		ch, err := pulse.ParseChannel(inst.Channel)
		if err != nil {
			return nil, err
		}
		sf, err := pulse.NewShiftFrequency(inst.Frequency, ch)
		if err != nil {
			return nil, err
		}
		return []pulse.Instruction{sf}, nil
	case "setp":
		ch, err := pulse.ParseChannel(inst.Channel)
		if err != nil {
			return nil, err
		}
		sp, err := pulse.NewSetPhase(inst.Phase, ch)
		if err != nil {
			return nil, err
		}
		return []pulse.Instruction{sp}, nil
	case "fc":
		ch, err := pulse.ParseChannel(inst.Channel)
		if err != nil {
			return nil, err
		}
		sp, err := pulse.NewShiftPhase(inst.Phase, ch)
		if err != nil {
			return nil, err
		}
		return []pulse.Instruction{sp}, nil
	default:
		wave, ok := library[inst.Name]
		if !ok {
			return nil, fmt.Errorf("pulse %q: %w", inst.Name, ErrUnknownPulse)
		}
		ch, err := pulse.ParseChannel(inst.Channel)
		if err != nil {
			return nil, err
		}
		play, err := pulse.NewPlay(wave, ch)
		if err != nil {
			return nil, err
		}
		return []pulse.Instruction{play}, nil
	}
}
