// Package qobj assembles pulse schedules into the JSON payload submitted to
// backends, and disassembles received payloads back into schedules. The
// format is a pulse-flavored Qobj: a shared pulse library plus per-experiment
// instruction lists addressed by channel name and start tick.
package qobj

import (
	"errors"
	"fmt"
)

// SchemaVersion is the payload schema this package reads and writes.
const SchemaVersion = "1.2.0"

// TypePulse is the only qobj type this toolkit produces.
const TypePulse = "PULSE"

var (
	ErrNotPulse       = errors.New("qobj is not a pulse qobj")
	ErrBadSchema      = errors.New("unsupported qobj schema version")
	ErrNoExperiments  = errors.New("qobj has no experiments")
	ErrUnknownPulse   = errors.New("instruction references a pulse missing from the library")
	ErrUnknownOpcode  = errors.New("unknown instruction name")
	ErrMissingChannel = errors.New("instruction is missing its channel")
)

// Sample is one complex waveform sample serialized as [real, imag].
type Sample [2]float64

// PulseDef is a named entry of the shared pulse library.
type PulseDef struct {
	Name    string   `json:"name"`
	Samples []Sample `json:"samples"`
}

// Instruction is one wire-format scheduled operation. The populated fields
// depend on Name: plays reference the pulse library by name, delays and
// acquires carry a duration, frame instructions carry a phase or frequency
// in radians or Hz.
type Instruction struct {
	Name         string  `json:"name"`
	T0           int64   `json:"t0"`
	Channel      string  `json:"ch,omitempty"`
	Duration     int64   `json:"duration,omitempty"`
	Phase        float64 `json:"phase,omitempty"`
	Frequency    float64 `json:"frequency,omitempty"`
	Qubits       []int   `json:"qubits,omitempty"`
	MemorySlot   []int   `json:"memory_slot,omitempty"`
	RegisterSlot []int   `json:"register_slot,omitempty"`
}

// ExperimentHeader carries experiment metadata untouched by execution.
type ExperimentHeader struct {
	Name string `json:"name,omitempty"`
}

// Experiment is one schedule in wire form.
type Experiment struct {
	Header       ExperimentHeader `json:"header"`
	Instructions []Instruction    `json:"instructions"`
}

// Header carries payload-level metadata.
type Header struct {
	BackendName    string `json:"backend_name,omitempty"`
	BackendVersion string `json:"backend_version,omitempty"`
	JobName        string `json:"name,omitempty"`
}

// Config carries the execution parameters shared by all experiments.
type Config struct {
	Shots        int        `json:"shots"`
	MeasLevel    int        `json:"meas_level"`
	MeasReturn   string     `json:"meas_return,omitempty"`
	MemorySlots  int        `json:"memory_slots"`
	Seed         int64      `json:"seed_simulator,omitempty"`
	QubitLoFreq  []float64  `json:"qubit_lo_freq,omitempty"`
	MeasLoFreq   []float64  `json:"meas_lo_freq,omitempty"`
	PulseLibrary []PulseDef `json:"pulse_library"`
}

// Qobj is the top-level submission payload.
type Qobj struct {
	ID            string       `json:"qobj_id"`
	Type          string       `json:"type"`
	SchemaVersion string       `json:"schema_version"`
	Header        Header       `json:"header"`
	Config        Config       `json:"config"`
	Experiments   []Experiment `json:"experiments"`
}

// Validate checks the structural invariants a payload must satisfy before
// execution: pulse type, known schema, at least one experiment, and every
// play resolving against the pulse library.
func (q *Qobj) Validate() error {
	if q.Type != TypePulse {
		return fmt.Errorf("type %q: %w", q.Type, ErrNotPulse)
	}
	if q.SchemaVersion != SchemaVersion {
		return fmt.Errorf("schema %q: %w", q.SchemaVersion, ErrBadSchema)
	}
	if len(q.Experiments) == 0 {
		return ErrNoExperiments
	}
	library := make(map[string]struct{}, len(q.Config.PulseLibrary))
	for _, def := range q.Config.PulseLibrary {
		library[def.Name] = struct{}{}
	}
	for ei, exp := range q.Experiments {
		for ii, inst := range exp.Instructions {
			if err := validateInstruction(inst, library); err != nil {
				return fmt.Errorf("experiment %d instruction %d: %w", ei, ii, err)
			}
		}
	}
	return nil
}

func validateInstruction(inst Instruction, library map[string]struct{}) error {
	switch inst.Name {
	case "delay", "fc", "setp", "setf", "shiftf":
		if inst.Channel == "" {
			return ErrMissingChannel
		}
	case "acquire":
		if len(inst.Qubits) == 0 || len(inst.MemorySlot) == 0 {
			return fmt.Errorf("acquire without qubits or memory slots: %w", ErrMissingChannel)
		}
	default:
		// Anything else must be a pulse library reference.
		if inst.Channel == "" {
			return ErrMissingChannel
		}
		if _, ok := library[inst.Name]; !ok {
			return fmt.Errorf("pulse %q: %w", inst.Name, ErrUnknownPulse)
		}
	}
	return nil
}
