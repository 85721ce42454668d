package pulse

import (
	"fmt"
	"math"
)

// Instruction is a single scheduled operation on one or more channels.
// Implementations are immutable once constructed; a Schedule binds them to
// start times.
type Instruction interface {
	// Name labels the instruction in drawings and assembled payloads.
	Name() string
	// Duration is the instruction length in dt ticks. Frame instructions
	// report zero.
	Duration() int64
	// Channels lists every channel the instruction touches.
	Channels() []Channel
}

// Play plays a waveform on a transmit channel.
type Play struct {
	wave *Waveform
	ch   Channel
}

// NewPlay binds a waveform to the pulse channel it should be played on.
func NewPlay(wave *Waveform, ch Channel) (*Play, error) {
	if wave == nil {
		return nil, fmt.Errorf("play: %w", ErrEmptyWaveform)
	}
	if err := ch.validate(); err != nil {
		return nil, err
	}
	if !ch.Transmits() {
		return nil, fmt.Errorf("play on %s: %w", ch, ErrNoTransmitChan)
	}
	return &Play{wave: wave, ch: ch}, nil
}

// Name returns the name of the played waveform.
func (p *Play) Name() string { return p.wave.Name() }

// Duration returns the waveform length in dt ticks.
func (p *Play) Duration() int64 { return int64(p.wave.Len()) }

// Channels returns the single pulse channel played on.
func (p *Play) Channels() []Channel { return []Channel{p.ch} }

// Waveform returns the played waveform.
func (p *Play) Waveform() *Waveform { return p.wave }

// Channel returns the pulse channel played on.
func (p *Play) Channel() Channel { return p.ch }

func (p *Play) String() string {
	return fmt.Sprintf("Play(%s, %s)", p.wave.Name(), p.ch)
}

// Delay blocks a channel for a fixed number of ticks. Delays participate in
// timeslot bookkeeping like any other instruction, which makes them the tool
// for building deliberate idle gaps (e.g. Ramsey free evolution).
type Delay struct {
	duration int64
	ch       Channel
}

// NewDelay creates a delay of the given tick count on a channel.
func NewDelay(duration int64, ch Channel) (*Delay, error) {
	if duration < 0 {
		return nil, fmt.Errorf("delay of %d ticks: %w", duration, ErrNegativeDuration)
	}
	if err := ch.validate(); err != nil {
		return nil, err
	}
	return &Delay{duration: duration, ch: ch}, nil
}

// Name returns "delay".
func (d *Delay) Name() string { return "delay" }

// Duration returns the delay length in dt ticks.
func (d *Delay) Duration() int64 { return d.duration }

// Channels returns the delayed channel.
func (d *Delay) Channels() []Channel { return []Channel{d.ch} }

// Channel returns the delayed channel.
func (d *Delay) Channel() Channel { return d.ch }

func (d *Delay) String() string {
	return fmt.Sprintf("Delay(%d, %s)", d.duration, d.ch)
}

// Acquire triggers data acquisition on a qubit's acquire channel and routes
// the discriminated result into a classical memory slot, optionally mirrored
// into a fast register slot.
type Acquire struct {
	duration int64
	acq      Channel
	mem      Channel
	reg      Channel
	hasReg   bool
}

// NewAcquire creates an acquisition of the given tick count reading the
// acquire channel into the memory slot.
func NewAcquire(duration int64, acq, mem Channel) (*Acquire, error) {
	if duration < 0 {
		return nil, fmt.Errorf("acquire of %d ticks: %w", duration, ErrNegativeDuration)
	}
	if acq.Kind() != KindAcquire {
		return nil, fmt.Errorf("acquire on %s: %w", acq, ErrUnknownChannel)
	}
	if mem.Kind() != KindMemory {
		return nil, fmt.Errorf("acquire into %s: %w", mem, ErrUnknownChannel)
	}
	if err := acq.validate(); err != nil {
		return nil, err
	}
	if err := mem.validate(); err != nil {
		return nil, err
	}
	return &Acquire{duration: duration, acq: acq, mem: mem}, nil
}

// WithRegister returns a copy of the acquisition that also latches the
// result into the given register slot.
func (a *Acquire) WithRegister(reg Channel) (*Acquire, error) {
	if reg.Kind() != KindRegister {
		return nil, fmt.Errorf("acquire into %s: %w", reg, ErrUnknownChannel)
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	out := *a
	out.reg = reg
	out.hasReg = true
	return &out, nil
}

// Name returns "acquire".
func (a *Acquire) Name() string { return "acquire" }

// Duration returns the acquisition window in dt ticks.
func (a *Acquire) Duration() int64 { return a.duration }

// Channels returns the acquire channel, the memory slot and, when set, the
// register slot.
func (a *Acquire) Channels() []Channel {
	chs := []Channel{a.acq, a.mem}
	if a.hasReg {
		chs = append(chs, a.reg)
	}
	return chs
}

// Channel returns the acquire channel read from.
func (a *Acquire) Channel() Channel { return a.acq }

// MemorySlot returns the memory slot written to.
func (a *Acquire) MemorySlot() Channel { return a.mem }

// RegisterSlot returns the register slot written to and whether one is set.
func (a *Acquire) RegisterSlot() (Channel, bool) { return a.reg, a.hasReg }

func (a *Acquire) String() string {
	return fmt.Sprintf("Acquire(%d, %s, %s)", a.duration, a.acq, a.mem)
}

// SetFrequency pins a channel's carrier to an absolute frequency in Hz from
// this point of the schedule onward.
type SetFrequency struct {
	hz float64
	ch Channel
}

// NewSetFrequency creates an absolute frequency change on a pulse channel.
func NewSetFrequency(hz float64, ch Channel) (*SetFrequency, error) {
	if err := checkFrame(hz, ch); err != nil {
		return nil, err
	}
	if hz <= 0 {
		return nil, fmt.Errorf("set frequency %g Hz: %w", hz, ErrBadParameter)
	}
	return &SetFrequency{hz: hz, ch: ch}, nil
}

// Name returns "setf".
func (s *SetFrequency) Name() string { return "setf" }

// Duration returns zero, frame changes take no time.
func (s *SetFrequency) Duration() int64 { return 0 }

// Channels returns the retuned channel.
func (s *SetFrequency) Channels() []Channel { return []Channel{s.ch} }

// Channel returns the retuned channel.
func (s *SetFrequency) Channel() Channel { return s.ch }

// Frequency returns the new carrier frequency in Hz.
func (s *SetFrequency) Frequency() float64 { return s.hz }

func (s *SetFrequency) String() string {
	return fmt.Sprintf("SetFrequency(%g Hz, %s)", s.hz, s.ch)
}

// ShiftFrequency detunes a channel's carrier by a relative offset in Hz.
type ShiftFrequency struct {
	deltaHz float64
	ch      Channel
}

// NewShiftFrequency creates a relative frequency change on a pulse channel.
func NewShiftFrequency(deltaHz float64, ch Channel) (*ShiftFrequency, error) {
	if err := checkFrame(deltaHz, ch); err != nil {
		return nil, err
	}
	return &ShiftFrequency{deltaHz: deltaHz, ch: ch}, nil
}

// Name returns "shiftf".
func (s *ShiftFrequency) Name() string { return "shiftf" }

// Duration returns zero, frame changes take no time.
func (s *ShiftFrequency) Duration() int64 { return 0 }

// Channels returns the detuned channel.
func (s *ShiftFrequency) Channels() []Channel { return []Channel{s.ch} }

// Channel returns the detuned channel.
func (s *ShiftFrequency) Channel() Channel { return s.ch }

// Delta returns the frequency offset in Hz.
func (s *ShiftFrequency) Delta() float64 { return s.deltaHz }

func (s *ShiftFrequency) String() string {
	return fmt.Sprintf("ShiftFrequency(%g Hz, %s)", s.deltaHz, s.ch)
}

// SetPhase pins a channel's frame phase to an absolute value in radians.
type SetPhase struct {
	radians float64
	ch      Channel
}

// NewSetPhase creates an absolute phase change on a pulse channel.
func NewSetPhase(radians float64, ch Channel) (*SetPhase, error) {
	if err := checkFrame(radians, ch); err != nil {
		return nil, err
	}
	return &SetPhase{radians: radians, ch: ch}, nil
}

// Name returns "setp".
func (s *SetPhase) Name() string { return "setp" }

// Duration returns zero, frame changes take no time.
func (s *SetPhase) Duration() int64 { return 0 }

// Channels returns the rephased channel.
func (s *SetPhase) Channels() []Channel { return []Channel{s.ch} }

// Channel returns the rephased channel.
func (s *SetPhase) Channel() Channel { return s.ch }

// Phase returns the new frame phase in radians.
func (s *SetPhase) Phase() float64 { return s.radians }

func (s *SetPhase) String() string {
	return fmt.Sprintf("SetPhase(%g, %s)", s.radians, s.ch)
}

// ShiftPhase rotates a channel's frame phase by a relative angle in radians.
// Virtual Z rotations compile to this instruction.
type ShiftPhase struct {
	radians float64
	ch      Channel
}

// NewShiftPhase creates a relative phase change on a pulse channel.
func NewShiftPhase(radians float64, ch Channel) (*ShiftPhase, error) {
	if err := checkFrame(radians, ch); err != nil {
		return nil, err
	}
	return &ShiftPhase{radians: radians, ch: ch}, nil
}

// Name returns "fc".
func (s *ShiftPhase) Name() string { return "fc" }

// Duration returns zero, frame changes take no time.
func (s *ShiftPhase) Duration() int64 { return 0 }

// Channels returns the rotated channel.
func (s *ShiftPhase) Channels() []Channel { return []Channel{s.ch} }

// Channel returns the rotated channel.
func (s *ShiftPhase) Channel() Channel { return s.ch }

// Phase returns the frame rotation in radians.
func (s *ShiftPhase) Phase() float64 { return s.radians }

func (s *ShiftPhase) String() string {
	return fmt.Sprintf("ShiftPhase(%g, %s)", s.radians, s.ch)
}

func checkFrame(value float64, ch Channel) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("frame value %v: %w", value, ErrBadParameter)
	}
	if err := ch.validate(); err != nil {
		return err
	}
	if !ch.Transmits() {
		return fmt.Errorf("frame change on %s: %w", ch, ErrNoTransmitChan)
	}
	return nil
}
