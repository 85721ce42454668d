package pulse

import (
	"errors"
	"math"
	"testing"
)

// TestPlayRequiresTransmitChannel verifies waveforms can only be played on
// pulse-carrying channels.
func TestPlayRequiresTransmitChannel(t *testing.T) {
	w := mustWave(t, 10)
	if _, err := NewPlay(w, AcquireChannel(0)); !errors.Is(err, ErrNoTransmitChan) {
		t.Fatalf("expected ErrNoTransmitChan for acquire channel, got %v", err)
	}
	if _, err := NewPlay(nil, DriveChannel(0)); !errors.Is(err, ErrEmptyWaveform) {
		t.Fatalf("expected ErrEmptyWaveform for nil waveform, got %v", err)
	}
	p, err := NewPlay(w, DriveChannel(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Duration(); got != 10 {
		t.Fatalf("expected play duration 10, got %d", got)
	}
}

// TestDelayValidation verifies negative delays are refused and valid delays
// report their channel and duration.
func TestDelayValidation(t *testing.T) {
	if _, err := NewDelay(-1, DriveChannel(0)); !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("expected ErrNegativeDuration, got %v", err)
	}
	d, err := NewDelay(80, MeasureChannel(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.Duration(); got != 80 {
		t.Fatalf("expected duration 80, got %d", got)
	}
	if got := d.Channel(); got != MeasureChannel(2) {
		t.Fatalf("expected channel m2, got %v", got)
	}
}

// TestAcquireChannelKinds verifies the acquisition wiring: source must be an
// acquire channel, sink a memory slot, optional register slot via
// WithRegister.
func TestAcquireChannelKinds(t *testing.T) {
	if _, err := NewAcquire(100, DriveChannel(0), MemorySlot(0)); err == nil {
		t.Fatal("expected error acquiring from a drive channel")
	}
	if _, err := NewAcquire(100, AcquireChannel(0), RegisterSlot(0)); err == nil {
		t.Fatal("expected error storing into a register slot directly")
	}
	acq, err := NewAcquire(100, AcquireChannel(0), MemorySlot(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(acq.Channels()); got != 2 {
		t.Fatalf("expected 2 channels without register, got %d", got)
	}
	withReg, err := acq.WithRegister(RegisterSlot(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(withReg.Channels()); got != 3 {
		t.Fatalf("expected 3 channels with register, got %d", got)
	}
	if reg, ok := withReg.RegisterSlot(); !ok || reg != RegisterSlot(1) {
		t.Fatalf("expected register reg1, got %v (set=%v)", reg, ok)
	}
	// The original stays register-free.
	if _, ok := acq.RegisterSlot(); ok {
		t.Fatal("expected WithRegister to copy, not mutate")
	}
}

// TestFrameInstructionsZeroDuration verifies all four frame instructions
// report zero duration and reject non-finite values.
func TestFrameInstructionsZeroDuration(t *testing.T) {
	sf, err := NewSetFrequency(4.97e9, DriveChannel(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sf.Duration(); got != 0 {
		t.Fatalf("expected zero duration, got %d", got)
	}
	if got := sf.Frequency(); got != 4.97e9 {
		t.Fatalf("expected 4.97e9 Hz, got %g", got)
	}
	if _, err := NewSetFrequency(-1e9, DriveChannel(0)); !errors.Is(err, ErrBadParameter) {
		t.Fatalf("expected ErrBadParameter for negative frequency, got %v", err)
	}
	if _, err := NewShiftPhase(math.Inf(1), DriveChannel(0)); !errors.Is(err, ErrBadParameter) {
		t.Fatalf("expected ErrBadParameter for infinite phase, got %v", err)
	}
	if _, err := NewSetPhase(1.0, MemorySlot(0)); !errors.Is(err, ErrNoTransmitChan) {
		t.Fatalf("expected ErrNoTransmitChan for memory slot, got %v", err)
	}
	sp, err := NewShiftFrequency(-2.5e6, DriveChannel(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sp.Delta(); got != -2.5e6 {
		t.Fatalf("expected shift -2.5e6 Hz, got %g", got)
	}
}
