package pulse

import (
	"fmt"
	"strconv"
)

// ChannelKind identifies the role of a hardware signal path.
type ChannelKind uint8

const (
	// KindDrive addresses the qubit drive line used for state manipulation.
	KindDrive ChannelKind = iota
	// KindControl addresses an auxiliary control line (e.g. cross-resonance).
	KindControl
	// KindMeasure addresses the readout stimulus line.
	KindMeasure
	// KindAcquire addresses the data acquisition path of a qubit.
	KindAcquire
	// KindMemory addresses a classical memory slot holding a measured bit.
	KindMemory
	// KindRegister addresses a fast classical register slot.
	KindRegister
)

var kindPrefixes = map[ChannelKind]string{
	KindDrive:    "d",
	KindControl:  "u",
	KindMeasure:  "m",
	KindAcquire:  "a",
	KindMemory:   "mem",
	KindRegister: "reg",
}

var prefixKinds = map[string]ChannelKind{
	"d":   KindDrive,
	"u":   KindControl,
	"m":   KindMeasure,
	"a":   KindAcquire,
	"mem": KindMemory,
	"reg": KindRegister,
}

// Prefix returns the canonical one-letter (or short) channel name prefix.
func (k ChannelKind) Prefix() string {
	return kindPrefixes[k]
}

// String returns a human readable kind name.
func (k ChannelKind) String() string {
	switch k {
	case KindDrive:
		return "drive"
	case KindControl:
		return "control"
	case KindMeasure:
		return "measure"
	case KindAcquire:
		return "acquire"
	case KindMemory:
		return "memory"
	case KindRegister:
		return "register"
	default:
		return "unknown"
	}
}

// Channel addresses a single hardware signal path or classical slot by kind
// and index. Channels are comparable values and safe to use as map keys.
type Channel struct {
	kind  ChannelKind
	index int
}

// DriveChannel returns the drive channel of the given qubit.
func DriveChannel(index int) Channel { return Channel{kind: KindDrive, index: index} }

// ControlChannel returns the given auxiliary control channel.
func ControlChannel(index int) Channel { return Channel{kind: KindControl, index: index} }

// MeasureChannel returns the readout stimulus channel of the given qubit.
func MeasureChannel(index int) Channel { return Channel{kind: KindMeasure, index: index} }

// AcquireChannel returns the acquisition channel of the given qubit.
func AcquireChannel(index int) Channel { return Channel{kind: KindAcquire, index: index} }

// MemorySlot returns the classical memory slot with the given index.
func MemorySlot(index int) Channel { return Channel{kind: KindMemory, index: index} }

// RegisterSlot returns the classical register slot with the given index.
func RegisterSlot(index int) Channel { return Channel{kind: KindRegister, index: index} }

// Kind returns the channel's kind.
func (c Channel) Kind() ChannelKind { return c.kind }

// Index returns the qubit or slot index the channel addresses.
func (c Channel) Index() int { return c.index }

// Name returns the canonical channel name, e.g. "d0", "u1", "m0", "a0".
func (c Channel) Name() string {
	return c.kind.Prefix() + strconv.Itoa(c.index)
}

// String implements fmt.Stringer.
func (c Channel) String() string { return c.Name() }

// Transmits reports whether the channel carries outgoing pulse waveforms.
// Drive, control and measure channels transmit; acquire channels and
// classical slots do not.
func (c Channel) Transmits() bool {
	switch c.kind {
	case KindDrive, KindControl, KindMeasure:
		return true
	default:
		return false
	}
}

// validate checks the channel index invariant.
func (c Channel) validate() error {
	if c.index < 0 {
		return fmt.Errorf("channel %s%d: %w", c.kind.Prefix(), c.index, ErrChannelIndex)
	}
	return nil
}

// ParseChannel parses a canonical channel name such as "d0", "u2", "m1",
// "a0", "mem3" or "reg1" back into a Channel.
func ParseChannel(name string) (Channel, error) {
	split := len(name)
	for i, r := range name {
		if r >= '0' && r <= '9' {
			split = i
			break
		}
	}
	prefix, digits := name[:split], name[split:]
	kind, ok := prefixKinds[prefix]
	if !ok || digits == "" {
		return Channel{}, fmt.Errorf("parse channel %q: %w", name, ErrUnknownChannel)
	}
	index, err := strconv.Atoi(digits)
	if err != nil {
		return Channel{}, fmt.Errorf("parse channel %q: %w", name, ErrUnknownChannel)
	}
	ch := Channel{kind: kind, index: index}
	if err := ch.validate(); err != nil {
		return Channel{}, err
	}
	return ch, nil
}

// MarshalText implements encoding.TextMarshaler using the canonical name.
func (c Channel) MarshalText() ([]byte, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return []byte(c.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(text []byte) error {
	ch, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = ch
	return nil
}
