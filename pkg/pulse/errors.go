package pulse

import "errors"

var (
	ErrEmptyWaveform    = errors.New("waveform has no samples")
	ErrAmplitudeLimit   = errors.New("waveform amplitude exceeds unit norm")
	ErrNonFiniteSample  = errors.New("waveform sample is not finite")
	ErrChannelIndex     = errors.New("channel index is negative")
	ErrUnknownChannel   = errors.New("unknown channel name")
	ErrNegativeTime     = errors.New("start time is negative")
	ErrNegativeDuration = errors.New("duration is negative")
	ErrTimeslotOverlap  = errors.New("instruction overlaps an occupied timeslot")
	ErrNilInstruction   = errors.New("instruction is nil")
	ErrNoTransmitChan   = errors.New("channel cannot transmit waveforms")
	ErrBadParameter     = errors.New("invalid pulse parameter")
)
