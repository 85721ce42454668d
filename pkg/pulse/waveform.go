package pulse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/cmplx"
)

// DefaultEpsilon is the tolerance used when deciding whether samples that
// stray above unit norm are rounding noise (clipped back) or genuine
// overdrive (rejected).
const DefaultEpsilon = 1e-7

// Waveform is an explicit list of complex samples played back one per dt
// tick of the target device. Samples are stored in the frame of the channel
// the waveform is played on; the modulus of every sample must stay within
// unit norm.
type Waveform struct {
	samples []complex128
	name    string
	digest  string
}

// WaveformOpts carries the optional knobs accepted by NewWaveform.
type WaveformOpts struct {
	// Name labels the waveform in schedules, drawings and qobj payloads.
	// A digest-derived name is generated when left empty.
	Name string
	// Epsilon overrides DefaultEpsilon as the clip tolerance.
	Epsilon float64
	// Unbounded skips the unit norm check entirely. Meant for raw
	// hardware experiments; simulators still saturate at unit norm.
	Unbounded bool
}

// NewWaveform validates the given samples and wraps them into a Waveform.
// The sample slice is copied, the caller may reuse it.
func NewWaveform(samples []complex128, opts *WaveformOpts) (*Waveform, error) {
	if opts == nil {
		opts = &WaveformOpts{}
	}
	if len(samples) == 0 {
		return nil, ErrEmptyWaveform
	}
	eps := opts.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	wave := make([]complex128, len(samples))
	copy(wave, samples)
	for i, s := range wave {
		if cmplx.IsNaN(s) || cmplx.IsInf(s) {
			return nil, fmt.Errorf("sample %d: %w", i, ErrNonFiniteSample)
		}
		if opts.Unbounded {
			continue
		}
		norm := cmplx.Abs(s)
		switch {
		case norm <= 1:
		case norm <= 1+eps:
			// Rounding noise from float pipelines, pull back onto
			// the unit circle instead of failing the whole pulse.
			wave[i] = s / complex(norm, 0)
		default:
			return nil, fmt.Errorf("sample %d has norm %.9f: %w", i, norm, ErrAmplitudeLimit)
		}
	}
	w := &Waveform{samples: wave}
	w.digest = waveDigest(wave)
	w.name = opts.Name
	if w.name == "" {
		w.name = "waveform_" + w.digest[:10]
	}
	return w, nil
}

// Samples returns a copy of the sample list.
func (w *Waveform) Samples() []complex128 {
	out := make([]complex128, len(w.samples))
	copy(out, w.samples)
	return out
}

// Len returns the number of samples, which is also the playback duration
// in dt ticks.
func (w *Waveform) Len() int { return len(w.samples) }

// Name returns the waveform label.
func (w *Waveform) Name() string { return w.name }

// Digest returns a content hash of the sample data. Two waveforms with
// identical samples share a digest regardless of their names, which lets
// assembled payloads deduplicate the pulse library.
func (w *Waveform) Digest() string { return w.digest }

// At returns the sample at tick i, or zero outside the waveform.
func (w *Waveform) At(i int) complex128 {
	if i < 0 || i >= len(w.samples) {
		return 0
	}
	return w.samples[i]
}

// MaxNorm returns the largest sample modulus.
func (w *Waveform) MaxNorm() float64 {
	var max float64
	for _, s := range w.samples {
		if n := cmplx.Abs(s); n > max {
			max = n
		}
	}
	return max
}

// String implements fmt.Stringer.
func (w *Waveform) String() string {
	return fmt.Sprintf("Waveform(%s, %d samples)", w.name, len(w.samples))
}

func waveDigest(samples []complex128) string {
	h := sha256.New()
	var buf [16]byte
	for _, s := range samples {
		putFloat64(buf[:8], real(s))
		putFloat64(buf[8:], imag(s))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func putFloat64(b []byte, f float64) {
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
}
