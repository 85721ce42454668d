package pulse

import (
	"fmt"
	"math"
)

// The builders below sample standard analytic envelopes into Waveforms.
// Gaussian-family shapes are "lifted": the envelope value one tick outside
// each edge is subtracted and the remainder rescaled, so the played pulse
// starts and ends at exactly zero instead of a truncated tail.

// Gaussian samples a lifted gaussian envelope of the given length and
// standard deviation, peaking at amp in the middle.
func Gaussian(duration int64, amp complex128, sigma float64, opts *WaveformOpts) (*Waveform, error) {
	if err := checkShape(duration, sigma); err != nil {
		return nil, err
	}
	center := float64(duration) / 2
	lift := liftedGaussian(center, -1, sigma)
	samples := make([]complex128, duration)
	for t := range samples {
		samples[t] = amp * complex(lift(float64(t)), 0)
	}
	return shapeWaveform(samples, opts, "gaussian_%d", duration)
}

// GaussianSquare samples a flat plateau of the given width with lifted
// gaussian rise and fall edges filling the rest of the duration.
func GaussianSquare(duration int64, amp complex128, sigma float64, width int64, opts *WaveformOpts) (*Waveform, error) {
	if err := checkShape(duration, sigma); err != nil {
		return nil, err
	}
	if width < 0 || width > duration {
		return nil, fmt.Errorf("width %d outside [0, %d]: %w", width, duration, ErrBadParameter)
	}
	risefall := float64(duration-width) / 2
	rise := liftedGaussian(risefall, -1, sigma)
	fall := liftedGaussian(float64(duration)-risefall, float64(duration)+1, sigma)
	samples := make([]complex128, duration)
	for t := range samples {
		x := float64(t)
		var env float64
		switch {
		case x < risefall:
			env = rise(x)
		case x < risefall+float64(width):
			env = 1
		default:
			env = fall(x)
		}
		samples[t] = amp * complex(env, 0)
	}
	return shapeWaveform(samples, opts, "gaussian_square_%d", duration)
}

// Drag samples a DRAG pulse: a lifted gaussian with its scaled derivative
// on the imaginary axis, which suppresses leakage into higher transmon
// levels during fast single-qubit gates.
func Drag(duration int64, amp complex128, sigma float64, beta float64, opts *WaveformOpts) (*Waveform, error) {
	if err := checkShape(duration, sigma); err != nil {
		return nil, err
	}
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil, fmt.Errorf("beta %v: %w", beta, ErrBadParameter)
	}
	center := float64(duration) / 2
	offset := gauss(-1, center, sigma)
	scale := 1 - offset
	samples := make([]complex128, duration)
	for t := range samples {
		x := float64(t)
		g := gauss(x, center, sigma)
		env := (g - offset) / scale
		// Derivative of the lifted envelope, shares the lift rescale.
		deriv := -(x - center) / (sigma * sigma) * g / scale
		samples[t] = amp * complex(env, beta*deriv)
	}
	return shapeWaveform(samples, opts, "drag_%d", duration)
}

// Constant samples a square pulse holding amp for the whole duration.
func Constant(duration int64, amp complex128, opts *WaveformOpts) (*Waveform, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration %d: %w", duration, ErrBadParameter)
	}
	samples := make([]complex128, duration)
	for t := range samples {
		samples[t] = amp
	}
	return shapeWaveform(samples, opts, "constant_%d", duration)
}

func checkShape(duration int64, sigma float64) error {
	if duration <= 0 {
		return fmt.Errorf("duration %d: %w", duration, ErrBadParameter)
	}
	if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return fmt.Errorf("sigma %v: %w", sigma, ErrBadParameter)
	}
	return nil
}

func shapeWaveform(samples []complex128, opts *WaveformOpts, nameFormat string, duration int64) (*Waveform, error) {
	if opts == nil {
		opts = &WaveformOpts{}
	}
	if opts.Name == "" {
		named := *opts
		named.Name = fmt.Sprintf(nameFormat, duration)
		opts = &named
	}
	return NewWaveform(samples, opts)
}

func gauss(x, center, sigma float64) float64 {
	d := (x - center) / sigma
	return math.Exp(-d * d / 2)
}

// liftedGaussian returns a gaussian centered at center, rescaled so the
// envelope value at zeroAt maps to zero and the peak stays at one.
func liftedGaussian(center, zeroAt, sigma float64) func(float64) float64 {
	offset := gauss(zeroAt, center, sigma)
	scale := 1 - offset
	return func(x float64) float64 {
		return (gauss(x, center, sigma) - offset) / scale
	}
}
