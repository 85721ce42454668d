package provider

import "fmt"

// Default run parameters applied when RunOpts leaves them zero.
const (
	DefaultShots = 1024
	// MeasLevelKerneled returns one IQ-plane point per shot and slot.
	MeasLevelKerneled = 1
	// MeasLevelClassified returns discriminated bits, aggregated into
	// counts.
	MeasLevelClassified = 2
)

// Configuration describes a backend's hardware parameters. All frequencies
// are in Hz, DT in seconds per sample tick.
type Configuration struct {
	BackendName    string    `json:"backend_name"`
	BackendVersion string    `json:"backend_version"`
	NumQubits      int       `json:"n_qubits"`
	DT             float64   `json:"dt"`
	MaxShots       int       `json:"max_shots"`
	MemorySlots    int       `json:"memory_slots"`
	DriveFreqs     []float64 `json:"qubit_freq_est,omitempty"`
	MeasFreqs      []float64 `json:"meas_freq_est,omitempty"`
	Simulator      bool      `json:"simulator"`
	OpenPulse      bool      `json:"open_pulse"`
	Description    string    `json:"description,omitempty"`
}

// BackendStatus is a point-in-time availability snapshot.
type BackendStatus struct {
	Operational bool   `json:"operational"`
	PendingJobs int    `json:"pending_jobs"`
	Message     string `json:"status_msg,omitempty"`
}

// RunOpts carries the optional execution knobs accepted by Backend.Run.
type RunOpts struct {
	// Shots is the number of schedule repetitions. Defaults to
	// DefaultShots.
	Shots int
	// MeasLevel selects the result fidelity: MeasLevelKerneled for IQ
	// points, MeasLevelClassified (default) for discriminated counts.
	MeasLevel int
	// MeasReturn selects "avg" or "single" memory for kerneled results.
	// Defaults to "avg".
	MeasReturn string
	// Seed fixes the sampling RNG of simulator backends. Zero picks a
	// random seed.
	Seed int64
	// Name overrides the job name. Defaults to the schedule name.
	Name string
}

// withDefaults returns a copy of o with zero fields replaced by defaults.
// A nil receiver yields the full default set.
func (o *RunOpts) withDefaults() RunOpts {
	var out RunOpts
	if o != nil {
		out = *o
	}
	if out.Shots == 0 {
		out.Shots = DefaultShots
	}
	if out.MeasLevel == 0 {
		out.MeasLevel = MeasLevelClassified
	}
	if out.MeasReturn == "" {
		out.MeasReturn = "avg"
	}
	return out
}

// NormalizeRunOpts validates o against the backend configuration and
// returns a copy with defaults filled in. Backends call this at the top of
// Run.
func NormalizeRunOpts(o *RunOpts, cfg Configuration) (RunOpts, error) {
	out := o.withDefaults()
	if out.Shots < 0 || (cfg.MaxShots > 0 && out.Shots > cfg.MaxShots) {
		return out, fmt.Errorf("%d shots (max %d): %w", out.Shots, cfg.MaxShots, ErrTooManyShots)
	}
	if out.MeasLevel != MeasLevelKerneled && out.MeasLevel != MeasLevelClassified {
		return out, fmt.Errorf("meas level %d: %w", out.MeasLevel, ErrBadMeasLevel)
	}
	if out.MeasReturn != "avg" && out.MeasReturn != "single" {
		return out, fmt.Errorf("meas return %q: %w", out.MeasReturn, ErrBadMeasLevel)
	}
	return out, nil
}
