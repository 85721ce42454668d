// Package simulator provides a local pulse-level backend: schedules evolve
// single-qubit states in the rotating frame of their channels, and
// acquisitions sample the resulting excited-state populations shot by shot.
// It implements the provider interfaces, so anything that runs against
// remote hardware runs against it unchanged.
package simulator

import (
	"context"
	"fmt"
	"sort"

	"github.com/cjliu20152/qiskit/pkg/logger"
	"github.com/cjliu20152/qiskit/pkg/provider"
)

// ProviderName is the name the simulator registers under.
const ProviderName = "pulsesim"

// Provider serves the built-in simulated devices.
type Provider struct {
	log      logger.Logger
	backends map[string]*Backend
}

// ProviderOpts carries the optional knobs accepted by NewProvider.
type ProviderOpts struct {
	// Logger receives job lifecycle logs. Defaults to the nop logger.
	Logger logger.Logger
	// Params overrides the device model per backend name.
	Params map[string]Params
}

// NewProvider builds a provider serving the stock simulated devices.
func NewProvider(opts *ProviderOpts) *Provider {
	if opts == nil {
		opts = &ProviderOpts{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	p := &Provider{log: log, backends: make(map[string]*Backend)}
	for _, cfg := range DeviceConfigurations() {
		p.backends[cfg.BackendName] = NewBackend(cfg, opts.Params[cfg.BackendName], log)
	}
	return p
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return ProviderName }

// Backends implements provider.Provider, sorted by name.
func (p *Provider) Backends(ctx context.Context) ([]provider.Backend, error) {
	out := make([]provider.Backend, 0, len(p.backends))
	for _, b := range p.backends {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Backend implements provider.Provider.
func (p *Provider) Backend(ctx context.Context, name string) (provider.Backend, error) {
	b, ok := p.backends[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, provider.ErrBackendNotFound)
	}
	return b, nil
}

// Simulated resolves a backend to its concrete simulator type, for callers
// needing Execute.
func (p *Provider) Simulated(name string) (*Backend, error) {
	b, ok := p.backends[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, provider.ErrBackendNotFound)
	}
	return b, nil
}

// DeviceConfigurations returns the stock simulated devices: a single-qubit
// device tuned like a small transmon chip, and a five-qubit device with a
// spread of drive frequencies.
func DeviceConfigurations() []provider.Configuration {
	return []provider.Configuration{
		{
			BackendName:    "sim1q",
			BackendVersion: "1.0.0",
			NumQubits:      1,
			DT:             1.0 / 4.5e9,
			MaxShots:       8192,
			MemorySlots:    1,
			DriveFreqs:     []float64{4.974e9},
			MeasFreqs:      []float64{6.993e9},
			Simulator:      true,
			OpenPulse:      true,
			Description:    "single transmon pulse simulator",
		},
		{
			BackendName:    "sim5q",
			BackendVersion: "1.0.0",
			NumQubits:      5,
			DT:             1.0 / 4.5e9,
			MaxShots:       8192,
			MemorySlots:    5,
			DriveFreqs:     []float64{4.744e9, 4.823e9, 4.901e9, 4.982e9, 5.058e9},
			MeasFreqs:      []float64{6.902e9, 6.958e9, 7.013e9, 7.069e9, 7.124e9},
			Simulator:      true,
			OpenPulse:      true,
			Description:    "five transmon pulse simulator",
		},
	}
}
