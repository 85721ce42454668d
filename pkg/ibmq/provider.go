package ibmq

import (
	"context"
	"fmt"

	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/pulse"
	"github.com/cjliu20152/qiskit/pkg/qobj"
)

// ProviderName identifies the remote provider in CLI output.
const ProviderName = "ibmq"

// Provider adapts a Client to the provider interfaces.
type Provider struct {
	client *Client
}

// NewProvider wraps an authenticated client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return ProviderName }

// Backends implements provider.Provider.
func (p *Provider) Backends(ctx context.Context) ([]provider.Backend, error) {
	rows, err := p.client.Backends(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]provider.Backend, 0, len(rows))
	for _, row := range rows {
		out = append(out, &Backend{client: p.client, cfg: row.Configuration})
	}
	return out, nil
}

// Backend implements provider.Provider.
func (p *Provider) Backend(ctx context.Context, name string) (provider.Backend, error) {
	row, err := p.client.BackendByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("backend %q: %w", name, provider.ErrBackendNotFound)
		}
		return nil, err
	}
	return &Backend{client: p.client, cfg: row.Configuration}, nil
}

// Backend is one remote device.
type Backend struct {
	client *Client
	cfg    provider.Configuration
}

// Name implements provider.Backend.
func (b *Backend) Name() string { return b.cfg.BackendName }

// Configuration implements provider.Backend.
func (b *Backend) Configuration() provider.Configuration { return b.cfg }

// Status implements provider.Backend.
func (b *Backend) Status(ctx context.Context) (provider.BackendStatus, error) {
	st, err := b.client.BackendStatus(ctx, b.cfg.BackendName)
	if err != nil {
		return provider.BackendStatus{}, err
	}
	return provider.BackendStatus{
		Operational: st.Operational,
		PendingJobs: st.PendingJobs,
		Message:     st.Message,
	}, nil
}

// Run assembles the schedule against this backend's configuration and
// submits it. The returned job tracks the remote row.
func (b *Backend) Run(ctx context.Context, sched *pulse.Schedule, opts *provider.RunOpts) (provider.Job, error) {
	normalized, err := provider.NormalizeRunOpts(opts, b.cfg)
	if err != nil {
		return nil, err
	}
	payload, err := qobj.Assemble([]*pulse.Schedule{sched}, b.cfg, normalized)
	if err != nil {
		return nil, err
	}
	name := normalized.Name
	if name == "" {
		name = sched.Name()
	}
	row, err := b.client.SubmitJob(ctx, &SubmitRequest{
		Backend: b.cfg.BackendName,
		Name:    name,
		Qobj:    payload,
	})
	if err != nil {
		return nil, err
	}
	return &Job{client: b.client, id: row.ID, backend: b.cfg.BackendName}, nil
}
