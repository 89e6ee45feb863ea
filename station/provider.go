package station

import (
	"sync/atomic"
)

// Provider holds the process-wide station index. The index is replaced
// wholesale on refresh; in-flight readers keep the snapshot they resolved.
type Provider struct {
	current atomic.Pointer[Index]
}

// NewProvider returns an empty provider. Current fails until the first Swap.
func NewProvider() *Provider { return &Provider{} }

// Current returns the live index, or ErrDataUnavailable before first load.
func (p *Provider) Current() (*Index, error) {
	idx := p.current.Load()
	if idx == nil {
		return nil, ErrDataUnavailable
	}
	return idx, nil
}

// Swap atomically installs a freshly built index.
func (p *Provider) Swap(idx *Index) { p.current.Store(idx) }
