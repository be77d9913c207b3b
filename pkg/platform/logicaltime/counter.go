// Package logicaltime provides a monotonic logical clock, the ledger's notion
// of "now" (for example a block height).
package logicaltime

import (
	"context"
	"sync/atomic"

	id "claimledger/pkg/domain"
)

// Counter is a process-local logical clock. The zero value starts at height 0.
type Counter struct {
	height atomic.Uint64
}

func NewCounter(start id.Height) *Counter {
	c := &Counter{}
	c.height.Store(uint64(start))
	return c
}

// Height returns the current logical time.
func (c *Counter) Height(_ context.Context) id.Height {
	return id.Height(c.height.Load())
}

// Advance moves the clock forward by n ticks and returns the new height.
func (c *Counter) Advance(n uint64) id.Height {
	return id.Height(c.height.Add(n))
}

// Set jumps the clock to h. Used by hosts that track an external height.
func (c *Counter) Set(h id.Height) {
	c.height.Store(uint64(h))
}
