// Package sequence provides the domain contract for invoice number allocation.
package sequence

import (
	"context"
	"sync/atomic"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	NextFunc func(ctx context.Context, key string) (int64, error)

	counter atomic.Int64
}

// Next implements Allocator.
func (m *MockAllocator) Next(ctx context.Context, key string) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, key)
	}
	// Default: in-memory atomic counter starting at 1
	return m.counter.Add(1), nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
