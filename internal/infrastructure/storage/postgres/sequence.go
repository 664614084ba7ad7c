package postgres

import (
	"context"
	"fmt"

	"invoicing/internal/core/sequence"
)

// Compile-time check that SequenceAllocator implements sequence.Allocator.
var _ sequence.Allocator = (*SequenceAllocator)(nil)

// QuerierProvider resolves the Querier to run statements on, honoring any
// transaction carried in the context. TxManager is the production
// implementation.
type QuerierProvider interface {
	GetQuerier(ctx context.Context) Querier
}

// SequenceAllocator issues unique ascending integers from a counter table
// using a single atomic UPSERT + RETURNING statement.
//
// When called inside a transaction (via TxManager context), the counter
// update participates in that transaction: the updated row stays locked until
// commit, which serializes concurrent allocations, and a rollback restores
// the counter so failed creations leave no gap.
type SequenceAllocator struct {
	querierProvider QuerierProvider
}

// NewSequenceAllocator creates a new counter-backed allocator.
func NewSequenceAllocator(querierProvider QuerierProvider) *SequenceAllocator {
	return &SequenceAllocator{querierProvider: querierProvider}
}

// Next returns the next value for key, strictly greater than every previously
// committed value for that key.
func (a *SequenceAllocator) Next(ctx context.Context, key string) (int64, error) {
	querier := a.querierProvider.GetQuerier(ctx)

	var num int64
	err := querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next sequence value: %w", err)
	}

	return num, nil
}

// Current returns the last committed value for key, or 0 if the counter does
// not exist yet. Intended for diagnostics and tests.
func (a *SequenceAllocator) Current(ctx context.Context, key string) (int64, error) {
	querier := a.querierProvider.GetQuerier(ctx)

	var num int64
	err := querier.QueryRow(ctx, `
        SELECT COALESCE(
            (SELECT current_val FROM sys_sequences WHERE key = $1), 0)
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("current sequence value: %w", err)
	}

	return num, nil
}
