package postgres

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"invoicing/internal/core/sequence"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the counter table: the upsert increments, the
// diagnostic select reads the committed value.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	failWith error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return &mockRow{err: m.failWith}
	}

	key, _ := args[0].(string)

	if strings.Contains(sql, "ON CONFLICT") {
		m.counters[key]++
		return &mockRow{val: m.counters[key]}
	}

	// Diagnostic read, COALESCE to 0 for unknown keys
	return &mockRow{val: m.counters[key]}
}

type mockQuerierProvider struct {
	querier Querier
}

func (p *mockQuerierProvider) GetQuerier(ctx context.Context) Querier {
	return p.querier
}

func TestSequenceAllocator_Next(t *testing.T) {
	q := newMockQuerier()
	alloc := NewSequenceAllocator(&mockQuerierProvider{querier: q})
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := alloc.Next(ctx, sequence.InvoiceKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestSequenceAllocator_KeysAreIndependent(t *testing.T) {
	q := newMockQuerier()
	alloc := NewSequenceAllocator(&mockQuerierProvider{querier: q})
	ctx := context.Background()

	if _, err := alloc.Next(ctx, sequence.InvoiceKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := alloc.Next(ctx, sequence.InvoiceKey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := alloc.Next(ctx, "credit_note")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("expected fresh key to start at 1, got %d", got)
	}
}

func TestSequenceAllocator_ConcurrentNextIsDistinct(t *testing.T) {
	q := newMockQuerier()
	alloc := NewSequenceAllocator(&mockQuerierProvider{querier: q})
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	results := make([]int64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			num, err := alloc.Next(ctx, sequence.InvoiceKey)
			if err != nil {
				t.Errorf("next failed: %v", err)
				return
			}
			results[i] = num
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i := 0; i < n; i++ {
		if results[i] != int64(i+1) {
			t.Fatalf("expected contiguous values 1..%d, got %v at position %d", n, results[i], i)
		}
	}
}

func TestSequenceAllocator_Current(t *testing.T) {
	q := newMockQuerier()
	alloc := NewSequenceAllocator(&mockQuerierProvider{querier: q})
	ctx := context.Background()

	got, err := alloc.Current(ctx, sequence.InvoiceKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for unused key, got %d", got)
	}

	_, _ = alloc.Next(ctx, sequence.InvoiceKey)
	_, _ = alloc.Next(ctx, sequence.InvoiceKey)

	got, err = alloc.Current(ctx, sequence.InvoiceKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestSequenceAllocator_QueryFailure(t *testing.T) {
	q := newMockQuerier()
	q.failWith = pgx.ErrNoRows
	alloc := NewSequenceAllocator(&mockQuerierProvider{querier: q})

	if _, err := alloc.Next(context.Background(), sequence.InvoiceKey); err == nil {
		t.Fatal("expected error, got nil")
	}
}
