// Package sequence provides the domain contract for invoice number allocation.
// Implementations live in the infrastructure layer.
package sequence

import (
	"context"
)

// InvoiceKey is the counter key for the invoice number sequence.
const InvoiceKey = "invoice"

// Allocator hands out unique, monotonically increasing integers per key.
//
// Next must be safe under concurrent callers: two concurrent allocations never
// return the same value. When called inside a transaction carried by the
// context, the increment is rolled back together with the caller's work, so a
// failed creation neither persists an invoice nor consumes a number.
type Allocator interface {
	// Next returns the next value for key, strictly greater than every
	// previously returned value for that key.
	Next(ctx context.Context, key string) (int64, error)
}
