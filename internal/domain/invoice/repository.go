package invoice

import (
	"context"

	"invoicing/internal/core/id"
)

// Repository defines persistence operations for invoices.
//
// All methods operating on one invoice touch its header and table parts as a
// single unit; callers run mutations inside a transaction via tx.Manager so a
// reader never observes a half-written item or sundry list.
type Repository interface {
	// Create persists a new invoice with its items and sundries.
	Create(ctx context.Context, inv *Invoice) error

	// GetByID loads an invoice with all items and sundries,
	// or a NOT_FOUND error.
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// Replace overwrites an existing invoice's header and table parts,
	// or returns a NOT_FOUND error.
	Replace(ctx context.Context, inv *Invoice) error

	// Delete removes an invoice and its table parts,
	// or returns a NOT_FOUND error.
	Delete(ctx context.Context, invoiceID id.ID) error

	// List loads all invoices with their table parts.
	List(ctx context.Context) ([]*Invoice, error)
}
