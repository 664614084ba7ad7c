package invoice

import (
	"context"
	"fmt"

	"invoicing/internal/core/id"
	"invoicing/internal/core/sequence"
	"invoicing/internal/core/tx"
	"invoicing/pkg/logger"
)

// Auditor records invoice mutations. The concrete implementation lives in the
// infrastructure layer; a nil Auditor disables the journal.
type Auditor interface {
	LogChange(ctx context.Context, invoiceID id.ID, action string, changes map[string]any) error
}

// Audit actions recorded by the service.
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// Service provides business operations for invoices.
type Service struct {
	repo      Repository
	allocator sequence.Allocator
	txManager tx.Manager
	auditor   Auditor
}

// NewService creates a new invoice service.
func NewService(repo Repository, allocator sequence.Allocator, txManager tx.Manager, auditor Auditor) *Service {
	return &Service{
		repo:      repo,
		allocator: allocator,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Create validates and persists a new invoice, assigning its invoice number.
//
// Number allocation and persistence run in one transaction: a failed insert
// rolls the counter back, so creation never consumes a number without a
// persisted invoice and the sequence stays gap-free.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.allocator.Next(ctx, sequence.InvoiceKey)
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}
		inv.InvoiceNumber = number

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, inv.ID, AuditActionCreate, map[string]any{
		"invoiceNumber": inv.InvoiceNumber,
		"totalAmount":   inv.TotalAmount.String(),
		"items":         len(inv.InvoiceItems),
		"sundries":      len(inv.BillSundries),
	})

	logger.Info(ctx, "invoice created",
		"id", inv.ID,
		"number", inv.InvoiceNumber)

	return nil
}

// GetByID retrieves an invoice with its items and sundries.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.repo.GetByID(ctx, invoiceID)
}

// Replace overwrites an invoice with a fully validated replacement document.
// The stored id and invoice number are preserved.
func (s *Service) Replace(ctx context.Context, invoiceID id.ID, replacement *Invoice) (*Invoice, error) {
	if err := replacement.Validate(ctx); err != nil {
		return nil, err
	}

	var updated *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		replacement.ID = existing.ID
		replacement.InvoiceNumber = existing.InvoiceNumber
		replacement.CreatedAt = existing.CreatedAt
		replacement.Touch()

		if err := s.repo.Replace(ctx, replacement); err != nil {
			return fmt.Errorf("replace invoice: %w", err)
		}
		updated = replacement
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, updated.ID, AuditActionUpdate, map[string]any{
		"mode":        "replace",
		"totalAmount": updated.TotalAmount.String(),
	})

	return updated, nil
}

// AppendDelta applies an incremental update: new items and sundries are
// validated, appended in arrival order, and the total recomputed, all inside
// one transaction. The delta is all-or-nothing.
func (s *Service) AppendDelta(ctx context.Context, invoiceID id.ID, newItems []InvoiceItem, newSundries []BillSundry) (*Invoice, error) {
	var updated *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		if err := inv.ApplyDelta(newItems, newSundries); err != nil {
			return err
		}

		if err := s.repo.Replace(ctx, inv); err != nil {
			return fmt.Errorf("persist delta: %w", err)
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, updated.ID, AuditActionUpdate, map[string]any{
		"mode":        "append",
		"newItems":    len(newItems),
		"newSundries": len(newSundries),
		"totalAmount": updated.TotalAmount.String(),
	})

	logger.Info(ctx, "invoice delta applied",
		"id", updated.ID,
		"total", updated.TotalAmount.String())

	return updated, nil
}

// Delete removes an invoice unconditionally. Deletion is irreversible.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, invoiceID)
	})
	if err != nil {
		return err
	}

	s.audit(ctx, invoiceID, AuditActionDelete, nil)

	logger.Info(ctx, "invoice deleted", "id", invoiceID)
	return nil
}

// List retrieves all invoices.
func (s *Service) List(ctx context.Context) ([]*Invoice, error) {
	return s.repo.List(ctx)
}

// audit records a mutation in the journal, best-effort.
func (s *Service) audit(ctx context.Context, invoiceID id.ID, action string, changes map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogChange(ctx, invoiceID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "id", invoiceID, "action", action, "error", err)
	}
}
