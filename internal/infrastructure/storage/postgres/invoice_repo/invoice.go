// Package invoice_repo implements the invoice repository on PostgreSQL.
package invoice_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/domain/invoice"
	"invoicing/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable = "invoices"
	itemsTable    = "invoice_items"
	sundriesTable = "bill_sundries"
)

// Compile-time check that InvoiceRepo implements invoice.Repository.
var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo persists invoices with their items and sundries.
// Table parts are rewritten wholesale on every mutation (delete + insert);
// callers wrap mutations in a transaction so readers never observe a
// half-written line list.
type InvoiceRepo struct {
	txManager *postgres.TxManager
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{txManager: txManager}
}

func (r *InvoiceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create persists a new invoice with its table parts.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	querier := r.txManager.GetQuerier(ctx)

	q := r.builder().
		Insert(invoicesTable).
		Columns(
			"id", "invoice_number", "date",
			"customer_name", "billing_address", "shipping_address", "gstin",
			"total_amount", "created_at", "updated_at",
		).
		Values(
			inv.ID, inv.InvoiceNumber, inv.Date,
			inv.CustomerName, inv.BillingAddress, inv.ShippingAddress, inv.GSTIN,
			inv.TotalAmount, inv.CreatedAt, inv.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	if err := r.saveItems(ctx, inv.ID, inv.InvoiceItems); err != nil {
		return err
	}
	return r.saveSundries(ctx, inv.ID, inv.BillSundries)
}

// GetByID loads an invoice with its table parts.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	q := r.headerSelect().Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv invoice.Invoice
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("invoice", invoiceID)
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	if err := r.loadLines(ctx, &inv); err != nil {
		return nil, err
	}

	return &inv, nil
}

// Replace overwrites an existing invoice's header and table parts.
func (r *InvoiceRepo) Replace(ctx context.Context, inv *invoice.Invoice) error {
	querier := r.txManager.GetQuerier(ctx)

	q := r.builder().
		Update(invoicesTable).
		Set("date", inv.Date).
		Set("customer_name", inv.CustomerName).
		Set("billing_address", inv.BillingAddress).
		Set("shipping_address", inv.ShippingAddress).
		Set("gstin", inv.GSTIN).
		Set("total_amount", inv.TotalAmount).
		Set("updated_at", inv.UpdatedAt).
		Where(squirrel.Eq{"id": inv.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", inv.ID)
	}

	if err := r.saveItems(ctx, inv.ID, inv.InvoiceItems); err != nil {
		return err
	}
	return r.saveSundries(ctx, inv.ID, inv.BillSundries)
}

// Delete removes an invoice; table parts are removed by FK cascade.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	tag, err := querier.Exec(ctx, "DELETE FROM "+invoicesTable+" WHERE id = $1", invoiceID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID)
	}
	return nil
}

// List loads all invoices with their table parts, ordered by invoice number.
func (r *InvoiceRepo) List(ctx context.Context) ([]*invoice.Invoice, error) {
	q := r.headerSelect().OrderBy("invoice_number")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var invoices []*invoice.Invoice
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &invoices, sql, args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	for _, inv := range invoices {
		if err := r.loadLines(ctx, inv); err != nil {
			return nil, err
		}
	}

	return invoices, nil
}

func (r *InvoiceRepo) headerSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(
			"id", "invoice_number", "date",
			"customer_name", "billing_address", "shipping_address", "gstin",
			"total_amount", "created_at", "updated_at",
		).
		From(invoicesTable)
}

// loadLines fills items and sundries in line order.
func (r *InvoiceRepo) loadLines(ctx context.Context, inv *invoice.Invoice) error {
	querier := r.txManager.GetQuerier(ctx)

	itemsQ := r.builder().
		Select("line_id", "line_no", "item_name", "quantity", "price", "amount").
		From(itemsTable).
		Where(squirrel.Eq{"invoice_id": inv.ID}).
		OrderBy("line_no")

	sql, args, err := itemsQ.ToSql()
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}

	inv.InvoiceItems = make([]invoice.InvoiceItem, 0)
	if err := pgxscan.Select(ctx, querier, &inv.InvoiceItems, sql, args...); err != nil {
		return fmt.Errorf("get items: %w", err)
	}

	sundriesQ := r.builder().
		Select("line_id", "line_no", "bill_sundry_name", "amount").
		From(sundriesTable).
		Where(squirrel.Eq{"invoice_id": inv.ID}).
		OrderBy("line_no")

	sql, args, err = sundriesQ.ToSql()
	if err != nil {
		return fmt.Errorf("build sundries query: %w", err)
	}

	inv.BillSundries = make([]invoice.BillSundry, 0)
	if err := pgxscan.Select(ctx, querier, &inv.BillSundries, sql, args...); err != nil {
		return fmt.Errorf("get sundries: %w", err)
	}

	return nil
}

// saveItems rewrites the item lines for an invoice (delete existing + insert new).
func (r *InvoiceRepo) saveItems(ctx context.Context, invoiceID id.ID, items []invoice.InvoiceItem) error {
	querier := r.txManager.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+itemsTable+" WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.builder().
		Insert(itemsTable).
		Columns("line_id", "invoice_id", "line_no", "item_name", "quantity", "price", "amount")

	for _, item := range items {
		q = q.Values(item.LineID, invoiceID, item.LineNo, item.ItemName, item.Quantity, item.Price, item.Amount)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

// saveSundries rewrites the sundry lines for an invoice.
func (r *InvoiceRepo) saveSundries(ctx context.Context, invoiceID id.ID, sundries []invoice.BillSundry) error {
	querier := r.txManager.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+sundriesTable+" WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("delete existing sundries: %w", err)
	}

	if len(sundries) == 0 {
		return nil
	}

	q := r.builder().
		Insert(sundriesTable).
		Columns("line_id", "invoice_id", "line_no", "bill_sundry_name", "amount")

	for _, sundry := range sundries {
		q = q.Values(sundry.LineID, invoiceID, sundry.LineNo, sundry.BillSundryName, sundry.Amount)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert sundries: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sundries: %w", err)
	}
	return nil
}
