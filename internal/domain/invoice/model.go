// Package invoice provides the Invoice aggregate: a billable document
// composed of line items and bill sundries with a derived total.
package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/core/types"
)

// Invoice represents one persisted invoice document.
// Invariant: TotalAmount == Σ item.Amount + Σ sundry.Amount.
type Invoice struct {
	ID id.ID `db:"id" json:"id"`

	// InvoiceNumber is assigned exactly once by the sequence allocator at
	// creation and is immutable thereafter.
	InvoiceNumber int64 `db:"invoice_number" json:"invoiceNumber"`

	Date            string `db:"date" json:"date"`
	CustomerName    string `db:"customer_name" json:"customerName"`
	BillingAddress  string `db:"billing_address" json:"billingAddress"`
	ShippingAddress string `db:"shipping_address" json:"shippingAddress"`
	GSTIN           string `db:"gstin" json:"gstin"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Table parts, kept in arrival order
	InvoiceItems []InvoiceItem `db:"-" json:"invoiceItems"`
	BillSundries []BillSundry  `db:"-" json:"billSundries"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// InvoiceItem is a quantity×price line contributing to the total.
type InvoiceItem struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemName string      `db:"item_name" json:"itemName"`
	Quantity int64       `db:"quantity" json:"quantity"`
	Price    types.Money `db:"price" json:"price"`
	Amount   types.Money `db:"amount" json:"amount"`
}

// BillSundry is a named flat-amount charge or adjustment not tied to
// quantity×price. Negative amounts are allowed (discounts).
type BillSundry struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	BillSundryName string      `db:"bill_sundry_name" json:"billSundryName"`
	Amount         types.Money `db:"amount" json:"amount"`
}

// New creates a new invoice with a generated ID and timestamps.
// The invoice number is assigned later, at persistence time.
func New(date, customerName, billingAddress, shippingAddress, gstin string) *Invoice {
	now := time.Now().UTC()
	return &Invoice{
		ID:              id.New(),
		Date:            date,
		CustomerName:    customerName,
		BillingAddress:  billingAddress,
		ShippingAddress: shippingAddress,
		GSTIN:           gstin,
		TotalAmount:     decimal.Zero,
		InvoiceItems:    make([]InvoiceItem, 0),
		BillSundries:    make([]BillSundry, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AddItem appends a line item, preserving arrival order.
// Totals are not recalculated here: full validation checks the supplied
// TotalAmount against the lines as-is.
func (inv *Invoice) AddItem(itemName string, quantity int64, price, amount types.Money) {
	inv.InvoiceItems = append(inv.InvoiceItems, InvoiceItem{
		LineID:   id.New(),
		LineNo:   len(inv.InvoiceItems) + 1,
		ItemName: itemName,
		Quantity: quantity,
		Price:    price,
		Amount:   amount,
	})
}

// AddSundry appends a bill sundry, preserving arrival order.
func (inv *Invoice) AddSundry(name string, amount types.Money) {
	inv.BillSundries = append(inv.BillSundries, BillSundry{
		LineID:         id.New(),
		LineNo:         len(inv.BillSundries) + 1,
		BillSundryName: name,
		Amount:         amount,
	})
}

// RecalculateTotal rederives TotalAmount from all items and sundries.
func (inv *Invoice) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range inv.InvoiceItems {
		total = total.Add(item.Amount)
	}
	for _, sundry := range inv.BillSundries {
		total = total.Add(sundry.Amount)
	}
	inv.TotalAmount = total
}

// Touch updates the UpdatedAt timestamp.
func (inv *Invoice) Touch() {
	inv.UpdatedAt = time.Now().UTC()
}

// Validate checks the full-document invariants. Pure: no I/O, no mutation.
//
// Per item: quantity > 0, price > 0, amount > 0, and amount == quantity×price
// with exact decimal equality. Per sundry: name present. The supplied
// TotalAmount must equal the sum of all item and sundry amounts exactly.
func (inv *Invoice) Validate(ctx context.Context) error {
	if inv.Date == "" {
		return apperror.NewValidation("date is required").WithDetail("field", "date")
	}
	if inv.CustomerName == "" {
		return apperror.NewValidation("customer name is required").WithDetail("field", "customerName")
	}
	if inv.BillingAddress == "" {
		return apperror.NewValidation("billing address is required").WithDetail("field", "billingAddress")
	}
	if inv.ShippingAddress == "" {
		return apperror.NewValidation("shipping address is required").WithDetail("field", "shippingAddress")
	}
	if inv.GSTIN == "" {
		return apperror.NewValidation("gstin is required").WithDetail("field", "gstin")
	}

	total := decimal.Zero

	for i, item := range inv.InvoiceItems {
		if err := validateItem(item, i+1, true); err != nil {
			return err
		}
		total = total.Add(item.Amount)
	}

	for i, sundry := range inv.BillSundries {
		if err := validateSundry(sundry, i+1); err != nil {
			return err
		}
		total = total.Add(sundry.Amount)
	}

	if !total.Equal(inv.TotalAmount) {
		return apperror.NewTotalMismatch(total.String(), inv.TotalAmount.String())
	}

	return nil
}

// ApplyDelta appends new items and sundries to the invoice.
//
// At least one of the two sequences must be provided; an empty sequence for
// one while the other is populated is accepted. Each new item is checked for
// positivity of quantity, price and amount; the supplied amount is trusted
// as-is (no quantity×price recheck on append). The delta is all-or-nothing:
// any invalid entry rejects the whole call with the invoice unchanged.
//
// On success the stored total is recomputed from the full resulting
// sequences, so a delta can never drift the total away from its lines.
func (inv *Invoice) ApplyDelta(newItems []InvoiceItem, newSundries []BillSundry) error {
	if newItems == nil && newSundries == nil {
		return apperror.NewBadDelta("at least one of items or sundries must be provided")
	}

	for i, item := range newItems {
		if err := validateItem(item, i+1, false); err != nil {
			return err
		}
	}
	for i, sundry := range newSundries {
		if err := validateSundry(sundry, i+1); err != nil {
			return err
		}
	}

	for _, item := range newItems {
		inv.AddItem(item.ItemName, item.Quantity, item.Price, item.Amount)
	}
	for _, sundry := range newSundries {
		inv.AddSundry(sundry.BillSundryName, sundry.Amount)
	}

	inv.RecalculateTotal()
	inv.Touch()

	return nil
}

// validateItem checks per-item invariants. checkArithmetic enables the exact
// amount == quantity×price equality used by full validation; incremental
// appends skip it and trust the supplied amount.
func validateItem(item InvoiceItem, lineNo int, checkArithmetic bool) error {
	if item.ItemName == "" {
		return apperror.NewInvalidItem("item name is required", lineNo)
	}
	if item.Quantity <= 0 {
		return apperror.NewInvalidItem("item quantity must be greater than zero", lineNo)
	}
	if !item.Price.IsPositive() {
		return apperror.NewInvalidItem("item price must be greater than zero", lineNo)
	}
	if !item.Amount.IsPositive() {
		return apperror.NewInvalidItem("item amount must be greater than zero", lineNo)
	}

	if checkArithmetic {
		expected := item.Price.Mul(decimal.NewFromInt(item.Quantity))
		if !item.Amount.Equal(expected) {
			return apperror.NewInvalidItem("item amount must equal quantity times price", lineNo).
				WithDetail("expected", expected.String()).
				WithDetail("got", item.Amount.String())
		}
	}

	return nil
}

// validateSundry checks that a sundry has a name. The amount carries no sign
// constraint; presence is guaranteed by the typed payload at the API boundary.
func validateSundry(sundry BillSundry, lineNo int) error {
	if sundry.BillSundryName == "" {
		return apperror.NewInvalidSundry("bill sundry name is required", lineNo)
	}
	return nil
}
