package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"invoicing/internal/core/apperror"
	"invoicing/internal/domain/invoice"
)

// --- Request DTOs ---

// CreateInvoiceRequest represents a request to create an invoice.
// The id and invoice number are assigned server-side.
type CreateInvoiceRequest struct {
	Date            string               `json:"date" binding:"required"`
	CustomerName    string               `json:"customerName" binding:"required"`
	BillingAddress  string               `json:"billingAddress" binding:"required"`
	ShippingAddress string               `json:"shippingAddress" binding:"required"`
	GSTIN           string               `json:"gstin" binding:"required"`
	TotalAmount     decimal.Decimal      `json:"totalAmount"`
	InvoiceItems    []InvoiceItemRequest `json:"invoiceItems"`
	BillSundries    []BillSundryRequest  `json:"billSundries"`
}

// InvoiceItemRequest represents one line item in a request.
// Numeric constraints are enforced by domain validation so that failures
// carry the item-level error codes.
type InvoiceItemRequest struct {
	ItemName string          `json:"itemName"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

// BillSundryRequest represents one bill sundry in a request.
// Amount is a pointer so "absent" can be told apart from zero.
type BillSundryRequest struct {
	BillSundryName string           `json:"billSundryName"`
	Amount         *decimal.Decimal `json:"amount"`
}

// ToEntity converts the request to a domain invoice.
func (r *CreateInvoiceRequest) ToEntity() (*invoice.Invoice, error) {
	inv := invoice.New(r.Date, r.CustomerName, r.BillingAddress, r.ShippingAddress, r.GSTIN)
	inv.TotalAmount = r.TotalAmount

	for _, item := range r.InvoiceItems {
		inv.AddItem(item.ItemName, item.Quantity, item.Price, item.Amount)
	}

	for i, sundry := range r.BillSundries {
		if sundry.Amount == nil {
			return nil, apperror.NewInvalidSundry("bill sundry amount must be defined", i+1)
		}
		inv.AddSundry(sundry.BillSundryName, *sundry.Amount)
	}

	return inv, nil
}

// UpdateInvoiceRequest represents an incremental update: new items and
// sundries to append. Absence of both sequences is rejected; an empty
// sequence for one while the other is populated is accepted.
type UpdateInvoiceRequest struct {
	Items    []InvoiceItemRequest `json:"items"`
	Sundries []BillSundryRequest  `json:"sundries"`
}

// ToDelta converts the request to typed delta sequences, preserving the
// absent-vs-empty distinction of the JSON payload.
func (r *UpdateInvoiceRequest) ToDelta() ([]invoice.InvoiceItem, []invoice.BillSundry, error) {
	var items []invoice.InvoiceItem
	if r.Items != nil {
		items = make([]invoice.InvoiceItem, 0, len(r.Items))
		for _, item := range r.Items {
			items = append(items, invoice.InvoiceItem{
				ItemName: item.ItemName,
				Quantity: item.Quantity,
				Price:    item.Price,
				Amount:   item.Amount,
			})
		}
	}

	var sundries []invoice.BillSundry
	if r.Sundries != nil {
		sundries = make([]invoice.BillSundry, 0, len(r.Sundries))
		for i, sundry := range r.Sundries {
			if sundry.Amount == nil {
				return nil, nil, apperror.NewInvalidSundry("bill sundry amount must be defined", i+1)
			}
			sundries = append(sundries, invoice.BillSundry{
				BillSundryName: sundry.BillSundryName,
				Amount:         *sundry.Amount,
			})
		}
	}

	return items, sundries, nil
}

// --- Response DTOs ---

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	InvoiceNumber   int64                 `json:"invoiceNumber"`
	Date            string                `json:"date"`
	CustomerName    string                `json:"customerName"`
	BillingAddress  string                `json:"billingAddress"`
	ShippingAddress string                `json:"shippingAddress"`
	GSTIN           string                `json:"gstin"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	InvoiceItems    []InvoiceItemResponse `json:"invoiceItems"`
	BillSundries    []BillSundryResponse  `json:"billSundries"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// InvoiceItemResponse represents a line item in API responses.
type InvoiceItemResponse struct {
	LineID   string          `json:"lineId"`
	LineNo   int             `json:"lineNo"`
	ItemName string          `json:"itemName"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

// BillSundryResponse represents a bill sundry in API responses.
type BillSundryResponse struct {
	LineID         string          `json:"lineId"`
	LineNo         int             `json:"lineNo"`
	BillSundryName string          `json:"billSundryName"`
	Amount         decimal.Decimal `json:"amount"`
}

// FromInvoice converts a domain invoice to a response DTO.
func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:              inv.ID.String(),
		InvoiceNumber:   inv.InvoiceNumber,
		Date:            inv.Date,
		CustomerName:    inv.CustomerName,
		BillingAddress:  inv.BillingAddress,
		ShippingAddress: inv.ShippingAddress,
		GSTIN:           inv.GSTIN,
		TotalAmount:     inv.TotalAmount,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}

	resp.InvoiceItems = make([]InvoiceItemResponse, len(inv.InvoiceItems))
	for i, item := range inv.InvoiceItems {
		resp.InvoiceItems[i] = InvoiceItemResponse{
			LineID:   item.LineID.String(),
			LineNo:   item.LineNo,
			ItemName: item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
			Amount:   item.Amount,
		}
	}

	resp.BillSundries = make([]BillSundryResponse, len(inv.BillSundries))
	for i, sundry := range inv.BillSundries {
		resp.BillSundries[i] = BillSundryResponse{
			LineID:         sundry.LineID.String(),
			LineNo:         sundry.LineNo,
			BillSundryName: sundry.BillSundryName,
			Amount:         sundry.Amount,
		}
	}

	return resp
}

// InvoiceListResponse represents all stored invoices.
type InvoiceListResponse struct {
	Items      []*InvoiceResponse `json:"items"`
	TotalCount int                `json:"totalCount"`
}
