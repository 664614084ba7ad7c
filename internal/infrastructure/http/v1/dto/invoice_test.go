package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing/internal/core/apperror"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateInvoiceRequest_ToEntity(t *testing.T) {
	amount := dec("3")
	req := CreateInvoiceRequest{
		Date:            "2026-08-29",
		CustomerName:    "Acme Corp",
		BillingAddress:  "1 Main St",
		ShippingAddress: "2 Dock Rd",
		GSTIN:           "22AAAAA0000A1Z5",
		TotalAmount:     dec("13"),
		InvoiceItems: []InvoiceItemRequest{
			{ItemName: "Widget", Quantity: 2, Price: dec("5"), Amount: dec("10")},
		},
		BillSundries: []BillSundryRequest{
			{BillSundryName: "Shipping", Amount: &amount},
		},
	}

	inv, err := req.ToEntity()
	require.NoError(t, err)

	assert.False(t, inv.ID.String() == "00000000-0000-0000-0000-000000000000")
	assert.Zero(t, inv.InvoiceNumber, "number is assigned at persistence time")
	require.Len(t, inv.InvoiceItems, 1)
	assert.Equal(t, 1, inv.InvoiceItems[0].LineNo)
	require.Len(t, inv.BillSundries, 1)
	assert.True(t, inv.TotalAmount.Equal(dec("13")))
}

func TestCreateInvoiceRequest_SundryAmountRequired(t *testing.T) {
	req := CreateInvoiceRequest{
		Date:            "2026-08-29",
		CustomerName:    "Acme Corp",
		BillingAddress:  "1 Main St",
		ShippingAddress: "2 Dock Rd",
		GSTIN:           "22AAAAA0000A1Z5",
		BillSundries: []BillSundryRequest{
			{BillSundryName: "Shipping"},
		},
	}

	_, err := req.ToEntity()
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidSundry, appErr.Code)
	assert.Equal(t, 1, appErr.Details["lineNo"])
}

func TestUpdateInvoiceRequest_ToDelta_AbsentVsEmpty(t *testing.T) {
	var req UpdateInvoiceRequest
	require.NoError(t, json.Unmarshal([]byte(`{"sundries": []}`), &req))

	items, sundries, err := req.ToDelta()
	require.NoError(t, err)

	assert.Nil(t, items, "absent sequence must stay nil")
	assert.NotNil(t, sundries, "present empty sequence must stay non-nil")
	assert.Empty(t, sundries)
}

func TestUpdateInvoiceRequest_ToDelta(t *testing.T) {
	fee := dec("2.50")
	req := UpdateInvoiceRequest{
		Items: []InvoiceItemRequest{
			{ItemName: "Gadget", Quantity: 1, Price: dec("7"), Amount: dec("7")},
		},
		Sundries: []BillSundryRequest{
			{BillSundryName: "Fee", Amount: &fee},
		},
	}

	items, sundries, err := req.ToDelta()
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "Gadget", items[0].ItemName)
	assert.True(t, items[0].Amount.Equal(dec("7")))
	require.Len(t, sundries, 1)
	assert.True(t, sundries[0].Amount.Equal(dec("2.50")))
}

func TestUpdateInvoiceRequest_ToDelta_SundryAmountRequired(t *testing.T) {
	req := UpdateInvoiceRequest{
		Sundries: []BillSundryRequest{{BillSundryName: "Fee"}},
	}

	_, _, err := req.ToDelta()
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidSundry, appErr.Code)
}

func TestFromInvoice_EmptyLines(t *testing.T) {
	req := CreateInvoiceRequest{
		Date:            "2026-08-29",
		CustomerName:    "Acme Corp",
		BillingAddress:  "1 Main St",
		ShippingAddress: "2 Dock Rd",
		GSTIN:           "22AAAAA0000A1Z5",
	}
	inv, err := req.ToEntity()
	require.NoError(t, err)

	resp := FromInvoice(inv)

	// Slices serialize as [] rather than null.
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"invoiceItems":[]`)
	assert.Contains(t, string(data), `"billSundries":[]`)
}
