package invoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/types"
)

func validInvoice() *Invoice {
	inv := New("2026-08-29", "Acme Corp", "1 Main St", "2 Dock Rd", "22AAAAA0000A1Z5")
	inv.AddItem("Widget", 2, types.MustMoney("5"), types.MustMoney("10"))
	inv.AddSundry("Shipping", types.MustMoney("3"))
	inv.TotalAmount = types.MustMoney("13")
	return inv
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestValidate_OK(t *testing.T) {
	inv := validInvoice()
	assert.NoError(t, inv.Validate(context.Background()))
}

func TestValidate_RequiredHeaderFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Invoice)
	}{
		{"missing date", func(inv *Invoice) { inv.Date = "" }},
		{"missing customer name", func(inv *Invoice) { inv.CustomerName = "" }},
		{"missing billing address", func(inv *Invoice) { inv.BillingAddress = "" }},
		{"missing shipping address", func(inv *Invoice) { inv.ShippingAddress = "" }},
		{"missing gstin", func(inv *Invoice) { inv.GSTIN = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(inv)
			assertCode(t, inv.Validate(context.Background()), apperror.CodeValidation)
		})
	}
}

func TestValidate_ItemRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InvoiceItem)
	}{
		{"empty name", func(it *InvoiceItem) { it.ItemName = "" }},
		{"zero quantity", func(it *InvoiceItem) { it.Quantity = 0 }},
		{"negative quantity", func(it *InvoiceItem) { it.Quantity = -1 }},
		{"zero price", func(it *InvoiceItem) { it.Price = types.Zero() }},
		{"negative price", func(it *InvoiceItem) { it.Price = types.MustMoney("-5") }},
		{"zero amount", func(it *InvoiceItem) { it.Amount = types.Zero() }},
		{"amount not qty times price", func(it *InvoiceItem) { it.Amount = types.MustMoney("11") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(&inv.InvoiceItems[0])
			// Keep the total consistent with the mutated line so the
			// per-item rule is what trips, not the total check.
			inv.RecalculateTotal()

			assertCode(t, inv.Validate(context.Background()), apperror.CodeInvalidItem)
		})
	}
}

func TestValidate_ItemArithmeticIsExact(t *testing.T) {
	inv := validInvoice()
	// 2 x 5 = 10; even a tiny drift must be rejected.
	inv.InvoiceItems[0].Amount = types.MustMoney("10.000001")
	inv.RecalculateTotal()

	err := inv.Validate(context.Background())
	assertCode(t, err, apperror.CodeInvalidItem)

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 1, appErr.Details["lineNo"])
}

func TestValidate_TrailingZerosAreEqual(t *testing.T) {
	inv := validInvoice()
	inv.InvoiceItems[0].Amount = types.MustMoney("10.00")
	inv.TotalAmount = types.MustMoney("13.000")

	assert.NoError(t, inv.Validate(context.Background()))
}

func TestValidate_SundryNameRequired(t *testing.T) {
	inv := validInvoice()
	inv.BillSundries[0].BillSundryName = ""

	assertCode(t, inv.Validate(context.Background()), apperror.CodeInvalidSundry)
}

func TestValidate_NegativeSundryAllowed(t *testing.T) {
	inv := validInvoice()
	inv.AddSundry("Discount", types.MustMoney("-3"))
	inv.TotalAmount = types.MustMoney("10")

	assert.NoError(t, inv.Validate(context.Background()))
}

func TestValidate_TotalMismatch(t *testing.T) {
	inv := validInvoice()
	inv.TotalAmount = types.MustMoney("14")

	err := inv.Validate(context.Background())
	assertCode(t, err, apperror.CodeTotalMismatch)

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "13", appErr.Details["expected"])
	assert.Equal(t, "14", appErr.Details["got"])
}

func TestValidate_EmptyLinesZeroTotal(t *testing.T) {
	inv := New("2026-08-29", "Acme Corp", "1 Main St", "2 Dock Rd", "22AAAAA0000A1Z5")
	assert.NoError(t, inv.Validate(context.Background()))

	inv.TotalAmount = types.MustMoney("1")
	assertCode(t, inv.Validate(context.Background()), apperror.CodeTotalMismatch)
}

func TestRecalculateTotal(t *testing.T) {
	inv := validInvoice()
	inv.TotalAmount = types.Zero()

	inv.RecalculateTotal()

	assert.True(t, inv.TotalAmount.Equal(types.MustMoney("13")),
		"expected 13, got %s", inv.TotalAmount)
}

func TestAddItem_AssignsLineNumbers(t *testing.T) {
	inv := New("2026-08-29", "Acme Corp", "1 Main St", "2 Dock Rd", "22AAAAA0000A1Z5")
	inv.AddItem("A", 1, types.MustMoney("1"), types.MustMoney("1"))
	inv.AddItem("B", 1, types.MustMoney("2"), types.MustMoney("2"))
	inv.AddSundry("S", types.MustMoney("1"))

	assert.Equal(t, 1, inv.InvoiceItems[0].LineNo)
	assert.Equal(t, 2, inv.InvoiceItems[1].LineNo)
	assert.Equal(t, 1, inv.BillSundries[0].LineNo)
	assert.NotEqual(t, inv.InvoiceItems[0].LineID, inv.InvoiceItems[1].LineID)
}

func TestApplyDelta_AppendsAndRecomputesTotal(t *testing.T) {
	inv := validInvoice()

	err := inv.ApplyDelta([]InvoiceItem{
		{ItemName: "Gadget", Quantity: 1, Price: types.MustMoney("7"), Amount: types.MustMoney("7")},
	}, nil)
	require.NoError(t, err)

	assert.Len(t, inv.InvoiceItems, 2)
	assert.Equal(t, 2, inv.InvoiceItems[1].LineNo)
	assert.True(t, inv.TotalAmount.Equal(types.MustMoney("20")),
		"expected 20, got %s", inv.TotalAmount)
}

func TestApplyDelta_TrustsSuppliedAmount(t *testing.T) {
	inv := validInvoice()

	// 3 x 4 = 12, but the delta says 11. Appends skip the arithmetic
	// recheck; the amount is taken as given and folded into the total.
	err := inv.ApplyDelta([]InvoiceItem{
		{ItemName: "Gadget", Quantity: 3, Price: types.MustMoney("4"), Amount: types.MustMoney("11")},
	}, nil)
	require.NoError(t, err)

	assert.True(t, inv.TotalAmount.Equal(types.MustMoney("24")),
		"expected 24, got %s", inv.TotalAmount)
}

func TestApplyDelta_SundriesOnly(t *testing.T) {
	inv := validInvoice()

	err := inv.ApplyDelta(nil, []BillSundry{
		{BillSundryName: "Handling", Amount: types.MustMoney("2.50")},
		{BillSundryName: "Rebate", Amount: types.MustMoney("-1")},
	})
	require.NoError(t, err)

	assert.Len(t, inv.BillSundries, 3)
	assert.True(t, inv.TotalAmount.Equal(types.MustMoney("14.50")),
		"expected 14.50, got %s", inv.TotalAmount)
}

func TestApplyDelta_NothingProvided(t *testing.T) {
	inv := validInvoice()
	assertCode(t, inv.ApplyDelta(nil, nil), apperror.CodeBadDelta)
}

func TestApplyDelta_AllOrNothing(t *testing.T) {
	inv := validInvoice()

	items := make([]InvoiceItem, 0, 10)
	for i := 0; i < 9; i++ {
		items = append(items, InvoiceItem{
			ItemName: "Bulk",
			Quantity: 1,
			Price:    types.MustMoney("1"),
			Amount:   types.MustMoney("1"),
		})
	}
	items = append(items, InvoiceItem{ItemName: "", Quantity: 1,
		Price: types.MustMoney("1"), Amount: types.MustMoney("1")})

	err := inv.ApplyDelta(items, []BillSundry{{BillSundryName: "Fee", Amount: types.MustMoney("1")}})
	assertCode(t, err, apperror.CodeInvalidItem)

	// Nothing appended, total untouched.
	assert.Len(t, inv.InvoiceItems, 1)
	assert.Len(t, inv.BillSundries, 1)
	assert.True(t, inv.TotalAmount.Equal(types.MustMoney("13")))
}

func TestApplyDelta_RejectsNonPositiveItem(t *testing.T) {
	inv := validInvoice()

	err := inv.ApplyDelta([]InvoiceItem{
		{ItemName: "Freebie", Quantity: 1, Price: types.MustMoney("1"), Amount: types.Zero()},
	}, nil)
	assertCode(t, err, apperror.CodeInvalidItem)
	assert.Len(t, inv.InvoiceItems, 1)
}
