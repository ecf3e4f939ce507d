package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/bookstore/internal/models"
)

func sampleReceipt() *models.Receipt {
	return &models.Receipt{
		Order: models.Order{
			ID:            7,
			CustomerName:  "Jane",
			CustomerEmail: "jane@example.com",
			Total:         decimal.NewFromInt(997),
			CreatedAt:     time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
		},
		Lines: []models.ReceiptLine{
			{Title: "Clean Code", Author: "Robert C. Martin", Quantity: 2, PriceAtPurchase: decimal.NewFromInt(299)},
			{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", Quantity: 1, PriceAtPurchase: decimal.NewFromInt(399)},
		},
	}
}

func TestWriteText_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReceipt()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "receipt", buf.Bytes())
}

func TestHTML_EscapesAndRendersLines(t *testing.T) {
	r := sampleReceipt()
	r.Order.CustomerName = "<script>alert(1)</script>"

	var buf bytes.Buffer
	require.NoError(t, HTML().ExecuteTemplate(&buf, BillTemplate, r))
	out := buf.String()

	assert.Contains(t, out, "<h1>Bill #7</h1>")
	assert.Contains(t, out, "<td>Clean Code</td><td>Robert C. Martin</td><td>2</td><td>299.00</td><td>598.00</td>")
	assert.Contains(t, out, "Total: 997.00")
	assert.NotContains(t, out, "<script>")
}
