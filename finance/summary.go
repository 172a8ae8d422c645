// Package finance derives dashboard figures from already-fetched transactions
// and products. Every function is a pure fold over its arguments: inputs are
// never mutated and nothing is retained between calls, so callers may invoke
// them concurrently on independent snapshots.
package finance

import (
	"cmp"
	"slices"

	"shopledger/models"

	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the exclusive upper bound for the low-stock list.
	LowStockThreshold = 5

	UrgencyCritical = "critical"
	UrgencyLow      = "low"
)

// Summarize computes the dashboard totals for one shop.
func Summarize(txs []models.Transaction, products []models.Product) models.DashboardSummary {
	sales := decimal.Zero
	expenses := decimal.Zero
	itemsSold := 0

	for _, tx := range txs {
		switch {
		case tx.Kind == models.KindSale:
			sales = sales.Add(tx.Amount)
			if tx.Quantity != nil {
				itemsSold += *tx.Quantity
			}
		case tx.Kind.IsOutflow():
			expenses = expenses.Add(tx.Amount)
		}
	}

	return models.DashboardSummary{
		TotalSales:        sales,
		TotalExpenses:     expenses,
		NetProfit:         sales.Sub(expenses),
		TotalItemsSold:    itemsSold,
		TotalProducts:     len(products),
		TotalTransactions: len(txs),
		LowStockProducts:  LowStock(products),
	}
}

// LowStock returns every product with stock below LowStockThreshold, ordered
// by ascending stock then name.
func LowStock(products []models.Product) []models.LowStockProduct {
	low := make([]models.LowStockProduct, 0)
	for _, p := range products {
		if p.Stock < LowStockThreshold {
			low = append(low, models.LowStockProduct{Product: p, Urgency: Urgency(p.Stock)})
		}
	}
	slices.SortStableFunc(low, func(a, b models.LowStockProduct) int {
		if c := cmp.Compare(a.Stock, b.Stock); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return low
}

// Urgency classifies a stock level for display. It returns "" for stock at or
// above the threshold.
func Urgency(stock int) string {
	switch {
	case stock <= 0:
		return UrgencyCritical
	case stock < LowStockThreshold:
		return UrgencyLow
	}
	return ""
}
