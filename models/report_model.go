package models

import "github.com/shopspring/decimal"

// LowStockProduct is a product under the low-stock threshold. Urgency is a
// presentation hint: "critical" when out of stock, "low" otherwise.
type LowStockProduct struct {
	Product
	Urgency string `json:"urgency"`
}

// DashboardSummary is derived from the full transaction and product sets of a shop.
type DashboardSummary struct {
	TotalSales        decimal.Decimal   `json:"total_sales"`
	TotalExpenses     decimal.Decimal   `json:"total_expenses"`
	NetProfit         decimal.Decimal   `json:"net_profit"`
	TotalItemsSold    int               `json:"total_items_sold"`
	TotalProducts     int               `json:"total_products"`
	TotalTransactions int               `json:"total_transactions"`
	LowStockProducts  []LowStockProduct `json:"low_stock_products"`
}

// SeriesPoint is one bucket of the daily sales series. Day is "YYYY-MM-DD".
type SeriesPoint struct {
	Day   string          `json:"day"`
	Value decimal.Decimal `json:"value"`
}

// WeeklyPoint compares sales with expenses for the week starting on WeekStart (a Monday).
type WeeklyPoint struct {
	WeekStart string          `json:"week_start"`
	Sales     decimal.Decimal `json:"sales"`
	Expenses  decimal.Decimal `json:"expenses"`
}

// TopProduct is one entry of the revenue ranking.
type TopProduct struct {
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}
