package finance

import (
	"slices"
	"time"

	"shopledger/models"

	"github.com/shopspring/decimal"
)

// DayLayout is the label format of day and week buckets.
const DayLayout = "2006-01-02"

// MaxDailySpan is the longest range, in days, DailySales will fill.
const MaxDailySpan = 366

// DayKey returns the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(orUTC(loc)).Format(DayLayout)
}

// DailySales returns one point per calendar day of [from, to] in loc, gap
// filled with zero. from and to are reduced to their calendar day in loc. An
// inverted range, or one longer than MaxDailySpan days, yields an empty series.
func DailySales(txs []models.Transaction, from, to time.Time, loc *time.Location) []models.SeriesPoint {
	loc = orUTC(loc)
	start := startOfDay(from.In(loc))
	end := startOfDay(to.In(loc))

	points := make([]models.SeriesPoint, 0)
	if start.After(end) || end.After(start.AddDate(0, 0, MaxDailySpan-1)) {
		return points
	}

	byDay := salesByDay(txs, loc)
	y, m, d := start.Date()
	for i := 0; ; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		if day.After(end) {
			break
		}
		key := day.Format(DayLayout)
		value, ok := byDay[key]
		if !ok {
			value = decimal.Zero
		}
		points = append(points, models.SeriesPoint{Day: key, Value: value})
	}
	return points
}

// DailySalesOpen is the open-ended variant of DailySales: one point per
// distinct day that holds at least one transaction, ascending.
func DailySalesOpen(txs []models.Transaction, loc *time.Location) []models.SeriesPoint {
	loc = orUTC(loc)
	byDay := salesByDay(txs, loc)

	days := make([]string, 0)
	seen := make(map[string]bool)
	for _, tx := range txs {
		key := DayKey(tx.CreatedAt, loc)
		if !seen[key] {
			seen[key] = true
			days = append(days, key)
		}
	}
	slices.Sort(days)

	points := make([]models.SeriesPoint, 0, len(days))
	for _, day := range days {
		value, ok := byDay[day]
		if !ok {
			value = decimal.Zero
		}
		points = append(points, models.SeriesPoint{Day: day, Value: value})
	}
	return points
}

// WeekStart returns midnight of the Monday that begins t's week, in t's
// location. Sunday belongs to the preceding Monday.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeeklySalesExpenses groups transactions by week start in loc. Only weeks
// holding at least one transaction are returned, ascending.
func WeeklySalesExpenses(txs []models.Transaction, loc *time.Location) []models.WeeklyPoint {
	loc = orUTC(loc)
	buckets := make(map[string]*models.WeeklyPoint)

	for _, tx := range txs {
		key := WeekStart(tx.CreatedAt.In(loc)).Format(DayLayout)
		b, ok := buckets[key]
		if !ok {
			b = &models.WeeklyPoint{WeekStart: key, Sales: decimal.Zero, Expenses: decimal.Zero}
			buckets[key] = b
		}
		switch {
		case tx.Kind == models.KindSale:
			b.Sales = b.Sales.Add(tx.Amount)
		case tx.Kind.IsOutflow():
			b.Expenses = b.Expenses.Add(tx.Amount)
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	points := make([]models.WeeklyPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, *buckets[k])
	}
	return points
}

// FilterTransactions applies a kind and an instant window [From, To) to txs.
// ShopID and paging fields are ignored.
func FilterTransactions(txs []models.Transaction, f models.TransactionFilter) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		if !f.From.IsZero() && tx.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !tx.CreatedAt.Before(f.To) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func salesByDay(txs []models.Transaction, loc *time.Location) map[string]decimal.Decimal {
	byDay := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Kind != models.KindSale {
			continue
		}
		key := DayKey(tx.CreatedAt, loc)
		byDay[key] = byDay[key].Add(tx.Amount)
	}
	return byDay
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
