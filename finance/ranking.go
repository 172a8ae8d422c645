package finance

import (
	"cmp"
	"slices"
	"strings"

	"shopledger/models"

	"github.com/shopspring/decimal"
)

// TopProductsLimit caps the length of the product ranking.
const TopProductsLimit = 8

// TopProducts ranks products by revenue over the sale transactions of txs that
// carry a product name. Ties are broken by quantity (descending) then name.
// limit values outside (0, TopProductsLimit] fall back to TopProductsLimit.
func TopProducts(txs []models.Transaction, limit int) []models.TopProduct {
	if limit <= 0 || limit > TopProductsLimit {
		limit = TopProductsLimit
	}

	index := make(map[string]int)
	ranking := make([]models.TopProduct, 0)
	for _, tx := range txs {
		if tx.Kind != models.KindSale || tx.ProductName == nil {
			continue
		}
		name := strings.TrimSpace(*tx.ProductName)
		if name == "" {
			continue
		}

		i, ok := index[name]
		if !ok {
			i = len(ranking)
			index[name] = i
			ranking = append(ranking, models.TopProduct{ProductName: name, Revenue: decimal.Zero})
		}
		ranking[i].Revenue = ranking[i].Revenue.Add(tx.Amount)
		if tx.Quantity != nil {
			ranking[i].QuantitySold += *tx.Quantity
		}
	}

	slices.SortFunc(ranking, func(a, b models.TopProduct) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		if c := cmp.Compare(b.QuantitySold, a.QuantitySold); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductName, b.ProductName)
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}
