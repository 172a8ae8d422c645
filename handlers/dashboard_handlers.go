package handlers

import (
	"strconv"

	"shopledger/finance"
	"shopledger/models"
	"shopledger/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// dashboardData loads the shop with its full transaction set.
func (h *Handler) dashboardData(c *fiber.Ctx) (*models.Shop, []models.Transaction, error) {
	shop, err := h.currentShop(c)
	if err != nil {
		return nil, nil, err
	}
	txs, err := h.allTransactions(c.UserContext(), shop.ID)
	if err != nil {
		return nil, nil, err
	}
	return shop, txs, nil
}

// HandleDashboardSummary GET /api/v1/dashboard/summary
func (h *Handler) HandleDashboardSummary(c *fiber.Ctx) error {
	shopID := claims(c).ShopID
	_, txs, err := h.dashboardData(c)
	if err != nil {
		return h.repoError(c, err, "build dashboard summary", zap.String("shop_id", shopID))
	}
	products, err := h.allProducts(c.UserContext(), shopID)
	if err != nil {
		return h.repoError(c, err, "build dashboard summary", zap.String("shop_id", shopID))
	}
	return success(c, fiber.StatusOK, finance.Summarize(txs, products))
}

// HandleLowStock GET /api/v1/dashboard/low-stock
func (h *Handler) HandleLowStock(c *fiber.Ctx) error {
	shopID := claims(c).ShopID
	products, err := h.allProducts(c.UserContext(), shopID)
	if err != nil {
		return h.repoError(c, err, "fetch low stock", zap.String("shop_id", shopID))
	}
	return success(c, fiber.StatusOK, finance.LowStock(products))
}

// HandleDailySales returns the per-day sales series. With both bounds the
// series is gap filled; otherwise it holds one point per day with activity.
// Malformed, inverted or over-long (finance.MaxDailySpan) ranges yield an
// empty series.
// GET /api/v1/dashboard/sales/daily?date_from=&date_to=
func (h *Handler) HandleDailySales(c *fiber.Ctx) error {
	shop, txs, err := h.dashboardData(c)
	if err != nil {
		return h.repoError(c, err, "build daily sales", zap.String("shop_id", claims(c).ShopID))
	}
	loc := shop.Location()
	fromStr, toStr := c.Query("date_from"), c.Query("date_to")

	if fromStr != "" && toStr != "" {
		from, errFrom := utils.ParseDay(fromStr, loc)
		to, errTo := utils.ParseDay(toStr, loc)
		if errFrom != nil || errTo != nil {
			return success(c, fiber.StatusOK, []models.SeriesPoint{})
		}
		return success(c, fiber.StatusOK, finance.DailySales(txs, from, to, loc))
	}

	from, to, err := utils.DayRange(fromStr, toStr, loc)
	if err != nil {
		return success(c, fiber.StatusOK, []models.SeriesPoint{})
	}
	window := finance.FilterTransactions(txs, models.TransactionFilter{From: from, To: to})
	return success(c, fiber.StatusOK, finance.DailySalesOpen(window, loc))
}

// HandleWeeklySales GET /api/v1/dashboard/sales/weekly?date_from=&date_to=
func (h *Handler) HandleWeeklySales(c *fiber.Ctx) error {
	shop, txs, err := h.dashboardData(c)
	if err != nil {
		return h.repoError(c, err, "build weekly sales", zap.String("shop_id", claims(c).ShopID))
	}
	loc := shop.Location()
	from, to, err := utils.DayRange(c.Query("date_from"), c.Query("date_to"), loc)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid date range")
	}
	window := finance.FilterTransactions(txs, models.TransactionFilter{From: from, To: to})
	return success(c, fiber.StatusOK, finance.WeeklySalesExpenses(window, loc))
}

// HandleTopProducts GET /api/v1/dashboard/top-products?date_from=&date_to=&limit=
func (h *Handler) HandleTopProducts(c *fiber.Ctx) error {
	shop, txs, err := h.dashboardData(c)
	if err != nil {
		return h.repoError(c, err, "build top products", zap.String("shop_id", claims(c).ShopID))
	}
	from, to, err := utils.DayRange(c.Query("date_from"), c.Query("date_to"), shop.Location())
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid date range")
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	window := finance.FilterTransactions(txs, models.TransactionFilter{From: from, To: to})
	return success(c, fiber.StatusOK, finance.TopProducts(window, limit))
}

// HandleInsights asks the AI model for a narrative over the dashboard
// aggregates.
// POST /api/v1/dashboard/insights
func (h *Handler) HandleInsights(c *fiber.Ctx) error {
	if h.Insights == nil {
		return errorResponse(c, fiber.StatusServiceUnavailable, "AI insights are not configured")
	}

	var req models.InsightsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
		}
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	shop, txs, err := h.dashboardData(c)
	if err != nil {
		return h.repoError(c, err, "build insights", zap.String("shop_id", claims(c).ShopID))
	}
	products, err := h.allProducts(c.UserContext(), shop.ID)
	if err != nil {
		return h.repoError(c, err, "build insights", zap.String("shop_id", shop.ID))
	}

	input := models.InsightsInput{
		ShopName: shop.Name,
		Summary:  finance.Summarize(txs, products),
		Weekly:   finance.WeeklySalesExpenses(txs, shop.Location()),
		Top:      finance.TopProducts(txs, finance.TopProductsLimit),
		Question: req.Question,
	}
	analysis, err := h.Insights.Generate(c.UserContext(), input)
	if err != nil {
		h.Log.Error("generate insights", zap.String("shop_id", shop.ID), zap.Error(err))
		return errorResponse(c, fiber.StatusBadGateway, "Failed to generate insights")
	}
	return success(c, fiber.StatusOK, fiber.Map{"analysis": analysis})
}
