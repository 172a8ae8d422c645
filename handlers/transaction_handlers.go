package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"shopledger/events"
	"shopledger/export"
	"shopledger/models"
	"shopledger/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// transactionFilter reads ?type=&date_from=&date_to= in the shop's timezone.
func transactionFilter(c *fiber.Ctx, shop *models.Shop) (models.TransactionFilter, error) {
	f := models.TransactionFilter{ShopID: shop.ID}
	if kind := models.TransactionKind(c.Query("type")); kind != "" {
		if !kind.Valid() {
			return f, errors.New("type must be sale, expense or withdrawal")
		}
		f.Kind = kind
	}
	from, to, err := utils.DayRange(c.Query("date_from"), c.Query("date_to"), shop.Location())
	if err != nil {
		if errors.Is(err, utils.ErrInvertedRange) {
			return f, err
		}
		return f, errors.New("dates must use the YYYY-MM-DD format")
	}
	f.From, f.To = from, to
	return f, nil
}

// HandleListTransactions lists transactions newest first.
// GET /api/v1/transactions?type=&date_from=&date_to=&page=&pageSize=
func (h *Handler) HandleListTransactions(c *fiber.Ctx) error {
	shop, err := h.currentShop(c)
	if err != nil {
		return h.repoError(c, err, "fetch transactions", zap.String("shop_id", claims(c).ShopID))
	}
	filter, err := transactionFilter(c, shop)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	filter.Page, filter.PageSize = utils.PageParams(c)

	txs, total, err := h.Transactions.List(c.UserContext(), filter)
	if err != nil {
		return h.repoError(c, err, "fetch transactions", zap.String("shop_id", shop.ID))
	}
	return success(c, fiber.StatusOK, models.PaginatedTransactionsResponse{
		Items:      txs,
		Pagination: utils.CreatePagination(total, filter.Page, filter.PageSize),
	})
}

// HandleCreateTransaction records a sale, an expense or a withdrawal. A sale
// without an amount is priced at selling_price × quantity.
// POST /api/v1/transactions
func (h *Handler) HandleCreateTransaction(c *fiber.Ctx) error {
	var req models.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		return validationFailed(c, map[string]string{"amount": "gte"})
	}

	cl := claims(c)
	ctx := c.UserContext()
	tx := &models.Transaction{
		ID:        uuid.NewString(),
		ShopID:    cl.ShopID,
		Kind:      req.Type,
		Comment:   utils.TrimmedPtr(req.Comment),
		CreatedBy: &cl.UserID,
	}

	if req.Type == models.KindSale {
		if req.ProductID == nil || *req.ProductID == "" {
			return validationFailed(c, map[string]string{"product_id": "required"})
		}
		if req.Quantity == nil || *req.Quantity < 1 {
			return validationFailed(c, map[string]string{"quantity": "gt"})
		}
		product, err := h.Products.FindByID(ctx, cl.ShopID, *req.ProductID)
		if err != nil {
			return h.repoError(c, err, "create transaction", zap.String("product_id", *req.ProductID))
		}
		tx.ProductID = &product.ID
		tx.ProductName = &product.Name
		tx.Quantity = req.Quantity
		if req.Amount != nil {
			tx.Amount = req.Amount.Round(2)
		} else {
			tx.Amount = product.SellingPrice.Mul(decimal.NewFromInt(int64(*req.Quantity))).Round(2)
		}
	} else {
		if req.ProductID != nil || req.Quantity != nil {
			return errorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("A %s has no product or quantity", req.Type))
		}
		if req.Amount == nil {
			return validationFailed(c, map[string]string{"amount": "required"})
		}
		tx.Amount = req.Amount.Round(2)
	}

	if err := h.Transactions.Create(ctx, tx); err != nil {
		return h.repoError(c, err, "create transaction", zap.String("shop_id", cl.ShopID))
	}

	if tx.Kind == models.KindSale {
		h.invalidateStorefront(ctx, cl.ShopID)
	}
	h.publish(ctx, events.TransactionCreated, cl.ShopID, tx)
	return success(c, fiber.StatusCreated, tx)
}

// HandleGetTransaction GET /api/v1/transactions/:id
func (h *Handler) HandleGetTransaction(c *fiber.Ctx) error {
	id := c.Params("id")
	tx, err := h.Transactions.FindByID(c.UserContext(), claims(c).ShopID, id)
	if err != nil {
		return h.repoError(c, err, "fetch transaction", zap.String("transaction_id", id))
	}
	return success(c, fiber.StatusOK, tx)
}

// HandleUpdateTransaction edits the stored amount and the comment. Kind,
// product and quantity are immutable; stock is not touched.
// PUT /api/v1/transactions/:id
func (h *Handler) HandleUpdateTransaction(c *fiber.Ctx) error {
	var req models.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}
	if req.Amount.IsNegative() {
		return validationFailed(c, map[string]string{"amount": "gte"})
	}

	ctx := c.UserContext()
	shopID := claims(c).ShopID
	id := c.Params("id")
	tx, err := h.Transactions.FindByID(ctx, shopID, id)
	if err != nil {
		return h.repoError(c, err, "update transaction", zap.String("transaction_id", id))
	}
	tx.Amount = req.Amount.Round(2)
	tx.Comment = utils.TrimmedPtr(req.Comment)
	if err := h.Transactions.Update(ctx, tx); err != nil {
		return h.repoError(c, err, "update transaction", zap.String("transaction_id", id))
	}

	h.publish(ctx, events.TransactionUpdated, shopID, tx)
	return success(c, fiber.StatusOK, tx)
}

// HandleDeleteTransaction deletes a transaction; a sale gives its quantity
// back to the product stock.
// DELETE /api/v1/transactions/:id
func (h *Handler) HandleDeleteTransaction(c *fiber.Ctx) error {
	ctx := c.UserContext()
	shopID := claims(c).ShopID
	id := c.Params("id")

	tx, err := h.Transactions.Delete(ctx, shopID, id)
	if err != nil {
		return h.repoError(c, err, "delete transaction", zap.String("transaction_id", id))
	}
	if tx.Kind == models.KindSale {
		h.invalidateStorefront(ctx, shopID)
	}
	h.publish(ctx, events.TransactionDeleted, shopID, tx)
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleExportTransactions streams the filtered transactions as XLSX.
// GET /api/v1/transactions/export?type=&date_from=&date_to=
func (h *Handler) HandleExportTransactions(c *fiber.Ctx) error {
	shop, err := h.currentShop(c)
	if err != nil {
		return h.repoError(c, err, "export transactions", zap.String("shop_id", claims(c).ShopID))
	}
	filter, err := transactionFilter(c, shop)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	txs, _, err := h.Transactions.List(c.UserContext(), filter)
	if err != nil {
		return h.repoError(c, err, "export transactions", zap.String("shop_id", shop.ID))
	}

	var buf bytes.Buffer
	if err := export.TransactionsXLSX(&buf, txs, shop.Location()); err != nil {
		h.Log.Error("export transactions", zap.String("shop_id", shop.ID), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export transactions")
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-transactions.xlsx"`, shop.Slug))
	return c.Send(buf.Bytes())
}
