package handlers

import (
	"strings"

	"shopledger/models"
	"shopledger/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// staffProduct hides the purchase price. The outer field shadows the
// embedded one during JSON encoding.
type staffProduct struct {
	models.Product
	PurchasePrice *struct{} `json:"purchase_price,omitempty"`
}

// productView adapts p to the caller's role.
func productView(c *fiber.Ctx, p models.Product) interface{} {
	if utils.IsPrivileged(claims(c).Role) {
		return p
	}
	return staffProduct{Product: p}
}

func productViews(c *fiber.Ctx, products []models.Product) []interface{} {
	out := make([]interface{}, 0, len(products))
	for _, p := range products {
		out = append(out, productView(c, p))
	}
	return out
}

// HandleListProducts lists the shop's products.
// GET /api/v1/products?category=&search=&page=&pageSize=
func (h *Handler) HandleListProducts(c *fiber.Ctx) error {
	shopID := claims(c).ShopID
	page, pageSize := utils.PageParams(c)

	products, total, err := h.Products.List(c.UserContext(), models.ProductFilter{
		ShopID:   shopID,
		Category: strings.TrimSpace(c.Query("category")),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return h.repoError(c, err, "fetch products", zap.String("shop_id", shopID))
	}
	return success(c, fiber.StatusOK, fiber.Map{
		"items":      productViews(c, products),
		"pagination": utils.CreatePagination(total, page, pageSize),
	})
}

// HandleListCategories returns the distinct non-empty categories.
// GET /api/v1/products/categories
func (h *Handler) HandleListCategories(c *fiber.Ctx) error {
	shopID := claims(c).ShopID
	categories, err := h.Products.Categories(c.UserContext(), shopID)
	if err != nil {
		return h.repoError(c, err, "fetch categories", zap.String("shop_id", shopID))
	}
	return success(c, fiber.StatusOK, categories)
}

// HandleGetProduct GET /api/v1/products/:id
func (h *Handler) HandleGetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.Products.FindByID(c.UserContext(), claims(c).ShopID, id)
	if err != nil {
		return h.repoError(c, err, "fetch product", zap.String("product_id", id))
	}
	return success(c, fiber.StatusOK, productView(c, *product))
}

// HandleCreateProduct POST /api/v1/products
func (h *Handler) HandleCreateProduct(c *fiber.Ctx) error {
	req, err := h.bindProduct(c)
	if req == nil {
		return err
	}

	product := &models.Product{ID: uuid.NewString(), ShopID: claims(c).ShopID}
	applyProduct(product, req)

	ctx := c.UserContext()
	if err := h.Products.Create(ctx, product); err != nil {
		return h.repoError(c, err, "create product", zap.String("shop_id", product.ShopID))
	}
	h.invalidateStorefront(ctx, product.ShopID)
	return success(c, fiber.StatusCreated, product)
}

// HandleUpdateProduct replaces every editable field of a product.
// PUT /api/v1/products/:id
func (h *Handler) HandleUpdateProduct(c *fiber.Ctx) error {
	req, err := h.bindProduct(c)
	if req == nil {
		return err
	}

	ctx := c.UserContext()
	id := c.Params("id")
	product, err := h.Products.FindByID(ctx, claims(c).ShopID, id)
	if err != nil {
		return h.repoError(c, err, "update product", zap.String("product_id", id))
	}
	applyProduct(product, req)
	if err := h.Products.Update(ctx, product); err != nil {
		return h.repoError(c, err, "update product", zap.String("product_id", id))
	}
	h.invalidateStorefront(ctx, product.ShopID)
	return success(c, fiber.StatusOK, product)
}

// HandleDeleteProduct DELETE /api/v1/products/:id
func (h *Handler) HandleDeleteProduct(c *fiber.Ctx) error {
	ctx := c.UserContext()
	shopID := claims(c).ShopID
	id := c.Params("id")
	if err := h.Products.Delete(ctx, shopID, id); err != nil {
		return h.repoError(c, err, "delete product", zap.String("product_id", id))
	}
	h.invalidateStorefront(ctx, shopID)
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAdjustStock adds a signed delta to the stock (restock or correction).
// PATCH /api/v1/products/:id/stock
func (h *Handler) HandleAdjustStock(c *fiber.Ctx) error {
	var req models.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	ctx := c.UserContext()
	shopID := claims(c).ShopID
	id := c.Params("id")
	product, err := h.Products.AdjustStock(ctx, shopID, id, req.Delta)
	if err != nil {
		return h.repoError(c, err, "adjust stock", zap.String("product_id", id), zap.Int("delta", req.Delta))
	}
	h.invalidateStorefront(ctx, shopID)
	return success(c, fiber.StatusOK, product)
}

// bindProduct parses and validates a product body. When it returns a nil
// request the error response has already been written.
func (h *Handler) bindProduct(c *fiber.Ctx) (*models.ProductRequest, error) {
	var req models.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return nil, validationFailed(c, errs)
	}
	if req.SellingPrice.IsNegative() {
		return nil, validationFailed(c, map[string]string{"selling_price": "gte"})
	}
	if req.PurchasePrice != nil && req.PurchasePrice.IsNegative() {
		return nil, validationFailed(c, map[string]string{"purchase_price": "gte"})
	}
	return &req, nil
}

func applyProduct(p *models.Product, req *models.ProductRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Category = utils.TrimmedPtr(req.Category)
	p.SellingPrice = req.SellingPrice.Round(2)
	p.PurchasePrice = decimal.NullDecimal{}
	if req.PurchasePrice != nil {
		p.PurchasePrice = decimal.NewNullDecimal(req.PurchasePrice.Round(2))
	}
	p.Stock = req.Stock
	p.ImageURL = utils.TrimmedPtr(req.ImageURL)
}
