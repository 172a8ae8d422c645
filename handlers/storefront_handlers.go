package handlers

import (
	"strconv"
	"strings"

	"shopledger/cache"
	"shopledger/models"
	"shopledger/storefront"
	"shopledger/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) publicShop(c *fiber.Ctx) (*models.Shop, error) {
	return h.Shops.FindBySlug(c.UserContext(), c.Params("slug"))
}

// HandlePublicShop GET /api/v1/public/shops/:slug
func (h *Handler) HandlePublicShop(c *fiber.Ctx) error {
	shop, err := h.publicShop(c)
	if err != nil {
		return h.repoError(c, err, "fetch storefront", zap.String("slug", c.Params("slug")))
	}
	_, hasWhatsApp := storefront.WhatsAppLink(utils.Deref(shop.WhatsAppPhone, ""), "")
	return success(c, fiber.StatusOK, models.StorefrontShop{
		Name:        shop.Name,
		Slug:        shop.Slug,
		Description: shop.Description,
		HasWhatsApp: hasWhatsApp,
	})
}

// HandlePublicProducts lists a shop's catalog without purchase prices. Each
// product links to a WhatsApp chat when the shop has a number.
// GET /api/v1/public/shops/:slug/products?category=&search=
func (h *Handler) HandlePublicProducts(c *fiber.Ctx) error {
	shop, err := h.publicShop(c)
	if err != nil {
		return h.repoError(c, err, "fetch storefront", zap.String("slug", c.Params("slug")))
	}
	ctx := c.UserContext()
	category := strings.TrimSpace(c.Query("category"))
	search := strings.TrimSpace(c.Query("search"))
	key := cache.ProductsKey(shop.ID, category, search)

	var items []models.StorefrontProduct
	found, err := h.Cache.GetObject(ctx, key, &items)
	if err != nil {
		h.Log.Warn("storefront cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		c.Set("X-Cache", "HIT")
		return success(c, fiber.StatusOK, items)
	}

	products, _, err := h.Products.List(ctx, models.ProductFilter{ShopID: shop.ID, Category: category, Search: search})
	if err != nil {
		return h.repoError(c, err, "fetch storefront", zap.String("shop_id", shop.ID))
	}
	items = make([]models.StorefrontProduct, 0, len(products))
	for _, p := range products {
		items = append(items, storefrontProduct(shop, p))
	}

	if err := h.Cache.SetObject(ctx, key, items); err != nil {
		h.Log.Warn("storefront cache write failed", zap.String("key", key), zap.Error(err))
	}
	c.Set("X-Cache", "MISS")
	return success(c, fiber.StatusOK, items)
}

// HandleOrderLink builds the WhatsApp link for ordering a quantity of one
// product. The quantity must be in stock.
// GET /api/v1/public/shops/:slug/products/:id/order-link?quantity=
func (h *Handler) HandleOrderLink(c *fiber.Ctx) error {
	shop, err := h.publicShop(c)
	if err != nil {
		return h.repoError(c, err, "build order link", zap.String("slug", c.Params("slug")))
	}
	quantity, err := strconv.Atoi(c.Query("quantity", "1"))
	if err != nil || quantity < 1 {
		return errorResponse(c, fiber.StatusBadRequest, "quantity must be a positive integer")
	}

	id := c.Params("id")
	product, err := h.Products.FindByID(c.UserContext(), shop.ID, id)
	if err != nil {
		return h.repoError(c, err, "build order link", zap.String("product_id", id))
	}
	if product.Stock < quantity {
		return errorResponse(c, fiber.StatusConflict, "Not enough stock for this order")
	}

	message := storefront.OrderMessage(shop.Name, product.Name, quantity, product.SellingPrice)
	link, ok := storefront.WhatsAppLink(utils.Deref(shop.WhatsAppPhone, ""), message)
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, "This shop does not take WhatsApp orders")
	}
	return success(c, fiber.StatusOK, fiber.Map{"order_url": link})
}

func storefrontProduct(shop *models.Shop, p models.Product) models.StorefrontProduct {
	item := models.StorefrontProduct{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		SellingPrice: p.SellingPrice,
		ImageURL:     p.ImageURL,
		InStock:      p.Stock > 0,
	}
	if item.InStock {
		message := storefront.OrderMessage(shop.Name, p.Name, 1, p.SellingPrice)
		item.OrderURL, _ = storefront.WhatsAppLink(utils.Deref(shop.WhatsAppPhone, ""), message)
	}
	return item
}
