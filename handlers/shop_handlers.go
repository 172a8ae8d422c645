package handlers

import (
	"strings"
	"time"

	"shopledger/models"
	"shopledger/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HandleGetShop returns the caller's shop settings.
// GET /api/v1/shop
func (h *Handler) HandleGetShop(c *fiber.Ctx) error {
	shop, err := h.currentShop(c)
	if err != nil {
		return h.repoError(c, err, "fetch shop", zap.String("shop_id", claims(c).ShopID))
	}
	return success(c, fiber.StatusOK, shop)
}

// HandleUpdateShop updates name, WhatsApp number, description and timezone.
// The slug never changes so public links stay valid.
// PUT /api/v1/shop
func (h *Handler) HandleUpdateShop(c *fiber.Ctx) error {
	var req models.UpdateShopRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid timezone")
	}

	shop, err := h.currentShop(c)
	if err != nil {
		return h.repoError(c, err, "update shop", zap.String("shop_id", claims(c).ShopID))
	}
	shop.Name = strings.TrimSpace(req.Name)
	shop.WhatsAppPhone = utils.TrimmedPtr(req.WhatsAppPhone)
	shop.Description = utils.TrimmedPtr(req.Description)
	shop.Timezone = req.Timezone

	ctx := c.UserContext()
	if err := h.Shops.Update(ctx, shop); err != nil {
		return h.repoError(c, err, "update shop", zap.String("shop_id", shop.ID))
	}
	h.invalidateStorefront(ctx, shop.ID)
	return success(c, fiber.StatusOK, shop)
}
