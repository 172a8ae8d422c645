package handlers

import (
	"errors"
	"strings"
	"time"

	"shopledger/middleware"
	"shopledger/models"
	"shopledger/repository"
	"shopledger/storefront"
	"shopledger/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HandleRegister creates a shop together with its owner and signs the owner in.
// POST /api/v1/auth/register
func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	timezone := h.DefaultTimezone
	if tz := utils.TrimmedPtr(req.Timezone); tz != nil {
		timezone = *tz
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid timezone")
	}

	ctx := c.UserContext()
	slug, err := storefront.UniqueSlug(ctx, req.ShopName, h.Shops.SlugExists)
	if err != nil {
		return h.repoError(c, err, "register shop")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not process password")
	}

	shop := &models.Shop{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.ShopName),
		Slug:          slug,
		WhatsAppPhone: utils.TrimmedPtr(req.WhatsAppPhone),
		Timezone:      timezone,
	}
	owner := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleOwner,
		IsActive:     true,
	}
	if err := h.Shops.CreateWithOwner(ctx, shop, owner); err != nil {
		return h.repoError(c, err, "register shop", zap.String("slug", slug))
	}

	h.Log.Info("shop registered", zap.String("shop_id", shop.ID), zap.String("slug", shop.Slug))
	return h.respondWithToken(c, fiber.StatusCreated, owner, shop)
}

// HandleLogin authenticates a user and returns a JWT token.
// POST /api/v1/auth/login
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	ctx := c.UserContext()
	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return h.repoError(c, err, "log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if !user.IsActive {
		return errorResponse(c, fiber.StatusUnauthorized, "User account is inactive")
	}

	shop, err := h.Shops.FindByID(ctx, user.ShopID)
	if err != nil {
		return h.repoError(c, err, "log in", zap.String("user_id", user.ID))
	}
	return h.respondWithToken(c, fiber.StatusOK, user, shop)
}

// HandleMe returns the current user and their shop.
// GET /api/v1/auth/me
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	cl := claims(c)
	ctx := c.UserContext()

	user, err := h.Users.FindByID(ctx, cl.ShopID, cl.UserID)
	if err != nil {
		return h.repoError(c, err, "fetch profile", zap.String("user_id", cl.UserID))
	}
	if !user.IsActive {
		return errorResponse(c, fiber.StatusUnauthorized, "User account is inactive")
	}
	shop, err := h.Shops.FindByID(ctx, cl.ShopID)
	if err != nil {
		return h.repoError(c, err, "fetch profile", zap.String("shop_id", cl.ShopID))
	}
	return success(c, fiber.StatusOK, models.AuthResponse{User: *user, Shop: *shop})
}

func (h *Handler) respondWithToken(c *fiber.Ctx, status int, user *models.User, shop *models.Shop) error {
	token, err := middleware.CreateJWT(h.JWTSecret, user, h.TokenTTL)
	if err != nil {
		h.Log.Error("sign token", zap.String("user_id", user.ID), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not sign token")
	}
	return success(c, status, models.AuthResponse{AccessToken: token, User: *user, Shop: *shop})
}
