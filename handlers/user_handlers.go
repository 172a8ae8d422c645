package handlers

import (
	"strings"

	"shopledger/models"
	"shopledger/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HandleListUsers lists the users of the caller's shop.
// GET /api/v1/users
func (h *Handler) HandleListUsers(c *fiber.Ctx) error {
	shopID := claims(c).ShopID
	page, pageSize := utils.PageParams(c)

	users, total, err := h.Users.ListByShop(c.UserContext(), shopID, page, pageSize)
	if err != nil {
		return h.repoError(c, err, "fetch users", zap.String("shop_id", shopID))
	}
	return success(c, fiber.StatusOK, models.PaginatedUsersResponse{
		Data:       users,
		Pagination: utils.CreatePagination(total, page, pageSize),
	})
}

// HandleCreateUser adds an owner or staff account to the caller's shop.
// POST /api/v1/users
func (h *Handler) HandleCreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	req.Role, _ = utils.ValidateAndNormalizeRole(req.Role)
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not process password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		ShopID:       claims(c).ShopID,
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := h.Users.Create(c.UserContext(), user); err != nil {
		return h.repoError(c, err, "create user", zap.String("shop_id", user.ShopID))
	}
	return success(c, fiber.StatusCreated, user)
}

// HandleUpdateUser changes name, email and role.
// PUT /api/v1/users/:id
func (h *Handler) HandleUpdateUser(c *fiber.Ctx) error {
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	req.Role, _ = utils.ValidateAndNormalizeRole(req.Role)
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	cl := claims(c)
	id := c.Params("id")
	if id == cl.UserID && req.Role != models.RoleOwner {
		return errorResponse(c, fiber.StatusBadRequest, "You cannot remove your own owner role")
	}

	ctx := c.UserContext()
	user, err := h.Users.FindByID(ctx, cl.ShopID, id)
	if err != nil {
		return h.repoError(c, err, "update user", zap.String("user_id", id))
	}
	user.Name = strings.TrimSpace(req.Name)
	user.Email = req.Email
	user.Role = req.Role
	if err := h.Users.Update(ctx, user); err != nil {
		return h.repoError(c, err, "update user", zap.String("user_id", id))
	}
	return success(c, fiber.StatusOK, user)
}

// HandleSetUserStatus activates or deactivates a user.
// PUT /api/v1/users/:id/status
func (h *Handler) HandleSetUserStatus(c *fiber.Ctx) error {
	var req models.SetUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	cl := claims(c)
	id := c.Params("id")
	if id == cl.UserID && !*req.IsActive {
		return errorResponse(c, fiber.StatusBadRequest, "You cannot deactivate your own account")
	}

	ctx := c.UserContext()
	if err := h.Users.SetActive(ctx, cl.ShopID, id, *req.IsActive); err != nil {
		return h.repoError(c, err, "update user status", zap.String("user_id", id))
	}
	user, err := h.Users.FindByID(ctx, cl.ShopID, id)
	if err != nil {
		return h.repoError(c, err, "update user status", zap.String("user_id", id))
	}
	return success(c, fiber.StatusOK, user)
}

// HandleDeleteUser removes a user from the shop.
// DELETE /api/v1/users/:id
func (h *Handler) HandleDeleteUser(c *fiber.Ctx) error {
	cl := claims(c)
	id := c.Params("id")
	if id == cl.UserID {
		return errorResponse(c, fiber.StatusBadRequest, "You cannot delete your own account")
	}
	if err := h.Users.Delete(c.UserContext(), cl.ShopID, id); err != nil {
		return h.repoError(c, err, "delete user", zap.String("user_id", id))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
