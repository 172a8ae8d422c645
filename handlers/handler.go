package handlers

import (
	"context"
	"time"

	"shopledger/cache"
	"shopledger/events"
	"shopledger/insights"
	"shopledger/middleware"
	"shopledger/models"
	"shopledger/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler carries the dependencies shared by every HTTP handler.
type Handler struct {
	Shops        repository.ShopRepository
	Users        repository.UserRepository
	Products     repository.ProductRepository
	Transactions repository.TransactionRepository

	// Optional collaborators. New replaces nil Cache and Events with no-ops;
	// a nil Insights disables the insights endpoint.
	Cache    cache.Store
	Events   events.Publisher
	Insights insights.Generator

	Log             *zap.Logger
	JWTSecret       []byte
	TokenTTL        time.Duration
	DefaultTimezone string

	// Ping checks the database for /health.
	Ping func(ctx context.Context) error
}

func New(h Handler) *Handler {
	if h.Cache == nil {
		h.Cache = cache.Noop{}
	}
	if h.Events == nil {
		h.Events = events.Noop{}
	}
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	if h.TokenTTL <= 0 {
		h.TokenTTL = 72 * time.Hour
	}
	if h.DefaultTimezone == "" {
		h.DefaultTimezone = "UTC"
	}
	return &h
}

// claims returns the authenticated caller. Routes using it sit behind
// JWTMiddleware, so a miss means a wiring bug.
func claims(c *fiber.Ctx) *models.JwtClaims {
	cl, ok := middleware.ExtractClaims(c)
	if !ok {
		return &models.JwtClaims{}
	}
	return cl
}

// currentShop loads the caller's shop.
func (h *Handler) currentShop(c *fiber.Ctx) (*models.Shop, error) {
	return h.Shops.FindByID(c.UserContext(), claims(c).ShopID)
}

// allTransactions fetches the complete transaction set of a shop.
func (h *Handler) allTransactions(ctx context.Context, shopID string) ([]models.Transaction, error) {
	txs, _, err := h.Transactions.List(ctx, models.TransactionFilter{ShopID: shopID})
	return txs, err
}

func (h *Handler) allProducts(ctx context.Context, shopID string) ([]models.Product, error) {
	products, _, err := h.Products.List(ctx, models.ProductFilter{ShopID: shopID})
	return products, err
}

// invalidateStorefront drops the cached public listings of a shop. Failures
// are logged; stale entries expire with the cache TTL.
func (h *Handler) invalidateStorefront(ctx context.Context, shopID string) {
	if err := h.Cache.DeletePrefix(ctx, cache.ShopPrefix(shopID)); err != nil {
		h.Log.Warn("storefront cache invalidation failed", zap.String("shop_id", shopID), zap.Error(err))
	}
}

func (h *Handler) publish(ctx context.Context, eventType, shopID string, payload interface{}) {
	if err := h.Events.Publish(ctx, events.New(eventType, shopID, payload)); err != nil {
		h.Log.Warn("event publish failed", zap.String("event_type", eventType), zap.String("shop_id", shopID), zap.Error(err))
	}
}
