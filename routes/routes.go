package routes

import (
	"shopledger/handlers"
	"shopledger/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, h *handlers.Handler) {
	app.Get("/health", h.HandleHealth)
	app.Get("/version", h.HandleVersion)

	api := app.Group("/api/v1")
	auth := middleware.JWTMiddleware(h.JWTSecret)
	owner := middleware.OwnerRequired

	// --- Authentication Routes ---
	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.HandleRegister)
	authGroup.Post("/login", h.HandleLogin)
	authGroup.Get("/me", auth, h.HandleMe)

	// --- Public Storefront ---
	public := api.Group("/public/shops/:slug")
	public.Get("/", h.HandlePublicShop)
	public.Get("/products", h.HandlePublicProducts)
	public.Get("/products/:id/order-link", h.HandleOrderLink)

	// --- Shop Settings & Staff (owner) ---
	api.Get("/shop", auth, owner, h.HandleGetShop)
	api.Put("/shop", auth, owner, h.HandleUpdateShop)

	users := api.Group("/users", auth, owner)
	users.Get("/", h.HandleListUsers)
	users.Post("/", h.HandleCreateUser)
	users.Put("/:id", h.HandleUpdateUser)
	users.Put("/:id/status", h.HandleSetUserStatus)
	users.Delete("/:id", h.HandleDeleteUser)

	// --- Products ---
	products := api.Group("/products", auth)
	products.Get("/", h.HandleListProducts)
	products.Get("/categories", h.HandleListCategories) // Must be before /:id
	products.Get("/:id", h.HandleGetProduct)
	products.Post("/", owner, h.HandleCreateProduct)
	products.Put("/:id", owner, h.HandleUpdateProduct)
	products.Delete("/:id", owner, h.HandleDeleteProduct)
	products.Patch("/:id/stock", owner, h.HandleAdjustStock)

	// --- Transactions ---
	transactions := api.Group("/transactions", auth)
	transactions.Get("/", h.HandleListTransactions)
	transactions.Get("/export", owner, h.HandleExportTransactions) // Must be before /:id
	transactions.Post("/", h.HandleCreateTransaction)
	transactions.Get("/:id", h.HandleGetTransaction)
	transactions.Put("/:id", owner, h.HandleUpdateTransaction)
	transactions.Delete("/:id", owner, h.HandleDeleteTransaction)

	// --- Dashboard (owner) ---
	dashboard := api.Group("/dashboard", auth, owner)
	dashboard.Get("/summary", h.HandleDashboardSummary)
	dashboard.Get("/low-stock", h.HandleLowStock)
	dashboard.Get("/sales/daily", h.HandleDailySales)
	dashboard.Get("/sales/weekly", h.HandleWeeklySales)
	dashboard.Get("/top-products", h.HandleTopProducts)
	dashboard.Post("/insights", h.HandleInsights)
}
