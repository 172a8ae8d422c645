package repository

import (
	"context"
	"errors"
	"time"

	"shopledger/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateSlug     = errors.New("shop slug already taken")
)

type ShopRepository interface {
	// CreateWithOwner stores a new shop and its first owner atomically.
	CreateWithOwner(ctx context.Context, shop *models.Shop, owner *models.User) error
	FindByID(ctx context.Context, id string) (*models.Shop, error)
	FindBySlug(ctx context.Context, slug string) (*models.Shop, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, shop *models.Shop) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, shopID, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByShop(ctx context.Context, shopID string, page, pageSize int) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, shopID, id string, active bool) error
	Delete(ctx context.Context, shopID, id string) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, shopID, id string) (*models.Product, error)
	// List returns a page of products and the total count. PageSize 0 returns everything.
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	Categories(ctx context.Context, shopID string) ([]string, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, shopID, id string) error
	AdjustStock(ctx context.Context, shopID, id string, delta int) (*models.Product, error)
}

type TransactionRepository interface {
	// Create stores a transaction. For sales it decrements the product stock
	// in the same database transaction and fails with ErrInsufficientStock.
	Create(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, shopID, id string) (*models.Transaction, error)
	// List returns transactions newest first and the total count. PageSize 0 returns everything.
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int, error)
	Update(ctx context.Context, tx *models.Transaction) error
	// Delete removes a transaction, restoring the stock of a sale whose product still exists.
	Delete(ctx context.Context, shopID, id string) (*models.Transaction, error)
}

// Now is the clock used for created_at / updated_at. Microsecond precision
// matches PostgreSQL timestamps.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
