package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
)

// --- Roles & transaction kinds ---

const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// TransactionKind tags a transaction as a sale, an expense or a withdrawal.
type TransactionKind string

const (
	KindSale       TransactionKind = "sale"
	KindExpense    TransactionKind = "expense"
	KindWithdrawal TransactionKind = "withdrawal"
)

// Valid reports whether k is one of the three known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindSale, KindExpense, KindWithdrawal:
		return true
	}
	return false
}

// IsOutflow is true for expenses and withdrawals.
func (k TransactionKind) IsOutflow() bool {
	return k == KindExpense || k == KindWithdrawal
}

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	ShopID string `json:"shopId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a shop together with its owner account.
type RegisterRequest struct {
	ShopName      string  `json:"shop_name" validate:"required,max=120"`
	Name          string  `json:"name" validate:"required,max=120"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=6"`
	WhatsAppPhone *string `json:"whatsapp_phone,omitempty" validate:"omitempty,max=32"`
	Timezone      *string `json:"timezone,omitempty"`
}

// --- Core Models ---

// Shop is a tenant. It owns products, transactions and users.
type Shop struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Slug          string    `db:"slug" json:"slug"`
	WhatsAppPhone *string   `db:"whatsapp_phone" json:"whatsapp_phone,omitempty"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Timezone      string    `db:"timezone" json:"timezone"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Location returns the shop's calendar location, UTC when unset or unknown.
func (s *Shop) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// User is an owner or a staff member of a single shop.
type User struct {
	ID           string    `db:"id" json:"id"`
	ShopID       string    `db:"shop_id" json:"shop_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Product is a catalog entry. Stock is only changed by sales, restocks and
// sale deletions.
type Product struct {
	ID            string              `db:"id" json:"id"`
	ShopID        string              `db:"shop_id" json:"shop_id"`
	Name          string              `db:"name" json:"name"`
	Category      *string             `db:"category" json:"category,omitempty"`
	PurchasePrice decimal.NullDecimal `db:"purchase_price" json:"purchase_price"`
	SellingPrice  decimal.Decimal     `db:"selling_price" json:"selling_price"`
	Stock         int                 `db:"stock" json:"stock"`
	ImageURL      *string             `db:"image_url" json:"image_url,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}

// Transaction is a sale, an expense or a withdrawal. Amount is authoritative:
// it is never recomputed from the product's current price.
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	ShopID      string          `db:"shop_id" json:"shop_id"`
	Kind        TransactionKind `db:"kind" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Quantity    *int            `db:"quantity" json:"quantity,omitempty"`
	ProductID   *string         `db:"product_id" json:"product_id,omitempty"`
	ProductName *string         `db:"product_name" json:"product_name,omitempty"`
	Comment     *string         `db:"comment" json:"comment,omitempty"`
	CreatedBy   *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// --- API Request Structs ---

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=owner staff"`
}

type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=owner staff"`
}

type SetUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UpdateShopRequest struct {
	Name          string  `json:"name" validate:"required,max=120"`
	WhatsAppPhone *string `json:"whatsapp_phone,omitempty" validate:"omitempty,max=32"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Timezone      string  `json:"timezone" validate:"required"`
}

// ProductRequest is used both for creation and full updates.
type ProductRequest struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	SellingPrice  decimal.Decimal  `json:"selling_price"`
	Stock         int              `json:"stock" validate:"gte=0"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type CreateTransactionRequest struct {
	Type      TransactionKind  `json:"type" validate:"required,oneof=sale expense withdrawal"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Quantity  *int             `json:"quantity,omitempty"`
	ProductID *string          `json:"product_id,omitempty"`
	Comment   *string          `json:"comment,omitempty" validate:"omitempty,max=500"`
}

type UpdateTransactionRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Comment *string         `json:"comment,omitempty" validate:"omitempty,max=500"`
}

// --- Filters ---

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	ShopID   string
	Category string
	Search   string
	Page     int
	PageSize int
}

// TransactionFilter narrows a transaction listing. From and To are instants
// (already converted from shop-local days); a zero value leaves that side open.
type TransactionFilter struct {
	ShopID   string
	Kind     TransactionKind
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// --- Paginated Responses ---

type Pagination struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

type PaginatedProductsResponse struct {
	Items      []Product  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type PaginatedTransactionsResponse struct {
	Items      []Transaction `json:"items"`
	Pagination Pagination    `json:"pagination"`
}
