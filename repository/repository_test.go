package repository

import (
	"context"
	"testing"
	"time"

	"shopledger/config"
	"shopledger/database"
	"shopledger/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		URL:    "file::memory:?_pragma=foreign_keys(1)",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func seedShop(t *testing.T, db *sqlx.DB, slug, email string) (*models.Shop, *models.User) {
	t.Helper()
	shop := &models.Shop{ID: uuid.NewString(), Name: "Shop " + slug, Slug: slug, Timezone: "UTC"}
	owner := &models.User{ID: uuid.NewString(), Name: "Owner", Email: email, PasswordHash: "x", Role: models.RoleOwner, IsActive: true}
	require.NoError(t, NewShopRepository(db).CreateWithOwner(context.Background(), shop, owner))
	return shop, owner
}

func seedProduct(t *testing.T, db *sqlx.DB, shopID, name string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:           uuid.NewString(),
		ShopID:       shopID,
		Name:         name,
		SellingPrice: decimal.NewFromInt(10),
		Stock:        stock,
	}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), p))
	return p
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestShopRepository_CreateWithOwner(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	shop, owner := seedShop(t, db, "corner-shop", "Owner@Example.com")

	got, err := NewShopRepository(db).FindBySlug(ctx, "Corner-Shop")
	require.NoError(t, err)
	assert.Equal(t, shop.ID, got.ID)

	user, err := NewUserRepository(db).FindByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, user.ID)
	assert.Equal(t, shop.ID, user.ShopID)
	assert.True(t, user.IsActive)

	t.Run("duplicate email", func(t *testing.T) {
		err := NewShopRepository(db).CreateWithOwner(ctx,
			&models.Shop{ID: uuid.NewString(), Name: "Other", Slug: "other", Timezone: "UTC"},
			&models.User{ID: uuid.NewString(), Name: "X", Email: "owner@example.com", PasswordHash: "x", Role: models.RoleOwner})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		err := NewShopRepository(db).CreateWithOwner(ctx,
			&models.Shop{ID: uuid.NewString(), Name: "Other", Slug: "corner-shop", Timezone: "UTC"},
			&models.User{ID: uuid.NewString(), Name: "X", Email: "new@example.com", PasswordHash: "x", Role: models.RoleOwner})
		assert.ErrorIs(t, err, ErrDuplicateSlug)
	})

	t.Run("missing shop", func(t *testing.T) {
		_, err := NewShopRepository(db).FindByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserRepository_ScopedToShop(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	shopA, ownerA := seedShop(t, db, "a", "a@example.com")
	shopB, _ := seedShop(t, db, "b", "b@example.com")
	repo := NewUserRepository(db)

	staff := &models.User{ID: uuid.NewString(), ShopID: shopA.ID, Name: "Staff", Email: "staff@example.com", PasswordHash: "x", Role: models.RoleStaff, IsActive: true}
	require.NoError(t, repo.Create(ctx, staff))

	users, total, err := repo.ListByShop(ctx, shopA.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 2)

	_, err = repo.FindByID(ctx, shopB.ID, ownerA.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SetActive(ctx, shopA.ID, staff.ID, false))
	got, err := repo.FindByID(ctx, shopA.ID, staff.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, repo.Delete(ctx, shopB.ID, staff.ID), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, shopA.ID, staff.ID))
}

func TestProductRepository_ListAndCategories(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	shop, _ := seedShop(t, db, "p", "p@example.com")
	other, _ := seedShop(t, db, "q", "q@example.com")
	repo := NewProductRepository(db)

	for _, name := range []string{"Green Tea", "Black Tea", "Coffee"} {
		p := seedProduct(t, db, shop.ID, name, 3)
		p.Category = strPtr("drinks")
		require.NoError(t, repo.Update(ctx, p))
	}
	seedProduct(t, db, shop.ID, "Soap", 1)
	seedProduct(t, db, other.ID, "Foreign Tea", 1)

	items, total, err := repo.List(ctx, models.ProductFilter{ShopID: shop.ID, Search: "TEA"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Black Tea", items[0].Name)

	items, total, err = repo.List(ctx, models.ProductFilter{ShopID: shop.ID, Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Soap", items[0].Name)

	categories, err := repo.Categories(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"drinks"}, categories)
}

func TestProductRepository_SearchIsLiteral(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	shop, _ := seedShop(t, db, "w", "w@example.com")
	repo := NewProductRepository(db)

	seedProduct(t, db, shop.ID, "100% Juice", 3)
	seedProduct(t, db, shop.ID, "Soap_Bar", 3)
	seedProduct(t, db, shop.ID, `Back\Slash`, 3)
	seedProduct(t, db, shop.ID, "Bread", 3)

	cases := []struct {
		search string
		want   []string
	}{
		{"%", []string{"100% Juice"}},
		{"_", []string{"Soap_Bar"}},
		{`\`, []string{`Back\Slash`}},
		{"p_b", []string{"Soap_Bar"}},
		{"bre", []string{"Bread"}},
	}
	for _, tc := range cases {
		items, total, err := repo.List(ctx, models.ProductFilter{ShopID: shop.ID, Search: tc.search})
		require.NoError(t, err, tc.search)
		names := make([]string, 0, len(items))
		for _, p := range items {
			names = append(names, p.Name)
		}
		assert.Equal(t, tc.want, names, tc.search)
		assert.Equal(t, len(tc.want), total, tc.search)
	}
}

func TestProductRepository_AdjustStock(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	shop, _ := seedShop(t, db, "s", "s@example.com")
	p := seedProduct(t, db, shop.ID, "Rice", 2)
	repo := NewProductRepository(db)

	got, err := repo.AdjustStock(ctx, shop.ID, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	_, err = repo.AdjustStock(ctx, shop.ID, p.ID, -8)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = repo.AdjustStock(ctx, shop.ID, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = repo.FindByID(ctx, shop.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
}

func TestTransactionRepository_SaleLifecycle(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	shop, owner := seedShop(t, db, "t", "t@example.com")
	p := seedProduct(t, db, shop.ID, "Bread", 5)
	products := NewProductRepository(db)
	repo := NewTransactionRepository(db)

	sale := &models.Transaction{
		ID:        uuid.NewString(),
		ShopID:    shop.ID,
		Kind:      models.KindSale,
		Amount:    decimal.NewFromInt(30),
		Quantity:  intPtr(3),
		ProductID: &p.ID,
		CreatedBy: &owner.ID,
	}
	require.NoError(t, repo.Create(ctx, sale))

	stored, err := products.FindByID(ctx, shop.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Stock)

	got, err := repo.FindByID(ctx, shop.ID, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProductName)
	assert.Equal(t, "Bread", *got.ProductName)
	assert.True(t, decimal.NewFromInt(30).Equal(got.Amount))

	t.Run("insufficient stock leaves nothing behind", func(t *testing.T) {
		tooMany := &models.Transaction{
			ID: uuid.NewString(), ShopID: shop.ID, Kind: models.KindSale,
			Amount: decimal.NewFromInt(50), Quantity: intPtr(5), ProductID: &p.ID,
		}
		assert.ErrorIs(t, repo.Create(ctx, tooMany), ErrInsufficientStock)
		_, err := repo.FindByID(ctx, shop.ID, tooMany.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update edits amount and comment", func(t *testing.T) {
		got.Amount = decimal.NewFromInt(28)
		got.Comment = strPtr("discount")
		require.NoError(t, repo.Update(ctx, got))
		again, err := repo.FindByID(ctx, shop.ID, sale.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(28).Equal(again.Amount))
		assert.Equal(t, "discount", *again.Comment)
	})

	t.Run("delete restores stock", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, shop.ID, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, sale.ID, deleted.ID)
		stored, err := products.FindByID(ctx, shop.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, stored.Stock)

		_, err = repo.Delete(ctx, shop.ID, sale.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTransactionRepository_ListFilters(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	shop, _ := seedShop(t, db, "l", "l@example.com")
	other, _ := seedShop(t, db, "m", "m@example.com")
	repo := NewTransactionRepository(db)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	add := func(shopID string, kind models.TransactionKind, amount int64, at time.Time) {
		require.NoError(t, repo.Create(ctx, &models.Transaction{
			ID: uuid.NewString(), ShopID: shopID, Kind: kind,
			Amount: decimal.NewFromInt(amount), CreatedAt: at,
		}))
	}
	add(shop.ID, models.KindSale, 50, base)
	add(shop.ID, models.KindExpense, 20, base.Add(time.Hour))
	add(shop.ID, models.KindSale, 30, base.AddDate(0, 0, 1))
	add(shop.ID, models.KindWithdrawal, 5, base.AddDate(0, 0, 2))
	add(other.ID, models.KindSale, 999, base)

	all, total, err := repo.List(ctx, models.TransactionFilter{ShopID: shop.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, all, 4)
	assert.Equal(t, models.KindWithdrawal, all[0].Kind, "newest first")

	sales, total, err := repo.List(ctx, models.TransactionFilter{ShopID: shop.ID, Kind: models.KindSale})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, sales, 2)

	day, _, err := repo.List(ctx, models.TransactionFilter{
		ShopID: shop.ID,
		From:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, day, 2)

	page, total, err := repo.List(ctx, models.TransactionFilter{ShopID: shop.ID, Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 1)
	assert.Equal(t, models.KindSale, page[0].Kind)
	assert.True(t, decimal.NewFromInt(50).Equal(page[0].Amount))
}
