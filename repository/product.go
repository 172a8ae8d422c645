package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"shopledger/models"

	"github.com/jmoiron/sqlx"
)

type ProductPGRepository struct {
	DB *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductPGRepository {
	return &ProductPGRepository{DB: db}
}

const productColumns = `id, shop_id, name, category, purchase_price, selling_price, stock, image_url, created_at, updated_at`

func (r *ProductPGRepository) Create(ctx context.Context, p *models.Product) error {
	now := Now()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.ShopID, p.Name, p.Category, p.PurchasePrice, p.SellingPrice, p.Stock, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProductPGRepository) FindByID(ctx context.Context, shopID, id string) (*models.Product, error) {
	return findProduct(ctx, r.DB, shopID, id)
}

func (r *ProductPGRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	conditions := []string{"shop_id = ?"}
	args := []interface{}{f.ShopID}

	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		conditions = append(conditions, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.DB.GetContext(ctx, &total, r.DB.Rebind("SELECT count(*) FROM products"+where), args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + productColumns + " FROM products" + where + " ORDER BY name ASC, id ASC"
	if f.PageSize > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.PageSize, offset(f.Page, f.PageSize))
	}

	products := make([]models.Product, 0)
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductPGRepository) Categories(ctx context.Context, shopID string) ([]string, error) {
	categories := make([]string, 0)
	err := r.DB.SelectContext(ctx, &categories, r.DB.Rebind(`
		SELECT DISTINCT category FROM products
		WHERE shop_id = ? AND category IS NOT NULL AND category <> ''
		ORDER BY category`), shopID)
	return categories, err
}

func (r *ProductPGRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = Now()
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		UPDATE products
		SET name = ?, category = ?, purchase_price = ?, selling_price = ?, stock = ?, image_url = ?, updated_at = ?
		WHERE shop_id = ? AND id = ?`),
		p.Name, p.Category, p.PurchasePrice, p.SellingPrice, p.Stock, p.ImageURL, p.UpdatedAt, p.ShopID, p.ID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *ProductPGRepository) Delete(ctx context.Context, shopID, id string) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM products WHERE shop_id = ? AND id = ?`), shopID, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// AdjustStock adds delta (possibly negative) to the product stock. The stock
// never goes below zero.
func (r *ProductPGRepository) AdjustStock(ctx context.Context, shopID, id string, delta int) (*models.Product, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := changeStock(ctx, tx, shopID, id, delta); err != nil {
		return nil, err
	}
	p, err := findProduct(ctx, tx, shopID, id)
	if err != nil {
		return nil, err
	}
	return p, tx.Commit()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func findProduct(ctx context.Context, db sqlx.ExtContext, shopID, id string) (*models.Product, error) {
	var p models.Product
	err := sqlx.GetContext(ctx, db, &p, db.Rebind(`SELECT `+productColumns+` FROM products WHERE shop_id = ? AND id = ?`), shopID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// changeStock applies delta guarded by stock + delta >= 0. When no row is
// updated it tells a missing product apart from a shortage.
func changeStock(ctx context.Context, db sqlx.ExtContext, shopID, id string, delta int) error {
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE products SET stock = stock + ?, updated_at = ?
		WHERE shop_id = ? AND id = ? AND stock + ? >= 0`),
		delta, Now(), shopID, id, delta)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	if _, err := findProduct(ctx, db, shopID, id); err != nil {
		return err
	}
	return ErrInsufficientStock
}
