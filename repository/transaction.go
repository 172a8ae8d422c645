package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"shopledger/models"

	"github.com/jmoiron/sqlx"
)

type TransactionPGRepository struct {
	DB *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionPGRepository {
	return &TransactionPGRepository{DB: db}
}

const transactionSelect = `
	SELECT t.id, t.shop_id, t.kind, t.amount, t.quantity, t.product_id, p.name AS product_name,
	       t.comment, t.created_by, t.created_at, t.updated_at
	FROM transactions t
	LEFT JOIN products p ON p.id = t.product_id`

func (r *TransactionPGRepository) Create(ctx context.Context, t *models.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = Now()
	}
	t.UpdatedAt = t.CreatedAt

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if t.Kind == models.KindSale && t.ProductID != nil && t.Quantity != nil {
		if err := changeStock(ctx, tx, t.ShopID, *t.ProductID, -*t.Quantity); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO transactions (id, shop_id, kind, amount, quantity, product_id, comment, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.ShopID, string(t.Kind), t.Amount, t.Quantity, t.ProductID, t.Comment, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *TransactionPGRepository) FindByID(ctx context.Context, shopID, id string) (*models.Transaction, error) {
	return findTransaction(ctx, r.DB, shopID, id)
}

func (r *TransactionPGRepository) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	conditions := []string{"t.shop_id = ?"}
	args := []interface{}{f.ShopID}

	if f.Kind != "" {
		conditions = append(conditions, "t.kind = ?")
		args = append(args, string(f.Kind))
	}
	if !f.From.IsZero() {
		conditions = append(conditions, "t.created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conditions = append(conditions, "t.created_at < ?")
		args = append(args, f.To.UTC())
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.DB.GetContext(ctx, &total, r.DB.Rebind("SELECT count(*) FROM transactions t"+where), args...); err != nil {
		return nil, 0, err
	}

	query := transactionSelect + where + " ORDER BY t.created_at DESC, t.id DESC"
	if f.PageSize > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.PageSize, offset(f.Page, f.PageSize))
	}

	txs := make([]models.Transaction, 0)
	if err := r.DB.SelectContext(ctx, &txs, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// Update changes the editable fields of a transaction: amount and comment.
func (r *TransactionPGRepository) Update(ctx context.Context, t *models.Transaction) error {
	t.UpdatedAt = Now()
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		UPDATE transactions SET amount = ?, comment = ?, updated_at = ?
		WHERE shop_id = ? AND id = ?`),
		t.Amount, t.Comment, t.UpdatedAt, t.ShopID, t.ID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *TransactionPGRepository) Delete(ctx context.Context, shopID, id string) (*models.Transaction, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	t, err := findTransaction(ctx, tx, shopID, id)
	if err != nil {
		return nil, err
	}

	if t.Kind == models.KindSale && t.ProductID != nil && t.Quantity != nil {
		err := changeStock(ctx, tx, shopID, *t.ProductID, *t.Quantity)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM transactions WHERE shop_id = ? AND id = ?`), shopID, id)
	if err != nil {
		return nil, err
	}
	if err := expectRow(res); err != nil {
		return nil, err
	}
	return t, tx.Commit()
}

func findTransaction(ctx context.Context, db sqlx.ExtContext, shopID, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := sqlx.GetContext(ctx, db, &t, db.Rebind(transactionSelect+` WHERE t.shop_id = ? AND t.id = ?`), shopID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
