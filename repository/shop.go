package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"shopledger/models"

	"github.com/jmoiron/sqlx"
)

type ShopPGRepository struct {
	DB *sqlx.DB
}

func NewShopRepository(db *sqlx.DB) *ShopPGRepository {
	return &ShopPGRepository{DB: db}
}

const shopColumns = `id, name, slug, whatsapp_phone, description, timezone, created_at, updated_at`

func (r *ShopPGRepository) CreateWithOwner(ctx context.Context, shop *models.Shop, owner *models.User) error {
	taken, err := emailTaken(ctx, r.DB, owner.Email, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateEmail
	}
	exists, err := r.SlugExists(ctx, shop.Slug)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateSlug
	}

	now := Now()
	shop.CreatedAt, shop.UpdatedAt = now, now
	owner.ShopID = shop.ID
	owner.CreatedAt, owner.UpdatedAt = now, now

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO shops (`+shopColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		shop.ID, shop.Name, shop.Slug, shop.WhatsAppPhone, shop.Description, shop.Timezone, shop.CreatedAt, shop.UpdatedAt)
	if err != nil {
		return err
	}
	if err := insertUser(ctx, tx, owner); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ShopPGRepository) FindByID(ctx context.Context, id string) (*models.Shop, error) {
	return r.findOne(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = ?`, id)
}

func (r *ShopPGRepository) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	return r.findOne(ctx, `SELECT `+shopColumns+` FROM shops WHERE slug = ?`, strings.ToLower(slug))
}

func (r *ShopPGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, r.DB.Rebind(`SELECT count(*) FROM shops WHERE slug = ?`), slug)
	return count > 0, err
}

func (r *ShopPGRepository) Update(ctx context.Context, shop *models.Shop) error {
	shop.UpdatedAt = Now()
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		UPDATE shops
		SET name = ?, whatsapp_phone = ?, description = ?, timezone = ?, updated_at = ?
		WHERE id = ?`),
		shop.Name, shop.WhatsAppPhone, shop.Description, shop.Timezone, shop.UpdatedAt, shop.ID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *ShopPGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Shop, error) {
	var shop models.Shop
	if err := r.DB.GetContext(ctx, &shop, r.DB.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &shop, nil
}

func expectRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
