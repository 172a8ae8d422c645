package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"shopledger/models"

	"github.com/jmoiron/sqlx"
)

type UserPGRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserPGRepository {
	return &UserPGRepository{DB: db}
}

const userColumns = `id, shop_id, name, email, password_hash, role, is_active, created_at, updated_at`

func (r *UserPGRepository) Create(ctx context.Context, user *models.User) error {
	taken, err := emailTaken(ctx, r.DB, user.Email, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateEmail
	}
	now := Now()
	user.CreatedAt, user.UpdatedAt = now, now
	return insertUser(ctx, r.DB, user)
}

func (r *UserPGRepository) FindByID(ctx context.Context, shopID, id string) (*models.User, error) {
	var user models.User
	err := r.DB.GetContext(ctx, &user, r.DB.Rebind(`SELECT `+userColumns+` FROM users WHERE shop_id = ? AND id = ?`), shopID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserPGRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.GetContext(ctx, &user, r.DB.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserPGRepository) ListByShop(ctx context.Context, shopID string, page, pageSize int) ([]models.User, int, error) {
	var total int
	if err := r.DB.GetContext(ctx, &total, r.DB.Rebind(`SELECT count(*) FROM users WHERE shop_id = ?`), shopID); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE shop_id = ? ORDER BY created_at DESC, name`
	args := []interface{}{shopID}
	if pageSize > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, pageSize, offset(page, pageSize))
	}

	users := make([]models.User, 0)
	if err := r.DB.SelectContext(ctx, &users, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserPGRepository) Update(ctx context.Context, user *models.User) error {
	taken, err := emailTaken(ctx, r.DB, user.Email, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateEmail
	}
	user.Email = normalizeEmail(user.Email)
	user.UpdatedAt = Now()
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		UPDATE users SET name = ?, email = ?, role = ?, updated_at = ?
		WHERE shop_id = ? AND id = ?`),
		user.Name, user.Email, user.Role, user.UpdatedAt, user.ShopID, user.ID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *UserPGRepository) SetActive(ctx context.Context, shopID, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE users SET is_active = ?, updated_at = ? WHERE shop_id = ? AND id = ?`),
		active, Now(), shopID, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *UserPGRepository) Delete(ctx context.Context, shopID, id string) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM users WHERE shop_id = ? AND id = ?`), shopID, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func insertUser(ctx context.Context, db sqlx.ExtContext, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID, user.ShopID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt)
	return err
}

func emailTaken(ctx context.Context, db sqlx.ExtContext, email, excludeID string) (bool, error) {
	query := `SELECT count(*) FROM users WHERE email = ?`
	args := []interface{}{normalizeEmail(email)}
	if excludeID != "" {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var count int
	if err := sqlx.GetContext(ctx, db, &count, db.Rebind(query), args...); err != nil {
		return false, err
	}
	return count > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
