package repositories

import (
	"context"

	"busgo/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

type UserRepo struct {
	DB *sqlx.DB
}

func (r UserRepo) db() *sqlx.DB { return orGlobal(r.DB) }

func (r UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, r.db(), &u, `SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email)
	return u, notFound("user", err)
}

func (r UserRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, r.db(), &u, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
	return u, notFound("user", err)
}

func (r UserRepo) Create(ctx context.Context, u models.User) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)
	`, u.Name, u.Email, u.PasswordHash, u.Role)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r UserRepo) List(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := sqlx.SelectContext(ctx, r.db(), &out, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	return out, err
}

func (r UserRepo) Update(ctx context.Context, u models.User) error {
	res, err := r.db().ExecContext(ctx, `UPDATE users SET name=?, role=? WHERE id=?`, u.Name, u.Role, u.ID)
	if err != nil {
		return err
	}
	_, err = res.RowsAffected()
	return err
}

func (r UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res, "user")
}
