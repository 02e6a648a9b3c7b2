package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"onlyfilms/internal/httperr"
	"onlyfilms/internal/model"
)

// UserRepo persists users in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var userFilterCols = map[string]string{
	"userName": "user_name",
	"email":    "email",
}

var userPatchCols = map[string]string{
	"userName": "user_name",
	"email":    "email",
	"password": "password_hash",
	"avatar":   "avatar",
	"films":    "films",
}

const selectUser = `SELECT id, user_name, email, password_hash,
		COALESCE(avatar, '{}'), COALESCE(films, '[]'), created_at, updated_at
	FROM users`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u             model.User
		avatar, films []byte
	)
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.Password,
		&avatar, &films, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if err := json.Unmarshal(avatar, &u.Avatar); err != nil {
		return model.User{}, fmt.Errorf("decode avatar: %w", err)
	}
	if err := json.Unmarshal(films, &u.Films); err != nil {
		return model.User{}, fmt.Errorf("decode films: %w", err)
	}
	return u, nil
}

func userFilterClause(f *Filter) (string, []any, error) {
	if f == nil || f.Key == "" {
		return "", nil, nil
	}
	col, ok := userFilterCols[f.Key]
	if !ok {
		return "", nil, httperr.BadRequest("unsupported filter field: " + f.Key)
	}
	return " WHERE " + col + " = ?", []any{f.Value}, nil
}

func (r *UserRepo) queryWhere(ctx context.Context, cond string, args ...any) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, selectUser+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Query returns one page of users in insertion order.
func (r *UserRepo) Query(ctx context.Context, page, limit int, f *Filter) ([]model.User, error) {
	cond, args, err := userFilterClause(f)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	cond += " ORDER BY id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)
	return r.queryWhere(ctx, cond, args...)
}

// Count returns the number of users matching the filter.
func (r *UserRepo) Count(ctx context.Context, f *Filter) (int64, error) {
	cond, args, err := userFilterClause(f)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+cond, args...).Scan(&n)
	return n, err
}

// QueryByID fetches one user.
func (r *UserRepo) QueryByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx, selectUser+" WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, httperr.NotFound("no user found with this id")
	}
	return u, err
}

// Search returns every user whose field equals the given value.
func (r *UserRepo) Search(ctx context.Context, f Filter) ([]model.User, error) {
	cond, args, err := userFilterClause(&f)
	if err != nil {
		return nil, err
	}
	return r.queryWhere(ctx, cond+" ORDER BY id ASC", args...)
}

// Create inserts a user. The password must already be hashed.
func (r *UserRepo) Create(ctx context.Context, data model.User) (model.User, error) {
	avatar, err := json.Marshal(data.Avatar)
	if err != nil {
		return model.User{}, err
	}
	if data.Films == nil {
		data.Films = []uint64{}
	}
	films, err := json.Marshal(data.Films)
	if err != nil {
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (user_name, email, password_hash, avatar, films) VALUES (?,?,?,?,?)",
		data.UserName, data.Email, data.Password, avatar, films)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return model.User{}, httperr.Conflict("email already exists")
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.QueryByID(ctx, uint64(id))
}

// Update applies a partial update and returns the post-update user.
func (r *UserRepo) Update(ctx context.Context, id uint64, patch map[string]any) (model.User, error) {
	sets := []string{}
	args := []any{}
	for key, val := range patch {
		col, ok := userPatchCols[key]
		if !ok {
			return model.User{}, httperr.BadRequest("field cannot be updated: " + key)
		}
		if key == "avatar" || key == "films" {
			b, err := json.Marshal(val)
			if err != nil {
				return model.User{}, err
			}
			val = b
		}
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	if len(sets) > 0 {
		args = append(args, id)
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			if strings.Contains(err.Error(), "1062") {
				return model.User{}, httperr.Conflict("email already exists")
			}
			return model.User{}, err
		}
	}
	u, err := r.QueryByID(ctx, id)
	if err != nil {
		var ce *httperr.Error
		if errors.As(err, &ce) && ce.Status == 404 {
			return model.User{}, httperr.NotFound("bad id for the update")
		}
		return model.User{}, err
	}
	return u, nil
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return httperr.NotFound("bad id for the delete")
	}
	return nil
}
