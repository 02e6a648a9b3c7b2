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

// FilmRepo persists films in the 'films' table. Reads join the owner row so
// every returned film carries a populated owner reference.
type FilmRepo struct{ DB *sql.DB }

func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{DB: db} }

// filmFilterCols whitelists the fields a Filter or Search may target.
var filmFilterCols = map[string]string{
	"genre": "f.genre",
	"title": "f.title",
	"owner": "f.owner_id",
}

// filmPatchCols maps patchable JSON keys to columns. The owner is absent on
// purpose: normal API operations never reassign a film.
var filmPatchCols = map[string]string{
	"title":    "title",
	"release":  "release_label",
	"genre":    "genre",
	"synopsis": "synopsis",
	"poster":   "poster",
	"comments": "comments",
}

const selectFilm = `SELECT f.id, f.title, f.release_label, f.genre, f.synopsis,
		COALESCE(f.poster, '{}'), f.owner_id, COALESCE(f.comments, '[]'),
		f.created_at, f.updated_at,
		u.id, u.user_name, u.email, COALESCE(u.avatar, '{}')
	FROM films f
	JOIN users u ON u.id = f.owner_id`

func scanFilm(row interface{ Scan(...any) error }) (model.Film, error) {
	var (
		f                        model.Film
		poster, comments, avatar []byte
	)
	err := row.Scan(&f.ID, &f.Title, &f.Release, &f.Genre, &f.Synopsis,
		&poster, &f.OwnerID, &comments, &f.CreatedAt, &f.UpdatedAt,
		&f.Owner.ID, &f.Owner.UserName, &f.Owner.Email, &avatar)
	if err != nil {
		return model.Film{}, err
	}
	if err := json.Unmarshal(poster, &f.Poster); err != nil {
		return model.Film{}, fmt.Errorf("decode poster: %w", err)
	}
	if err := json.Unmarshal(comments, &f.Comments); err != nil {
		return model.Film{}, fmt.Errorf("decode comments: %w", err)
	}
	if err := json.Unmarshal(avatar, &f.Owner.Avatar); err != nil {
		return model.Film{}, fmt.Errorf("decode avatar: %w", err)
	}
	return f, nil
}

func filmFilterClause(f *Filter) (string, []any, error) {
	if f == nil || f.Key == "" {
		return "", nil, nil
	}
	col, ok := filmFilterCols[f.Key]
	if !ok {
		return "", nil, httperr.BadRequest("unsupported filter field: " + f.Key)
	}
	return " WHERE " + col + " = ?", []any{f.Value}, nil
}

func (r *FilmRepo) queryWhere(ctx context.Context, cond string, args ...any) ([]model.Film, error) {
	rows, err := r.DB.QueryContext(ctx, selectFilm+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Film{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Query returns one page of films in insertion order, owner populated.
func (r *FilmRepo) Query(ctx context.Context, page, limit int, f *Filter) ([]model.Film, error) {
	cond, args, err := filmFilterClause(f)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	cond += " ORDER BY f.id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)
	return r.queryWhere(ctx, cond, args...)
}

// Count returns the number of films matching the filter.
func (r *FilmRepo) Count(ctx context.Context, f *Filter) (int64, error) {
	cond, args, err := filmFilterClause(f)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM films f"+cond, args...).Scan(&n)
	return n, err
}

// QueryByID fetches one film with its owner populated.
func (r *FilmRepo) QueryByID(ctx context.Context, id uint64) (model.Film, error) {
	row := r.DB.QueryRowContext(ctx, selectFilm+" WHERE f.id = ?", id)
	f, err := scanFilm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Film{}, httperr.NotFound("wrong id for the query")
	}
	return f, err
}

// Search returns every film whose field equals the given value.
func (r *FilmRepo) Search(ctx context.Context, f Filter) ([]model.Film, error) {
	cond, args, err := filmFilterClause(&f)
	if err != nil {
		return nil, err
	}
	return r.queryWhere(ctx, cond+" ORDER BY f.id ASC", args...)
}

// Create inserts a film and returns the stored row, owner populated.
func (r *FilmRepo) Create(ctx context.Context, data model.Film) (model.Film, error) {
	poster, err := json.Marshal(data.Poster)
	if err != nil {
		return model.Film{}, err
	}
	if data.Comments == nil {
		data.Comments = []model.Comment{}
	}
	comments, err := json.Marshal(data.Comments)
	if err != nil {
		return model.Film{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO films (title, release_label, genre, synopsis, poster, owner_id, comments) VALUES (?,?,?,?,?,?,?)",
		data.Title, data.Release, string(data.Genre), data.Synopsis, poster, data.OwnerID, comments)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return model.Film{}, httperr.Conflict("film title or synopsis already exists")
		}
		return model.Film{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Film{}, err
	}
	return r.QueryByID(ctx, uint64(id))
}

// Update applies a partial update and returns the post-update film.
func (r *FilmRepo) Update(ctx context.Context, id uint64, patch map[string]any) (model.Film, error) {
	sets := []string{}
	args := []any{}
	for key, val := range patch {
		col, ok := filmPatchCols[key]
		if !ok {
			return model.Film{}, httperr.BadRequest("field cannot be updated: " + key)
		}
		switch key {
		case "poster", "comments":
			b, err := json.Marshal(val)
			if err != nil {
				return model.Film{}, err
			}
			val = b
		case "genre":
			s, _ := val.(string)
			if !model.Genre(s).Valid() {
				return model.Film{}, httperr.BadRequest("unknown genre: " + s)
			}
			val = s
		}
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	if len(sets) > 0 {
		args = append(args, id)
		_, err := r.DB.ExecContext(ctx,
			"UPDATE films SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			if strings.Contains(err.Error(), "1062") {
				return model.Film{}, httperr.Conflict("film title or synopsis already exists")
			}
			return model.Film{}, err
		}
	}
	f, err := r.QueryByID(ctx, id)
	if err != nil {
		var ce *httperr.Error
		if errors.As(err, &ce) && ce.Status == 404 {
			return model.Film{}, httperr.NotFound("wrong id for the update")
		}
		return model.Film{}, err
	}
	return f, nil
}

// Delete removes a film row.
func (r *FilmRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM films WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return httperr.NotFound("wrong id for the delete")
	}
	return nil
}
