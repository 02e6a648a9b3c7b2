package handler

import (
	"context"
	"time"

	"onlyfilms/internal/config"
	"onlyfilms/internal/httperr"
	"onlyfilms/internal/model"
	"onlyfilms/internal/queue"
	"onlyfilms/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4,
	}
}

// fakeFilmRepo implements repository.Repository[model.Film] in memory and
// records the mutations it receives.
type fakeFilmRepo struct {
	films   []model.Film
	nextID  uint64
	updates []map[string]any
	deleted []uint64
}

func (r *fakeFilmRepo) matches(f *repository.Filter, film model.Film) bool {
	if f == nil || f.Key == "" {
		return true
	}
	switch f.Key {
	case "genre":
		return string(film.Genre) == f.Value
	case "title":
		return film.Title == f.Value
	}
	return false
}

func (r *fakeFilmRepo) Query(_ context.Context, page, limit int, f *repository.Filter) ([]model.Film, error) {
	out := []model.Film{}
	for _, film := range r.films {
		if r.matches(f, film) {
			out = append(out, film)
		}
	}
	start := (page - 1) * limit
	if start >= len(out) {
		return []model.Film{}, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *fakeFilmRepo) Count(_ context.Context, f *repository.Filter) (int64, error) {
	var n int64
	for _, film := range r.films {
		if r.matches(f, film) {
			n++
		}
	}
	return n, nil
}

func (r *fakeFilmRepo) QueryByID(_ context.Context, id uint64) (model.Film, error) {
	for _, film := range r.films {
		if film.ID == id {
			return film, nil
		}
	}
	return model.Film{}, httperr.NotFound("wrong id for the query")
}

func (r *fakeFilmRepo) Search(_ context.Context, f repository.Filter) ([]model.Film, error) {
	out := []model.Film{}
	for _, film := range r.films {
		if r.matches(&f, film) {
			out = append(out, film)
		}
	}
	return out, nil
}

func (r *fakeFilmRepo) Create(_ context.Context, data model.Film) (model.Film, error) {
	r.nextID++
	data.ID = r.nextID
	data.Owner = model.UserRef{ID: data.OwnerID}
	if data.Comments == nil {
		data.Comments = []model.Comment{}
	}
	r.films = append(r.films, data)
	return data, nil
}

func (r *fakeFilmRepo) Update(_ context.Context, id uint64, patch map[string]any) (model.Film, error) {
	for i, film := range r.films {
		if film.ID != id {
			continue
		}
		r.updates = append(r.updates, patch)
		if v, ok := patch["comments"].([]model.Comment); ok {
			film.Comments = v
		}
		if v, ok := patch["title"].(string); ok {
			film.Title = v
		}
		r.films[i] = film
		return film, nil
	}
	return model.Film{}, httperr.NotFound("wrong id for the update")
}

func (r *fakeFilmRepo) Delete(_ context.Context, id uint64) error {
	for i, film := range r.films {
		if film.ID == id {
			r.films = append(r.films[:i], r.films[i+1:]...)
			r.deleted = append(r.deleted, id)
			return nil
		}
	}
	return httperr.NotFound("wrong id for the delete")
}

// fakeUserRepo implements repository.Repository[model.User] in memory.
type fakeUserRepo struct {
	users   []model.User
	nextID  uint64
	updates []map[string]any
}

func (r *fakeUserRepo) matches(f *repository.Filter, u model.User) bool {
	if f == nil || f.Key == "" {
		return true
	}
	switch f.Key {
	case "email":
		return u.Email == f.Value
	case "userName":
		return u.UserName == f.Value
	}
	return false
}

func (r *fakeUserRepo) Query(_ context.Context, page, limit int, f *repository.Filter) ([]model.User, error) {
	out := []model.User{}
	for _, u := range r.users {
		if r.matches(f, u) {
			out = append(out, u)
		}
	}
	start := (page - 1) * limit
	if start >= len(out) {
		return []model.User{}, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *fakeUserRepo) Count(_ context.Context, f *repository.Filter) (int64, error) {
	var n int64
	for _, u := range r.users {
		if r.matches(f, u) {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) QueryByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, httperr.NotFound("no user found with this id")
}

func (r *fakeUserRepo) Search(_ context.Context, f repository.Filter) ([]model.User, error) {
	out := []model.User{}
	for _, u := range r.users {
		if r.matches(&f, u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, data model.User) (model.User, error) {
	r.nextID++
	data.ID = r.nextID
	if data.Films == nil {
		data.Films = []uint64{}
	}
	r.users = append(r.users, data)
	return data, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id uint64, patch map[string]any) (model.User, error) {
	for i, u := range r.users {
		if u.ID != id {
			continue
		}
		r.updates = append(r.updates, patch)
		if v, ok := patch["films"].([]uint64); ok {
			u.Films = v
		}
		if v, ok := patch["avatar"].(model.Image); ok {
			u.Avatar = v
		}
		r.users[i] = u
		return u, nil
	}
	return model.User{}, httperr.NotFound("bad id for the update")
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint64) error {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return httperr.NotFound("bad id for the delete")
}

// fakeTokens records refresh-token activity.
type fakeTokens struct {
	stored  map[string]uint64
	revoked []string
}

func newFakeTokens() *fakeTokens { return &fakeTokens{stored: map[string]uint64{}} }

func (t *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	t.stored[hash] = userID
	return nil
}

func (t *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	if id, ok := t.stored[hash]; ok {
		return id, nil
	}
	return 0, httperr.Unauthorized("invalid refresh token")
}

func (t *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(t.stored, hash)
	t.revoked = append(t.revoked, hash)
	return nil
}

// fakePublisher records published events.
type fakePublisher struct{ events []queue.FilmEvent }

func (p *fakePublisher) PublishFilmEvent(_ context.Context, ev queue.FilmEvent) error {
	p.events = append(p.events, ev)
	return nil
}
