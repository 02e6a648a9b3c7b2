package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyfilms/internal/httperr"
	"onlyfilms/internal/model"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler
	return e
}

func seedFilms(genres ...model.Genre) *fakeFilmRepo {
	repo := &fakeFilmRepo{}
	for i, g := range genres {
		repo.nextID++
		repo.films = append(repo.films, model.Film{
			ID:       repo.nextID,
			Title:    fmt.Sprintf("Film %d", i+1),
			Genre:    g,
			Synopsis: fmt.Sprintf("Synopsis %d", i+1),
			OwnerID:  1,
			Owner:    model.UserRef{ID: 1},
			Comments: []model.Comment{},
		})
	}
	return repo
}

func repeatGenre(g model.Genre, n int) []model.Genre {
	out := make([]model.Genre, n)
	for i := range out {
		out[i] = g
	}
	return out
}

type listResp struct {
	Items    []model.Film `json:"items"`
	Count    int64        `json:"count"`
	Previous *string      `json:"previous"`
	Next     *string      `json:"next"`
}

func getList(t *testing.T, e *echo.Echo, url string) (int, listResp) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var body listResp
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestGetAll_FirstPage(t *testing.T) {
	films := seedFilms(repeatGenre(model.GenreDrama, 8)...)
	fh := NewFilmHandler(films, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.GET("/film", fh.GetAll)

	code, body := getList(t, e, "http://example.com/film")

	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body.Items, 6)
	assert.Equal(t, int64(8), body.Count)
	assert.Nil(t, body.Previous)
	require.NotNil(t, body.Next)
	assert.Equal(t, "http://example.com/film?page=2", *body.Next)
}

func TestGetAll_LastPage(t *testing.T) {
	films := seedFilms(repeatGenre(model.GenreDrama, 8)...)
	fh := NewFilmHandler(films, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.GET("/film", fh.GetAll)

	code, body := getList(t, e, "http://example.com/film?page=2")

	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body.Items, 2)
	assert.Nil(t, body.Next)
	require.NotNil(t, body.Previous)
	assert.Equal(t, "http://example.com/film?page=1", *body.Previous)
}

func TestGetAll_GenreFilterKeptInPageURLs(t *testing.T) {
	genres := append(repeatGenre(model.GenreComedy, 8), repeatGenre(model.GenreDrama, 3)...)
	films := seedFilms(genres...)
	fh := NewFilmHandler(films, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.GET("/film", fh.GetAll)

	code, body := getList(t, e, "http://example.com/film?genre=Comedy")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(8), body.Count)
	assert.Len(t, body.Items, 6)
	require.NotNil(t, body.Next)
	assert.Equal(t, "http://example.com/film?genre=Comedy&page=2", *body.Next)
	for _, f := range body.Items {
		assert.Equal(t, model.GenreComedy, f.Genre)
	}
}

func TestGetAll_PageArithmetic(t *testing.T) {
	// 14 films over page size 6: pages of 6, 6 and 2.
	films := seedFilms(repeatGenre(model.GenreAction, 14)...)
	fh := NewFilmHandler(films, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.GET("/film", fh.GetAll)

	wantLen := []int{6, 6, 2}
	for p := 1; p <= 3; p++ {
		code, body := getList(t, e, fmt.Sprintf("http://example.com/film?page=%d", p))
		assert.Equal(t, http.StatusOK, code)
		assert.Len(t, body.Items, wantLen[p-1], "page %d", p)
		assert.Equal(t, p < 3, body.Next != nil, "next on page %d", p)
		assert.Equal(t, p > 1, body.Previous != nil, "previous on page %d", p)
	}
}

func TestGetAll_InvalidPageDefaultsToFirst(t *testing.T) {
	films := seedFilms(repeatGenre(model.GenreHorror, 8)...)
	fh := NewFilmHandler(films, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.GET("/film", fh.GetAll)

	code, body := getList(t, e, "http://example.com/film?page=abc")

	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body.Items, 6)
	assert.Nil(t, body.Previous)
}

func TestGetByID(t *testing.T) {
	films := seedFilms(model.GenreSciFi)
	fh := NewFilmHandler(films, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.GET("/film/:id", fh.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/film/1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var film model.Film
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &film))
	assert.Equal(t, uint64(1), film.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	fh := NewFilmHandler(&fakeFilmRepo{}, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.GET("/film/:id", fh.GetByID)

	for _, id := range []string{"99", "not-a-number"} {
		req := httptest.NewRequest(http.MethodGet, "/film/"+id, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, "id %q", id)
	}
}

func TestPatch_RespondsAcceptedAndStripsReservedKeys(t *testing.T) {
	films := seedFilms(model.GenreDrama)
	fh := NewFilmHandler(films, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.PATCH("/film/:id", fh.Patch)

	body := `{"title":"Renamed","owner":99,"tokenPayload":{"id":99}}`
	req := httptest.NewRequest(http.MethodPatch, "/film/1", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var film model.Film
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &film))
	assert.Equal(t, "Renamed", film.Title)

	require.Len(t, films.updates, 1)
	assert.NotContains(t, films.updates[0], "owner")
	assert.NotContains(t, films.updates[0], "tokenPayload")
}

func TestPatch_NotFoundDoesNotMutate(t *testing.T) {
	films := seedFilms(model.GenreDrama)
	fh := NewFilmHandler(films, &fakeUserRepo{}, nil)

	e := newTestEcho()
	e.PATCH("/film/:id", fh.Patch)

	req := httptest.NewRequest(http.MethodPatch, "/film/42", strings.NewReader(`{"title":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Film 1", films.films[0].Title)
}

func TestDeleteByID_GenericController(t *testing.T) {
	users := &fakeUserRepo{}
	users.users = append(users.users, model.User{ID: 1, UserName: "ana", Films: []uint64{}})
	users.nextID = 1
	uh := NewUserHandler(testConfig(), users, newFakeTokens())

	e := newTestEcho()
	e.DELETE("/user/:id", uh.DeleteByID)

	req := httptest.NewRequest(http.MethodDelete, "/user/1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, users.users)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/user/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
