// Package middleware contains the reusable request gates: authentication,
// film ownership authorization, file upload and rate limiting. Each gate
// either yields to the next handler or terminates the chain with a
// classified error; none of them retries.
package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"onlyfilms/internal/httperr"
	"onlyfilms/internal/model"
	"onlyfilms/internal/repository"
	"onlyfilms/internal/utils"
)

// PayloadKey is the context key under which Logged stores the verified
// AuthPayload for the rest of the request.
const PayloadKey = "tokenPayload"

// Payload returns the authentication payload attached by Logged, if any.
func Payload(c echo.Context) (utils.AuthPayload, bool) {
	p, ok := c.Get(PayloadKey).(utils.AuthPayload)
	return p, ok
}

// Logged verifies the bearer access token and attaches its payload to the
// context. The "Bearer " prefix check is literal and case-sensitive.
func Logged(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return httperr.Unauthorized("no authorization header")
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return httperr.Unauthorized("no bearer in authorization header")
			}
			payload, err := utils.VerifyAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return httperr.Unauthorized("invalid or expired token")
			}
			c.Set(PayloadKey, payload)
			return next(c)
		}
	}
}

// AuthorizedForFilms allows the request through only when the authenticated
// user owns the film named by the :id route parameter. It expects Logged to
// have run first; a missing payload is its own failure class (498), not a
// plain 401.
func AuthorizedForFilms(films repository.Repository[model.Film]) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			payload, ok := Payload(c)
			if !ok {
				return httperr.TokenMissing("token not found in authorization gate")
			}
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return httperr.NotFound("wrong id for the query")
			}
			film, err := films.QueryByID(c.Request().Context(), id)
			if err != nil {
				return err
			}
			if film.Owner.ID != payload.UserID {
				return httperr.Unauthorized("not the film owner")
			}
			return next(c)
		}
	}
}
