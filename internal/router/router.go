// Package router wires handlers and their middleware chains onto the echo
// instance. Mutating film routes run the two sequential gates: Logged
// verifies the bearer token, AuthorizedForFilms checks ownership.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"onlyfilms/internal/config"
	"onlyfilms/internal/handler"
	"onlyfilms/internal/middleware"
	"onlyfilms/internal/model"
	"onlyfilms/internal/repository"
	"onlyfilms/internal/storage"
)

// Register mounts every route of the API.
func Register(e *echo.Echo, cfg config.Config, store storage.Uploader,
	films repository.Repository[model.Film], fh *handler.FilmHandler, uh *handler.UserHandler) {

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "OnlyFilms API")
	})
	e.GET("/healthz", handler.Health)

	logged := middleware.Logged(cfg.JWTSecret)
	owner := middleware.AuthorizedForFilms(films)

	f := e.Group("/film")
	f.GET("", fh.GetAll)
	f.GET("/:id", fh.GetByID)
	f.POST("", fh.Post, logged, middleware.FileUpload(store, "poster"))
	f.PATCH("/:id", fh.Patch, logged, owner)
	f.DELETE("/:id", fh.DeleteByID, logged, owner)
	f.POST("/:id/comment", fh.AddComment, logged)

	u := e.Group("/user")
	u.GET("", uh.GetAll)
	u.POST("/register", uh.Register)
	u.PATCH("/login", uh.Login)
	u.POST("/refresh", uh.Refresh)
	u.POST("/logout", uh.Logout)
	u.PATCH("/avatar", uh.SetAvatar, logged, middleware.FileUpload(store, "avatar"))
}
