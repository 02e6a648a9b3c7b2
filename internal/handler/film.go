package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"onlyfilms/internal/httperr"
	"onlyfilms/internal/middleware"
	"onlyfilms/internal/model"
	"onlyfilms/internal/queue"
	"onlyfilms/internal/repository"
	"onlyfilms/internal/service"
)

// FilmHandler extends the generic controller with the operations that keep
// a film's owner and the owner's film list in sync. The two sides are
// updated sequentially without a transaction; a failed second step leaves a
// window that the next ownership mutation repairs.
type FilmHandler struct {
	Controller[model.Film]
	Users  repository.Repository[model.User]
	Events service.EventPublisher
}

func NewFilmHandler(films repository.Repository[model.Film], users repository.Repository[model.User], events service.EventPublisher) *FilmHandler {
	return &FilmHandler{
		Controller: Controller[model.Film]{Repo: films, FilterParam: "genre"},
		Users:      users,
		Events:     events,
	}
}

type createFilmReq struct {
	Title    string `json:"title" form:"title"`
	Release  string `json:"release" form:"release"`
	Genre    string `json:"genre" form:"genre"`
	Synopsis string `json:"synopsis" form:"synopsis"`
}

type commentReq struct {
	Comment string `json:"comment"`
}

// Post creates a film owned by the authenticated user and appends its id to
// the owner's film list. The owner-list update after a successful create is
// best effort: its failure is logged, never rolled back.
func (h *FilmHandler) Post(c echo.Context) error {
	payload, ok := middleware.Payload(c)
	if !ok {
		return httperr.BadRequest("missing authentication context")
	}

	var req createFilmReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Synopsis == "" {
		return httperr.BadRequest("title and synopsis are required")
	}
	if !model.Genre(req.Genre).Valid() {
		return httperr.BadRequest("unknown genre: " + req.Genre)
	}
	poster, _ := middleware.UploadedImage(c, "poster")

	ctx := c.Request().Context()
	created, err := h.Repo.Create(ctx, model.Film{
		Title:    req.Title,
		Release:  req.Release,
		Genre:    model.Genre(req.Genre),
		Synopsis: req.Synopsis,
		Poster:   poster,
		OwnerID:  payload.UserID,
	})
	if err != nil {
		return err
	}

	// Link the new film into the owner's list. The film already exists, so
	// errors here only widen the accepted consistency window.
	if owner, err := h.Users.QueryByID(ctx, payload.UserID); err != nil {
		log.Printf("film: owner %d not linked to film %d: %v", payload.UserID, created.ID, err)
	} else {
		films := append(owner.Films, created.ID)
		if _, err := h.Users.Update(ctx, owner.ID, map[string]any{"films": films}); err != nil {
			log.Printf("film: owner %d not linked to film %d: %v", payload.UserID, created.ID, err)
		}
	}

	h.publish(c, queue.FilmEvent{
		Kind:    queue.KindFilmCreated,
		FilmID:  created.ID,
		OwnerID: payload.UserID,
		Title:   created.Title,
	})
	return c.JSON(http.StatusCreated, created)
}

// DeleteByID removes a film and takes its id out of the authenticated
// user's film list. The unlink is an identity match and a no-op when the id
// is already absent.
func (h *FilmHandler) DeleteByID(c echo.Context) error {
	payload, ok := middleware.Payload(c)
	if !ok {
		return httperr.BadRequest("missing authentication context")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.Repo.Delete(ctx, id); err != nil {
		return err
	}

	user, err := h.Users.QueryByID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	films := make([]uint64, 0, len(user.Films))
	for _, fid := range user.Films {
		if fid != id {
			films = append(films, fid)
		}
	}
	if _, err := h.Users.Update(ctx, user.ID, map[string]any{"films": films}); err != nil {
		return err
	}

	h.publish(c, queue.FilmEvent{
		Kind:    queue.KindFilmDeleted,
		FilmID:  id,
		OwnerID: payload.UserID,
	})
	return c.NoContent(http.StatusNoContent)
}

// AddComment appends a comment by the authenticated user to a film and
// persists the whole mutated list in one update.
func (h *FilmHandler) AddComment(c echo.Context) error {
	payload, ok := middleware.Payload(c)
	if !ok {
		return httperr.BadRequest("missing authentication context")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if strings.TrimSpace(req.Comment) == "" {
		return httperr.BadRequest("comment is required")
	}

	ctx := c.Request().Context()
	film, err := h.Repo.QueryByID(ctx, id)
	if err != nil {
		return err
	}
	user, err := h.Users.QueryByID(ctx, payload.UserID)
	if err != nil {
		return err
	}

	comments := append(film.Comments, model.Comment{Comment: req.Comment, Owner: user.Ref()})
	updated, err := h.Repo.Update(ctx, id, map[string]any{"comments": comments})
	if err != nil {
		return err
	}

	h.publish(c, queue.FilmEvent{
		Kind:    queue.KindCommentAdded,
		FilmID:  id,
		OwnerID: user.ID,
		Comment: req.Comment,
	})
	return c.JSON(http.StatusOK, updated)
}

// publish sends a film event without ever failing the request.
func (h *FilmHandler) publish(c echo.Context, ev queue.FilmEvent) {
	if h.Events == nil {
		return
	}
	ev.At = time.Now().UTC().Format(time.RFC3339)
	_ = h.Events.PublishFilmEvent(c.Request().Context(), ev)
}
