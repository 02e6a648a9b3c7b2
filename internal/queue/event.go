// Package queue defines the message payloads exchanged over the broker and
// the background consumer that turns them into an activity log.
package queue

// Event kinds carried in FilmEvent.Kind.
const (
	KindFilmCreated  = "created"
	KindFilmDeleted  = "deleted"
	KindCommentAdded = "comment"
)

// FilmEvent is published on every film mutation. It carries enough for
// downstream consumers to log or notify without querying the database.
type FilmEvent struct {
	Kind    string `json:"kind"`
	FilmID  uint64 `json:"film_id"`
	OwnerID uint64 `json:"owner_id"`
	Title   string `json:"title,omitempty"`
	Comment string `json:"comment,omitempty"`
	At      string `json:"at"`
}
