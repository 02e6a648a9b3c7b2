package model

import "time"

// Genre is the fixed set of film genres accepted by the API.
type Genre string

const (
	GenreAction    Genre = "Action"
	GenreDrama     Genre = "Drama"
	GenreComedy    Genre = "Comedy"
	GenreHorror    Genre = "Horror"
	GenreSciFi     Genre = "Sci-Fi"
	GenreAnimation Genre = "Animation"
)

// Genres lists every valid genre, in declaration order.
var Genres = []Genre{GenreAction, GenreDrama, GenreComedy, GenreHorror, GenreSciFi, GenreAnimation}

// Valid reports whether g is one of the known genres.
func (g Genre) Valid() bool {
	for _, v := range Genres {
		if g == v {
			return true
		}
	}
	return false
}

// Comment is a single film comment with its author reference.
type Comment struct {
	Comment string  `json:"comment"`
	Owner   UserRef `json:"owner"`
}

// Film mirrors the 'films' table. OwnerID is the stored foreign key; Owner
// carries the populated owner on reads. Comments is a JSON column written
// back as a whole value, same last-write-wins semantics as User.Films.
type Film struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Release   string    `json:"release"`
	Genre     Genre     `json:"genre"`
	Synopsis  string    `json:"synopsis"`
	Poster    Image     `json:"poster"`
	OwnerID   uint64    `json:"-"`
	Owner     UserRef   `json:"owner"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
