package store

import (
	"context"

	"github.com/marquee-hq/marquee/internal/models"
)

// EntityStore is the persistence contract for actors, movies and their
// association set. Mutating calls are atomic: the primary row, any new
// related rows and the link rows commit together or not at all.
//
// Errors are a closed set carried as apperr codes: not_found for missing
// ids/keys, conflict for unique violations, unavailable for anything else.
type EntityStore interface {
	GetActor(ctx context.Context, id int64) (*models.Actor, error)
	GetActorByName(ctx context.Context, name string) (*models.Actor, error)
	ListActors(ctx context.Context) ([]*models.Actor, error)

	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	GetMovieByTitle(ctx context.Context, title string) (*models.Movie, error)
	ListMovies(ctx context.Context) ([]*models.Movie, error)

	// CreateActor inserts the actor, inserts any movie in movies that has no
	// id yet, and links every movie to the actor.
	CreateActor(ctx context.Context, actor *models.Actor, movies []*models.Movie) error

	// UpdateActor persists the actor's current field values and appends links
	// for addMovies, inserting those without an id first.
	UpdateActor(ctx context.Context, actor *models.Actor, addMovies []*models.Movie) error

	// DeleteActor removes the actor row and its association rows.
	DeleteActor(ctx context.Context, id int64) error

	CreateMovie(ctx context.Context, movie *models.Movie, actors []*models.Actor) error
	UpdateMovie(ctx context.Context, movie *models.Movie, addActors []*models.Actor) error
	DeleteMovie(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close() error
}
