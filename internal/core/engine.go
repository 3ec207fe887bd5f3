package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/marquee-hq/marquee/internal/models"
	"github.com/marquee-hq/marquee/internal/store"
	"github.com/marquee-hq/marquee/pkg/apperr"
)

// Engine orchestrates actor and movie operations: uniqueness pre-checks,
// nested-descriptor reconciliation and the single store mutation per request.
type Engine struct {
	store      store.EntityStore
	reconciler *Reconciler
	logger     zerolog.Logger
}

func NewEngine(entityStore store.EntityStore, logger zerolog.Logger) *Engine {
	return &Engine{
		store:      entityStore,
		reconciler: NewReconciler(entityStore, logger),
		logger:     logger,
	}
}

// ActorInput carries a validated actor-creation payload.
type ActorInput struct {
	Name   string
	Age    int
	Gender string
	Movies []MovieDescriptor
}

// ActorPatch carries a partial actor update; nil fields are left untouched.
type ActorPatch struct {
	Name   *string
	Age    *int
	Gender *string
	Movies []MovieDescriptor
}

// MovieInput carries a validated movie-creation payload.
type MovieInput struct {
	Title       string
	ReleaseDate models.Date
	Actors      []ActorDescriptor
}

// MoviePatch carries a partial movie update; nil fields are left untouched.
type MoviePatch struct {
	Title       *string
	ReleaseDate *models.Date
	Actors      []ActorDescriptor
}

func (e *Engine) ListActors(ctx context.Context) ([]*models.Actor, error) {
	return e.store.ListActors(ctx)
}

func (e *Engine) ListMovies(ctx context.Context) ([]*models.Movie, error) {
	return e.store.ListMovies(ctx)
}

// CreateActor rejects duplicate names up front, reconciles the nested movie
// descriptors and persists the actor together with its new movies and links
// in one store mutation. The persisted actor is re-read so the response
// carries the fully populated nested representation.
//
// The pre-check is a friendly fast path only; under concurrent creates the
// storage-level unique constraint is the source of truth and a lost race
// surfaces from the mutation itself.
func (e *Engine) CreateActor(ctx context.Context, input ActorInput) (*models.Actor, error) {
	if _, err := e.store.GetActorByName(ctx, input.Name); err == nil {
		return nil, apperr.Conflict(fmt.Sprintf("actor %q already exists", input.Name))
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	movies, err := e.reconciler.ReconcileMovies(ctx, input.Movies, nil)
	if err != nil {
		return nil, err
	}

	actor := models.NewActor(input.Name, input.Age, input.Gender)
	if err := e.store.CreateActor(ctx, actor, movies); err != nil {
		return nil, err
	}

	e.logger.Info().Int64("actor_id", actor.ID).Str("name", actor.Name).
		Int("linked_movies", len(movies)).Msg("actor created")

	return e.store.GetActor(ctx, actor.ID)
}

// UpdateActor applies a partial update. Movie descriptors whose title is
// already linked to the actor are skipped, so re-submitting a linked movie is
// a no-op rather than a duplicate link.
func (e *Engine) UpdateActor(ctx context.Context, id int64, patch ActorPatch) (*models.Actor, error) {
	actor, err := e.store.GetActor(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		actor.Name = *patch.Name
	}
	if patch.Age != nil {
		actor.Age = *patch.Age
	}
	if patch.Gender != nil {
		actor.Gender = *patch.Gender
	}

	addMovies, err := e.reconciler.ReconcileMovies(ctx, patch.Movies, actor.MovieTitles())
	if err != nil {
		return nil, err
	}

	if err := e.store.UpdateActor(ctx, actor, addMovies); err != nil {
		return nil, err
	}

	e.logger.Info().Int64("actor_id", id).Int("new_links", len(addMovies)).Msg("actor updated")

	return e.store.GetActor(ctx, id)
}

// DeleteActor removes the actor and its association rows.
func (e *Engine) DeleteActor(ctx context.Context, id int64) error {
	if err := e.store.DeleteActor(ctx, id); err != nil {
		return err
	}
	e.logger.Info().Int64("actor_id", id).Msg("actor deleted")
	return nil
}

// CreateMovie mirrors CreateActor with title as the natural key.
func (e *Engine) CreateMovie(ctx context.Context, input MovieInput) (*models.Movie, error) {
	if _, err := e.store.GetMovieByTitle(ctx, input.Title); err == nil {
		return nil, apperr.Conflict(fmt.Sprintf("movie %q already exists", input.Title))
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	actors, err := e.reconciler.ReconcileActors(ctx, input.Actors, nil)
	if err != nil {
		return nil, err
	}

	movie := models.NewMovie(input.Title, input.ReleaseDate)
	if err := e.store.CreateMovie(ctx, movie, actors); err != nil {
		return nil, err
	}

	e.logger.Info().Int64("movie_id", movie.ID).Str("title", movie.Title).
		Int("linked_actors", len(actors)).Msg("movie created")

	return e.store.GetMovie(ctx, movie.ID)
}

// UpdateMovie mirrors UpdateActor.
func (e *Engine) UpdateMovie(ctx context.Context, id int64, patch MoviePatch) (*models.Movie, error) {
	movie, err := e.store.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		movie.Title = *patch.Title
	}
	if patch.ReleaseDate != nil {
		movie.ReleaseDate = *patch.ReleaseDate
	}

	addActors, err := e.reconciler.ReconcileActors(ctx, patch.Actors, movie.ActorNames())
	if err != nil {
		return nil, err
	}

	if err := e.store.UpdateMovie(ctx, movie, addActors); err != nil {
		return nil, err
	}

	e.logger.Info().Int64("movie_id", id).Int("new_links", len(addActors)).Msg("movie updated")

	return e.store.GetMovie(ctx, id)
}

// DeleteMovie removes the movie and its association rows.
func (e *Engine) DeleteMovie(ctx context.Context, id int64) error {
	if err := e.store.DeleteMovie(ctx, id); err != nil {
		return err
	}
	e.logger.Info().Int64("movie_id", id).Msg("movie deleted")
	return nil
}

// HealthCheck verifies store connectivity.
func (e *Engine) HealthCheck(ctx context.Context) error {
	return e.store.Ping(ctx)
}
