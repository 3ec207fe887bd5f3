package core

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/marquee-hq/marquee/internal/models"
	"github.com/marquee-hq/marquee/internal/store"
	"github.com/marquee-hq/marquee/pkg/apperr"
)

// MovieDescriptor is a nested movie reference in an actor payload: the title
// identifies an existing movie, the remaining fields are enough to build a
// new one.
type MovieDescriptor struct {
	Title       string
	ReleaseDate models.Date
}

// ActorDescriptor is a nested actor reference in a movie payload.
type ActorDescriptor struct {
	Name   string
	Age    int
	Gender string
}

// Reconciler resolves nested descriptors to existing-or-new related records
// without creating duplicate rows or duplicate links. It never persists
// anything itself; resolved records ride along with the primary mutation.
type Reconciler struct {
	store  store.EntityStore
	logger zerolog.Logger
}

func NewReconciler(entityStore store.EntityStore, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:  entityStore,
		logger: logger,
	}
}

// ReconcileMovies resolves movie descriptors in input order. Descriptors
// missing a title or release date are skipped silently (best-effort policy:
// a malformed nested item never aborts the request). linked holds titles
// already associated with the primary actor and makes PATCH re-submissions
// no-ops; pass nil on create.
//
// A movie returned with a zero ID is new and must be inserted by the store
// alongside the primary record.
func (r *Reconciler) ReconcileMovies(ctx context.Context, descriptors []MovieDescriptor, linked map[string]bool) ([]*models.Movie, error) {
	seen := make(map[string]bool)
	var movies []*models.Movie

	for _, d := range descriptors {
		if d.Title == "" || d.ReleaseDate.IsZero() {
			r.logger.Debug().Str("title", d.Title).Msg("skipping incomplete movie descriptor")
			continue
		}
		if linked[d.Title] || seen[d.Title] {
			continue
		}
		seen[d.Title] = true

		movie, err := r.store.GetMovieByTitle(ctx, d.Title)
		if err != nil {
			if !apperr.IsNotFound(err) {
				return nil, err
			}
			movie = models.NewMovie(d.Title, d.ReleaseDate)
		}
		movies = append(movies, movie)
	}

	return movies, nil
}

// ReconcileActors is the movie-side counterpart of ReconcileMovies.
// Descriptors missing a name or a positive age are skipped silently.
func (r *Reconciler) ReconcileActors(ctx context.Context, descriptors []ActorDescriptor, linked map[string]bool) ([]*models.Actor, error) {
	seen := make(map[string]bool)
	var actors []*models.Actor

	for _, d := range descriptors {
		if d.Name == "" || d.Age <= 0 {
			r.logger.Debug().Str("name", d.Name).Msg("skipping incomplete actor descriptor")
			continue
		}
		if linked[d.Name] || seen[d.Name] {
			continue
		}
		seen[d.Name] = true

		actor, err := r.store.GetActorByName(ctx, d.Name)
		if err != nil {
			if !apperr.IsNotFound(err) {
				return nil, err
			}
			actor = models.NewActor(d.Name, d.Age, d.Gender)
		}
		actors = append(actors, actor)
	}

	return actors, nil
}
