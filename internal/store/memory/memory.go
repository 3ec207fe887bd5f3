package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marquee-hq/marquee/internal/models"
	"github.com/marquee-hq/marquee/internal/store"
	"github.com/marquee-hq/marquee/pkg/apperr"
)

type link struct {
	actorID int64
	movieID int64
}

// Store is an in-memory EntityStore with the same closed error contract as
// the postgres adapter. It backs the unit tests, including the no-store-access
// assertions, via its call counter.
type Store struct {
	mu          sync.Mutex
	actors      map[int64]*models.Actor
	movies      map[int64]*models.Movie
	links       map[link]bool
	nextActorID int64
	nextMovieID int64
	calls       int
}

func NewStore() *Store {
	return &Store{
		actors: make(map[int64]*models.Actor),
		movies: make(map[int64]*models.Movie),
		links:  make(map[link]bool),
	}
}

// Calls reports how many store methods have been invoked.
func (s *Store) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// ActorCount reports the number of actor rows.
func (s *Store) ActorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actors)
}

// MovieCount reports the number of movie rows.
func (s *Store) MovieCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movies)
}

// LinkCount reports the size of the association set.
func (s *Store) LinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

func (s *Store) GetActor(ctx context.Context, id int64) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	actor, ok := s.actors[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("actor %d not found", id))
	}
	return s.actorLong(actor), nil
}

func (s *Store) GetActorByName(ctx context.Context, name string) (*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if actor := s.actorByName(name); actor != nil {
		return s.actorShort(actor), nil
	}
	return nil, apperr.NotFound(fmt.Sprintf("actor %q not found", name))
}

func (s *Store) ListActors(ctx context.Context) ([]*models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	ids := make([]int64, 0, len(s.actors))
	for id := range s.actors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	actors := make([]*models.Actor, 0, len(ids))
	for _, id := range ids {
		actors = append(actors, s.actorLong(s.actors[id]))
	}
	return actors, nil
}

func (s *Store) CreateActor(ctx context.Context, actor *models.Actor, movies []*models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.actorByName(actor.Name) != nil {
		return apperr.Conflict(fmt.Sprintf("actor %q already exists", actor.Name))
	}

	s.nextActorID++
	actor.ID = s.nextActorID
	s.actors[actor.ID] = &models.Actor{
		ID:     actor.ID,
		Name:   actor.Name,
		Age:    actor.Age,
		Gender: actor.Gender,
	}

	if err := s.insertMoviesAndLinks(actor.ID, movies); err != nil {
		delete(s.actors, actor.ID)
		return err
	}
	actor.Movies = movies
	return nil
}

func (s *Store) UpdateActor(ctx context.Context, actor *models.Actor, addMovies []*models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	existing, ok := s.actors[actor.ID]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("actor %d not found", actor.ID))
	}
	if other := s.actorByName(actor.Name); other != nil && other.ID != actor.ID {
		return apperr.Conflict(fmt.Sprintf("actor %q already exists", actor.Name))
	}

	existing.Name = actor.Name
	existing.Age = actor.Age
	existing.Gender = actor.Gender

	return s.insertMoviesAndLinks(actor.ID, addMovies)
}

func (s *Store) DeleteActor(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if _, ok := s.actors[id]; !ok {
		return apperr.NotFound(fmt.Sprintf("actor %d not found", id))
	}
	delete(s.actors, id)
	for l := range s.links {
		if l.actorID == id {
			delete(s.links, l)
		}
	}
	return nil
}

func (s *Store) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	movie, ok := s.movies[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("movie %d not found", id))
	}
	return s.movieLong(movie), nil
}

func (s *Store) GetMovieByTitle(ctx context.Context, title string) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if movie := s.movieByTitle(title); movie != nil {
		return s.movieShort(movie), nil
	}
	return nil, apperr.NotFound(fmt.Sprintf("movie %q not found", title))
}

func (s *Store) ListMovies(ctx context.Context) ([]*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	ids := make([]int64, 0, len(s.movies))
	for id := range s.movies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	movies := make([]*models.Movie, 0, len(ids))
	for _, id := range ids {
		movies = append(movies, s.movieLong(s.movies[id]))
	}
	return movies, nil
}

func (s *Store) CreateMovie(ctx context.Context, movie *models.Movie, actors []*models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.movieByTitle(movie.Title) != nil {
		return apperr.Conflict(fmt.Sprintf("movie %q already exists", movie.Title))
	}

	s.nextMovieID++
	movie.ID = s.nextMovieID
	s.movies[movie.ID] = &models.Movie{
		ID:          movie.ID,
		Title:       movie.Title,
		ReleaseDate: movie.ReleaseDate,
	}

	if err := s.insertActorsAndLinks(movie.ID, actors); err != nil {
		delete(s.movies, movie.ID)
		return err
	}
	movie.Actors = actors
	return nil
}

func (s *Store) UpdateMovie(ctx context.Context, movie *models.Movie, addActors []*models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	existing, ok := s.movies[movie.ID]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("movie %d not found", movie.ID))
	}
	if other := s.movieByTitle(movie.Title); other != nil && other.ID != movie.ID {
		return apperr.Conflict(fmt.Sprintf("movie %q already exists", movie.Title))
	}

	existing.Title = movie.Title
	existing.ReleaseDate = movie.ReleaseDate

	return s.insertActorsAndLinks(movie.ID, addActors)
}

func (s *Store) DeleteMovie(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if _, ok := s.movies[id]; !ok {
		return apperr.NotFound(fmt.Sprintf("movie %d not found", id))
	}
	delete(s.movies, id)
	for l := range s.links {
		if l.movieID == id {
			delete(s.links, l)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Internal helpers. Callers hold s.mu.

func (s *Store) actorByName(name string) *models.Actor {
	for _, actor := range s.actors {
		if actor.Name == name {
			return actor
		}
	}
	return nil
}

func (s *Store) movieByTitle(title string) *models.Movie {
	for _, movie := range s.movies {
		if movie.Title == title {
			return movie
		}
	}
	return nil
}

func (s *Store) insertMoviesAndLinks(actorID int64, movies []*models.Movie) error {
	for _, movie := range movies {
		if movie.ID == 0 {
			if s.movieByTitle(movie.Title) != nil {
				return apperr.Conflict(fmt.Sprintf("movie %q already exists", movie.Title))
			}
			s.nextMovieID++
			movie.ID = s.nextMovieID
			s.movies[movie.ID] = &models.Movie{
				ID:          movie.ID,
				Title:       movie.Title,
				ReleaseDate: movie.ReleaseDate,
			}
		}
		s.links[link{actorID: actorID, movieID: movie.ID}] = true
	}
	return nil
}

func (s *Store) insertActorsAndLinks(movieID int64, actors []*models.Actor) error {
	for _, actor := range actors {
		if actor.ID == 0 {
			if s.actorByName(actor.Name) != nil {
				return apperr.Conflict(fmt.Sprintf("actor %q already exists", actor.Name))
			}
			s.nextActorID++
			actor.ID = s.nextActorID
			s.actors[actor.ID] = &models.Actor{
				ID:     actor.ID,
				Name:   actor.Name,
				Age:    actor.Age,
				Gender: actor.Gender,
			}
		}
		s.links[link{actorID: actor.ID, movieID: movieID}] = true
	}
	return nil
}

func (s *Store) actorShort(actor *models.Actor) *models.Actor {
	return &models.Actor{
		ID:     actor.ID,
		Name:   actor.Name,
		Age:    actor.Age,
		Gender: actor.Gender,
	}
}

func (s *Store) movieShort(movie *models.Movie) *models.Movie {
	return &models.Movie{
		ID:          movie.ID,
		Title:       movie.Title,
		ReleaseDate: movie.ReleaseDate,
	}
}

func (s *Store) actorLong(actor *models.Actor) *models.Actor {
	long := s.actorShort(actor)
	var movieIDs []int64
	for l := range s.links {
		if l.actorID == actor.ID {
			movieIDs = append(movieIDs, l.movieID)
		}
	}
	sort.Slice(movieIDs, func(i, j int) bool { return movieIDs[i] < movieIDs[j] })
	for _, id := range movieIDs {
		if movie, ok := s.movies[id]; ok {
			long.Movies = append(long.Movies, s.movieShort(movie))
		}
	}
	return long
}

func (s *Store) movieLong(movie *models.Movie) *models.Movie {
	long := s.movieShort(movie)
	var actorIDs []int64
	for l := range s.links {
		if l.movieID == movie.ID {
			actorIDs = append(actorIDs, l.actorID)
		}
	}
	sort.Slice(actorIDs, func(i, j int) bool { return actorIDs[i] < actorIDs[j] })
	for _, id := range actorIDs {
		if actor, ok := s.actors[id]; ok {
			long.Actors = append(long.Actors, s.actorShort(actor))
		}
	}
	return long
}

var _ store.EntityStore = (*Store)(nil)
