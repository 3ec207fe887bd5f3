package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marquee-hq/marquee/internal/models"
	"github.com/marquee-hq/marquee/internal/store"
	"github.com/marquee-hq/marquee/pkg/apperr"
)

// PostgresStore implements the EntityStore interface for PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Actor operations

func (s *PostgresStore) GetActor(ctx context.Context, id int64) (*models.Actor, error) {
	query := `
		SELECT id, name, age, COALESCE(gender, '')
		FROM actors
		WHERE id = $1
	`

	var actor models.Actor
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&actor.ID,
		&actor.Name,
		&actor.Age,
		&actor.Gender,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("actor %d not found", id))
		}
		return nil, apperr.Unavailable("failed to get actor", err)
	}

	movies, err := s.moviesForActor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	actor.Movies = movies

	return &actor, nil
}

func (s *PostgresStore) GetActorByName(ctx context.Context, name string) (*models.Actor, error) {
	query := `
		SELECT id, name, age, COALESCE(gender, '')
		FROM actors
		WHERE name = $1
	`

	var actor models.Actor
	err := s.pool.QueryRow(ctx, query, name).Scan(
		&actor.ID,
		&actor.Name,
		&actor.Age,
		&actor.Gender,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("actor %q not found", name))
		}
		return nil, apperr.Unavailable("failed to get actor by name", err)
	}

	return &actor, nil
}

func (s *PostgresStore) ListActors(ctx context.Context) ([]*models.Actor, error) {
	query := `
		SELECT id, name, age, COALESCE(gender, '')
		FROM actors
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.Unavailable("failed to list actors", err)
	}
	defer rows.Close()

	var actors []*models.Actor
	byID := make(map[int64]*models.Actor)
	for rows.Next() {
		var actor models.Actor
		if err := rows.Scan(&actor.ID, &actor.Name, &actor.Age, &actor.Gender); err != nil {
			return nil, apperr.Unavailable("failed to scan actor", err)
		}
		actors = append(actors, &actor)
		byID[actor.ID] = &actor
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to list actors", err)
	}

	linkQuery := `
		SELECT am.actor_id, m.id, m.title, m.release_date
		FROM actor_movies am
		JOIN movies m ON m.id = am.movie_id
		ORDER BY am.actor_id ASC, m.id ASC
	`

	linkRows, err := s.pool.Query(ctx, linkQuery)
	if err != nil {
		return nil, apperr.Unavailable("failed to load actor movies", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var actorID int64
		var movie models.Movie
		if err := linkRows.Scan(&actorID, &movie.ID, &movie.Title, &movie.ReleaseDate.Time); err != nil {
			return nil, apperr.Unavailable("failed to scan actor movie", err)
		}
		if actor, ok := byID[actorID]; ok {
			actor.Movies = append(actor.Movies, &movie)
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to load actor movies", err)
	}

	return actors, nil
}

func (s *PostgresStore) CreateActor(ctx context.Context, actor *models.Actor, movies []*models.Movie) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Unavailable("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO actors (name, age, gender)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id
	`

	err = tx.QueryRow(ctx, query, actor.Name, actor.Age, actor.Gender).Scan(&actor.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeConflict,
				fmt.Sprintf("actor %q already exists", actor.Name), err)
		}
		return apperr.Unavailable("failed to create actor", err)
	}

	if err := insertMoviesAndLinks(ctx, tx, actor.ID, movies); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Unavailable("failed to commit actor creation", err)
	}

	actor.Movies = movies
	return nil
}

func (s *PostgresStore) UpdateActor(ctx context.Context, actor *models.Actor, addMovies []*models.Movie) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Unavailable("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE actors
		SET name = $1, age = $2, gender = NULLIF($3, '')
		WHERE id = $4
	`

	result, err := tx.Exec(ctx, query, actor.Name, actor.Age, actor.Gender, actor.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeConflict,
				fmt.Sprintf("actor %q already exists", actor.Name), err)
		}
		return apperr.Unavailable("failed to update actor", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(fmt.Sprintf("actor %d not found", actor.ID))
	}

	if err := insertMoviesAndLinks(ctx, tx, actor.ID, addMovies); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Unavailable("failed to commit actor update", err)
	}

	return nil
}

func (s *PostgresStore) DeleteActor(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Unavailable("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM actor_movies WHERE actor_id = $1`, id); err != nil {
		return apperr.Unavailable("failed to delete actor associations", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM actors WHERE id = $1`, id)
	if err != nil {
		return apperr.Unavailable("failed to delete actor", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(fmt.Sprintf("actor %d not found", id))
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Unavailable("failed to commit actor deletion", err)
	}

	return nil
}

// Movie operations

func (s *PostgresStore) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	query := `
		SELECT id, title, release_date
		FROM movies
		WHERE id = $1
	`

	var movie models.Movie
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.ReleaseDate.Time,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("movie %d not found", id))
		}
		return nil, apperr.Unavailable("failed to get movie", err)
	}

	actors, err := s.actorsForMovie(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	movie.Actors = actors

	return &movie, nil
}

func (s *PostgresStore) GetMovieByTitle(ctx context.Context, title string) (*models.Movie, error) {
	query := `
		SELECT id, title, release_date
		FROM movies
		WHERE title = $1
	`

	var movie models.Movie
	err := s.pool.QueryRow(ctx, query, title).Scan(
		&movie.ID,
		&movie.Title,
		&movie.ReleaseDate.Time,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("movie %q not found", title))
		}
		return nil, apperr.Unavailable("failed to get movie by title", err)
	}

	return &movie, nil
}

func (s *PostgresStore) ListMovies(ctx context.Context) ([]*models.Movie, error) {
	query := `
		SELECT id, title, release_date
		FROM movies
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.Unavailable("failed to list movies", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	byID := make(map[int64]*models.Movie)
	for rows.Next() {
		var movie models.Movie
		if err := rows.Scan(&movie.ID, &movie.Title, &movie.ReleaseDate.Time); err != nil {
			return nil, apperr.Unavailable("failed to scan movie", err)
		}
		movies = append(movies, &movie)
		byID[movie.ID] = &movie
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to list movies", err)
	}

	linkQuery := `
		SELECT am.movie_id, a.id, a.name, a.age, COALESCE(a.gender, '')
		FROM actor_movies am
		JOIN actors a ON a.id = am.actor_id
		ORDER BY am.movie_id ASC, a.id ASC
	`

	linkRows, err := s.pool.Query(ctx, linkQuery)
	if err != nil {
		return nil, apperr.Unavailable("failed to load movie actors", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var movieID int64
		var actor models.Actor
		if err := linkRows.Scan(&movieID, &actor.ID, &actor.Name, &actor.Age, &actor.Gender); err != nil {
			return nil, apperr.Unavailable("failed to scan movie actor", err)
		}
		if movie, ok := byID[movieID]; ok {
			movie.Actors = append(movie.Actors, &actor)
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to load movie actors", err)
	}

	return movies, nil
}

func (s *PostgresStore) CreateMovie(ctx context.Context, movie *models.Movie, actors []*models.Actor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Unavailable("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO movies (title, release_date)
		VALUES ($1, $2)
		RETURNING id
	`

	err = tx.QueryRow(ctx, query, movie.Title, movie.ReleaseDate.Time).Scan(&movie.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeConflict,
				fmt.Sprintf("movie %q already exists", movie.Title), err)
		}
		return apperr.Unavailable("failed to create movie", err)
	}

	if err := insertActorsAndLinks(ctx, tx, movie.ID, actors); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Unavailable("failed to commit movie creation", err)
	}

	movie.Actors = actors
	return nil
}

func (s *PostgresStore) UpdateMovie(ctx context.Context, movie *models.Movie, addActors []*models.Actor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Unavailable("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE movies
		SET title = $1, release_date = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, movie.Title, movie.ReleaseDate.Time, movie.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeConflict,
				fmt.Sprintf("movie %q already exists", movie.Title), err)
		}
		return apperr.Unavailable("failed to update movie", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(fmt.Sprintf("movie %d not found", movie.ID))
	}

	if err := insertActorsAndLinks(ctx, tx, movie.ID, addActors); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Unavailable("failed to commit movie update", err)
	}

	return nil
}

func (s *PostgresStore) DeleteMovie(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Unavailable("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM actor_movies WHERE movie_id = $1`, id); err != nil {
		return apperr.Unavailable("failed to delete movie associations", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return apperr.Unavailable("failed to delete movie", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(fmt.Sprintf("movie %d not found", id))
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Unavailable("failed to commit movie deletion", err)
	}

	return nil
}

// Relation loading

func (s *PostgresStore) moviesForActor(ctx context.Context, actorID int64) ([]*models.Movie, error) {
	query := `
		SELECT m.id, m.title, m.release_date
		FROM movies m
		JOIN actor_movies am ON am.movie_id = m.id
		WHERE am.actor_id = $1
		ORDER BY m.id ASC
	`

	rows, err := s.pool.Query(ctx, query, actorID)
	if err != nil {
		return nil, apperr.Unavailable("failed to load actor movies", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		var movie models.Movie
		if err := rows.Scan(&movie.ID, &movie.Title, &movie.ReleaseDate.Time); err != nil {
			return nil, apperr.Unavailable("failed to scan movie", err)
		}
		movies = append(movies, &movie)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to load actor movies", err)
	}

	return movies, nil
}

func (s *PostgresStore) actorsForMovie(ctx context.Context, movieID int64) ([]*models.Actor, error) {
	query := `
		SELECT a.id, a.name, a.age, COALESCE(a.gender, '')
		FROM actors a
		JOIN actor_movies am ON am.actor_id = a.id
		WHERE am.movie_id = $1
		ORDER BY a.id ASC
	`

	rows, err := s.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, apperr.Unavailable("failed to load movie actors", err)
	}
	defer rows.Close()

	var actors []*models.Actor
	for rows.Next() {
		var actor models.Actor
		if err := rows.Scan(&actor.ID, &actor.Name, &actor.Age, &actor.Gender); err != nil {
			return nil, apperr.Unavailable("failed to scan actor", err)
		}
		actors = append(actors, &actor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to load movie actors", err)
	}

	return actors, nil
}

// Transactional helpers shared by create and update paths. Movies or actors
// without an id are inserted first; links use ON CONFLICT DO NOTHING so the
// association keeps set semantics even if a link already exists.

func insertMoviesAndLinks(ctx context.Context, tx pgx.Tx, actorID int64, movies []*models.Movie) error {
	for _, movie := range movies {
		if movie.ID == 0 {
			query := `
				INSERT INTO movies (title, release_date)
				VALUES ($1, $2)
				RETURNING id
			`
			if err := tx.QueryRow(ctx, query, movie.Title, movie.ReleaseDate.Time).Scan(&movie.ID); err != nil {
				if isUniqueViolation(err) {
					return apperr.New(apperr.CodeConflict,
						fmt.Sprintf("movie %q already exists", movie.Title), err)
				}
				return apperr.Unavailable("failed to create linked movie", err)
			}
		}

		linkQuery := `
			INSERT INTO actor_movies (actor_id, movie_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.Exec(ctx, linkQuery, actorID, movie.ID); err != nil {
			return apperr.Unavailable("failed to link movie to actor", err)
		}
	}
	return nil
}

func insertActorsAndLinks(ctx context.Context, tx pgx.Tx, movieID int64, actors []*models.Actor) error {
	for _, actor := range actors {
		if actor.ID == 0 {
			query := `
				INSERT INTO actors (name, age, gender)
				VALUES ($1, $2, NULLIF($3, ''))
				RETURNING id
			`
			if err := tx.QueryRow(ctx, query, actor.Name, actor.Age, actor.Gender).Scan(&actor.ID); err != nil {
				if isUniqueViolation(err) {
					return apperr.New(apperr.CodeConflict,
						fmt.Sprintf("actor %q already exists", actor.Name), err)
				}
				return apperr.Unavailable("failed to create linked actor", err)
			}
		}

		linkQuery := `
			INSERT INTO actor_movies (actor_id, movie_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.Exec(ctx, linkQuery, actor.ID, movieID); err != nil {
			return apperr.Unavailable("failed to link actor to movie", err)
		}
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetPool returns the connection pool for migrations.
func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Helper functions

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Ensure PostgresStore implements EntityStore
var _ store.EntityStore = (*PostgresStore)(nil)
