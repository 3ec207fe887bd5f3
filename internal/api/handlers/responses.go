package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marquee-hq/marquee/internal/models"
)

// ActorShort is the actor representation nested inside a movie.
type ActorShort struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// MovieShort is the movie representation nested inside an actor.
type MovieShort struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	ReleaseDate models.Date `json:"release_date"`
}

// ActorLong is the full actor representation with its linked movies.
type ActorLong struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Age    int          `json:"age"`
	Gender string       `json:"gender"`
	Movies []MovieShort `json:"movies"`
}

// MovieLong is the full movie representation with its linked actors.
type MovieLong struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	ReleaseDate models.Date  `json:"release_date"`
	Actors      []ActorShort `json:"actors"`
}

func actorToLong(actor *models.Actor) ActorLong {
	movies := make([]MovieShort, 0, len(actor.Movies))
	for _, m := range actor.Movies {
		movies = append(movies, MovieShort{
			ID:          m.ID,
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
		})
	}
	return ActorLong{
		ID:     actor.ID,
		Name:   actor.Name,
		Age:    actor.Age,
		Gender: actor.Gender,
		Movies: movies,
	}
}

func movieToLong(movie *models.Movie) MovieLong {
	actors := make([]ActorShort, 0, len(movie.Actors))
	for _, a := range movie.Actors {
		actors = append(actors, ActorShort{
			ID:     a.ID,
			Name:   a.Name,
			Age:    a.Age,
			Gender: a.Gender,
		})
	}
	return MovieLong{
		ID:          movie.ID,
		Title:       movie.Title,
		ReleaseDate: movie.ReleaseDate,
		Actors:      actors,
	}
}

func sendJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}
