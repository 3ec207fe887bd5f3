package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/marquee-hq/marquee/internal/api/middleware"
	"github.com/marquee-hq/marquee/internal/core"
	"github.com/marquee-hq/marquee/internal/models"
)

type MovieHandler struct {
	engine   *core.Engine
	validate *validator.Validate
}

func NewMovieHandler(engine *core.Engine) *MovieHandler {
	return &MovieHandler{
		engine:   engine,
		validate: validator.New(),
	}
}

// ActorDescriptorRequest is a nested actor reference. Incomplete descriptors
// are skipped during reconciliation rather than rejected.
type ActorDescriptorRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

type MovieCreateRequest struct {
	Title       string                   `json:"title" validate:"required"`
	ReleaseDate models.Date              `json:"release_date"`
	Actors      []ActorDescriptorRequest `json:"actors"`
}

type MoviePatchRequest struct {
	Title       *string                  `json:"title" validate:"omitempty,min=1"`
	ReleaseDate *models.Date             `json:"release_date"`
	Actors      []ActorDescriptorRequest `json:"actors"`
}

type MoviesResponse struct {
	Success bool        `json:"success"`
	Movies  []MovieLong `json:"movies"`
}

func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	movies, err := h.engine.ListMovies(r.Context())
	if err != nil {
		middleware.SendError(w, err)
		return
	}

	response := MoviesResponse{Success: true, Movies: make([]MovieLong, 0, len(movies))}
	for _, movie := range movies {
		response.Movies = append(response.Movies, movieToLong(movie))
	}
	sendJSON(w, response)
}

func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req MovieCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.SendBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil || req.ReleaseDate.IsZero() {
		middleware.SendBadRequest(w, "title and release_date are required")
		return
	}

	movie, err := h.engine.CreateMovie(r.Context(), core.MovieInput{
		Title:       req.Title,
		ReleaseDate: req.ReleaseDate,
		Actors:      actorDescriptors(req.Actors),
	})
	if err != nil {
		middleware.SendError(w, err)
		return
	}

	sendJSON(w, MoviesResponse{Success: true, Movies: []MovieLong{movieToLong(movie)}})
}

func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		middleware.SendNotFound(w, "movie not found")
		return
	}

	var req MoviePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.SendBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		middleware.SendBadRequest(w, "invalid field values")
		return
	}

	movie, err := h.engine.UpdateMovie(r.Context(), id, core.MoviePatch{
		Title:       req.Title,
		ReleaseDate: req.ReleaseDate,
		Actors:      actorDescriptors(req.Actors),
	})
	if err != nil {
		middleware.SendError(w, err)
		return
	}

	sendJSON(w, MoviesResponse{Success: true, Movies: []MovieLong{movieToLong(movie)}})
}

func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		middleware.SendNotFound(w, "movie not found")
		return
	}

	if err := h.engine.DeleteMovie(r.Context(), id); err != nil {
		middleware.SendError(w, err)
		return
	}

	sendJSON(w, DeleteResponse{Success: true, Delete: id})
}

func actorDescriptors(reqs []ActorDescriptorRequest) []core.ActorDescriptor {
	descriptors := make([]core.ActorDescriptor, 0, len(reqs))
	for _, a := range reqs {
		descriptors = append(descriptors, core.ActorDescriptor{
			Name:   a.Name,
			Age:    a.Age,
			Gender: a.Gender,
		})
	}
	return descriptors
}
