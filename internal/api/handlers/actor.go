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

type ActorHandler struct {
	engine   *core.Engine
	validate *validator.Validate
}

func NewActorHandler(engine *core.Engine) *ActorHandler {
	return &ActorHandler{
		engine:   engine,
		validate: validator.New(),
	}
}

// MovieDescriptorRequest is a nested movie reference. Incomplete descriptors
// are skipped during reconciliation rather than rejected.
type MovieDescriptorRequest struct {
	Title       string      `json:"title"`
	ReleaseDate models.Date `json:"release_date"`
}

type ActorCreateRequest struct {
	Name   string                   `json:"name" validate:"required"`
	Age    int                      `json:"age" validate:"required,gt=0"`
	Gender string                   `json:"gender"`
	Movies []MovieDescriptorRequest `json:"movies"`
}

type ActorPatchRequest struct {
	Name   *string                  `json:"name" validate:"omitempty,min=1"`
	Age    *int                     `json:"age" validate:"omitempty,gt=0"`
	Gender *string                  `json:"gender"`
	Movies []MovieDescriptorRequest `json:"movies"`
}

type ActorsResponse struct {
	Success bool        `json:"success"`
	Actors  []ActorLong `json:"actors"`
}

type DeleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}

func (h *ActorHandler) List(w http.ResponseWriter, r *http.Request) {
	actors, err := h.engine.ListActors(r.Context())
	if err != nil {
		middleware.SendError(w, err)
		return
	}

	response := ActorsResponse{Success: true, Actors: make([]ActorLong, 0, len(actors))}
	for _, actor := range actors {
		response.Actors = append(response.Actors, actorToLong(actor))
	}
	sendJSON(w, response)
}

func (h *ActorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ActorCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.SendBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		middleware.SendBadRequest(w, "name and age are required")
		return
	}

	actor, err := h.engine.CreateActor(r.Context(), core.ActorInput{
		Name:   req.Name,
		Age:    req.Age,
		Gender: req.Gender,
		Movies: movieDescriptors(req.Movies),
	})
	if err != nil {
		middleware.SendError(w, err)
		return
	}

	sendJSON(w, ActorsResponse{Success: true, Actors: []ActorLong{actorToLong(actor)}})
}

func (h *ActorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "actorID"), 10, 64)
	if err != nil {
		middleware.SendNotFound(w, "actor not found")
		return
	}

	var req ActorPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.SendBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		middleware.SendBadRequest(w, "invalid field values")
		return
	}

	actor, err := h.engine.UpdateActor(r.Context(), id, core.ActorPatch{
		Name:   req.Name,
		Age:    req.Age,
		Gender: req.Gender,
		Movies: movieDescriptors(req.Movies),
	})
	if err != nil {
		middleware.SendError(w, err)
		return
	}

	sendJSON(w, ActorsResponse{Success: true, Actors: []ActorLong{actorToLong(actor)}})
}

func (h *ActorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "actorID"), 10, 64)
	if err != nil {
		middleware.SendNotFound(w, "actor not found")
		return
	}

	if err := h.engine.DeleteActor(r.Context(), id); err != nil {
		middleware.SendError(w, err)
		return
	}

	sendJSON(w, DeleteResponse{Success: true, Delete: id})
}

func movieDescriptors(reqs []MovieDescriptorRequest) []core.MovieDescriptor {
	descriptors := make([]core.MovieDescriptor, 0, len(reqs))
	for _, m := range reqs {
		descriptors = append(descriptors, core.MovieDescriptor{
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
		})
	}
	return descriptors
}
