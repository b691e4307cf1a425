package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/musterhq/muster/modules/person/domain/aggregates/person"
	"github.com/musterhq/muster/modules/person/infrastructure/persistence"
	"github.com/musterhq/muster/modules/person/services"
	"github.com/musterhq/muster/pkg/application"
	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/configuration"
	"github.com/musterhq/muster/pkg/serrors"
)

type personResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
}

func toPersonResponse(p person.Person) personResponse {
	return personResponse{
		ID:          p.ID().String(),
		Username:    p.Username(),
		Email:       p.Email(),
		DisplayName: p.DisplayName(),
		Active:      p.Active(),
	}
}

type PersonAPIController struct {
	app      application.Application
	people   *services.PersonService
	basePath string
}

func NewPersonAPIController(app application.Application) application.Controller {
	return &PersonAPIController{
		app:      app,
		people:   app.Service(services.PersonService{}).(*services.PersonService),
		basePath: "/api/people",
	}
}

func (c *PersonAPIController) Key() string {
	return c.basePath
}

func (c *PersonAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *PersonAPIController) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (c *PersonAPIController) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, persistence.ErrPersonNotFound) {
		c.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("request failed")
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (c *PersonAPIController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	params := &person.FindParams{
		Search: r.URL.Query().Get("q"),
		Limit:  conf.PageSize,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		params.Limit = min(limit, conf.MaxPageSize)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		params.Offset = offset
	}

	people, total, err := c.people.GetPaginated(r.Context(), params)
	if err != nil {
		c.respondError(w, r, err)
		return
	}

	items := make([]personResponse, 0, len(people))
	for _, p := range people {
		items = append(items, toPersonResponse(p))
	}
	c.writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (c *PersonAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		c.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid person id"})
		return
	}

	p, err := c.people.GetByID(r.Context(), id)
	if err != nil {
		c.respondError(w, r, err)
		return
	}
	c.writeJSON(w, http.StatusOK, toPersonResponse(p))
}

func (c *PersonAPIController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &person.CreateDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		c.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if errs, ok := dto.Ok(); !ok {
		c.writeJSON(w, http.StatusBadRequest, map[string]serrors.ValidationErrors{"errors": errs})
		return
	}

	created, err := c.people.Create(r.Context(), dto)
	if err != nil {
		c.respondError(w, r, err)
		return
	}
	c.writeJSON(w, http.StatusCreated, toPersonResponse(created))
}

func (c *PersonAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		c.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid person id"})
		return
	}

	if err := c.people.Delete(r.Context(), id); err != nil {
		c.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
