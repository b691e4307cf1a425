package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/presentation/mappers"
	"github.com/musterhq/muster/modules/faction/presentation/viewmodels"
	"github.com/musterhq/muster/modules/faction/services"
	"github.com/musterhq/muster/pkg/application"
	"github.com/musterhq/muster/pkg/configuration"
)

type FactionAPIController struct {
	app      application.Application
	factions *services.FactionService
	basePath string
}

func NewFactionAPIController(app application.Application) application.Controller {
	return &FactionAPIController{
		app:      app,
		factions: app.Service(services.FactionService{}).(*services.FactionService),
		basePath: "/api/factions",
	}
}

func (c *FactionAPIController) Key() string {
	return c.basePath
}

func (c *FactionAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/tree", c.Tree).Methods(http.MethodGet)
	router.HandleFunc("/slug/{slug}", c.GetBySlug).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPatch)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/move", c.Move).Methods(http.MethodPost)
}

func (c *FactionAPIController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	params := &faction.FindParams{
		Search: r.URL.Query().Get("q"),
		Limit:  conf.PageSize,
	}
	if raw := r.URL.Query().Get("organization_id"); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid organization id")
			return
		}
		params.OrganizationID = orgID
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		params.Limit = min(limit, conf.MaxPageSize)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		params.Offset = offset
	}

	factions, err := c.factions.GetPaginated(r.Context(), params)
	if err != nil {
		respondError(w, r, err)
		return
	}
	total, err := c.factions.Count(r.Context(), params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]*viewmodels.Faction, 0, len(factions))
	for _, f := range factions {
		items = append(items, mappers.FactionToViewModel(f))
	}
	writeJSON(w, http.StatusOK, viewmodels.PaginatedResponse[*viewmodels.Faction]{Items: items, Total: total})
}

func (c *FactionAPIController) Tree(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.URL.Query().Get("organization_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	factions, err := c.factions.GetPaginated(r.Context(), &faction.FindParams{OrganizationID: orgID})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.FactionsToTree(factions))
}

func (c *FactionAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid faction id")
		return
	}

	f, err := c.factions.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.FactionToViewModel(f))
}

func (c *FactionAPIController) GetBySlug(w http.ResponseWriter, r *http.Request) {
	f, err := c.factions.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.FactionToViewModel(f))
}

func (c *FactionAPIController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &faction.CreateDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeFieldErrors(w, errs)
		return
	}

	created, err := c.factions.Create(r.Context(), dto)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mappers.FactionToViewModel(created))
}

func (c *FactionAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid faction id")
		return
	}

	dto := &faction.UpdateDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeFieldErrors(w, errs)
		return
	}

	updated, err := c.factions.Update(r.Context(), id, dto)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.FactionToViewModel(updated))
}

type moveRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

func (c *FactionAPIController) Move(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid faction id")
		return
	}

	req := moveRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	moved, err := c.factions.Move(r.Context(), id, req.ParentID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.FactionToViewModel(moved))
}

func (c *FactionAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid faction id")
		return
	}

	if err := c.factions.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
