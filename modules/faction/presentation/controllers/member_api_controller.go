package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/modules/faction/presentation/mappers"
	"github.com/musterhq/muster/modules/faction/presentation/viewmodels"
	"github.com/musterhq/muster/modules/faction/services"
	"github.com/musterhq/muster/pkg/application"
)

type MemberAPIController struct {
	app      application.Application
	members  *services.MemberService
	queries  *services.MemberQueryService
	basePath string
}

func NewMemberAPIController(app application.Application) application.Controller {
	return &MemberAPIController{
		app:      app,
		members:  app.Service(services.MemberService{}).(*services.MemberService),
		queries:  app.Service(services.MemberQueryService{}).(*services.MemberQueryService),
		basePath: "/api",
	}
}

func (c *MemberAPIController) Key() string {
	return c.basePath + "/members"
}

func (c *MemberAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/members", c.Provision).Methods(http.MethodPost)
	router.HandleFunc("/members/{id}", c.Remove).Methods(http.MethodDelete)
	router.HandleFunc("/members/{id}/promote", c.Promote).Methods(http.MethodPost)
	router.HandleFunc("/members/{id}/reassign", c.Reassign).Methods(http.MethodPost)
	router.HandleFunc("/factions/{id}/members", c.MembersOf).Methods(http.MethodGet)
	router.HandleFunc("/factions/{id}/members/count", c.MemberCount).Methods(http.MethodGet)
	router.HandleFunc("/factions/{id}/sub-factions/count", c.SubFactionCount).Methods(http.MethodGet)
	router.HandleFunc("/factions/{id}/roster", c.Roster).Methods(http.MethodGet)
	router.HandleFunc("/factions/{id}/distribution", c.Distribution).Methods(http.MethodGet)
}

// scopeQuery pulls the faction id from the path and the kind/recursive
// knobs from the query string.
func scopeQuery(r *http.Request) (uuid.UUID, member.Kind, bool, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, "", false, false
	}
	kind := member.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = member.KindAttendee
	}
	if !kind.Valid() {
		return uuid.Nil, "", false, false
	}
	recursive := r.URL.Query().Get("recursive") != "false"
	return id, kind, recursive, true
}

func (c *MemberAPIController) MembersOf(w http.ResponseWriter, r *http.Request) {
	id, kind, recursive, ok := scopeQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid faction id or kind")
		return
	}

	memberships, err := c.queries.MembersOf(r.Context(), id, kind, recursive)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]*viewmodels.Member, 0, len(memberships))
	for _, m := range memberships {
		items = append(items, mappers.MemberToViewModel(m))
	}
	writeJSON(w, http.StatusOK, items)
}

func (c *MemberAPIController) MemberCount(w http.ResponseWriter, r *http.Request) {
	id, kind, recursive, ok := scopeQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid faction id or kind")
		return
	}

	count, err := c.queries.MemberCount(r.Context(), id, kind, recursive)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (c *MemberAPIController) SubFactionCount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid faction id")
		return
	}

	count, err := c.queries.SubFactionCount(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (c *MemberAPIController) Roster(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid faction id")
		return
	}

	memberships, err := c.queries.Roster(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]*viewmodels.Member, 0, len(memberships))
	for _, m := range memberships {
		items = append(items, mappers.MemberToViewModel(m))
	}
	writeJSON(w, http.StatusOK, items)
}

func (c *MemberAPIController) Distribution(w http.ResponseWriter, r *http.Request) {
	id, kind, _, ok := scopeQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid faction id or kind")
		return
	}

	counts, err := c.queries.Distribution(r.Context(), id, kind)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (c *MemberAPIController) Provision(w http.ResponseWriter, r *http.Request) {
	dto := &member.CreateDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeFieldErrors(w, errs)
		return
	}

	created, err := c.members.Provision(r.Context(), dto)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mappers.MemberToViewModel(created))
}

type promoteRequest struct {
	IsAdmin bool `json:"is_admin"`
}

func (c *MemberAPIController) Promote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid membership id")
		return
	}

	req := promoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := c.members.Promote(r.Context(), id, req.IsAdmin)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.MemberToViewModel(updated))
}

type reassignRequest struct {
	FactionID *uuid.UUID `json:"faction_id"`
}

func (c *MemberAPIController) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid membership id")
		return
	}

	req := reassignRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := c.members.Reassign(r.Context(), id, req.FactionID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.MemberToViewModel(updated))
}

func (c *MemberAPIController) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid membership id")
		return
	}

	if err := c.members.Remove(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
