package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/musterhq/muster/modules/faction/services"
	"github.com/musterhq/muster/pkg/application"
	"github.com/musterhq/muster/pkg/composables"
)

type DashboardController struct {
	app       application.Application
	dashboard *services.DashboardService
	basePath  string
}

func NewDashboardController(app application.Application) application.Controller {
	return &DashboardController{
		app:       app,
		dashboard: app.Service(services.DashboardService{}).(*services.DashboardService),
		basePath:  "/api/dashboard",
	}
}

func (c *DashboardController) Key() string {
	return c.basePath
}

func (c *DashboardController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.Get).Methods(http.MethodGet)
}

// Get composes the acting person's widget set. Unauthenticated viewers
// still get a page: every widget simply renders empty.
func (c *DashboardController) Get(w http.ResponseWriter, r *http.Request) {
	personID, _ := composables.UseActorID(r.Context())
	widgets := c.dashboard.Build(r.Context(), personID)
	writeJSON(w, http.StatusOK, widgets)
}
