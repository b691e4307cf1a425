package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/modules/faction/domain/entities/organization"
	"github.com/musterhq/muster/modules/faction/services"
	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/serrors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeFieldErrors(w http.ResponseWriter, errs serrors.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}

// respondError maps domain errors onto HTTP statuses. Policy
// violations are user-correctable and come back as 422 field errors;
// a hierarchy cycle means corrupted data and stays a 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		depthErr *faction.DepthExceededError
		fullErr  *member.FactionFullError
		cycleErr *faction.CycleError
		valErrs  serrors.ValidationErrors
	)

	switch {
	case errors.As(err, &valErrs):
		writeFieldErrors(w, valErrs)
	case errors.As(err, &depthErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": map[string]string{"parent_id": depthErr.Error()},
		})
	case errors.As(err, &fullErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": map[string]string{"faction_id": fullErr.Error()},
		})
	case errors.Is(err, services.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, faction.ErrNotFound),
		errors.Is(err, member.ErrNotFound),
		errors.Is(err, organization.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, member.ErrAlreadyMember),
		errors.Is(err, faction.ErrDuplicateName),
		errors.Is(err, faction.ErrDuplicateSlug):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, faction.ErrInvalidParent),
		errors.Is(err, faction.ErrCrossOrganization),
		errors.Is(err, faction.ErrMissingOrganization),
		errors.Is(err, member.ErrOrganizationMismatch):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("request failed")
		if errors.As(err, &cycleErr) {
			writeError(w, http.StatusInternalServerError, "faction hierarchy is corrupted")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
