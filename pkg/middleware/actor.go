package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/configuration"
)

// ProvideActor reads the acting person's id set by the fronting auth
// proxy and stores it in the context. Requests without the header stay
// anonymous; scope resolution then yields empty scope.
func ProvideActor() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(conf.ActorIDHeader)
			if raw != "" {
				if personID, err := uuid.Parse(raw); err == nil {
					r = r.WithContext(composables.WithActorID(r.Context(), personID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
