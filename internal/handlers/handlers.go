// Package handlers contains the JSON HTTP handlers. Routing and middleware
// live in internal/server; authorization decisions are delegated to the
// policy gate, visibility to the ownership scope.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/auth"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/gate"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/httpx"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/models"
)

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// authorize runs the gate for the caller and writes the 403 response on
// denial. The 401 case is handled earlier by auth.RequireAuth.
func authorize(w http.ResponseWriter, r *http.Request, g *gate.Gate[*models.User], action gate.Action, resource string) bool {
	caller := auth.CurrentUser(r.Context())
	if err := g.Authorize(caller, action, resource); err != nil {
		if errors.Is(err, gate.ErrNoRuleDefined) {
			httpx.JSONError(w, http.StatusInternalServerError, "authorization_misconfigured", nil)
			return false
		}
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return false
	}
	return true
}

func notFound(w http.ResponseWriter) {
	httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
}
