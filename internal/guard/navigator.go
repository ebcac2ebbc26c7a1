package guard

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Navigator performs the transition the guard decided on. A hard navigation
// is a full reload of the entry point; a soft one stays inside the portal.
type Navigator interface {
	Navigate(w http.ResponseWriter, r *http.Request, path string, hard bool)
}

// HTTPNavigator redirects browsers and answers API clients with a JSON body
// naming the redirect target.
type HTTPNavigator struct{}

type navigationBody struct {
	Redirect string `json:"redirect"`
	Hard     bool   `json:"hard"`
}

func (HTTPNavigator) Navigate(w http.ResponseWriter, r *http.Request, path string, hard bool) {
	if WantsJSON(r) {
		status := http.StatusForbidden
		if hard {
			status = http.StatusUnauthorized
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(navigationBody{Redirect: path, Hard: hard})
		return
	}

	if hard {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, path, http.StatusFound)
}

// WantsJSON reports whether the client asked for JSON rather than a page.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
