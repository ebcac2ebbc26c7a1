package swagger

import (
	"encoding/json"
	"net/http"

	portalapi "github.com/USSTM/facility-portal/api"
	httpSwagger "github.com/swaggo/http-swagger"
)

const DocPath = "/swagger/doc.json"

// ServeSwaggerJSON serves the OpenAPI document as JSON.
func ServeSwaggerJSON(w http.ResponseWriter, r *http.Request) {
	spec, err := portalapi.GetSwagger()
	if err != nil {
		http.Error(w, "Failed to load OpenAPI spec", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS off for docs
	_ = json.NewEncoder(w).Encode(spec)
}

// UI serves the Swagger UI pointed at DocPath.
func UI() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL(DocPath))
}
