package httpx

import (
	"encoding/json"
	"net/http"
)

// healthHandler answers liveness probes. It sits outside the filter chain:
// no session, no transaction, no side effects.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
