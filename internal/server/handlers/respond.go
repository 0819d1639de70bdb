// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/cache"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/fault"
)

// userIDHeader carries the caller identity. A gateway upstream is expected
// to have authenticated it.
const userIDHeader = "X-User-ID"

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes the {success:false, message} envelope, with any
// details merged in as top-level fields.
func respondWithError(w http.ResponseWriter, code int, message string, details map[string]interface{}) {
	response := map[string]interface{}{
		"success": false,
		"message": message,
	}
	for k, v := range details {
		response[k] = v
	}

	respondWithJSON(w, code, response)
}

// respondWithFault translates a service error into an HTTP status and the
// error envelope.
func respondWithFault(w http.ResponseWriter, err error) {
	var code int
	switch fault.KindOf(err) {
	case fault.Validation, fault.Integrity:
		code = http.StatusBadRequest
	case fault.NotFound:
		code = http.StatusNotFound
	default:
		code = http.StatusServiceUnavailable
	}

	if code >= 500 {
		log.Printf("request failed: %v", err)
	}

	respondWithError(w, code, err.Error(), fault.DetailsOf(err))
}

// NotFound answers unknown routes with the error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "route not found", nil)
}

// MethodNotAllowed answers wrong-method requests with the error envelope.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// userID extracts the authenticated caller. Empty means unauthenticated.
func userID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}

// writeCached serves a cached payload verbatim.
func writeCached(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// respondCaching marshals the payload once, stores the exact bytes, and
// writes them. Repeated hits within the TTL are byte-identical.
func respondCaching(w http.ResponseWriter, c cache.ResultCache, key string, ttl time.Duration, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	c.Set(key, data, ttl)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
