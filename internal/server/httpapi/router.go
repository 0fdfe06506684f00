package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the API routes. Routes under the protected subrouter
// require a valid bearer credential.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")

	r.HandleFunc("/api/pair/start", s.handlePairStart).Methods("POST")
	r.HandleFunc("/api/pair/secret/issue", s.handleSecretIssue).Methods("POST")
	r.HandleFunc("/api/pair/exchange", s.handlePairExchange).Methods("POST")
	r.HandleFunc("/api/pair/secret", s.handlePairSecret).Methods("POST")
	r.HandleFunc("/api/token/refresh", s.handleTokenRefresh).Methods("POST")
	r.HandleFunc("/api/token/validate", s.handleTokenValidate).Methods("POST")
	r.HandleFunc("/api/images", s.handleImageList).Methods("GET")

	protected := r.NewRoute().Subrouter()
	protected.Use(s.withAuth)
	protected.HandleFunc("/api/unpair", s.handleUnpair).Methods("POST")
	protected.HandleFunc("/api/images", s.handleImageCreate).Methods("POST")

	return r
}
