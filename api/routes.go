package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the gateway routes to the domain services.
func NewRouter() *mux.Router {
	router := mux.NewRouter()

	router.PathPrefix("/weigh/").Handler(createReverseProxy("http://localhost:6143"))
	router.PathPrefix("/tenant/").Handler(createReverseProxy("http://localhost:7143"))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API Gateway is healthy"))
	}).Methods("GET")

	return router
}
