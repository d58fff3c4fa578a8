package profile

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/profile", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/profile", handler.UpsertProfile).Methods("PUT")
	api.HandleFunc("/profile", handler.DeleteAccount).Methods("DELETE")
	api.HandleFunc("/users/{userId}/profile", handler.GetUserProfile).Methods("GET")
}
