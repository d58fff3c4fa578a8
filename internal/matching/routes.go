package matching

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authenticate)

	// Swipe actions
	api.HandleFunc("/like/{userId}", handler.Like).Methods("POST")
	api.HandleFunc("/pass/{userId}", handler.Pass).Methods("POST")
	api.HandleFunc("/likes", handler.GetLikes).Methods("GET")
	api.HandleFunc("/passes", handler.GetPasses).Methods("GET")

	// Matches
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches/check/{userId}", handler.CheckMatch).Methods("GET")

	// Scoring
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")
	api.HandleFunc("/discover", handler.Discover).Methods("GET")
}
