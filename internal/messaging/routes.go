package messaging

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authenticate func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/messaging").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/messages", handler.SendMessage).Methods("POST")
	api.HandleFunc("/rooms/{userId}/messages", handler.GetRoomMessages).Methods("GET")
	api.HandleFunc("/conversations", handler.GetConversations).Methods("GET")
	api.HandleFunc("/allowance/{userId}", handler.GetAllowance).Methods("GET")
}
