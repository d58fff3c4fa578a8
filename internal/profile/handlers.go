package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coexist-app/coexist-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	p, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not set up yet")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var dto UpsertProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	p, err := h.service.UpsertProfile(r.Context(), userID, &dto)
	if err != nil {
		if errors.Is(err, ErrMissingUserID) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusInternalServerError, "Profile write not visible")
			return
		}
		// Validation errors surface with their field messages.
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["userId"]

	p, err := h.service.GetPublicProfile(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	utils.RespondWithJSON(w, http.StatusNoContent, nil)
}
