package messaging

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/coexist-app/coexist-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var dto SendMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.SendMessage(r.Context(), userID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuotaExceeded):
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, ErrNotAllowed):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrMissingUserID), errors.Is(err, ErrSelfConversation):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send message")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, msg)
}

func (h *Handler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	otherID := mux.Vars(r)["userId"]

	limit, offset := 50, 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if o, err := strconv.Atoi(raw); err == nil && o >= 0 {
			offset = o
		}
	}

	messages, err := h.service.GetRoomMessages(r.Context(), userID, otherID, limit, offset)
	if err != nil {
		if errors.Is(err, ErrMissingUserID) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, messages)
}

func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	list, err := h.service.GetConversations(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load conversations")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) GetAllowance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	otherID := mux.Vars(r)["userId"]

	allowance, err := h.service.GetAllowance(r.Context(), userID, otherID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrMissingUserID):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check allowance")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, allowance)
}
