package matching

import (
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

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	targetID := mux.Vars(r)["userId"]

	result, err := h.service.RecordLike(r.Context(), userID, targetID)
	if err != nil {
		if errors.Is(err, ErrMissingUserID) || errors.Is(err, ErrSelfAction) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record like")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	targetID := mux.Vars(r)["userId"]

	if err := h.service.RecordPass(r.Context(), userID, targetID); err != nil {
		if errors.Is(err, ErrMissingUserID) || errors.Is(err, ErrSelfAction) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record pass")
		return
	}

	utils.RespondWithJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	matches, err := h.service.GetMatches(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, matches)
}

func (h *Handler) CheckMatch(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	otherID := mux.Vars(r)["userId"]

	matched, err := h.service.IsMatched(r.Context(), userID, otherID)
	if err != nil {
		if errors.Is(err, ErrMissingUserID) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check match")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"matched": matched})
}

func (h *Handler) GetLikes(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	likes, err := h.service.GetLikes(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get likes")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, likes)
}

func (h *Handler) GetPasses(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	passes, err := h.service.GetPasses(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get passes")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, passes)
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	otherID := mux.Vars(r)["userId"]

	score, err := h.service.Compatibility(r.Context(), userID, otherID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute compatibility")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, &CompatibilityResult{UserID: otherID, Score: score})
}

func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	candidates, err := h.service.DiscoverCandidates(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "complete your profile first")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load candidates")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, candidates)
}
