package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"freelanceBack/internal/services"
)

type RatingHandler struct {
	ProjectService *services.ProjectService
}

// RateSeller records the buyer's rating for a completed project and returns
// the seller's refreshed average.
func (h *RatingHandler) RateSeller(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID int    `json:"project_id"`
		Value     int    `json:"value"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProjectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	rating, average, err := h.ProjectService.RateSeller(r.Context(), callerID(r), req.ProjectID, req.Value, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"rating":         rating,
		"seller_average": average,
	})
}

func (h *RatingHandler) GetSellerRatings(w http.ResponseWriter, r *http.Request) {
	sellerID, err := strconv.Atoi(getParam(r, "seller_id"))
	if err != nil || sellerID <= 0 {
		http.Error(w, "Invalid seller ID", http.StatusBadRequest)
		return
	}

	ratings, err := h.ProjectService.GetSellerRatings(r.Context(), sellerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ratings": ratings})
}
