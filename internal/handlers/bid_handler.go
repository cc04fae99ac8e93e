package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"freelanceBack/internal/models"
	"freelanceBack/internal/services"
)

type BidHandler struct {
	BidService *services.BidService
}

func (h *BidHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	var bid models.Bid
	if err := json.NewDecoder(r.Body).Decode(&bid); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if bid.ProjectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	created, err := h.BidService.PlaceBid(r.Context(), callerID(r), bid)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Referenced project or user does not exist", http.StatusBadRequest)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *BidHandler) GetBidsByProjectID(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(getParam(r, "project_id"))
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	bids, err := h.BidService.GetBidsByProjectID(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bids": bids})
}

func (h *BidHandler) GetBidByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(getParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid bid ID", http.StatusBadRequest)
		return
	}

	bid, err := h.BidService.GetBidByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bid)
}

func (h *BidHandler) GetBidsBySellerID(w http.ResponseWriter, r *http.Request) {
	sellerID, err := strconv.Atoi(getParam(r, "seller_id"))
	if err != nil || sellerID <= 0 {
		http.Error(w, "Invalid seller ID", http.StatusBadRequest)
		return
	}

	bids, err := h.BidService.GetBidsBySellerID(r.Context(), sellerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bids": bids})
}
