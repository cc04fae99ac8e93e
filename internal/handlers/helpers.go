package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"freelanceBack/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusForError maps service errors onto HTTP status codes. Anything
// unrecognized is an internal failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrProjectNotFound),
		errors.Is(err, models.ErrBidNotFound),
		errors.Is(err, models.ErrDeliverableNotFound),
		errors.Is(err, models.ErrConversationNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrNoRecord):
		return http.StatusNotFound

	case errors.Is(err, models.ErrNotProjectOwner),
		errors.Is(err, models.ErrNotSelectedSeller),
		errors.Is(err, models.ErrNotParticipant):
		return http.StatusForbidden

	case errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrStatusConflict),
		errors.Is(err, models.ErrNoSelectedSeller),
		errors.Is(err, models.ErrAlreadyCompleted),
		errors.Is(err, models.ErrAlreadyRated),
		errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict

	case errors.Is(err, models.ErrBidProjectMismatch),
		errors.Is(err, models.ErrOwnProjectBid),
		errors.Is(err, models.ErrProgressOutOfRange),
		errors.Is(err, models.ErrRatingOutOfRange),
		errors.Is(err, models.ErrSelfConversation),
		errors.Is(err, models.ErrEmptyMessage):
		return http.StatusBadRequest

	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrInvalidPassword):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// callerID returns the authenticated user id stored by the JWT middleware.
func callerID(r *http.Request) int {
	id, _ := r.Context().Value("user_id").(int)
	return id
}
