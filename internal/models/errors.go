package models

import (
	"errors"
)

var ErrProjectNotFound = errors.New("project not found")
var ErrBidNotFound = errors.New("bid not found")
var ErrDeliverableNotFound = errors.New("deliverable not found")
var ErrConversationNotFound = errors.New("conversation not found")
var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrInvalidPassword    = errors.New("models: invalid password")

	// ownership / authorization
	ErrNotProjectOwner   = errors.New("caller is not the project owner")
	ErrNotSelectedSeller = errors.New("caller is not the selected seller")
	ErrNotParticipant    = errors.New("caller is not a conversation participant")

	// state-machine violations
	ErrInvalidStatus      = errors.New("operation not allowed in current project status")
	ErrStatusConflict     = errors.New("project status changed concurrently")
	ErrNoSelectedSeller   = errors.New("project has no selected seller")
	ErrAlreadyCompleted   = errors.New("project already completed")
	ErrAlreadyRated       = errors.New("project already rated by this buyer")
	ErrBidProjectMismatch = errors.New("bid does not belong to this project")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 99")
	ErrOwnProjectBid      = errors.New("buyer cannot bid on their own project")

	// chat
	ErrSelfConversation = errors.New("conversation with yourself is not allowed")
	ErrEmptyMessage     = errors.New("message text must not be empty")

	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
)
