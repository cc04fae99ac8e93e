package fsm

import (
	"context"
	"database/sql"
	"errors"
)

// Status constants used by the project state machine.
const (
	StatusPending          = "pending"
	StatusInProgress       = "in_progress"
	StatusInReview         = "in_review"
	StatusChangesRequested = "changes_requested"
	StatusCompleted        = "completed"
	StatusCancelled        = "cancelled"
)

var transitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusInProgress: {},
		StatusCancelled:  {},
	},
	StatusInProgress: {
		StatusInReview:  {},
		StatusPending:   {}, // seller unselected
		StatusCancelled: {},
	},
	StatusInReview: {
		StatusChangesRequested: {},
		StatusCompleted:        {},
		StatusPending:          {},
		StatusCancelled:        {},
	},
	StatusChangesRequested: {
		StatusInReview:  {},
		StatusCompleted: {},
		StatusPending:   {},
		StatusCancelled: {},
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Terminal reports whether no further transitions leave the status.
func Terminal(status string) bool {
	return len(transitions[status]) == 0
}

// CanTransition returns whether a project can move from the current status to the target status.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Apply updates a project status using optimistic validation. The conditional
// WHERE clause makes the write a compare-and-set: if another request already
// moved the row away from fromStatus, no rows match and sql.ErrNoRows is
// returned so the caller can re-read and report the conflict.
func Apply(ctx context.Context, tx *sql.Tx, projectID int, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return errors.New("invalid status transition")
	}
	res, err := tx.ExecContext(ctx, `UPDATE projects SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`, toStatus, projectID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
