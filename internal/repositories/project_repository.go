package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"freelanceBack/internal/fsm"
	"freelanceBack/internal/models"
)

type ProjectRepository struct {
	DB *sql.DB
}

const projectColumns = `id, buyer_id, title, description, budget, currency, deadline, status, progress, selected_bid_id, reminder_sent, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.BuyerID, &p.Title, &p.Description, &p.Budget, &p.Currency,
		&p.Deadline, &p.Status, &p.Progress, &p.SelectedBidID, &p.ReminderSent,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *ProjectRepository) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	query := `INSERT INTO projects (buyer_id, title, description, budget, currency, deadline, status, progress, reminder_sent, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, 0, false, NOW())`
	result, err := r.DB.ExecContext(ctx, query, p.BuyerID, p.Title, p.Description, p.Budget, p.Currency, p.Deadline, fsm.StatusPending)
	if err != nil {
		return models.Project{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Project{}, err
	}
	p.ID = int(id)
	p.Status = fsm.StatusPending
	p.Progress = 0
	p.CreatedAt = time.Now()
	return p, nil
}

func (r *ProjectRepository) GetProjectByID(ctx context.Context, id int) (models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, models.ErrProjectNotFound
		}
		return models.Project{}, err
	}
	return p, nil
}

func (r *ProjectRepository) GetPendingProjects(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE status = ? ORDER BY created_at DESC`
	return r.queryProjects(ctx, query, fsm.StatusPending)
}

func (r *ProjectRepository) GetProjectsByBuyerID(ctx context.Context, buyerID int) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE buyer_id = ? ORDER BY created_at DESC`
	return r.queryProjects(ctx, query, buyerID)
}

// GetSelectedProjectsBySellerID returns projects whose selected bid belongs to the seller.
func (r *ProjectRepository) GetSelectedProjectsBySellerID(ctx context.Context, sellerID int) ([]models.Project, error) {
	query := `SELECT p.id, p.buyer_id, p.title, p.description, p.budget, p.currency, p.deadline,
                     p.status, p.progress, p.selected_bid_id, p.reminder_sent, p.created_at, p.updated_at
              FROM projects p
              JOIN bids b ON p.selected_bid_id = b.id
              WHERE b.seller_id = ?
              ORDER BY p.created_at DESC`
	return r.queryProjects(ctx, query, sellerID)
}

func (r *ProjectRepository) queryProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// SelectSeller sets the winning bid with a compare-and-set write: only a project
// still pending and without a selection matches, so of two concurrent selections
// exactly one wins and the loser gets ErrStatusConflict.
func (r *ProjectRepository) SelectSeller(ctx context.Context, projectID, bidID int) error {
	query := `UPDATE projects SET status = ?, selected_bid_id = ?, updated_at = NOW()
              WHERE id = ? AND status = ? AND selected_bid_id IS NULL`
	res, err := r.DB.ExecContext(ctx, query, fsm.StatusInProgress, bidID, projectID, fsm.StatusPending)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

// UnselectSeller resets the project to pending and clears the selection.
func (r *ProjectRepository) UnselectSeller(ctx context.Context, projectID int) error {
	query := `UPDATE projects SET status = ?, selected_bid_id = NULL, updated_at = NOW()
              WHERE id = ? AND status IN (?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, fsm.StatusPending, projectID,
		fsm.StatusInProgress, fsm.StatusInReview, fsm.StatusChangesRequested)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

// TransitionStatus performs a guarded status change from the observed status.
func (r *ProjectRepository) TransitionStatus(ctx context.Context, projectID int, fromStatus, toStatus string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, projectID, fromStatus, toStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrStatusConflict
		}
		return err
	}
	return tx.Commit()
}

// CancelProject moves any non-completed project to cancelled and clears the selection.
func (r *ProjectRepository) CancelProject(ctx context.Context, projectID int) error {
	query := `UPDATE projects SET status = ?, selected_bid_id = NULL, updated_at = NOW()
              WHERE id = ? AND status <> ?`
	res, err := r.DB.ExecContext(ctx, query, fsm.StatusCancelled, projectID, fsm.StatusCompleted)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrAlreadyCompleted
	}
	return nil
}

// UpdateProgress writes a progress value, only while the project is in progress.
func (r *ProjectRepository) UpdateProgress(ctx context.Context, projectID, progress int) error {
	query := `UPDATE projects SET progress = ?, updated_at = NOW() WHERE id = ? AND status = ?`
	res, err := r.DB.ExecContext(ctx, query, progress, projectID, fsm.StatusInProgress)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrInvalidStatus
	}
	return nil
}

// UpdateDetails applies a partial edit. A deadline change resets the reminder flag.
func (r *ProjectRepository) UpdateDetails(ctx context.Context, projectID int, update models.ProjectUpdate) error {
	sets := []string{}
	args := []any{}
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Deadline != nil {
		sets = append(sets, "deadline = ?", "reminder_sent = false")
		args = append(args, *update.Deadline)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, projectID)

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

// GetProjectsNeedingReminder returns active projects whose deadline falls within
// the window and which have not been reminded yet.
func (r *ProjectRepository) GetProjectsNeedingReminder(ctx context.Context, now time.Time, window time.Duration) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
              WHERE reminder_sent = false
                AND status NOT IN (?, ?)
                AND deadline BETWEEN ? AND ?`
	return r.queryProjects(ctx, query, fsm.StatusCompleted, fsm.StatusCancelled, now, now.Add(window))
}

func (r *ProjectRepository) MarkReminderSent(ctx context.Context, projectID int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE projects SET reminder_sent = true WHERE id = ?`, projectID)
	return err
}
