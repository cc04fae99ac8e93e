package repositories

import (
	"context"
	"database/sql"
	"errors"

	"freelanceBack/internal/fsm"
	"freelanceBack/internal/models"
)

type DeliverableRepository struct {
	DB *sql.DB
}

// SaveAndMarkInReview upserts the single deliverable row for the project and
// moves the project to in_review in the same transaction. forceProgress is set
// on the first upload so the progress jumps to 100 together with the status; a
// re-upload leaves progress alone since it is already 100.
func (r *DeliverableRepository) SaveAndMarkInReview(ctx context.Context, d models.Deliverable, fromStatus string, forceProgress bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := `INSERT INTO deliverables (project_id, file_url, file_name, uploaded_at)
               VALUES (?, ?, ?, NOW())
               ON DUPLICATE KEY UPDATE file_url = VALUES(file_url), file_name = VALUES(file_name), uploaded_at = NOW()`
	if _, err := tx.ExecContext(ctx, upsert, d.ProjectID, d.FileURL, d.FileName); err != nil {
		return err
	}

	if fromStatus != fsm.StatusInReview {
		if err := fsm.Apply(ctx, tx, d.ProjectID, fromStatus, fsm.StatusInReview); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrStatusConflict
			}
			return err
		}
	}
	if forceProgress {
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET progress = 100 WHERE id = ?`, d.ProjectID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *DeliverableRepository) GetByProjectID(ctx context.Context, projectID int) (models.Deliverable, error) {
	var d models.Deliverable
	query := `SELECT id, project_id, file_url, file_name, uploaded_at FROM deliverables WHERE project_id = ?`
	err := r.DB.QueryRowContext(ctx, query, projectID).Scan(&d.ID, &d.ProjectID, &d.FileURL, &d.FileName, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Deliverable{}, models.ErrDeliverableNotFound
		}
		return models.Deliverable{}, err
	}
	return d, nil
}
