package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"freelanceBack/internal/models"
)

type RatingRepository struct {
	DB *sql.DB
}

// CreateRating inserts the rating and recomputes the seller's average inside a
// single transaction. UNIQUE(project_id, buyer_id) enforces one rating per
// project; a duplicate-key error from a concurrent insert maps to
// models.ErrAlreadyRated just like the pre-check.
func (r *RatingRepository) CreateRating(ctx context.Context, rating models.Rating, users *UserRepository) (models.Rating, float64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Rating{}, 0, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM ratings WHERE project_id = ? AND buyer_id = ?`,
		rating.ProjectID, rating.BuyerID).Scan(&count); err != nil {
		return models.Rating{}, 0, err
	}
	if count > 0 {
		return models.Rating{}, 0, models.ErrAlreadyRated
	}

	query := `INSERT INTO ratings (project_id, buyer_id, seller_id, value, comment, created_at)
              VALUES (?, ?, ?, ?, ?, NOW())`
	result, err := tx.ExecContext(ctx, query, rating.ProjectID, rating.BuyerID, rating.SellerID, rating.Value, rating.Comment)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return models.Rating{}, 0, models.ErrAlreadyRated
		}
		return models.Rating{}, 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Rating{}, 0, err
	}
	rating.ID = int(id)
	rating.CreatedAt = time.Now()

	avg, err := users.RecalculateSellerRating(ctx, tx, rating.SellerID)
	if err != nil {
		return models.Rating{}, 0, err
	}
	if err := tx.Commit(); err != nil {
		return models.Rating{}, 0, err
	}
	return rating, avg, nil
}

func (r *RatingRepository) GetRatingsBySellerID(ctx context.Context, sellerID int) ([]models.Rating, error) {
	query := `SELECT id, project_id, buyer_id, seller_id, value, comment, created_at
              FROM ratings
              WHERE seller_id = ?
              ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []models.Rating{}
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(&rating.ID, &rating.ProjectID, &rating.BuyerID, &rating.SellerID,
			&rating.Value, &rating.Comment, &rating.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}
