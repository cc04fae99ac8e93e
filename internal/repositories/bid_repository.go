package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"freelanceBack/internal/models"
)

type BidRepository struct {
	DB *sql.DB
}

func (r *BidRepository) CreateBid(ctx context.Context, bid models.Bid) (models.Bid, error) {
	query := `INSERT INTO bids (project_id, seller_id, amount, duration_days, message, created_at)
              VALUES (?, ?, ?, ?, ?, NOW())`
	result, err := r.DB.ExecContext(ctx, query, bid.ProjectID, bid.SellerID, bid.Amount, bid.DurationDays, bid.Message)
	if err != nil {
		return models.Bid{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Bid{}, err
	}
	bid.ID = int(id)
	bid.CreatedAt = time.Now()
	return bid, nil
}

func (r *BidRepository) GetBidByID(ctx context.Context, id int) (models.Bid, error) {
	var bid models.Bid
	query := `SELECT id, project_id, seller_id, amount, duration_days, message, created_at FROM bids WHERE id = ?`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&bid.ID, &bid.ProjectID, &bid.SellerID, &bid.Amount, &bid.DurationDays, &bid.Message, &bid.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bid{}, models.ErrBidNotFound
		}
		return models.Bid{}, err
	}
	return bid, nil
}

func (r *BidRepository) GetBidsByProjectID(ctx context.Context, projectID int) ([]models.Bid, error) {
	query := `SELECT b.id, b.project_id, b.seller_id, b.amount, b.duration_days, b.message, b.created_at,
                     u.name, u.rating
              FROM bids b
              JOIN users u ON b.seller_id = u.id
              WHERE b.project_id = ?
              ORDER BY b.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := []models.Bid{}
	for rows.Next() {
		var bid models.Bid
		if err := rows.Scan(&bid.ID, &bid.ProjectID, &bid.SellerID, &bid.Amount, &bid.DurationDays,
			&bid.Message, &bid.CreatedAt, &bid.SellerName, &bid.SellerRating); err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

func (r *BidRepository) GetBidsBySellerID(ctx context.Context, sellerID int) ([]models.Bid, error) {
	query := `SELECT id, project_id, seller_id, amount, duration_days, message, created_at
              FROM bids
              WHERE seller_id = ?
              ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := []models.Bid{}
	for rows.Next() {
		var bid models.Bid
		if err := rows.Scan(&bid.ID, &bid.ProjectID, &bid.SellerID, &bid.Amount, &bid.DurationDays,
			&bid.Message, &bid.CreatedAt); err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}
