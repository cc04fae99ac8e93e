package services

import (
	"context"
	"strings"

	"freelanceBack/internal/fsm"
	"freelanceBack/internal/models"
	"freelanceBack/internal/repositories"
)

type BidService struct {
	BidRepo     *repositories.BidRepository
	ProjectRepo *repositories.ProjectRepository
}

// PlaceBid records a seller's offer. Bids stay open until the project
// reaches a terminal status, so sellers can still bid on projects whose
// selection was dropped back to pending.
func (s *BidService) PlaceBid(ctx context.Context, sellerID int, bid models.Bid) (models.Bid, error) {
	if bid.Amount <= 0 || bid.DurationDays <= 0 {
		return models.Bid{}, models.ErrInvalidStatus
	}

	project, err := s.ProjectRepo.GetProjectByID(ctx, bid.ProjectID)
	if err != nil {
		return models.Bid{}, err
	}
	if fsm.Terminal(project.Status) {
		return models.Bid{}, models.ErrInvalidStatus
	}
	if project.BuyerID == sellerID {
		return models.Bid{}, models.ErrOwnProjectBid
	}

	bid.SellerID = sellerID
	bid.Message = strings.TrimSpace(bid.Message)
	return s.BidRepo.CreateBid(ctx, bid)
}

func (s *BidService) GetBidsByProjectID(ctx context.Context, projectID int) ([]models.Bid, error) {
	if _, err := s.ProjectRepo.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.BidRepo.GetBidsByProjectID(ctx, projectID)
}

func (s *BidService) GetBidsBySellerID(ctx context.Context, sellerID int) ([]models.Bid, error) {
	return s.BidRepo.GetBidsBySellerID(ctx, sellerID)
}

func (s *BidService) GetBidByID(ctx context.Context, id int) (models.Bid, error) {
	return s.BidRepo.GetBidByID(ctx, id)
}
