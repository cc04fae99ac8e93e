package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"freelanceBack/internal/fsm"
	"freelanceBack/internal/models"
	"freelanceBack/internal/repositories"
)

const notifyTimeout = 5 * time.Second

// Notifier delivers out-of-band notifications about lifecycle changes.
type Notifier interface {
	Send(to, subject, body string) error
}

type ProjectService struct {
	ProjectRepo     *repositories.ProjectRepository
	BidRepo         *repositories.BidRepository
	DeliverableRepo *repositories.DeliverableRepository
	RatingRepo      *repositories.RatingRepository
	UserRepo        *repositories.UserRepository
	Mailer          Notifier
	ErrorLog        *log.Logger
}

func (s *ProjectService) CreateProject(ctx context.Context, buyerID int, project models.Project) (models.Project, error) {
	project.Title = strings.TrimSpace(project.Title)
	if project.Title == "" || project.Budget <= 0 || project.Deadline.IsZero() {
		return models.Project{}, models.ErrInvalidStatus
	}
	if project.Currency == "" {
		project.Currency = "USD"
	}
	project.BuyerID = buyerID
	return s.ProjectRepo.CreateProject(ctx, project)
}

func (s *ProjectService) GetProjectByID(ctx context.Context, id int) (models.Project, error) {
	return s.ProjectRepo.GetProjectByID(ctx, id)
}

func (s *ProjectService) GetPendingProjects(ctx context.Context) ([]models.Project, error) {
	return s.ProjectRepo.GetPendingProjects(ctx)
}

func (s *ProjectService) GetProjectsByBuyerID(ctx context.Context, buyerID int) ([]models.Project, error) {
	return s.ProjectRepo.GetProjectsByBuyerID(ctx, buyerID)
}

func (s *ProjectService) GetSelectedProjectsBySellerID(ctx context.Context, sellerID int) ([]models.Project, error) {
	return s.ProjectRepo.GetSelectedProjectsBySellerID(ctx, sellerID)
}

// SelectSeller accepts a bid and moves the project into in_progress. The
// repository write is conditional on the project still being pending with no
// selection, so concurrent accepts end with exactly one winner.
func (s *ProjectService) SelectSeller(ctx context.Context, callerID, projectID, bidID int) (models.Project, error) {
	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if project.BuyerID != callerID {
		return models.Project{}, models.ErrNotProjectOwner
	}
	if project.Status != fsm.StatusPending {
		return models.Project{}, models.ErrInvalidStatus
	}

	bid, err := s.BidRepo.GetBidByID(ctx, bidID)
	if err != nil {
		return models.Project{}, err
	}
	if bid.ProjectID != projectID {
		return models.Project{}, models.ErrBidProjectMismatch
	}

	if err := s.ProjectRepo.SelectSeller(ctx, projectID, bidID); err != nil {
		return models.Project{}, err
	}

	s.notifyUser(bid.SellerID, "Your bid was accepted",
		fmt.Sprintf("Your bid on %q was accepted. The project is now in progress.", project.Title))

	return s.ProjectRepo.GetProjectByID(ctx, projectID)
}

// UnselectSeller drops the current selection and returns the project to
// pending. Allowed while work is underway but not once the project reached a
// terminal status.
func (s *ProjectService) UnselectSeller(ctx context.Context, callerID, projectID int) (models.Project, error) {
	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if project.BuyerID != callerID {
		return models.Project{}, models.ErrNotProjectOwner
	}
	if project.SelectedBidID == nil {
		return models.Project{}, models.ErrNoSelectedSeller
	}
	if fsm.Terminal(project.Status) {
		return models.Project{}, models.ErrInvalidStatus
	}

	sellerID, _ := s.selectedSellerID(ctx, project)

	if err := s.ProjectRepo.UnselectSeller(ctx, projectID); err != nil {
		return models.Project{}, err
	}

	if sellerID != 0 {
		s.notifyUser(sellerID, "You were unselected from a project",
			fmt.Sprintf("The buyer reopened %q to new bids.", project.Title))
	}

	return s.ProjectRepo.GetProjectByID(ctx, projectID)
}

// UploadDeliverable stores the work product and moves the project to
// in_review. Re-uploading while already in review replaces the file without
// touching the status.
func (s *ProjectService) UploadDeliverable(ctx context.Context, callerID, projectID int, fileURL, fileName string) (models.Project, error) {
	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}

	sellerID, err := s.selectedSellerID(ctx, project)
	if err != nil {
		return models.Project{}, err
	}
	if sellerID != callerID {
		return models.Project{}, models.ErrNotSelectedSeller
	}

	switch project.Status {
	case fsm.StatusInProgress, fsm.StatusChangesRequested, fsm.StatusInReview:
	default:
		return models.Project{}, models.ErrInvalidStatus
	}

	d := models.Deliverable{
		ProjectID: projectID,
		FileURL:   fileURL,
		FileName:  fileName,
	}
	if err := s.DeliverableRepo.SaveAndMarkInReview(ctx, d, project.Status, true); err != nil {
		return models.Project{}, err
	}

	s.notifyUser(project.BuyerID, "Work submitted for review",
		fmt.Sprintf("The seller submitted work on %q. Please review it.", project.Title))

	return s.ProjectRepo.GetProjectByID(ctx, projectID)
}

func (s *ProjectService) GetDeliverable(ctx context.Context, projectID int) (models.Deliverable, error) {
	if _, err := s.ProjectRepo.GetProjectByID(ctx, projectID); err != nil {
		return models.Deliverable{}, err
	}
	return s.DeliverableRepo.GetByProjectID(ctx, projectID)
}

func (s *ProjectService) RequestChanges(ctx context.Context, callerID, projectID int) (models.Project, error) {
	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if project.BuyerID != callerID {
		return models.Project{}, models.ErrNotProjectOwner
	}
	if project.Status != fsm.StatusInReview {
		return models.Project{}, models.ErrInvalidStatus
	}

	if err := s.ProjectRepo.TransitionStatus(ctx, projectID, fsm.StatusInReview, fsm.StatusChangesRequested); err != nil {
		return models.Project{}, err
	}

	if sellerID, err := s.selectedSellerID(ctx, project); err == nil && sellerID != 0 {
		s.notifyUser(sellerID, "Changes requested",
			fmt.Sprintf("The buyer requested changes on %q.", project.Title))
	}

	return s.ProjectRepo.GetProjectByID(ctx, projectID)
}

func (s *ProjectService) CompleteProject(ctx context.Context, callerID, projectID int) (models.Project, error) {
	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if project.BuyerID != callerID {
		return models.Project{}, models.ErrNotProjectOwner
	}
	if project.SelectedBidID == nil {
		return models.Project{}, models.ErrNoSelectedSeller
	}
	if !fsm.CanTransition(project.Status, fsm.StatusCompleted) || project.Status == fsm.StatusCompleted {
		return models.Project{}, models.ErrInvalidStatus
	}

	if err := s.ProjectRepo.TransitionStatus(ctx, projectID, project.Status, fsm.StatusCompleted); err != nil {
		return models.Project{}, err
	}

	if sellerID, err := s.selectedSellerID(ctx, project); err == nil && sellerID != 0 {
		s.notifyUser(sellerID, "Project completed",
			fmt.Sprintf("The buyer accepted your work on %q.", project.Title))
	}
	s.notifyUser(project.BuyerID, "Project completed",
		fmt.Sprintf("You marked %q as completed.", project.Title))

	return s.ProjectRepo.GetProjectByID(ctx, projectID)
}

func (s *ProjectService) CancelProject(ctx context.Context, callerID, projectID int) (models.Project, error) {
	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if project.BuyerID != callerID {
		return models.Project{}, models.ErrNotProjectOwner
	}
	if project.Status == fsm.StatusCompleted {
		return models.Project{}, models.ErrAlreadyCompleted
	}

	sellerID, _ := s.selectedSellerID(ctx, project)

	if err := s.ProjectRepo.CancelProject(ctx, projectID); err != nil {
		return models.Project{}, err
	}

	if sellerID != 0 {
		s.notifyUser(sellerID, "Project cancelled",
			fmt.Sprintf("The buyer cancelled %q.", project.Title))
	}
	s.notifyUser(project.BuyerID, "Project cancelled",
		fmt.Sprintf("You cancelled %q.", project.Title))

	return s.ProjectRepo.GetProjectByID(ctx, projectID)
}

// UpdateProgress records seller-reported progress. Only the selected seller
// may report, only while the project is in progress, and 100 is reserved for
// the deliverable upload.
func (s *ProjectService) UpdateProgress(ctx context.Context, callerID, projectID, progress int) (models.Project, error) {
	if progress < 0 || progress > 99 {
		return models.Project{}, models.ErrProgressOutOfRange
	}

	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}

	sellerID, err := s.selectedSellerID(ctx, project)
	if err != nil {
		return models.Project{}, err
	}
	if sellerID != callerID {
		return models.Project{}, models.ErrNotSelectedSeller
	}
	if project.Status != fsm.StatusInProgress {
		return models.Project{}, models.ErrInvalidStatus
	}

	if err := s.ProjectRepo.UpdateProgress(ctx, projectID, progress); err != nil {
		return models.Project{}, err
	}

	return s.ProjectRepo.GetProjectByID(ctx, projectID)
}

// UpdateDetails applies a partial edit. Submitting no changes, or values
// identical to the stored ones, succeeds without a write.
func (s *ProjectService) UpdateDetails(ctx context.Context, callerID, projectID int, update models.ProjectUpdate) (models.Project, error) {
	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if project.BuyerID != callerID {
		return models.Project{}, models.ErrNotProjectOwner
	}
	if fsm.Terminal(project.Status) {
		return models.Project{}, models.ErrInvalidStatus
	}

	if update.Title != nil && *update.Title == project.Title {
		update.Title = nil
	}
	if update.Description != nil && *update.Description == project.Description {
		update.Description = nil
	}
	if update.Deadline != nil && update.Deadline.Equal(project.Deadline) {
		update.Deadline = nil
	}
	if update.Empty() {
		return project, nil
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return models.Project{}, models.ErrInvalidStatus
	}

	if err := s.ProjectRepo.UpdateDetails(ctx, projectID, update); err != nil {
		return models.Project{}, err
	}

	if project.Status == fsm.StatusInProgress {
		if sellerID, err := s.selectedSellerID(ctx, project); err == nil && sellerID != 0 {
			s.notifyUser(sellerID, "Project details changed",
				fmt.Sprintf("The buyer updated the details of %q.", project.Title))
		}
	}

	return s.ProjectRepo.GetProjectByID(ctx, projectID)
}

// RateSeller records the buyer's one rating for a completed project and
// refreshes the seller's average.
func (s *ProjectService) RateSeller(ctx context.Context, callerID, projectID, value int, comment string) (models.Rating, float64, error) {
	if value < 1 || value > 5 {
		return models.Rating{}, 0, models.ErrRatingOutOfRange
	}

	project, err := s.ProjectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return models.Rating{}, 0, err
	}
	if project.BuyerID != callerID {
		return models.Rating{}, 0, models.ErrNotProjectOwner
	}
	if project.Status != fsm.StatusCompleted {
		return models.Rating{}, 0, models.ErrInvalidStatus
	}

	sellerID, err := s.selectedSellerID(ctx, project)
	if err != nil {
		return models.Rating{}, 0, err
	}

	rating := models.Rating{
		ProjectID: projectID,
		BuyerID:   callerID,
		SellerID:  sellerID,
		Value:     value,
		Comment:   comment,
	}
	return s.RatingRepo.CreateRating(ctx, rating, s.UserRepo)
}

func (s *ProjectService) GetSellerRatings(ctx context.Context, sellerID int) ([]models.Rating, error) {
	return s.RatingRepo.GetRatingsBySellerID(ctx, sellerID)
}

func (s *ProjectService) selectedSellerID(ctx context.Context, project models.Project) (int, error) {
	if project.SelectedBidID == nil {
		return 0, models.ErrNoSelectedSeller
	}
	bid, err := s.BidRepo.GetBidByID(ctx, *project.SelectedBidID)
	if err != nil {
		return 0, err
	}
	return bid.SellerID, nil
}

// notifyUser emails the user in the background. Delivery failures are logged
// and never fail the request.
func (s *ProjectService) notifyUser(userID int, subject, body string) {
	if s.Mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		user, err := s.UserRepo.GetUserByID(ctx, userID)
		if err != nil {
			s.logf("notify user %d: %v", userID, err)
			return
		}
		if err := s.Mailer.Send(user.Email, subject, body); err != nil {
			s.logf("notify user %d: %v", userID, err)
		}
	}()
}

func (s *ProjectService) logf(format string, args ...any) {
	if s.ErrorLog != nil {
		s.ErrorLog.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
