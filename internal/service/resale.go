package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/statarena/server/internal/metrics"
	"github.com/statarena/server/internal/models"
	"github.com/statarena/server/internal/repository"
)

// ListTicketForResale opens a resale listing for one of the caller's tickets
func (s *DefaultService) ListTicketForResale(
	ctx context.Context,
	userID int64,
	req models.ListResaleRequest,
) (resp *models.ResaleListingResponse, err error) {
	defer s.track(metrics.OperationList, time.Now(), &err)

	if req.UserTicketID <= 0 || !req.ResalePrice.IsPositive() {
		return nil, newError(KindValidation, "Missing required fields", nil)
	}
	if !models.ValidPrice(req.ResalePrice) {
		return nil, newError(KindValidation, models.InvalidPriceMessage, nil)
	}

	listing := &models.ResaleTicket{
		UserTicketID: req.UserTicketID,
		ResalePrice:  req.ResalePrice,
		Notes:        normalizeNotes(req.Notes),
	}

	if err := s.repo.CreateResaleListing(ctx, userID, listing); err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketNotFound):
			return nil, newError(KindNotFound, "Ticket not found", err)
		case errors.Is(err, repository.ErrNotTicketOwner):
			return nil, newError(KindForbidden, "You can only resell your own tickets", err)
		case errors.Is(err, repository.ErrTicketAlreadyListed):
			return nil, newError(KindConflict, "Ticket is already listed for resale", err)
		case errors.Is(err, repository.ErrTicketResold):
			return nil, newError(KindConflict, "Ticket has already been resold", err)
		}
		return nil, fmt.Errorf("error listing ticket for resale: %w", err)
	}

	return &models.ResaleListingResponse{
		Success:  true,
		Message:  "Ticket listed for resale successfully",
		ResaleID: listing.ID,
	}, nil
}

// PurchaseResaleTicket buys an available listing on behalf of the caller
func (s *DefaultService) PurchaseResaleTicket(
	ctx context.Context,
	userID int64,
	resaleID int64,
	req models.PurchaseResaleRequest,
) (resp *models.ResalePurchaseResponse, err error) {
	defer s.track(metrics.OperationPurchase, time.Now(), &err)

	if req.BuyerID <= 0 {
		return nil, newError(KindValidation, "Buyer ID is required", nil)
	}
	if req.BuyerID != userID {
		return nil, newError(KindForbidden, "You can only purchase tickets for yourself", nil)
	}

	ticket, err := s.repo.PurchaseResaleListing(ctx, resaleID, req.BuyerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrListingNotFound), errors.Is(err, repository.ErrListingUnavailable):
			return nil, newError(KindNotFound, "Resale ticket not found or already sold", err)
		case errors.Is(err, repository.ErrSelfPurchase):
			return nil, newError(KindConflict, "You cannot buy your own resale listing", err)
		}
		return nil, fmt.Errorf("error purchasing resale ticket: %w", err)
	}

	return &models.ResalePurchaseResponse{
		Success:      true,
		Message:      "Resale ticket purchased successfully",
		UserTicketID: ticket.ID,
	}, nil
}

// CancelResaleListing withdraws one of the caller's available listings
func (s *DefaultService) CancelResaleListing(
	ctx context.Context,
	userID int64,
	resaleID int64,
) (resp *models.SuccessResponse, err error) {
	defer s.track(metrics.OperationCancel, time.Now(), &err)

	if _, err := s.repo.CancelResaleListing(ctx, resaleID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrListingNotFound), errors.Is(err, repository.ErrListingUnavailable):
			return nil, newError(KindNotFound, "Resale listing not found or already sold", err)
		case errors.Is(err, repository.ErrNotListingSeller):
			return nil, newError(KindForbidden, "You can only cancel your own listings", err)
		}
		return nil, fmt.Errorf("error cancelling resale listing: %w", err)
	}

	return &models.SuccessResponse{
		Success: true,
		Message: "Resale listing cancelled successfully",
	}, nil
}

func (s *DefaultService) GetResaleTickets(ctx context.Context) ([]models.ResaleTicketView, error) {
	tickets, err := s.repo.GetAvailableResaleTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting resale tickets: %w", err)
	}
	return tickets, nil
}

func (s *DefaultService) GetResaleTicket(ctx context.Context, resaleID int64) (*models.ResaleTicketView, error) {
	ticket, err := s.repo.GetResaleListing(ctx, resaleID)
	if err != nil {
		return nil, fmt.Errorf("error getting resale ticket: %w", err)
	}
	if ticket == nil {
		return nil, newError(KindNotFound, "Resale listing not found", nil)
	}
	return ticket, nil
}

func (s *DefaultService) track(operation string, start time.Time, errp *error) {
	s.metrics.TrackResaleOperation(operation, outcome(*errp), time.Since(start))
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch KindOf(err) {
	case KindValidation:
		return metrics.OutcomeInvalid
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "error"
	}
}

// normalizeNotes stores blank notes as NULL
func normalizeNotes(notes *string) *string {
	if notes == nil || *notes == "" {
		return nil
	}
	return notes
}
