package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/statarena/server/internal/models"
)

// PurchaseTicket records an original (non resale) ticket sale for the caller
func (s *DefaultService) PurchaseTicket(
	ctx context.Context,
	userID int64,
	req models.PurchaseTicketRequest,
) (*models.PurchaseTicketResponse, error) {
	if req.UserID == 0 || req.MatchTitle == "" || req.Quantity <= 0 || !req.Price.IsPositive() {
		return nil, newError(KindValidation, "Missing required fields", nil)
	}
	if req.UserID != userID {
		return nil, newError(KindForbidden, "You can only purchase tickets for yourself", nil)
	}

	if !models.ValidPrice(req.Price) {
		return nil, newError(KindValidation, models.InvalidPriceMessage, nil)
	}

	total := req.Total
	if total.IsZero() {
		total = req.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
	}
	if !models.ValidPrice(total) {
		return nil, newError(KindValidation, models.InvalidPriceMessage, nil)
	}

	ticket := &models.UserTicket{
		UserID:     req.UserID,
		MatchTitle: req.MatchTitle,
		MatchDate:  req.MatchDate,
		Stadium:    req.Stadium,
		Category:   req.Category,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Total:      total,
	}

	if err := s.repo.CreateUserTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error purchasing ticket: %w", err)
	}

	return &models.PurchaseTicketResponse{
		Success:      true,
		Message:      "Ticket purchased successfully",
		UserTicketID: ticket.ID,
	}, nil
}

// GetUserTickets lists the tickets userID still holds
func (s *DefaultService) GetUserTickets(ctx context.Context, requesterID, userID int64) ([]models.UserTicket, error) {
	if requesterID != userID {
		return nil, newError(KindForbidden, "You can only view your own tickets", nil)
	}

	tickets, err := s.repo.GetUserTickets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user tickets: %w", err)
	}

	return tickets, nil
}
