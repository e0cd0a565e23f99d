package api_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/statarena/server/internal/models"
	"github.com/statarena/server/internal/service"
)

// fakeService keeps just enough resale state to drive the HTTP layer
type fakeService struct {
	mu       sync.Mutex
	owners   map[int64]int64 // user_ticket_id -> owner
	listings map[int64]*models.ResaleTicketView
	nextID   int64
	err      error
}

func newFakeService() *fakeService {
	return &fakeService{
		owners:   map[int64]int64{},
		listings: map[int64]*models.ResaleTicketView{},
		nextID:   100,
	}
}

func svcErr(kind service.Kind, message string) error {
	return &service.Error{Kind: kind, Message: message}
}

func (f *fakeService) SignUp(_ context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AuthResponse{Success: true, Message: "Registration successful", UserID: 1}, nil
}

func (f *fakeService) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, svcErr(service.KindUnauthorized, "Invalid email or password")
}

func (f *fakeService) PurchaseTicket(_ context.Context, userID int64, req models.PurchaseTicketRequest) (*models.PurchaseTicketResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	f.owners[f.nextID] = userID
	return &models.PurchaseTicketResponse{Success: true, Message: "Ticket purchased successfully", UserTicketID: f.nextID}, nil
}

func (f *fakeService) GetUserTickets(_ context.Context, requesterID, userID int64) ([]models.UserTicket, error) {
	if requesterID != userID {
		return nil, svcErr(service.KindForbidden, "You can only view your own tickets")
	}
	return []models.UserTicket{}, nil
}

func (f *fakeService) ListTicketForResale(_ context.Context, userID int64, req models.ListResaleRequest) (*models.ResaleListingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	owner, ok := f.owners[req.UserTicketID]
	if !ok {
		return nil, svcErr(service.KindNotFound, "Ticket not found")
	}
	if owner != userID {
		return nil, svcErr(service.KindForbidden, "You can only resell your own tickets")
	}
	for _, l := range f.listings {
		if l.UserTicketID == req.UserTicketID && l.Status == models.ResaleStatusAvailable {
			return nil, svcErr(service.KindConflict, "Ticket is already listed for resale")
		}
	}

	f.nextID++
	f.listings[f.nextID] = &models.ResaleTicketView{
		ResaleTicket: models.ResaleTicket{
			ID:           f.nextID,
			UserTicketID: req.UserTicketID,
			SellerID:     userID,
			ResalePrice:  req.ResalePrice,
			Notes:        req.Notes,
			Status:       models.ResaleStatusAvailable,
			ListedDate:   time.Now().UTC(),
		},
		MatchTitle:    "Arsenal vs Chelsea",
		MatchDate:     "2025-05-01",
		Quantity:      1,
		OriginalPrice: decimal.RequireFromString("120.00"),
	}
	return &models.ResaleListingResponse{
		Success:  true,
		Message:  "Ticket listed for resale successfully",
		ResaleID: f.nextID,
	}, nil
}

func (f *fakeService) PurchaseResaleTicket(_ context.Context, userID, resaleID int64, req models.PurchaseResaleRequest) (*models.ResalePurchaseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if req.BuyerID != userID {
		return nil, svcErr(service.KindForbidden, "You can only purchase tickets for yourself")
	}

	listing, ok := f.listings[resaleID]
	if !ok || listing.Status != models.ResaleStatusAvailable {
		return nil, svcErr(service.KindNotFound, "Resale ticket not found or already sold")
	}
	if listing.SellerID == userID {
		return nil, svcErr(service.KindConflict, "You cannot buy your own resale listing")
	}

	now := time.Now().UTC()
	listing.Status = models.ResaleStatusSold
	listing.BuyerID = &userID
	listing.SoldDate = &now
	f.nextID++
	f.owners[f.nextID] = userID
	return &models.ResalePurchaseResponse{
		Success:      true,
		Message:      "Resale ticket purchased successfully",
		UserTicketID: f.nextID,
	}, nil
}

func (f *fakeService) CancelResaleListing(_ context.Context, userID, resaleID int64) (*models.SuccessResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	listing, ok := f.listings[resaleID]
	if !ok || listing.Status != models.ResaleStatusAvailable {
		return nil, svcErr(service.KindNotFound, "Resale listing not found or already sold")
	}
	if listing.SellerID != userID {
		return nil, svcErr(service.KindForbidden, "You can only cancel your own listings")
	}

	now := time.Now().UTC()
	listing.Status = models.ResaleStatusCancelled
	listing.CancelledDate = &now
	return &models.SuccessResponse{Success: true, Message: "Resale listing cancelled successfully"}, nil
}

func (f *fakeService) GetResaleTickets(_ context.Context) ([]models.ResaleTicketView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	views := []models.ResaleTicketView{}
	for _, l := range f.listings {
		if l.Status == models.ResaleStatusAvailable {
			views = append(views, *l)
		}
	}
	return views, nil
}

func (f *fakeService) GetResaleTicket(_ context.Context, resaleID int64) (*models.ResaleTicketView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing, ok := f.listings[resaleID]
	if !ok {
		return nil, svcErr(service.KindNotFound, "Resale listing not found")
	}
	copied := *listing
	return &copied, nil
}

// seedListing stores a listing in the given state, bypassing validation
func (f *fakeService) seedListing(id, ticketID, sellerID int64, status models.ResaleStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners[ticketID] = sellerID
	f.listings[id] = &models.ResaleTicketView{
		ResaleTicket: models.ResaleTicket{
			ID:           id,
			UserTicketID: ticketID,
			SellerID:     sellerID,
			ResalePrice:  decimal.RequireFromString("80.00"),
			Status:       status,
			ListedDate:   time.Now().UTC(),
		},
	}
}
