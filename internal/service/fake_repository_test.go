package service

import (
	"context"
	"sync"
	"time"

	"github.com/statarena/server/internal/models"
	"github.com/statarena/server/internal/repository"
)

// fakeRepository is an in-memory Repository. A single mutex stands in for the
// row locks the postgres implementation takes inside each transaction.
type fakeRepository struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	tickets  map[int64]*models.UserTicket
	listings map[int64]*models.ResaleTicket
	nextID   int64
	failWith error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:    map[int64]*models.User{},
		tickets:  map[int64]*models.UserTicket{},
		listings: map[int64]*models.ResaleTicket{},
	}
}

func (f *fakeRepository) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.id()
	user.IsActive = true
	user.CreatedAt = time.Now().UTC()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepository) UpdateLastLogin(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	if u, ok := f.users[id]; ok {
		u.LastLogin = &now
	}
	return nil
}

func (f *fakeRepository) CreateUserTicket(_ context.Context, ticket *models.UserTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	ticket.ID = f.id()
	ticket.PurchaseDate = time.Now().UTC()
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeRepository) GetUserTicket(_ context.Context, id int64) (*models.UserTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tickets[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepository) GetUserTickets(_ context.Context, userID int64) ([]models.UserTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tickets := []models.UserTicket{}
	for _, t := range f.tickets {
		if t.UserID == userID && !t.ListedForResale && !f.resoldLocked(t.ID) {
			tickets = append(tickets, *t)
		}
	}
	return tickets, nil
}

func (f *fakeRepository) resoldLocked(ticketID int64) bool {
	for _, l := range f.listings {
		if l.UserTicketID == ticketID && l.Status == models.ResaleStatusSold {
			return true
		}
	}
	return false
}

func (f *fakeRepository) CreateResaleListing(_ context.Context, requesterID int64, listing *models.ResaleTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}

	ticket, ok := f.tickets[listing.UserTicketID]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if ticket.UserID != requesterID {
		return repository.ErrNotTicketOwner
	}
	if f.resoldLocked(ticket.ID) {
		return repository.ErrTicketResold
	}
	if ticket.ListedForResale {
		return repository.ErrTicketAlreadyListed
	}

	listing.ID = f.id()
	listing.SellerID = ticket.UserID
	listing.Status = models.ResaleStatusAvailable
	listing.ListedDate = time.Now().UTC()
	copied := *listing
	f.listings[listing.ID] = &copied
	ticket.ListedForResale = true
	return nil
}

func (f *fakeRepository) PurchaseResaleListing(_ context.Context, resaleID, buyerID int64) (*models.UserTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	listing, ok := f.listings[resaleID]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	if listing.Status != models.ResaleStatusAvailable {
		return nil, repository.ErrListingUnavailable
	}
	if listing.SellerID == buyerID {
		return nil, repository.ErrSelfPurchase
	}

	origin := f.tickets[listing.UserTicketID]
	now := time.Now().UTC()
	bought := &models.UserTicket{
		ID:           f.id(),
		UserID:       buyerID,
		MatchTitle:   origin.MatchTitle,
		MatchDate:    origin.MatchDate,
		Stadium:      origin.Stadium,
		Category:     origin.Category,
		Quantity:     origin.Quantity,
		Price:        listing.ResalePrice,
		Total:        listing.ResalePrice,
		PurchaseDate: now,
	}
	copied := *bought
	f.tickets[bought.ID] = &copied

	listing.Status = models.ResaleStatusSold
	listing.BuyerID = &buyerID
	listing.SoldDate = &now
	origin.ListedForResale = false
	return bought, nil
}

func (f *fakeRepository) CancelResaleListing(_ context.Context, resaleID, sellerID int64) (*models.ResaleTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	listing, ok := f.listings[resaleID]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	if listing.Status != models.ResaleStatusAvailable {
		return nil, repository.ErrListingUnavailable
	}
	if listing.SellerID != sellerID {
		return nil, repository.ErrNotListingSeller
	}

	now := time.Now().UTC()
	listing.Status = models.ResaleStatusCancelled
	listing.CancelledDate = &now
	f.tickets[listing.UserTicketID].ListedForResale = false
	copied := *listing
	return &copied, nil
}

func (f *fakeRepository) GetResaleListing(_ context.Context, resaleID int64) (*models.ResaleTicketView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing, ok := f.listings[resaleID]
	if !ok {
		return nil, nil
	}
	return f.viewLocked(listing), nil
}

func (f *fakeRepository) GetAvailableResaleTickets(_ context.Context) ([]models.ResaleTicketView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	views := []models.ResaleTicketView{}
	for _, l := range f.listings {
		if l.Status == models.ResaleStatusAvailable {
			views = append(views, *f.viewLocked(l))
		}
	}
	return views, nil
}

func (f *fakeRepository) viewLocked(l *models.ResaleTicket) *models.ResaleTicketView {
	t := f.tickets[l.UserTicketID]
	view := &models.ResaleTicketView{
		ResaleTicket:  *l,
		MatchTitle:    t.MatchTitle,
		MatchDate:     t.MatchDate,
		Stadium:       t.Stadium,
		Category:      t.Category,
		Quantity:      t.Quantity,
		OriginalPrice: t.Price,
	}
	if u, ok := f.users[l.SellerID]; ok {
		view.SellerName = u.Name
	}
	return view
}

// availableCount returns how many available listings reference ticketID
func (f *fakeRepository) availableCount(ticketID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.listings {
		if l.UserTicketID == ticketID && l.Status == models.ResaleStatusAvailable {
			n++
		}
	}
	return n
}

func (f *fakeRepository) ticketsOf(userID int64) []models.UserTicket {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tickets []models.UserTicket
	for _, t := range f.tickets {
		if t.UserID == userID {
			tickets = append(tickets, *t)
		}
	}
	return tickets
}
