package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers (150.5, not "150.5"); the front-end does arithmetic on them.
	decimal.MarshalJSONWithoutQuotes = true
}

// User represents a registered StatArena account
type User struct {
	ID        int64      `db:"user_id" json:"user_id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Password  string     `db:"password" json:"-"` // Password hash, not returned in JSON
	Role      string     `db:"role" json:"role"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	LastLogin *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// UserTicket is a ticket owned by a user. The match fields are a snapshot taken at purchase time.
type UserTicket struct {
	ID              int64           `db:"user_ticket_id" json:"user_ticket_id"`
	UserID          int64           `db:"user_id" json:"user_id"`
	MatchTitle      string          `db:"match_title" json:"match_title"`
	MatchDate       string          `db:"match_date" json:"match_date"`
	Stadium         string          `db:"stadium" json:"stadium"`
	Category        string          `db:"category" json:"category"`
	Quantity        int             `db:"quantity" json:"quantity"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PurchaseDate    time.Time       `db:"purchase_date" json:"purchase_date"`
	ListedForResale bool            `db:"listed_for_resale" json:"listed_for_resale"`
}

// ResaleTicket is an offer to resell a UserTicket.
// BuyerID and SoldDate are only set once sold, CancelledDate only once cancelled.
type ResaleTicket struct {
	ID            int64           `db:"resale_id" json:"resale_id"`
	UserTicketID  int64           `db:"user_ticket_id" json:"user_ticket_id"`
	SellerID      int64           `db:"seller_id" json:"seller_id"`
	ResalePrice   decimal.Decimal `db:"resale_price" json:"resale_price"`
	Notes         *string         `db:"notes" json:"notes"`
	Status        ResaleStatus    `db:"status" json:"status"`
	ListedDate    time.Time       `db:"listed_date" json:"listed_date"`
	BuyerID       *int64          `db:"buyer_id" json:"buyer_id"`
	SoldDate      *time.Time      `db:"sold_date" json:"sold_date"`
	CancelledDate *time.Time      `db:"cancelled_date" json:"cancelled_date"`
}

// ResaleTicketView is a listing joined with the owned ticket terms and the seller's display name
type ResaleTicketView struct {
	ResaleTicket
	MatchTitle    string          `db:"match_title" json:"match_title"`
	MatchDate     string          `db:"match_date" json:"match_date"`
	Stadium       string          `db:"stadium" json:"stadium"`
	Category      string          `db:"category" json:"category"`
	Quantity      int             `db:"quantity" json:"quantity"`
	OriginalPrice decimal.Decimal `db:"original_price" json:"original_price"`
	SellerName    string          `db:"seller_name" json:"seller_name"`
}
