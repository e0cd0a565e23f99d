package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/statarena/server/internal/models"
)

var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrNotTicketOwner      = errors.New("ticket belongs to another user")
	ErrTicketAlreadyListed = errors.New("ticket already has an active resale listing")
	ErrTicketResold        = errors.New("ticket has already been resold")
	ErrListingNotFound     = errors.New("resale listing not found")
	ErrListingUnavailable  = errors.New("resale listing is no longer available")
	ErrNotListingSeller    = errors.New("resale listing belongs to another seller")
	ErrSelfPurchase        = errors.New("seller cannot buy their own listing")
)

// pqUniqueViolation is the SQLSTATE postgres raises for a unique index conflict
const pqUniqueViolation = "23505"

const resaleViewSelect = `
	SELECT
		r.resale_id, r.user_ticket_id, r.seller_id, r.resale_price, r.notes, r.status,
		r.listed_date, r.buyer_id, r.sold_date, r.cancelled_date,
		ut.match_title, ut.match_date, ut.stadium, ut.category, ut.quantity,
		ut.price AS original_price,
		u.name AS seller_name
	FROM resale_tickets r
	JOIN user_tickets ut ON r.user_ticket_id = ut.user_ticket_id
	JOIN users u ON r.seller_id = u.user_id
`

// CreateResaleListing offers the owned ticket listing.UserTicketID for resale.
// The seller is always the ticket's current owner, who must be requesterID.
// On success listing carries the new id, seller, status and listing date.
func (r *PostgresRepository) CreateResaleListing(ctx context.Context, requesterID int64, listing *models.ResaleTicket) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var ticket models.UserTicket
		err := tx.GetContext(ctx, &ticket,
			`SELECT * FROM user_tickets WHERE user_ticket_id = $1 FOR UPDATE`,
			listing.UserTicketID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return fmt.Errorf("lock ticket: %w", err)
		}

		if ticket.UserID != requesterID {
			return ErrNotTicketOwner
		}
		if ticket.ListedForResale {
			return ErrTicketAlreadyListed
		}

		var hasAvailable, hasSold bool
		err = tx.QueryRowxContext(ctx, `
			SELECT
				COALESCE(bool_or(status = 'available'), FALSE),
				COALESCE(bool_or(status = 'sold'), FALSE)
			FROM resale_tickets
			WHERE user_ticket_id = $1
		`, ticket.ID).Scan(&hasAvailable, &hasSold)
		if err != nil {
			return fmt.Errorf("check existing listings: %w", err)
		}
		if hasSold {
			return ErrTicketResold
		}
		if hasAvailable {
			return ErrTicketAlreadyListed
		}

		listing.SellerID = ticket.UserID
		listing.Status = models.ResaleStatusAvailable
		listing.ListedDate = time.Now().UTC()
		listing.BuyerID, listing.SoldDate, listing.CancelledDate = nil, nil, nil

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO resale_tickets (user_ticket_id, seller_id, resale_price, notes, status, listed_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING resale_id
		`, listing.UserTicketID, listing.SellerID, listing.ResalePrice, listing.Notes,
			listing.Status, listing.ListedDate).Scan(&listing.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrTicketAlreadyListed
			}
			return fmt.Errorf("insert listing: %w", err)
		}

		if err := setListedForResale(ctx, tx, ticket.ID, true); err != nil {
			return err
		}

		return nil
	})
}

// PurchaseResaleListing transfers an available listing to buyerID. The buyer
// gets a new owned ticket carrying the seller's match terms at the resale
// price; the seller's row is kept for history and no longer flagged as listed.
func (r *PostgresRepository) PurchaseResaleListing(ctx context.Context, resaleID, buyerID int64) (*models.UserTicket, error) {
	var bought *models.UserTicket

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var view models.ResaleTicketView
		err := tx.GetContext(ctx, &view,
			resaleViewSelect+` WHERE r.resale_id = $1 FOR UPDATE OF r, ut`,
			resaleID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrListingNotFound
			}
			return fmt.Errorf("lock listing: %w", err)
		}

		if err := requireAvailable(&view.ResaleTicket); err != nil {
			return err
		}
		if view.SellerID == buyerID {
			return ErrSelfPurchase
		}

		now := time.Now().UTC()
		ticket := &models.UserTicket{
			UserID:       buyerID,
			MatchTitle:   view.MatchTitle,
			MatchDate:    view.MatchDate,
			Stadium:      view.Stadium,
			Category:     view.Category,
			Quantity:     view.Quantity,
			Price:        view.ResalePrice,
			Total:        view.ResalePrice,
			PurchaseDate: now,
		}
		if err := insertUserTicket(ctx, tx, ticket); err != nil {
			return fmt.Errorf("insert buyer ticket: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE resale_tickets
			SET status = $1, buyer_id = $2, sold_date = $3
			WHERE resale_id = $4 AND status = $5
		`, models.ResaleStatusSold, buyerID, now, resaleID, models.ResaleStatusAvailable)
		if err != nil {
			return fmt.Errorf("mark listing sold: %w", err)
		}
		if err := requireOneRow(res); err != nil {
			return err
		}

		if err := setListedForResale(ctx, tx, view.UserTicketID, false); err != nil {
			return err
		}

		bought = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	return bought, nil
}

// CancelResaleListing withdraws an available listing owned by sellerID. The
// row is kept with status cancelled and the ticket becomes listable again.
func (r *PostgresRepository) CancelResaleListing(ctx context.Context, resaleID, sellerID int64) (*models.ResaleTicket, error) {
	var cancelled *models.ResaleTicket

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var listing models.ResaleTicket
		err := tx.GetContext(ctx, &listing,
			`SELECT * FROM resale_tickets WHERE resale_id = $1 FOR UPDATE`,
			resaleID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrListingNotFound
			}
			return fmt.Errorf("lock listing: %w", err)
		}

		if err := requireAvailable(&listing); err != nil {
			return err
		}
		if listing.SellerID != sellerID {
			return ErrNotListingSeller
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			UPDATE resale_tickets
			SET status = $1, cancelled_date = $2
			WHERE resale_id = $3 AND status = $4
		`, models.ResaleStatusCancelled, now, resaleID, models.ResaleStatusAvailable)
		if err != nil {
			return fmt.Errorf("mark listing cancelled: %w", err)
		}
		if err := requireOneRow(res); err != nil {
			return err
		}

		if err := setListedForResale(ctx, tx, listing.UserTicketID, false); err != nil {
			return err
		}

		listing.Status = models.ResaleStatusCancelled
		listing.CancelledDate = &now
		cancelled = &listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func (r *PostgresRepository) GetResaleListing(ctx context.Context, resaleID int64) (*models.ResaleTicketView, error) {
	var view models.ResaleTicketView
	err := r.db.GetContext(ctx, &view, resaleViewSelect+` WHERE r.resale_id = $1`, resaleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Listing not found
		}
		return nil, err
	}

	return &view, nil
}

func (r *PostgresRepository) GetAvailableResaleTickets(ctx context.Context) ([]models.ResaleTicketView, error) {
	query := resaleViewSelect + `
		WHERE r.status = $1
		ORDER BY r.listed_date DESC
	`

	tickets := []models.ResaleTicketView{}
	err := r.db.SelectContext(ctx, &tickets, query, models.ResaleStatusAvailable)
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

// requireAvailable fails unless the locked listing is still open for purchase or cancellation
func requireAvailable(listing *models.ResaleTicket) error {
	state, err := listing.State()
	if err != nil {
		return err
	}
	if _, ok := state.(models.Available); !ok {
		return ErrListingUnavailable
	}
	return nil
}

// requireOneRow guards the conditional status update: zero rows means another
// transaction moved the listing out of available first
func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrListingUnavailable
	}
	return nil
}

func setListedForResale(ctx context.Context, tx *sqlx.Tx, userTicketID int64, listed bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE user_tickets SET listed_for_resale = $1 WHERE user_ticket_id = $2`,
		listed, userTicketID)
	if err != nil {
		return fmt.Errorf("update listed_for_resale: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
