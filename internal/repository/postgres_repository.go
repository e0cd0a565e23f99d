package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/statarena/server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error

	// Owned ticket operations
	CreateUserTicket(ctx context.Context, ticket *models.UserTicket) error
	GetUserTicket(ctx context.Context, id int64) (*models.UserTicket, error)
	GetUserTickets(ctx context.Context, userID int64) ([]models.UserTicket, error)

	// Resale operations, each one database transaction
	CreateResaleListing(ctx context.Context, requesterID int64, listing *models.ResaleTicket) error
	PurchaseResaleListing(ctx context.Context, resaleID, buyerID int64) (*models.UserTicket, error)
	CancelResaleListing(ctx context.Context, resaleID, sellerID int64) (*models.ResaleTicket, error)
	GetResaleListing(ctx context.Context, resaleID int64) (*models.ResaleTicketView, error)
	GetAvailableResaleTickets(ctx context.Context) ([]models.ResaleTicketView, error)
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// withTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or panics, and committed otherwise.
func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id
	`

	if user.Role == "" {
		user.Role = "user"
	}
	user.IsActive = true
	user.CreatedAt = time.Now().UTC()

	return r.db.QueryRowxContext(ctx, query,
		user.Name, user.Email, user.Password, user.Role, user.IsActive, user.CreatedAt,
	).Scan(&user.ID)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1 AND is_active = TRUE`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT * FROM users WHERE user_id = $1 AND is_active = TRUE`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE user_id = $2`, time.Now().UTC(), id)
	return err
}

// Owned ticket repository methods
func (r *PostgresRepository) CreateUserTicket(ctx context.Context, ticket *models.UserTicket) error {
	if ticket.PurchaseDate.IsZero() {
		ticket.PurchaseDate = time.Now().UTC()
	}
	return insertUserTicket(ctx, r.db, ticket)
}

// insertUserTicket is shared by the original sale and the resale purchase, which runs it inside its transaction
func insertUserTicket(ctx context.Context, q sqlx.QueryerContext, ticket *models.UserTicket) error {
	query := `
		INSERT INTO user_tickets (user_id, match_title, match_date, stadium, category, quantity, price, total, purchase_date, listed_for_resale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		RETURNING user_ticket_id
	`

	ticket.ListedForResale = false

	return q.QueryRowxContext(ctx, query,
		ticket.UserID, ticket.MatchTitle, ticket.MatchDate, ticket.Stadium, ticket.Category,
		ticket.Quantity, ticket.Price, ticket.Total, ticket.PurchaseDate,
	).Scan(&ticket.ID)
}

func (r *PostgresRepository) GetUserTicket(ctx context.Context, id int64) (*models.UserTicket, error) {
	query := `SELECT * FROM user_tickets WHERE user_ticket_id = $1`

	var ticket models.UserTicket
	err := r.db.GetContext(ctx, &ticket, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Ticket not found
		}
		return nil, err
	}

	return &ticket, nil
}

// GetUserTickets returns the tickets a user still holds: neither listed for resale nor already resold
func (r *PostgresRepository) GetUserTickets(ctx context.Context, userID int64) ([]models.UserTicket, error) {
	query := `
		SELECT ut.* FROM user_tickets ut
		WHERE ut.user_id = $1
		  AND ut.listed_for_resale = FALSE
		  AND NOT EXISTS (
			SELECT 1 FROM resale_tickets r
			WHERE r.user_ticket_id = ut.user_ticket_id AND r.status = 'sold'
		  )
		ORDER BY ut.purchase_date DESC
	`

	tickets := []models.UserTicket{}
	err := r.db.SelectContext(ctx, &tickets, query, userID)
	if err != nil {
		return nil, err
	}

	return tickets, nil
}
