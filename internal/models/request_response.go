package models

import "github.com/shopspring/decimal"

// Request models
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PurchaseTicketRequest struct {
	UserID     int64           `json:"user_id" binding:"required"`
	MatchTitle string          `json:"match_title" binding:"required"`
	MatchDate  string          `json:"match_date"`
	Stadium    string          `json:"stadium"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity" binding:"required,gt=0"`
	Price      decimal.Decimal `json:"price" binding:"required,gt=0,price"`
	Total      decimal.Decimal `json:"total" binding:"omitempty,price"`
}

type ListResaleRequest struct {
	UserTicketID int64           `json:"user_ticket_id" binding:"required"`
	ResalePrice  decimal.Decimal `json:"resale_price" binding:"required,gt=0,price"`
	Notes        *string         `json:"notes"`
}

type PurchaseResaleRequest struct {
	BuyerID int64 `json:"buyer_id" binding:"required"`
}

// Response models
type UserSummary struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type AuthResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	UserID    int64        `json:"user_id,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresIn int          `json:"expires_in,omitempty"`
	User      *UserSummary `json:"user,omitempty"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PurchaseTicketResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UserTicketID int64  `json:"user_ticket_id"`
}

type ResaleListingResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ResaleID int64  `json:"resale_id"`
}

type ResalePurchaseResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UserTicketID int64  `json:"user_ticket_id,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}
