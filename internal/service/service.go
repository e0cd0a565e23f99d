package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/statarena/server/internal/metrics"
	"github.com/statarena/server/internal/models"
	"github.com/statarena/server/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	// Owned tickets
	PurchaseTicket(ctx context.Context, userID int64, req models.PurchaseTicketRequest) (*models.PurchaseTicketResponse, error)
	GetUserTickets(ctx context.Context, requesterID, userID int64) ([]models.UserTicket, error)

	// Resale
	ListTicketForResale(ctx context.Context, userID int64, req models.ListResaleRequest) (*models.ResaleListingResponse, error)
	PurchaseResaleTicket(ctx context.Context, userID, resaleID int64, req models.PurchaseResaleRequest) (*models.ResalePurchaseResponse, error)
	CancelResaleListing(ctx context.Context, userID, resaleID int64) (*models.SuccessResponse, error)
	GetResaleTickets(ctx context.Context) ([]models.ResaleTicketView, error)
	GetResaleTicket(ctx context.Context, resaleID int64) (*models.ResaleTicketView, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	metrics       metrics.Recorder
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(
	repo repository.Repository,
	jwtSecret string,
	tokenDuration time.Duration,
	recorder metrics.Recorder,
) Service {
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
		metrics:       recorder,
	}
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	// Check if user already exists
	existingUser, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}

	if existingUser != nil {
		return nil, newError(KindConflict, "User already exists", nil)
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     "user",
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &models.AuthResponse{
		Success: true,
		Message: "Registration successful",
		UserID:  user.ID,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, newError(KindUnauthorized, "Invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, newError(KindUnauthorized, "Invalid email or password", nil)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("error updating last login: %w", err)
	}

	return &models.AuthResponse{
		Success:   true,
		Message:   "Login successful",
		UserID:    user.ID,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
		User: &models.UserSummary{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
		},
	}, nil
}

// Helper methods
func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10), // subject
		"email": user.Email,
		"role":  user.Role,
		"exp":   now.Add(s.tokenDuration).Unix(),
		"iat":   now.Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
