package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/statarena/server/internal/api"
	"github.com/statarena/server/internal/config"
	"github.com/statarena/server/internal/metrics"
	"github.com/statarena/server/internal/models"
	"github.com/statarena/server/internal/repository"
	"github.com/statarena/server/internal/service"
	"github.com/statarena/server/internal/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestUser is a stored user together with a valid bearer token
type TestUser struct {
	ID    int64
	Email string
	Token string
}

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository repository.Repository
	Service    service.Service
	JWTSecret  []byte
	DB         *sqlx.DB
	TestUser   TestUser
}

// SetupTestContext creates a new test context backed by the test database.
// The test is skipped when no database is reachable.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	// Load configuration from environment
	cfg := config.LoadConfig()

	// Override with test-specific config
	if cfg.Database.TestDBName != "" {
		cfg.Database.DBName = cfg.Database.TestDBName
	}

	// Use a test JWT secret
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "test-secret-key"
	}

	// Set up database
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	repo := repository.NewPostgresRepository(db)
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret, cfg.Auth.TokenDuration, metrics.Nop{})

	gin.SetMode(gin.TestMode)
	handler := api.NewHandler(svc, utils.NewLoggerTo(io.Discard, io.Discard), metrics.Nop{})
	router := api.NewRouter(handler, cfg.Auth.JWTSecret, nil)

	testCtx := &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		JWTSecret:  []byte(cfg.Auth.JWTSecret),
		DB:         db,
	}

	cleanupTestDatabase(t, db)
	testCtx.TestUser = testCtx.CreateUser(t, "Test User", "testuser@example.com")

	return testCtx
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.DB != nil {
		cleanupTestDatabase(nil, t.DB)
		t.DB.Close()
	}
}

// cleanupTestDatabase removes all rows, children first
func cleanupTestDatabase(t *testing.T, db *sqlx.DB) {
	for _, table := range []string{"resale_tickets", "user_tickets", "users"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil && t != nil {
			t.Logf("Warning: Failed to clean %s: %v", table, err)
		}
	}
}

// CreateUser stores a user with password "testpassword" and signs a token for it
func (tc *TestContext) CreateUser(t *testing.T, name, email string) TestUser {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("testpassword"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     "user",
	}
	require.NoError(t, tc.Repository.CreateUser(context.Background(), user), "Failed to create test user")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	tokenString, err := token.SignedString(tc.JWTSecret)
	require.NoError(t, err, "Failed to generate JWT token")

	return TestUser{ID: user.ID, Email: email, Token: tokenString}
}

// CreateTicket stores an owned ticket for userID at the given price
func (tc *TestContext) CreateTicket(t *testing.T, userID int64, price string) int64 {
	t.Helper()

	p := decimal.RequireFromString(price)
	ticket := &models.UserTicket{
		UserID:     userID,
		MatchTitle: "Arsenal vs Chelsea",
		MatchDate:  "2025-05-01",
		Stadium:    "Emirates Stadium",
		Category:   "VIP",
		Quantity:   1,
		Price:      p,
		Total:      p,
	}
	require.NoError(t, tc.Repository.CreateUserTicket(context.Background(), ticket), "Failed to create test ticket")
	return ticket.ID
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
