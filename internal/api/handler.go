package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/statarena/server/internal/metrics"
	"github.com/statarena/server/internal/models"
	"github.com/statarena/server/internal/service"
	"github.com/statarena/server/internal/utils"
)

// Handler handles HTTP requests
type Handler struct {
	service service.Service
	logger  *utils.Logger
	metrics metrics.Recorder
}

// NewHandler creates a new Handler. The recorder counts resale requests
// rejected before they reach the service.
func NewHandler(svc service.Service, logger *utils.Logger, recorder metrics.Recorder) *Handler {
	if logger == nil {
		logger = utils.NewLogger()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Handler{
		service: svc,
		logger:  logger,
		metrics: recorder,
	}
}

// SetupRoutes sets up the API routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/health", h.Health)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.SignUp)
		auth.POST("/login", h.Login)
	}

	tickets := api.Group("/tickets")
	{
		tickets.GET("/resale", h.GetResaleTickets)
		tickets.GET("/resale/:resaleId", h.GetResaleTicket)
	}

	// Protected routes
	protected := tickets.Group("")
	protected.Use(AuthMiddleware())
	{
		protected.POST("/purchase", h.PurchaseTicket)
		protected.GET("/user/:userId", h.GetUserTickets)
		protected.POST("/resale", h.ListTicketForResale)
		protected.POST("/resale/:resaleId/purchase", h.PurchaseResaleTicket)
		protected.DELETE("/resale/:resaleId", h.CancelResaleListing)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Code:    service.KindNotFound.String(),
			Error:   "Endpoint not found",
		})
	})
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Message:   "StatArena API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Authentication handlers
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Name, email and a password of at least 8 characters are required")
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Email and password are required")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Ticket handlers
func (h *Handler) PurchaseTicket(c *gin.Context) {
	var req models.PurchaseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, bindingMessage(err, "Missing required fields"))
		return
	}

	resp, err := h.service.PurchaseTicket(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.respondError(c, err, "Failed to purchase ticket")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetUserTickets(c *gin.Context) {
	userID, ok := h.pathID(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	tickets, err := h.service.GetUserTickets(c.Request.Context(), currentUserID(c), userID)
	if err != nil {
		h.respondError(c, err, "Failed to get user tickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// Resale handlers
func (h *Handler) ListTicketForResale(c *gin.Context) {
	start := time.Now()

	var req models.ListResaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectResale(c, metrics.OperationList, start, bindingMessage(err, "Missing required fields"))
		return
	}

	resp, err := h.service.ListTicketForResale(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.respondError(c, err, "Failed to list ticket for resale")
		return
	}

	h.logger.WithRequest(c.GetString(requestIDKey)).Info("resale listing %d created for ticket %d", resp.ResaleID, req.UserTicketID)
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) PurchaseResaleTicket(c *gin.Context) {
	start := time.Now()

	resaleID, ok := parseID(c, "resaleId")
	if !ok {
		h.rejectResale(c, metrics.OperationPurchase, start, "Invalid resale ID")
		return
	}

	var req models.PurchaseResaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectResale(c, metrics.OperationPurchase, start, "Buyer ID is required")
		return
	}

	resp, err := h.service.PurchaseResaleTicket(c.Request.Context(), currentUserID(c), resaleID, req)
	if err != nil {
		h.respondError(c, err, "Failed to purchase resale ticket")
		return
	}

	h.logger.WithRequest(c.GetString(requestIDKey)).Info("resale listing %d sold to user %d", resaleID, req.BuyerID)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CancelResaleListing(c *gin.Context) {
	start := time.Now()

	resaleID, ok := parseID(c, "resaleId")
	if !ok {
		h.rejectResale(c, metrics.OperationCancel, start, "Invalid resale ID")
		return
	}

	resp, err := h.service.CancelResaleListing(c.Request.Context(), currentUserID(c), resaleID)
	if err != nil {
		h.respondError(c, err, "Failed to cancel resale listing")
		return
	}

	h.logger.WithRequest(c.GetString(requestIDKey)).Info("resale listing %d cancelled", resaleID)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetResaleTickets(c *gin.Context) {
	listings, err := h.service.GetResaleTickets(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get resale tickets")
		return
	}

	c.JSON(http.StatusOK, listings)
}

func (h *Handler) GetResaleTicket(c *gin.Context) {
	resaleID, ok := h.pathID(c, "resaleId", "Invalid resale ID")
	if !ok {
		return
	}

	listing, err := h.service.GetResaleTicket(c.Request.Context(), resaleID)
	if err != nil {
		h.respondError(c, err, "Failed to get resale ticket")
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *Handler) pathID(c *gin.Context, param, message string) (int64, bool) {
	id, ok := parseID(c, param)
	if !ok {
		h.badRequest(c, message)
	}
	return id, ok
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// rejectResale answers 400 for a resale request the service never saw and
// counts it with the same outcome label the service uses for bad input
func (h *Handler) rejectResale(c *gin.Context, operation string, start time.Time, message string) {
	h.metrics.TrackResaleOperation(operation, metrics.OutcomeInvalid, time.Since(start))
	h.badRequest(c, message)
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Code:    service.KindValidation.String(),
		Error:   message,
	})
}

// respondError writes a classified service error. Unclassified errors are
// logged and reported with the generic fallback message only.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) || svcErr.Kind == service.KindInternal {
		h.logger.WithRequest(c.GetString(requestIDKey)).Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Code:    service.KindInternal.String(),
			Error:   fallback,
		})
		return
	}

	if svcErr.Kind == service.KindConflict {
		h.logger.WithRequest(c.GetString(requestIDKey)).Warn("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(statusFor(svcErr.Kind), models.ErrorResponse{
		Success: false,
		Code:    svcErr.Kind.String(),
		Error:   svcErr.Message,
	})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
