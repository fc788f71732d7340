package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paylink_backend/internal/config"
	"paylink_backend/internal/middleware"
	"paylink_backend/internal/models"
	"paylink_backend/internal/services"
)

type PaymentRequestHandler struct {
	*BaseHandler
	requestService services.PaymentRequestService
	ledgerService  services.LedgerService
}

func NewPaymentRequestHandler(base *BaseHandler, requestService services.PaymentRequestService, ledgerService services.LedgerService) *PaymentRequestHandler {
	return &PaymentRequestHandler{
		BaseHandler:    base,
		requestService: requestService,
		ledgerService:  ledgerService,
	}
}

func (h *PaymentRequestHandler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("", h.Create)
		requests.GET("", h.List)
		requests.GET("/:requestId", h.Get)
		requests.PUT("/:requestId/cancel", h.Cancel)
	}

	ledger := r.Group("/ledger")
	ledger.Use(middleware.AuthMiddleware())
	{
		ledger.GET("", h.ListLedger)
	}
}

type createRequestBody struct {
	Amount         string     `json:"amount" validate:"required"`
	Currency       string     `json:"currency" validate:"required"`
	Network        string     `json:"network" validate:"required"`
	RecipientEmail string     `json:"recipientEmail" validate:"omitempty,email"`
	RecipientName  string     `json:"recipientName"`
	Description    string     `json:"description"`
	Kind           string     `json:"kind" validate:"required,oneof=ask_payment ask_and_refund subscription"`
	ScheduleKind   string     `json:"scheduleKind" validate:"required,oneof=immediate scheduled"`
	ScheduledAt    *time.Time `json:"scheduledAt"`
}

func (h *PaymentRequestHandler) Create(c *gin.Context) {
	var body createRequestBody
	if !h.BindAndValidateJSON(c, &body) {
		return
	}

	req, err := h.requestService.Create(c.Request.Context(), middleware.CurrentUserID(c), &services.CreateRequestInput{
		Amount:         body.Amount,
		Currency:       body.Currency,
		Network:        body.Network,
		RecipientEmail: body.RecipientEmail,
		RecipientName:  body.RecipientName,
		Description:    body.Description,
		Kind:           models.TransactionKind(body.Kind),
		ScheduleKind:   models.ScheduleKind(body.ScheduleKind),
		ScheduledAt:    body.ScheduledAt,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"request": req,
		"link":    req.PaymentLink(config.AppConfig.Server.PublicBaseURL),
	})
}

func (h *PaymentRequestHandler) List(c *gin.Context) {
	reqs, err := h.requestService.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "total": len(reqs)})
}

func (h *PaymentRequestHandler) Get(c *gin.Context) {
	req, err := h.requestService.Get(c.Request.Context(), middleware.CurrentUserID(c), c.Param("requestId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

func (h *PaymentRequestHandler) Cancel(c *gin.Context) {
	err := h.requestService.Cancel(c.Request.Context(), middleware.CurrentUserID(c), c.Param("requestId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *PaymentRequestHandler) ListLedger(c *gin.Context) {
	entries, err := h.ledgerService.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries)})
}
