package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paylink_backend/internal/middleware"
	"paylink_backend/internal/services"
)

type OutgoingPaymentHandler struct {
	*BaseHandler
	outgoingService services.OutgoingPaymentService
}

func NewOutgoingPaymentHandler(base *BaseHandler, outgoingService services.OutgoingPaymentService) *OutgoingPaymentHandler {
	return &OutgoingPaymentHandler{
		BaseHandler:     base,
		outgoingService: outgoingService,
	}
}

func (h *OutgoingPaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments/outgoing")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.POST("", h.Schedule)
		payments.GET("", h.List)
	}
}

type scheduleOutgoingBody struct {
	Amount           string     `json:"amount" validate:"required"`
	Currency         string     `json:"currency" validate:"required"`
	Network          string     `json:"network" validate:"required"`
	RecipientAddress string     `json:"recipientAddress" validate:"required"`
	ScheduledAt      *time.Time `json:"scheduledAt"`
}

func (h *OutgoingPaymentHandler) Schedule(c *gin.Context) {
	var body scheduleOutgoingBody
	if !h.BindAndValidateJSON(c, &body) {
		return
	}

	payment, err := h.outgoingService.Schedule(c.Request.Context(), middleware.CurrentUserID(c), &services.ScheduleOutgoingInput{
		Amount:           body.Amount,
		Currency:         body.Currency,
		Network:          body.Network,
		RecipientAddress: body.RecipientAddress,
		ScheduledAt:      body.ScheduledAt,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

func (h *OutgoingPaymentHandler) List(c *gin.Context) {
	payments, err := h.outgoingService.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": len(payments)})
}
