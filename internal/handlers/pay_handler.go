package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paylink_backend/internal/services"
)

// ProofHeader carries the payer's settlement proof on the public payment
// endpoint.
const ProofHeader = "X-Payment"

// PayHandler serves the public, unauthenticated payment link.
type PayHandler struct {
	*BaseHandler
	verification services.VerificationService
}

func NewPayHandler(base *BaseHandler, verification services.VerificationService) *PayHandler {
	return &PayHandler{
		BaseHandler:  base,
		verification: verification,
	}
}

// RegisterRoutes mounts the pay endpoints on the engine root: the link is
// payer-facing and lives outside the versioned API.
func (h *PayHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/pay/:paymentId", h.Show)
	r.POST("/pay/:paymentId", h.SubmitProof)
}

type submitProofBody struct {
	Payment string `json:"payment"`
}

// Show returns 402 with the verification requirements when no proof is
// attached, so payer tooling knows what to pay. With a proof header present
// it behaves like SubmitProof.
func (h *PayHandler) Show(c *gin.Context) {
	proof := c.GetHeader(ProofHeader)
	if proof != "" {
		h.settle(c, proof)
		return
	}

	reqs, err := h.verification.RequirementsFor(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusPaymentRequired, gin.H{
		"error":   "payment required",
		"accepts": []interface{}{reqs},
	})
}

func (h *PayHandler) SubmitProof(c *gin.Context) {
	proof := c.GetHeader(ProofHeader)
	if proof == "" {
		var body submitProofBody
		// Body is optional; the header is the canonical carrier.
		_ = c.ShouldBindJSON(&body)
		proof = body.Payment
	}
	if proof == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing payment proof"})
		return
	}
	h.settle(c, proof)
}

func (h *PayHandler) settle(c *gin.Context, proof string) {
	outcome, err := h.verification.HandleInboundProof(c.Request.Context(), c.Param("paymentId"), proof)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}
